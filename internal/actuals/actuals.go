package actuals

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sadopc/revenuepro/internal/calendar"
	"github.com/sadopc/revenuepro/internal/metrics"
)

// SnapshotName is the key the actuals map is persisted under.
const SnapshotName = "actuals"

// ActualData is the recorded performance of one week.
type ActualData struct {
	metrics.Bundle
	WeekID    string            `json:"weekId"`
	WeekInfo  calendar.WeekInfo `json:"weekInfo"`
	Notes     string            `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type Snapshotter interface {
	ReadSnapshot(name string) ([]byte, error)
	WriteSnapshot(name string, data []byte) error
}

// Book is the flat weekId -> ActualData map.
type Book struct {
	mu      sync.RWMutex
	entries map[string]ActualData
	snap    Snapshotter
	log     *zap.Logger
	now     func() time.Time
}

// New returns an empty book; call Load to read the persisted map.
func New(snap Snapshotter, log *zap.Logger) *Book {
	if log == nil {
		log = zap.NewNop()
	}
	return &Book{
		entries: make(map[string]ActualData),
		snap:    snap,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load replaces the in-memory map with the persisted snapshot, if any.
func (b *Book) Load() error {
	data, err := b.snap.ReadSnapshot(SnapshotName)
	if err != nil {
		return fmt.Errorf("read actuals snapshot: %w", err)
	}
	entries := make(map[string]ActualData)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return fmt.Errorf("decode actuals snapshot: %w", err)
		}
	}

	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
	b.log.Info("actuals loaded", zap.Int("weeks", len(entries)))
	return nil
}

// Record stores values as the actuals of the week containing day, replacing
// any previous figures for that week. CreatedAt survives replacement.
func (b *Book) Record(day time.Time, values metrics.Bundle, notes string) (ActualData, error) {
	w := calendar.WeekOf(day)
	if !values.IsFinite() {
		return ActualData{}, fmt.Errorf("record actuals %s: %w", w.WeekID, metrics.ErrNonFinite)
	}
	now := b.now()

	b.mu.Lock()
	defer b.mu.Unlock()
	entry := ActualData{
		Bundle:    values,
		WeekID:    w.WeekID,
		WeekInfo:  w,
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, ok := b.entries[w.WeekID]; ok {
		entry.CreatedAt = prev.CreatedAt
	}
	b.entries[w.WeekID] = entry

	data, err := json.Marshal(b.entries)
	if err != nil {
		return entry, fmt.Errorf("encode actuals snapshot: %w", err)
	}
	if err := b.snap.WriteSnapshot(SnapshotName, data); err != nil {
		b.log.Error("save actuals snapshot", zap.String("week_id", w.WeekID), zap.Error(err))
		return entry, fmt.Errorf("save actuals snapshot: %w", err)
	}
	b.log.Debug("actuals recorded", zap.String("week_id", w.WeekID), zap.Float64("leads", values.Leads))
	return entry, nil
}

// Get returns the actuals stored under weekID, or nil.
func (b *Book) Get(weekID string) *ActualData {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.entries[weekID]
	if !ok {
		return nil
	}
	return &e
}

// All returns every recorded week ordered by week id.
func (b *Book) All() []ActualData {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]ActualData, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WeekID < out[j].WeekID })
	return out
}
