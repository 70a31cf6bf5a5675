package targets

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/sadopc/revenuepro/internal/calendar"
	"github.com/sadopc/revenuepro/internal/metrics"
)

// SnapshotName is the key the target tree is persisted under.
const SnapshotName = "targets"

// MonthlyTargets holds a month's totals and the weekly targets they sum from.
type MonthlyTargets struct {
	metrics.Bundle
	WeeklyBreakdown map[string]metrics.Bundle `json:"weeklyBreakdown"`
}

// YearlyTargets holds a year's totals and its twelve months.
type YearlyTargets struct {
	metrics.Bundle
	MonthlyBreakdown map[int]MonthlyTargets `json:"monthlyBreakdown"`
}

// Snapshotter reads and writes whole named blobs.
type Snapshotter interface {
	ReadSnapshot(name string) ([]byte, error)
	WriteSnapshot(name string, data []byte) error
}

// Store owns the year -> month -> week target tree. Every mutation writes the
// entire tree back through the Snapshotter.
type Store struct {
	mu    sync.RWMutex
	years map[int]YearlyTargets
	snap  Snapshotter
	log   *zap.Logger
}

// New returns an empty store; call Load to read the persisted tree. A nil log
// discards logging.
func New(snap Snapshotter, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		years: make(map[int]YearlyTargets),
		snap:  snap,
		log:   log,
	}
}

// Load replaces the in-memory tree with the persisted snapshot, if any.
func (s *Store) Load() error {
	data, err := s.snap.ReadSnapshot(SnapshotName)
	if err != nil {
		return fmt.Errorf("read targets snapshot: %w", err)
	}
	years := make(map[int]YearlyTargets)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &years); err != nil {
			return fmt.Errorf("decode targets snapshot: %w", err)
		}
	}

	s.mu.Lock()
	s.years = years
	s.mu.Unlock()
	s.log.Info("targets loaded", zap.Int("years", len(years)))
	return nil
}

// SetYearlyTargets splits totals across the twelve months and each month
// across its weeks, replacing everything previously stored for year.
func (s *Store) SetYearlyTargets(year int, totals metrics.Bundle) error {
	if !totals.IsFinite() {
		return fmt.Errorf("set yearly targets %d: %w", year, metrics.ErrNonFinite)
	}
	months := metrics.SplitBundle(totals, 12)
	y := YearlyTargets{
		Bundle:           totals,
		MonthlyBreakdown: make(map[int]MonthlyTargets, 12),
	}
	for m := 0; m < 12; m++ {
		y.MonthlyBreakdown[m] = buildMonth(year, m, months[m])
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.years[year] = y
	s.log.Debug("yearly targets set", zap.Int("year", year), zap.Float64("leads", totals.Leads))
	return s.persist()
}

// SetMonthlyTargets replaces one month's weekly split and re-totals the year.
// It does nothing when the year has no targets yet.
func (s *Store) SetMonthlyTargets(year, month int, totals metrics.Bundle) error {
	if !totals.IsFinite() {
		return fmt.Errorf("set monthly targets %d-%02d: %w", year, month+1, metrics.ErrNonFinite)
	}
	if month < 0 || month > 11 {
		s.log.Debug("monthly targets ignored: bad month", zap.Int("year", year), zap.Int("month", month))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	y, ok := s.years[year]
	if !ok {
		s.log.Debug("monthly targets ignored: year not set", zap.Int("year", year), zap.Int("month", month))
		return nil
	}
	y.MonthlyBreakdown[month] = buildMonth(year, month, totals)
	y.Bundle = sumMonths(y.MonthlyBreakdown)
	s.years[year] = y
	return s.persist()
}

// SetWeeklyTargets replaces a single week and re-totals its month and year.
// It does nothing when the owning month has no targets yet or weekID does not
// parse.
func (s *Store) SetWeeklyTargets(weekID string, totals metrics.Bundle) error {
	if !totals.IsFinite() {
		return fmt.Errorf("set weekly targets %s: %w", weekID, metrics.ErrNonFinite)
	}
	day, err := calendar.ParseWeekID(weekID)
	if err != nil {
		s.log.Debug("weekly targets ignored", zap.String("week_id", weekID), zap.Error(err))
		return nil
	}
	w := calendar.WeekOf(day)

	s.mu.Lock()
	defer s.mu.Unlock()
	y, ok := s.years[w.BelongsToYear]
	if !ok {
		s.log.Debug("weekly targets ignored: year not set", zap.String("week_id", w.WeekID))
		return nil
	}
	m, ok := y.MonthlyBreakdown[w.BelongsToMonth]
	if !ok {
		s.log.Debug("weekly targets ignored: month not set", zap.String("week_id", w.WeekID))
		return nil
	}
	if m.WeeklyBreakdown == nil {
		m.WeeklyBreakdown = make(map[string]metrics.Bundle)
	}
	m.WeeklyBreakdown[w.WeekID] = totals
	m.Bundle = sumWeeks(m.WeeklyBreakdown)
	y.MonthlyBreakdown[w.BelongsToMonth] = m
	y.Bundle = sumMonths(y.MonthlyBreakdown)
	s.years[w.BelongsToYear] = y
	return s.persist()
}

// WeeklyTargets returns the target of the week containing the date weekID,
// or nil if none is set.
func (s *Store) WeeklyTargets(weekID string) *metrics.Bundle {
	day, err := calendar.ParseWeekID(weekID)
	if err != nil {
		return nil
	}
	w := calendar.WeekOf(day)

	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.years[w.BelongsToYear].MonthlyBreakdown[w.BelongsToMonth]
	if !ok {
		return nil
	}
	b, ok := m.WeeklyBreakdown[w.WeekID]
	if !ok {
		return nil
	}
	return &b
}

// MonthlyTargets returns a copy of the month's targets, or nil.
func (s *Store) MonthlyTargets(year, month int) *MonthlyTargets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.years[year].MonthlyBreakdown[month]
	if !ok {
		return nil
	}
	c := m.clone()
	return &c
}

// YearlyTargets returns a copy of the year's targets, or nil.
func (s *Store) YearlyTargets(year int) *YearlyTargets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	y, ok := s.years[year]
	if !ok {
		return nil
	}
	c := y.clone()
	return &c
}

// Years lists the years with targets, ascending.
func (s *Store) Years() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	years := make([]int, 0, len(s.years))
	for y := range s.years {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// persist must be called with mu held.
func (s *Store) persist() error {
	data, err := json.Marshal(s.years)
	if err != nil {
		return fmt.Errorf("encode targets snapshot: %w", err)
	}
	if err := s.snap.WriteSnapshot(SnapshotName, data); err != nil {
		s.log.Error("save targets snapshot", zap.Error(err))
		return fmt.Errorf("save targets snapshot: %w", err)
	}
	return nil
}

func buildMonth(year, month int, totals metrics.Bundle) MonthlyTargets {
	weeks := calendar.WeeksInMonth(year, month)
	parts := metrics.SplitBundle(totals, len(weeks))
	m := MonthlyTargets{
		Bundle:          totals,
		WeeklyBreakdown: make(map[string]metrics.Bundle, len(weeks)),
	}
	for i, w := range weeks {
		m.WeeklyBreakdown[w.WeekID] = parts[i]
	}
	return m
}

func sumWeeks(weeks map[string]metrics.Bundle) metrics.Bundle {
	ids := make([]string, 0, len(weeks))
	for id := range weeks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var total metrics.Bundle
	for _, id := range ids {
		total = total.Add(weeks[id])
	}
	return total
}

func sumMonths(months map[int]MonthlyTargets) metrics.Bundle {
	var total metrics.Bundle
	for m := 0; m < 12; m++ {
		if mt, ok := months[m]; ok {
			total = total.Add(mt.Bundle)
		}
	}
	return total
}

func (m MonthlyTargets) clone() MonthlyTargets {
	c := MonthlyTargets{Bundle: m.Bundle, WeeklyBreakdown: make(map[string]metrics.Bundle, len(m.WeeklyBreakdown))}
	for id, b := range m.WeeklyBreakdown {
		c.WeeklyBreakdown[id] = b
	}
	return c
}

func (y YearlyTargets) clone() YearlyTargets {
	c := YearlyTargets{Bundle: y.Bundle, MonthlyBreakdown: make(map[int]MonthlyTargets, len(y.MonthlyBreakdown))}
	for m, mt := range y.MonthlyBreakdown {
		c.MonthlyBreakdown[m] = mt.clone()
	}
	return c
}
