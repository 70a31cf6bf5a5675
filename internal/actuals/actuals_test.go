package actuals

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/sadopc/revenuepro/internal/metrics"
)

type memSnapshots struct {
	blobs map[string][]byte
	err   error
}

func (m *memSnapshots) ReadSnapshot(name string) ([]byte, error) { return m.blobs[name], nil }

func (m *memSnapshots) WriteSnapshot(name string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.blobs[name] = append([]byte(nil), data...)
	return nil
}

func newTestBook(t *testing.T) (*Book, *memSnapshots, *time.Time) {
	t.Helper()
	snap := &memSnapshots{blobs: make(map[string][]byte)}
	clock := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
	b := New(snap, nil)
	b.now = func() time.Time { return clock }
	if err := b.Load(); err != nil {
		t.Fatal(err)
	}
	return b, snap, &clock
}

func TestRecordKeysByMonday(t *testing.T) {
	b, _, _ := newTestBook(t)
	e, err := b.Record(time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC), metrics.Bundle{Leads: 42}, "promo week")
	if err != nil {
		t.Fatal(err)
	}
	if e.WeekID != "2025-03-10" {
		t.Fatalf("WeekID = %q", e.WeekID)
	}
	if e.WeekInfo.BelongsToMonth != 2 {
		t.Fatalf("week owner month = %d", e.WeekInfo.BelongsToMonth)
	}
	got := b.Get("2025-03-10")
	if got == nil || got.Leads != 42 || got.Notes != "promo week" {
		t.Fatalf("Get = %+v", got)
	}
	if b.Get("2025-03-13") != nil {
		t.Fatal("entries are keyed by the Monday only")
	}
}

func TestRecordKeepsCreatedAt(t *testing.T) {
	b, _, clock := newTestBook(t)
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	first, _ := b.Record(day, metrics.Bundle{Leads: 1}, "")

	*clock = clock.Add(48 * time.Hour)
	second, _ := b.Record(day, metrics.Bundle{Leads: 2}, "")

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt moved from %s to %s", first.CreatedAt, second.CreatedAt)
	}
	if !second.UpdatedAt.Equal(*clock) {
		t.Fatalf("UpdatedAt = %s, want %s", second.UpdatedAt, *clock)
	}
	if b.Get("2025-03-10").Leads != 2 {
		t.Fatal("second record should replace the first")
	}
}

func TestAllSorted(t *testing.T) {
	b, _, _ := newTestBook(t)
	for _, d := range []int{24, 3, 17} {
		b.Record(time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC), metrics.Bundle{Leads: float64(d)}, "")
	}
	all := b.All()
	if len(all) != 3 || all[0].WeekID != "2025-03-03" || all[2].WeekID != "2025-03-24" {
		t.Fatalf("All = %+v", all)
	}
}

func TestSnapshotRoundTripsTimestamps(t *testing.T) {
	b, snap, _ := newTestBook(t)
	b.Record(time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC), metrics.Bundle{SalesRevenue: 1234.5}, "year end")

	reloaded := New(snap, nil)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	e := reloaded.Get("2025-12-29")
	if e == nil {
		t.Fatal("entry lost")
	}
	orig := b.Get("2025-12-29")
	if !e.CreatedAt.Equal(orig.CreatedAt) || !e.UpdatedAt.Equal(orig.UpdatedAt) {
		t.Fatalf("timestamps changed: %s/%s", e.CreatedAt, e.UpdatedAt)
	}
	if !e.WeekInfo.WeekStart.Equal(orig.WeekInfo.WeekStart) || e.WeekInfo.BelongsToYear != 2026 {
		t.Fatalf("week info changed: %+v", e.WeekInfo)
	}
	if e.SalesRevenue != 1234.5 || e.Notes != "year end" {
		t.Fatalf("entry = %+v", e)
	}
}

func TestRecordPersistFailure(t *testing.T) {
	b, snap, _ := newTestBook(t)
	snap.err = errors.New("read-only")
	_, err := b.Record(time.Now(), metrics.Bundle{}, "")
	if !errors.Is(err, snap.err) {
		t.Fatalf("err = %v", err)
	}
}

func TestRecordRejectsNonFinite(t *testing.T) {
	b, snap, _ := newTestBook(t)
	_, err := b.Record(time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC), metrics.Bundle{Leads: math.NaN()}, "")
	if !errors.Is(err, metrics.ErrNonFinite) {
		t.Fatalf("err = %v", err)
	}
	if b.Get("2025-03-10") != nil || len(snap.blobs) != 0 {
		t.Fatal("rejected actuals must not be stored")
	}
}
