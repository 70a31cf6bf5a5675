package calendar

import (
	"fmt"
	"time"
)

// WeekIDLayout is the layout of a week key: the ISO date of its Monday.
const WeekIDLayout = "2006-01-02"

// WeekInfo describes one Monday-to-Sunday week and the month that owns it.
type WeekInfo struct {
	WeekStart      time.Time `json:"weekStart"`
	WeekEnd        time.Time `json:"weekEnd"`
	WeekID         string    `json:"weekId"`
	BelongsToMonth int       `json:"belongsToMonth"` // 0-11
	BelongsToYear  int       `json:"belongsToYear"`
	MonthLabel     string    `json:"monthLabel"`
	WeekLabel      string    `json:"weekLabel"`
}

// LastDay returns Sunday 00:00 of the week.
func (w WeekInfo) LastDay() time.Time {
	return w.WeekStart.AddDate(0, 0, 6)
}

// Contains reports whether the civil date of t falls inside the week.
func (w WeekInfo) Contains(t time.Time) bool {
	d := civilDate(t)
	return !d.Before(w.WeekStart) && !d.After(w.LastDay())
}

// WeekOf returns the week containing t. Only the civil date of t (in t's own
// location) matters; the result is expressed in UTC.
func WeekOf(t time.Time) WeekInfo {
	day := civilDate(t)
	start := day.AddDate(0, 0, -daysSinceMonday(day))
	last := start.AddDate(0, 0, 6)

	ownerYear, ownerMonth := start.Year(), start.Month()
	if start.Month() != last.Month() || start.Year() != last.Year() {
		boundary := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
		daysFirst := daysBetween(start, boundary)
		daysSecond := daysBetween(boundary, last.AddDate(0, 0, 1))
		if !FirstMonthOwns(daysFirst, daysSecond) {
			ownerYear, ownerMonth = boundary.Year(), boundary.Month()
		}
	}

	return WeekInfo{
		WeekStart:      start,
		WeekEnd:        start.AddDate(0, 0, 7).Add(-time.Nanosecond),
		WeekID:         start.Format(WeekIDLayout),
		BelongsToMonth: int(ownerMonth) - 1,
		BelongsToYear:  ownerYear,
		MonthLabel:     fmt.Sprintf("%s %d", ownerMonth, ownerYear),
		WeekLabel:      start.Format("Jan 02") + " - " + last.Format("Jan 02"),
	}
}

// FirstMonthOwns applies the majority-of-days rule to a week split across a
// month boundary. Ties go to the earlier month.
func FirstMonthOwns(daysInFirstMonth, daysInSecondMonth int) bool {
	return daysInFirstMonth >= daysInSecondMonth
}

// ParseWeekID parses a yyyy-MM-dd key. The date need not be a Monday;
// callers that want the canonical key should pass the result to WeekOf.
func ParseWeekID(id string) (time.Time, error) {
	t, err := time.Parse(WeekIDLayout, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse week id %q: %w", id, err)
	}
	return t, nil
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysSinceMonday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return wd - 1
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
