package calendar

import "time"

// MonthSummary is one entry of MonthsInYear.
type MonthSummary struct {
	Month     int // 0-11
	Label     string
	WeekCount int
}

// WeeksInMonth returns the weeks owned by (year, month), month being 0-11,
// in ascending order of WeekStart.
func WeeksInMonth(year, month int) []WeekInfo {
	first := time.Date(year, time.Month(month+1), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := first.AddDate(0, 1, -1)
	// No month owns a week starting more than 7 days past its last day.
	limit := monthEnd.AddDate(0, 0, 7)

	var weeks []WeekInfo
	for cursor := WeekOf(first).WeekStart; !cursor.After(limit); cursor = cursor.AddDate(0, 0, 7) {
		w := WeekOf(cursor)
		if w.BelongsToYear == year && w.BelongsToMonth == month {
			weeks = append(weeks, w)
		}
	}
	return weeks
}

// MonthsInYear lists all twelve months of year with their owned week counts.
func MonthsInYear(year int) []MonthSummary {
	months := make([]MonthSummary, 0, 12)
	for m := 0; m < 12; m++ {
		months = append(months, MonthSummary{
			Month:     m,
			Label:     time.Month(m + 1).String(),
			WeekCount: len(WeeksInMonth(year, m)),
		})
	}
	return months
}

// WeeksInYear returns every week owned by year, January first.
func WeeksInYear(year int) []WeekInfo {
	var weeks []WeekInfo
	for m := 0; m < 12; m++ {
		weeks = append(weeks, WeeksInMonth(year, m)...)
	}
	return weeks
}
