package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/revenuepro/internal/calendar"
	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/report"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTargets
	viewActuals
	viewReports
	viewSettings
)

var viewNames = []string{"Dashboard", "Targets", "Actuals", "Reports", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// dataChangedMsg tells every view to reload after a mutation.
type dataChangedMsg struct{}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

func dataChangedCmd() tea.Msg { return dataChangedMsg{} }

// --- Helpers ---

func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatField(i int, v float64, currency string) string {
	if metrics.IsMoneyField(i) {
		return currency + strconv.FormatFloat(v, 'f', 2, 64)
	}
	return formatAmount(v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// parseAmount reads a user-entered number. Blank means zero; thousands
// separators and a leading currency symbol are ignored.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "$€£")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func validateAmount(s string) error {
	_, err := parseAmount(s)
	return err
}

// periodAnchor returns a date inside the period offset steps away from the
// one containing now.
func periodAnchor(p report.Period, now time.Time, offset int) time.Time {
	w := calendar.WeekOf(now)
	switch p {
	case report.PeriodWeek:
		return w.WeekStart.AddDate(0, 0, 7*offset)
	case report.PeriodMonth:
		// The week holding the 15th always belongs to that month.
		return time.Date(w.BelongsToYear, time.Month(w.BelongsToMonth+1+offset), 15, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(w.BelongsToYear+offset, time.July, 1, 0, 0, 0, 0, time.UTC)
	}
}

func periodLabel(p report.Period, anchor time.Time) string {
	w := calendar.WeekOf(anchor)
	switch p {
	case report.PeriodWeek:
		return w.WeekLabel + ", " + strconv.Itoa(w.WeekStart.Year())
	case report.PeriodMonth:
		return w.MonthLabel
	default:
		return strconv.Itoa(w.BelongsToYear)
	}
}

// shiftMonth moves (year, month0) by delta months.
func shiftMonth(year, month, delta int) (int, int) {
	t := time.Date(year, time.Month(month+1+delta), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month()) - 1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
