// Package report aggregates weekly targets and actuals into monthly and
// yearly views and compares them.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/revenuepro/internal/actuals"
	"github.com/sadopc/revenuepro/internal/calendar"
	"github.com/sadopc/revenuepro/internal/metrics"
)

// Period selects the granularity of a comparison.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

const monthLayout = "2006-01"

// ParsePeriod accepts "week", "month" or "year".
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodWeek, PeriodMonth, PeriodYear:
		return p, nil
	}
	return "", fmt.Errorf("unknown period %q", s)
}

// Identifier formats the key Comparison expects for the period containing t.
func Identifier(p Period, t time.Time) string {
	w := calendar.WeekOf(t)
	switch p {
	case PeriodWeek:
		return w.WeekID
	case PeriodMonth:
		return time.Date(w.BelongsToYear, time.Month(w.BelongsToMonth+1), 1, 0, 0, 0, 0, time.UTC).Format(monthLayout)
	default:
		return strconv.Itoa(w.BelongsToYear)
	}
}

type TargetSource interface {
	WeeklyTargets(weekID string) *metrics.Bundle
}

type ActualSource interface {
	Get(weekID string) *actuals.ActualData
}

// Aggregate pairs summed targets and actuals for one period.
type Aggregate struct {
	Targets metrics.Bundle `json:"targets"`
	Actuals metrics.Bundle `json:"actuals"`
}

// WeekRow is one owned week with its figures. Missing figures are zero.
type WeekRow struct {
	Week      calendar.WeekInfo
	Target    metrics.Bundle
	Actual    metrics.Bundle
	HasTarget bool
	HasActual bool
}

type Aggregator struct {
	targets TargetSource
	actuals ActualSource
}

func New(targets TargetSource, actuals ActualSource) *Aggregator {
	return &Aggregator{targets: targets, actuals: actuals}
}

func (a *Aggregator) week(w calendar.WeekInfo) WeekRow {
	row := WeekRow{Week: w}
	if t := a.targets.WeeklyTargets(w.WeekID); t != nil {
		row.Target, row.HasTarget = *t, true
	}
	if act := a.actuals.Get(w.WeekID); act != nil {
		row.Actual, row.HasActual = act.Bundle, true
	}
	return row
}

// MonthlyAggregates sums every week owned by (year, month).
func (a *Aggregator) MonthlyAggregates(year, month int) Aggregate {
	var agg Aggregate
	for _, w := range calendar.WeeksInMonth(year, month) {
		row := a.week(w)
		agg.Targets = agg.Targets.Add(row.Target)
		agg.Actuals = agg.Actuals.Add(row.Actual)
	}
	return agg
}

// YearlyAggregates sums the twelve monthly aggregates of year.
func (a *Aggregator) YearlyAggregates(year int) Aggregate {
	var agg Aggregate
	for m := 0; m < 12; m++ {
		month := a.MonthlyAggregates(year, m)
		agg.Targets = agg.Targets.Add(month.Targets)
		agg.Actuals = agg.Actuals.Add(month.Actuals)
	}
	return agg
}

// WeeklyRows lists every week owned by year in order.
func (a *Aggregator) WeeklyRows(year int) []WeekRow {
	weeks := calendar.WeeksInYear(year)
	rows := make([]WeekRow, 0, len(weeks))
	for _, w := range weeks {
		rows = append(rows, a.week(w))
	}
	return rows
}

// MonthRows lists the weeks owned by (year, month).
func (a *Aggregator) MonthRows(year, month int) []WeekRow {
	weeks := calendar.WeeksInMonth(year, month)
	rows := make([]WeekRow, 0, len(weeks))
	for _, w := range weeks {
		rows = append(rows, a.week(w))
	}
	return rows
}

// Comparison compares targets with actuals for one period. identifier is a
// yyyy-MM-dd date for weeks (any day of the week), yyyy-MM for months and
// yyyy for years.
func (a *Aggregator) Comparison(period Period, identifier string) (metrics.Comparison, error) {
	switch period {
	case PeriodWeek:
		day, err := calendar.ParseWeekID(identifier)
		if err != nil {
			return metrics.Comparison{}, err
		}
		row := a.week(calendar.WeekOf(day))
		return metrics.Compare(row.Target, row.Actual), nil

	case PeriodMonth:
		t, err := time.Parse(monthLayout, identifier)
		if err != nil {
			return metrics.Comparison{}, fmt.Errorf("parse month %q: %w", identifier, err)
		}
		agg := a.MonthlyAggregates(t.Year(), int(t.Month())-1)
		return metrics.Compare(agg.Targets, agg.Actuals), nil

	case PeriodYear:
		year, err := strconv.Atoi(identifier)
		if err != nil {
			return metrics.Comparison{}, fmt.Errorf("parse year %q: %w", identifier, err)
		}
		agg := a.YearlyAggregates(year)
		return metrics.Compare(agg.Targets, agg.Actuals), nil
	}
	return metrics.Comparison{}, fmt.Errorf("unknown period %q", period)
}
