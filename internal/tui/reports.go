package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/revenuepro/internal/calendar"
	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/report"
)

type reportMode int

const (
	reportMonthly reportMode = iota
	reportYearly
)

type reportBar struct {
	label  string
	target float64
	actual float64
}

type reportsModel struct {
	report *report.Aggregator
	width  int
	height int

	mode   reportMode
	year   int
	month  int
	metric int // index into metrics.FieldLabels
	bars   []reportBar

	chart barchart.Model
}

func newReportsModel(deps Deps) reportsModel {
	w := calendar.WeekOf(deps.Now())
	return reportsModel{
		report: deps.Report,
		year:   w.BelongsToYear,
		month:  w.BelongsToMonth,
		chart:  barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	bars []reportBar
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return reportsDataMsg{bars: r.collect()}
	}
}

func (r reportsModel) collect() []reportBar {
	var bars []reportBar
	if r.mode == reportYearly {
		for _, m := range calendar.MonthsInYear(r.year) {
			agg := r.report.MonthlyAggregates(r.year, m.Month)
			bars = append(bars, reportBar{
				label:  m.Label[:3],
				target: agg.Targets.Values()[r.metric],
				actual: agg.Actuals.Values()[r.metric],
			})
		}
		return bars
	}
	for _, row := range r.report.MonthRows(r.year, r.month) {
		bars = append(bars, reportBar{
			label:  row.Week.WeekStart.Format("Jan 02"),
			target: row.Target.Values()[r.metric],
			actual: row.Actual.Values()[r.metric],
		})
	}
	return bars
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.bars = msg.bars
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.step(-1)
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			r.step(1)
			return r, r.refresh()
		case key.Matches(msg, keys.Period):
			if r.mode == reportMonthly {
				r.mode = reportYearly
			} else {
				r.mode = reportMonthly
			}
			return r, r.refresh()
		case key.Matches(msg, keys.Up):
			r.metric = (r.metric + len(metrics.FieldLabels) - 1) % len(metrics.FieldLabels)
			return r, r.refresh()
		case key.Matches(msg, keys.Down):
			r.metric = (r.metric + 1) % len(metrics.FieldLabels)
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) step(delta int) {
	if r.mode == reportYearly {
		r.year += delta
		return
	}
	r.year, r.month = shiftMonth(r.year, r.month, delta)
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	targetStyle := lipgloss.NewStyle().Foreground(colorSubtle)
	actualStyle := lipgloss.NewStyle().Foreground(colorPrimary)

	var data []barchart.BarData
	for _, b := range r.bars {
		data = append(data, barchart.BarData{
			Label:  b.label + " T",
			Values: []barchart.BarValue{{Name: "Target", Value: b.target, Style: targetStyle}},
		}, barchart.BarData{
			Label:  b.label + " A",
			Values: []barchart.BarValue{{Name: "Actual", Value: b.actual, Style: actualStyle}},
		})
	}

	r.chart.PushAll(data)
	r.chart.Draw()
}

func (r reportsModel) title() string {
	if r.mode == reportYearly {
		return fmt.Sprintf("%s by month, %d", metrics.FieldLabels[r.metric], r.year)
	}
	return fmt.Sprintf("%s by week, %s %d", metrics.FieldLabels[r.metric], time.Month(r.month+1), r.year)
}

func (r reportsModel) view() string {
	w := r.width - 4

	monthTab := inactiveTabStyle.Render("Month")
	yearTab := inactiveTabStyle.Render("Year")
	if r.mode == reportMonthly {
		monthTab = activeTabStyle.Render("Month")
	} else {
		yearTab = activeTabStyle.Render("Year")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, monthTab, yearTab), "  ",
		mutedStyle.Render(r.title()),
	)

	legend := "  " + lipgloss.NewStyle().Foreground(colorSubtle).Render("■ target") +
		"  " + lipgloss.NewStyle().Foreground(colorPrimary).Render("■ actual")

	nav := mutedStyle.Render("  ←/→: navigate  ↑/↓: metric  p: month/year")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", legend, "", r.renderTable(w), "", nav,
		),
	)
}

func (r reportsModel) renderTable(w int) string {
	if len(r.bars) == 0 {
		return mutedStyle.Render("  No data for this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-10s %14s %14s %9s", "Period", "Target", "Actual", "Achieved")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 50))))
	for _, b := range r.bars {
		rows = append(rows, fmt.Sprintf("  %-10s %14s %14s %9s",
			b.label, formatAmount(b.target), formatAmount(b.actual),
			formatPercent(metrics.SafeDiv(b.actual, b.target)*100),
		))
	}
	return strings.Join(rows, "\n")
}
