package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/report"
)

var periodOrder = []report.Period{report.PeriodWeek, report.PeriodMonth, report.PeriodYear}

type dashboardModel struct {
	report *report.Aggregator
	now    func() time.Time
	width  int
	height int

	period     report.Period
	offset     int
	currency   string
	comparison metrics.Comparison
	err        error
}

func newDashboardModel(deps Deps) dashboardModel {
	return dashboardModel{
		report:   deps.Report,
		now:      deps.Now,
		period:   report.PeriodMonth,
		currency: "$",
	}
}

func (d dashboardModel) Init() tea.Cmd {
	return d.loadData()
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

type dashboardDataMsg struct {
	comparison metrics.Comparison
	err        error
}

func (d dashboardModel) anchor() time.Time {
	return periodAnchor(d.period, d.now(), d.offset)
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		id := report.Identifier(d.period, d.anchor())
		c, err := d.report.Comparison(d.period, id)
		return dashboardDataMsg{comparison: c, err: err}
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.comparison = msg.comparison
		d.err = msg.err
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			d.offset--
			return d, d.loadData()
		case key.Matches(msg, keys.Right):
			d.offset++
			return d, d.loadData()
		case key.Matches(msg, keys.Period):
			d.period = nextPeriod(d.period)
			d.offset = 0
			return d, d.loadData()
		}
	}
	return d, nil
}

func nextPeriod(p report.Period) report.Period {
	for i, q := range periodOrder {
		if q == p {
			return periodOrder[(i+1)%len(periodOrder)]
		}
	}
	return report.PeriodMonth
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	var tabs []string
	for _, p := range periodOrder {
		name := strings.ToUpper(string(p[:1])) + string(p[1:])
		if p == d.period {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Target vs Actual"), "  ",
		lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...), "  ",
		mutedStyle.Render(periodLabel(d.period, d.anchor())),
	)

	if d.err != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", errorStyle.Render(d.err.Error())))
	}

	nav := mutedStyle.Render("  ←/→: navigate  p: switch period")
	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", d.renderComparison(), "", nav)),
		d.renderRates(w),
	)
}

func (d dashboardModel) renderComparison() string {
	c := d.comparison
	rows := []string{columnHeaderStyle.Render(fmt.Sprintf("  %-22s %14s %14s %14s %9s",
		"Metric", "Target", "Actual", "Variance", "Achieved"))}
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", 77)))

	target, actual := c.Target.Values(), c.Actual.Values()
	variance, pct := c.Variance.Values(), c.PercentageAchieved.Values()
	for i, label := range metrics.FieldLabels {
		varStr := formatField(i, variance[i], d.currency)
		switch {
		case variance[i] > 0:
			varStr = aheadStyle.Render(fmt.Sprintf("%14s", "+"+varStr))
		case variance[i] < 0:
			varStr = behindStyle.Render(fmt.Sprintf("%14s", varStr))
		default:
			varStr = fmt.Sprintf("%14s", varStr)
		}
		rows = append(rows, fmt.Sprintf("  %-22s %14s %14s %s %9s",
			label,
			formatField(i, target[i], d.currency),
			formatField(i, actual[i], d.currency),
			varStr,
			formatPercent(pct[i]),
		))
	}
	return strings.Join(rows, "\n")
}

func (d dashboardModel) renderRates(w int) string {
	f := d.comparison.FunnelMetrics
	c := d.comparison.CostMetrics
	money := func(v float64) string { return formatField(4, v, d.currency) }

	funnel := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Funnel"),
		fmt.Sprintf("Appointment rate  %s", highlightStyle.Render(formatPercent(f.AppointmentRate))),
		fmt.Sprintf("Show rate         %s", highlightStyle.Render(formatPercent(f.ShowRate))),
		fmt.Sprintf("Close rate        %s", highlightStyle.Render(formatPercent(f.CloseRate))),
		fmt.Sprintf("Lead to sale      %s", highlightStyle.Render(formatPercent(f.LeadToSaleRate))),
	)
	costs := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Cost per"),
		fmt.Sprintf("Lead              %s", highlightStyle.Render(money(c.CostPerLead))),
		fmt.Sprintf("Appointment set   %s", highlightStyle.Render(money(c.CostPerAppointmentSet))),
		fmt.Sprintf("Appointment done  %s", highlightStyle.Render(money(c.CostPerAppointmentComplete))),
		fmt.Sprintf("Job booked        %s", highlightStyle.Render(money(c.CostPerJobBooked))),
	)

	half := max(w/2-1, 20)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(half).Render(funnel),
		panelStyle.Width(half).Render(costs),
	)
}
