package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/revenuepro/internal/calendar"
	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/targets"
)

type editLevel int

const (
	editYear editLevel = iota
	editMonth
	editWeek
)

type targetsModel struct {
	targets *targets.Store
	width   int
	height  int

	year       int
	cursor     int // month 0-11
	weekCursor int
	focusWeeks bool
	yearly     *targets.YearlyTargets
	currency   string

	formActive bool
	form       *huh.Form
	editing    editLevel
	editWeekID string
	input      bundleForm
}

func newTargetsModel(deps Deps) targetsModel {
	w := calendar.WeekOf(deps.Now())
	return targetsModel{
		targets:  deps.Targets,
		year:     w.BelongsToYear,
		cursor:   w.BelongsToMonth,
		currency: "$",
		input:    newBundleForm(),
	}
}

func (t *targetsModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type targetsDataMsg struct {
	year   int
	yearly *targets.YearlyTargets
}

func (t targetsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return targetsDataMsg{year: t.year, yearly: t.targets.YearlyTargets(t.year)}
	}
}

func (t targetsModel) weeks() []calendar.WeekInfo {
	return calendar.WeeksInMonth(t.year, t.cursor)
}

func (t targetsModel) update(msg tea.Msg) (targetsModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case targetsDataMsg:
		if msg.year == t.year {
			t.yearly = msg.yearly
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.focusWeeks {
				t.weekCursor = max(t.weekCursor-1, 0)
			} else {
				t.cursor = max(t.cursor-1, 0)
			}
		case key.Matches(msg, keys.Down):
			if t.focusWeeks {
				t.weekCursor = min(t.weekCursor+1, len(t.weeks())-1)
			} else {
				t.cursor = min(t.cursor+1, 11)
			}
		case key.Matches(msg, keys.Left):
			t.year--
			t.focusWeeks = false
			return t, t.refresh()
		case key.Matches(msg, keys.Right):
			t.year++
			t.focusWeeks = false
			return t, t.refresh()
		case key.Matches(msg, keys.Enter):
			t.focusWeeks = true
			t.weekCursor = 0
		case key.Matches(msg, keys.Back):
			t.focusWeeks = false
		case key.Matches(msg, keys.EditYear):
			return t.showForm(editYear)
		case key.Matches(msg, keys.Edit):
			if t.focusWeeks {
				return t.showForm(editWeek)
			}
			return t.showForm(editMonth)
		}
	}
	return t, nil
}

func (t targetsModel) showForm(level editLevel) (targetsModel, tea.Cmd) {
	if level != editYear && t.yearly == nil {
		return t, statusCmd(fmt.Sprintf("Set yearly targets for %d first (y)", t.year), true)
	}

	var title string
	var current metrics.Bundle
	switch level {
	case editYear:
		title = fmt.Sprintf("Yearly targets %d (replaces all monthly and weekly targets)", t.year)
		if t.yearly != nil {
			current = t.yearly.Bundle
		}
	case editMonth:
		title = fmt.Sprintf("%s %d targets", time.Month(t.cursor+1), t.year)
		current = t.yearly.MonthlyBreakdown[t.cursor].Bundle
	case editWeek:
		weeks := t.weeks()
		if len(weeks) == 0 {
			return t, nil
		}
		w := weeks[min(t.weekCursor, len(weeks)-1)]
		t.editWeekID = w.WeekID
		title = "Week " + w.WeekLabel + " targets"
		if b := t.targets.WeeklyTargets(w.WeekID); b != nil {
			current = *b
		}
	}

	t.editing = level
	t.input.fill(current, "")
	t.form = t.input.form(title, false)
	t.formActive = true
	return t, t.form.Init()
}

func (t targetsModel) updateForm(msg tea.Msg) (targetsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		t.form = nil
		if err := t.apply(); err != nil {
			return t, statusCmd(fmt.Sprintf("Save failed: %v", err), true)
		}
		return t, tea.Batch(dataChangedCmd, statusCmd("Targets saved", false))
	}

	return t, cmd
}

// apply writes the form's figures at the level being edited.
func (t targetsModel) apply() error {
	b, err := t.input.bundle()
	if err != nil {
		return err
	}
	switch t.editing {
	case editYear:
		return t.targets.SetYearlyTargets(t.year, b)
	case editMonth:
		return t.targets.SetMonthlyTargets(t.year, t.cursor, b)
	default:
		return t.targets.SetWeeklyTargets(t.editWeekID, b)
	}
}

func (t targetsModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Edit Targets"), "", t.form.View()),
		)
	}

	title := titleStyle.Render(fmt.Sprintf("Targets %d", t.year))
	if t.yearly == nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "",
			mutedStyle.Render("  No targets for this year. Press y to set yearly targets."),
			"", mutedStyle.Render("  ←/→: year"),
		))
	}

	rows := []string{title, "", t.renderYearTotals(), ""}
	rows = append(rows, columnHeaderStyle.Render(fmt.Sprintf("  %-12s %5s %10s %10s %14s", "Month", "Weeks", "Leads", "Jobs", "Revenue")))
	for m, summary := range calendar.MonthsInYear(t.year) {
		mt := t.yearly.MonthlyBreakdown[m]
		line := fmt.Sprintf("%-12s %5d %10s %10s %14s",
			summary.Label, summary.WeekCount,
			formatAmount(mt.Leads), formatAmount(mt.JobsBooked), formatField(4, mt.SalesRevenue, t.currency))
		if m == t.cursor && !t.focusWeeks {
			rows = append(rows, selectedItemStyle.Render("> "+line))
		} else {
			rows = append(rows, normalItemStyle.Render("  "+line))
		}
		if m == t.cursor && t.focusWeeks {
			rows = append(rows, t.renderWeeks(mt))
		}
	}

	hint := "  ↑/↓: month  enter: weeks  n: edit month  y: edit year  ←/→: year"
	if t.focusWeeks {
		hint = "  ↑/↓: week  n: edit week  esc: back to months"
	}
	rows = append(rows, "", mutedStyle.Render(hint))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (t targetsModel) renderYearTotals() string {
	var parts []string
	for i, v := range t.yearly.Bundle.Values() {
		parts = append(parts, fmt.Sprintf("%s %s", mutedStyle.Render(metrics.FieldLabels[i]+":"), highlightStyle.Render(formatField(i, v, t.currency))))
	}
	return "  " + strings.Join(parts, "  ")
}

func (t targetsModel) renderWeeks(mt targets.MonthlyTargets) string {
	var rows []string
	for i, w := range t.weeks() {
		b := mt.WeeklyBreakdown[w.WeekID]
		line := fmt.Sprintf("%-18s %10s %10s %14s", w.WeekLabel,
			formatAmount(b.Leads), formatAmount(b.JobsBooked), formatField(4, b.SalesRevenue, t.currency))
		if i == t.weekCursor {
			rows = append(rows, selectedItemStyle.Render("    > "+line))
		} else {
			rows = append(rows, normalItemStyle.Render("      "+line))
		}
	}
	return strings.Join(rows, "\n")
}
