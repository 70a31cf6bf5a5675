package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/revenuepro/internal/actuals"
	"github.com/sadopc/revenuepro/internal/calendar"
	"github.com/sadopc/revenuepro/internal/report"
)

type actualsModel struct {
	book   *actuals.Book
	report *report.Aggregator
	width  int
	height int

	year     int
	month    int
	cursor   int
	rows     []report.WeekRow
	currency string

	formActive bool
	form       *huh.Form
	editWeek   calendar.WeekInfo
	input      bundleForm
}

func newActualsModel(deps Deps) actualsModel {
	w := calendar.WeekOf(deps.Now())
	m := actualsModel{
		book:     deps.Actuals,
		report:   deps.Report,
		year:     w.BelongsToYear,
		month:    w.BelongsToMonth,
		currency: "$",
		input:    newBundleForm(),
	}
	// Start on the current week.
	for i, wk := range calendar.WeeksInMonth(m.year, m.month) {
		if wk.WeekID == w.WeekID {
			m.cursor = i
		}
	}
	return m
}

func (a *actualsModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

type actualsDataMsg struct {
	year, month int
	rows        []report.WeekRow
}

func (a actualsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return actualsDataMsg{year: a.year, month: a.month, rows: a.report.MonthRows(a.year, a.month)}
	}
}

func (a actualsModel) update(msg tea.Msg) (actualsModel, tea.Cmd) {
	if a.formActive && a.form != nil {
		return a.updateForm(msg)
	}

	switch msg := msg.(type) {
	case actualsDataMsg:
		if msg.year == a.year && msg.month == a.month {
			a.rows = msg.rows
			a.cursor = min(a.cursor, max(len(a.rows)-1, 0))
		}
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			a.cursor = max(a.cursor-1, 0)
		case key.Matches(msg, keys.Down):
			a.cursor = min(a.cursor+1, max(len(a.rows)-1, 0))
		case key.Matches(msg, keys.Left):
			a.year, a.month = shiftMonth(a.year, a.month, -1)
			a.cursor = 0
			return a, a.refresh()
		case key.Matches(msg, keys.Right):
			a.year, a.month = shiftMonth(a.year, a.month, 1)
			a.cursor = 0
			return a, a.refresh()
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			return a.showForm()
		}
	}
	return a, nil
}

func (a actualsModel) showForm() (actualsModel, tea.Cmd) {
	if len(a.rows) == 0 {
		return a, nil
	}
	row := a.rows[a.cursor]
	a.editWeek = row.Week
	notes := ""
	if e := a.book.Get(row.Week.WeekID); e != nil {
		notes = e.Notes
	}
	a.input.fill(row.Actual, notes)
	a.form = a.input.form("Actuals for week "+row.Week.WeekLabel, true)
	a.formActive = true
	return a, a.form.Init()
}

func (a actualsModel) updateForm(msg tea.Msg) (actualsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.formActive = false
			a.form = nil
			return a, nil
		}
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State == huh.StateCompleted {
		a.formActive = false
		a.form = nil
		if err := a.apply(); err != nil {
			return a, statusCmd(fmt.Sprintf("Save failed: %v", err), true)
		}
		return a, tea.Batch(dataChangedCmd, statusCmd("Actuals saved for "+a.editWeek.WeekID, false))
	}

	return a, cmd
}

func (a actualsModel) apply() error {
	b, err := a.input.bundle()
	if err != nil {
		return err
	}
	_, err = a.book.Record(a.editWeek.WeekStart, b, *a.input.notes)
	return err
}

func (a actualsModel) view() string {
	w := a.width - 4

	if a.formActive && a.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Record Actuals"), "", a.form.View()),
		)
	}

	title := titleStyle.Render(fmt.Sprintf("Actuals %s %d", time.Month(a.month+1), a.year))
	rows := []string{title, ""}
	rows = append(rows, columnHeaderStyle.Render(fmt.Sprintf("  %-18s %8s %8s %8s %8s %12s %12s",
		"Week", "Leads", "Set", "Done", "Jobs", "Revenue", "Spend")))

	for i, r := range a.rows {
		line := fmt.Sprintf("%-18s %8s %8s %8s %8s %12s %12s",
			r.Week.WeekLabel,
			formatAmount(r.Actual.Leads),
			formatAmount(r.Actual.AppointmentsSet),
			formatAmount(r.Actual.AppointmentsComplete),
			formatAmount(r.Actual.JobsBooked),
			formatField(4, r.Actual.SalesRevenue, a.currency),
			formatField(5, r.Actual.MetaBudgetSpent, a.currency),
		)
		if !r.HasActual {
			line = fmt.Sprintf("%-18s %s", r.Week.WeekLabel, mutedStyle.Render("not recorded"))
		}
		if i == a.cursor {
			rows = append(rows, selectedItemStyle.Render("> ")+line)
		} else {
			rows = append(rows, "  "+line)
		}
		if i == a.cursor && r.HasActual {
			if e := a.book.Get(r.Week.WeekID); e != nil && e.Notes != "" {
				rows = append(rows, mutedStyle.Render("    "+e.Notes))
			}
		}
	}

	rows = append(rows, "", mutedStyle.Render("  ↑/↓: week  n/enter: record  ←/→: month"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
