package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/revenuepro/internal/actuals"
	"github.com/sadopc/revenuepro/internal/config"
	"github.com/sadopc/revenuepro/internal/export"
	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/report"
	"github.com/sadopc/revenuepro/internal/store"
	"github.com/sadopc/revenuepro/internal/targets"
)

// Deps is everything the views read from and write to.
type Deps struct {
	Store   *store.Store
	Targets *targets.Store
	Actuals *actuals.Book
	Report  *report.Aggregator
	Config  *config.Config
	Log     *zap.Logger
	Now     func() time.Time
}

var exportFormats = []string{"CSV", "JSON", "XLSX"}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	log    *zap.Logger
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	targets   targetsModel
	actuals   actualsModel
	reports   reportsModel
	settings  settingsModel

	help        help.Model
	status      string
	statusError bool
}

func NewApp(deps Deps) App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}

	h := help.New()
	h.ShowAll = false

	return App{
		deps:       deps,
		log:        deps.Log.Named("tui"),
		activeView: viewDashboard,
		dashboard:  newDashboardModel(deps),
		targets:    newTargetsModel(deps),
		actuals:    newActualsModel(deps),
		reports:    newReportsModel(deps),
		settings:   newSettingsModel(deps),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.settings.refresh(),
		a.dashboard.Init(),
		a.targets.refresh(),
		a.actuals.refresh(),
		a.reports.refresh(),
	)
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.targets.setSize(a.width, contentHeight)
		a.actuals.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, a.reports.refresh()

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewTargets)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewActuals)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewReports)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		if msg.isError {
			a.log.Warn("status", zap.String("text", msg.text))
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusError = false
		a.exportPicking = false
		a.log.Info("export written", zap.String("path", msg.path))
		return a, nil

	case dataChangedMsg:
		return a, tea.Batch(
			a.dashboard.loadData(),
			a.targets.refresh(),
			a.actuals.refresh(),
			a.reports.refresh(),
			a.settings.refresh(),
		)

	// Data messages always reach their owner, whichever view is active.
	case dashboardDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd
	case targetsDataMsg:
		var cmd tea.Cmd
		a.targets, cmd = a.targets.update(msg)
		return a, cmd
	case actualsDataMsg:
		var cmd tea.Cmd
		a.actuals, cmd = a.actuals.update(msg)
		return a, cmd
	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd
	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, tea.Batch(cmd, a.applySettings(msg.settings))
	}

	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

// applySettings pushes stored display preferences into the views and reloads
// the ones whose data depends on them.
func (a *App) applySettings(settings []store.Setting) tea.Cmd {
	var cmds []tea.Cmd
	for _, s := range settings {
		switch s.Key {
		case settingCurrency:
			a.dashboard.currency = s.Value
			a.targets.currency = s.Value
			a.actuals.currency = s.Value
		case settingChartMetric:
			if i, ok := metrics.FieldIndex(s.Value); ok && i != a.reports.metric {
				a.reports.metric = i
				cmds = append(cmds, a.reports.refresh())
			}
		case settingDefaultPeriod:
			p, err := report.ParsePeriod(s.Value)
			if err != nil {
				a.log.Warn("ignoring stored period", zap.String("value", s.Value), zap.Error(err))
				continue
			}
			if p != a.dashboard.period {
				a.dashboard.period = p
				a.dashboard.offset = 0
				cmds = append(cmds, a.dashboard.loadData())
			}
		}
	}
	return tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewTargets:
		a.targets, cmd = a.targets.update(msg)
	case viewActuals:
		a.actuals, cmd = a.actuals.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTargets:
		return a.targets.formActive
	case viewActuals:
		return a.actuals.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewDashboard:
		return a.dashboard.loadData()
	case viewTargets:
		return a.targets.refresh()
	case viewActuals:
		return a.actuals.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewDashboard:
		content = a.dashboard.view()
	case viewTargets:
		content = a.targets.view()
	case viewActuals:
		content = a.actuals.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("revenuepro")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	if a.status != "" {
		if a.statusError {
			right = errorStyle.Render(" " + a.status)
		} else {
			right = successStyle.Render(" " + a.status)
		}
	}

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	rows := []string{
		titleStyle.Render("Export Format"),
		mutedStyle.Render(fmt.Sprintf("Weekly target vs actual for %d", a.reports.year)),
		"",
	}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor, a.reports.year)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) exportDir() string {
	if a.deps.Config != nil && a.deps.Config.ExportDir != "" {
		return a.deps.Config.ExportDir
	}
	return "."
}

func (a App) doExport(format, year int) tea.Cmd {
	return func() tea.Msg {
		rows := a.deps.Report.WeeklyRows(year)
		base := filepath.Join(a.exportDir(),
			fmt.Sprintf("revenuepro-%d-%s", year, a.deps.Now().Format("2006-01-02")))

		var path string
		var err error
		switch format {
		case 0:
			path = base + ".csv"
			err = export.ToCSV(rows, path)
		case 1:
			path = base + ".json"
			err = export.ToJSON(year, rows, path)
		default:
			path = base + ".xlsx"
			err = export.ToXLSX(rows, path)
		}
		if err != nil {
			return statusMsg{text: fmt.Sprintf("%s export error: %v", exportFormats[format], err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
