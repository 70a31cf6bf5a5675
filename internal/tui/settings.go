package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/revenuepro/internal/config"
	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/report"
	"github.com/sadopc/revenuepro/internal/store"
)

const (
	settingCurrency      = "currency"
	settingChartMetric   = "chart_metric"
	settingDefaultPeriod = "default_period"
)

type settingsModel struct {
	store  *store.Store
	cfg    *config.Config
	width  int
	height int

	settings   []store.Setting
	snapshots  []store.SnapshotInfo
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	currency      *string
	chartMetric   *string
	defaultPeriod *string
}

func newSettingsModel(deps Deps) settingsModel {
	c, cm, dp := "", "", ""
	return settingsModel{
		store:         deps.Store,
		cfg:           deps.Config,
		currency:      &c,
		chartMetric:   &cm,
		defaultPeriod: &dp,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings  []store.Setting
	snapshots []store.SnapshotInfo
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		snapshots, _ := s.store.ListSnapshots()
		return settingsDataMsg{settings: settings, snapshots: snapshots}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.snapshots = msg.snapshots
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.currency = s.getVal(settingCurrency, "$")
	*s.chartMetric = s.getVal(settingChartMetric, metrics.FieldKeys[0])
	*s.defaultPeriod = s.getVal(settingDefaultPeriod, string(report.PeriodMonth))

	metricOpts := make([]huh.Option[string], len(metrics.FieldKeys))
	for i, k := range metrics.FieldKeys {
		metricOpts[i] = huh.NewOption(metrics.FieldLabels[i], k)
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Currency symbol").Value(s.currency).
				Validate(func(v string) error {
					if v == "" || len([]rune(v)) > 3 {
						return fmt.Errorf("use one to three characters")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Chart metric").
				Options(metricOpts...).
				Value(s.chartMetric),
			huh.NewSelect[string]().Title("Dashboard period").
				Options(
					huh.NewOption("Week", string(report.PeriodWeek)),
					huh.NewOption("Month", string(report.PeriodMonth)),
					huh.NewOption("Year", string(report.PeriodYear)),
				).Value(s.defaultPeriod),
		).Title("Display"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Save failed: %v", err), true)
		}
		return s, tea.Batch(s.refresh(), statusCmd("Settings saved", false))
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	return s.store.SetSettings(map[string]string{
		settingCurrency:      *s.currency,
		settingChartMetric:   *s.chartMetric,
		settingDefaultPeriod: *s.defaultPeriod,
	})
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	rows := []string{title, ""}
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	if s.cfg != nil {
		rows = append(rows, "", columnHeaderStyle.Render("  Paths"))
		for _, p := range [][2]string{
			{"database", s.cfg.DBPath},
			{"log file", s.cfg.LogFile},
			{"exports", s.cfg.ExportDir},
		} {
			rows = append(rows, fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(p[0]), mutedStyle.Render(p[1])))
		}
	}

	rows = append(rows, "", columnHeaderStyle.Render("  Saved data"))
	if len(s.snapshots) == 0 {
		rows = append(rows, mutedStyle.Render("  nothing saved yet"))
	}
	for _, snap := range s.snapshots {
		rows = append(rows, fmt.Sprintf("  %s %s",
			lipgloss.NewStyle().Width(24).Render(snap.Name),
			mutedStyle.Render(fmt.Sprintf("%d bytes, updated %s", snap.Size, snap.UpdatedAt.Local().Format("Jan 02 15:04"))),
		))
	}

	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	if k == settingChartMetric {
		if i, ok := metrics.FieldIndex(v); ok {
			return metrics.FieldLabels[i]
		}
	}
	return v
}
