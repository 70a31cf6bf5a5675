package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/revenuepro/internal/actuals"
	"github.com/sadopc/revenuepro/internal/calendar"
	"github.com/sadopc/revenuepro/internal/config"
	"github.com/sadopc/revenuepro/internal/metrics"
	"github.com/sadopc/revenuepro/internal/report"
	"github.com/sadopc/revenuepro/internal/store"
	"github.com/sadopc/revenuepro/internal/targets"
)

// Wednesday of the week Mar 10 - Mar 16 2025.
var fixedNow = time.Date(2025, time.March, 12, 9, 30, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestDeps(t *testing.T) Deps {
	t.Helper()
	s := newTestStore(t)
	tg := targets.New(s, nil)
	ac := actuals.New(s, nil)
	return Deps{
		Store:   s,
		Targets: tg,
		Actuals: ac,
		Report:  report.New(tg, ac),
		Config:  &config.Config{ExportDir: t.TempDir()},
		Now:     func() time.Time { return fixedNow },
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ============================================================
// Helpers
// ============================================================

func TestPeriodAnchor(t *testing.T) {
	tests := []struct {
		name   string
		period report.Period
		now    time.Time
		offset int
		want   time.Time
	}{
		{"this week", report.PeriodWeek, fixedNow, 0, day(2025, time.March, 10)},
		{"last week", report.PeriodWeek, fixedNow, -1, day(2025, time.March, 3)},
		{"next month", report.PeriodMonth, fixedNow, 1, day(2025, time.April, 15)},
		{"month across year", report.PeriodMonth, fixedNow, -3, day(2024, time.December, 15)},
		{"last year", report.PeriodYear, fixedNow, -1, day(2024, time.July, 1)},
		// Dec 31 2025 sits in a week owned by January 2026.
		{"owning month", report.PeriodMonth, day(2025, time.December, 31), 0, day(2026, time.January, 15)},
		{"owning year", report.PeriodYear, day(2025, time.December, 31), 0, day(2026, time.July, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := periodAnchor(tt.period, tt.now, tt.offset)
			if !got.Equal(tt.want) {
				t.Fatalf("periodAnchor = %s, want %s", got.Format("2006-01-02"), tt.want.Format("2006-01-02"))
			}
		})
	}
}

func TestPeriodLabel(t *testing.T) {
	if got := periodLabel(report.PeriodMonth, day(2026, time.January, 15)); got != "January 2026" {
		t.Fatalf("month label = %q", got)
	}
	if got := periodLabel(report.PeriodYear, day(2025, time.July, 1)); got != "2025" {
		t.Fatalf("year label = %q", got)
	}
	if got := periodLabel(report.PeriodWeek, fixedNow); got != "Mar 10 - Mar 16, 2025" {
		t.Fatalf("week label = %q", got)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"42", 42, false},
		{" 1,200 ", 1200, false},
		{"$99.50", 99.5, false},
		{"€15", 15, false},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"inf", 0, true},
		{"+Inf", 0, true},
		{"-infinity", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseAmount(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1200, "1200"},
		{12.5, "12.50"},
		{33.333, "33.33"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.in); got != tt.want {
			t.Fatalf("formatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatField(t *testing.T) {
	if got := formatField(4, 10, "€"); got != "€10.00" {
		t.Fatalf("money field = %q", got)
	}
	if got := formatField(0, 10, "€"); got != "10" {
		t.Fatalf("count field = %q", got)
	}
}

func TestShiftMonth(t *testing.T) {
	tests := []struct {
		year, month, delta int
		wantYear, wantMon  int
	}{
		{2025, 0, -1, 2024, 11},
		{2025, 11, 1, 2026, 0},
		{2025, 5, 0, 2025, 5},
		{2025, 2, 13, 2026, 3},
	}
	for _, tt := range tests {
		y, m := shiftMonth(tt.year, tt.month, tt.delta)
		if y != tt.wantYear || m != tt.wantMon {
			t.Fatalf("shiftMonth(%d, %d, %d) = %d, %d", tt.year, tt.month, tt.delta, y, m)
		}
	}
}

func TestMinMax(t *testing.T) {
	if min(3, 5) != 3 || min(5, 3) != 3 {
		t.Fatal("min broken")
	}
	if max(3, 5) != 5 || max(5, 3) != 5 {
		t.Fatal("max broken")
	}
}

// ============================================================
// Forms
// ============================================================

func TestBundleFormRoundTrip(t *testing.T) {
	f := newBundleForm()
	want := metrics.Bundle{Leads: 100, JobsBooked: 7, SalesRevenue: 2500.5}
	f.fill(want, "note")

	if *f.fields[0] != "100" {
		t.Fatalf("leads field = %q", *f.fields[0])
	}
	if *f.notes != "note" {
		t.Fatalf("notes = %q", *f.notes)
	}
	got, err := f.bundle()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("bundle = %+v, want %+v", got, want)
	}
}

func TestBundleFormRejectsNonFinite(t *testing.T) {
	f := newBundleForm()
	*f.fields[0] = "inf"
	if _, err := f.bundle(); err == nil {
		t.Fatal("expected error for infinite input")
	}
	if err := validateAmount("NaN"); err == nil {
		t.Fatal("validateAmount should reject NaN")
	}
}

func TestBundleFormRejectsText(t *testing.T) {
	f := newBundleForm()
	*f.fields[3] = "lots"
	if _, err := f.bundle(); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}

// ============================================================
// View state
// ============================================================

func TestViewNames(t *testing.T) {
	if len(viewNames) != 5 {
		t.Fatalf("expected 5 view names, got %d", len(viewNames))
	}
	if viewNames[viewActuals] != "Actuals" || viewNames[viewSettings] != "Settings" {
		t.Fatalf("view names out of order: %v", viewNames)
	}
}

// ============================================================
// Dashboard
// ============================================================

func TestNextPeriodCycles(t *testing.T) {
	p := report.PeriodWeek
	for _, want := range []report.Period{report.PeriodMonth, report.PeriodYear, report.PeriodWeek} {
		p = nextPeriod(p)
		if p != want {
			t.Fatalf("nextPeriod = %s, want %s", p, want)
		}
	}
}

func TestDashboardLoadData(t *testing.T) {
	deps := newTestDeps(t)
	if err := deps.Targets.SetYearlyTargets(2025, metrics.Bundle{Leads: 1200}); err != nil {
		t.Fatal(err)
	}
	if _, err := deps.Actuals.Record(fixedNow, metrics.Bundle{Leads: 50}, ""); err != nil {
		t.Fatal(err)
	}

	d := newDashboardModel(deps)
	d.period = report.PeriodWeek
	msg, ok := d.loadData()().(dashboardDataMsg)
	if !ok {
		t.Fatal("loadData should produce dashboardDataMsg")
	}
	if msg.err != nil {
		t.Fatal(msg.err)
	}
	// 100 leads for March, split over its four weeks.
	c := msg.comparison
	if c.Target.Leads != 25 || c.Actual.Leads != 50 {
		t.Fatalf("target/actual = %v/%v", c.Target.Leads, c.Actual.Leads)
	}
	if c.Variance.Leads != 25 || c.PercentageAchieved.Leads != 200 {
		t.Fatalf("variance/pct = %v/%v", c.Variance.Leads, c.PercentageAchieved.Leads)
	}

	d, _ = d.update(msg)
	if d.comparison.Actual.Leads != 50 {
		t.Fatal("update should store comparison")
	}
}

func TestDashboardNavigationReloads(t *testing.T) {
	deps := newTestDeps(t)
	d := newDashboardModel(deps)

	d, cmd := d.update(tea.KeyMsg{Type: tea.KeyLeft})
	if d.offset != -1 || cmd == nil {
		t.Fatalf("left should step back and reload, offset=%d", d.offset)
	}
	d, _ = d.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if d.period != report.PeriodYear || d.offset != 0 {
		t.Fatalf("p should switch period and reset offset, got %s/%d", d.period, d.offset)
	}
}

// ============================================================
// Targets
// ============================================================

func TestTargetsApplyLevels(t *testing.T) {
	deps := newTestDeps(t)
	m := newTargetsModel(deps)
	if m.year != 2025 || m.cursor != 2 {
		t.Fatalf("expected March 2025 selected, got %d/%d", m.year, m.cursor)
	}

	m.editing = editYear
	m.input.fill(metrics.Bundle{Leads: 1200}, "")
	if err := m.apply(); err != nil {
		t.Fatal(err)
	}
	if y := deps.Targets.YearlyTargets(2025); y == nil || y.Leads != 1200 {
		t.Fatalf("yearly = %+v", y)
	}

	m.editing = editMonth
	m.input.fill(metrics.Bundle{Leads: 400}, "")
	if err := m.apply(); err != nil {
		t.Fatal(err)
	}
	if w := deps.Targets.WeeklyTargets("2025-03-10"); w == nil || w.Leads != 100 {
		t.Fatalf("week after month edit = %+v", w)
	}
	if y := deps.Targets.YearlyTargets(2025); y.Leads != 1500 {
		t.Fatalf("year should re-total to 1500, got %v", y.Leads)
	}

	m.editing = editWeek
	m.editWeekID = "2025-03-10"
	m.input.fill(metrics.Bundle{Leads: 160}, "")
	if err := m.apply(); err != nil {
		t.Fatal(err)
	}
	if mt := deps.Targets.MonthlyTargets(2025, 2); mt == nil || mt.Leads != 460 {
		t.Fatalf("month should re-total to 460, got %+v", mt)
	}
}

func TestTargetsFormNeedsYear(t *testing.T) {
	deps := newTestDeps(t)
	m := newTargetsModel(deps)

	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.formActive {
		t.Fatal("month form should not open without yearly targets")
	}
	if cmd == nil {
		t.Fatal("expected a status command")
	}
	status, ok := cmd().(statusMsg)
	if !ok || !status.isError || !strings.Contains(status.text, "2025") {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestTargetsYearlyFormOpens(t *testing.T) {
	deps := newTestDeps(t)
	m := newTargetsModel(deps)

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if !m.formActive || m.editing != editYear {
		t.Fatal("y should open the yearly form")
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.formActive {
		t.Fatal("esc should close the form")
	}
}

func TestTargetsIgnoresStaleYear(t *testing.T) {
	deps := newTestDeps(t)
	m := newTargetsModel(deps)

	m, _ = m.update(targetsDataMsg{year: 2024, yearly: &targets.YearlyTargets{}})
	if m.yearly != nil {
		t.Fatal("data for another year should be ignored")
	}
}

// ============================================================
// Actuals
// ============================================================

func TestActualsStartsOnCurrentWeek(t *testing.T) {
	a := newActualsModel(newTestDeps(t))
	if a.year != 2025 || a.month != 2 || a.cursor != 1 {
		t.Fatalf("expected second week of March 2025, got %d/%d cursor %d", a.year, a.month, a.cursor)
	}
}

func TestActualsApply(t *testing.T) {
	deps := newTestDeps(t)
	a := newActualsModel(deps)
	a.editWeek = calendar.WeekOf(fixedNow)
	a.input.fill(metrics.Bundle{Leads: 30, SalesRevenue: 1000}, "slow week")

	if err := a.apply(); err != nil {
		t.Fatal(err)
	}
	got := deps.Actuals.Get("2025-03-10")
	if got == nil {
		t.Fatal("actuals not recorded")
	}
	if got.Leads != 30 || got.SalesRevenue != 1000 || got.Notes != "slow week" {
		t.Fatalf("recorded %+v", got)
	}
}

func TestActualsRefreshAndNavigate(t *testing.T) {
	deps := newTestDeps(t)
	a := newActualsModel(deps)

	msg := a.refresh()().(actualsDataMsg)
	a, _ = a.update(msg)
	if len(a.rows) != 4 {
		t.Fatalf("March 2025 has 4 weeks, got %d rows", len(a.rows))
	}

	a, cmd := a.update(tea.KeyMsg{Type: tea.KeyRight})
	if a.month != 3 || cmd == nil {
		t.Fatalf("right should move to April, got month %d", a.month)
	}
	// Rows for March arriving late must not overwrite April.
	a.rows = nil
	a, _ = a.update(msg)
	if a.rows != nil {
		t.Fatal("stale month rows should be ignored")
	}
}

// ============================================================
// Reports
// ============================================================

func TestReportsCollect(t *testing.T) {
	deps := newTestDeps(t)
	if err := deps.Targets.SetYearlyTargets(2025, metrics.Bundle{Leads: 1200}); err != nil {
		t.Fatal(err)
	}
	r := newReportsModel(deps)

	bars := r.collect()
	if len(bars) != 4 {
		t.Fatalf("expected 4 weekly bars, got %d", len(bars))
	}
	if bars[0].label != "Mar 03" || bars[0].target != 25 {
		t.Fatalf("first bar = %+v", bars[0])
	}

	r.mode = reportYearly
	bars = r.collect()
	if len(bars) != 12 {
		t.Fatalf("expected 12 monthly bars, got %d", len(bars))
	}
	if bars[0].label != "Jan" || bars[0].target != 100 {
		t.Fatalf("first month bar = %+v", bars[0])
	}
}

func TestReportsMetricCycles(t *testing.T) {
	r := newReportsModel(newTestDeps(t))
	r, _ = r.update(tea.KeyMsg{Type: tea.KeyUp})
	if r.metric != len(metrics.FieldLabels)-1 {
		t.Fatalf("up from first metric should wrap, got %d", r.metric)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsSave(t *testing.T) {
	deps := newTestDeps(t)
	s := newSettingsModel(deps)
	*s.currency = "€"
	*s.chartMetric = "jobsBooked"
	*s.defaultPeriod = "year"

	if err := s.saveSettings(); err != nil {
		t.Fatal(err)
	}
	for k, want := range map[string]string{"currency": "€", "chart_metric": "jobsBooked", "default_period": "year"} {
		got, err := deps.Store.GetSetting(k)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("%s = %q, want %q", k, got, want)
		}
	}
}

func TestFormatSettingValue(t *testing.T) {
	if got := formatSettingValue("chart_metric", "salesRevenue"); got != "Sales Revenue" {
		t.Fatalf("got %q", got)
	}
	if got := formatSettingValue("currency", "$"); got != "$" {
		t.Fatalf("got %q", got)
	}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	app := NewApp(newTestDeps(t))
	if app.activeView != viewDashboard {
		t.Fatal("should start on dashboard")
	}
	if app.isFormActive() {
		t.Fatal("no form should be active initially")
	}
}

func TestAppTabSwitching(t *testing.T) {
	var m tea.Model = NewApp(newTestDeps(t))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	if m.(App).activeView != viewActuals || cmd == nil {
		t.Fatal("3 should switch to actuals and refresh")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("5")})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(App).activeView != viewDashboard {
		t.Fatal("tab should wrap from settings to dashboard")
	}
}

func TestAppIsFormActive(t *testing.T) {
	app := NewApp(newTestDeps(t))
	app.targets.formActive = true
	if app.isFormActive() {
		t.Fatal("inactive view's form should not capture keys")
	}
	app.activeView = viewTargets
	if !app.isFormActive() {
		t.Fatal("targets form should capture keys")
	}
}

func TestAppApplySettings(t *testing.T) {
	app := NewApp(newTestDeps(t))
	cmd := app.applySettings([]store.Setting{
		{Key: "currency", Value: "€"},
		{Key: "chart_metric", Value: "salesRevenue"},
		{Key: "default_period", Value: "week"},
	})
	if cmd == nil {
		t.Fatal("changed period and metric should trigger reloads")
	}
	if app.dashboard.currency != "€" || app.targets.currency != "€" || app.actuals.currency != "€" {
		t.Fatal("currency not applied to every view")
	}
	if app.reports.metric != 4 {
		t.Fatalf("chart metric = %d", app.reports.metric)
	}
	if app.dashboard.period != report.PeriodWeek {
		t.Fatalf("period = %s", app.dashboard.period)
	}
}

func TestAppApplySettingsIgnoresBadPeriod(t *testing.T) {
	app := NewApp(newTestDeps(t))
	app.applySettings([]store.Setting{{Key: "default_period", Value: "fortnight"}})
	if app.dashboard.period != report.PeriodMonth {
		t.Fatalf("period = %s", app.dashboard.period)
	}
}

func TestAppDataChangedRefreshes(t *testing.T) {
	app := NewApp(newTestDeps(t))
	_, cmd := app.Update(dataChangedMsg{})
	if cmd == nil {
		t.Fatal("data change should refresh views")
	}
}

func TestAppExport(t *testing.T) {
	deps := newTestDeps(t)
	if err := deps.Targets.SetYearlyTargets(2025, metrics.Bundle{Leads: 1200}); err != nil {
		t.Fatal(err)
	}
	app := NewApp(deps)

	for format, ext := range []string{".csv", ".json", ".xlsx"} {
		msg := app.doExport(format, 2025)()
		done, ok := msg.(exportDoneMsg)
		if !ok {
			t.Fatalf("format %d: unexpected %+v", format, msg)
		}
		if !strings.HasSuffix(done.path, "revenuepro-2025-2025-03-12"+ext) {
			t.Fatalf("unexpected path %s", done.path)
		}
		if _, err := os.Stat(done.path); err != nil {
			t.Fatalf("export missing: %v", err)
		}
	}
}

func TestAppExportPickerBounds(t *testing.T) {
	app := NewApp(newTestDeps(t))
	app.exportPicking = true
	var m tea.Model = app
	for i := 0; i < 5; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := m.(App).exportCursor; got != len(exportFormats)-1 {
		t.Fatalf("cursor = %d", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(App).exportPicking {
		t.Fatal("esc should close the picker")
	}
}

func TestAppLoadingState(t *testing.T) {
	app := NewApp(newTestDeps(t))
	if out := app.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppRendersEveryView(t *testing.T) {
	var m tea.Model = NewApp(newTestDeps(t))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 45})

	for v := range viewNames {
		app := m.(App)
		app.activeView = viewState(v)
		out := app.View()
		for _, name := range viewNames {
			if !strings.Contains(out, name) {
				t.Fatalf("view %d: header missing %q", v, name)
			}
		}
	}
}

func TestAppStatusMessage(t *testing.T) {
	var m tea.Model = NewApp(newTestDeps(t))
	m, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = m.Update(statusMsg{text: "test status"})

	if !strings.Contains(m.(App).renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapFullHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
	for i, g := range keys.FullHelp() {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}
