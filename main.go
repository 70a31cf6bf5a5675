package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/revenuepro/internal/actuals"
	"github.com/sadopc/revenuepro/internal/config"
	"github.com/sadopc/revenuepro/internal/logging"
	"github.com/sadopc/revenuepro/internal/report"
	"github.com/sadopc/revenuepro/internal/store"
	"github.com/sadopc/revenuepro/internal/targets"
	"github.com/sadopc/revenuepro/internal/tui"
)

func main() {
	cfg, err := config.Load("", ".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Error("exit", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	tg := targets.New(s, log.Named("targets"))
	if err := tg.Load(); err != nil {
		return err
	}
	ac := actuals.New(s, log.Named("actuals"))
	if err := ac.Load(); err != nil {
		return err
	}
	log.Info("started",
		zap.String("db", cfg.DBPath),
		zap.Ints("target_years", tg.Years()),
		zap.Int("actual_weeks", len(ac.All())),
	)

	app := tui.NewApp(tui.Deps{
		Store:   s,
		Targets: tg,
		Actuals: ac,
		Report:  report.New(tg, ac),
		Config:  cfg,
		Log:     log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
