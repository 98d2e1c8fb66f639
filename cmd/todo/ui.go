package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/app"
	"github.com/nhle/todolist/internal/rollover"
)

func runUI(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	opts := app.Options{
		Service:     e.svc,
		Envelope:    envelope(),
		DefaultList: cfg.Display.DefaultList,
		Location:    time.Local,
		Logger:      logger.Named("ui"),
		Rollover: rollover.New(
			e.svc,
			e.classifier,
			time.Duration(cfg.Display.RolloverCheckSec)*time.Second,
			logger.Named("rollover"),
		),
	}

	d, err := drafter()
	if err != nil {
		logger.Warn("sharing disabled", zap.Error(err))
	} else if d != nil {
		opts.Sharer = d
	}

	m := app.New(opts)
	defer m.Shutdown()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}
