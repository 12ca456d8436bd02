package cli

import (
	"errors"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/app"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/logger"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/report"
)

func newTUICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive task and timer view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return errors.New("the interactive view needs a terminal")
			}
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			// Console logging would draw over the alternate screen.
			log := e.log
			if e.cfg.Log.Console || e.verbose() {
				logCfg := e.cfg.Log
				logCfg.Console = false
				if log, err = logger.New(logCfg); err != nil {
					return err
				}
				defer func() { _ = log.Sync() }()
			}

			m := app.New(app.Options{
				Store:           s,
				User:            *op,
				DBPath:          s.Path(),
				RefreshInterval: time.Duration(e.cfg.Display.RefreshIntervalSec) * time.Second,
				Exporter:        report.NewExporter(e.fs, s),
				ReportDir:       e.cfg.Reports.Dir,
				ReportFormat:    e.cfg.Reports.Format,
				Logger:          log,
			})

			log.Info("tui started", zap.String("operator", op.Handle))
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
}
