package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/report"
)

func newReportCmd(e *env) *cobra.Command {
	var format, dir string
	var all, stdout bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export an analytics snapshot",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON or YAML snapshot of tasks, statistics and OEE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			if format == "" {
				format = e.cfg.Reports.Format
			}
			format = strings.ToLower(format)
			if format == "yml" {
				format = report.FormatYAML
			}
			if dir == "" {
				dir = e.cfg.Reports.Dir
			}
			uid, subject := op.ID, op.Handle
			if all {
				uid, subject = 0, "all"
			}

			exp := report.NewExporter(e.fs, s)
			if stdout {
				snap, err := exp.Build(ctx, uid, subject)
				if err != nil {
					return err
				}
				data, err := report.Encode(snap, format)
				if err != nil {
					return usagef("%v", err)
				}
				_, err = e.stdout.Write(data)
				return err
			}

			path, err := exp.Export(ctx, dir, format, uid, subject)
			if err != nil {
				return err
			}
			e.log.Info("report exported", zap.String("path", path), zap.String("format", format))
			if e.isJSON() {
				return e.printJSON(map[string]string{"path": path})
			}
			e.printf("Report written to %s\n", path)
			return nil
		},
	}
	f := export.Flags()
	f.StringVarP(&format, "format", "f", "", "json or yaml (default from config)")
	f.StringVar(&dir, "dir", "", "output directory (default from config)")
	f.BoolVar(&all, "all", false, "include every operator's tasks")
	f.BoolVar(&stdout, "stdout", false, "print the snapshot instead of writing a file")

	cmd.AddCommand(export)
	return cmd
}
