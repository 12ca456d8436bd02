package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/analytics"
)

func newStatsCmd(e *env) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"analytics"},
		Short:   "Summaries, category totals, Pareto and timeline",
	}
	cmd.PersistentFlags().BoolVar(&all, "all", false, "include every operator's tasks")

	// subject returns the engine and the user id to aggregate, 0 for all.
	subject := func(ctx context.Context) (*analytics.Engine, int64, error) {
		op, s, err := e.operator(ctx)
		if err != nil {
			return nil, 0, err
		}
		if all {
			return analytics.NewEngine(s), 0, nil
		}
		return analytics.NewEngine(s), op.ID, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "summary",
			Short: "Task counts by state and total hours",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				eng, uid, err := subject(cmd.Context())
				if err != nil {
					return err
				}
				sum, err := eng.Summary(cmd.Context(), uid)
				if err != nil {
					return err
				}
				if e.isJSON() {
					return e.printJSON(sum)
				}
				e.printf("Tasks:        %d\n", sum.Total)
				e.printf("Completed:    %d (%.2f%%)\n", sum.Completed, sum.CompletionRate())
				e.printf("In progress:  %d\n", sum.InProgress)
				e.printf("Pending:      %d\n", sum.Pending)
				e.printf("Hours logged: %s\n", hours(sum.TotalHours))
				return nil
			},
		},
		&cobra.Command{
			Use:   "categories",
			Short: "Hours per category, largest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				eng, uid, err := subject(cmd.Context())
				if err != nil {
					return err
				}
				totals, err := eng.CategoryBreakdown(cmd.Context(), uid)
				if err != nil {
					return err
				}
				if e.isJSON() {
					return e.printJSON(totals)
				}
				if len(totals) == 0 {
					e.printf("No tasks yet.\n")
					return nil
				}
				tb := newTable("CATEGORY", "TASKS", "HOURS")
				for _, c := range totals {
					tb.add(c.Label, strconv.Itoa(c.Tasks), hours(c.Hours))
				}
				e.printf("%s", tb.render())
				return nil
			},
		},
		&cobra.Command{
			Use:   "pareto",
			Short: "Tasks that account for 80% of logged time",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				eng, uid, err := subject(cmd.Context())
				if err != nil {
					return err
				}
				res, err := eng.Pareto(cmd.Context(), uid)
				if err != nil {
					return err
				}
				if e.isJSON() {
					return e.printJSON(res)
				}
				if res.NoData {
					e.printf("No time has been logged yet.\n")
					return nil
				}
				tb := newTable("#", "TASK", "HOURS", "CUMULATIVE")
				for i, p := range res.Points {
					tb.add(strconv.Itoa(i+1), p.Label, hours(p.Hours), percent(p.CumulativePercent))
				}
				e.printf("%s", tb.render())
				e.printf("\n%d task(s) make up %s of %s logged\n",
					len(res.Points), percent(res.Points[len(res.Points)-1].CumulativePercent), hours(res.TotalHours))
				return nil
			},
		},
		&cobra.Command{
			Use:   "gantt",
			Short: "Start and end of every task that has run",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				eng, uid, err := subject(cmd.Context())
				if err != nil {
					return err
				}
				rows, err := eng.Gantt(cmd.Context(), uid)
				if err != nil {
					return err
				}
				if e.isJSON() {
					return e.printJSON(rows)
				}
				if len(rows) == 0 {
					e.printf("No task has both started and finished.\n")
					return nil
				}
				tb := newTable("ID", "TASK", "START", "END", "DURATION", "ASSIGNEE")
				for _, r := range rows {
					tb.add(
						strconv.FormatInt(r.TaskID, 10),
						r.Label,
						stamp(r.Start),
						stamp(r.End),
						hours(r.Duration().Hours()),
						r.Assignee,
					)
				}
				e.printf("%s", tb.render())
				return nil
			},
		},
		&cobra.Command{
			Use:   "rollup",
			Short: "Parent tasks with their subtasks' hours added in",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				eng, uid, err := subject(cmd.Context())
				if err != nil {
					return err
				}
				nodes, err := eng.Rollup(cmd.Context(), uid)
				if err != nil {
					return err
				}
				if e.isJSON() {
					return e.printJSON(nodes)
				}
				if len(nodes) == 0 {
					e.printf("No tasks yet.\n")
					return nil
				}
				tb := newTable("ID", "TASK", "SUBTASKS", "OWN", "TOTAL")
				for _, n := range nodes {
					label := n.Task.Title
					switch {
					case n.Orphan:
						label += " (orphaned)"
					case n.ParentElsewhere:
						label += fmt.Sprintf(" (under #%d)", *n.Task.ParentID)
					}
					tb.add(
						strconv.FormatInt(n.Task.ID, 10),
						label,
						strconv.Itoa(len(n.Children)),
						hours(n.Task.ActualHours),
						hours(n.TotalHours),
					)
				}
				e.printf("%s", tb.render())
				return nil
			},
		},
	)
	return cmd
}
