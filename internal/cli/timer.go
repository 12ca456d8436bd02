package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
)

var errNoTimer = errors.New("no timer is running")

func newTimerCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Start and stop time tracking",
	}
	cmd.AddCommand(
		newTimerStartCmd(e),
		newTimerStopCmd(e),
		newTimerStopTaskCmd(e),
		newTimerActiveCmd(e),
		newTimerLogCmd(e),
	)
	return cmd
}

func newTimerStartCmd(e *env) *cobra.Command {
	var notes string
	cmd := &cobra.Command{
		Use:   "start <task-id>",
		Short: "Start a timer on a task",
		Long: `Start a timer on a task. Only one timer can run per operator;
stop the running one first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			entry, err := s.StartTimer(ctx, id, op.ID, notes)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(entry)
			}
			e.printf("Timer started on task #%d at %s\n", id, entry.StartTime.Local().Format("15:04:05"))
			return nil
		},
	}
	cmd.Flags().StringVar(&notes, "notes", "", "note stored with the time entry")
	return cmd
}

func newTimerStopCmd(e *env) *cobra.Command {
	var entryID int64
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			if entryID == 0 {
				active, err := s.ActiveTimer(ctx, op.ID)
				if err != nil {
					return err
				}
				if active == nil {
					return errNoTimer
				}
				entryID = active.ID
			}

			entry, err := s.StopTimer(ctx, entryID, op.ID)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(entry)
			}
			e.printf("Timer stopped on task #%d after %s\n", entry.TaskID, hours(entry.Hours()))
			return nil
		},
	}
	cmd.Flags().Int64Var(&entryID, "entry", 0, "stop this time entry instead of the running one")
	return cmd
}

func newTimerStopTaskCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stop-task <task-id>",
		Short: "Stop your timer on a specific task",
		Long: `Stop your timer on a specific task. A task that never had a timer
is put back to pending.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			entry, err := s.StopTaskTimer(ctx, id, op.ID)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(entry)
			}
			if entry == nil {
				e.printf("Task #%d had no timer; reset to pending\n", id)
				return nil
			}
			e.printf("Timer stopped on task #%d after %s\n", id, hours(entry.Hours()))
			return nil
		},
	}
}

func newTimerActiveCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the running timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			active, err := s.ActiveTimer(ctx, op.ID)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(active)
			}
			if active == nil {
				e.printf("No timer is running.\n")
				return nil
			}
			title := ""
			if t, err := s.GetTask(ctx, active.TaskID); err == nil {
				title = t.Title
			}
			elapsed := active.Elapsed(time.Now()).Truncate(time.Second)
			e.printf("▶ #%d %s running for %s\n", active.TaskID, title, elapsed)
			return nil
		},
	}
}

func newTimerLogCmd(e *env) *cobra.Command {
	var taskID int64
	var all, open bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded time entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			filter := store.TimeEntryFilter{OpenOnly: open, Limit: limit}
			if !all {
				filter.UserID = &op.ID
			}
			if taskID != 0 {
				filter.TaskID = &taskID
			}
			entries, err := s.ListTimeEntries(ctx, filter)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(entries)
			}
			if len(entries) == 0 {
				e.printf("No time entries found.\n")
				return nil
			}
			e.printf("%s", entryTable(entries).render())
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&taskID, "task", 0, "only entries for this task")
	f.BoolVar(&all, "all", false, "include every operator's entries")
	f.BoolVar(&open, "open", false, "only running entries")
	f.IntVarP(&limit, "limit", "n", 0, "maximum number of entries")
	return cmd
}
