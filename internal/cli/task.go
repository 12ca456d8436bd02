package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
)

func newTaskCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"tasks", "t"},
		Short:   "Create, list and change tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(e),
		newTaskListCmd(e),
		newTaskShowCmd(e),
		newTaskUpdateCmd(e),
		newTaskDeleteCmd(e),
		newTaskChildrenCmd(e),
	)
	return cmd
}

func newTaskAddCmd(e *env) *cobra.Command {
	var in model.NewTask
	var category string
	var parent int64

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task owned by the current operator",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			in.Title = strings.Join(args, " ")
			in.OwnerID = &op.ID
			if cmd.Flags().Changed("category") {
				in.Category = &category
			}
			if parent != 0 {
				in.ParentID = &parent
			}

			t, err := s.CreateTask(ctx, in)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(t)
			}
			e.printf("Created task #%d %q\n", t.ID, t.Title)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&in.Description, "description", "d", "", "longer description")
	f.StringVar(&category, "category", "", "category, e.g. welding")
	f.StringVarP(&in.Priority, "priority", "p", model.PriorityMedium, "low, medium, high or critical")
	f.Float64VarP(&in.EstimatedHours, "estimate", "e", 0, "estimated hours")
	f.StringVarP(&in.Assignee, "assignee", "a", "", "who does the work")
	f.Int64Var(&parent, "parent", 0, "parent task id")
	return cmd
}

func newTaskListCmd(e *env) *cobra.Command {
	var status, category string
	var all, top bool
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			filter := store.TaskFilter{TopLevel: top, Limit: limit}
			if !all {
				filter.OwnerID = &op.ID
			}
			if status != "" {
				filter.Status = &status
			}
			if category != "" {
				filter.Category = &category
			}

			tasks, err := s.ListTasks(ctx, filter)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(tasks)
			}
			if len(tasks) == 0 {
				e.printf("No tasks found.\n")
				return nil
			}
			e.printf("%s", taskTable(tasks).render())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&status, "status", "s", "", "only tasks in this status")
	f.StringVar(&category, "category", "", "only tasks in this category")
	f.BoolVar(&all, "all", false, "include every operator's tasks")
	f.BoolVar(&top, "top", false, "only tasks without a parent")
	f.IntVarP(&limit, "limit", "n", 0, "maximum number of tasks")
	return cmd
}

func newTaskShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task with its subtasks and time entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			s, err := e.openStore()
			if err != nil {
				return err
			}

			t, err := s.GetTask(ctx, id)
			if err != nil {
				return fmt.Errorf("task %d: %w", id, err)
			}
			children, err := s.ListChildren(ctx, id)
			if err != nil {
				return err
			}
			entries, err := s.ListTimeEntries(ctx, store.TimeEntryFilter{TaskID: &id})
			if err != nil {
				return err
			}

			if e.isJSON() {
				return e.printJSON(struct {
					Task     *model.Task       `json:"task"`
					Children []model.Task      `json:"children"`
					Entries  []model.TimeEntry `json:"entries"`
				}{t, children, entries})
			}

			e.printf("#%d %s\n", t.ID, t.Title)
			e.printf("  status:     %s\n", t.Status)
			e.printf("  priority:   %s\n", t.Priority)
			e.printf("  category:   %s\n", t.CategoryLabel())
			if t.Assignee != "" {
				e.printf("  assignee:   %s\n", t.Assignee)
			}
			if t.ParentID != nil {
				e.printf("  parent:     #%d\n", *t.ParentID)
			}
			e.printf("  hours:      %s actual / %s estimated\n", hours(t.ActualHours), hours(t.EstimatedHours))
			if eff := t.Efficiency(); eff > 0 {
				e.printf("  efficiency: %.0f%%\n", eff*100)
			}
			if t.StartedAt != nil {
				e.printf("  started:    %s\n", stamp(*t.StartedAt))
			}
			if t.CompletedAt != nil {
				e.printf("  completed:  %s\n", stamp(*t.CompletedAt))
			}
			if t.Description != "" {
				e.printf("\n%s\n", t.Description)
			}
			if len(children) > 0 {
				e.printf("\nSubtasks:\n%s", taskTable(children).render())
			}
			if len(entries) > 0 {
				e.printf("\nTime entries:\n%s", entryTable(entries).render())
			}
			return nil
		},
	}
}

func newTaskUpdateCmd(e *env) *cobra.Command {
	var title, desc, assignee, category, priority, status string
	var estimate float64
	var parent int64

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a task",
		Long: `Change fields of a task. Only the flags given are applied.
Use --parent 0 to detach a subtask from its parent.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}

			f := cmd.Flags()
			var patch model.TaskPatch
			if f.Changed("title") {
				patch.Title = &title
			}
			if f.Changed("description") {
				patch.Description = &desc
			}
			if f.Changed("assignee") {
				patch.Assignee = &assignee
			}
			if f.Changed("category") {
				patch.Category = &category
			}
			if f.Changed("priority") {
				patch.Priority = &priority
			}
			if f.Changed("status") {
				patch.Status = &status
			}
			if f.Changed("estimate") {
				patch.EstimatedHours = &estimate
			}
			if f.Changed("parent") {
				patch.ParentID = &parent
			}
			if patch.IsEmpty() {
				return usagef("nothing to update; pass at least one field flag")
			}

			s, err := e.openStore()
			if err != nil {
				return err
			}
			t, err := s.UpdateTask(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(t)
			}
			e.printf("Updated task #%d (%s)\n", t.ID, t.Status)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVarP(&desc, "description", "d", "", "new description")
	f.StringVarP(&assignee, "assignee", "a", "", "new assignee")
	f.StringVar(&category, "category", "", "new category")
	f.StringVarP(&priority, "priority", "p", "", "low, medium, high or critical")
	f.StringVarP(&status, "status", "s", "", "pending, in_progress, completed or on_hold")
	f.Float64VarP(&estimate, "estimate", "e", 0, "estimated hours")
	f.Int64Var(&parent, "parent", 0, "parent task id (0 detaches)")
	return cmd
}

func newTaskDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task and its time entries",
		Long: `Delete a task and its time entries. Subtasks are kept and become
top-level tasks.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			s, err := e.openStore()
			if err != nil {
				return err
			}
			if err := s.DeleteTask(cmd.Context(), id); err != nil {
				return fmt.Errorf("task %d: %w", id, err)
			}
			if e.isJSON() {
				return e.printJSON(map[string]any{"deleted": id})
			}
			e.printf("Deleted task #%d\n", id)
			return nil
		},
	}
}

func newTaskChildrenCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "children <id>",
		Short: "List the subtasks of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			s, err := e.openStore()
			if err != nil {
				return err
			}
			children, err := s.ListChildren(cmd.Context(), id)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(children)
			}
			if len(children) == 0 {
				e.printf("Task #%d has no subtasks.\n", id)
				return nil
			}
			e.printf("%s", taskTable(children).render())
			return nil
		},
	}
}

func taskTable(tasks []model.Task) *table {
	tb := newTable("ID", "TITLE", "STATUS", "PRIORITY", "CATEGORY", "ACTUAL", "EST", "PARENT")
	for _, t := range tasks {
		parent := ""
		if t.ParentID != nil {
			parent = "#" + strconv.FormatInt(*t.ParentID, 10)
		}
		tb.add(
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Status,
			t.Priority,
			t.CategoryLabel(),
			hours(t.ActualHours),
			hours(t.EstimatedHours),
			parent,
		)
	}
	return tb
}

func entryTable(entries []model.TimeEntry) *table {
	tb := newTable("ENTRY", "TASK", "USER", "START", "END", "HOURS", "NOTES")
	for _, en := range entries {
		end, dur := "running", "-"
		if en.EndTime != nil {
			end = stamp(*en.EndTime)
			dur = hours(en.Hours())
		}
		tb.add(
			strconv.FormatInt(en.ID, 10),
			"#"+strconv.FormatInt(en.TaskID, 10),
			strconv.FormatInt(en.UserID, 10),
			stamp(en.StartTime),
			end,
			dur,
			en.Notes,
		)
	}
	return tb
}

func parseIDArg(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("invalid id %q", s)
	}
	return id, nil
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64) + "h"
}

func stamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}
