package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/analytics"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

func newEquipmentCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "equipment",
		Aliases: []string{"eq"},
		Short:   "Register machines and record OEE counters",
	}
	cmd.AddCommand(
		newEquipmentAddCmd(e),
		newEquipmentUpdateCmd(e),
		newEquipmentListCmd(e),
		newEquipmentDeleteCmd(e),
		newEquipmentOEECmd(e),
	)
	return cmd
}

func newEquipmentAddCmd(e *env) *cobra.Command {
	var in model.NewEquipment
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Register a machine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.openStore()
			if err != nil {
				return err
			}
			in.Name = strings.Join(args, " ")
			eq, err := s.CreateEquipment(cmd.Context(), in)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(eq)
			}
			e.printf("Registered equipment #%d %q\n", eq.ID, eq.Name)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.PlannedHours, "planned", 0, "planned production hours")
	f.Float64Var(&in.StandardRate, "rate", 0, "standard rate in units per hour")
	return cmd
}

func newEquipmentUpdateCmd(e *env) *cobra.Command {
	var c model.EquipmentCounters
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Record downtime and output counters",
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
			eq, err := s.UpdateEquipmentCounters(cmd.Context(), id, c)
			if err != nil {
				return fmt.Errorf("equipment %d: %w", id, err)
			}
			if e.isJSON() {
				return e.printJSON(eq)
			}
			res := analytics.OEE(*eq)
			e.printf("Updated %s: OEE %.2f%%\n", eq.Name, res.OEE)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64Var(&c.DowntimeHours, "downtime", 0, "downtime hours")
	f.Int64Var(&c.ActualOutput, "output", 0, "units produced")
	f.Int64Var(&c.GoodUnits, "good", 0, "units that passed quality")
	return cmd
}

func newEquipmentListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List machines and their counters",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.openStore()
			if err != nil {
				return err
			}
			items, err := s.ListEquipment(cmd.Context())
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(items)
			}
			if len(items) == 0 {
				e.printf("No equipment registered.\n")
				return nil
			}
			tb := newTable("ID", "NAME", "PLANNED", "DOWNTIME", "OUTPUT", "GOOD", "RATE")
			for _, eq := range items {
				tb.add(
					strconv.FormatInt(eq.ID, 10),
					eq.Name,
					hours(eq.PlannedHours),
					hours(eq.DowntimeHours),
					strconv.FormatInt(eq.ActualOutput, 10),
					strconv.FormatInt(eq.GoodUnits, 10),
					strconv.FormatFloat(eq.StandardRate, 'f', 1, 64)+"/h",
				)
			}
			e.printf("%s", tb.render())
			return nil
		},
	}
}

func newEquipmentDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a machine",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			s, err := e.openStore()
			if err != nil {
				return err
			}
			if err := s.DeleteEquipment(cmd.Context(), id); err != nil {
				return fmt.Errorf("equipment %d: %w", id, err)
			}
			if e.isJSON() {
				return e.printJSON(map[string]any{"deleted": id})
			}
			e.printf("Deleted equipment #%d\n", id)
			return nil
		},
	}
}

func newEquipmentOEECmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "oee [id]",
		Short: "Show OEE for one machine or the whole fleet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := e.openStore()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				id, err := parseIDArg(args[0])
				if err != nil {
					return err
				}
				eq, err := s.GetEquipment(ctx, id)
				if err != nil {
					return fmt.Errorf("equipment %d: %w", id, err)
				}
				res := analytics.OEE(*eq)
				if e.isJSON() {
					return e.printJSON(analytics.EquipmentOEE{Equipment: *eq, Result: res})
				}
				e.printf("%s", oeeTable([]analytics.EquipmentOEE{{Equipment: *eq, Result: res}}).render())
				return nil
			}

			fleet, err := analytics.NewEngine(s).OEEAll(ctx)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(fleet)
			}
			if len(fleet.Units) == 0 {
				e.printf("No equipment registered.\n")
				return nil
			}
			e.printf("%s", oeeTable(fleet.Units).render())
			e.printf("\nFleet average OEE: %.2f%%\n", fleet.Average)
			return nil
		},
	}
}

func oeeTable(units []analytics.EquipmentOEE) *table {
	tb := newTable("ID", "NAME", "AVAIL", "PERF", "QUALITY", "OEE")
	for _, u := range units {
		tb.add(
			strconv.FormatInt(u.Equipment.ID, 10),
			u.Equipment.Name,
			percent(u.Result.Availability*100),
			percent(u.Result.Performance*100),
			percent(u.Result.Quality*100),
			percent(u.Result.OEE),
		)
	}
	return tb
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}
