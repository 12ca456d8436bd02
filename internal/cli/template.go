package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/templates"
)

func newTemplateCmd(e *env) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"templates", "tpl"},
		Short:   "Industrial task groups",
	}
	cmd.PersistentFlags().StringVar(&file, "file", "", "read groups from this YAML file instead of the built-in set")

	catalog := func() (*templates.Catalog, error) {
		if file == "" {
			return templates.Builtin(), nil
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading templates: %w", err)
		}
		return templates.Parse(data)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the available groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog()
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(c)
			}
			tb := newTable("GROUP", "CATEGORY", "STEPS", "STANDARD")
			for _, g := range c.Groups {
				tb.add(g.Name, g.Category, strconv.Itoa(len(g.Tasks)), hours(g.StandardHours()))
			}
			e.printf("%s", tb.render())
			return nil
		},
	}

	apply := &cobra.Command{
		Use:   "apply <group>",
		Short: "Create a parent task and one subtask per step",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog()
			if err != nil {
				return err
			}
			if _, ok := c.Group(args[0]); !ok {
				return usagef("unknown template group %q; see \"tracker template list\"", args[0])
			}
			ctx := cmd.Context()
			op, s, err := e.operator(ctx)
			if err != nil {
				return err
			}

			parent, children, err := c.Instantiate(ctx, s, args[0], &op.ID)
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(struct {
					Parent   *model.Task  `json:"parent"`
					Children []model.Task `json:"children"`
				}{parent, children})
			}
			e.printf("Created task #%d %q with %d subtasks (%s standard)\n",
				parent.ID, parent.Title, len(children), hours(parent.EstimatedHours))
			return nil
		},
	}

	cmd.AddCommand(list, apply)
	return cmd
}
