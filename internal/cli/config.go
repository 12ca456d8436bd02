package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.isJSON() {
				return e.printJSON(e.cfg)
			}
			out, err := yaml.Marshal(e.cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			e.printf("# %s\n%s", e.configPath(), out)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := e.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return usagef("%s already exists; use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", path, err)
			}
			if err := model.SaveConfig(path, e.cfg); err != nil {
				return err
			}
			e.printf("Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			e.printf("%s\n", e.configPath())
		},
	}

	cmd.AddCommand(show, initCmd, path)
	return cmd
}
