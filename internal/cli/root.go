// Package cli is the command-line surface of the tracker: task, timer,
// equipment, statistics, template, user, report and config commands, plus
// the tui launcher.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/credential"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/logger"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
)

// version is the application version.
var version = "0.3.0"

// env holds what every command shares: flags, configuration, the logger
// and a lazily opened store.
type env struct {
	v      *viper.Viper
	cfg    *model.AppConfig
	log    *zap.Logger
	store  *store.SQLiteStore
	vault  *credential.Vault
	stdin  io.Reader
	stdout io.Writer

	// fs receives exported reports.
	fs afero.Fs

	// authCost is the bcrypt cost; 0 uses the library default.
	authCost int

	// openVault is replaced in tests with an in-memory keyring.
	openVault func(configDir string) (*credential.Vault, error)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	e := newEnv()
	root := newRootCmd(e)
	err := root.Execute()
	e.close()
	if err != nil {
		PrintError(root.ErrOrStderr(), err, e.verbose())
		os.Exit(ExitCode(err))
	}
}

func newEnv() *env {
	return &env{v: viper.New(), fs: afero.NewOsFs(), openVault: credential.Open}
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "tracker",
		Short: "Track time spent on industrial tasks.",
		Long: `tracker records how long tasks take, one running timer per operator,
and reports hours by category, the Pareto "vital few", a timeline of
started and finished work, and equipment OEE.

Run "tracker tui" for the interactive view.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is "+model.DefaultConfigPath()+")")
	flags.BoolP("verbose", "v", false, "enable verbose output and console logging")
	flags.Bool("json", false, "print machine-readable JSON")
	flags.String("as", "", "act as this operator handle instead of the remembered one")

	_ = e.v.BindPFlag("config", flags.Lookup("config"))
	_ = e.v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = e.v.BindPFlag("json", flags.Lookup("json"))
	_ = e.v.BindPFlag("as", flags.Lookup("as"))
	e.v.SetEnvPrefix(model.EnvPrefix)
	e.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	e.v.AutomaticEnv()

	root.AddCommand(
		newTaskCmd(e),
		newTimerCmd(e),
		newEquipmentCmd(e),
		newStatsCmd(e),
		newTemplateCmd(e),
		newUserCmd(e),
		newReportCmd(e),
		newConfigCmd(e),
		newTUICmd(e),
	)
	return root
}

// init loads .env and the config file and builds the logger.
func (e *env) init(cmd *cobra.Command) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if e.stdout == nil {
		e.stdout = cmd.OutOrStdout()
	}
	if e.stdin == nil {
		e.stdin = cmd.InOrStdin()
	}

	cfg, err := model.LoadConfig(e.configPath())
	if err != nil {
		return err
	}
	e.cfg = cfg

	logCfg := cfg.Log
	if e.verbose() {
		logCfg.Console = true
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return err
	}
	e.log = log.With(
		zap.String("invocation", uuid.NewString()),
		zap.String("command", cmd.CommandPath()),
	)
	return nil
}

// close releases the store and flushes the logger. It runs after every
// command, including failed ones.
func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.Warn("closing store", zap.Error(err))
		}
		e.store = nil
	}
	if e.log != nil {
		_ = e.log.Sync()
	}
}

func (e *env) configPath() string {
	if p := e.v.GetString("config"); p != "" {
		return p
	}
	return model.DefaultConfigPath()
}

func (e *env) verbose() bool { return e.v.GetBool("verbose") }

func (e *env) isJSON() bool { return e.v.GetBool("json") }

// openStore opens the database on first use.
func (e *env) openStore() (*store.SQLiteStore, error) {
	if e.store != nil {
		return e.store, nil
	}
	s, err := store.NewSQLiteStore(e.cfg.Database.Path, store.WithLogger(e.log))
	if err != nil {
		return nil, err
	}
	e.store = s
	return s, nil
}

// credentials opens the keyring on first use.
func (e *env) credentials() (*credential.Vault, error) {
	if e.vault != nil {
		return e.vault, nil
	}
	v, err := e.openVault(model.ConfigDir())
	if err != nil {
		return nil, err
	}
	e.vault = v
	return v, nil
}

// operator resolves the acting subject: --as, then the remembered login,
// then the configured default. The subject is created if missing. The
// opened store is returned with it.
func (e *env) operator(ctx context.Context) (*model.User, *store.SQLiteStore, error) {
	s, err := e.openStore()
	if err != nil {
		return nil, nil, err
	}

	if handle := e.v.GetString("as"); handle != "" {
		u, err := s.GetUserByHandle(ctx, handle)
		if err != nil {
			return nil, nil, fmt.Errorf("operator %q: %w", handle, err)
		}
		return u, s, nil
	}

	if vault, err := e.credentials(); err == nil {
		handle, err := vault.Operator()
		switch {
		case err == nil:
			u, err := s.GetUserByHandle(ctx, handle)
			if err == nil {
				return u, s, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, nil, err
			}
			e.log.Warn("remembered operator is gone", zap.String("handle", handle))
		case !errors.Is(err, credential.ErrNoOperator):
			e.log.Debug("keyring unavailable", zap.Error(err))
		}
	} else {
		e.log.Debug("keyring unavailable", zap.Error(err))
	}

	u, err := s.EnsureUser(ctx, e.cfg.Operator.Handle, e.cfg.Operator.DisplayName)
	if err != nil {
		return nil, nil, err
	}
	return u, s, nil
}

// printJSON writes v as indented JSON.
func (e *env) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.stdout, string(out))
	return err
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.stdout, format, args...)
}
