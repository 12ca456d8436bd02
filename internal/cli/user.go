package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/auth"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
)

func newUserCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "user",
		Aliases: []string{"users"},
		Short:   "Manage operators and who is logged in",
	}
	cmd.AddCommand(
		newUserAddCmd(e),
		newUserListCmd(e),
		newUserLoginCmd(e),
		newUserLogoutCmd(e),
		newUserWhoamiCmd(e),
		newUserPasswdCmd(e),
	)
	return cmd
}

func newUserAddCmd(e *env) *cobra.Command {
	var in model.NewUser
	cmd := &cobra.Command{
		Use:   "add <handle>",
		Short: "Register an operator with a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.openStore()
			if err != nil {
				return err
			}
			secret, err := e.readSecret("Password: ")
			if err != nil {
				return err
			}
			in.Handle = args[0]
			u, err := auth.NewService(s, e.authCost).Register(cmd.Context(), in, secret)
			if err != nil {
				return err
			}
			e.log.Info("operator registered", zap.String("handle", u.Handle), zap.String("role", u.Role))
			if e.isJSON() {
				return e.printJSON(u)
			}
			e.printf("Registered %s (%s)\n", u.Handle, u.Role)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.DisplayName, "name", "", "display name")
	f.StringVar(&in.Role, "role", model.RoleEngineer, "engineer, supervisor or admin")
	return cmd
}

func newUserListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List operators",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.openStore()
			if err != nil {
				return err
			}
			users, err := s.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(users)
			}
			if len(users) == 0 {
				e.printf("No operators registered.\n")
				return nil
			}
			tb := newTable("ID", "HANDLE", "NAME", "ROLE", "PASSWORD")
			for _, u := range users {
				pw := "no"
				if u.CredentialHash != "" {
					pw = "yes"
				}
				tb.add(strconv.FormatInt(u.ID, 10), u.Handle, u.DisplayName, u.Role, pw)
			}
			e.printf("%s", tb.render())
			return nil
		},
	}
}

func newUserLoginCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "login <handle>",
		Short: "Check a password and remember the operator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := e.openStore()
			if err != nil {
				return err
			}
			secret, err := e.readSecret("Password: ")
			if err != nil {
				return err
			}
			u, err := auth.NewService(s, e.authCost).Authenticate(cmd.Context(), args[0], secret)
			if err != nil {
				e.log.Warn("login failed", zap.String("handle", args[0]))
				return err
			}
			vault, err := e.credentials()
			if err != nil {
				return err
			}
			if err := vault.Remember(u.Handle); err != nil {
				return err
			}
			e.log.Info("operator logged in", zap.String("handle", u.Handle))
			e.printf("Logged in as %s\n", u.Handle)
			return nil
		},
	}
}

func newUserLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the remembered operator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			vault, err := e.credentials()
			if err != nil {
				return err
			}
			if err := vault.Forget(); err != nil {
				return err
			}
			e.printf("Logged out\n")
			return nil
		},
	}
}

func newUserWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the operator commands act as",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, _, err := e.operator(cmd.Context())
			if err != nil {
				return err
			}
			if e.isJSON() {
				return e.printJSON(u)
			}
			name := u.DisplayName
			if name == "" {
				name = u.Handle
			}
			e.printf("%s (%s, id %d)\n", name, u.Role, u.ID)
			return nil
		},
	}
}

func newUserPasswdCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Set the current operator's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, s, err := e.operator(cmd.Context())
			if err != nil {
				return err
			}
			secret, err := e.readSecret("New password: ")
			if err != nil {
				return err
			}
			if err := auth.NewService(s, e.authCost).SetSecret(cmd.Context(), u.ID, secret); err != nil {
				return err
			}
			e.printf("Password updated for %s\n", u.Handle)
			return nil
		},
	}
}

// readSecret prompts without echo on a terminal and reads one line
// otherwise, so passwords can be piped in.
func (e *env) readSecret(prompt string) (string, error) {
	if f, ok := e.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(e.stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
