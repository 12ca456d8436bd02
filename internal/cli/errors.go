package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/auth"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/theme"
)

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks bad arguments, as opposed to failed operations.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// ExitCode maps err to the process exit status.
func ExitCode(err error) int {
	var ue *usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitFailure
}

// userMessage turns store and auth sentinels into something an operator
// can act on. Unknown errors keep their text.
func userMessage(err error) string {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, store.ErrEntryClosed):
		return "that timer has already been stopped"
	case errors.Is(err, store.ErrConflict):
		return "a timer is already running; stop it first with \"tracker timer stop\""
	case errors.Is(err, store.ErrForbidden):
		return "that time entry belongs to another operator"
	case errors.Is(err, store.ErrNotFound):
		return "not found"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return auth.ErrInvalidCredentials.Error()
	default:
		return err.Error()
	}
}

// PrintError writes err to w. Verbose mode prints the full wrapped chain.
func PrintError(w io.Writer, err error, verbose bool) {
	if err == nil {
		return
	}
	if verbose {
		fmt.Fprintln(w, theme.ErrorStyle.Render("Error: ")+err.Error())
		return
	}
	fmt.Fprintln(w, theme.ErrorStyle.Render("Error: ")+userMessage(err))
}
