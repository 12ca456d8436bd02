package app

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/ui/tasklist"
)

var (
	errNoTimer    = errors.New("no timer is running")
	errNoExporter = errors.New("report export is not configured")
)

// friendly rewrites store errors for the status bar.
func friendly(err error) error {
	var ve *store.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ve):
		return ve
	case errors.Is(err, store.ErrEntryClosed):
		return errors.New("that timer already stopped")
	case errors.Is(err, store.ErrConflict):
		return errors.New("a timer is already running; stop it first (x)")
	case errors.Is(err, store.ErrForbidden):
		return errors.New("that timer belongs to someone else")
	case errors.Is(err, store.ErrNotFound):
		return errors.New("task no longer exists")
	default:
		return err
	}
}

// timerLabel describes the running timer for the header.
func timerLabel(active *model.TimeEntry, title string, now time.Time) string {
	if active == nil {
		return "no timer"
	}
	label := fmt.Sprintf("▶ #%d", active.TaskID)
	if title != "" {
		label += " " + title
	}
	return label + " " + tasklist.FormatElapsed(now.Sub(active.StartTime))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a task id", s)
	}
	return id, nil
}
