package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/model"
	"github.com/shield44-project/Time-Taken-for-Tasks-Tracker/internal/store"
)

// Clock is a manually advanced clock for deterministic durations.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T, opts ...store.Option) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:", opts...)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// NewClockedStore creates a test store driven by a fake clock starting at
// 2024-03-04 08:00 UTC.
func NewClockedStore(t *testing.T) (*store.SQLiteStore, *Clock) {
	t.Helper()
	clock := NewClock(time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC))
	return NewTestStore(t, store.WithClock(clock.Now)), clock
}

// MustUser registers a subject or fails the test.
func MustUser(t *testing.T, s store.Store, handle string) *model.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), model.NewUser{Handle: handle})
	if err != nil {
		t.Fatalf("creating user %q: %v", handle, err)
	}
	return u
}

// MustTask creates a task or fails the test.
func MustTask(t *testing.T, s store.Store, in model.NewTask) *model.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("creating task %q: %v", in.Title, err)
	}
	return task
}
