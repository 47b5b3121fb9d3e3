// Package revalidate tells cached views that their data changed.
package revalidate

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"alcyxob/liftlog/internal/logging"
)

// DashboardPath is the list view every workout mutation invalidates.
const DashboardPath = "/dashboard"

// WorkoutPath is the detail view of one workout.
func WorkoutPath(workoutID int64) string {
	return DashboardPath + "/workout/" + strconv.FormatInt(workoutID, 10)
}

// Sink receives revalidation signals. A failing sink never fails the
// mutation that triggered it; callers log the error and move on.
type Sink interface {
	Revalidate(ctx context.Context, path string) error
}

// LogSink only records the signal in the log.
type LogSink struct{}

func (LogSink) Revalidate(ctx context.Context, path string) error {
	logging.FromContext(ctx).Debug("revalidate", slog.String("path", path))
	return nil
}

// Recorder keeps every path it receives. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *Recorder) Revalidate(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return nil
}

// Paths returns a copy of the recorded paths in arrival order.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Reset forgets the recorded paths.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = nil
}

// Multi fans a signal out to every sink and returns the first error.
type Multi []Sink

func (m Multi) Revalidate(ctx context.Context, path string) error {
	var first error
	for _, s := range m {
		if err := s.Revalidate(ctx, path); err != nil && first == nil {
			first = err
		}
	}
	return first
}
