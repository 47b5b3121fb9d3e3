// Package service is the mutation layer: the only entry point the
// presentation layer uses. Every action resolves the caller, validates its
// input, calls the repositories with the caller as owner, signals stale
// views and returns a Result.
package service

import (
	"context"
	"log/slog"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/identity"
	"alcyxob/liftlog/internal/logging"
	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/revalidate"

	"github.com/go-playground/validator/v10"
)

// Deps are the collaborators shared by all services.
type Deps struct {
	Repos    repository.Repositories
	Identity identity.Provider
	// Sink may be nil; signals are then dropped.
	Sink revalidate.Sink
	// Now defaults to domain.Now.
	Now func() time.Time
}

type base struct {
	repos    repository.Repositories
	identity identity.Provider
	sink     revalidate.Sink
	validate *validator.Validate
	now      func() time.Time
}

func newBase(d Deps) base {
	b := base{
		repos:    d.Repos,
		identity: d.Identity,
		sink:     d.Sink,
		validate: newValidator(),
		now:      d.Now,
	}
	if b.identity == nil {
		b.identity = identity.ContextProvider{}
	}
	if b.sink == nil {
		b.sink = revalidate.LogSink{}
	}
	if b.now == nil {
		b.now = domain.Now
	}
	return b
}

// caller resolves the signed-in user. It runs before validation, so an
// anonymous caller gets Unauthorized whatever the input.
func (b *base) caller(ctx context.Context) (string, *Failure) {
	userID, ok := b.identity.UserID(ctx)
	if !ok || userID == "" {
		return "", unauthorized()
	}
	return userID, nil
}

// storageFailure logs the fault and returns the generic failure.
func (b *base) storageFailure(ctx context.Context, op string, err error) *Failure {
	logging.FromContext(ctx).Error("storage failure", slog.String("op", op), slog.Any("error", err))
	return &Failure{Kind: KindStorage, Message: msgStorage}
}

// revalidate signals the dashboard and, for a positive id, the workout page.
func (b *base) revalidate(ctx context.Context, workoutID int64) {
	paths := []string{revalidate.DashboardPath}
	if workoutID > 0 {
		paths = append(paths, revalidate.WorkoutPath(workoutID))
	}
	for _, p := range paths {
		if err := b.sink.Revalidate(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("revalidate failed", slog.String("path", p), slog.Any("error", err))
		}
	}
}
