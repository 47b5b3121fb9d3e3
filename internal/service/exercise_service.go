package service

import (
	"context"
	"strings"

	"alcyxob/liftlog/internal/domain"
)

// SearchExercisesInput looks up the shared library by name prefix.
type SearchExercisesInput struct {
	Query string `json:"q" validate:"max=255"`
	Limit int    `json:"limit" validate:"min=0,max=100"`
}

// AddExerciseInput places an exercise in a workout, creating the library
// entry if the name is new. Order defaults to the next free position;
// an order already in use is accepted.
type AddExerciseInput struct {
	WorkoutID    int64  `json:"workoutId" validate:"gt=0"`
	ExerciseName string `json:"exerciseName" validate:"required,max=255"`
	Order        *int   `json:"order" validate:"omitempty,min=0"`
}

type ReorderExerciseInput struct {
	WorkoutExerciseID int64 `json:"workoutExerciseId" validate:"gt=0"`
	Order             int   `json:"order" validate:"min=0"`
}

// --- Service Interface ---
type ExerciseService interface {
	SearchExercises(ctx context.Context, in SearchExercisesInput) Result[[]domain.Exercise]
	AddExerciseToWorkout(ctx context.Context, in AddExerciseInput) Result[*domain.WorkoutExercise]
	ReorderWorkoutExercise(ctx context.Context, in ReorderExerciseInput) Result[*domain.WorkoutExercise]
	RemoveExerciseFromWorkout(ctx context.Context, workoutExerciseID int64) Result[*domain.WorkoutExercise]
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	base
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(d Deps) ExerciseService {
	return &exerciseService{base: newBase(d)}
}

const defaultSearchLimit = 20

func (s *exerciseService) SearchExercises(ctx context.Context, in SearchExercisesInput) Result[[]domain.Exercise] {
	if _, f := s.caller(ctx); f != nil {
		return fail[[]domain.Exercise](f)
	}
	in.Query = strings.TrimSpace(in.Query)
	if f := s.check(in); f != nil {
		return fail[[]domain.Exercise](f)
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultSearchLimit
	}
	exs, err := s.repos.Exercises.List(ctx, in.Query, limit)
	if err != nil {
		return fail[[]domain.Exercise](s.storageFailure(ctx, "search exercises", err))
	}
	return ok(exs)
}

func (s *exerciseService) AddExerciseToWorkout(ctx context.Context, in AddExerciseInput) Result[*domain.WorkoutExercise] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.WorkoutExercise](f)
	}
	in.ExerciseName = strings.TrimSpace(in.ExerciseName)
	if f := s.check(in); f != nil {
		return fail[*domain.WorkoutExercise](f)
	}

	// Resolve the workout before touching the shared library.
	order, found, err := s.repos.WorkoutExercises.NextOrder(ctx, in.WorkoutID, userID)
	if err != nil {
		return fail[*domain.WorkoutExercise](s.storageFailure(ctx, "next order", err))
	}
	if !found {
		return fail[*domain.WorkoutExercise](notFound())
	}
	if in.Order != nil {
		order = *in.Order
	}

	ex, err := s.repos.Exercises.GetOrCreate(ctx, in.ExerciseName)
	if err != nil {
		return fail[*domain.WorkoutExercise](s.storageFailure(ctx, "get or create exercise", err))
	}
	we, found, err := s.repos.WorkoutExercises.Create(ctx, userID, in.WorkoutID, ex.ID, order)
	if err != nil {
		return fail[*domain.WorkoutExercise](s.storageFailure(ctx, "add exercise", err))
	}
	if !found {
		return fail[*domain.WorkoutExercise](notFound())
	}
	s.revalidate(ctx, we.WorkoutID)
	return ok(we)
}

func (s *exerciseService) ReorderWorkoutExercise(ctx context.Context, in ReorderExerciseInput) Result[*domain.WorkoutExercise] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.WorkoutExercise](f)
	}
	if f := s.check(in); f != nil {
		return fail[*domain.WorkoutExercise](f)
	}
	order := in.Order
	we, found, err := s.repos.WorkoutExercises.Update(ctx, in.WorkoutExerciseID, userID, domain.WorkoutExerciseUpdate{Order: &order})
	if err != nil {
		return fail[*domain.WorkoutExercise](s.storageFailure(ctx, "reorder exercise", err))
	}
	if !found {
		return fail[*domain.WorkoutExercise](notFound())
	}
	s.revalidate(ctx, we.WorkoutID)
	return ok(we)
}

// RemoveExerciseFromWorkout deletes the entry and its sets. The library
// exercise stays.
func (s *exerciseService) RemoveExerciseFromWorkout(ctx context.Context, workoutExerciseID int64) Result[*domain.WorkoutExercise] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.WorkoutExercise](f)
	}
	if f := validID("id", workoutExerciseID); f != nil {
		return fail[*domain.WorkoutExercise](f)
	}
	we, found, err := s.repos.WorkoutExercises.Delete(ctx, workoutExerciseID, userID)
	if err != nil {
		return fail[*domain.WorkoutExercise](s.storageFailure(ctx, "remove exercise", err))
	}
	if !found {
		return fail[*domain.WorkoutExercise](notFound())
	}
	s.revalidate(ctx, we.WorkoutID)
	return ok(we)
}
