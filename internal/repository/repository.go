package repository

import (
	"alcyxob/liftlog/internal/domain"
	"context"
)

// Error constants for the repository layer.
//
// Ownership mismatches are NOT errors: lookups report them as found=false,
// exactly like a missing row, so callers cannot discover other users' data.
var (
	ErrConstraint = RepositoryError("constraint violation")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// ExerciseRepository defines the interface for the shared exercise library.
type ExerciseRepository interface {
	Create(ctx context.Context, name string) (*domain.Exercise, error)
	GetByID(ctx context.Context, id int64) (*domain.Exercise, bool, error)
	GetByName(ctx context.Context, name string) (*domain.Exercise, bool, error)
	// GetOrCreate returns the exercise with this name, inserting it first if
	// it does not exist yet. Safe against a concurrent insert of the same name.
	GetOrCreate(ctx context.Context, name string) (*domain.Exercise, error)
	// List returns exercises whose name starts with prefix (case-insensitive),
	// ordered by name. limit <= 0 means no limit.
	List(ctx context.Context, prefix string, limit int) ([]domain.Exercise, error)
}

// WorkoutRepository defines the interface for interacting with workout data.
// Every method except Create filters by the owning user.
type WorkoutRepository interface {
	// Create inserts w, filling ID and timestamps (CreatedAt == UpdatedAt).
	Create(ctx context.Context, w *domain.Workout) error
	// CreateWithExercises inserts w and all drafts in one transaction. On any
	// failure nothing is written. The returned workout carries its children.
	CreateWithExercises(ctx context.Context, w *domain.Workout, drafts []domain.WorkoutExerciseDraft) error
	GetByID(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error)
	GetByIDWithExercises(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error)
	// ListByUser returns the user's workouts most recent first, optionally
	// restricted to a started_at window.
	ListByUser(ctx context.Context, userID string, window *domain.DateRange, withExercises bool) ([]domain.Workout, error)
	Update(ctx context.Context, id int64, userID string, upd domain.WorkoutUpdate) (*domain.Workout, bool, error)
	// Delete removes the workout; its exercises and sets go with it through
	// the storage engine's cascade.
	Delete(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error)
}

// WorkoutExerciseRepository manages exercises placed inside a workout.
// Rows have no owner column; every method resolves the parent workout and
// checks its user_id first.
type WorkoutExerciseRepository interface {
	// Create returns found=false when the workout is absent or not the user's.
	Create(ctx context.Context, userID string, workoutID, exerciseID int64, order int) (*domain.WorkoutExercise, bool, error)
	GetByID(ctx context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error)
	ListByWorkout(ctx context.Context, workoutID int64, userID string) ([]domain.WorkoutExercise, bool, error)
	// NextOrder returns max(order)+1 for the workout, or 0 when it is empty.
	NextOrder(ctx context.Context, workoutID int64, userID string) (int, bool, error)
	Update(ctx context.Context, id int64, userID string, upd domain.WorkoutExerciseUpdate) (*domain.WorkoutExercise, bool, error)
	Delete(ctx context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error)
}

// SetRepository manages performed sets. Ownership is resolved through
// workout_exercises -> workouts on every call.
type SetRepository interface {
	Create(ctx context.Context, userID string, workoutExerciseID int64, setNumber int, weight float64, reps int) (*domain.Set, bool, error)
	GetByID(ctx context.Context, id int64, userID string) (*domain.Set, bool, error)
	ListByWorkoutExercise(ctx context.Context, workoutExerciseID int64, userID string) ([]domain.Set, bool, error)
	// NextSetNumber returns max(set_number)+1, or 1 for the first set.
	NextSetNumber(ctx context.Context, workoutExerciseID int64, userID string) (int, bool, error)
	Update(ctx context.Context, id int64, userID string, upd domain.SetUpdate) (*domain.Set, bool, error)
	Delete(ctx context.Context, id int64, userID string) (*domain.Set, bool, error)
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Exercises        ExerciseRepository
	Workouts         WorkoutRepository
	WorkoutExercises WorkoutExerciseRepository
	Sets             SetRepository
}
