package service

import (
	"context"
	"strings"
	"time"

	"alcyxob/liftlog/internal/domain"
)

// CreateWorkoutInput starts a session. StartedAt defaults to now and a blank
// name to the generated "Workout Jan 2, 2006" label.
type CreateWorkoutInput struct {
	Name      *string    `json:"name" validate:"omitempty,max=255"`
	StartedAt *time.Time `json:"startedAt"`
}

// CreateWorkoutFromTemplateInput creates a workout with its exercises and
// sets in one atomic write.
type CreateWorkoutFromTemplateInput struct {
	Name      *string                 `json:"name" validate:"omitempty,max=255"`
	StartedAt *time.Time              `json:"startedAt"`
	Exercises []TemplateExerciseInput `json:"exercises" validate:"required,min=1,max=50,dive"`
}

// TemplateExerciseInput places an exercise, created on demand by name.
// Order defaults to the row's position in the list.
type TemplateExerciseInput struct {
	Name  string             `json:"name" validate:"required,max=255"`
	Order *int               `json:"order" validate:"omitempty,min=0"`
	Sets  []TemplateSetInput `json:"sets" validate:"max=100,dive"`
}

// TemplateSetInput is one planned set. SetNumber defaults to its position.
type TemplateSetInput struct {
	SetNumber *int    `json:"setNumber" validate:"omitempty,min=1"`
	Weight    float64 `json:"weight" validate:"min=0,max=99999999.99"`
	Reps      int     `json:"reps" validate:"min=0,max=10000"`
}

type ListWorkoutsInput struct {
	// Day restricts the list to one UTC calendar day.
	Day           *time.Time `json:"day"`
	WithExercises bool       `json:"withExercises"`
}

// UpdateWorkoutInput is a partial update; nil fields are left unchanged.
// ClearCompletedAt reopens a completed workout.
type UpdateWorkoutInput struct {
	ID               int64      `json:"id" validate:"gt=0"`
	Name             *string    `json:"name" validate:"omitempty,max=255"`
	StartedAt        *time.Time `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt"`
	ClearCompletedAt bool       `json:"-"`
}

// WorkoutService defines the workout actions.
type WorkoutService interface {
	CreateWorkout(ctx context.Context, in CreateWorkoutInput) Result[*domain.Workout]
	CreateWorkoutFromTemplate(ctx context.Context, in CreateWorkoutFromTemplateInput) Result[*domain.Workout]
	GetWorkout(ctx context.Context, id int64) Result[*domain.Workout]
	ListWorkouts(ctx context.Context, in ListWorkoutsInput) Result[[]domain.Workout]
	UpdateWorkout(ctx context.Context, in UpdateWorkoutInput) Result[*domain.Workout]
	CompleteWorkout(ctx context.Context, id int64) Result[*domain.Workout]
	ReopenWorkout(ctx context.Context, id int64) Result[*domain.Workout]
	DeleteWorkout(ctx context.Context, id int64) Result[*domain.Workout]
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	base
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(d Deps) WorkoutService {
	return &workoutService{base: newBase(d)}
}

func (s *workoutService) CreateWorkout(ctx context.Context, in CreateWorkoutInput) Result[*domain.Workout] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Workout](f)
	}
	in.Name = trimPtr(in.Name)
	if f := s.check(in); f != nil {
		return fail[*domain.Workout](f)
	}

	startedAt := s.now()
	if in.StartedAt != nil {
		startedAt = *in.StartedAt
	}
	w := &domain.Workout{
		UserID:    userID,
		Name:      workoutName(in.Name, startedAt),
		StartedAt: startedAt,
	}
	if err := s.repos.Workouts.Create(ctx, w); err != nil {
		return fail[*domain.Workout](s.storageFailure(ctx, "create workout", err))
	}
	s.revalidate(ctx, w.ID)
	return ok(w)
}

func (s *workoutService) CreateWorkoutFromTemplate(ctx context.Context, in CreateWorkoutFromTemplateInput) Result[*domain.Workout] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Workout](f)
	}
	in.Name = trimPtr(in.Name)
	for i := range in.Exercises {
		in.Exercises[i].Name = strings.TrimSpace(in.Exercises[i].Name)
	}
	if f := s.check(in); f != nil {
		return fail[*domain.Workout](f)
	}

	startedAt := s.now()
	if in.StartedAt != nil {
		startedAt = *in.StartedAt
	}
	drafts := make([]domain.WorkoutExerciseDraft, 0, len(in.Exercises))
	for i, ex := range in.Exercises {
		d := domain.WorkoutExerciseDraft{ExerciseName: ex.Name, Order: i}
		if ex.Order != nil {
			d.Order = *ex.Order
		}
		for j, set := range ex.Sets {
			sd := domain.SetDraft{SetNumber: j + 1, Weight: domain.RoundWeight(set.Weight), Reps: set.Reps}
			if set.SetNumber != nil {
				sd.SetNumber = *set.SetNumber
			}
			d.Sets = append(d.Sets, sd)
		}
		drafts = append(drafts, d)
	}
	w := &domain.Workout{
		UserID:    userID,
		Name:      workoutName(in.Name, startedAt),
		StartedAt: startedAt,
	}
	if err := s.repos.Workouts.CreateWithExercises(ctx, w, drafts); err != nil {
		return fail[*domain.Workout](s.storageFailure(ctx, "create workout from template", err))
	}
	s.revalidate(ctx, w.ID)
	return ok(w)
}

// GetWorkout returns the workout with its exercises and sets in display order.
func (s *workoutService) GetWorkout(ctx context.Context, id int64) Result[*domain.Workout] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Workout](f)
	}
	if f := validID("id", id); f != nil {
		return fail[*domain.Workout](f)
	}
	w, found, err := s.repos.Workouts.GetByIDWithExercises(ctx, id, userID)
	if err != nil {
		return fail[*domain.Workout](s.storageFailure(ctx, "get workout", err))
	}
	if !found {
		return fail[*domain.Workout](notFound())
	}
	return ok(w)
}

func (s *workoutService) ListWorkouts(ctx context.Context, in ListWorkoutsInput) Result[[]domain.Workout] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[[]domain.Workout](f)
	}
	var window *domain.DateRange
	if in.Day != nil {
		r := domain.DayRange(*in.Day)
		window = &r
	}
	ws, err := s.repos.Workouts.ListByUser(ctx, userID, window, in.WithExercises)
	if err != nil {
		return fail[[]domain.Workout](s.storageFailure(ctx, "list workouts", err))
	}
	return ok(ws)
}

// UpdateWorkout re-reads the workout to check the completion time against
// the start time it will end up with.
func (s *workoutService) UpdateWorkout(ctx context.Context, in UpdateWorkoutInput) Result[*domain.Workout] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Workout](f)
	}
	in.Name = trimPtr(in.Name)
	if f := s.check(in); f != nil {
		return fail[*domain.Workout](f)
	}

	current, found, err := s.repos.Workouts.GetByID(ctx, in.ID, userID)
	if err != nil {
		return fail[*domain.Workout](s.storageFailure(ctx, "get workout", err))
	}
	if !found {
		return fail[*domain.Workout](notFound())
	}

	upd := domain.WorkoutUpdate{
		Name:             in.Name,
		StartedAt:        in.StartedAt,
		CompletedAt:      in.CompletedAt,
		ClearCompletedAt: in.ClearCompletedAt,
	}
	next := *current
	upd.Apply(&next, s.now())
	if f := checkWindow(next.StartedAt, next.CompletedAt); f != nil {
		return fail[*domain.Workout](f)
	}
	return s.update(ctx, "update workout", in.ID, userID, upd)
}

func (s *workoutService) update(ctx context.Context, op string, id int64, userID string, upd domain.WorkoutUpdate) Result[*domain.Workout] {
	w, found, err := s.repos.Workouts.Update(ctx, id, userID, upd)
	if err != nil {
		return fail[*domain.Workout](s.storageFailure(ctx, op, err))
	}
	if !found {
		return fail[*domain.Workout](notFound())
	}
	s.revalidate(ctx, w.ID)
	return ok(w)
}

// CompleteWorkout stamps completedAt with the current time. Completing an
// already completed workout leaves it untouched.
func (s *workoutService) CompleteWorkout(ctx context.Context, id int64) Result[*domain.Workout] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Workout](f)
	}
	if f := validID("id", id); f != nil {
		return fail[*domain.Workout](f)
	}
	current, found, err := s.repos.Workouts.GetByID(ctx, id, userID)
	if err != nil {
		return fail[*domain.Workout](s.storageFailure(ctx, "get workout", err))
	}
	if !found {
		return fail[*domain.Workout](notFound())
	}
	if current.Status() == domain.StatusCompleted {
		return ok(current)
	}
	now := s.now()
	if f := checkWindow(current.StartedAt, &now); f != nil {
		return fail[*domain.Workout](f)
	}
	return s.update(ctx, "complete workout", id, userID, domain.WorkoutUpdate{CompletedAt: &now})
}

// ReopenWorkout moves a workout back to in progress.
func (s *workoutService) ReopenWorkout(ctx context.Context, id int64) Result[*domain.Workout] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Workout](f)
	}
	if f := validID("id", id); f != nil {
		return fail[*domain.Workout](f)
	}
	return s.update(ctx, "reopen workout", id, userID, domain.WorkoutUpdate{ClearCompletedAt: true})
}

// DeleteWorkout removes the workout; its exercises and sets cascade.
func (s *workoutService) DeleteWorkout(ctx context.Context, id int64) Result[*domain.Workout] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Workout](f)
	}
	if f := validID("id", id); f != nil {
		return fail[*domain.Workout](f)
	}
	w, found, err := s.repos.Workouts.Delete(ctx, id, userID)
	if err != nil {
		return fail[*domain.Workout](s.storageFailure(ctx, "delete workout", err))
	}
	if !found {
		return fail[*domain.Workout](notFound())
	}
	s.revalidate(ctx, w.ID)
	return ok(w)
}
