package service

import (
	"context"

	"alcyxob/liftlog/internal/domain"
)

// AddSetInput records a set. SetNumber defaults to the next number.
type AddSetInput struct {
	WorkoutExerciseID int64   `json:"workoutExerciseId" validate:"gt=0"`
	SetNumber         *int    `json:"setNumber" validate:"omitempty,min=1"`
	Weight            float64 `json:"weight" validate:"min=0,max=99999999.99"`
	Reps              int     `json:"reps" validate:"min=0,max=10000"`
}

// UpdateSetInput is a partial update; nil fields are left unchanged.
type UpdateSetInput struct {
	ID        int64    `json:"id" validate:"gt=0"`
	SetNumber *int     `json:"setNumber" validate:"omitempty,min=1"`
	Weight    *float64 `json:"weight" validate:"omitempty,min=0,max=99999999.99"`
	Reps      *int     `json:"reps" validate:"omitempty,min=0,max=10000"`
}

type SetService interface {
	AddSet(ctx context.Context, in AddSetInput) Result[*domain.Set]
	UpdateSet(ctx context.Context, in UpdateSetInput) Result[*domain.Set]
	DeleteSet(ctx context.Context, id int64) Result[*domain.Set]
}

type setService struct {
	base
}

func NewSetService(d Deps) SetService {
	return &setService{base: newBase(d)}
}

func (s *setService) AddSet(ctx context.Context, in AddSetInput) Result[*domain.Set] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Set](f)
	}
	if f := s.check(in); f != nil {
		return fail[*domain.Set](f)
	}

	we, found, err := s.repos.WorkoutExercises.GetByID(ctx, in.WorkoutExerciseID, userID)
	if err != nil {
		return fail[*domain.Set](s.storageFailure(ctx, "get workout exercise", err))
	}
	if !found {
		return fail[*domain.Set](notFound())
	}
	number := 0
	if in.SetNumber != nil {
		number = *in.SetNumber
	} else {
		number, found, err = s.repos.Sets.NextSetNumber(ctx, we.ID, userID)
		if err != nil {
			return fail[*domain.Set](s.storageFailure(ctx, "next set number", err))
		}
		if !found {
			return fail[*domain.Set](notFound())
		}
	}

	set, found, err := s.repos.Sets.Create(ctx, userID, we.ID, number, domain.RoundWeight(in.Weight), in.Reps)
	if err != nil {
		return fail[*domain.Set](s.storageFailure(ctx, "add set", err))
	}
	if !found {
		return fail[*domain.Set](notFound())
	}
	s.revalidate(ctx, we.WorkoutID)
	return ok(set)
}

func (s *setService) UpdateSet(ctx context.Context, in UpdateSetInput) Result[*domain.Set] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Set](f)
	}
	if f := s.check(in); f != nil {
		return fail[*domain.Set](f)
	}
	set, found, err := s.repos.Sets.Update(ctx, in.ID, userID, domain.SetUpdate{
		SetNumber: in.SetNumber,
		Weight:    in.Weight,
		Reps:      in.Reps,
	})
	if err != nil {
		return fail[*domain.Set](s.storageFailure(ctx, "update set", err))
	}
	if !found {
		return fail[*domain.Set](notFound())
	}
	s.revalidateSet(ctx, set, userID)
	return ok(set)
}

func (s *setService) DeleteSet(ctx context.Context, id int64) Result[*domain.Set] {
	userID, f := s.caller(ctx)
	if f != nil {
		return fail[*domain.Set](f)
	}
	if f := validID("id", id); f != nil {
		return fail[*domain.Set](f)
	}
	set, found, err := s.repos.Sets.Delete(ctx, id, userID)
	if err != nil {
		return fail[*domain.Set](s.storageFailure(ctx, "delete set", err))
	}
	if !found {
		return fail[*domain.Set](notFound())
	}
	s.revalidateSet(ctx, set, userID)
	return ok(set)
}

// revalidateSet resolves the set's workout for the detail path. A failed
// lookup still signals the dashboard.
func (s *setService) revalidateSet(ctx context.Context, set *domain.Set, userID string) {
	we, found, err := s.repos.WorkoutExercises.GetByID(ctx, set.WorkoutExerciseID, userID)
	if err != nil || !found {
		s.revalidate(ctx, 0)
		return
	}
	s.revalidate(ctx, we.WorkoutID)
}
