package memory

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"
)

// --- exercises ---

type exerciseRepo struct{ s *Store }

func (r *exerciseRepo) Create(_ context.Context, name string) (*domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ex, err := r.s.insertExercise(name)
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

func (r *exerciseRepo) GetByID(_ context.Context, id int64) (*domain.Exercise, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ex, ok := r.s.exercises[id]
	if !ok {
		return nil, false, nil
	}
	return &ex, true, nil
}

func (r *exerciseRepo) GetByName(_ context.Context, name string) (*domain.Exercise, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.exerciseByName[name]
	if !ok {
		return nil, false, nil
	}
	ex := r.s.exercises[id]
	return &ex, true, nil
}

func (r *exerciseRepo) GetOrCreate(_ context.Context, name string) (*domain.Exercise, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ex, err := r.s.getOrInsertExercise(name)
	if err != nil {
		return nil, err
	}
	return &ex, nil
}

func (r *exerciseRepo) List(_ context.Context, prefix string, limit int) ([]domain.Exercise, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res := make([]domain.Exercise, 0)
	for _, ex := range r.s.exercises {
		if hasPrefixFold(ex.Name, prefix) {
			res = append(res, ex)
		}
	}
	sortExercisesByName(res)
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

// --- workouts ---

type workoutRepo struct{ s *Store }

func (r *workoutRepo) Create(_ context.Context, w *domain.Workout) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.insertWorkout(w)
}

func (s *Store) insertWorkout(w *domain.Workout) error {
	if w.UserID == "" {
		return errors.New("workout requires a user id")
	}
	if err := checkVarchar("workouts.user_id", w.UserID); err != nil {
		return err
	}
	if w.Name != nil {
		if err := checkVarchar("workouts.name", *w.Name); err != nil {
			return err
		}
	}
	now := domain.Now()
	s.workoutSeq++
	w.ID = s.workoutSeq
	w.StartedAt = domain.Normalize(w.StartedAt)
	if w.CompletedAt != nil {
		completed := domain.Normalize(*w.CompletedAt)
		w.CompletedAt = &completed
	}
	w.CreatedAt = now
	w.UpdatedAt = now
	s.workouts[w.ID] = cloneWorkout(*w)
	return nil
}

func (r *workoutRepo) CreateWithExercises(_ context.Context, w *domain.Workout, drafts []domain.WorkoutExerciseDraft) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snap := r.s.begin()
	if err := r.s.insertWorkoutTree(w, drafts); err != nil {
		r.s.rollback(snap)
		w.ID = 0
		w.Exercises = nil
		return err
	}
	r.s.loadChildren(w)
	return nil
}

func (s *Store) insertWorkoutTree(w *domain.Workout, drafts []domain.WorkoutExerciseDraft) error {
	if err := s.insertWorkout(w); err != nil {
		return err
	}
	for _, d := range drafts {
		ex, err := s.getOrInsertExercise(d.ExerciseName)
		if err != nil {
			return err
		}
		s.workoutExerciseSeq++
		we := domain.WorkoutExercise{
			ID:         s.workoutExerciseSeq,
			WorkoutID:  w.ID,
			ExerciseID: ex.ID,
			Order:      d.Order,
			CreatedAt:  w.CreatedAt,
		}
		s.workoutExercises[we.ID] = we
		for _, sd := range d.Sets {
			s.setSeq++
			s.sets[s.setSeq] = domain.Set{
				ID:                s.setSeq,
				WorkoutExerciseID: we.ID,
				SetNumber:         sd.SetNumber,
				Weight:            domain.RoundWeight(sd.Weight),
				Reps:              sd.Reps,
				CreatedAt:         w.CreatedAt,
			}
		}
	}
	return nil
}

func (r *workoutRepo) GetByID(_ context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.ownedWorkout(id, userID)
	if !ok {
		return nil, false, nil
	}
	return &w, true, nil
}

func (r *workoutRepo) GetByIDWithExercises(_ context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.ownedWorkout(id, userID)
	if !ok {
		return nil, false, nil
	}
	r.s.loadChildren(&w)
	return &w, true, nil
}

func (r *workoutRepo) ListByUser(_ context.Context, userID string, window *domain.DateRange, withExercises bool) ([]domain.Workout, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	res := make([]domain.Workout, 0)
	for _, stored := range r.s.workouts {
		if stored.UserID != userID {
			continue
		}
		if window != nil && !window.Contains(stored.StartedAt) {
			continue
		}
		w := cloneWorkout(stored)
		if withExercises {
			r.s.loadChildren(&w)
		}
		res = append(res, w)
	}
	domain.SortWorkoutsByStart(res)
	return res, nil
}

func (r *workoutRepo) Update(_ context.Context, id int64, userID string, upd domain.WorkoutUpdate) (*domain.Workout, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.ownedWorkout(id, userID)
	if !ok {
		return nil, false, nil
	}
	if upd.Name != nil {
		if err := checkVarchar("workouts.name", *upd.Name); err != nil {
			return nil, false, err
		}
	}
	upd.Apply(&w, domain.Now())
	r.s.workouts[id] = cloneWorkout(w)
	return &w, true, nil
}

func (r *workoutRepo) Delete(_ context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.ownedWorkout(id, userID)
	if !ok {
		return nil, false, nil
	}
	r.s.deleteWorkoutCascade(id)
	return &w, true, nil
}

// --- workout exercises ---

type workoutExerciseRepo struct{ s *Store }

func (r *workoutExerciseRepo) Create(_ context.Context, userID string, workoutID, exerciseID int64, order int) (*domain.WorkoutExercise, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ownedWorkout(workoutID, userID); !ok {
		return nil, false, nil
	}
	ex, ok := r.s.exercises[exerciseID]
	if !ok {
		return nil, false, fmt.Errorf("%w: exercise %d does not exist", repository.ErrConstraint, exerciseID)
	}
	r.s.workoutExerciseSeq++
	we := domain.WorkoutExercise{
		ID:         r.s.workoutExerciseSeq,
		WorkoutID:  workoutID,
		ExerciseID: exerciseID,
		Order:      order,
		CreatedAt:  domain.Now(),
	}
	r.s.workoutExercises[we.ID] = we
	we.Exercise = &ex
	we.Sets = []domain.Set{}
	return &we, true, nil
}

func (r *workoutExerciseRepo) GetByID(_ context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	we, ok := r.s.ownedWorkoutExercise(id, userID)
	if !ok {
		return nil, false, nil
	}
	if ex, ok := r.s.exercises[we.ExerciseID]; ok {
		we.Exercise = &ex
	}
	we.Sets = r.s.setsOf(we.ID)
	return &we, true, nil
}

func (r *workoutExerciseRepo) ListByWorkout(_ context.Context, workoutID int64, userID string) ([]domain.WorkoutExercise, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.ownedWorkout(workoutID, userID)
	if !ok {
		return nil, false, nil
	}
	r.s.loadChildren(&w)
	return w.Exercises, true, nil
}

func (r *workoutExerciseRepo) NextOrder(_ context.Context, workoutID int64, userID string) (int, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.s.ownedWorkout(workoutID, userID); !ok {
		return 0, false, nil
	}
	next := 0
	for _, we := range r.s.workoutExercises {
		if we.WorkoutID == workoutID && we.Order+1 > next {
			next = we.Order + 1
		}
	}
	return next, true, nil
}

func (r *workoutExerciseRepo) Update(_ context.Context, id int64, userID string, upd domain.WorkoutExerciseUpdate) (*domain.WorkoutExercise, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	we, ok := r.s.ownedWorkoutExercise(id, userID)
	if !ok {
		return nil, false, nil
	}
	if upd.Order != nil {
		we.Order = *upd.Order
	}
	r.s.workoutExercises[id] = we
	return &we, true, nil
}

func (r *workoutExerciseRepo) Delete(_ context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	we, ok := r.s.ownedWorkoutExercise(id, userID)
	if !ok {
		return nil, false, nil
	}
	r.s.deleteWorkoutExerciseCascade(id)
	return &we, true, nil
}

// --- sets ---

type setRepo struct{ s *Store }

func (r *setRepo) Create(_ context.Context, userID string, workoutExerciseID int64, setNumber int, weight float64, reps int) (*domain.Set, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.ownedWorkoutExercise(workoutExerciseID, userID); !ok {
		return nil, false, nil
	}
	r.s.setSeq++
	set := domain.Set{
		ID:                r.s.setSeq,
		WorkoutExerciseID: workoutExerciseID,
		SetNumber:         setNumber,
		Weight:            domain.RoundWeight(weight),
		Reps:              reps,
		CreatedAt:         domain.Now(),
	}
	r.s.sets[set.ID] = set
	return &set, true, nil
}

func (r *setRepo) GetByID(_ context.Context, id int64, userID string) (*domain.Set, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	set, ok := r.s.ownedSet(id, userID)
	if !ok {
		return nil, false, nil
	}
	return &set, true, nil
}

func (r *setRepo) ListByWorkoutExercise(_ context.Context, workoutExerciseID int64, userID string) ([]domain.Set, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.s.ownedWorkoutExercise(workoutExerciseID, userID); !ok {
		return nil, false, nil
	}
	return r.s.setsOf(workoutExerciseID), true, nil
}

func (r *setRepo) NextSetNumber(_ context.Context, workoutExerciseID int64, userID string) (int, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if _, ok := r.s.ownedWorkoutExercise(workoutExerciseID, userID); !ok {
		return 0, false, nil
	}
	next := 1
	for _, set := range r.s.sets {
		if set.WorkoutExerciseID == workoutExerciseID && set.SetNumber+1 > next {
			next = set.SetNumber + 1
		}
	}
	return next, true, nil
}

func (r *setRepo) Update(_ context.Context, id int64, userID string, upd domain.SetUpdate) (*domain.Set, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set, ok := r.s.ownedSet(id, userID)
	if !ok {
		return nil, false, nil
	}
	upd.Apply(&set)
	r.s.sets[id] = set
	return &set, true, nil
}

func (r *setRepo) Delete(_ context.Context, id int64, userID string) (*domain.Set, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set, ok := r.s.ownedSet(id, userID)
	if !ok {
		return nil, false, nil
	}
	delete(r.s.sets, id)
	return &set, true, nil
}
