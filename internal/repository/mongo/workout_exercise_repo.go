package mongo

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// workoutExerciseRepository implements repository.WorkoutExerciseRepository.
// Documents carry no owner; the parent workout is checked on every call.
type workoutExerciseRepository struct {
	s *store
}

func (r *workoutExerciseRepository) Create(ctx context.Context, userID string, workoutID, exerciseID int64, order int) (*domain.WorkoutExercise, bool, error) {
	if _, ok, err := r.s.ownedWorkout(ctx, workoutID, userID); err != nil || !ok {
		return nil, false, err
	}
	ex, ok, err := r.s.findExercise(ctx, bson.M{"_id": exerciseID})
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, fmt.Errorf("%w: exercise %d does not exist", repository.ErrConstraint, exerciseID)
	}
	id, err := r.s.nextID(ctx, workoutExerciseCollectionName)
	if err != nil {
		return nil, false, err
	}
	we := domain.WorkoutExercise{
		ID:         id,
		WorkoutID:  workoutID,
		ExerciseID: exerciseID,
		Order:      order,
		CreatedAt:  now(),
	}
	if _, err := r.s.workoutExercises.InsertOne(ctx, we); err != nil {
		return nil, false, wrapErr("create workout exercise", err)
	}
	we.Exercise = ex
	we.Sets = []domain.Set{}
	return &we, true, nil
}

func (r *workoutExerciseRepository) GetByID(ctx context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error) {
	we, ok, err := r.s.ownedWorkoutExercise(ctx, id, userID)
	if err != nil || !ok {
		return nil, false, err
	}
	if ex, ok, err := r.s.findExercise(ctx, bson.M{"_id": we.ExerciseID}); err != nil {
		return nil, false, err
	} else if ok {
		we.Exercise = ex
	}
	sets, err := r.s.setsOf(ctx, we.ID)
	if err != nil {
		return nil, false, err
	}
	we.Sets = sets
	return we, true, nil
}

func (s *store) setsOf(ctx context.Context, workoutExerciseID int64) ([]domain.Set, error) {
	sets := make([]domain.Set, 0)
	findOptions := options.Find().SetSort(bson.D{{Key: "setNumber", Value: 1}, {Key: "_id", Value: 1}})
	if err := findAll(ctx, s.sets, bson.M{"workoutExerciseId": workoutExerciseID}, &sets, findOptions); err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	return sets, nil
}

func (r *workoutExerciseRepository) ListByWorkout(ctx context.Context, workoutID int64, userID string) ([]domain.WorkoutExercise, bool, error) {
	w, ok, err := r.s.ownedWorkout(ctx, workoutID, userID)
	if err != nil || !ok {
		return nil, false, err
	}
	res := []domain.Workout{*w}
	if err := r.s.loadChildren(ctx, res); err != nil {
		return nil, false, err
	}
	return res[0].Exercises, true, nil
}

func (r *workoutExerciseRepository) NextOrder(ctx context.Context, workoutID int64, userID string) (int, bool, error) {
	if _, ok, err := r.s.ownedWorkout(ctx, workoutID, userID); err != nil || !ok {
		return 0, false, err
	}
	var last domain.WorkoutExercise
	err := r.s.workoutExercises.FindOne(ctx,
		bson.M{"workoutId": workoutID},
		options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}}),
	).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("next order: %w", err)
	}
	return last.Order + 1, true, nil
}

func (r *workoutExerciseRepository) Update(ctx context.Context, id int64, userID string, upd domain.WorkoutExerciseUpdate) (*domain.WorkoutExercise, bool, error) {
	if _, ok, err := r.s.ownedWorkoutExercise(ctx, id, userID); err != nil || !ok {
		return nil, false, err
	}
	if upd.Order != nil {
		res, err := r.s.workoutExercises.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"order": *upd.Order}})
		if err != nil {
			return nil, false, fmt.Errorf("update workout exercise: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, false, nil
		}
	}
	return r.GetByID(ctx, id, userID)
}

func (r *workoutExerciseRepository) Delete(ctx context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error) {
	var (
		deleted *domain.WorkoutExercise
		found   bool
	)
	err := r.s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		found = false
		we, ok, err := r.s.ownedWorkoutExercise(sc, id, userID)
		if err != nil || !ok {
			return err
		}
		if err := r.s.deleteWorkoutExercises(sc, bson.M{"_id": id}); err != nil {
			return err
		}
		deleted, found = we, true
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return deleted, true, nil
}
