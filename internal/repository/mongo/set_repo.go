package mongo

import (
	"context"
	"errors"
	"fmt"

	"alcyxob/liftlog/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setRepository implements repository.SetRepository. Ownership is resolved
// set -> workout exercise -> workout.
type setRepository struct {
	s *store
}

func (r *setRepository) Create(ctx context.Context, userID string, workoutExerciseID int64, setNumber int, weight float64, reps int) (*domain.Set, bool, error) {
	if _, ok, err := r.s.ownedWorkoutExercise(ctx, workoutExerciseID, userID); err != nil || !ok {
		return nil, false, err
	}
	id, err := r.s.nextID(ctx, setCollectionName)
	if err != nil {
		return nil, false, err
	}
	set := domain.Set{
		ID:                id,
		WorkoutExerciseID: workoutExerciseID,
		SetNumber:         setNumber,
		Weight:            domain.RoundWeight(weight),
		Reps:              reps,
		CreatedAt:         now(),
	}
	if _, err := r.s.sets.InsertOne(ctx, set); err != nil {
		return nil, false, wrapErr("create set", err)
	}
	return &set, true, nil
}

func (r *setRepository) GetByID(ctx context.Context, id int64, userID string) (*domain.Set, bool, error) {
	return r.s.ownedSet(ctx, id, userID)
}

func (r *setRepository) ListByWorkoutExercise(ctx context.Context, workoutExerciseID int64, userID string) ([]domain.Set, bool, error) {
	if _, ok, err := r.s.ownedWorkoutExercise(ctx, workoutExerciseID, userID); err != nil || !ok {
		return nil, false, err
	}
	sets, err := r.s.setsOf(ctx, workoutExerciseID)
	if err != nil {
		return nil, false, err
	}
	return sets, true, nil
}

func (r *setRepository) NextSetNumber(ctx context.Context, workoutExerciseID int64, userID string) (int, bool, error) {
	if _, ok, err := r.s.ownedWorkoutExercise(ctx, workoutExerciseID, userID); err != nil || !ok {
		return 0, false, err
	}
	var last domain.Set
	err := r.s.sets.FindOne(ctx,
		bson.M{"workoutExerciseId": workoutExerciseID},
		options.FindOne().SetSort(bson.D{{Key: "setNumber", Value: -1}}),
	).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 1, true, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("next set number: %w", err)
	}
	return last.SetNumber + 1, true, nil
}

func (r *setRepository) Update(ctx context.Context, id int64, userID string, upd domain.SetUpdate) (*domain.Set, bool, error) {
	set, ok, err := r.s.ownedSet(ctx, id, userID)
	if err != nil || !ok {
		return nil, false, err
	}
	upd.Apply(set)
	fields := bson.M{}
	if upd.SetNumber != nil {
		fields["setNumber"] = set.SetNumber
	}
	if upd.Weight != nil {
		fields["weight"] = set.Weight
	}
	if upd.Reps != nil {
		fields["reps"] = set.Reps
	}
	if len(fields) == 0 {
		return set, true, nil
	}
	res, err := r.s.sets.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return nil, false, fmt.Errorf("update set: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, false, nil
	}
	return set, true, nil
}

func (r *setRepository) Delete(ctx context.Context, id int64, userID string) (*domain.Set, bool, error) {
	set, ok, err := r.s.ownedSet(ctx, id, userID)
	if err != nil || !ok {
		return nil, false, err
	}
	res, err := r.s.sets.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, false, fmt.Errorf("delete set: %w", err)
	}
	if res.DeletedCount == 0 {
		return nil, false, nil
	}
	return set, true, nil
}
