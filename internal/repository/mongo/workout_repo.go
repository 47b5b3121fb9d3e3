// internal/repository/mongo/workout_repo.go
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

// workoutRepository implements repository.WorkoutRepository
type workoutRepository struct {
	s *store
}

// Create inserts a new workout.
func (r *workoutRepository) Create(ctx context.Context, w *domain.Workout) error {
	return r.s.insertWorkout(ctx, ctx, w)
}

func (s *store) insertWorkout(ctx, seqCtx context.Context, w *domain.Workout) error {
	if w.UserID == "" {
		return errors.New("workout requires a user id")
	}
	if err := checkVarchar("workouts.userId", w.UserID); err != nil {
		return err
	}
	if w.Name != nil {
		if err := checkVarchar("workouts.name", *w.Name); err != nil {
			return err
		}
	}
	id, err := s.nextID(seqCtx, workoutCollectionName)
	if err != nil {
		return err
	}
	ts := now()
	doc := *w
	doc.ID = id
	doc.StartedAt = normalize(w.StartedAt)
	if w.CompletedAt != nil {
		completed := normalize(*w.CompletedAt)
		doc.CompletedAt = &completed
	}
	doc.CreatedAt = ts
	doc.UpdatedAt = ts
	doc.Exercises = nil
	if _, err := s.workouts.InsertOne(ctx, doc); err != nil {
		return wrapErr("create workout", err)
	}
	*w = doc
	return nil
}

// CreateWithExercises writes the whole tree in one transaction.
func (r *workoutRepository) CreateWithExercises(ctx context.Context, w *domain.Workout, drafts []domain.WorkoutExerciseDraft) error {
	created := *w
	err := r.s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		created = *w
		if err := r.s.insertWorkout(sc, ctx, &created); err != nil {
			return err
		}
		for _, d := range drafts {
			ex, err := r.s.getOrCreateExercise(sc, ctx, d.ExerciseName)
			if err != nil {
				return err
			}
			weID, err := r.s.nextID(ctx, workoutExerciseCollectionName)
			if err != nil {
				return err
			}
			we := domain.WorkoutExercise{
				ID:         weID,
				WorkoutID:  created.ID,
				ExerciseID: ex.ID,
				Order:      d.Order,
				CreatedAt:  created.CreatedAt,
			}
			if _, err := r.s.workoutExercises.InsertOne(sc, we); err != nil {
				return wrapErr("create workout exercise", err)
			}
			for _, sd := range d.Sets {
				setID, err := r.s.nextID(ctx, setCollectionName)
				if err != nil {
					return err
				}
				set := domain.Set{
					ID:                setID,
					WorkoutExerciseID: weID,
					SetNumber:         sd.SetNumber,
					Weight:            domain.RoundWeight(sd.Weight),
					Reps:              sd.Reps,
					CreatedAt:         created.CreatedAt,
				}
				if _, err := r.s.sets.InsertOne(sc, set); err != nil {
					return wrapErr("create set", err)
				}
			}
		}
		res := []domain.Workout{created}
		if err := r.s.loadChildren(sc, res); err != nil {
			return err
		}
		created = res[0]
		return nil
	})
	if err != nil {
		return err
	}
	*w = created
	return nil
}

func (r *workoutRepository) GetByID(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	return r.s.ownedWorkout(ctx, id, userID)
}

func (r *workoutRepository) GetByIDWithExercises(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	w, found, err := r.s.ownedWorkout(ctx, id, userID)
	if err != nil || !found {
		return nil, false, err
	}
	res := []domain.Workout{*w}
	if err := r.s.loadChildren(ctx, res); err != nil {
		return nil, false, err
	}
	return &res[0], true, nil
}

// ListByUser returns the user's workouts, most recent first.
func (r *workoutRepository) ListByUser(ctx context.Context, userID string, window *domain.DateRange, withExercises bool) ([]domain.Workout, error) {
	filter := bson.M{"userId": userID}
	if window != nil {
		filter["startedAt"] = bson.M{"$gte": window.Start, "$lt": window.End}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}, {Key: "_id", Value: -1}})

	workouts := make([]domain.Workout, 0)
	if err := findAll(ctx, r.s.workouts, filter, &workouts, findOptions); err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	if withExercises {
		if err := r.s.loadChildren(ctx, workouts); err != nil {
			return nil, err
		}
	}
	return workouts, nil
}

// Update applies the supplied fields with $set/$unset under the owner filter.
func (r *workoutRepository) Update(ctx context.Context, id int64, userID string, upd domain.WorkoutUpdate) (*domain.Workout, bool, error) {
	if upd.Name != nil {
		if err := checkVarchar("workouts.name", *upd.Name); err != nil {
			return nil, false, err
		}
	}
	set := bson.M{"updatedAt": now()}
	unset := bson.M{}
	if upd.Name != nil {
		if *upd.Name == "" {
			unset["name"] = ""
		} else {
			set["name"] = *upd.Name
		}
	}
	if upd.StartedAt != nil {
		set["startedAt"] = normalize(*upd.StartedAt)
	}
	if upd.ClearCompletedAt {
		unset["completedAt"] = ""
	} else if upd.CompletedAt != nil {
		set["completedAt"] = normalize(*upd.CompletedAt)
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var w domain.Workout
	err := r.s.workouts.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, wrapErr("update workout", err)
	}
	return &w, true, nil
}

// Delete removes the workout together with its exercises and sets.
func (r *workoutRepository) Delete(ctx context.Context, id int64, userID string) (*domain.Workout, bool, error) {
	var (
		deleted domain.Workout
		found   bool
	)
	err := r.s.withTransaction(ctx, func(sc mongo.SessionContext) error {
		found = false
		err := r.s.workouts.FindOneAndDelete(sc, bson.M{"_id": id, "userId": userID}).Decode(&deleted)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil
			}
			return fmt.Errorf("delete workout: %w", err)
		}
		if err := r.s.deleteWorkoutExercises(sc, bson.M{"workoutId": id}); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &deleted, true, nil
}
