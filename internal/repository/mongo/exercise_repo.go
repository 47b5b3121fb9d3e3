package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// exerciseRepository implements repository.ExerciseRepository
type exerciseRepository struct {
	s *store
}

// Create inserts a new exercise. The unique index turns a duplicate name
// into repository.ErrConstraint.
func (r *exerciseRepository) Create(ctx context.Context, name string) (*domain.Exercise, error) {
	ex, err := r.s.insertExercise(ctx, ctx, name)
	if err != nil {
		return nil, err
	}
	return ex, nil
}

// insertExercise writes through ctx, which may carry a transaction, and
// draws the id through seqCtx, which must not.
func (s *store) insertExercise(ctx, seqCtx context.Context, name string) (*domain.Exercise, error) {
	if err := checkVarchar("exercises.name", name); err != nil {
		return nil, err
	}
	id, err := s.nextID(seqCtx, exerciseCollectionName)
	if err != nil {
		return nil, err
	}
	ts := now()
	ex := domain.Exercise{ID: id, Name: name, CreatedAt: ts, UpdatedAt: ts}
	if _, err := s.exercises.InsertOne(ctx, ex); err != nil {
		return nil, wrapErr("create exercise", err)
	}
	return &ex, nil
}

func (r *exerciseRepository) GetByID(ctx context.Context, id int64) (*domain.Exercise, bool, error) {
	return r.s.findExercise(ctx, bson.M{"_id": id})
}

func (r *exerciseRepository) GetByName(ctx context.Context, name string) (*domain.Exercise, bool, error) {
	return r.s.findExercise(ctx, bson.M{"name": name})
}

func (s *store) findExercise(ctx context.Context, filter bson.M) (*domain.Exercise, bool, error) {
	var ex domain.Exercise
	if err := s.exercises.FindOne(ctx, filter).Decode(&ex); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get exercise: %w", err)
	}
	return &ex, true, nil
}

func (r *exerciseRepository) GetOrCreate(ctx context.Context, name string) (*domain.Exercise, error) {
	return r.s.getOrCreateExercise(ctx, ctx, name)
}

// getOrCreateExercise reads first, inserts on a miss and falls back to a
// second read when a concurrent insert won the unique index.
func (s *store) getOrCreateExercise(ctx, seqCtx context.Context, name string) (*domain.Exercise, error) {
	ex, found, err := s.findExercise(ctx, bson.M{"name": name})
	if err != nil {
		return nil, err
	}
	if found {
		return ex, nil
	}
	ex, err = s.insertExercise(ctx, seqCtx, name)
	if err == nil {
		return ex, nil
	}
	if !errors.Is(err, repository.ErrConstraint) || checkVarchar("exercises.name", name) != nil {
		return nil, err
	}
	ex, found, ferr := s.findExercise(ctx, bson.M{"name": name})
	if ferr != nil {
		return nil, ferr
	}
	if !found {
		return nil, err
	}
	return ex, nil
}

// List matches a case-insensitive, anchored prefix. The prefix is quoted so
// regex metacharacters in user input match literally.
func (r *exerciseRepository) List(ctx context.Context, prefix string, limit int) ([]domain.Exercise, error) {
	filter := bson.M{}
	if prefix != "" {
		filter["name"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix), Options: "i"}
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	exercises := make([]domain.Exercise, 0)
	if err := findAll(ctx, r.s.exercises, filter, &exercises, findOptions); err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}
