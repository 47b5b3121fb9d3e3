package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

const (
	exerciseCollectionName        = "exercises"
	workoutCollectionName         = "workouts"
	workoutExerciseCollectionName = "workout_exercises"
	setCollectionName             = "sets"
	counterCollectionName         = "counters"
)

// maxVarchar keeps documents within the limits of the relational schema.
const maxVarchar = 255

// ConnectDB establishes a connection to MongoDB using the provided URI.
// Cascading deletes and bulk creation run in multi-document transactions,
// so the server must be a replica set member.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary; a successful Connect does not mean the server answers.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// store is shared by the four repositories of one database.
type store struct {
	client           *mongo.Client
	exercises        *mongo.Collection
	workouts         *mongo.Collection
	workoutExercises *mongo.Collection
	sets             *mongo.Collection
	counters         *mongo.Collection
}

func newStore(client *mongo.Client, db *mongo.Database) *store {
	return &store{
		client:           client,
		exercises:        db.Collection(exerciseCollectionName),
		workouts:         db.Collection(workoutCollectionName),
		workoutExercises: db.Collection(workoutExerciseCollectionName),
		sets:             db.Collection(setCollectionName),
		counters:         db.Collection(counterCollectionName),
	}
}

// NewRepositories builds the MongoDB-backed repositories over db.
func NewRepositories(client *mongo.Client, db *mongo.Database) repository.Repositories {
	s := newStore(client, db)
	return repository.Repositories{
		Exercises:        &exerciseRepository{s: s},
		Workouts:         &workoutRepository{s: s},
		WorkoutExercises: &workoutExerciseRepository{s: s},
		Sets:             &setRepository{s: s},
	}
}

// EnsureIndexes creates the collections' indexes. Call during startup.
// The unique index on exercises.name backs GetOrCreate.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		exerciseCollectionName: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		workoutCollectionName: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index()},
			{Keys: bson.D{{Key: "startedAt", Value: -1}}, Options: options.Index()},
		},
		workoutExerciseCollectionName: {
			{Keys: bson.D{{Key: "workoutId", Value: 1}, {Key: "order", Value: 1}}, Options: options.Index()},
		},
		setCollectionName: {
			{Keys: bson.D{{Key: "workoutExerciseId", Value: 1}, {Key: "setNumber", Value: 1}}, Options: options.Index()},
		},
	}
	for name, indexes := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes for %s: %w", name, err)
		}
	}
	return nil
}

// nextID allocates the next value of a per-collection sequence. Like a
// serial column, a value consumed by an aborted transaction is not reused.
func (s *store) nextID(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", collection, err)
	}
	return counter.Seq, nil
}

// withTransaction runs fn in a multi-document transaction.
func (s *store) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// ownedWorkout loads the workout only if userID owns it.
func (s *store) ownedWorkout(ctx context.Context, workoutID int64, userID string) (*domain.Workout, bool, error) {
	var w domain.Workout
	err := s.workouts.FindOne(ctx, bson.M{"_id": workoutID, "userId": userID}).Decode(&w)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get workout: %w", err)
	}
	return &w, true, nil
}

// ownedWorkoutExercise resolves the entry, then its parent's owner.
func (s *store) ownedWorkoutExercise(ctx context.Context, id int64, userID string) (*domain.WorkoutExercise, bool, error) {
	var we domain.WorkoutExercise
	err := s.workoutExercises.FindOne(ctx, bson.M{"_id": id}).Decode(&we)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get workout exercise: %w", err)
	}
	if _, ok, err := s.ownedWorkout(ctx, we.WorkoutID, userID); err != nil || !ok {
		return nil, false, err
	}
	return &we, true, nil
}

func (s *store) ownedSet(ctx context.Context, id int64, userID string) (*domain.Set, bool, error) {
	var set domain.Set
	err := s.sets.FindOne(ctx, bson.M{"_id": id}).Decode(&set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get set: %w", err)
	}
	if _, ok, err := s.ownedWorkoutExercise(ctx, set.WorkoutExerciseID, userID); err != nil || !ok {
		return nil, false, err
	}
	return &set, true, nil
}

// loadChildren attaches exercises, library rows and sets to the workouts.
func (s *store) loadChildren(ctx context.Context, workouts []domain.Workout) error {
	if len(workouts) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(workouts))
	for _, w := range workouts {
		ids = append(ids, w.ID)
	}
	var wes []domain.WorkoutExercise
	if err := findAll(ctx, s.workoutExercises, bson.M{"workoutId": bson.M{"$in": ids}}, &wes); err != nil {
		return fmt.Errorf("list workout exercises: %w", err)
	}

	weIDs := make([]int64, 0, len(wes))
	exIDs := make([]int64, 0, len(wes))
	for _, we := range wes {
		weIDs = append(weIDs, we.ID)
		exIDs = append(exIDs, we.ExerciseID)
	}
	var exercises []domain.Exercise
	if err := findAll(ctx, s.exercises, bson.M{"_id": bson.M{"$in": exIDs}}, &exercises); err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	var sets []domain.Set
	if err := findAll(ctx, s.sets, bson.M{"workoutExerciseId": bson.M{"$in": weIDs}}, &sets); err != nil {
		return fmt.Errorf("list sets: %w", err)
	}

	exByID := make(map[int64]domain.Exercise, len(exercises))
	for _, ex := range exercises {
		exByID[ex.ID] = ex
	}
	setsByWE := make(map[int64][]domain.Set)
	for _, set := range sets {
		setsByWE[set.WorkoutExerciseID] = append(setsByWE[set.WorkoutExerciseID], set)
	}
	weByWorkout := make(map[int64][]domain.WorkoutExercise)
	for _, we := range wes {
		if ex, ok := exByID[we.ExerciseID]; ok {
			we.Exercise = &ex
		}
		we.Sets = setsByWE[we.ID]
		if we.Sets == nil {
			we.Sets = []domain.Set{}
		}
		weByWorkout[we.WorkoutID] = append(weByWorkout[we.WorkoutID], we)
	}
	for i := range workouts {
		workouts[i].Exercises = weByWorkout[workouts[i].ID]
		if workouts[i].Exercises == nil {
			workouts[i].Exercises = []domain.WorkoutExercise{}
		}
		domain.SortWorkoutChildren(&workouts[i])
	}
	return nil
}

// deleteWorkoutExercises removes entries and their sets, the document
// counterpart of ON DELETE CASCADE. Run it inside a transaction.
func (s *store) deleteWorkoutExercises(ctx context.Context, filter bson.M) error {
	var wes []domain.WorkoutExercise
	if err := findAll(ctx, s.workoutExercises, filter, &wes); err != nil {
		return fmt.Errorf("list workout exercises: %w", err)
	}
	if len(wes) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(wes))
	for _, we := range wes {
		ids = append(ids, we.ID)
	}
	if _, err := s.sets.DeleteMany(ctx, bson.M{"workoutExerciseId": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete sets: %w", err)
	}
	if _, err := s.workoutExercises.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("delete workout exercises: %w", err)
	}
	return nil
}

func findAll(ctx context.Context, c *mongo.Collection, filter any, out any, opts ...*options.FindOptions) error {
	cursor, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// normalize matches BSON datetime precision.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func now() time.Time {
	return normalize(time.Now())
}

func checkVarchar(field, value string) error {
	if utf8.RuneCountInString(value) > maxVarchar {
		return fmt.Errorf("%w: %s exceeds %d characters", repository.ErrConstraint, field, maxVarchar)
	}
	return nil
}

// wrapErr tags duplicate keys with repository.ErrConstraint.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w: %v", op, repository.ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
