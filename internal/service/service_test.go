package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/identity"
	"alcyxob/liftlog/internal/repository"
	"alcyxob/liftlog/internal/repository/memory"
	"alcyxob/liftlog/internal/revalidate"
	"alcyxob/liftlog/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store     *memory.Store
	rec       *revalidate.Recorder
	files     *storage.MemoryStorage
	workouts  WorkoutService
	exercises ExerciseService
	sets      SetService
	exports   ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	rec := &revalidate.Recorder{}
	files := storage.NewMemoryStorage("exports")
	d := Deps{
		Repos:    store.Repositories(),
		Identity: identity.ContextProvider{},
		Sink:     rec,
		Now:      func() time.Time { return fixedNow },
	}
	return &fixture{
		store:     store,
		rec:       rec,
		files:     files,
		workouts:  NewWorkoutService(d),
		exercises: NewExerciseService(d),
		sets:      NewSetService(d),
		exports:   NewExportService(d, files, time.Hour),
	}
}

func as(userID string) context.Context {
	return identity.WithUserID(context.Background(), userID)
}

func ptr[T any](v T) *T { return &v }

func requireOK[T any](t *testing.T, r Result[T]) T {
	t.Helper()
	require.True(t, r.Success, "unexpected failure: %v", r.Error)
	require.Nil(t, r.Error)
	return r.Data
}

func requireKind[T any](t *testing.T, r Result[T], kind Kind) *Failure {
	t.Helper()
	require.False(t, r.Success)
	require.NotNil(t, r.Error)
	require.Equal(t, kind, r.Error.Kind, "failure: %v", r.Error)
	return r.Error
}

func (f *fixture) startWorkout(t *testing.T, userID, name string, startedAt time.Time) *domain.Workout {
	t.Helper()
	return requireOK(t, f.workouts.CreateWorkout(as(userID), CreateWorkoutInput{Name: &name, StartedAt: &startedAt}))
}

func TestResultErr(t *testing.T) {
	assert.NoError(t, ok(1).Err())

	r := fail[int](invalid(FieldError{Field: "name", Message: "is required"}))
	var f *Failure
	require.True(t, errors.As(r.Err(), &f))
	assert.Equal(t, "Invalid input: name is required", r.Err().Error())
	assert.Equal(t, msgNotFound, notFound().Error())
}

// failingWorkouts breaks every write with a driver-level error.
type failingWorkouts struct {
	repository.WorkoutRepository
}

var errDriver = errors.New(`pq: relation "workouts" does not exist`)

func (failingWorkouts) Create(context.Context, *domain.Workout) error { return errDriver }

func (failingWorkouts) ListByUser(context.Context, string, *domain.DateRange, bool) ([]domain.Workout, error) {
	return nil, errDriver
}

func TestStorageFailureIsGeneric(t *testing.T) {
	repos := memory.NewStore().Repositories()
	repos.Workouts = failingWorkouts{repos.Workouts}
	rec := &revalidate.Recorder{}
	svc := NewWorkoutService(Deps{Repos: repos, Sink: rec})

	res := svc.CreateWorkout(as("u1"), CreateWorkoutInput{Name: ptr("Push")})
	f := requireKind(t, res, KindStorage)
	assert.Equal(t, msgStorage, f.Message)
	assert.NotContains(t, f.Error(), "relation")
	assert.Empty(t, rec.Paths())

	list := svc.ListWorkouts(as("u1"), ListWorkoutsInput{})
	requireKind(t, list, KindStorage)
}

type brokenSink struct{}

func (brokenSink) Revalidate(context.Context, string) error { return errors.New("redis down") }

func TestSinkFailureDoesNotFailMutation(t *testing.T) {
	store := memory.NewStore()
	svc := NewWorkoutService(Deps{Repos: store.Repositories(), Sink: brokenSink{}})

	w := requireOK(t, svc.CreateWorkout(as("u1"), CreateWorkoutInput{Name: ptr("Pull")}))
	assert.NotZero(t, w.ID)
}

func TestDepsDefaults(t *testing.T) {
	b := newBase(Deps{Repos: memory.NewStore().Repositories()})
	assert.IsType(t, identity.ContextProvider{}, b.identity)
	assert.IsType(t, revalidate.LogSink{}, b.sink)
	assert.NotNil(t, b.now)
}
