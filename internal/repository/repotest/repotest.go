// Package repotest holds the behaviour every repository backend must share.
// Backends call Run from their own tests with a factory for a clean store.
package repotest

import (
	"context"
	"strings"
	"testing"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Backend is one freshly emptied store.
type Backend struct {
	Repos repository.Repositories
	// Counts reports rows across all users.
	Counts func(t *testing.T) (workouts, workoutExercises, sets int)
	// Precision is the coarsest timestamp resolution the backend keeps.
	Precision time.Duration
}

const (
	alice = "user_alice"
	bob   = "user_bob"
)

// Run executes the suite. newBackend is called once per subtest.
func Run(t *testing.T, newBackend func(t *testing.T) Backend) {
	cases := []struct {
		name string
		fn   func(t *testing.T, b Backend)
	}{
		{"ExerciseLibrary", testExerciseLibrary},
		{"WorkoutRoundTrip", testWorkoutRoundTrip},
		{"CrossUserIsolation", testCrossUserIsolation},
		{"PartialUpdate", testPartialUpdate},
		{"CascadeDelete", testCascadeDelete},
		{"DayWindow", testDayWindow},
		{"BulkCreateIsAtomic", testBulkCreateIsAtomic},
		{"PositionsAndSetNumbers", testPositionsAndSetNumbers},
		{"SetLifecycle", testSetLifecycle},
		{"ColumnLimits", testColumnLimits},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newBackend(t))
		})
	}
}

func ptr[T any](v T) *T { return &v }

func newWorkout(t *testing.T, b Backend, userID, name string, startedAt time.Time) *domain.Workout {
	t.Helper()
	w := &domain.Workout{UserID: userID, StartedAt: startedAt}
	if name != "" {
		w.Name = ptr(name)
	}
	require.NoError(t, b.Repos.Workouts.Create(context.Background(), w))
	require.NotZero(t, w.ID)
	return w
}

func testExerciseLibrary(t *testing.T, b Backend) {
	ctx := context.Background()
	repo := b.Repos.Exercises

	bench, err := repo.Create(ctx, "Bench Press")
	require.NoError(t, err)
	assert.Equal(t, "Bench Press", bench.Name)

	_, err = repo.Create(ctx, "Bench Press")
	assert.ErrorIs(t, err, repository.ErrConstraint)

	same, err := repo.GetOrCreate(ctx, "Bench Press")
	require.NoError(t, err)
	assert.Equal(t, bench.ID, same.ID)

	squat, err := repo.GetOrCreate(ctx, "Back Squat")
	require.NoError(t, err)
	assert.NotEqual(t, bench.ID, squat.ID)

	_, err = repo.Create(ctx, "Bent Over Row")
	require.NoError(t, err)

	got, found, err := repo.GetByName(ctx, "Back Squat")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, squat.ID, got.ID)

	_, found, err = repo.GetByID(ctx, 999999)
	require.NoError(t, err)
	assert.False(t, found)

	list, err := repo.List(ctx, "ben", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bench Press", list[0].Name)
	assert.Equal(t, "Bent Over Row", list[1].Name)

	list, err = repo.List(ctx, "", 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Back Squat", list[0].Name)

	list, err = repo.List(ctx, "100%", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testWorkoutRoundTrip(t *testing.T, b Backend) {
	ctx := context.Background()
	started := time.Date(2024, 3, 15, 9, 30, 12, 345678000, time.UTC)
	w := newWorkout(t, b, alice, "Push Day", started)

	assert.True(t, w.StartedAt.Equal(started.Truncate(b.Precision)))
	assert.Nil(t, w.CompletedAt)
	assert.Equal(t, domain.StatusInProgress, w.Status())
	assert.True(t, w.CreatedAt.Equal(w.UpdatedAt))

	got, found, err := b.Repos.Workouts.GetByID(ctx, w.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, w.ID, got.ID)
	assert.Equal(t, alice, got.UserID)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Push Day", *got.Name)
	assert.True(t, got.StartedAt.Equal(w.StartedAt))
	assert.True(t, got.CreatedAt.Equal(w.CreatedAt))
	assert.True(t, got.UpdatedAt.Equal(w.UpdatedAt))
	assert.Nil(t, got.CompletedAt)

	unnamed := newWorkout(t, b, alice, "", started)
	got, found, err = b.Repos.Workouts.GetByID(ctx, unnamed.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, got.Name)

	withKids, found, err := b.Repos.Workouts.GetByIDWithExercises(ctx, w.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, withKids.Exercises)
}

func testCrossUserIsolation(t *testing.T, b Backend) {
	ctx := context.Background()
	w := &domain.Workout{UserID: alice, StartedAt: time.Now()}
	require.NoError(t, b.Repos.Workouts.CreateWithExercises(ctx, w, []domain.WorkoutExerciseDraft{
		{ExerciseName: "Deadlift", Order: 0, Sets: []domain.SetDraft{{SetNumber: 1, Weight: 140, Reps: 5}}},
	}))
	require.Len(t, w.Exercises, 1)
	we := w.Exercises[0]
	require.Len(t, we.Sets, 1)
	set := we.Sets[0]

	_, found, err := b.Repos.Workouts.GetByID(ctx, w.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.Workouts.GetByIDWithExercises(ctx, w.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	list, err := b.Repos.Workouts.ListByUser(ctx, bob, nil, false)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, found, err = b.Repos.Workouts.Update(ctx, w.ID, bob, domain.WorkoutUpdate{Name: ptr("hijacked")})
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.Workouts.Delete(ctx, w.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.WorkoutExercises.Create(ctx, bob, w.ID, we.ExerciseID, 1)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.WorkoutExercises.GetByID(ctx, we.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.WorkoutExercises.ListByWorkout(ctx, w.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.WorkoutExercises.NextOrder(ctx, w.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.WorkoutExercises.Update(ctx, we.ID, bob, domain.WorkoutExerciseUpdate{Order: ptr(7)})
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.WorkoutExercises.Delete(ctx, we.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.Sets.Create(ctx, bob, we.ID, 2, 100, 5)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.Sets.GetByID(ctx, set.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.Sets.NextSetNumber(ctx, we.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.Sets.Update(ctx, set.ID, bob, domain.SetUpdate{Reps: ptr(50)})
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.Sets.Delete(ctx, set.ID, bob)
	require.NoError(t, err)
	assert.False(t, found)

	// Nothing above touched alice's data.
	got, found, err := b.Repos.Workouts.GetByIDWithExercises(ctx, w.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, got.Name)
	require.Len(t, got.Exercises, 1)
	assert.Equal(t, 0, got.Exercises[0].Order)
	require.Len(t, got.Exercises[0].Sets, 1)
	assert.Equal(t, 5, got.Exercises[0].Sets[0].Reps)
}

func testPartialUpdate(t *testing.T, b Backend) {
	ctx := context.Background()
	started := time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)
	w := newWorkout(t, b, alice, "Morning", started)

	updated, found, err := b.Repos.Workouts.Update(ctx, w.ID, alice, domain.WorkoutUpdate{Name: ptr("Evening")})
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Evening", *updated.Name)
	assert.True(t, updated.StartedAt.Equal(started))
	assert.Nil(t, updated.CompletedAt)
	assert.False(t, updated.UpdatedAt.Before(w.UpdatedAt))

	completed := started.Add(time.Hour)
	updated, found, err = b.Repos.Workouts.Update(ctx, w.ID, alice, domain.WorkoutUpdate{CompletedAt: &completed})
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(completed))
	assert.Equal(t, domain.StatusCompleted, updated.Status())
	assert.Equal(t, "Evening", *updated.Name)

	got, found, err := b.Repos.Workouts.GetByID(ctx, w.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Evening", *got.Name)
	assert.True(t, got.StartedAt.Equal(started))
	require.NotNil(t, got.CompletedAt)

	updated, found, err = b.Repos.Workouts.Update(ctx, w.ID, alice, domain.WorkoutUpdate{ClearCompletedAt: true})
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, updated.CompletedAt)
	assert.Equal(t, domain.StatusInProgress, updated.Status())

	updated, found, err = b.Repos.Workouts.Update(ctx, w.ID, alice, domain.WorkoutUpdate{Name: ptr("")})
	require.NoError(t, err)
	require.True(t, found)
	assert.Nil(t, updated.Name)

	_, found, err = b.Repos.Workouts.Update(ctx, 999999, alice, domain.WorkoutUpdate{Name: ptr("x")})
	require.NoError(t, err)
	assert.False(t, found)
}

func testCascadeDelete(t *testing.T, b Backend) {
	ctx := context.Background()
	w := &domain.Workout{UserID: alice, StartedAt: time.Now()}
	require.NoError(t, b.Repos.Workouts.CreateWithExercises(ctx, w, []domain.WorkoutExerciseDraft{
		{ExerciseName: "Squat", Order: 0, Sets: []domain.SetDraft{
			{SetNumber: 1, Weight: 100, Reps: 5},
			{SetNumber: 2, Weight: 100, Reps: 5},
		}},
		{ExerciseName: "Lunge", Order: 1, Sets: []domain.SetDraft{{SetNumber: 1, Weight: 20, Reps: 12}}},
	}))
	other := newWorkout(t, b, bob, "Bob", time.Now())

	workouts, wes, sets := b.Counts(t)
	assert.Equal(t, 2, workouts)
	assert.Equal(t, 2, wes)
	assert.Equal(t, 3, sets)

	deleted, found, err := b.Repos.Workouts.Delete(ctx, w.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, w.ID, deleted.ID)

	workouts, wes, sets = b.Counts(t)
	assert.Equal(t, 1, workouts)
	assert.Equal(t, 0, wes)
	assert.Equal(t, 0, sets)

	// The shared library survives.
	_, found, err = b.Repos.Exercises.GetByName(ctx, "Squat")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = b.Repos.Workouts.Delete(ctx, w.ID, alice)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = b.Repos.Workouts.GetByID(ctx, other.ID, bob)
	require.NoError(t, err)
	assert.True(t, found)
}

func testDayWindow(t *testing.T, b Backend) {
	ctx := context.Background()
	day := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	before := newWorkout(t, b, alice, "before", time.Date(2024, 6, 9, 23, 59, 59, 0, time.UTC))
	morning := newWorkout(t, b, alice, "morning", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	evening := newWorkout(t, b, alice, "evening", time.Date(2024, 6, 10, 19, 45, 0, 0, time.UTC))
	after := newWorkout(t, b, alice, "after", time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	newWorkout(t, b, bob, "bob", time.Date(2024, 6, 10, 10, 0, 0, 0, time.UTC))

	window := domain.DayRange(day)
	list, err := b.Repos.Workouts.ListByUser(ctx, alice, &window, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, evening.ID, list[0].ID)
	assert.Equal(t, morning.ID, list[1].ID)

	all, err := b.Repos.Workouts.ListByUser(ctx, alice, nil, true)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, after.ID, all[0].ID)
	assert.Equal(t, before.ID, all[3].ID)
	for _, w := range all {
		assert.NotNil(t, w.Exercises)
	}
}

func testBulkCreateIsAtomic(t *testing.T, b Backend) {
	ctx := context.Background()
	w := &domain.Workout{UserID: alice, Name: ptr("Leg Day"), StartedAt: time.Now()}
	err := b.Repos.Workouts.CreateWithExercises(ctx, w, []domain.WorkoutExerciseDraft{
		{ExerciseName: "Front Squat", Order: 0, Sets: []domain.SetDraft{{SetNumber: 1, Weight: 80, Reps: 8}}},
		{ExerciseName: strings.Repeat("x", 256), Order: 1},
	})
	require.ErrorIs(t, err, repository.ErrConstraint)

	workouts, wes, sets := b.Counts(t)
	assert.Zero(t, workouts)
	assert.Zero(t, wes)
	assert.Zero(t, sets)

	_, found, err := b.Repos.Exercises.GetByName(ctx, "Front Squat")
	require.NoError(t, err)
	assert.False(t, found)

	list, err := b.Repos.Workouts.ListByUser(ctx, alice, nil, false)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func testPositionsAndSetNumbers(t *testing.T, b Backend) {
	ctx := context.Background()
	w := newWorkout(t, b, alice, "Pull Day", time.Now())
	row, err := b.Repos.Exercises.GetOrCreate(ctx, "Pull Up")
	require.NoError(t, err)
	curl, err := b.Repos.Exercises.GetOrCreate(ctx, "Curl")
	require.NoError(t, err)

	next, found, err := b.Repos.WorkoutExercises.NextOrder(ctx, w.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, next)

	first, found, err := b.Repos.WorkoutExercises.Create(ctx, alice, w.ID, row.ID, 1)
	require.NoError(t, err)
	require.True(t, found)
	require.NotNil(t, first.Exercise)
	assert.Equal(t, "Pull Up", first.Exercise.Name)
	assert.Empty(t, first.Sets)

	// Positions are not unique.
	dup, found, err := b.Repos.WorkoutExercises.Create(ctx, alice, w.ID, curl.ID, 1)
	require.NoError(t, err)
	require.True(t, found)

	next, _, err = b.Repos.WorkoutExercises.NextOrder(ctx, w.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	_, _, err = b.Repos.WorkoutExercises.Create(ctx, alice, w.ID, 999999, 3)
	assert.ErrorIs(t, err, repository.ErrConstraint)

	moved, found, err := b.Repos.WorkoutExercises.Update(ctx, first.ID, alice, domain.WorkoutExerciseUpdate{Order: ptr(5)})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5, moved.Order)

	list, found, err := b.Repos.WorkoutExercises.ListByWorkout(ctx, w.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, list, 2)
	assert.Equal(t, dup.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	num, found, err := b.Repos.Sets.NextSetNumber(ctx, first.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, num)

	_, _, err = b.Repos.Sets.Create(ctx, alice, first.ID, 1, 0, 10)
	require.NoError(t, err)
	_, _, err = b.Repos.Sets.Create(ctx, alice, first.ID, 4, 0, 8)
	require.NoError(t, err)
	num, _, err = b.Repos.Sets.NextSetNumber(ctx, first.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 5, num)

	removed, found, err := b.Repos.WorkoutExercises.Delete(ctx, first.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, removed.ID)

	_, wes, sets := b.Counts(t)
	assert.Equal(t, 1, wes)
	assert.Equal(t, 0, sets)
}

func testSetLifecycle(t *testing.T, b Backend) {
	ctx := context.Background()
	w := newWorkout(t, b, alice, "Bench", time.Now())
	ex, err := b.Repos.Exercises.GetOrCreate(ctx, "Bench Press")
	require.NoError(t, err)
	we, _, err := b.Repos.WorkoutExercises.Create(ctx, alice, w.ID, ex.ID, 0)
	require.NoError(t, err)

	second, found, err := b.Repos.Sets.Create(ctx, alice, we.ID, 2, 62.5, 8)
	require.NoError(t, err)
	require.True(t, found)
	first, found, err := b.Repos.Sets.Create(ctx, alice, we.ID, 1, 100.126, 5)
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 100.13, first.Weight, 1e-9)

	sets, found, err := b.Repos.Sets.ListByWorkoutExercise(ctx, we.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, sets, 2)
	assert.Equal(t, first.ID, sets[0].ID)
	assert.Equal(t, second.ID, sets[1].ID)
	assert.InDelta(t, 100.13, sets[0].Weight, 1e-9)

	updated, found, err := b.Repos.Sets.Update(ctx, second.ID, alice, domain.SetUpdate{Reps: ptr(10)})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 10, updated.Reps)
	assert.Equal(t, 2, updated.SetNumber)
	assert.InDelta(t, 62.5, updated.Weight, 1e-9)

	got, found, err := b.Repos.Sets.GetByID(ctx, second.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 10, got.Reps)

	deleted, found, err := b.Repos.Sets.Delete(ctx, first.ID, alice)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, first.ID, deleted.ID)

	_, found, err = b.Repos.Sets.GetByID(ctx, first.ID, alice)
	require.NoError(t, err)
	assert.False(t, found)
}

func testColumnLimits(t *testing.T, b Backend) {
	ctx := context.Background()
	long := strings.Repeat("a", 256)

	err := b.Repos.Workouts.Create(ctx, &domain.Workout{UserID: alice, Name: &long, StartedAt: time.Now()})
	assert.ErrorIs(t, err, repository.ErrConstraint)

	_, err = b.Repos.Exercises.Create(ctx, long)
	assert.ErrorIs(t, err, repository.ErrConstraint)

	ok := strings.Repeat("a", 255)
	w := newWorkout(t, b, alice, ok, time.Now())
	assert.Equal(t, ok, *w.Name)
}
