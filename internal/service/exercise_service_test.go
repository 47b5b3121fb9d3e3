package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddExerciseToWorkout(t *testing.T) {
	f := newFixture(t)
	w := f.startWorkout(t, "u1", "Push", fixedNow)

	bench := requireOK(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: " Bench Press "}))
	assert.Equal(t, 0, bench.Order)
	require.NotNil(t, bench.Exercise)
	assert.Equal(t, "Bench Press", bench.Exercise.Name)
	assert.NotNil(t, bench.Sets)
	assert.Empty(t, bench.Sets)

	dips := requireOK(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: "Dips"}))
	assert.Equal(t, 1, dips.Order)

	// The library entry is shared, not duplicated.
	again := requireOK(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: "Bench Press"}))
	assert.Equal(t, bench.ExerciseID, again.ExerciseID)
	assert.Equal(t, 2, again.Order)

	exercises, _, wes, _ := f.store.Counts()
	assert.Equal(t, 2, exercises)
	assert.Equal(t, 3, wes)
	assert.Equal(t, "/dashboard/workout/1", f.rec.Paths()[len(f.rec.Paths())-1])
}

func TestAddExerciseDuplicateOrderAccepted(t *testing.T) {
	f := newFixture(t)
	w := f.startWorkout(t, "u1", "Pull", fixedNow)

	first := requireOK(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: "Row", Order: ptr(1)}))
	second := requireOK(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: "Curl", Order: ptr(1)}))
	assert.Equal(t, 1, first.Order)
	assert.Equal(t, 1, second.Order)

	got := requireOK(t, f.workouts.GetWorkout(as("u1"), w.ID))
	require.Len(t, got.Exercises, 2)
	assert.Equal(t, first.ID, got.Exercises[0].ID)
	assert.Equal(t, second.ID, got.Exercises[1].ID)

	next := requireOK(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: "Shrug"}))
	assert.Equal(t, 2, next.Order)
}

func TestAddExerciseToOtherUsersWorkout(t *testing.T) {
	f := newFixture(t)
	w := f.startWorkout(t, "u1", "Push", fixedNow)
	f.rec.Reset()

	res := f.exercises.AddExerciseToWorkout(as("u2"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: "Brand New Lift"})
	requireKind(t, res, KindNotFound)

	exercises, _, wes, _ := f.store.Counts()
	assert.Zero(t, exercises)
	assert.Zero(t, wes)
	assert.Empty(t, f.rec.Paths())
}

func TestAddExerciseValidation(t *testing.T) {
	f := newFixture(t)

	failure := requireKind(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: 0, ExerciseName: "   ", Order: ptr(-1)}), KindValidation)
	assert.ElementsMatch(t, []FieldError{
		{Field: "workoutId", Message: "must be greater than 0"},
		{Field: "exerciseName", Message: "is required"},
		{Field: "order", Message: "must be at least 0"},
	}, failure.Fields)

	requireKind(t, f.exercises.AddExerciseToWorkout(context.Background(), AddExerciseInput{}), KindUnauthorized)
}

func TestSearchExercises(t *testing.T) {
	f := newFixture(t)
	repo := f.store.Repositories().Exercises
	for _, name := range []string{"Bench Press", "Back Squat", "Barbell Row", "Deadlift"} {
		_, err := repo.Create(context.Background(), name)
		require.NoError(t, err)
	}

	res := requireOK(t, f.exercises.SearchExercises(as("u1"), SearchExercisesInput{Query: " b "}))
	names := make([]string, 0, len(res))
	for _, ex := range res {
		names = append(names, ex.Name)
	}
	assert.Equal(t, []string{"Back Squat", "Barbell Row", "Bench Press"}, names)

	limited := requireOK(t, f.exercises.SearchExercises(as("u1"), SearchExercisesInput{Limit: 2}))
	assert.Len(t, limited, 2)

	failure := requireKind(t, f.exercises.SearchExercises(as("u1"), SearchExercisesInput{Limit: 101}), KindValidation)
	assert.Equal(t, "limit", failure.Fields[0].Field)

	requireKind(t, f.exercises.SearchExercises(context.Background(), SearchExercisesInput{}), KindUnauthorized)
}

func TestReorderAndRemoveExercise(t *testing.T) {
	f := newFixture(t)
	w := f.startWorkout(t, "u1", "Legs", fixedNow)
	squat := requireOK(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: "Squat"}))
	press := requireOK(t, f.exercises.AddExerciseToWorkout(as("u1"), AddExerciseInput{WorkoutID: w.ID, ExerciseName: "Leg Press"}))
	requireOK(t, f.sets.AddSet(as("u1"), AddSetInput{WorkoutExerciseID: squat.ID, Weight: 100, Reps: 5}))

	moved := requireOK(t, f.exercises.ReorderWorkoutExercise(as("u1"), ReorderExerciseInput{WorkoutExerciseID: squat.ID, Order: 3}))
	assert.Equal(t, 3, moved.Order)

	got := requireOK(t, f.workouts.GetWorkout(as("u1"), w.ID))
	require.Len(t, got.Exercises, 2)
	assert.Equal(t, press.ID, got.Exercises[0].ID)
	assert.Equal(t, squat.ID, got.Exercises[1].ID)

	requireKind(t, f.exercises.ReorderWorkoutExercise(as("u2"), ReorderExerciseInput{WorkoutExerciseID: squat.ID, Order: 0}), KindNotFound)
	requireKind(t, f.exercises.RemoveExerciseFromWorkout(as("u2"), squat.ID), KindNotFound)

	removed := requireOK(t, f.exercises.RemoveExerciseFromWorkout(as("u1"), squat.ID))
	assert.Equal(t, squat.ID, removed.ID)

	exercises, _, wes, sets := f.store.Counts()
	assert.Equal(t, 2, exercises)
	assert.Equal(t, 1, wes)
	assert.Zero(t, sets)

	requireKind(t, f.exercises.RemoveExerciseFromWorkout(as("u1"), squat.ID), KindNotFound)
	requireKind(t, f.exercises.RemoveExerciseFromWorkout(as("u1"), 0), KindValidation)
}
