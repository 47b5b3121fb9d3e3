package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayRange(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 2025-01-10 02:00 at UTC+5 is still 2025-01-09 in UTC.
	r := DayRange(time.Date(2025, 1, 10, 2, 0, 0, 0, loc))

	assert.Equal(t, time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2025, 1, 9, 23, 59, 59, 999_000_000, time.UTC), r.End)

	assert.True(t, r.Contains(r.Start))
	assert.True(t, r.Contains(time.Date(2025, 1, 9, 23, 59, 59, 998_000_000, time.UTC)))
	assert.False(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.Start.Add(-time.Nanosecond)))
}

func TestNormalize(t *testing.T) {
	in := time.Date(2025, 3, 1, 12, 0, 0, 123_456_789, time.FixedZone("X", -3600))
	got := Normalize(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123_456_000, got.Nanosecond())
	assert.True(t, got.Equal(in.Truncate(time.Microsecond)))
}

func TestRoundWeight(t *testing.T) {
	cases := map[float64]float64{
		100:       100,
		100.126:   100.13,
		102.504:   102.5,
		0.004:     0,
		MaxWeight: MaxWeight,
	}
	for in, want := range cases {
		assert.InDelta(t, want, RoundWeight(in), 1e-9, "RoundWeight(%v)", in)
	}
}

func TestDefaultWorkoutName(t *testing.T) {
	assert.Equal(t, "Workout Jan 2, 2025", DefaultWorkoutName(time.Date(2025, 1, 2, 23, 0, 0, 0, time.UTC)))
	// Labelled by the UTC day.
	east := time.FixedZone("UTC+3", 3*3600)
	assert.Equal(t, "Workout Dec 31, 2024", DefaultWorkoutName(time.Date(2025, 1, 1, 1, 0, 0, 0, east)))
}

func TestWorkoutStatus(t *testing.T) {
	w := Workout{StartedAt: time.Now()}
	assert.Equal(t, StatusInProgress, w.Status())
	done := w.StartedAt.Add(time.Hour)
	w.CompletedAt = &done
	assert.Equal(t, StatusCompleted, w.Status())
}

func TestWorkoutUpdateApply(t *testing.T) {
	start := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	name := "Legs"
	base := func() Workout {
		return Workout{ID: 1, Name: &name, StartedAt: start}
	}
	now := start.Add(2 * time.Hour)

	t.Run("empty update only stamps", func(t *testing.T) {
		w := base()
		u := WorkoutUpdate{}
		assert.True(t, u.IsEmpty())
		u.Apply(&w, now)
		assert.Equal(t, "Legs", *w.Name)
		assert.Equal(t, now, w.UpdatedAt)
	})

	t.Run("empty name clears", func(t *testing.T) {
		w := base()
		empty := ""
		WorkoutUpdate{Name: &empty}.Apply(&w, now)
		assert.Nil(t, w.Name)
	})

	t.Run("completion and clear", func(t *testing.T) {
		w := base()
		done := start.Add(time.Hour)
		WorkoutUpdate{CompletedAt: &done}.Apply(&w, now)
		require.NotNil(t, w.CompletedAt)
		assert.True(t, w.CompletedAt.Equal(done))

		u := WorkoutUpdate{CompletedAt: &done, ClearCompletedAt: true}
		assert.False(t, u.IsEmpty())
		u.Apply(&w, now)
		assert.Nil(t, w.CompletedAt)
	})

	t.Run("name is copied", func(t *testing.T) {
		w := base()
		other := "Arms"
		WorkoutUpdate{Name: &other}.Apply(&w, now)
		other = "changed"
		assert.Equal(t, "Arms", *w.Name)
	})
}

func TestSetUpdateApply(t *testing.T) {
	s := Set{SetNumber: 1, Weight: 50, Reps: 10}
	weight := 52.499
	SetUpdate{Weight: &weight}.Apply(&s)
	assert.Equal(t, Set{SetNumber: 1, Weight: 52.5, Reps: 10}, s)
}

func TestSortWorkoutChildren(t *testing.T) {
	w := Workout{Exercises: []WorkoutExercise{
		{ID: 3, Order: 1},
		{ID: 1, Order: 2, Sets: []Set{{ID: 9, SetNumber: 2}, {ID: 8, SetNumber: 1}, {ID: 7, SetNumber: 2}}},
		{ID: 2, Order: 1},
	}}
	SortWorkoutChildren(&w)

	ids := []int64{w.Exercises[0].ID, w.Exercises[1].ID, w.Exercises[2].ID}
	assert.Equal(t, []int64{2, 3, 1}, ids)
	sets := w.Exercises[2].Sets
	assert.Equal(t, []int64{8, 7, 9}, []int64{sets[0].ID, sets[1].ID, sets[2].ID})
}

func TestSortWorkoutsByStart(t *testing.T) {
	t0 := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	ws := []Workout{
		{ID: 1, StartedAt: t0},
		{ID: 2, StartedAt: t0.Add(time.Hour)},
		{ID: 3, StartedAt: t0},
	}
	SortWorkoutsByStart(ws)
	assert.Equal(t, []int64{2, 3, 1}, []int64{ws[0].ID, ws[1].ID, ws[2].ID})
}

func TestWorkoutJSONChildren(t *testing.T) {
	loaded := Workout{ID: 1, Exercises: []WorkoutExercise{{ID: 2, Sets: []Set{}}}}
	raw, err := json.Marshal(loaded)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sets":[]`)

	loaded.Exercises = []WorkoutExercise{}
	raw, err = json.Marshal(loaded)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"exercises":[]`)

	raw, err = json.Marshal(Workout{ID: 1})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"exercises":null`)
}
