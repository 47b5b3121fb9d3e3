package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"alcyxob/liftlog/internal/domain"
	"alcyxob/liftlog/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Backend {
		s := NewStore()
		return repotest.Backend{
			Repos: s.Repositories(),
			Counts: func(t *testing.T) (int, int, int) {
				_, w, we, sets := s.Counts()
				return w, we, sets
			},
			Precision: time.Microsecond,
		}
	})
}

func TestStore_FailedBulkCreateKeepsSequences(t *testing.T) {
	s := NewStore()
	repos := s.Repositories()
	ctx := context.Background()

	failed := &domain.Workout{UserID: "u1", StartedAt: time.Now()}
	err := repos.Workouts.CreateWithExercises(ctx, failed, []domain.WorkoutExerciseDraft{
		{ExerciseName: string(make([]byte, 300))},
	})
	require.Error(t, err)
	assert.Zero(t, failed.ID)

	w := &domain.Workout{UserID: "u1", StartedAt: time.Now()}
	require.NoError(t, repos.Workouts.Create(ctx, w))
	// Like a serial column, the id consumed by the failed insert is not reused.
	assert.Equal(t, int64(2), w.ID)
}

func TestStore_ConcurrentGetOrCreate(t *testing.T) {
	s := NewStore()
	repos := s.Repositories()

	var wg sync.WaitGroup
	ids := make([]int64, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ex, err := repos.Exercises.GetOrCreate(context.Background(), "Overhead Press")
			if assert.NoError(t, err) {
				ids[i] = ex.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	exercises, _, _, _ := s.Counts()
	assert.Equal(t, 1, exercises)
}

func TestStore_ReturnedRecordsAreCopies(t *testing.T) {
	s := NewStore()
	repos := s.Repositories()
	ctx := context.Background()

	name := "Original"
	completed := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	w := &domain.Workout{UserID: "u1", Name: &name, StartedAt: completed.Add(-time.Hour), CompletedAt: &completed}
	require.NoError(t, repos.Workouts.Create(ctx, w))

	// The caller's own pointers do not reach the stored row.
	name = "edited by caller"
	*w.CompletedAt = completed.Add(time.Hour)

	got, _, err := repos.Workouts.GetByID(ctx, w.ID, "u1")
	require.NoError(t, err)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Original", *got.Name)
	assert.True(t, got.CompletedAt.Equal(completed))

	got.UserID = "someone else"
	*got.Name = "tampered"
	*got.CompletedAt = completed.Add(24 * time.Hour)

	list, err := repos.Workouts.ListByUser(ctx, "u1", nil, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	*list[0].Name = "tampered via list"

	withChildren, _, err := repos.Workouts.GetByIDWithExercises(ctx, w.ID, "u1")
	require.NoError(t, err)
	*withChildren.Name = "tampered via detail"

	renamed := "Renamed"
	updated, found, err := repos.Workouts.Update(ctx, w.ID, "u1", domain.WorkoutUpdate{Name: &renamed})
	require.NoError(t, err)
	require.True(t, found)
	*updated.Name = "tampered via update"

	again, found, err := repos.Workouts.GetByID(ctx, w.ID, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "u1", again.UserID)
	assert.Equal(t, "Renamed", *again.Name)
	assert.True(t, again.CompletedAt.Equal(completed))
}
