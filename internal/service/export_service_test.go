package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"alcyxob/liftlog/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportWorkouts(t *testing.T) {
	f := newFixture(t)
	requireOK(t, f.workouts.CreateWorkoutFromTemplate(as("user/1"), CreateWorkoutFromTemplateInput{
		Name: ptr("Leg Day"),
		Exercises: []TemplateExerciseInput{
			{Name: "Squat", Sets: []TemplateSetInput{{Weight: 100, Reps: 5}}},
		},
	}))
	f.startWorkout(t, "user/1", "Easy", fixedNow.Add(-24*time.Hour))
	f.startWorkout(t, "u2", "Not mine", fixedNow)

	exp := requireOK(t, f.exports.ExportWorkouts(as("user/1")))
	assert.Equal(t, 2, exp.Workouts)
	assert.True(t, strings.HasPrefix(exp.ObjectKey, "exports/user%2F1/20250110T120000Z-"), exp.ObjectKey)
	assert.True(t, strings.HasSuffix(exp.ObjectKey, ".json"))
	assert.True(t, exp.ExpiresAt.Equal(fixedNow.Add(time.Hour)))
	assert.Contains(t, exp.DownloadURL, "memory://exports/")
	assert.Contains(t, exp.DownloadURL, "expires=1h0m0s")

	obj, found := f.files.Get(exp.ObjectKey)
	require.True(t, found)
	assert.Equal(t, "application/json", obj.ContentType)

	var doc exportDocument
	require.NoError(t, json.Unmarshal(obj.Data, &doc))
	assert.Equal(t, "user/1", doc.UserID)
	require.Len(t, doc.Workouts, 2)
	assert.Equal(t, "Leg Day", *doc.Workouts[0].Name)
	require.Len(t, doc.Workouts[0].Exercises, 1)
	assert.Len(t, doc.Workouts[0].Exercises[0].Sets, 1)
}

func TestExportWorkoutsFailures(t *testing.T) {
	f := newFixture(t)
	requireKind(t, f.exports.ExportWorkouts(context.Background()), KindUnauthorized)

	disabled := NewExportService(Deps{Repos: memory.NewStore().Repositories()}, nil, 0)
	failure := requireKind(t, disabled.ExportWorkouts(as("u1")), KindStorage)
	assert.Equal(t, msgStorage, failure.Message)
}

func TestExportKeyStaysUnderUserPrefix(t *testing.T) {
	f := newFixture(t)

	for userID, prefix := range map[string]string{
		"..":       "exports/%2E%2E/",
		".":        "exports/%2E/",
		"../../x":  "exports/..%2F..%2Fx/",
		"john.doe": "exports/john.doe/",
	} {
		exp := requireOK(t, f.exports.ExportWorkouts(as(userID)))
		assert.True(t, strings.HasPrefix(exp.ObjectKey, prefix), "user %q got key %q", userID, exp.ObjectKey)
		assert.Equal(t, 2, strings.Count(exp.ObjectKey, "/"), exp.ObjectKey)
		_, found := f.files.Get(exp.ObjectKey)
		assert.True(t, found)
	}
}
