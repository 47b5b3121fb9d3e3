package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler exposes the workout actions.
type WorkoutHandler struct {
	workouts  service.WorkoutService
	exercises service.ExerciseService
}

func NewWorkoutHandler(workouts service.WorkoutService, exercises service.ExerciseService) *WorkoutHandler {
	return &WorkoutHandler{workouts: workouts, exercises: exercises}
}

// nullableTime tells an absent field apart from an explicit null.
type nullableTime struct {
	Set   bool
	Value *time.Time
}

func (n *nullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

// updateWorkoutRequest is the PATCH body. "completedAt": null reopens.
type updateWorkoutRequest struct {
	Name        *string      `json:"name"`
	StartedAt   *time.Time   `json:"startedAt"`
	CompletedAt nullableTime `json:"completedAt"`
}

type addExerciseRequest struct {
	ExerciseName string `json:"exerciseName"`
	Order        *int   `json:"order"`
}

// ListWorkouts handles GET /workouts?day=2025-01-10&withExercises=true.
func (h *WorkoutHandler) ListWorkouts(c *gin.Context) {
	var in service.ListWorkoutsInput
	if raw := c.Query("day"); raw != "" {
		day, err := parseDay(raw)
		if err != nil {
			rejectInput(c, "day", "must be a date (2006-01-02) or an RFC 3339 time")
			return
		}
		in.Day = &day
	}
	if raw := c.Query("withExercises"); raw != "" {
		with, err := strconv.ParseBool(raw)
		if err != nil {
			rejectInput(c, "withExercises", "must be a boolean")
			return
		}
		in.WithExercises = with
	}
	respond(c, http.StatusOK, h.workouts.ListWorkouts(c.Request.Context(), in))
}

func parseDay(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (h *WorkoutHandler) CreateWorkout(c *gin.Context) {
	var in service.CreateWorkoutInput
	if !bindBody(c, &in) {
		return
	}
	respond(c, http.StatusCreated, h.workouts.CreateWorkout(c.Request.Context(), in))
}

func (h *WorkoutHandler) CreateWorkoutFromTemplate(c *gin.Context) {
	var in service.CreateWorkoutFromTemplateInput
	if !bindBody(c, &in) {
		return
	}
	respond(c, http.StatusCreated, h.workouts.CreateWorkoutFromTemplate(c.Request.Context(), in))
}

func (h *WorkoutHandler) GetWorkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.workouts.GetWorkout(c.Request.Context(), id))
}

func (h *WorkoutHandler) UpdateWorkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateWorkoutRequest
	if !bindBody(c, &req) {
		return
	}
	in := service.UpdateWorkoutInput{
		ID:        id,
		Name:      req.Name,
		StartedAt: req.StartedAt,
	}
	if req.CompletedAt.Set {
		in.CompletedAt = req.CompletedAt.Value
		in.ClearCompletedAt = req.CompletedAt.Value == nil
	}
	respond(c, http.StatusOK, h.workouts.UpdateWorkout(c.Request.Context(), in))
}

func (h *WorkoutHandler) CompleteWorkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.workouts.CompleteWorkout(c.Request.Context(), id))
}

func (h *WorkoutHandler) ReopenWorkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.workouts.ReopenWorkout(c.Request.Context(), id))
}

func (h *WorkoutHandler) DeleteWorkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.workouts.DeleteWorkout(c.Request.Context(), id))
}

// AddExercise handles POST /workouts/:id/exercises.
func (h *WorkoutHandler) AddExercise(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req addExerciseRequest
	if !bindBody(c, &req) {
		return
	}
	respond(c, http.StatusCreated, h.exercises.AddExerciseToWorkout(c.Request.Context(), service.AddExerciseInput{
		WorkoutID:    id,
		ExerciseName: req.ExerciseName,
		Order:        req.Order,
	}))
}
