package api

import (
	"net/http"
	"strconv"

	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves the exercise library and workout placements.
type ExerciseHandler struct {
	exercises service.ExerciseService
}

func NewExerciseHandler(exercises service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exercises: exercises}
}

type reorderRequest struct {
	Order *int `json:"order"`
}

// SearchExercises handles GET /exercises?q=ben&limit=10.
func (h *ExerciseHandler) SearchExercises(c *gin.Context) {
	in := service.SearchExercisesInput{Query: c.Query("q")}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			rejectInput(c, "limit", "must be an integer")
			return
		}
		in.Limit = limit
	}
	respond(c, http.StatusOK, h.exercises.SearchExercises(c.Request.Context(), in))
}

// ReorderWorkoutExercise handles PATCH /workout-exercises/:id.
func (h *ExerciseHandler) ReorderWorkoutExercise(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reorderRequest
	if !bindBody(c, &req) {
		return
	}
	if req.Order == nil {
		rejectInput(c, "order", "is required")
		return
	}
	respond(c, http.StatusOK, h.exercises.ReorderWorkoutExercise(c.Request.Context(), service.ReorderExerciseInput{
		WorkoutExerciseID: id,
		Order:             *req.Order,
	}))
}

func (h *ExerciseHandler) RemoveExerciseFromWorkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.exercises.RemoveExerciseFromWorkout(c.Request.Context(), id))
}
