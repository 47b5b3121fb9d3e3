package api

import (
	"net/http"

	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

type SetHandler struct {
	sets service.SetService
}

func NewSetHandler(sets service.SetService) *SetHandler {
	return &SetHandler{sets: sets}
}

type addSetRequest struct {
	SetNumber *int    `json:"setNumber"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
}

type updateSetRequest struct {
	SetNumber *int     `json:"setNumber"`
	Weight    *float64 `json:"weight"`
	Reps      *int     `json:"reps"`
}

// AddSet handles POST /workout-exercises/:id/sets.
func (h *SetHandler) AddSet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req addSetRequest
	if !bindBody(c, &req) {
		return
	}
	respond(c, http.StatusCreated, h.sets.AddSet(c.Request.Context(), service.AddSetInput{
		WorkoutExerciseID: id,
		SetNumber:         req.SetNumber,
		Weight:            req.Weight,
		Reps:              req.Reps,
	}))
}

func (h *SetHandler) UpdateSet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateSetRequest
	if !bindBody(c, &req) {
		return
	}
	respond(c, http.StatusOK, h.sets.UpdateSet(c.Request.Context(), service.UpdateSetInput{
		ID:        id,
		SetNumber: req.SetNumber,
		Weight:    req.Weight,
		Reps:      req.Reps,
	}))
}

func (h *SetHandler) DeleteSet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.sets.DeleteSet(c.Request.Context(), id))
}
