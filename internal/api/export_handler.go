package api

import (
	"net/http"

	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exports service.ExportService
}

func NewExportHandler(exports service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// ExportWorkouts handles POST /exports.
func (h *ExportHandler) ExportWorkouts(c *gin.Context) {
	respond(c, http.StatusCreated, h.exports.ExportWorkouts(c.Request.Context()))
}
