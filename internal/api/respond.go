package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"alcyxob/liftlog/internal/identity"
	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

func statusForKind(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respond writes the uniform result body with the status its kind maps to.
func respond[T any](c *gin.Context, successStatus int, r service.Result[T]) {
	if r.Success {
		c.JSON(successStatus, r)
		return
	}
	c.JSON(statusForKind(r.Error.Kind), r)
}

// rejectInput reports input the handler could not decode. An anonymous
// caller is told to sign in instead.
func rejectInput(c *gin.Context, field, message string) {
	f := service.InvalidInput(service.FieldError{Field: field, Message: message})
	if _, ok := (identity.ContextProvider{}).UserID(c.Request.Context()); !ok {
		f = service.Unauthenticated()
	}
	respond(c, 0, service.Result[any]{Error: f})
}

// pathID parses the :id parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		rejectInput(c, "id", "must be an integer")
		return 0, false
	}
	return id, true
}

// bindBody decodes an optional JSON body into dst.
func bindBody(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	rejectInput(c, "body", "malformed JSON")
	return false
}
