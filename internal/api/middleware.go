package api

import (
	"log/slog"
	"strings"
	"time"

	"alcyxob/liftlog/internal/identity"
	"alcyxob/liftlog/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	VerifySubject(token string) (string, error)
}

// RequestID tags the request with an id (the caller's, or a new uuid) and
// stores a logger carrying it in the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		logger := slog.Default().With(slog.String("request_id", id))
		ctx := logging.WithLogger(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}
		logging.FromContext(c.Request.Context()).Log(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// AuthMiddleware attaches the bearer token's user to the request context.
// A missing or rejected token leaves the request anonymous; the action then
// reports Unauthorized.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || verifier == nil {
			c.Next()
			return
		}
		userID, err := verifier.VerifySubject(token)
		if err != nil {
			logging.FromContext(c.Request.Context()).Debug("bearer token rejected", slog.Any("error", err))
			c.Next()
			return
		}
		ctx := identity.WithUserID(c.Request.Context(), userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	// Expecting "Bearer <token>"
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
