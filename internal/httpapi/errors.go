package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/trigtutor/internal/generate"
	"github.com/abhisek/trigtutor/internal/store"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error       string `json:"error"`
	RateLimited bool   `json:"rate_limited"`
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
}

// respondError maps err to a status and the learner-facing message of the
// surface. Only the two generation buckets ever reach the client.
func (s *Server) respondError(c *gin.Context, surface generate.Surface, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}

	status := http.StatusBadGateway
	rateLimited := generate.IsRateLimit(err)
	if rateLimited {
		status = http.StatusTooManyRequests
	} else if generate.KindOf(err) == 0 {
		status = http.StatusInternalServerError
	}

	s.log.Warn("request failed",
		zap.String("surface", string(surface)),
		zap.Int("status", status),
		zap.Error(err))

	c.JSON(status, ErrorResponse{
		Error:       generate.UserMessage(surface, err),
		RateLimited: rateLimited,
	})
}
