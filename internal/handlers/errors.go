package handlers

import (
	"errors"
	"net/http"

	"exam-service/internal/service"
	"exam-service/internal/variant"

	"github.com/gin-gonic/gin"
)

// respondError maps service failures onto HTTP status plus a stable
// machine-readable code so the client can render the exact denial reason.
func respondError(c *gin.Context, err error) {
	var cfgErr *variant.ConfigError
	if errors.As(err, &cfgErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": cfgErr.Error(),
			"code":  "SERIES_MISCONFIGURED",
		})
		return
	}

	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, service.ErrSeriesNotFound):
		status, code = http.StatusNotFound, "SERIES_NOT_FOUND"
	case errors.Is(err, service.ErrSeriesNotAvailable):
		status, code = http.StatusForbidden, "SERIES_NOT_AVAILABLE"
	case errors.Is(err, service.ErrAttemptLimitExceeded):
		status, code = http.StatusForbidden, "ATTEMPT_LIMIT_EXCEEDED"
	case errors.Is(err, service.ErrCooldownActive):
		status, code = http.StatusForbidden, "COOLDOWN_ACTIVE"
	case errors.Is(err, service.ErrAttemptInProgress):
		status, code = http.StatusConflict, "ATTEMPT_IN_PROGRESS"
	case errors.Is(err, service.ErrStartConflict):
		status, code = http.StatusConflict, "START_CONFLICT"
	case errors.Is(err, service.ErrAttemptNotFound):
		status, code = http.StatusNotFound, "ATTEMPT_NOT_FOUND"
	case errors.Is(err, service.ErrAttemptAlreadyCompleted):
		status, code = http.StatusConflict, "ATTEMPT_ALREADY_COMPLETED"
	case errors.Is(err, service.ErrNoActiveAttempt):
		status, code = http.StatusNotFound, "NO_ACTIVE_ATTEMPT"
	}

	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
