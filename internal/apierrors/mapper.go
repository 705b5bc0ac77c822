package apierrors

import (
	"errors"

	"voice-bridge/internal/store"
	"voice-bridge/internal/voicecall/processor"

	"github.com/gin-gonic/gin"
)

// Machine-readable error codes returned to operator clients.
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeInternal     = "INTERNAL_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeShuttingDown = "SHUTTING_DOWN"
	CodeAgentOffline = "AGENT_UNAVAILABLE"
	CodeInvalidPhone = "INVALID_PHONE"
	CodeInvalidID    = "INVALID_SESSION_ID"
	CodeBadSignature = "INVALID_SIGNATURE"
)

// RespondWithError maps a domain error onto a sanitized response. Anything
// unrecognised becomes a 500 with the detail kept in the logs.
func RespondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		NotFound(c, "Resource not found")
	case errors.Is(err, processor.ErrShuttingDown):
		ServiceUnavailable(c, CodeShuttingDown, "Server is shutting down", err)
	case errors.Is(err, processor.ErrAgentUnavailable):
		ServiceUnavailable(c, CodeAgentOffline, "Voice agent is temporarily unavailable", err)
	default:
		InternalError(c, err)
	}
}
