package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnez/pkg/logger"
)

const (
	ContextTraceIDKey = "trace_id"
	ContextUserIDKey  = "user_id"
	ContextLoggerKey  = "logger"
	ContextRoleKey    = "role"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString(ContextTraceIDKey),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString(ContextTraceIDKey),
	})
}

// HandleServiceError maps the service error taxonomy onto HTTP responses.
// User-correctable errors carry their message verbatim; upstream and storage
// failures get a stable reason string and are logged.
func HandleServiceError(c *gin.Context, err error) {
	log := LoggerFrom(c)
	switch {
	case errors.Is(err, ErrAttemptCompleted), errors.Is(err, ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthenticated):
		RespondError(c, http.StatusUnauthorized, "Unauthenticated")
	case errors.Is(err, ErrNotFound):
		RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrGeneration):
		log.Warn("generation failed", "error", err)
		RespondError(c, http.StatusBadGateway, "Content generation failed, please retry")
	case errors.Is(err, ErrConflict):
		log.Warn("write conflict", "error", err)
		RespondError(c, http.StatusConflict, "The record was modified concurrently, please retry")
	case errors.Is(err, ErrDatabaseError):
		log.Error("database error", "error", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	default:
		log.Error("unhandled service error", "error", err)
		RespondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

// LoggerFrom returns the request-scoped logger placed by the request logging
// middleware, or a no-op logger outside a request.
func LoggerFrom(c *gin.Context) *logger.Logger {
	if v, ok := c.Get(ContextLoggerKey); ok {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.NewNop()
}
