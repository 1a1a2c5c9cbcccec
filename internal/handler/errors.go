package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/traveldesk/travel-approval/internal/application/service"
	"go.uber.org/zap"
)

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// writeError maps the service error taxonomy onto HTTP status codes.
// Storage failures are logged with detail but surfaced opaquely.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var (
		notFound    *service.NotFoundError
		forbidden   *service.ForbiddenError
		invalid     *service.InvalidTransitionError
		validation  *service.ValidationError
		storageFail *service.StorageError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: notFound.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: forbidden.Error()})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: invalid.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: validation.Error()})
	case errors.As(err, &storageFail):
		h.logger.Error("Storage failure", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal error"})
	}
}
