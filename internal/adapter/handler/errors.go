package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/srgjo27/lodging_booking/internal/core/domain"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// handleError renders err with the status and code of the first matching
// domain error. Anything else is logged and hidden behind a generic 500.
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Error(err))
		c.AbortWithStatusJSON(status, errorResponse{Code: code, Error: "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Error: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrReservationNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDateConflict):
		return http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict, "INVALID_STATE"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusServiceUnavailable, "BUSY"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
