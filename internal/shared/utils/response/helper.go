package response

import (
	"net/http"

	"courtly/internal/shared/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondAppError maps the failure taxonomy to HTTP statuses in one place.
// Controllers hand every service error here instead of picking codes ad hoc.
func RespondAppError(c *gin.Context, err error) {
	kind, ok := apperrors.KindOf(err)
	if !ok {
		RespondJSON(c, "error", http.StatusInternalServerError, "internal error", nil, err.Error())
		return
	}

	var code int
	switch kind {
	case apperrors.KindValidation:
		code = http.StatusBadRequest
	case apperrors.KindBookingWindowExceeded:
		code = http.StatusUnprocessableEntity
	case apperrors.KindLockTimeout:
		// Transient: the caller should retry with backoff.
		code = http.StatusServiceUnavailable
	case apperrors.KindSlotUnavailable, apperrors.KindUserConflict, apperrors.KindMaintenanceWindow:
		code = http.StatusConflict
	case apperrors.KindNotFound:
		code = http.StatusNotFound
	default:
		code = http.StatusInternalServerError
	}

	c.JSON(code, StandardApiResponse{
		Status:     "error",
		StatusCode: code,
		Message:    err.Error(),
		Errors:     kind.String(),
		Retryable:  apperrors.IsRetryable(err),
	})
}
