package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "vehicle-alert/pkg/errors"
)

type ErrorBody struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func ErrorResponse(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorBody{Error: http.StatusText(status), Detail: detail})
}

// AppErrorResponse maps the error taxonomy onto HTTP statuses. Unknown
// errors are reported as 500 without leaking internals.
func AppErrorResponse(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, ErrorBody{
			Error:  http.StatusText(http.StatusInternalServerError),
			Detail: "internal server error",
		})
		return
	}

	status := statusForKind(appErr.Kind)
	c.JSON(status, ErrorBody{
		Error:  string(appErr.Kind),
		Detail: appErr.Message,
		Field:  appErr.Field,
	})
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindAuthorization:
		return http.StatusForbidden
	case apperrors.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
