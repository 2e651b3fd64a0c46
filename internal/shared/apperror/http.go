package apperror

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// HTTPError is the wire-facing shape handed to response writers.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP converts any error into an HTTPError. Unknown errors are logged and
// surfaced as an opaque INTERNAL_ERROR so provider detail never leaks.
func ToHTTP(err error) HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return HTTPError{
			Status:  appErr.HTTPStatus,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	zap.L().Error("unexpected error", zap.Error(err))
	return HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "An unexpected error occurred",
	}
}
