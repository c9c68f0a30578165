package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	apperrors "erp-bff/pkg/errors"

	"github.com/labstack/echo/v4"
)

const msgInternalServerError = "internal server error"

// NewHTTPErrorHandler renders everything that escapes a handler (routing
// misses, body-limit rejections, recovered panics) in the uniform error
// shape. 5xx bodies never carry internal error text.
func NewHTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		appErr, code := toAppError(err)

		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		if code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "internal_server_error",
				slog.String("request_id", requestID),
				slog.Int("status", code),
				slog.String("error", err.Error()))
			appErr = &apperrors.AppError{Kind: appErr.Kind, Message: msgInternalServerError}
		} else {
			logger.WarnContext(c.Request().Context(), "client_error",
				slog.String("request_id", requestID),
				slog.Int("status", code),
				slog.String("error", err.Error()))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, appErr.Body())
		}
		if writeErr != nil {
			logger.Error("write_error_response_failed", slog.String("error", writeErr.Error()))
		}
	}
}

// toAppError keeps echo's own status code (405, 413, ...) even where the
// kind maps to a different default status.
func toAppError(err error) (*apperrors.AppError, int) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message := http.StatusText(httpErr.Code)
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			message = msg
		} else if httpErr.Message != nil {
			message = fmt.Sprintf("%v", httpErr.Message)
		}
		return &apperrors.AppError{Kind: kindForStatus(httpErr.Code), Message: message, Err: err}, httpErr.Code
	}
	appErr := apperrors.From(err)
	return appErr, appErr.Status()
}

// kindForStatus picks the error kind for statuses produced by echo itself.
func kindForStatus(code int) apperrors.Kind {
	switch code {
	case http.StatusUnauthorized:
		return apperrors.KindUnauthorized
	case http.StatusForbidden:
		return apperrors.KindForbidden
	case http.StatusNotFound:
		return apperrors.KindNotFound
	case http.StatusTooManyRequests:
		return apperrors.KindTooManyRequests
	case http.StatusServiceUnavailable:
		return apperrors.KindServiceUnavailable
	case http.StatusGatewayTimeout:
		return apperrors.KindTimeout
	}
	if code >= http.StatusBadRequest && code < http.StatusInternalServerError {
		return apperrors.KindBadRequest
	}
	return apperrors.KindInternal
}
