package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the short machine-readable error identifier sent to the browser
// in the "error" field of every error body.
type Kind string

const (
	KindUnauthorized       Kind = "Unauthorized"
	KindForbidden          Kind = "Forbidden"
	KindBadRequest         Kind = "BadRequest"
	KindInvalidCredentials Kind = "InvalidCredentials"
	KindNotFound           Kind = "NotFound"
	KindConflict           Kind = "Conflict"
	KindBackendError       Kind = "BackendError"
	KindTimeout            Kind = "Timeout"
	KindServiceUnavailable Kind = "ServiceUnavailable"
	KindTooManyRequests    Kind = "TooManyRequests"
	KindInternal           Kind = "InternalError"
)

// Sentinel errors for use with errors.Is()
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("resource already exists")
	ErrBackend            = errors.New("upstream returned an error")
	ErrTimeout            = errors.New("upstream timed out")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrValidation         = errors.New("validation error")
)

// Body is the uniform error shape returned by every route.
type Body struct {
	Error   Kind   `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type AppError struct {
	Kind    Kind
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Status maps the error kind onto its HTTP status code.
func (e *AppError) Status() int {
	return StatusFor(e.Kind)
}

// Body renders the error as the public error body.
func (e *AppError) Body() Body {
	return Body{Error: e.Kind, Message: e.Message, Details: e.Details}
}

// WithDetails returns a copy of e carrying details.
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// StatusFor returns the HTTP status used for a kind. BackendError has no fixed
// status: the upstream status is relayed instead, so 502 is only a fallback.
func StatusFor(kind Kind) int {
	switch kind {
	case KindUnauthorized, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindBackendError:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// KindOf extracts the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrValidation):
		return KindBadRequest
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrServiceUnavailable):
		return KindServiceUnavailable
	case errors.Is(err, ErrBackend):
		return KindBackendError
	default:
		return KindInternal
	}
}

// Constructors
func Unauthorized(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: msg, Err: ErrUnauthorized}
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg, Err: ErrForbidden}
}

func BadRequest(msg string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: msg, Err: ErrBadRequest}
}

func Validation(msg string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: msg, Err: ErrValidation}
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg, Err: ErrNotFound}
}

func Conflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg, Err: ErrConflict}
}

func InvalidCredentials() *AppError {
	return &AppError{Kind: KindInvalidCredentials, Message: "invalid credentials", Err: ErrInvalidCredentials}
}

func Timeout(msg string, err error) *AppError {
	return &AppError{Kind: KindTimeout, Message: msg, Err: errors.Join(ErrTimeout, err)}
}

func ServiceUnavailable(msg string, err error) *AppError {
	if err == nil {
		err = ErrServiceUnavailable
	} else {
		err = errors.Join(ErrServiceUnavailable, err)
	}
	return &AppError{Kind: KindServiceUnavailable, Message: msg, Err: err}
}

func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// From converts any error into an AppError safe to show to a client. Errors
// that carry no kind become a generic InternalError.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	kind := KindOf(err)
	if kind == KindInternal {
		return Internal(msgInternal, err)
	}
	return &AppError{Kind: kind, Message: err.Error(), Err: err}
}

const msgInternal = "internal server error"
