package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common error types for the portal client
var (
	// Token errors
	ErrDecode = errors.New("token decode failed")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrOAuthRejected      = errors.New("oauth login rejected")
	ErrRejected           = errors.New("request rejected")
	ErrRefresh            = errors.New("token refresh failed")
	ErrNotAuthenticated   = errors.New("not authenticated")

	// Transport and backend errors
	ErrNetwork   = errors.New("network error")
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
	ErrServer    = errors.New("server error")
	ErrConflict  = errors.New("conflict")

	// General errors
	ErrValidation  = errors.New("validation failed")
	ErrIncomplete  = errors.New("incomplete step")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// AuthError is returned by the login operations. Reason is one of the
// authentication sentinels; Message carries the backend's text when present.
type AuthError struct {
	Reason  error
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Reason.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Reason
}

// ValidationError is a client-side check that failed before any request was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "http %d", e.Status)
	if e.Code != "" {
		fmt.Fprintf(&sb, " %s", e.Code)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	return sb.String()
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotAuthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrConflict:
		return e.Status == http.StatusConflict
	case ErrValidation:
		return e.Status == http.StatusBadRequest
	case ErrServer:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// FriendlyMessage returns the text shown to the user for a failed call.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	var authErr *AuthError
	if As(err, &authErr) {
		switch {
		case Is(authErr, ErrEmailNotVerified):
			return "Your email address is not verified. Check your inbox for the verification link."
		case Is(authErr, ErrOAuthRejected):
			return "Google sign-in was rejected."
		}
		return authErr.Error()
	}
	var validationErr *ValidationError
	if As(err, &validationErr) {
		return validationErr.Error()
	}
	switch {
	case Is(err, ErrRefresh):
		return "Your session has expired. Please log in again."
	case Is(err, ErrNotAuthenticated):
		return "You are not logged in."
	case Is(err, ErrNetwork):
		return "The server could not be reached. Check your connection and try again."
	case Is(err, ErrForbidden):
		return "You do not have access to this resource."
	case Is(err, ErrNotFound):
		return "The requested resource does not exist."
	case Is(err, ErrServer):
		return "The server encountered an error. Try again later."
	}
	var statusErr *StatusError
	if As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}
	return err.Error()
}
