package meta

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrAuthentication represents an error wherein credentials offered in
// exchange for a session (e.g. a username and password) were rejected by the
// Mentora API.
type ErrAuthentication struct {
	// Reason is the human-readable detail supplied by the API server, if any.
	Reason string `json:"detail,omitempty"`
}

func (e *ErrAuthentication) Error() string {
	if e.Reason == "" {
		return "Could not authenticate the request."
	}
	return fmt.Sprintf("Could not authenticate the request: %s", e.Reason)
}

// ErrSessionExpired represents an error wherein a previously valid bearer
// token was rejected by the Mentora API. By the time a caller receives this
// error, persisted session state has already been cleared.
type ErrSessionExpired struct {
	Reason string `json:"detail,omitempty"`
}

func (e *ErrSessionExpired) Error() string {
	if e.Reason == "" {
		return "The session has expired."
	}
	return fmt.Sprintf("The session has expired: %s", e.Reason)
}

// ErrAuthorization represents an error wherein the request was authenticated
// but is not authorized.
type ErrAuthorization struct {
	Reason string `json:"detail,omitempty"`
}

func (e *ErrAuthorization) Error() string {
	if e.Reason == "" {
		return "The request is not authorized."
	}
	return fmt.Sprintf("The request is not authorized: %s", e.Reason)
}

// ErrBadRequest represents an error wherein the API server rejected a
// malformed or invalid request. Validation failures are itemized in Details.
type ErrBadRequest struct {
	Reason  string   `json:"detail,omitempty"`
	Details []string `json:"details,omitempty"`
}

func (e *ErrBadRequest) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "request was invalid"
	}
	if len(e.Details) == 0 {
		return fmt.Sprintf("Bad request: %s", reason)
	}
	msg := fmt.Sprintf("Bad request: %s:", reason)
	for i, detail := range e.Details {
		msg = fmt.Sprintf("%s\n  %d. %s", msg, i, detail)
	}
	return msg
}

// ErrNotFound represents an error wherein a requested resource does not
// exist.
type ErrNotFound struct {
	Reason string `json:"detail,omitempty"`
}

func (e *ErrNotFound) Error() string {
	if e.Reason == "" {
		return "The requested resource was not found."
	}
	return fmt.Sprintf("Not found: %s", e.Reason)
}

// ErrConflict represents an error wherein a request could not be completed
// because it would violate some constraint, e.g. enrolling twice in the same
// track or registering a username that is already taken.
type ErrConflict struct {
	Reason string `json:"detail,omitempty"`
}

func (e *ErrConflict) Error() string {
	if e.Reason == "" {
		return "The request conflicts with existing state."
	}
	return fmt.Sprintf("Conflict: %s", e.Reason)
}

// ErrInternalServer represents a condition wherein the API server has
// encountered an unexpected error.
type ErrInternalServer struct {
	Reason string `json:"detail,omitempty"`
}

func (e *ErrInternalServer) Error() string {
	return "An internal server error occurred."
}

// ErrUnexpectedStatus represents any other non-success response.
type ErrUnexpectedStatus struct {
	StatusCode int    `json:"-"`
	Reason     string `json:"detail,omitempty"`
}

func (e *ErrUnexpectedStatus) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("received %d from API server", e.StatusCode)
	}
	return fmt.Sprintf(
		"received %d from API server: %s",
		e.StatusCode,
		e.Reason,
	)
}

// ErrTransient represents a request that never produced a response, e.g.
// because the API server could not be reached. No retry is attempted.
type ErrTransient struct {
	Err error `json:"-"`
}

func (e *ErrTransient) Error() string {
	return fmt.Sprintf("error invoking API: %s", e.Err)
}

func (e *ErrTransient) Unwrap() error {
	return e.Err
}

// Detail returns the human-readable detail the API server supplied with an
// error, or the empty string if err did not originate with the API server or
// no detail was supplied.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	switch e := errors.Cause(err).(type) {
	case *ErrAuthentication:
		return e.Reason
	case *ErrSessionExpired:
		return e.Reason
	case *ErrAuthorization:
		return e.Reason
	case *ErrBadRequest:
		if e.Reason == "" {
			return strings.Join(e.Details, "; ")
		}
		return e.Reason
	case *ErrNotFound:
		return e.Reason
	case *ErrConflict:
		return e.Reason
	case *ErrInternalServer:
		return e.Reason
	case *ErrUnexpectedStatus:
		return e.Reason
	}
	return ""
}

// IsSessionExpired returns true if err is, or wraps, an *ErrSessionExpired.
func IsSessionExpired(err error) bool {
	_, ok := errors.Cause(err).(*ErrSessionExpired)
	return ok
}
