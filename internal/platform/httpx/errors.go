// Package httpx provides HTTP response utilities.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrValidation    = errors.New("validation failed")
	ErrForbidden     = errors.New("forbidden")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMisconfigured = errors.New("server misconfigured")
)

// Error attaches a client-facing message to one of the sentinel kinds.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

// Wrap builds an *Error. A nil cause is allowed.
func Wrap(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// UpstreamError reports a failed call to the backing store or the query proxy.
// Status is zero for transport failures.
type UpstreamError struct {
	Status int
	Body   []byte
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return "upstream: " + e.Err.Error()
	}
	return "upstream: status " + http.StatusText(e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// RespondError maps domain errors to the {status_code, detail} error body.
func RespondError(w http.ResponseWriter, err error) {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		if upstream.Status > 0 {
			Fail(w, upstream.Status, upstreamDetail(upstream.Body))
			return
		}
		Fail(w, http.StatusBadGateway, "Error contacting backing store: "+upstream.Error())
		return
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		Fail(w, http.StatusUnauthorized, ErrorDetail{
			Message: message(err, "Not authenticated"),
			Error:   cause(err),
			Type:    "authentication_error",
		})
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, message(err, "Forbidden"))
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, message(err, "Not found"))
	case errors.Is(err, ErrDuplicate):
		Fail(w, http.StatusBadRequest, message(err, "Duplicate entry"))
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, message(err, "Validation failed"))
	case errors.Is(err, ErrMisconfigured):
		Fail(w, http.StatusInternalServerError, message(err, "Server misconfigured"))
	default:
		Fail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

func cause(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Cause != nil {
		return e.Cause.Error()
	}
	return ""
}

// upstreamDetail keeps a JSON body verbatim and falls back to the raw text.
func upstreamDetail(body []byte) any {
	if len(body) > 0 && json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

// IsServerError reports whether err would be answered with a 5xx status.
func IsServerError(err error) bool {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.Status == 0 || upstream.Status >= http.StatusInternalServerError
	}
	for _, kind := range []error{ErrUnauthorized, ErrForbidden, ErrNotFound, ErrDuplicate, ErrValidation} {
		if errors.Is(err, kind) {
			return false
		}
	}
	return true
}
