package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	Internal Kind = iota
	MalformedCredential
	InvalidCredential
	MembershipDenied
	ContentReference
	Validation
	NotFound
	Conflict
	Storage
	CryptoConfig
)

var kindNames = map[Kind]string{
	Internal:            "internal",
	MalformedCredential: "malformed_credential",
	InvalidCredential:   "invalid_credential",
	MembershipDenied:    "membership_denied",
	ContentReference:    "content_reference",
	Validation:          "validation",
	NotFound:            "not_found",
	Conflict:            "conflict",
	Storage:             "storage",
	CryptoConfig:        "crypto_config",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Status returns the HTTP status code for the kind.
// CryptoConfig only happens at startup and maps to 500 if it ever leaks.
func (k Kind) Status() int {
	switch k {
	case MalformedCredential:
		return http.StatusUnauthorized
	case InvalidCredential, MembershipDenied:
		return http.StatusForbidden
	case ContentReference, Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error annotated with a Kind and a caller-safe message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates an Error with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PublicMessage is the text returned to the caller.
// Server side kinds never expose their message or cause.
func (e *Error) PublicMessage() string {
	if e.Kind.Status() >= http.StatusInternalServerError {
		return http.StatusText(http.StatusInternalServerError)
	}
	return e.Message
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// As returns err as an *Error, classifying unknown errors as Internal.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(Internal, err, "internal error")
}
