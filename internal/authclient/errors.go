package authclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/jerseyretro/storefront/internal/ports"
)

// ErrorKind classifies resolver failures.
type ErrorKind string

const (
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindValidation         ErrorKind = "validation_failure"
	KindUpstream           ErrorKind = "upstream_unavailable"
	KindUnexpected         ErrorKind = "unexpected_failure"
)

// ErrSuperseded is returned by SignIn when a newer sign-in or a sign-out
// was issued before the attempt completed. Its result was discarded.
var ErrSuperseded = errors.New("sign-in superseded by a newer request")

// Error is a classified resolver failure. Message is safe to show to the user.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// IsKind reports whether err is a resolver Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// classify turns a collaborator error into an Error. rejected is the kind
// used for 4xx answers.
func classify(err error, rejected ErrorKind) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	var rej ports.ProviderRejection
	if errors.As(err, &rej) {
		status := rej.RejectionStatus()
		switch {
		case status == http.StatusTooManyRequests || status >= 500:
			return &Error{Kind: KindUpstream, Message: rej.RejectionMessage(), Cause: err}
		case status >= 400:
			return &Error{Kind: rejected, Message: rej.RejectionMessage(), Cause: err}
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindUnexpected, Message: err.Error(), Cause: err}
	}
	return &Error{Kind: KindUpstream, Message: err.Error(), Cause: err}
}
