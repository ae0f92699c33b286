package model

import (
	"fmt"
	"net/http"
)

// Kind classifies provider failures so callers can branch without parsing
// messages.
type Kind int

const (
	// KindAuthentication marks rejected credentials.
	KindAuthentication Kind = iota + 1
	// KindRequestFailed marks transport failures and non-success statuses.
	KindRequestFailed
	// KindProvider marks a response body that does not match the expected
	// shape.
	KindProvider
)

// Sentinels for errors.Is checks against a Kind.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrRequestFailed  = &Error{Kind: KindRequestFailed}
	ErrProvider       = &Error{Kind: KindProvider}
)

// Error surfaces an adapter failure with HTTP metadata when available.
type Error struct {
	Kind    Kind
	Vendor  string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	vendor := e.Vendor
	if vendor == "" {
		vendor = "provider"
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", vendor, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s: %s", vendor, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind so that errors.Is(err, ErrAuthentication) holds for any
// authentication failure regardless of vendor or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication failed"
	case KindRequestFailed:
		return "request failed"
	case KindProvider:
		return "invalid provider response"
	default:
		return "unknown error"
	}
}

// HTTPError classifies a non-success HTTP response. Unauthorized statuses map
// to KindAuthentication, everything else to KindRequestFailed carrying the
// status detail.
func HTTPError(vendor string, status int, message string) *Error {
	kind := KindRequestFailed
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuthentication
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{Kind: kind, Vendor: vendor, Status: status, Message: message}
}

// TransportError wraps a failed network exchange.
func TransportError(vendor string, err error) *Error {
	return &Error{Kind: KindRequestFailed, Vendor: vendor, Err: err}
}

// ParseError wraps a response body that failed to decode.
func ParseError(vendor string, err error) *Error {
	return &Error{Kind: KindProvider, Vendor: vendor, Err: err}
}
