package jenkins

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches any *Error whose Kind is KindNotFound.
var ErrNotFound = errors.New("jenkins: requested item could not be found")

// Kind classifies a failed Jenkins request.
type Kind int

const (
	// KindTransport covers connection, DNS and timeout failures.
	KindTransport Kind = iota
	// KindNotFound is an HTTP 404.
	KindNotFound
	// KindAuth is an HTTP 401, 403 or 500. Jenkins answers all three for bad credentials.
	KindAuth
	// KindStatus is any other HTTP status >= 400.
	KindStatus
	// KindParse is a response body that is not the expected JSON.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindAuth:
		return "authentication or server error"
	case KindStatus:
		return "unexpected status"
	case KindParse:
		return "parse error"
	default:
		return "transport error"
	}
}

// Error is returned by every Client operation.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("%s: requested item could not be found", e.Op)
	case KindAuth:
		return fmt.Sprintf("%s: error in request, possibly authentication failed [%d]: %s", e.Op, e.StatusCode, http.StatusText(e.StatusCode))
	case KindStatus:
		return fmt.Sprintf("%s: jenkins returned status %d", e.Op, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match not-found errors.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var jerr *Error
	return errors.As(err, &jerr) && jerr.Kind == kind
}

func statusError(op string, code int) *Error {
	switch {
	case code == http.StatusNotFound:
		return &Error{Op: op, Kind: KindNotFound, StatusCode: code}
	case code == http.StatusUnauthorized, code == http.StatusForbidden, code == http.StatusInternalServerError:
		return &Error{Op: op, Kind: KindAuth, StatusCode: code}
	default:
		return &Error{Op: op, Kind: KindStatus, StatusCode: code}
	}
}
