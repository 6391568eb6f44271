package client

import (
	"errors"
	"fmt"
)

// Kind classifies client failures.
type Kind string

const (
	// KindInput means the local file could not be read.
	KindInput Kind = "input"
	// KindTransport means the request never produced an HTTP response.
	KindTransport Kind = "transport"
	// KindStatus means the service answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindProtocol means the response body did not have the expected shape.
	KindProtocol Kind = "protocol"
)

// Error captures contextual information for a failed service call.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus && e.Err != nil:
		return fmt.Sprintf("%s: API call failed: %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s: API call failed: %d", e.Op, e.StatusCode)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a client Error of kind k.
func IsKind(err error, k Kind) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Kind == k
}

func newError(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}
