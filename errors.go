package peernet

import "github.com/pkg/errors"

// ErrorKind distinguishes the two ways a peernet operation can fail.
type ErrorKind int

const (
	// ErrTooLongData means the caller submitted a connectionless payload
	// exceeding the wire codec's maximum.
	ErrTooLongData ErrorKind = iota
	// ErrCallback means the user-supplied Callback.Send returned an error,
	// or a peer's conn.Conn returned one (conn.ErrNotConnected, an encode
	// error) from an operation Net delegated to it.
	ErrCallback
)

// Error is the error surface every Net operation that touches the network
// returns. Use errors.As to recover it, and Unwrap (or pkg/errors.Cause)
// to reach a wrapped callback error.
type Error struct {
	Kind ErrorKind
	err  error
}

func tooLongDataError(cause error) *Error {
	return &Error{Kind: ErrTooLongData, err: errors.Wrap(cause, "peernet: data too long")}
}

func callbackError(cause error) *Error {
	return &Error{Kind: ErrCallback, err: errors.Wrap(cause, "peernet: callback failed")}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.err.Error()
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As and
// pkg/errors.Cause.
func (e *Error) Unwrap() error {
	return e.err
}
