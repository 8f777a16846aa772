package jt808

import "fmt"

// ErrorKind enumerates the recoverable error categories the core surfaces,
// per the protocol's error handling design: framing errors are local and
// never tear down a session, state-machine errors surface to the caller,
// and transport errors always propagate.
type ErrorKind int

const (
	// Ok indicates no error; Error values of this kind are never returned.
	Ok ErrorKind = iota
	// NullArgument is returned when a required output parameter was absent.
	NullArgument
	// BadEscape indicates an illegal escape sequence or an unescaped sentinel.
	BadEscape
	// BadChecksum indicates the XOR checksum did not match.
	BadChecksum
	// BadHeader indicates the frame was too short or had impossible head fields.
	BadHeader
	// NoHandler indicates the message ID has no registered encoder/decoder.
	NoHandler
	// BadLength indicates the body length disagreed with the declared msg_len.
	BadLength
	// BadState indicates an operation was attempted in the wrong session state.
	BadState
	// TransportError indicates the underlying send/recv/connect/listen failed.
	TransportError
)

func (k ErrorKind) String() string {
	switch k {
	case Ok:
		return "ok"
	case NullArgument:
		return "null argument"
	case BadEscape:
		return "bad escape"
	case BadChecksum:
		return "bad checksum"
	case BadHeader:
		return "bad header"
	case NoHandler:
		return "no handler"
	case BadLength:
		return "bad length"
	case BadState:
		return "bad state"
	case TransportError:
		return "transport error"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the core. It carries an ErrorKind so
// callers can branch with errors.Is/errors.As instead of matching strings.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jt808: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("jt808: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, jt808.ErrKind(BadChecksum)) style comparisons.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// ErrKind builds a bare sentinel *Error carrying only a kind, for use with errors.Is.
func ErrKind(kind ErrorKind) *Error { return &Error{Kind: kind} }

func newErr(op string, kind ErrorKind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}
