package ai

import "fmt"

// ErrorKind classifies why an AI listing fetch failed. Every kind is
// recovered the same way by the search service; the kind only matters for
// logging.
type ErrorKind int

const (
	// KindUnavailable means no credential is configured.
	KindUnavailable ErrorKind = iota + 1
	// KindRequest means the remote call failed or returned nothing.
	KindRequest
	// KindSchema means the payload was not a listing array of the expected shape.
	KindSchema
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindRequest:
		return "request"
	case KindSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by QueryClient.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnavailable = &Error{Kind: KindUnavailable}
	ErrRequest     = &Error{Kind: KindRequest}
	ErrSchema      = &Error{Kind: KindSchema}
)

func (e *Error) Error() string {
	msg := "ai " + e.Kind.String() + " error"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a kind sentinel matching e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

func requestError(op string, err error) *Error {
	return &Error{Kind: KindRequest, Op: op, Err: err}
}

func schemaError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindSchema, Op: "parse listings", Err: fmt.Errorf(format, args...)}
}
