// Package docerr defines the error taxonomy shared by resolution, sequencing
// and transport code.
package docerr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can tell "zero matches" from
// "search failed" without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindOutOfBounds
	KindInvalidRequest
	KindPermissionDenied
	KindTransient
	KindUnimplemented
	KindStale
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindOutOfBounds:
		return "out_of_bounds"
	case KindInvalidRequest:
		return "invalid_request"
	case KindPermissionDenied:
		return "permission_denied"
	case KindTransient:
		return "transient"
	case KindUnimplemented:
		return "unimplemented"
	case KindStale:
		return "stale_offsets"
	default:
		return "unknown"
	}
}

// Resolution errors
var (
	// ErrNotFound indicates an absent document, text occurrence, paragraph, table or cell.
	ErrNotFound = errors.New("not found")

	// ErrOutOfBounds indicates a row or column index beyond the table dimensions.
	ErrOutOfBounds = errors.New("index out of bounds")
)

// Request errors
var (
	// ErrInvalidRequest indicates malformed offsets, dimensions or options.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnimplemented indicates a declared capability that is not built.
	ErrUnimplemented = errors.New("not implemented")

	// ErrStale indicates offsets computed against a snapshot that a later
	// write has invalidated.
	ErrStale = errors.New("offsets are stale")
)

// Transport errors
var (
	// ErrPermissionDenied indicates the remote service refused access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTransient indicates a failure worth retrying for idempotent reads.
	ErrTransient = errors.New("transient failure")
)

var sentinels = map[Kind]error{
	KindNotFound:         ErrNotFound,
	KindOutOfBounds:      ErrOutOfBounds,
	KindInvalidRequest:   ErrInvalidRequest,
	KindPermissionDenied: ErrPermissionDenied,
	KindTransient:        ErrTransient,
	KindUnimplemented:    ErrUnimplemented,
	KindStale:            ErrStale,
}

// Error carries a kind plus the document and operation it happened in.
type Error struct {
	Kind       Kind
	DocumentID string
	Op         string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	switch {
	case e.Op != "" && e.DocumentID != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.DocumentID, msg)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, msg)
	case e.DocumentID != "":
		return fmt.Sprintf("document %s: %s", e.DocumentID, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports a match against the sentinel of the same kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New returns an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches document and operation context to err. The kind is
// preserved when err already carries one.
func Wrap(err error, docID, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), DocumentID: docID, Op: op, Err: err}
}

// KindOf extracts the kind of err, falling back to sentinel matching.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnknown {
		return e.Kind
	}
	for k, s := range sentinels {
		if errors.Is(err, s) {
			return k
		}
	}
	return KindUnknown
}
