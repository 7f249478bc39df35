package flavor

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP layer can map it to a status code.
type Kind int

const (
	// KindStoreFailure covers connectivity, constraint and SQL errors.
	KindStoreFailure Kind = iota
	// KindNotFound means no row matched the identifier.
	KindNotFound
	// KindInvalidInput means the request was rejected before the store.
	KindInvalidInput
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "store_failure"
	}
}

// ErrUnavailable is returned by a Store that never got a database handle.
var ErrUnavailable = errors.New("flavor store unavailable")

// Error is a classified failure of a flavor operation.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err. Unclassified errors are store failures.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindStoreFailure
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

func notFound(op string) error {
	return &Error{Kind: KindNotFound, Op: op}
}

func storeFailure(op string, err error) error {
	return &Error{Kind: KindStoreFailure, Op: op, Err: err}
}
