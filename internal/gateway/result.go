package gateway

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Store when no row matches.
var ErrNotFound = errors.New("record not found")

// Kind classifies a failed lookup.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindTransport
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Error describes why a lookup produced no value.
type Error struct {
	Kind Kind
	Op   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %q: %s", e.Op, e.Key, e.Kind)
	}
	return fmt.Sprintf("%s %q: %s: %v", e.Op, e.Key, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	if e.Kind == KindNotFound && e.Err == nil {
		return ErrNotFound
	}
	return e.Err
}

// Result carries either a value or the reason there is none. Callers that
// only care about degrading to defaults use OrNil.
type Result[T any] struct {
	Value *T
	Err   *Error
}

// OrNil collapses every failure, not-found included, to nil.
func (r Result[T]) OrNil() *T {
	if r.Err != nil {
		return nil
	}
	return r.Value
}

// Found reports whether the lookup produced a value.
func (r Result[T]) Found() bool {
	return r.Err == nil && r.Value != nil
}

// Outcome is the metrics label of the result.
func (r Result[T]) Outcome() string {
	if r.Err != nil {
		return r.Err.Kind.String()
	}
	return "found"
}

func found[T any](v *T) Result[T] {
	return Result[T]{Value: v}
}

func failed[T any](kind Kind, op, key string, err error) Result[T] {
	return Result[T]{Err: &Error{Kind: kind, Op: op, Key: key, Err: err}}
}
