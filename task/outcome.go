package task

import (
	"context"
	"fmt"

	"github.com/baxromumarov/taskkit/result"
)

// OutcomeKind classifies a single attempt of a task.
type OutcomeKind int

const (
	// Success means the task returned a value that is not a typed failure.
	Success OutcomeKind = iota
	// Thrown means the task returned a non-nil error or panicked.
	Thrown
	// TypedFailure means the task returned a Result or Async that
	// settled to Err.
	TypedFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Thrown:
		return "thrown"
	case TypedFailure:
		return "typed-failure"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the normalized result of one attempt. Retry and Timeout branch
// only on Kind, never on how the task reported its result.
type Outcome[T any] struct {
	Kind OutcomeKind
	// Value is what the task returned. For a TypedFailure it is the failed
	// Result or Async itself, so it can be handed back unchanged.
	Value T
	// Err is the thrown error, or the TaggedError of a TypedFailure.
	Err error
}

// Failure returns the failure of o, or nil for a Success.
func (o Outcome[T]) Failure() error {
	if o.Kind == Success {
		return nil
	}
	return o.Err
}

// Unpack converts o back into the shape the task used: a thrown failure is
// returned as an error, a typed failure as the failed value with a nil
// error.
func (o Outcome[T]) Unpack() (T, error) {
	if o.Kind == Thrown {
		var zero T
		return zero, o.Err
	}
	return o.Value, nil
}

// Attempt runs t once and classifies what happened. A returned *Async is
// awaited until it settles or ctx is done; a done ctx is reported as
// Thrown with ctx.Err().
func Attempt[T any](ctx context.Context, t Task[T]) Outcome[T] {
	v, err := call(ctx, t)
	if err != nil {
		return Outcome[T]{Kind: Thrown, Err: err}
	}

	switch s := any(v).(type) {
	case result.Deferred:
		f, err := settle(ctx, s)
		if err != nil {
			return Outcome[T]{Kind: Thrown, Err: err}
		}
		if f.IsErr() {
			return Outcome[T]{Kind: TypedFailure, Value: v, Err: f.Failure()}
		}
	case result.Failable:
		if s.IsErr() {
			return Outcome[T]{Kind: TypedFailure, Value: v, Err: s.Failure()}
		}
	}
	return Outcome[T]{Kind: Success, Value: v}
}

// settle waits for d. A panic in the deferred computation, or a nil *Async,
// is reported as a *result.PanicError.
func settle(ctx context.Context, d result.Deferred) (f result.Failable, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = result.AsPanicError(p)
		}
	}()

	select {
	case <-d.Done():
		return d.Settled(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type shape int

const (
	shapePlain shape = iota
	shapeResult
	shapeDeferred
)

// resultShape reports how values of T carry failures.
func resultShape[T any]() shape {
	var zero T
	switch any(zero).(type) {
	case result.Deferred:
		return shapeDeferred
	case result.Failable:
		return shapeResult
	default:
		return shapePlain
	}
}

// typedFailure builds a value of T holding err. It reports false when T is
// neither a Result nor an *Async.
func typedFailure[T any](err result.TaggedError) (T, bool) {
	var zero T
	switch s := any(zero).(type) {
	case result.Deferred:
		return s.WithFailure(err).(T), true
	case result.Failable:
		return s.WithFailure(err).(T), true
	default:
		return zero, false
	}
}
