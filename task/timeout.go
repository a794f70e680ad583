package task

import (
	"context"
	"errors"
	"time"

	"github.com/baxromumarov/taskkit/duration"
)

// ErrTimeout matches every timeout raised by [Timeout], in both shapes.
var ErrTimeout = errors.New("task: timeout")

// TimeoutError is returned by [Timeout] when the deadline passes first and
// UseResult is false. It is also the cause of the attempt's context.
type TimeoutError struct {
	Timeout duration.Duration
}

func (e *TimeoutError) Error() string {
	return "Task has timeout after " + e.Timeout.String()
}

// Is makes errors.Is(err, ErrTimeout) hold.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// TimeoutFailure is the typed failure produced when UseResult is true.
type TimeoutFailure struct {
	Timeout duration.Duration
}

// Type returns "timeout".
func (f *TimeoutFailure) Type() string { return "timeout" }

func (f *TimeoutFailure) Error() string {
	return "Task has timeout after " + f.Timeout.String()
}

// Is makes errors.Is(err, ErrTimeout) hold.
func (f *TimeoutFailure) Is(target error) bool {
	return target == ErrTimeout
}

// TimeoutOptions configures [Timeout] and [WithTimeout].
type TimeoutOptions struct {
	// Timeout must be positive.
	Timeout duration.Duration

	// UseResult reports a timeout as a typed failure instead of a returned
	// error. It must be set exactly when the task returns a result.Result
	// or a *result.Async.
	UseResult bool
}

// Timeout runs t and stops waiting for it once opts.Timeout has passed.
//
// On expiry the attempt's context is cancelled with a [*TimeoutError]
// cause and t keeps running in the background; whatever it produces later
// is discarded. A task returning *result.Async is raced until the Async
// settles.
//
// Timeout panics if the timeout is not positive, or if UseResult does not
// match the result type T.
func Timeout[T any](ctx context.Context, t Task[T], opts TimeoutOptions) (T, error) {
	return WithTimeout[T](opts)(t)(ctx)
}

// WithTimeout is the task-last form of [Timeout], for use with [Pipe].
// Options are validated when WithTimeout is called.
func WithTimeout[T any](opts TimeoutOptions) Mapper[T, T] {
	if opts.Timeout.Std() <= 0 {
		panic("task: timeout must be positive (got " + opts.Timeout.String() + ")")
	}

	switch sh := resultShape[T](); {
	case opts.UseResult && sh == shapePlain:
		panic("task: UseResult requires a task returning result.Result or *result.Async")
	case !opts.UseResult && sh != shapePlain:
		panic("task: a task returning result.Result or *result.Async requires UseResult")
	}

	return func(t Task[T]) Task[T] {
		if t == nil {
			panic("task: Timeout requires a non-nil task")
		}
		return func(ctx context.Context) (T, error) {
			return runTimeout(ctx, t, opts)
		}
	}
}

// runTimeout resolves opts.Timeout against the start of this attempt, so
// calendar units keep their current length when a mapper is reused.
func runTimeout[T any](ctx context.Context, t Task[T], opts TimeoutOptions) (T, error) {
	wait := opts.Timeout.StdFrom(time.Now())

	attemptCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	// Buffered so the attempt can finish after the timer has won.
	ch := make(chan Outcome[T], 1)
	go func() {
		ch <- Attempt(attemptCtx, t)
	}()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case o := <-ch:
		return o.Unpack()
	case <-timer.C:
		terr := &TimeoutError{Timeout: opts.Timeout}
		cancel(terr)
		return expired[T](opts, terr)
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func expired[T any](opts TimeoutOptions, terr *TimeoutError) (T, error) {
	if opts.UseResult {
		if v, ok := typedFailure[T](&TimeoutFailure{Timeout: opts.Timeout}); ok {
			return v, nil
		}
	}
	var zero T
	return zero, terr
}
