package task

import (
	"context"
	"fmt"

	"github.com/baxromumarov/taskkit/clock"
	"github.com/baxromumarov/taskkit/duration"
	"github.com/baxromumarov/taskkit/random"
)

// RetryOptions configures [Retry] and [WithRetry].
type RetryOptions struct {
	// Times is the number of retries after the first attempt, so a task
	// runs at most Times+1 times. Negative values panic.
	Times int

	// Delay is the base of the default policy: exponential backoff
	// (Delay * 2^attempt) scaled by a jitter factor drawn per attempt.
	Delay duration.Duration

	// Jitter is the factor range of the default policy. The zero value
	// means [0, 1).
	Jitter Jitter

	// Policy replaces the default policy. Delay and Jitter are ignored
	// when it is set.
	Policy DelayPolicy

	// Until is called with every failure before retrying. Returning false
	// stops and surfaces that failure. The failure is either the thrown
	// error or the TaggedError of a typed failure.
	Until func(failure error) bool

	// OnRetry observes each retry just before its delay starts.
	OnRetry func(RetryEvent)
}

// RetryEvent describes a retry that is about to happen.
type RetryEvent struct {
	// Attempt is the 1-based number of the attempt that failed.
	Attempt int
	Failure error
	Delay   duration.Duration
}

// RetryOption replaces a dependency of the retry engine, typically in
// tests.
type RetryOption func(*retryDeps)

type retryDeps struct {
	random random.Source
	sleep  func(ctx context.Context, d duration.Duration) error
}

// WithRandom sets the jitter source. The default is [random.NewReal].
func WithRandom(src random.Source) RetryOption {
	return func(d *retryDeps) {
		d.random = src
	}
}

// WithSleep sets the function used to wait between attempts. The default
// is [clock.Sleep].
func WithSleep(sleep func(ctx context.Context, d duration.Duration) error) RetryOption {
	return func(d *retryDeps) {
		d.sleep = sleep
	}
}

type retrier struct {
	times   int
	policy  DelayPolicy
	until   func(error) bool
	onRetry func(RetryEvent)
	sleep   func(context.Context, duration.Duration) error
}

func newRetrier(opts RetryOptions, options []RetryOption) *retrier {
	if opts.Times < 0 {
		panic(fmt.Sprintf("task: retry times must not be negative (got %d)", opts.Times))
	}

	deps := retryDeps{}
	for _, o := range options {
		o(&deps)
	}
	if deps.random == nil {
		deps.random = random.NewReal()
	}
	if deps.sleep == nil {
		deps.sleep = clock.Sleep
	}

	policy := opts.Policy
	if policy == nil {
		policy = JitteredPolicy(ExponentialBackoff(opts.Delay), opts.Jitter, deps.random)
	}

	return &retrier{
		times:   opts.Times,
		policy:  policy,
		until:   opts.Until,
		onRetry: opts.OnRetry,
		sleep:   deps.sleep,
	}
}

// Retry runs t and re-runs it after each failure, waiting between attempts
// according to the delay policy.
//
// Both failure shapes are retried: a returned error or panic, and a Result
// or Async settling to Err. After a failure, Until is consulted first, then
// the Times budget. When either says stop, the last failure is surfaced in
// the shape the task used and without wrapping: a thrown error is returned
// as is, a typed failure is returned as the task's own value with a nil
// error.
//
// If ctx ends while waiting between attempts, Retry returns ctx.Err().
func Retry[T any](ctx context.Context, t Task[T], opts RetryOptions, deps ...RetryOption) (T, error) {
	return WithRetry[T](opts, deps...)(t)(ctx)
}

// WithRetry is the task-last form of [Retry], for use with [Pipe].
// Options are validated when WithRetry is called.
func WithRetry[T any](opts RetryOptions, deps ...RetryOption) Mapper[T, T] {
	r := newRetrier(opts, deps)
	return func(t Task[T]) Task[T] {
		if t == nil {
			panic("task: Retry requires a non-nil task")
		}
		return func(ctx context.Context) (T, error) {
			return runRetry(ctx, r, t)
		}
	}
}

func runRetry[T any](ctx context.Context, r *retrier, t Task[T]) (T, error) {
	for attempt := 0; ; attempt++ {
		o := Attempt(ctx, t)
		if o.Kind == Success {
			return o.Value, nil
		}

		failure := o.Failure()
		if r.until != nil && !r.until(failure) {
			return o.Unpack()
		}
		if attempt >= r.times {
			return o.Unpack()
		}

		delay := r.policy(attempt)
		if r.onRetry != nil {
			r.onRetry(RetryEvent{Attempt: attempt + 1, Failure: failure, Delay: delay})
		}
		if err := r.sleep(ctx, delay); err != nil {
			var zero T
			return zero, err
		}
	}
}
