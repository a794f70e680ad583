// Package task composes units of asynchronous work.
//
// A [Task] is a function of a context returning a value and an error.
// A [Mapper] wraps a Task with added behaviour. The package provides
// three mappers and an executor:
//
//   - [All] and [AllMap] run a collection of tasks under a [Concurrency]
//     policy and return results in input order.
//   - [Retry] / [WithRetry] re-invoke a failing task with jittered
//     exponential backoff.
//   - [Timeout] / [WithTimeout] race a task against a deadline.
//   - [Pipe] stacks mappers left to right, skipping nil ones.
//
// # Failure shapes
//
// A task fails in one of two shapes:
//
//   - thrown: it returns a non-nil error, or panics (the panic is
//     recovered as a [*result.PanicError]);
//   - typed: it returns a [result.Result] whose value is Err, or a
//     [*result.Async] that settles to Err.
//
// Retry and Timeout classify every attempt into an [Outcome] and re-emit
// failures in the shape the task used: a thrown error stays a returned
// error, a typed failure stays a Result value.
//
//	v, err := task.Pipe(ctx, fetch,
//	    task.WithTimeout[Page](task.TimeoutOptions{Timeout: duration.Seconds(2)}),
//	    task.WithRetry[Page](task.RetryOptions{Times: 3, Delay: duration.Milliseconds(100)}),
//	)
//
// Here each attempt is subject to the two second timeout and a timeout
// triggers a retry.
//
// # Cancellation
//
// There is no preemption. [All] stops starting new tasks after the first
// failure but lets in-flight tasks run to completion and discards their
// results; it never cancels the context it hands to them. [Timeout] stops
// waiting when the deadline passes and cancels the attempt's context with
// a [*TimeoutError] cause so cooperative tasks can stop early.
//
// # Programmer errors
//
// Invalid configuration (non-positive concurrency, negative retry count,
// non-positive timeout, an inconsistent UseResult flag) panics
// immediately, before any task runs.
package task
