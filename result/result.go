// Package result provides a two-variant success/failure container used as
// the error-propagation currency of taskkit.
//
// A [Result] is either Ok, carrying a value, or Err, carrying a
// [TaggedError]: an error with a Type discriminant that callers can switch
// on. Results are immutable. Chaining functions ([AndThen], [Map],
// [MapTry], [MapErr]) short-circuit on Err without invoking the mapper:
//
//	r := result.AndThen(parsePort(s), func(p int) result.Result[*Listener] {
//	    return listen(p)
//	})
//
// [Async] is the deferred counterpart: a Result computed in the background
// and observed via [Async.Wait] or [Async.Result].
//
// Nothing in this package logs or swallows a failure. Every failure is
// either an Err value the caller must inspect, or a panic carrying the
// original [TaggedError] when [Result.Unwrap] is misused.
package result

import "fmt"

// TaggedError is a failure value carrying a discriminant. Type returns a
// stable identifier such as "timeout" or "fs/file-not-found".
type TaggedError interface {
	error
	Type() string
}

// Void is the value type of a Result that carries no value.
type Void = struct{}

// Result holds either a value (Ok) or a [TaggedError] (Err).
//
// The zero value is Ok with the zero value of V.
type Result[V any] struct {
	value V
	err   TaggedError
}

// Ok constructs a successful Result.
func Ok[V any](value V) Result[V] {
	return Result[V]{value: value}
}

// OkVoid constructs a successful Result that carries no value.
func OkVoid() Result[Void] {
	return Result[Void]{}
}

// Err constructs a failed Result. It panics if err is nil.
func Err[V any](err TaggedError) Result[V] {
	if err == nil {
		panic("result: Err requires a non-nil error")
	}
	return Result[V]{err: err}
}

// IsOk reports whether r is Ok.
func (r Result[V]) IsOk() bool { return r.err == nil }

// IsErr reports whether r is Err.
func (r Result[V]) IsErr() bool { return r.err != nil }

// Value returns the Ok value, or the zero value of V for Err.
func (r Result[V]) Value() V { return r.value }

// Failure returns the Err value, or nil for Ok.
func (r Result[V]) Failure() TaggedError { return r.err }

// Get returns the value and the failure as a pair.
func (r Result[V]) Get() (V, TaggedError) { return r.value, r.err }

// ToError converts r to Go's (value, error) convention. The returned error
// is a nil interface for Ok.
func (r Result[V]) ToError() (V, error) {
	if r.err != nil {
		return r.value, r.err
	}
	return r.value, nil
}

// Unwrap returns the Ok value. On Err it panics with the wrapped
// [TaggedError] itself, so a recover can inspect the original failure.
func (r Result[V]) Unwrap() V {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}

// UnwrapOr returns the Ok value, or fallback on Err.
func (r Result[V]) UnwrapOr(fallback V) V {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// String renders r as Ok(value) or Err(type: message).
func (r Result[V]) String() string {
	if r.err != nil {
		return fmt.Sprintf("Err(%s: %v)", r.err.Type(), r.err)
	}
	return fmt.Sprintf("Ok(%v)", r.value)
}

// WithFailure returns an Err of the same type as r. It implements
// [Failable] so that generic wrappers can build a failure without knowing V.
func (r Result[V]) WithFailure(err TaggedError) Failable {
	return Err[V](err)
}

// Failable is implemented by [Result]. Generic task wrappers use it to
// recognise a typed failure and to rebuild one in the caller's shape.
type Failable interface {
	IsErr() bool
	Failure() TaggedError
	WithFailure(err TaggedError) Failable
}

// Catch converts a failure raised by a guarded function (a returned error
// or a recovered panic, see [PanicError]) into a Result. Returning an Err
// records a new failure; returning an Ok recovers from it.
type Catch[V any] func(cause error) Result[V]

// CatchAs adapts a function producing a [TaggedError] into a [Catch]
// that always records an Err.
func CatchAs[V any](fn func(cause error) TaggedError) Catch[V] {
	return func(cause error) Result[V] {
		return Err[V](fn(cause))
	}
}

// AndThen returns f(value) for Ok and r's failure unchanged for Err.
// f is never invoked for Err.
func AndThen[V, V2 any](r Result[V], f func(V) Result[V2]) Result[V2] {
	if r.err != nil {
		return Result[V2]{err: r.err}
	}
	return f(r.value)
}

// Map applies f to the Ok value and wraps the output in Ok.
func Map[V, V2 any](r Result[V], f func(V) V2) Result[V2] {
	if r.err != nil {
		return Result[V2]{err: r.err}
	}
	return Ok(f(r.value))
}

// MapErr rewrites the failure of an Err. Ok passes through.
func MapErr[V any](r Result[V], f func(TaggedError) TaggedError) Result[V] {
	if r.err == nil {
		return r
	}
	return Err[V](f(r.err))
}

// MapTry applies f to the Ok value. If f returns an error or panics, the
// cause is handed to catch and its Result is returned.
func MapTry[V, V2 any](r Result[V], f func(V) (V2, error), catch Catch[V2]) Result[V2] {
	if r.err != nil {
		return Result[V2]{err: r.err}
	}
	return Try(func() (V2, error) { return f(r.value) }, catch)
}

// Try calls fn and converts its outcome into a Result. A returned error or
// a panic is handed to catch.
func Try[V any](fn func() (V, error), catch Catch[V]) (out Result[V]) {
	defer func() {
		if p := recover(); p != nil {
			out = catch(NewPanicError(p))
		}
	}()

	v, err := fn()
	if err != nil {
		return catch(err)
	}
	return Ok(v)
}
