package result

import "context"

// Async is a [Result] computed in the background. It settles exactly once;
// every chaining function returns a new Async and leaves the receiver
// untouched.
//
// A panic inside the computation is captured as a [*PanicError] and
// re-raised by [Async.Wait] and [Async.Result].
type Async[V any] struct {
	done     chan struct{}
	res      Result[V]
	panicked *PanicError
}

// Deferred is implemented by [*Async]. Generic task wrappers use it to wait
// for a deferred Result and to rebuild a failure in the caller's shape
// without knowing the value type.
type Deferred interface {
	Done() <-chan struct{}
	Settled() Failable
	WithFailure(err TaggedError) Deferred
}

func newAsync[V any]() *Async[V] {
	return &Async[V]{done: make(chan struct{})}
}

// Go runs fn in a new goroutine and returns an Async settled with its
// Result.
//
//	a := result.Go(ctx, func(ctx context.Context) result.Result[User] {
//	    return repo.Load(ctx, id)
//	})
//	user := a.Result()
func Go[V any](ctx context.Context, fn func(ctx context.Context) Result[V]) *Async[V] {
	a := newAsync[V]()
	go func() {
		defer a.finish()
		a.res = fn(ctx)
	}()
	return a
}

// FromResult returns an already settled Async.
func FromResult[V any](r Result[V]) *Async[V] {
	a := newAsync[V]()
	a.res = r
	close(a.done)
	return a
}

// TryAsync runs fn in the background. A returned error or a panic is handed
// to catch, exactly as in [Try].
func TryAsync[V any](ctx context.Context, fn func(ctx context.Context) (V, error), catch Catch[V]) *Async[V] {
	return Go(ctx, func(ctx context.Context) Result[V] {
		return Try(func() (V, error) { return fn(ctx) }, catch)
	})
}

// finish records a panic, if any, and marks a as settled.
// It must be deferred by the goroutine computing a.
func (a *Async[V]) finish() {
	if p := recover(); p != nil {
		a.panicked = AsPanicError(p)
	}
	close(a.done)
}

// Done returns a channel that is closed once a has settled.
func (a *Async[V]) Done() <-chan struct{} {
	return a.done
}

// Wait blocks until a settles or ctx is done. It returns ctx.Err() if the
// context ended the wait; the computation itself keeps running.
func (a *Async[V]) Wait(ctx context.Context) (Result[V], error) {
	select {
	case <-a.done:
		return a.settled(), nil
	case <-ctx.Done():
		return Result[V]{}, ctx.Err()
	}
}

// Result blocks until a settles and returns its Result.
func (a *Async[V]) Result() Result[V] {
	<-a.done
	return a.settled()
}

func (a *Async[V]) settled() Result[V] {
	if a.panicked != nil {
		panic(a.panicked)
	}
	return a.res
}

// Settled blocks until a settles and returns its Result as a [Failable].
func (a *Async[V]) Settled() Failable {
	return a.Result()
}

// WithFailure returns a new, settled Async holding err. It does not read
// the receiver, so it may be called on a nil *Async.
func (a *Async[V]) WithFailure(err TaggedError) Deferred {
	return FromResult(Err[V](err))
}

// then settles a new Async with f applied to a's Result once a settles.
// A panic in a is propagated without invoking f.
func then[V, V2 any](a *Async[V], f func(Result[V]) Result[V2]) *Async[V2] {
	out := newAsync[V2]()
	go func() {
		defer out.finish()
		<-a.done
		if a.panicked != nil {
			out.panicked = a.panicked
			return
		}
		out.res = f(a.res)
	}()
	return out
}

// AndThenAsync chains a mapper returning a synchronous Result.
func AndThenAsync[V, V2 any](a *Async[V], f func(V) Result[V2]) *Async[V2] {
	return then(a, func(r Result[V]) Result[V2] {
		return AndThen(r, f)
	})
}

// FlatMapAsync chains a mapper returning another Async, flattening it.
func FlatMapAsync[V, V2 any](a *Async[V], f func(V) *Async[V2]) *Async[V2] {
	return then(a, func(r Result[V]) Result[V2] {
		if r.err != nil {
			return Result[V2]{err: r.err}
		}
		return f(r.value).Result()
	})
}

// MapAsync applies f to the Ok value once a settles.
func MapAsync[V, V2 any](a *Async[V], f func(V) V2) *Async[V2] {
	return then(a, func(r Result[V]) Result[V2] {
		return Map(r, f)
	})
}

// MapErrAsync rewrites the failure once a settles.
func MapErrAsync[V any](a *Async[V], f func(TaggedError) TaggedError) *Async[V] {
	return then(a, func(r Result[V]) Result[V] {
		return MapErr(r, f)
	})
}

// MapTryAsync is the deferred form of [MapTry].
func MapTryAsync[V, V2 any](a *Async[V], f func(V) (V2, error), catch Catch[V2]) *Async[V2] {
	return then(a, func(r Result[V]) Result[V2] {
		return MapTry(r, f, catch)
	})
}
