package task

import (
	"context"

	"github.com/baxromumarov/taskkit/result"
)

// Task is a unit of schedulable work.
type Task[T any] func(ctx context.Context) (T, error)

// Mapper transforms one Task into another, layering behaviour such as
// retry or timeout.
type Mapper[I, O any] func(Task[I]) Task[O]

// Compose applies mappers to t left to right. Nil mappers are skipped,
// which makes it easy to include a stage conditionally.
func Compose[T any](t Task[T], mappers ...Mapper[T, T]) Task[T] {
	acc := t
	for _, m := range mappers {
		if m == nil {
			continue
		}
		acc = m(acc)
	}
	return acc
}

// Pipe composes t with mappers (see [Compose]) and runs the result.
//
//	pipe(t, m1, m2) == m2(m1(t))(ctx)
func Pipe[T any](ctx context.Context, t Task[T], mappers ...Mapper[T, T]) (T, error) {
	return Compose(t, mappers...)(ctx)
}

// Apply wraps t with a type-changing mapper. Use it to build pipelines
// whose stages change the value type:
//
//	sized := task.Apply(task.Apply(read, task.MapValue(parse)), task.MapValue(len))
//
// Apply panics if m is nil.
func Apply[I, O any](t Task[I], m Mapper[I, O]) Task[O] {
	if m == nil {
		panic("task: Apply requires a non-nil mapper")
	}
	return m(t)
}

// MapValue returns a Mapper that transforms the value of a successful task.
// Errors pass through untouched.
func MapValue[I, O any](f func(I) O) Mapper[I, O] {
	return func(t Task[I]) Task[O] {
		return func(ctx context.Context) (O, error) {
			v, err := t(ctx)
			if err != nil {
				var zero O
				return zero, err
			}
			return f(v), nil
		}
	}
}

// call runs t, converting a panic into a *result.PanicError.
func call[T any](ctx context.Context, t Task[T]) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = result.AsPanicError(p)
		}
	}()
	return t(ctx)
}
