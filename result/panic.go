package result

import (
	"fmt"
	"runtime/debug"
)

// PanicError is the failure a guarded call reports when its function
// panics instead of returning.
//
// [Try], [MapTry] and [TryAsync] hand it to their Catch function. An
// [Async] whose [Go] function panics keeps it and raises it again from
// Wait and Result, so the panic reaches the waiting goroutine with its
// original stack. The task package returns it as the error of a task that
// panicked. Value is whatever was passed to panic; Stack is the trace of
// the panicking goroutine.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("recovered panic: %v", e.Value)
}

// Unwrap exposes a panic(err) value to errors.Is and errors.As.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// NewPanicError records v with the stack of the calling goroutine. Call it
// from the deferred function that recovered v.
func NewPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: string(debug.Stack())}
}

// AsPanicError converts a recovered value, reusing it when it already is a
// *PanicError so that re-panicking across layers keeps the first stack.
func AsPanicError(v any) *PanicError {
	if pe, ok := v.(*PanicError); ok {
		return pe
	}
	return NewPanicError(v)
}
