package task

import "time"

type allConfig struct {
	onStart func(index int)
	onDone  func(index int, err error, elapsed time.Duration)
}

// AllOption configures [All] and [AllMap].
type AllOption func(*allConfig)

// WithOnStart registers a hook invoked when a task begins executing.
// The hook runs inside the worker goroutine before the task function.
func WithOnStart(fn func(index int)) AllOption {
	return func(c *allConfig) {
		c.onStart = fn
	}
}

// WithOnDone registers a hook invoked when a task finishes, including tasks
// that finish after [All] has already returned a failure.
// The hook receives the task's error (nil on success) and wall-clock duration.
func WithOnDone(fn func(index int, err error, elapsed time.Duration)) AllOption {
	return func(c *allConfig) {
		c.onDone = fn
	}
}
