package task

import (
	"context"
	"sync"
	"time"
)

// All runs tasks under the policy c and returns their values in input
// order, regardless of completion order.
//
// The first task to fail makes All return that same error immediately.
// Tasks already running are not cancelled: they run to completion in the
// background and their values are discarded. No new task starts after a
// failure, or after ctx is done (All then returns ctx.Err()).
//
// A task that panics fails with a [*result.PanicError].
//
// All panics if c is not a valid policy; this happens before any task
// runs, even when tasks is empty.
//
//	pages, err := task.All(ctx, fetches, task.Limit(4))
func All[T any](ctx context.Context, tasks []Task[T], c Concurrency, opts ...AllOption) ([]T, error) {
	c.validate()

	cfg := allConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch c.kind {
	case kindUnbounded:
		return execute(ctx, tasks, len(tasks), 0, cfg)
	case kindBatches:
		results := make([]T, 0, len(tasks))
		for start := 0; start < len(tasks); start += c.n {
			end := min(start+c.n, len(tasks))
			part, err := execute(ctx, tasks[start:end], end-start, start, cfg)
			if err != nil {
				return nil, err
			}
			results = append(results, part...)
		}
		return results, nil
	default:
		return execute(ctx, tasks, c.n, 0, cfg)
	}
}

// AllMap runs a keyed set of tasks and returns a map with the same keys.
// It behaves like [All]; the start order under a [Limit] follows Go's map
// iteration order.
func AllMap[K comparable, T any](ctx context.Context, tasks map[K]Task[T], c Concurrency, opts ...AllOption) (map[K]T, error) {
	c.validate()

	keys := make([]K, 0, len(tasks))
	list := make([]Task[T], 0, len(tasks))
	for k, t := range tasks {
		keys = append(keys, k)
		list = append(list, t)
	}

	values, err := All(ctx, list, c, opts...)
	if err != nil {
		return nil, err
	}

	out := make(map[K]T, len(keys))
	for i, k := range keys {
		out[k] = values[i]
	}
	return out, nil
}

// execution is the state of one bounded run. It is never shared between
// calls.
type execution[T any] struct {
	tasks   []Task[T]
	results []T
	offset  int // index of tasks[0] in the caller's slice, for hooks
	cfg     allConfig

	mu        sync.Mutex
	next      int
	cancelled bool

	failed chan error
}

// execute runs tasks with min(workers, len(tasks)) workers sharing a cursor.
func execute[T any](ctx context.Context, tasks []Task[T], workers, offset int, cfg allConfig) ([]T, error) {
	if len(tasks) == 0 {
		return []T{}, nil
	}

	e := &execution[T]{
		tasks:   tasks,
		results: make([]T, len(tasks)),
		offset:  offset,
		cfg:     cfg,
		failed:  make(chan error, 1),
	}

	workers = min(workers, len(tasks))
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			e.work(ctx)
		}()
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case err := <-e.failed:
		return nil, err
	case <-done:
		// A failing worker reports before it exits, so a failure is
		// always visible once every worker is done.
		select {
		case err := <-e.failed:
			return nil, err
		default:
		}
		return e.results, nil
	}
}

func (e *execution[T]) work(ctx context.Context) {
	for {
		i, ok := e.claim(ctx)
		if !ok {
			return
		}

		if e.cfg.onStart != nil {
			e.cfg.onStart(e.offset + i)
		}
		start := time.Now()
		v, err := call(ctx, e.tasks[i])
		if e.cfg.onDone != nil {
			e.cfg.onDone(e.offset+i, err, time.Since(start))
		}

		if err != nil {
			e.fail(err)
			return
		}
		e.results[i] = v // safe: each index is claimed by exactly one worker
	}
}

// claim returns the next task index to run, or false once the run is
// cancelled or exhausted.
func (e *execution[T]) claim(ctx context.Context) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cancelled || e.next >= len(e.tasks) {
		return 0, false
	}
	if err := ctx.Err(); err != nil {
		e.cancelLocked(err)
		return 0, false
	}

	i := e.next
	e.next++
	return i, true
}

func (e *execution[T]) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelLocked(err)
}

// cancelLocked stops further scheduling and reports err if it is the
// first failure. Later failures are dropped.
func (e *execution[T]) cancelLocked(err error) {
	e.cancelled = true
	select {
	case e.failed <- err:
	default:
	}
}
