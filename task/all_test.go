package task

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/taskkit/result"
)

func mustPanic(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		require.Contains(t, fmt.Sprint(r), contains)
	}()
	fn()
}

// recorder is a concurrency-safe event log.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func sleepy(rec *recorder, i int, d time.Duration) Task[int] {
	return func(ctx context.Context) (int, error) {
		rec.add("start %d", i)
		time.Sleep(d)
		rec.add("end %d", i)
		return i, nil
	}
}

func TestAllPreservesInputOrder(t *testing.T) {
	rec := &recorder{}
	tasks := []Task[int]{
		sleepy(rec, 0, 30*time.Millisecond),
		sleepy(rec, 1, 5*time.Millisecond),
		sleepy(rec, 2, 15*time.Millisecond),
	}

	got, err := All(context.Background(), tasks, Limit(2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)

	var ends []string
	for _, e := range rec.snapshot() {
		if e[:3] == "end" {
			ends = append(ends, e)
		}
	}
	assert.Equal(t, []string{"end 1", "end 2", "end 0"}, ends, "completion order differs from input order")
}

func TestAllLimitStartsNextWhenSlotFrees(t *testing.T) {
	rec := &recorder{}
	tasks := []Task[int]{
		sleepy(rec, 0, 30*time.Millisecond),
		sleepy(rec, 1, 5*time.Millisecond),
		sleepy(rec, 2, 15*time.Millisecond),
	}

	_, err := All(context.Background(), tasks, Limit(2))
	require.NoError(t, err)

	events := rec.snapshot()
	assert.Less(t, slices.Index(events, "end 1"), slices.Index(events, "start 2"),
		"task 2 should start only after a slot frees")
	assert.Less(t, slices.Index(events, "start 2"), slices.Index(events, "end 0"),
		"task 2 should not wait for task 0")
}

func TestAllLimitBoundsConcurrency(t *testing.T) {
	const limit = 3

	var active, maxActive atomic.Int32
	tasks := make([]Task[int], 20)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (int, error) {
			cur := active.Add(1)
			for {
				old := maxActive.Load()
				if cur <= old || maxActive.CompareAndSwap(old, cur) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
			return i, nil
		}
	}

	got, err := All(context.Background(), tasks, Limit(limit))
	require.NoError(t, err)
	assert.Len(t, got, 20)
	assert.LessOrEqual(t, maxActive.Load(), int32(limit))
}

func TestAllUnboundedStartsEverything(t *testing.T) {
	const n = 8

	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})
	go func() {
		started.Wait()
		close(release)
	}()

	tasks := make([]Task[int], n)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (int, error) {
			started.Done()
			select {
			case <-release:
				return i * i, nil
			case <-time.After(time.Second):
				return 0, errors.New("not every task was started")
			}
		}
	}

	got, err := All(context.Background(), tasks, Unbounded)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4, 9, 16, 25, 36, 49}, got)
}

func TestAllBatchesWaitForWholeBatch(t *testing.T) {
	rec := &recorder{}
	tasks := []Task[int]{
		sleepy(rec, 0, 30*time.Millisecond),
		sleepy(rec, 1, 5*time.Millisecond),
		sleepy(rec, 2, 15*time.Millisecond),
	}

	got, err := All(context.Background(), tasks, BatchesOf(2))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)

	events := rec.snapshot()
	assert.Less(t, slices.Index(events, "end 0"), slices.Index(events, "start 2"),
		"second batch must wait for the slowest task of the first batch")
	assert.Less(t, slices.Index(events, "end 1"), slices.Index(events, "start 2"))
}

func TestAllBatchesStopAfterFailedBatch(t *testing.T) {
	boom := errors.New("boom")
	var ran atomic.Int32
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { ran.Add(1); return 0, boom },
		func(ctx context.Context) (int, error) { ran.Add(1); return 1, nil },
		func(ctx context.Context) (int, error) { ran.Add(1); return 2, nil },
	}

	_, err := All(context.Background(), tasks, BatchesOf(2))
	require.ErrorIs(t, err, boom)

	// Let the first batch's sibling finish before counting.
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(2), ran.Load(), "the second batch must never start")
}

func TestAllFailsFastWithoutCancelling(t *testing.T) {
	boom := errors.New("boom")
	var finished atomic.Bool
	var taskCtx atomic.Value

	tasks := []Task[int]{
		func(ctx context.Context) (int, error) {
			time.Sleep(5 * time.Millisecond)
			return 0, boom
		},
		func(ctx context.Context) (int, error) {
			taskCtx.Store(ctx)
			time.Sleep(100 * time.Millisecond)
			finished.Store(true)
			return 1, nil
		},
	}

	start := time.Now()
	got, err := All(context.Background(), tasks, Limit(2))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Equal(t, boom, err, "the failure must be returned unwrapped")
	assert.Nil(t, got)
	assert.Less(t, elapsed, 80*time.Millisecond, "All should not wait for in-flight tasks")
	assert.False(t, finished.Load())

	assert.Eventually(t, finished.Load, time.Second, 5*time.Millisecond,
		"in-flight task should keep running to completion")
	ctx, _ := taskCtx.Load().(context.Context)
	require.NotNil(t, ctx)
	assert.NoError(t, ctx.Err(), "in-flight task context must not be cancelled")
}

func TestAllStopsStartingAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	var started atomic.Int32

	tasks := make([]Task[int], 5)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (int, error) {
			started.Add(1)
			if i == 0 {
				return 0, boom
			}
			return i, nil
		}
	}

	_, err := All(context.Background(), tasks, Limit(1))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), started.Load())
}

func TestAllRecoversPanics(t *testing.T) {
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { panic("kaboom") },
	}

	_, err := All(context.Background(), tasks, Limit(1))
	var pe *result.PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)
}

func TestAllEmpty(t *testing.T) {
	for _, c := range []Concurrency{Limit(2), Unbounded, BatchesOf(3)} {
		got, err := All[int](context.Background(), nil, c)
		require.NoError(t, err)
		assert.NotNil(t, got, c.String())
		assert.Empty(t, got, c.String())
	}
}

func TestAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { ran.Store(true); return 1, nil },
	}

	_, err := All(ctx, tasks, Limit(1))
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())
}

func TestAllHooks(t *testing.T) {
	var starts, dones atomic.Int32
	var failedIndex atomic.Int32
	failedIndex.Store(-1)
	boom := errors.New("boom")

	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { return 0, nil },
		func(ctx context.Context) (int, error) { return 0, nil },
		func(ctx context.Context) (int, error) { return 0, boom },
	}

	_, err := All(context.Background(), tasks, BatchesOf(2),
		WithOnStart(func(int) { starts.Add(1) }),
		WithOnDone(func(i int, err error, elapsed time.Duration) {
			dones.Add(1)
			if err != nil {
				failedIndex.Store(int32(i))
			}
			assert.GreaterOrEqual(t, elapsed, time.Duration(0))
		}),
	)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), starts.Load())
	assert.Equal(t, int32(3), dones.Load())
	assert.Equal(t, int32(2), failedIndex.Load(), "hook index is relative to the full input")
}

func TestAllMapPreservesKeys(t *testing.T) {
	tasks := map[string]Task[int]{
		"one":   func(ctx context.Context) (int, error) { return 1, nil },
		"two":   func(ctx context.Context) (int, error) { time.Sleep(5 * time.Millisecond); return 2, nil },
		"three": func(ctx context.Context) (int, error) { return 3, nil },
	}

	got, err := AllMap(context.Background(), tasks, Limit(2))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"one": 1, "two": 2, "three": 3}, got)
}

func TestAllMapFailure(t *testing.T) {
	boom := errors.New("boom")
	tasks := map[string]Task[int]{
		"ok":  func(ctx context.Context) (int, error) { return 1, nil },
		"bad": func(ctx context.Context) (int, error) { return 0, boom },
	}

	got, err := AllMap(context.Background(), tasks, Unbounded)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestConcurrencyValidation(t *testing.T) {
	mustPanic(t, "concurrency must be a positive integer (got 0)", func() { Limit(0) })
	mustPanic(t, "concurrency must be a positive integer (got -1)", func() { Limit(-1) })
	mustPanic(t, "batch size must be a positive integer (got 0)", func() { BatchesOf(0) })
	mustPanic(t, "positive integer (got NaN)", func() { FromNumber(math.NaN()) })
	mustPanic(t, "positive integer (got 5.5)", func() { FromNumber(5.5) })
	mustPanic(t, "positive integer (got 0)", func() { FromNumber(0) })
	mustPanic(t, "positive integer (got -1)", func() { FromNumber(-1) })

	assert.Equal(t, Unbounded, FromNumber(math.Inf(1)))
	assert.Equal(t, Limit(4), FromNumber(4))
}

func TestAllValidatesBeforeRunning(t *testing.T) {
	var ran atomic.Bool
	tasks := []Task[int]{
		func(ctx context.Context) (int, error) { ran.Store(true); return 1, nil },
	}

	mustPanic(t, "(got 0)", func() {
		_, _ = All(context.Background(), tasks, Concurrency{})
	})
	mustPanic(t, "(got 0)", func() {
		_, _ = All[int](context.Background(), nil, Concurrency{})
	})
	assert.False(t, ran.Load())
}

func TestParseConcurrency(t *testing.T) {
	valid := map[string]Concurrency{
		"4":            Limit(4),
		" 12 ":         Limit(12),
		"unbounded":    Unbounded,
		"Infinity":     Unbounded,
		"inf":          Unbounded,
		"batches-of-3": BatchesOf(3),
	}
	for in, want := range valid {
		got, err := ParseConcurrency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)

		again, err := ParseConcurrency(got.String())
		require.NoError(t, err)
		assert.Equal(t, got, again, "String must round-trip")
	}

	for _, in := range []string{"0", "-1", "NaN", "5.5", "batches-of-0", "batches-of-2.5", "batches-of-", "many", ""} {
		_, err := ParseConcurrency(in)
		assert.ErrorIs(t, err, ErrInvalidConcurrency, in)
	}
}
