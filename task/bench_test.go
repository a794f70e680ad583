package task_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/baxromumarov/taskkit/task"
)

func noop(context.Context) (int, error) { return 0, nil }

func tasksOf(n int) []task.Task[int] {
	ts := make([]task.Task[int], n)
	for i := range ts {
		ts[i] = noop
	}
	return ts
}

func taskCountName(n int) string {
	return fmt.Sprintf("tasks=%d", n)
}

// BenchmarkAllUnbounded measures the overhead of running N tasks that do
// nothing with one goroutine each.
func BenchmarkAllUnbounded(b *testing.B) {
	for _, n := range []int{1, 10, 100, 1000} {
		b.Run(taskCountName(n), func(b *testing.B) {
			ts := tasksOf(n)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = task.All(context.Background(), ts, task.Unbounded)
			}
		})
	}
}

// BenchmarkAllLimit measures the shared-cursor worker pool.
func BenchmarkAllLimit(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(taskCountName(n), func(b *testing.B) {
			ts := tasksOf(n)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = task.All(context.Background(), ts, task.Limit(10))
			}
		})
	}
}

// BenchmarkAllBatches measures batch-by-batch execution.
func BenchmarkAllBatches(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(taskCountName(n), func(b *testing.B) {
			ts := tasksOf(n)
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = task.All(context.Background(), ts, task.BatchesOf(10))
			}
		})
	}
}

// BenchmarkRawGoroutineWaitGroup is the baseline: raw go + sync.WaitGroup.
func BenchmarkRawGoroutineWaitGroup(b *testing.B) {
	for _, n := range []int{1, 10, 100, 1000} {
		b.Run(taskCountName(n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				results := make([]int, n)
				var wg sync.WaitGroup
				for j := 0; j < n; j++ {
					wg.Add(1)
					go func() {
						defer wg.Done()
						results[j], _ = noop(context.Background())
					}()
				}
				wg.Wait()
			}
		})
	}
}

// BenchmarkPipe measures the cost of stacking mappers on a task that
// succeeds immediately.
func BenchmarkPipe(b *testing.B) {
	retry := task.WithRetry[int](task.RetryOptions{Times: 3})
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = task.Pipe(context.Background(), noop, retry)
	}
}
