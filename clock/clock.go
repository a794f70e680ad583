// Package clock abstracts the current time and sleeping so that code
// built on them can be driven deterministically in tests.
package clock

import (
	"context"
	"sync"
	"time"

	"github.com/baxromumarov/taskkit/duration"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Real is a [Clock] reading the system time.
type Real struct{}

// Now implements [Clock].
func (Real) Now() time.Time { return time.Now() }

// Test is a manually driven [Clock]. It is safe for concurrent use.
type Test struct {
	mu  sync.Mutex
	now time.Time
}

// NewTest returns a [Test] clock frozen at now.
func NewTest(now time.Time) *Test {
	return &Test{now: now}
}

// Now implements [Clock].
func (c *Test) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Test) Advance(d duration.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d.StdFrom(c.now))
}

// Reset sets the clock to now.
func (c *Test) Reset(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Sleep blocks for d or until ctx is done, whichever comes first.
// It returns ctx.Err() if the context ended the wait.
func Sleep(ctx context.Context, d duration.Duration) error {
	wait := d.Std()
	if wait <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
