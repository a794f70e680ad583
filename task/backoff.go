package task

import (
	"fmt"
	"math"

	"github.com/sethvargo/go-retry"

	"github.com/baxromumarov/taskkit/duration"
	"github.com/baxromumarov/taskkit/random"
)

// DelayPolicy returns how long to wait before the retry that follows the
// given 0-based failed attempt.
type DelayPolicy func(attempt int) duration.Duration

// ExponentialBackoff doubles base on every attempt: attempt k waits
// base * 2^k. Every unit of base is scaled and rounded on its own.
func ExponentialBackoff(base duration.Duration) DelayPolicy {
	return func(attempt int) duration.Duration {
		return base.Multiply(math.Pow(2, float64(attempt)))
	}
}

// Constant waits d before every retry.
func Constant(d duration.Duration) DelayPolicy {
	return func(int) duration.Duration { return d }
}

// Jitter is a multiplicative factor range [MinFactor, MaxFactor).
// The zero value means [0, 1).
type Jitter struct {
	MinFactor float64
	MaxFactor float64
}

// DefaultJitter is the range used when none is configured.
var DefaultJitter = Jitter{MinFactor: 0, MaxFactor: 1}

func (j Jitter) normalize() Jitter {
	if j == (Jitter{}) {
		return DefaultJitter
	}
	return j
}

func (j Jitter) validate() {
	bad := math.IsNaN(j.MinFactor) || math.IsNaN(j.MaxFactor) ||
		math.IsInf(j.MinFactor, 0) || math.IsInf(j.MaxFactor, 0) ||
		j.MinFactor < 0 || j.MaxFactor < j.MinFactor
	if bad {
		panic(fmt.Sprintf("task: invalid jitter range: min=%v max=%v", j.MinFactor, j.MaxFactor))
	}
}

// JitteredPolicy scales every delay of base by a factor drawn from src in
// the range of j. A new factor is drawn on every call.
//
// JitteredPolicy panics if the range is negative, inverted or not finite.
func JitteredPolicy(base DelayPolicy, j Jitter, src random.Source) DelayPolicy {
	if base == nil {
		panic("task: JitteredPolicy requires a base policy")
	}
	if src == nil {
		panic("task: JitteredPolicy requires a random source")
	}
	j = j.normalize()
	j.validate()

	return func(attempt int) duration.Duration {
		factor := j.MinFactor
		if j.MaxFactor > j.MinFactor {
			factor = src.NextNumber(j.MinFactor, j.MaxFactor)
		}
		return base(attempt).Multiply(factor)
	}
}

// FromBackoff adapts a github.com/sethvargo/go-retry backoff. newBackoff is
// called for every delay so the policy holds no state between calls and may
// be shared across concurrent retries. Once the backoff reports stop, the
// last delay it produced is repeated; the attempt budget is governed by
// [RetryOptions.Times].
//
//	policy := task.FromBackoff(func() retry.Backoff {
//	    return retry.WithCappedDuration(time.Second, retry.NewExponential(10*time.Millisecond))
//	})
func FromBackoff(newBackoff func() retry.Backoff) DelayPolicy {
	if newBackoff == nil {
		panic("task: FromBackoff requires a backoff factory")
	}
	return func(attempt int) duration.Duration {
		b := newBackoff()
		var last duration.Duration
		for range attempt + 1 {
			next, stop := b.Next()
			if stop {
				break
			}
			last = duration.FromStd(next)
		}
		return last
	}
}
