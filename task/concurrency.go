package task

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidConcurrency is wrapped by [ParseConcurrency] errors.
var ErrInvalidConcurrency = errors.New("task: invalid concurrency")

type concurrencyKind int

const (
	kindLimit concurrencyKind = iota
	kindUnbounded
	kindBatches
)

const batchesPrefix = "batches-of-"

// Concurrency is the scheduling policy of [All].
//
// The zero value is invalid; build one with [Limit], [BatchesOf],
// [FromNumber], [ParseConcurrency] or use [Unbounded].
type Concurrency struct {
	kind concurrencyKind
	n    int
}

// Unbounded starts every task at once.
var Unbounded = Concurrency{kind: kindUnbounded}

// Limit runs at most n tasks at a time. Workers pull the next not-yet-started
// task as soon as they finish one.
// Limit panics if n is not positive.
func Limit(n int) Concurrency {
	c := Concurrency{kind: kindLimit, n: n}
	c.validate()
	return c
}

// BatchesOf splits the tasks into consecutive chunks of n. Each chunk runs
// unbounded and must settle completely before the next one starts.
// BatchesOf panics if n is not positive.
func BatchesOf(n int) Concurrency {
	c := Concurrency{kind: kindBatches, n: n}
	c.validate()
	return c
}

// FromNumber converts a numeric concurrency. +Inf maps to [Unbounded].
// FromNumber panics for zero, negative, fractional or NaN values.
func FromNumber(f float64) Concurrency {
	c, err := fromNumber(f)
	if err != nil {
		panic(err.Error())
	}
	return c
}

func fromNumber(f float64) (Concurrency, error) {
	if math.IsInf(f, 1) {
		return Unbounded, nil
	}
	if math.IsNaN(f) || f <= 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return Concurrency{}, fmt.Errorf("%w: concurrency must be a positive integer (got %v)", ErrInvalidConcurrency, f)
	}
	return Concurrency{kind: kindLimit, n: int(f)}, nil
}

// ParseConcurrency reads "4", "unbounded", "inf" or "batches-of-4".
func ParseConcurrency(s string) (Concurrency, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "unbounded", "inf", "infinity", "+inf":
		return Unbounded, nil
	}

	if rest, ok := strings.CutPrefix(s, batchesPrefix); ok {
		n, err := strconv.ParseFloat(rest, 64)
		if err != nil || math.IsNaN(n) || n <= 0 || n != math.Trunc(n) || math.IsInf(n, 0) || n > math.MaxInt32 {
			return Concurrency{}, fmt.Errorf("%w: batch size must be a positive integer (got %q)", ErrInvalidConcurrency, rest)
		}
		return Concurrency{kind: kindBatches, n: int(n)}, nil
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Concurrency{}, fmt.Errorf("%w: %q", ErrInvalidConcurrency, s)
	}
	return fromNumber(n)
}

// String renders c in the form accepted by [ParseConcurrency].
func (c Concurrency) String() string {
	switch c.kind {
	case kindUnbounded:
		return "unbounded"
	case kindBatches:
		return batchesPrefix + strconv.Itoa(c.n)
	default:
		return strconv.Itoa(c.n)
	}
}

// validate panics unless c is a usable policy.
func (c Concurrency) validate() {
	switch c.kind {
	case kindUnbounded:
		return
	case kindBatches:
		if c.n <= 0 {
			panic(fmt.Sprintf("task: batch size must be a positive integer (got %d)", c.n))
		}
	case kindLimit:
		if c.n <= 0 {
			panic(fmt.Sprintf("task: concurrency must be a positive integer (got %d)", c.n))
		}
	default:
		panic("task: unknown concurrency policy")
	}
}
