package random

import (
	"fmt"
	"math"
	"sync"
)

// Fixed is a scripted [Source] for tests. Each call consumes the next value
// of the sequence given to [NewFixed]. It panics when the sequence is
// exhausted or when a value does not fit the requested method or range.
type Fixed struct {
	mu       sync.Mutex
	sequence []any
	index    int
}

// NewFixed returns a [Fixed] source that replays values in order.
// Values are float64 for Next and NextNumber, int for NextInteger and
// bool for NextBoolean.
func NewFixed(values ...any) *Fixed {
	return &Fixed{sequence: values}
}

// Remaining returns how many scripted values have not been consumed.
func (f *Fixed) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sequence) - f.index
}

func (f *Fixed) take(method string) any {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.index >= len(f.sequence) {
		panic(fmt.Sprintf("random: Fixed.%s sequence is exhausted", method))
	}
	v := f.sequence[f.index]
	f.index++
	return v
}

func (f *Fixed) takeNumber(method string) float64 {
	v := f.take(method)
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		panic(fmt.Sprintf("random: Fixed.%s expected number, got: %v", method, v))
	}
	return n
}

// Next implements [Source].
func (f *Fixed) Next() float64 {
	v := f.takeNumber("Next")
	if v < 0 || v >= 1 {
		panic(fmt.Sprintf("random: Fixed.Next expected number in range [0, 1), got: %v", v))
	}
	return v
}

// NextNumber implements [Source].
func (f *Fixed) NextNumber(min, max float64) float64 {
	checkNumberRange(min, max)

	v := f.takeNumber("NextNumber")
	if v < min || v >= max {
		panic(fmt.Sprintf("random: Fixed.NextNumber expected number in range [%v, %v), got: %v", min, max, v))
	}
	return v
}

// NextInteger implements [Source].
func (f *Fixed) NextInteger(min, max int) int {
	checkIntegerRange(min, max)

	v := f.take("NextInteger")
	n, ok := v.(int)
	if !ok {
		panic(fmt.Sprintf("random: Fixed.NextInteger expected integer, got: %v", v))
	}
	if n < min || n > max {
		panic(fmt.Sprintf("random: Fixed.NextInteger expected integer in range [%d, %d], got: %d", min, max, n))
	}
	return n
}

// NextBoolean implements [Source].
func (f *Fixed) NextBoolean() bool {
	v := f.take("NextBoolean")
	b, ok := v.(bool)
	if !ok {
		panic(fmt.Sprintf("random: Fixed.NextBoolean expected boolean, got: %v", v))
	}
	return b
}
