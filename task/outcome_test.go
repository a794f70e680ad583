package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/taskkit/result"
)

func TestAttemptClassifies(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	failure := &flakyFailure{}

	o := Attempt(ctx, func(ctx context.Context) (int, error) { return 3, nil })
	assert.Equal(t, Success, o.Kind)
	assert.Equal(t, 3, o.Value)
	assert.NoError(t, o.Failure())

	o = Attempt(ctx, func(ctx context.Context) (int, error) { return 0, boom })
	assert.Equal(t, Thrown, o.Kind)
	assert.Equal(t, boom, o.Failure())

	o = Attempt(ctx, func(ctx context.Context) (int, error) { panic(boom) })
	assert.Equal(t, Thrown, o.Kind)
	assert.ErrorIs(t, o.Failure(), boom, "a panicked error stays reachable")

	r := Attempt(ctx, func(ctx context.Context) (result.Result[int], error) {
		return result.Err[int](failure), nil
	})
	assert.Equal(t, TypedFailure, r.Kind)
	assert.Equal(t, failure, r.Failure())

	a := Attempt(ctx, func(ctx context.Context) (*result.Async[int], error) {
		return result.FromResult(result.Err[int](failure)), nil
	})
	assert.Equal(t, TypedFailure, a.Kind)
	assert.Equal(t, failure, a.Failure())

	ok := Attempt(ctx, func(ctx context.Context) (*result.Async[int], error) {
		return result.FromResult(result.Ok(9)), nil
	})
	assert.Equal(t, Success, ok.Kind)
	assert.Equal(t, 9, ok.Value.Result().Value())
}

func TestAttemptUnpackKeepsShape(t *testing.T) {
	ctx := context.Background()
	failure := &flakyFailure{}

	v, err := Attempt(ctx, func(ctx context.Context) (result.Result[int], error) {
		return result.Err[int](failure), nil
	}).Unpack()
	require.NoError(t, err)
	assert.True(t, v.IsErr())

	boom := errors.New("boom")
	n, err := Attempt(ctx, func(ctx context.Context) (int, error) { return 5, boom }).Unpack()
	assert.Equal(t, boom, err)
	assert.Zero(t, n, "a thrown failure carries no value")
}

func TestAttemptAsyncPanicAndNil(t *testing.T) {
	ctx := context.Background()

	o := Attempt(ctx, func(ctx context.Context) (*result.Async[int], error) {
		return result.Go(ctx, func(ctx context.Context) result.Result[int] { panic("inner") }), nil
	})
	require.Equal(t, Thrown, o.Kind)
	var pe *result.PanicError
	require.ErrorAs(t, o.Err, &pe)
	assert.Equal(t, "inner", pe.Value)

	o = Attempt(ctx, func(ctx context.Context) (*result.Async[int], error) { return nil, nil })
	assert.Equal(t, Thrown, o.Kind)
	assert.ErrorAs(t, o.Err, &pe)
}

func TestAttemptAsyncContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	o := Attempt(ctx, func(ctx context.Context) (*result.Async[int], error) {
		return result.Go(context.Background(), func(context.Context) result.Result[int] {
			time.Sleep(200 * time.Millisecond)
			return result.Ok(1)
		}), nil
	})
	assert.Equal(t, Thrown, o.Kind)
	assert.ErrorIs(t, o.Err, context.DeadlineExceeded)
}

func TestOutcomeKindString(t *testing.T) {
	assert.Equal(t, "success", Success.String())
	assert.Equal(t, "thrown", Thrown.String())
	assert.Equal(t, "typed-failure", TypedFailure.String())
	assert.Equal(t, "OutcomeKind(9)", OutcomeKind(9).String())
}

func TestResultShape(t *testing.T) {
	assert.Equal(t, shapePlain, resultShape[int]())
	assert.Equal(t, shapePlain, resultShape[error]())
	assert.Equal(t, shapeResult, resultShape[result.Result[string]]())
	assert.Equal(t, shapeDeferred, resultShape[*result.Async[string]]())

	v, ok := typedFailure[result.Result[int]](&TimeoutFailure{})
	require.True(t, ok)
	assert.Equal(t, "timeout", v.Failure().Type())

	_, ok = typedFailure[int](&TimeoutFailure{})
	assert.False(t, ok)
}
