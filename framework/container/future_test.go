package container_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-resolver/framework/container"
)

func TestFuture_ResolvedAndRejected(t *testing.T) {
	v, err := container.Resolved(42).Await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)

	_, err = container.Rejected(errBoom).Await(context.Background())
	require.ErrorIs(t, err, errBoom)
}

func TestFuture_AwaitManyTimes(t *testing.T) {
	f := container.Async(func() (any, error) { return "x", nil })
	for range 3 {
		v, err := await(t, f)
		require.NoError(t, err)
		require.Equal(t, "x", v)
	}
}

func TestFuture_AwaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := container.Async(func() (any, error) {
		<-block
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	_, _, done := f.Poll()
	require.False(t, done)
}

func TestFuture_Then(t *testing.T) {
	f := container.Then(container.Resolved(2), func(v any) (any, error) {
		return v.(int) * 10, nil
	})
	v, err := await(t, f)
	require.NoError(t, err)
	require.Equal(t, 20, v)

	called := false
	f = container.Then(container.Rejected(errBoom), func(any) (any, error) {
		called = true
		return nil, nil
	})
	_, err = await(t, f)
	require.ErrorIs(t, err, errBoom)
	require.False(t, called)
}

func TestFuture_PanicRejects(t *testing.T) {
	_, err := await(t, container.Async(func() (any, error) { panic("async") }))
	require.ErrorContains(t, err, "panic: async")

	f := container.Then(container.Resolved(1), func(any) (any, error) {
		var m map[string]int
		m["x"] = 1
		return m, nil
	})
	_, err = await(t, f)
	require.ErrorContains(t, err, "panic:")
}

func TestAwaitAll_PreservesPositions(t *testing.T) {
	slow := container.Async(func() (any, error) {
		time.Sleep(20 * time.Millisecond)
		return "slow", nil
	})
	values, err := container.AwaitAll(context.Background(), slow, container.Resolved("fast"))
	require.NoError(t, err)
	require.Equal(t, []any{"slow", "fast"}, values)
}

func TestAwaitAll_FirstFailureWins(t *testing.T) {
	never := make(chan struct{})
	defer close(never)
	hung := container.Async(func() (any, error) {
		<-never
		return nil, nil
	})

	_, err := container.AwaitAll(context.Background(), hung, container.Rejected(errBoom))
	require.ErrorIs(t, err, errBoom)
}

func TestAwaitAll_Empty(t *testing.T) {
	values, err := container.AwaitAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, values)
}

func TestInstanceCreated_PublishOnce(t *testing.T) {
	var got []any
	s := container.NewInstanceCreated(func(v any) { got = append(got, v) })
	require.False(t, s.Published())

	s.Publish("first")
	s.Publish("second")

	require.True(t, s.Published())
	require.Equal(t, []any{"first"}, got)
}
