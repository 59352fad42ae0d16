package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	t.Parallel()

	items := []int{5, 4, 3, 2, 1, 0}
	got, failures := Map(context.Background(), items, 4, func(_ context.Context, n int) (string, error) {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return fmt.Sprint(n), nil
	})

	require.Empty(t, failures)
	assert.Equal(t, []string{"5", "4", "3", "2", "1", "0"}, got)
}

func TestMap_DropsFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("status failed")
	items := []string{"a", "bad", "c", "bad2"}
	got, failures := Map(context.Background(), items, 2, func(_ context.Context, s string) (string, error) {
		if len(s) > 1 && s[:3] == "bad" {
			return "", boom
		}
		return s + "!", nil
	})

	assert.Equal(t, []string{"a!", "c!"}, got)
	require.Len(t, failures, 2)
	assert.Equal(t, 1, failures[0].Index)
	assert.Equal(t, "bad", failures[0].Item)
	assert.ErrorIs(t, failures[0].Err, boom)
	assert.Equal(t, 3, failures[1].Index)
}

func TestMap_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	const size = 3
	var inFlight, peak atomic.Int32
	items := make([]int, 10)

	_, failures := Map(context.Background(), items, size, func(_ context.Context, _ int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return 0, nil
	})

	require.Empty(t, failures)
	assert.LessOrEqual(t, peak.Load(), int32(size))
}

func TestMap_ChunksRunSequentially(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var order []int
	items := []int{0, 1, 2, 3, 4}

	Map(context.Background(), items, 2, func(_ context.Context, n int) (int, error) {
		// Later items in a chunk finish first; chunk boundaries must still hold
		time.Sleep(time.Duration(10-n) * time.Millisecond)
		mu.Lock()
		order = append(order, n)
		mu.Unlock()
		return n, nil
	})

	require.Len(t, order, 5)
	assert.ElementsMatch(t, []int{0, 1}, order[:2])
	assert.ElementsMatch(t, []int{2, 3}, order[2:4])
	assert.Equal(t, 4, order[4])
}

func TestMap_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	got, failures := Map(ctx, []int{1, 2, 3}, 2, func(_ context.Context, n int) (int, error) {
		calls.Add(1)
		return n, nil
	})

	assert.Empty(t, got)
	assert.Len(t, failures, 3)
	assert.Zero(t, calls.Load())
	assert.ErrorIs(t, failures[0].Err, context.Canceled)
}

func TestMap_ZeroSize(t *testing.T) {
	t.Parallel()

	got, failures := Map(context.Background(), []int{1, 2}, 0, func(_ context.Context, n int) (int, error) {
		return n * 2, nil
	})
	assert.Empty(t, failures)
	assert.Equal(t, []int{2, 4}, got)
}

func TestEach(t *testing.T) {
	t.Parallel()

	failures := Each(context.Background(), []string{"ok", "fail"}, 10, func(_ context.Context, s string) error {
		if s == "fail" {
			return errors.New("nope")
		}
		return nil
	})
	require.Len(t, failures, 1)
	assert.Equal(t, "fail", failures[0].Item)
}
