package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_DefaultsToGOMAXPROCS(t *testing.T) {
	p := NewPool(0)
	assert.GreaterOrEqual(t, p.Size(), 1)

	assert.Equal(t, 3, NewPool(3).Size())

	var nilPool *Pool
	assert.Equal(t, 1, nilPool.Size())
}

func TestForEach_VisitsEveryItem(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	var mu sync.Mutex
	seen := make(map[int]bool)
	ForEach(NewPool(4), items, func(i int) {
		mu.Lock()
		seen[i] = true
		mu.Unlock()
	})

	assert.Len(t, seen, 100)
}

func TestForEach_NilPoolRunsInline(t *testing.T) {
	var order []int
	ForEach(nil, []int{1, 2, 3}, func(i int) {
		order = append(order, i)
	})
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestForEach_RespectsBound(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 32)

	ForEach(NewPool(2), items, func(int) {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
	})

	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestForEach_JoinsBeforeReturning(t *testing.T) {
	var done atomic.Int32
	ForEach(NewPool(8), make([]struct{}, 16), func(struct{}) {
		time.Sleep(2 * time.Millisecond)
		done.Add(1)
	})
	assert.Equal(t, int32(16), done.Load())
}

func TestForEachErr(t *testing.T) {
	boom := errors.New("boom")

	err := ForEachErr(context.Background(), NewPool(2), []int{1, 2, 3}, func(_ context.Context, i int) error {
		if i == 2 {
			return boom
		}
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	err = ForEachErr(context.Background(), nil, []int{1, 2}, func(context.Context, int) error { return nil })
	assert.NoError(t, err)
}
