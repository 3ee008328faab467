package cache_test

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/cache"
)

func TestCache_GetSet(t *testing.T) {
	c := cache.New[int](2)
	assert.Equal(t, 2, c.Capacity())

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	c.Set("b", 2)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// b is now least recently used.
	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	c.Set("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
}

func TestCache_DefaultCapacity(t *testing.T) {
	assert.Equal(t, cache.DefaultCapacity, cache.New[string](0).Capacity())
}

func TestCache_GetOrCreate(t *testing.T) {
	c := cache.New[*int](4)
	calls := 0
	create := func() (*int, error) {
		calls++
		v := calls
		return &v, nil
	}

	first, err := c.GetOrCreate("k", create)
	require.NoError(t, err)
	second, err := c.GetOrCreate("k", create)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	_, err = c.GetOrCreate("bad", func() (*int, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok, "errors are not cached")
}

func TestCache_GetOrCreateConcurrent(t *testing.T) {
	c := cache.New[*int](4)
	var created atomic.Int32

	const goroutines = 32
	results := make([]*int, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrCreate("shared", func() (*int, error) {
				n := int(created.Add(1))
				return &n, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestCache_RangeInvalidateClear(t *testing.T) {
	c := cache.New[int](8)
	for i := 0; i < 3; i++ {
		c.Set(strconv.Itoa(i), i)
	}

	var keys []string
	c.Range(func(k string, _ int) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []string{"2", "1", "0"}, keys)

	keys = nil
	c.Range(func(k string, _ int) bool {
		keys = append(keys, k)
		return false
	})
	assert.Len(t, keys, 1)

	c.Invalidate("1")
	assert.Equal(t, 2, c.Len())
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestCache_GetFrontWhileReplaced(t *testing.T) {
	c := cache.New[int](4)
	c.Set("hot", 0)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 1; i <= 500; i++ {
			c.Set("hot", i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			v, ok := c.Get("hot")
			assert.True(t, ok)
			assert.GreaterOrEqual(t, v, 0)
		}
	}()
	wg.Wait()

	v, ok := c.Get("hot")
	require.True(t, ok)
	assert.Equal(t, 500, v)
}
