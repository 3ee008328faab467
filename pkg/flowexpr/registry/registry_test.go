package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterLookup(t *testing.T) {
	r := New[int]()
	require.NoError(t, r.Register("a", 1))
	require.NoError(t, r.Register("a", 2))

	v, ok := r.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v, "register replaces")
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("b"))
	assert.Equal(t, 1, r.Len())

	assert.Error(t, r.Register("", 1))
}

func TestRegistry_RegisterAll(t *testing.T) {
	r := New[string]()
	require.NoError(t, r.RegisterAll(map[string]string{"b": "2", "a": "1", "c": "3"}))
	assert.Equal(t, []string{"a", "b", "c"}, r.Names())

	assert.Error(t, r.RegisterAll(map[string]string{"": "x"}))
}

func TestRegistry_Remove(t *testing.T) {
	r := New[int]()
	require.NoError(t, r.Register("a", 1))
	require.NoError(t, r.Remove("a"))
	require.NoError(t, r.Remove("a"))
	assert.False(t, r.Has("a"))
}

func TestRegistry_Freeze(t *testing.T) {
	r := New[int]()
	require.NoError(t, r.Register("a", 1))
	r.Freeze()

	assert.Error(t, r.Register("b", 2))
	assert.Error(t, r.Remove("a"))
	v, ok := r.Lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestRegistry_Clone(t *testing.T) {
	r := New[int]()
	require.NoError(t, r.Register("a", 1))
	r.Freeze()

	c := r.Clone()
	require.NoError(t, c.Register("b", 2), "clones are unfrozen")
	assert.Equal(t, []string{"a", "b"}, c.Names())
	assert.Equal(t, []string{"a"}, r.Names())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Register(fmt.Sprint("k", i), i)
			_, _ = r.Lookup("k0")
			_ = r.Names()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, r.Len())
}
