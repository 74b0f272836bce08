package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMissingKey(t *testing.T) {
	c := New[string, int](2)

	v, ok := c.Get("nope")
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestPutAndGet(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)

	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Put("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the eviction candidate.
	c.Get("a")
	c.Put("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestUpdateRefreshesRecency(t *testing.T) {
	c := New[string, int](2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("a", 10) // update, not insert
	c.Put("c", 3)  // should evict "b"

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestCapacityOne(t *testing.T) {
	c := New[int, string](1)
	c.Put(1, "one")
	c.Put(2, "two")

	_, ok := c.Get(1)
	assert.False(t, ok)
	v, ok := c.Get(2)
	assert.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestInvalidCapacityPanics(t *testing.T) {
	assert.Panics(t, func() { New[string, int](0) })
}
