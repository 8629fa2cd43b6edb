package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute, 0, 10)

	c.Set("a", 1)
	v, found := c.Get("a")
	assert.True(t, found)
	assert.Equal(t, 1, v)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestCacheExpiration(t *testing.T) {
	c := New(time.Minute, 0, 10)

	c.SetWithExpiration("a", 1, time.Nanosecond)
	time.Sleep(time.Millisecond)

	_, found := c.Get("a")
	assert.False(t, found)
}

func TestCacheEviction(t *testing.T) {
	c := New(time.Minute, 0, 2)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Count())
	_, found := c.Get("c")
	assert.True(t, found)
}

func TestCacheDeleteAndFlush(t *testing.T) {
	c := New(time.Minute, 0, 10)

	c.Set("a", 1)
	c.Delete("a")
	_, found := c.Get("a")
	assert.False(t, found)

	c.Set("b", 2)
	c.Flush()
	assert.Equal(t, 0, c.Count())
}
