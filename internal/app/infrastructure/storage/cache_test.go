package storage

import (
	"github.com/stretchr/testify/assert"
	"testing"
	"time"
)

func TestCache_SetIfAbsent(t *testing.T) {
	c := NewCache[struct{}](16, time.Minute)

	assert.True(t, c.SetIfAbsent("alice", struct{}{}))
	assert.False(t, c.SetIfAbsent("alice", struct{}{}))
	assert.True(t, c.SetIfAbsent("bob", struct{}{}))

	c.ClearKey("alice")
	assert.True(t, c.SetIfAbsent("alice", struct{}{}))
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache[int](16, 50*time.Millisecond)
	c.Set("k", 1)

	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("k")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestCache_ClearAll(t *testing.T) {
	c := NewCache[int](16, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.ClearAll()

	_, ok := c.Get("a")
	assert.False(t, ok)
}
