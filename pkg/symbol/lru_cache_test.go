package symbol

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)

	// Touch "a" so "b" becomes the oldest entry.
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Put("c", 3)
	assert.Equal(t, 2, c.Len())

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should be evicted")

	c.Put("a", 10)
	v, _ = c.Get("a")
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRUCache_MinimumCapacity(t *testing.T) {
	c := newLRUCache[int, *elfSymbols](0)
	c.Put(1, nil)
	c.Put(2, nil)

	assert.Equal(t, 1, c.Len())
	v, ok := c.Get(2)
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestLRUCache_Concurrent(t *testing.T) {
	c := newLRUCache[int, int](8)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Put(g*100+i, i)
				c.Get(i)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 8, c.Len())
}
