package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRUSetGet(t *testing.T) {
	c := NewLRU(2, time.Minute)
	c.Set("acme", "How many orders?", "postgres")

	v, ok := c.Get("acme", "how many orders?")
	assert.True(t, ok)
	assert.Equal(t, "postgres", v)
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU(2, time.Millisecond)
	c.Set("acme", "q", "postgres")
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("acme", "q")
	assert.False(t, ok)
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU(1, time.Minute)
	c.Set("acme", "q1", "postgres")
	c.Set("acme", "q2", "knowledge_base")

	_, ok := c.Get("acme", "q1")
	assert.False(t, ok, "oldest entry should have been evicted")

	v, ok := c.Get("acme", "q2")
	assert.True(t, ok)
	assert.Equal(t, "knowledge_base", v)
}

func TestNormalizeQuestionCollapsesWhitespaceAndCase(t *testing.T) {
	assert.Equal(t, "how many orders", NormalizeQuestion("  How   Many Orders "))
}
