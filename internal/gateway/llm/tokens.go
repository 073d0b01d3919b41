package llm

import (
	"sync"

	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
)

// TokenCounter accumulates per-tenant token usage for metrics exposure
// (§4.7: "per-tenant counter exposed for metrics; no hard quota enforced").
type TokenCounter struct {
	mu     sync.Mutex
	totals map[string]entity.Usage
}

func NewTokenCounter() *TokenCounter {
	return &TokenCounter{totals: map[string]entity.Usage{}}
}

func (c *TokenCounter) Add(tenantID string, usage entity.Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals[tenantID] = c.totals[tenantID].Add(usage)
}

func (c *TokenCounter) Totals(tenantID string) entity.Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals[tenantID]
}
