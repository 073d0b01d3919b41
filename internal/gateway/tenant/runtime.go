package tenant

import (
	"context"
	"sync"
	"time"
)

// SchemaCacheEntry is the PostgreSQL Agent's per-tenant slot for a cached
// SchemaSnapshot. The concrete snapshot type lives in the postgres agent
// package; TenantRuntime only owns the slot so a reload can drop it without
// the registry importing the agent package.
type SchemaCacheEntry struct {
	mu        sync.RWMutex
	Snapshot  any
	CapturedAt time.Time
	ttl       time.Duration
}

func newSchemaCacheEntry(ttl time.Duration) *SchemaCacheEntry {
	return &SchemaCacheEntry{ttl: ttl}
}

// Get returns the cached snapshot if present and not stale.
func (e *SchemaCacheEntry) Get() (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.Snapshot == nil {
		return nil, false
	}
	if e.ttl > 0 && time.Since(e.CapturedAt) > e.ttl {
		return nil, false
	}
	return e.Snapshot, true
}

// Set installs a freshly captured snapshot.
func (e *SchemaCacheEntry) Set(snapshot any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Snapshot = snapshot
	e.CapturedAt = time.Now()
}

// Invalidate drops the cached snapshot, forcing the next acquisition to
// re-introspect. Nothing in the query path calls it, so a failed query does
// not invalidate the cached snapshot.
func (e *SchemaCacheEntry) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Snapshot = nil
}

// TenantRuntime wraps one tenant's immutable TenantConfig with the mutable
// state the registry owns on its behalf: a lazily constructed DB pool and a
// schema-cache slot. Exactly one TenantRuntime exists per (tenant,
// generation) pair; Reload retires it in favor of a new one (§3).
type TenantRuntime struct {
	Config TenantConfig

	poolMu sync.Mutex
	pool   *Pool

	schemaCache *SchemaCacheEntry

	generation uint64
}

func newTenantRuntime(cfg TenantConfig, generation uint64, schemaTTL time.Duration) *TenantRuntime {
	return &TenantRuntime{
		Config:      cfg,
		schemaCache: newSchemaCacheEntry(schemaTTL),
		generation:  generation,
	}
}

// SchemaCache returns this tenant's schema-snapshot cache slot.
func (r *TenantRuntime) SchemaCache() *SchemaCacheEntry { return r.schemaCache }

// Generation identifies which config load produced this runtime, so a
// request holding a TenantRuntime can detect it has been retired by a
// concurrent Reload.
func (r *TenantRuntime) Generation() uint64 { return r.generation }

// acquirePool lazily constructs and memoizes this tenant's connection pool. It is
// created on first SQL-agent use and destroyed on unload/shutdown (§3).
func (r *TenantRuntime) acquirePool(ctx context.Context, cfg PoolConfig) (*Pool, error) {
	r.poolMu.Lock()
	defer r.poolMu.Unlock()
	if r.pool != nil {
		return r.pool, nil
	}
	p, err := NewPool(ctx, r.Config.ID, r.Config.Database, cfg)
	if err != nil {
		return nil, err
	}
	r.pool = p
	return p, nil
}

// closePool closes the pool if one was ever constructed; called when the
// generation owning this runtime is drained.
func (r *TenantRuntime) closePool() {
	r.poolMu.Lock()
	defer r.poolMu.Unlock()
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
}
