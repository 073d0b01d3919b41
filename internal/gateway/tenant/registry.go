package tenant

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kiosk404/hivegate/internal/pkg/errorx"
	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

var log = logger.For("tenant_registry")

// SchemaSnapshotTTL is the default staleness window for a tenant's cached
// schema snapshot (§3).
const SchemaSnapshotTTL = 10 * time.Minute

// generation is one atomically-swapped snapshot of every tenant runtime
// plus the global policy that produced it. Readers always observe a single
// generation for the lifetime of one request (§5 ordering guarantees).
type generation struct {
	id            uint64
	runtimes      map[string]*TenantRuntime
	policy        GlobalPolicy
	flags         FeatureFlags
	defaultTenant string
}

// Registry is the single source of truth for tenant identity, credentials,
// and policy (§4.1). It is read-mostly: resolution never blocks on a mutex,
// only Reload does.
type Registry struct {
	current  atomic.Pointer[generation]
	poolCfg  PoolConfig
	drainFor time.Duration
}

// NewRegistry constructs an empty registry; call Load before first use.
func NewRegistry() *Registry {
	return &Registry{poolCfg: DefaultPoolConfig(), drainFor: 60 * time.Second}
}

// Load parses raw via parseDocument and installs it as generation 1. Fails
// with ConfigInvalid if the document does not parse, declares no tenants,
// or names an undeclared default_tenant, and with CredentialMissing if a
// tenant lacks a database host or name; DB credential smoke-connects are
// deferred to first PoolFor per the spec's lazy mode.
func (r *Registry) Load(ctx context.Context, raw []byte) error {
	doc, err := parseDocument(raw)
	if err != nil {
		return errorx.WrapC(err, CodeConfigInvalid, "%v", err)
	}
	gen, err := buildGeneration(doc, 1)
	if err != nil {
		return err
	}
	r.current.Store(gen)
	log.Infof("loaded %d tenants, generation=1", len(gen.runtimes))
	return nil
}

func buildGeneration(doc *document, id uint64) (*generation, error) {
	if len(doc.Tenants) == 0 {
		return nil, errorx.WithCode(CodeConfigInvalid, "configuration declares no tenants")
	}
	runtimes := make(map[string]*TenantRuntime, len(doc.Tenants))
	for tid, cfg := range doc.Tenants {
		if tid == "" {
			return nil, errorx.WithCode(CodeConfigInvalid, "tenant with empty id")
		}
		if _, dup := runtimes[tid]; dup {
			return nil, errorx.WithCode(CodeTenantDuplicate, "duplicate tenant id %q", tid)
		}
		cfg.ID = tid
		if cfg.Database.Host == "" || cfg.Database.Database == "" {
			return nil, errorx.WithCode(CodeCredentialMissing, "tenant %q missing database host/name", tid)
		}
		runtimes[tid] = newTenantRuntime(cfg, id, SchemaSnapshotTTL)
	}
	if doc.DefaultTenant != "" {
		if _, ok := runtimes[doc.DefaultTenant]; !ok {
			return nil, errorx.WithCode(CodeConfigInvalid, "default_tenant %q is not a declared tenant", doc.DefaultTenant)
		}
	}
	policy := doc.GlobalSettings
	if policy.RetryCount <= 0 {
		policy.RetryCount = 3
	}
	if policy.TimeoutSeconds <= 0 {
		policy.TimeoutSeconds = 30
	}
	if policy.Security.TenantHeaderName == "" {
		policy.Security.TenantHeaderName = "X-Tenant-ID"
	}
	return &generation{id: id, runtimes: runtimes, policy: policy, flags: doc.FeatureFlags, defaultTenant: doc.DefaultTenant}, nil
}

// Reload atomically swaps to a new generation built from raw, then drains
// the old generation's pools over the configured grace window before
// closing them (§4.1). Tenants present in both generations keep serving
// uninterrupted; only the superseded TenantRuntime values (and their pools)
// are retired.
func (r *Registry) Reload(ctx context.Context, raw []byte) error {
	doc, err := parseDocument(raw)
	if err != nil {
		return errorx.WrapC(err, CodeConfigInvalid, "%v", err)
	}
	old := r.current.Load()
	nextID := uint64(1)
	if old != nil {
		nextID = old.id + 1
	}
	gen, err := buildGeneration(doc, nextID)
	if err != nil {
		return err
	}
	r.current.Store(gen)
	log.Infof("reloaded %d tenants, generation=%d", len(gen.runtimes), gen.id)

	if old != nil {
		go r.drain(old)
	}
	return nil
}

func (r *Registry) drain(old *generation) {
	time.Sleep(r.drainFor)
	for _, rt := range old.runtimes {
		rt.closePool()
	}
	log.Infof("drained generation=%d", old.id)
}

// Policy returns the current generation's GlobalPolicy.
func (r *Registry) Policy() GlobalPolicy {
	if g := r.current.Load(); g != nil {
		return g.policy
	}
	return GlobalPolicy{}
}

// FeatureFlags returns the current generation's top-level feature flags.
func (r *Registry) FeatureFlags() FeatureFlags {
	if g := r.current.Load(); g != nil {
		return g.flags
	}
	return FeatureFlags{}
}

// Hint is the ordered set of signals Resolve considers, in priority order
// (§4.2 tenant extraction order): header, API-key prefix, model-name
// prefix, body tenant_id. An unknown tenant named by the header, an sk- key
// or the body is an error; a bearer key without the sk- prefix and a model
// prefix that names no tenant are skipped.
type Hint struct {
	Header      string
	BearerKey   string
	ModelField  string
	BodyTenant  string
}

// Resolve implements §4.1's Resolve(hint) → TenantRuntime. A header and a
// body tenant_id that disagree is rejected up front as CodeTenantConflict,
// before any precedence is applied. Otherwise the search order is: explicit
// tenant id from header, then the sk-<tenant-id> API key convention, then
// the <tenant-id>-<model> model-name convention, then the body's tenant_id
// field, then the default tenant if policy permits.
func (r *Registry) Resolve(hint Hint) (*TenantRuntime, error) {
	gen := r.current.Load()
	if gen == nil {
		return nil, errorx.WithCode(CodeTenantRequired, "registry has no loaded configuration")
	}

	if hint.Header != "" && hint.BodyTenant != "" && hint.Header != hint.BodyTenant {
		return nil, errorx.WithCode(CodeTenantConflict, "tenant id %q from header disagrees with %q from body", hint.Header, hint.BodyTenant)
	}

	if hint.Header != "" {
		if rt, ok := gen.runtimes[hint.Header]; ok {
			return rt, nil
		}
		return nil, errorx.WithCode(CodeTenantUnknown, "unknown tenant %q from header", hint.Header)
	}

	if hint.BearerKey != "" {
		if tid, ok := strings.CutPrefix(hint.BearerKey, "sk-"); ok {
			if rt, ok := gen.runtimes[tid]; ok {
				return rt, nil
			}
			return nil, errorx.WithCode(CodeTenantUnknown, "unknown tenant %q from api key", tid)
		}
	}

	if hint.ModelField != "" {
		if tid, _, ok := strings.Cut(hint.ModelField, "-"); ok {
			if rt, exists := gen.runtimes[tid]; exists {
				return rt, nil
			}
		}
	}

	if hint.BodyTenant != "" {
		if rt, ok := gen.runtimes[hint.BodyTenant]; ok {
			return rt, nil
		}
		return nil, errorx.WithCode(CodeTenantUnknown, "unknown tenant %q from body", hint.BodyTenant)
	}

	if gen.policy.Security.DefaultOnMissing || !gen.policy.Security.RequireTenantHeader {
		if rt, ok := gen.defaultRuntime(); ok {
			return rt, nil
		}
	}

	return nil, errorx.WithCode(CodeTenantRequired, "no tenant identity on request and no default tenant configured")
}

func (g *generation) defaultRuntime() (*TenantRuntime, bool) {
	if g.defaultTenant == "" {
		return nil, false
	}
	rt, ok := g.runtimes[g.defaultTenant]
	return rt, ok
}

// Get looks up a tenant runtime by id without applying the Hint search
// order, used by admin endpoints and background jobs that already know the
// tenant id.
func (r *Registry) Get(tenantID string) (*TenantRuntime, error) {
	gen := r.current.Load()
	if gen == nil {
		return nil, errorx.WithCode(CodeTenantRequired, "registry has no loaded configuration")
	}
	rt, ok := gen.runtimes[tenantID]
	if !ok {
		return nil, errorx.WithCode(CodeTenantUnknown, "unknown tenant %q", tenantID)
	}
	return rt, nil
}

// Summaries returns a secret-free projection of every tenant in the current
// generation, for GET /admin/tenants (§6.2).
type Summary struct {
	ID                  string
	Name                string
	Language            string
	PostgresEnabled     bool
	KnowledgeBaseEnabled bool
	FallbackEnabled     bool
}

func (r *Registry) Summaries() []Summary {
	gen := r.current.Load()
	if gen == nil {
		return nil
	}
	out := make([]Summary, 0, len(gen.runtimes))
	for _, rt := range gen.runtimes {
		out = append(out, Summary{
			ID:                   rt.Config.ID,
			Name:                 rt.Config.Name,
			Language:             rt.Config.Language,
			PostgresEnabled:      rt.Config.Settings.EnablePostgresAgent,
			KnowledgeBaseEnabled: rt.Config.Settings.EnableKnowledgeBaseAgent,
			FallbackEnabled:      rt.Config.Settings.EnableFallbackAgent,
		})
	}
	return out
}

// PoolFor implements §4.1's PoolFor(tenant) → Pool: returns, or lazily
// constructs, the bounded connection pool for rt's tenant.
func (r *Registry) PoolFor(ctx context.Context, rt *TenantRuntime) (*Pool, error) {
	return rt.acquirePool(ctx, r.poolCfg)
}

// poolConfigString renders the pool settings on one line for debugging.
func (r *Registry) poolConfigString() string {
	return fmt.Sprintf("max=%d idle=%s connect=%s stmt=%s", r.poolCfg.MaxConns, r.poolCfg.MaxConnIdleTime, r.poolCfg.ConnectTimeout, r.poolCfg.StatementTimeout)
}
