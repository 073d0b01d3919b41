package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `
default_tenant: acme
tenants:
  acme:
    name: Acme Corp
    language: en
    database: {host: db.acme.internal, port: 5432, database: acme, user: acme, password: secret}
    settings: {max_tokens: 512, default_agent_type: auto, enable_postgres_agent: true, enable_knowledge_base_agent: true, enable_fallback_agent: true}
  siam:
    name: Siam Co
    language: th
    database: {host: db.siam.internal, port: 5432, database: siam, user: siam, password: secret}
    settings: {enable_postgres_agent: true}
global_settings:
  fallback_agent: fallback
  retry_count: 3
  timeout_seconds: 30
  security: {require_tenant_header: false, default_tenant_on_missing: true}
`

func TestRegistryLoadAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(testDocument)))

	rt, err := r.Resolve(Hint{Header: "siam"})
	require.NoError(t, err)
	assert.Equal(t, "siam", rt.Config.ID)
	assert.Equal(t, "th", rt.Config.Language)
}

func TestRegistryResolveByAPIKeyPrefix(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(testDocument)))

	rt, err := r.Resolve(Hint{BearerKey: "sk-acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme", rt.Config.ID)
}

func TestRegistryResolveByModelPrefix(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(testDocument)))

	rt, err := r.Resolve(Hint{ModelField: "acme-gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "acme", rt.Config.ID)
}

func TestRegistryResolveRejectsConflictingHeaderAndBodyTenant(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(testDocument)))

	_, err := r.Resolve(Hint{Header: "acme", BodyTenant: "siam"})
	require.Error(t, err)
	assert.Equal(t, CodeTenantConflict, codeOf(t, err))
}

func TestRegistryResolveAllowsMatchingHeaderAndBodyTenant(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(testDocument)))

	rt, err := r.Resolve(Hint{Header: "acme", BodyTenant: "acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme", rt.Config.ID)
}

func TestRegistryResolveUnknownTenant(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(testDocument)))

	_, err := r.Resolve(Hint{Header: "ghost"})
	require.Error(t, err)
	assert.Equal(t, CodeTenantUnknown, codeOf(t, err))
}

func TestRegistryResolveDefaultsWhenPermitted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(testDocument)))

	rt, err := r.Resolve(Hint{})
	require.NoError(t, err)
	assert.Equal(t, "acme", rt.Config.ID)
}

func TestRegistryLoadRejectsUndeclaredDefaultTenant(t *testing.T) {
	r := NewRegistry()
	err := r.Load(context.Background(), []byte(`
default_tenant: nope
tenants:
  acme: {name: Acme, database: {host: h, database: d}}
`))
	require.Error(t, err)
	assert.Equal(t, CodeConfigInvalid, codeOf(t, err))
}

func TestRegistryLoadRejectsMissingCredentials(t *testing.T) {
	r := NewRegistry()
	err := r.Load(context.Background(), []byte(`
tenants:
  acme: {name: Acme}
`))
	require.Error(t, err)
	assert.Equal(t, CodeCredentialMissing, codeOf(t, err))
}

func TestRegistrySummariesOmitSecrets(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Load(context.Background(), []byte(testDocument)))

	summaries := r.Summaries()
	require.Len(t, summaries, 2)
	for _, s := range summaries {
		assert.NotEmpty(t, s.ID)
	}
}

func codeOf(t *testing.T, err error) int {
	t.Helper()
	type coder interface{ Code() int }
	c, ok := err.(coder)
	require.True(t, ok, "expected an *errorx.Error, got %T", err)
	return c.Code()
}
