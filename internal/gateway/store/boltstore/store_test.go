package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenCreatesParentDirectoryAndBuckets(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.GetSchemaSnapshot("acme")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSchemaSnapshotRoundTrip(t *testing.T) {
	s := openTestStore(t)

	_, ok, err := s.GetSchemaSnapshot("acme")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.PutSchemaSnapshot("acme", []byte(`{"tables":[]}`)))

	data, ok, err := s.GetSchemaSnapshot("acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"tables":[]}`, string(data))

	_, ok, err = s.GetSchemaSnapshot("other-tenant")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKBPassagesRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutKBPassages("cachekey-1", []byte(`[{"id":"p1"}]`)))

	data, ok, err := s.GetKBPassages("cachekey-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `[{"id":"p1"}]`, string(data))
}

func TestSchemaSnapshotsAndKBPassagesDoNotCollide(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutSchemaSnapshot("shared-key", []byte("schema-value")))
	require.NoError(t, s.PutKBPassages("shared-key", []byte("passage-value")))

	schemaData, ok, err := s.GetSchemaSnapshot("shared-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "schema-value", string(schemaData))

	passageData, ok, err := s.GetKBPassages("shared-key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "passage-value", string(passageData))
}

func TestPutOverwritesExistingValue(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.PutSchemaSnapshot("acme", []byte("v1")))
	require.NoError(t, s.PutSchemaSnapshot("acme", []byte("v2")))

	data, ok, err := s.GetSchemaSnapshot("acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v2", string(data))
}
