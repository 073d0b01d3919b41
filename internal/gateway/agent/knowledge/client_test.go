package knowledge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/hivegate/internal/gateway/store/boltstore"
)

func TestSearchReturnsPassagesFromService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"passages":[{"id":"p1","text":"hello","score":0.9}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	passages, err := c.Search(context.Background(), "acme", "docs", "us", "hybrid", "how do I reset my password", 5)
	require.NoError(t, err)
	require.Len(t, passages, 1)
	assert.Equal(t, "p1", passages[0].ID)
	assert.Equal(t, "hello", passages[0].Content)
}

func TestSearchPropagatesNon200AsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), "acme", "docs", "us", "hybrid", "q", 5)
	require.Error(t, err)
	var se *statusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode())
}

func TestSearchWithStoreServesFromCacheWithoutHittingService(t *testing.T) {
	store, err := boltstore.Open(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"passages":[{"id":"p1","text":"hello","score":0.9}]}`))
	}))
	defer srv.Close()

	c := NewClientWithStore(srv.URL, store)

	first, err := c.Search(context.Background(), "acme", "docs", "us", "hybrid", "how do I reset my password", 5)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, calls)

	second, err := c.Search(context.Background(), "acme", "docs", "us", "hybrid", "how do I reset my password", 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second search with identical parameters should be served from the durable cache")
}

func TestSearchWithStoreDoesNotCollideAcrossDistinctParameters(t *testing.T) {
	store, err := boltstore.Open(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"passages":[{"id":"p1","text":"hello","score":0.9}]}`))
	}))
	defer srv.Close()

	c := NewClientWithStore(srv.URL, store)

	_, err = c.Search(context.Background(), "acme", "docs", "us", "hybrid", "question one", 5)
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "acme", "docs", "us", "hybrid", "question two", 5)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestPassageCacheKeyIsStableAndDistinguishesParameters(t *testing.T) {
	a := passageCacheKey("acme", "docs", "us", "hybrid", "hello", 5)
	b := passageCacheKey("acme", "docs", "us", "hybrid", "hello", 5)
	assert.Equal(t, a, b)

	c := passageCacheKey("acme", "docs", "us", "hybrid", "hello", 10)
	assert.NotEqual(t, a, c)
}
