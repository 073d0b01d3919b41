package knowledge

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kiosk404/hivegate/internal/gateway/store/boltstore"
	"github.com/kiosk404/hivegate/internal/pkg/json"
)

// Passage is one retrieved chunk from the knowledge-base service (§4.5,
// §6.4).
type Passage struct {
	ID      string `json:"id"`
	Content string `json:"text"`
	Score   float64 `json:"score"`
}

// Client is the retrieval client for the managed Knowledge-Base service
// (§6.4), an out-of-scope external collaborator this gateway only calls
// over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	store      *boltstore.Store
}

func NewClient(baseURL string) *Client {
	return &Client{httpClient: &http.Client{Timeout: 10 * time.Second}, baseURL: baseURL}
}

// NewClientWithStore is NewClient, but retrieved passages are cached
// durably: a repeated question for the same tenant survives a gateway
// restart without another knowledge-base round trip (§11.4).
func NewClientWithStore(baseURL string, store *boltstore.Store) *Client {
	return &Client{httpClient: &http.Client{Timeout: 10 * time.Second}, baseURL: baseURL, store: store}
}

func passageCacheKey(prefix, bucket, region, searchType, q string, topK int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s|%s|%d", prefix, bucket, region, searchType, q, topK)))
	return hex.EncodeToString(sum[:])
}

type searchRequest struct {
	Prefix     string `json:"prefix"`
	Bucket     string `json:"bucket"`
	Region     string `json:"region"`
	Query      string `json:"query"`
	SearchType string `json:"search_type"`
	TopK       int    `json:"top_k"`
}

// Search retrieves up to topK passages for q from the tenant's prefixed
// knowledge base (§4.5). The request carries prefix, bucket, region, query,
// search_type and top_k; no knowledge-base id is sent.
func (c *Client) Search(ctx context.Context, prefix, bucket, region, searchType, q string, topK int) ([]Passage, error) {
	cacheKey := passageCacheKey(prefix, bucket, region, searchType, q, topK)
	if c.store != nil {
		if data, ok, err := c.store.GetKBPassages(cacheKey); err == nil && ok {
			var cached []Passage
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	body, err := json.Marshal(searchRequest{Prefix: prefix, Bucket: bucket, Region: region, Query: q, SearchType: searchType, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("knowledge base: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("knowledge base: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("knowledge base: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{status: resp.StatusCode, msg: fmt.Sprintf("knowledge base returned %d", resp.StatusCode)}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("knowledge base: read response: %w", err)
	}
	var out struct {
		Passages []Passage `json:"passages"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("knowledge base: decode response: %w", err)
	}

	if c.store != nil {
		if data, err := json.Marshal(out.Passages); err == nil {
			_ = c.store.PutKBPassages(cacheKey, data)
		}
	}
	return out.Passages, nil
}

type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string   { return e.msg }
func (e *statusError) StatusCode() int { return e.status }
