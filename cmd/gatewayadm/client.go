package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kiosk404/hivegate/internal/pkg/json"
)

type adminClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newAdminClient(baseURL, token string) *adminClient {
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return &adminClient{baseURL: base, token: token, http: &http.Client{Timeout: 15 * time.Second}}
}

func (c *adminClient) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, string(body))
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

type tenantSummary struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Language             string `json:"language"`
	PostgresEnabled      bool   `json:"postgres_enabled"`
	KnowledgeBaseEnabled bool   `json:"knowledge_base_enabled"`
	FallbackEnabled      bool   `json:"fallback_enabled"`
}

func (c *adminClient) listTenants(ctx context.Context) ([]tenantSummary, error) {
	var tenants []tenantSummary
	if err := c.do(ctx, http.MethodGet, "/admin/tenants", &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

func (c *adminClient) reload(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/reload", nil)
}
