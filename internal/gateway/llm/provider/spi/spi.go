// Package spi is the plugin boundary the LLM Provider Abstraction uses to
// stay provider-neutral: each backend (OpenAI, Anthropic, Gemini, DeepSeek,
// Qwen, Ollama) registers a ProviderPlugin that knows how to build an eino
// BaseChatModel for a given tenant model reference.
package spi

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// Config is the per-provider connection configuration a plugin needs to
// build a chat model: API base URL, key, and any provider-specific tuning.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Extra   map[string]string
}

// ProviderPlugin is the interface every provider backend implements.
type ProviderPlugin interface {
	// Name is the provider identifier used in a tenant's model id, e.g.
	// "openai", "anthropic".
	Name() string
	// BuildChatModel constructs a BaseChatModel bound to cfg, ready for
	// Generate/Stream calls.
	BuildChatModel(ctx context.Context, cfg Config) (model.BaseChatModel, error)
}

// ProbePlugin is implemented by providers that support a lightweight
// reachability check at startup (exit code 69 in strict mode, §6.2).
type ProbePlugin interface {
	ProviderPlugin
	Probe(ctx context.Context, cfg Config) error
}

// PluginFactory constructs a fresh ProviderPlugin instance, registered once
// per provider name at init() time.
type PluginFactory func() ProviderPlugin
