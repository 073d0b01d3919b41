package ollama

import (
	"context"

	einoOllama "github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/hivegate/internal/gateway/llm/provider"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/helper"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
)

const Name = "ollama"

var _ spi.ProviderPlugin = (*Plugin)(nil)

type Plugin struct{ helper.BasePlugin }

func New() spi.ProviderPlugin { return &Plugin{helper.BasePlugin{PluginName: Name}} }

// BuildChatModel talks to a local Ollama daemon directly (not through its
// OpenAI-compatible shim), since the dedicated eino-ext component handles
// model pulls and keep-alive the compat shim does not.
func (p *Plugin) BuildChatModel(ctx context.Context, cfg spi.Config) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return einoOllama.NewChatModel(ctx, &einoOllama.ChatModelConfig{
		BaseURL: baseURL,
		Model:   cfg.Model,
	})
}

func init() {
	provider.Register(Name, New)
}
