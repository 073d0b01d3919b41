// Package helper holds the shared chat-model construction logic reused by
// several provider plugins, mirroring the teacher's pattern of a single
// OpenAI-compatible builder serving OpenAI, DeepSeek, and Qwen.
package helper

import (
	"context"
	"fmt"

	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
)

// NewOpenAICompatibleChatModel builds an eino chat model against any
// OpenAI-wire-compatible endpoint: OpenAI itself, DeepSeek, and
// Qwen/DashScope all take this path.
func NewOpenAICompatibleChatModel(ctx context.Context, cfg spi.Config) (model.BaseChatModel, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider config has neither api key nor base url")
	}
	mcfg := &einoOpenAI.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		mcfg.BaseURL = cfg.BaseURL
	}
	return einoOpenAI.NewChatModel(ctx, mcfg)
}

// BasePlugin supplies the Name() method shared by every provider plugin.
type BasePlugin struct {
	PluginName string
}

func (b BasePlugin) Name() string { return b.PluginName }
