package openai

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/hivegate/internal/gateway/llm/provider"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/helper"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
)

const Name = "openai"

var _ spi.ProviderPlugin = (*Plugin)(nil)

type Plugin struct{ helper.BasePlugin }

func New() spi.ProviderPlugin { return &Plugin{helper.BasePlugin{PluginName: Name}} }

func (p *Plugin) BuildChatModel(ctx context.Context, cfg spi.Config) (model.BaseChatModel, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	return helper.NewOpenAICompatibleChatModel(ctx, cfg)
}

func init() {
	provider.Register(Name, New)
}
