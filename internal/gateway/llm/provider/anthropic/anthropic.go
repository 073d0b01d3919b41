package anthropic

import (
	"context"

	einoClaude "github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"

	"github.com/kiosk404/hivegate/internal/gateway/llm/provider"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/helper"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
)

const Name = "anthropic"

var _ spi.ProviderPlugin = (*Plugin)(nil)

type Plugin struct{ helper.BasePlugin }

func New() spi.ProviderPlugin { return &Plugin{helper.BasePlugin{PluginName: Name}} }

func (p *Plugin) BuildChatModel(ctx context.Context, cfg spi.Config) (model.BaseChatModel, error) {
	mcfg := &einoClaude.Config{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
	}
	if cfg.BaseURL != "" {
		mcfg.BaseURL = &cfg.BaseURL
	}
	return einoClaude.NewChatModel(ctx, mcfg)
}

func init() {
	provider.Register(Name, New)
}
