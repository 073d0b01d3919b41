package gemini

import (
	"context"
	"fmt"

	einoGemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/kiosk404/hivegate/internal/gateway/llm/provider"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/helper"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
)

const Name = "gemini"

var _ spi.ProviderPlugin = (*Plugin)(nil)

type Plugin struct{ helper.BasePlugin }

func New() spi.ProviderPlugin { return &Plugin{helper.BasePlugin{PluginName: Name}} }

func (p *Plugin) BuildChatModel(ctx context.Context, cfg spi.Config) (model.BaseChatModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return einoGemini.NewChatModel(ctx, &einoGemini.Config{Client: client, Model: cfg.Model})
}

func init() {
	provider.Register(Name, New)
}
