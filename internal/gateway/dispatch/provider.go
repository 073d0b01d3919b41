package dispatch

import (
	"strings"

	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
)

// ParseModelRef splits a tenant's configured model id, formatted
// "<provider>/<model>" (e.g. "openai/gpt-4o"), into a ModelRef. A bare
// model name with no provider segment is assumed to be OpenAI, the most
// common default.
func ParseModelRef(model string) entity.ModelRef {
	if p, m, ok := strings.Cut(model, "/"); ok {
		return entity.ModelRef{Provider: p, Model: m}
	}
	return entity.ModelRef{Provider: "openai", Model: model}
}

// providerConfigFor builds the spi.Config a provider plugin needs from a
// tenant's declared API keys, keyed by provider name under
// TenantConfig.APIKeys (§6.1 api_keys block).
func providerConfigFor(rt *tenant.TenantRuntime) spi.Config {
	if rt == nil {
		return spi.Config{}
	}
	ref := ParseModelRef(rt.Config.Model)
	return spi.Config{APIKey: rt.Config.APIKeys[ref.Provider]}
}
