// Package llm is the LLM Provider Abstraction (§4.7): a unified
// Complete/Stream surface over whichever model backs a tenant, with
// bounded retries, cancellation propagation, and per-tenant token
// accounting.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider"
	"github.com/kiosk404/hivegate/internal/gateway/llm/provider/spi"
	"github.com/kiosk404/hivegate/internal/gateway/metrics"
	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

var log = logger.For("llm_manager")

// Manager resolves a ModelRef to a provider plugin, builds the underlying
// eino chat model, and exposes the spec's provider-neutral call surface on
// top of it, with retry/backoff and per-tenant token accounting.
type Manager struct {
	retryCount int
	backoff    time.Duration
	tokens     *TokenCounter
}

// NewManager constructs a Manager. retryCount is the tenant policy's
// retry_count (§3 GlobalPolicy), bounding provider-level retries here.
func NewManager(retryCount int) *Manager {
	if retryCount <= 0 {
		retryCount = 3
	}
	return &Manager{retryCount: retryCount, backoff: 250 * time.Millisecond, tokens: NewTokenCounter()}
}

// buildChatModel resolves ref.Provider to a registered plugin and builds a
// fresh eino BaseChatModel bound to cfg.
func (m *Manager) buildChatModel(ctx context.Context, ref entity.ModelRef, cfg spi.Config) (model.BaseChatModel, error) {
	plugin, err := provider.Get(ref.Provider)
	if err != nil {
		return nil, entity.NewFailoverErrorFromCause(err, ref.Provider, ref.Model)
	}
	cfg.Model = ref.Model
	bcm, err := plugin.BuildChatModel(ctx, cfg)
	if err != nil {
		return nil, entity.NewFailoverErrorFromCause(err, ref.Provider, ref.Model)
	}
	return bcm, nil
}

func toSchemaMessages(msgs []entity.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &schema.Message{Role: schema.RoleType(m.Role), Content: m.Content})
	}
	return out
}

// toModelOptions translates the spec's provider-neutral Params into eino's
// per-call model.Option, leaving a field at the provider's own default when
// the caller didn't set it.
func toModelOptions(params entity.Params) []model.Option {
	var opts []model.Option
	if params.Temperature > 0 {
		opts = append(opts, model.WithTemperature(float32(params.Temperature)))
	}
	if params.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(params.MaxTokens))
	}
	if len(params.Stop) > 0 {
		opts = append(opts, model.WithStop(params.Stop))
	}
	return opts
}

// estimateTokens is a crude whitespace-token estimate used when a provider
// response carries no usage block (not every eino component populates
// ResponseMeta.Usage). It is only a fallback; real usage is preferred.
func estimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Fields(s))
}

func usageFromMessage(msg *schema.Message, fallbackPrompt, fallbackCompletion int) entity.Usage {
	if msg != nil && msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		u := msg.ResponseMeta.Usage
		return entity.Usage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	return entity.Usage{
		PromptTokens:     fallbackPrompt,
		CompletionTokens: fallbackCompletion,
		TotalTokens:      fallbackPrompt + fallbackCompletion,
	}
}

// Complete implements §4.7's Complete(messages, params) → (text, usage),
// with bounded exponential backoff on retryable failures.
func (m *Manager) Complete(ctx context.Context, tenantID string, ref entity.ModelRef, cfg spi.Config, msgs []entity.Message, params entity.Params) (entity.ChatResult, error) {
	bcm, err := m.buildChatModel(ctx, ref, cfg)
	if err != nil {
		return entity.ChatResult{}, err
	}

	input := toSchemaMessages(msgs)
	opts := toModelOptions(params)
	promptTokens := 0
	for _, mm := range msgs {
		promptTokens += estimateTokens(mm.Content)
	}

	var lastErr error
	wait := m.backoff
	for attempt := 0; attempt < m.retryCount; attempt++ {
		if ctx.Err() != nil {
			return entity.ChatResult{}, ctx.Err()
		}
		msg, err := bcm.Generate(ctx, input, opts...)
		if err == nil {
			usage := usageFromMessage(msg, promptTokens, estimateTokens(msg.Content))
			m.tokens.Add(tenantID, usage)
			metrics.LLMTokensTotal.WithLabelValues(tenantID, ref.Provider).Add(float64(usage.TotalTokens))
			return entity.ChatResult{Text: msg.Content, Usage: usage}, nil
		}
		lastErr = entity.NewFailoverErrorFromCause(err, ref.Provider, ref.Model)
		reason := entity.ClassifyError(lastErr)
		log.Warnf("tenant=%s provider=%s model=%s attempt=%d reason=%s error=%v", tenantID, ref.Provider, ref.Model, attempt, reason, err)
		if !reason.IsRetryable() {
			break
		}
		select {
		case <-ctx.Done():
			return entity.ChatResult{}, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return entity.ChatResult{}, lastErr
}

// Stream implements §4.7's Stream(messages, params) → stream of delta. The
// returned channel is closed when the stream ends (error or completion);
// callers must drain it or cancel ctx to avoid leaking the underlying eino
// stream reader.
func (m *Manager) Stream(ctx context.Context, tenantID string, ref entity.ModelRef, cfg spi.Config, msgs []entity.Message, params entity.Params) (<-chan entity.Delta, error) {
	bcm, err := m.buildChatModel(ctx, ref, cfg)
	if err != nil {
		return nil, err
	}

	sr, err := bcm.Stream(ctx, toSchemaMessages(msgs), toModelOptions(params)...)
	if err != nil {
		return nil, entity.NewFailoverErrorFromCause(err, ref.Provider, ref.Model)
	}

	out := make(chan entity.Delta)
	go func() {
		defer close(out)
		defer sr.Close()
		var completion strings.Builder
		promptTokens := 0
		for _, mm := range msgs {
			promptTokens += estimateTokens(mm.Content)
		}
		for {
			chunk, err := sr.Recv()
			if err != nil {
				usage := entity.Usage{PromptTokens: promptTokens, CompletionTokens: estimateTokens(completion.String())}
				usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
				m.tokens.Add(tenantID, usage)
				metrics.LLMTokensTotal.WithLabelValues(tenantID, ref.Provider).Add(float64(usage.TotalTokens))
				select {
				case out <- entity.Delta{Done: true, Usage: usage}:
				case <-ctx.Done():
				}
				return
			}
			completion.WriteString(chunk.Content)
			select {
			case out <- entity.Delta{Content: chunk.Content}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
