package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kiosk404/hivegate/internal/gateway/dispatch"
	"github.com/kiosk404/hivegate/internal/gateway/handler/middleware"
	"github.com/kiosk404/hivegate/internal/gateway/llm/entity"
	"github.com/kiosk404/hivegate/internal/gateway/tenant"
	"github.com/kiosk404/hivegate/internal/pkg/core"
	"github.com/kiosk404/hivegate/internal/pkg/errorx"
	"github.com/kiosk404/hivegate/internal/pkg/json"
	"github.com/kiosk404/hivegate/internal/pkg/logger"
)

var chatLog = logger.For("chat_completions")

// ChatCompletionsHandler handles POST /v1/chat/completions (§6.2): resolves
// the tenant, hands the request to the Dispatcher, and renders either a
// single JSON response or an SSE stream.
type ChatCompletionsHandler struct {
	registry   *tenant.Registry
	dispatcher *dispatch.Dispatcher
}

func NewChatCompletionsHandler(registry *tenant.Registry, dispatcher *dispatch.Dispatcher) *ChatCompletionsHandler {
	return &ChatCompletionsHandler{registry: registry, dispatcher: dispatcher}
}

func (h *ChatCompletionsHandler) Handle(c *gin.Context) {
	var req ChatCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, CodeBind, "bind chat completion request"), nil)
		return
	}

	if len(req.Messages) == 0 {
		core.WriteResponse(c, errorx.WithCode(CodeMessagesEmpty, "messages array is required and must not be empty"), nil)
		return
	}

	hint := middleware.HintFrom(c)
	rt, err := h.registry.Resolve(tenant.Hint{
		Header:     hint.Header,
		BearerKey:  hint.BearerKey,
		ModelField: req.Model,
		BodyTenant: req.TenantID,
	})
	if err != nil {
		core.WriteResponse(c, err, nil)
		return
	}

	messages := make([]entity.Message, 0, len(req.Messages))
	var hasUser bool
	for _, m := range req.Messages {
		role := entity.RoleUser
		switch m.Role {
		case "system", "developer":
			role = entity.RoleSystem
		case "assistant":
			role = entity.RoleAssistant
		case "user":
			hasUser = true
		}
		messages = append(messages, entity.Message{Role: role, Content: m.Content})
	}
	if !hasUser {
		core.WriteResponse(c, errorx.WithCode(CodeNoUserMessage, "no user message found in messages array"), nil)
		return
	}

	params := entity.Params{}
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}

	chatReq := dispatch.ChatRequest{
		Messages:  messages,
		ModelHint: req.Model,
		Stream:    req.Stream,
		TenantID:  rt.Config.ID,
		AgentType: tenant.AgentType(req.AgentType),
		Overrides: params,
	}

	completionID := "chatcmpl-" + uuid.New().String()[:8]
	model := req.Model
	if model == "" {
		model = rt.Config.Model
	}

	outcome := h.dispatcher.Dispatch(c.Request.Context(), chatReq, rt, h.registry.Policy())
	if outcome.Kind == dispatch.OutcomeFatal {
		core.WriteResponse(c, errorx.WrapC(outcome.Err, CodeDispatchFailed, "dispatch chat request"), nil)
		return
	}

	if req.Stream {
		h.handleStream(c, outcome, completionID, model)
		return
	}
	h.handleNonStream(c, outcome, completionID, model)
}

func (h *ChatCompletionsHandler) handleNonStream(c *gin.Context, outcome dispatch.Outcome, completionID, model string) {
	core.WriteResponse(c, nil, ChatCompletionResponse{
		ID:      completionID,
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []ChatCompletionChoice{{
			Index:        0,
			Message:      &ChatMessage{Role: "assistant", Content: outcome.Answer},
			FinishReason: "stop",
		}},
		Usage: &ChatCompletionUsage{
			PromptTokens:     int64(outcome.Usage.PromptTokens),
			CompletionTokens: int64(outcome.Usage.CompletionTokens),
			TotalTokens:      int64(outcome.Usage.TotalTokens),
		},
		Sources: outcome.Sources,
	})
}

// handleStream emits the whole answer as a single SSE delta chunk followed
// by a finish chunk. The Dispatcher's agents produce an answer only once
// fully rendered (§4.3/§4.4 step 5), so there is no incremental token
// stream to relay here; streaming clients still get the OpenAI-compatible
// chunk/[DONE] framing they expect.
func (h *ChatCompletionsHandler) handleStream(c *gin.Context, outcome dispatch.Outcome, completionID, model string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	w := c.Writer
	created := time.Now().Unix()

	h.writeChunk(w, completionID, model, created, &ChatMessageDelta{Role: "assistant"}, nil)
	w.Flush()

	h.writeChunk(w, completionID, model, created, &ChatMessageDelta{Content: outcome.Answer}, nil)
	w.Flush()

	finishReason := "stop"
	h.writeChunk(w, completionID, model, created, &ChatMessageDelta{}, &finishReason)
	w.Flush()

	fmt.Fprintf(w, "data: [DONE]\n\n")
	w.Flush()
}

func (h *ChatCompletionsHandler) writeChunk(w gin.ResponseWriter, id, model string, created int64, delta *ChatMessageDelta, finishReason *string) {
	chunk := ChatCompletionChunk{
		ID:      id,
		Object:  "chat.completion.chunk",
		Created: created,
		Model:   model,
		Choices: []ChatCompletionChunkChoice{{Index: 0, Delta: delta, FinishReason: finishReason}},
	}
	data, err := json.Marshal(chunk)
	if err != nil {
		chatLog.Warnf("marshal chunk error: %v", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
