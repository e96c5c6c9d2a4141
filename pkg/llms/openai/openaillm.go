package openai

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/pkg/llms/openai/internal/openaiclient"
)

type ChatMessage = openaiclient.ChatMessage

const (
	RoleSystem    = "system"
	RoleAssistant = "assistant"
	RoleUser      = "user"
	RoleTool      = "tool"
)

var ErrEmptyResponse = errors.New("openai: no response")

// LLM is a chat model served over the OpenAI chat completions API. The same
// implementation serves OpenRouter, which speaks the identical wire format.
type LLM struct {
	client       *openaiclient.Client
	model        string
	providerType llms.ProviderType
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	options, c, err := newClient(opts...)
	if err != nil {
		return nil, err
	}
	return &LLM{
		client:       c,
		model:        options.model,
		providerType: options.providerType,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return o.providerType
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	chatMsgs := make([]*ChatMessage, 0, len(messages))
	for _, mc := range messages {
		msg, err := chatMessageFromMessage(mc)
		if err != nil {
			return nil, err
		}
		chatMsgs = append(chatMsgs, msg)
	}

	req := &openaiclient.ChatRequest{
		Model:               opts.Model,
		Messages:            chatMsgs,
		Temperature:         opts.Temperature,
		TopP:                opts.TopP,
		MaxCompletionTokens: opts.MaxTokens,
		StopWords:           opts.StopWords,
		ToolChoice:          opts.ToolChoice,
	}

	for _, tool := range opts.Tools {
		t, err := toolFromTool(tool)
		if err != nil {
			return nil, errors.Wrap(err, "openai: failed to convert tool")
		}
		req.Tools = append(req.Tools, t)
	}

	result, err := o.client.CreateChat(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: c.FinishReason,
			GenerationInfo: map[string]any{
				"CompletionTokens": result.Usage.CompletionTokens,
				"PromptTokens":     result.Usage.PromptTokens,
				"TotalTokens":      result.Usage.TotalTokens,
			},
		}
		for _, tool := range c.Message.ToolCalls {
			choices[i].ToolCalls = append(choices[i].ToolCalls, llms.ToolCall{
				ID:   tool.ID,
				Type: string(tool.Type),
				FunctionCall: &llms.FunctionCall{
					Name:      tool.Function.Name,
					Arguments: tool.Function.Arguments,
				},
			})
		}
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

// chatMessageFromMessage flattens a transcript message into the OpenAI wire
// shape: text parts joined as content, tool calls lifted into tool_calls, and
// tool responses mapped to "tool" role messages with a tool_call_id.
func chatMessageFromMessage(mc llms.Message) (*ChatMessage, error) {
	msg := &ChatMessage{}
	switch mc.Role {
	case llms.RoleSystem:
		msg.Role = RoleSystem
	case llms.RoleAI:
		msg.Role = RoleAssistant
	case llms.RoleHuman:
		msg.Role = RoleUser
	case llms.RoleTool:
		msg.Role = RoleTool
		if len(mc.Parts) != 1 {
			return nil, errors.Errorf("openai: expected exactly one part for role %v, got %v", mc.Role, len(mc.Parts))
		}
		p, ok := mc.Parts[0].(llms.ToolCallResponse)
		if !ok {
			return nil, errors.Errorf("openai: expected part of type ToolCallResponse for role %v, got %T", mc.Role, mc.Parts[0])
		}
		msg.ToolCallID = p.ToolCallID
		msg.Content = p.Content
		return msg, nil
	default:
		return nil, errors.WithMessagef(llms.ErrUnexpectedRole, "openai: %v", mc.Role)
	}

	var texts []string
	for _, part := range mc.Parts {
		switch p := part.(type) {
		case llms.TextContent:
			texts = append(texts, p.Text)
		case llms.ToolCall:
			msg.ToolCalls = append(msg.ToolCalls, openaiclient.ToolCall{
				ID:   p.ID,
				Type: openaiclient.ToolType(p.Type),
				Function: openaiclient.ToolFunction{
					Name:      p.FunctionCall.Name,
					Arguments: p.FunctionCall.Arguments,
				},
			})
		default:
			return nil, errors.Errorf("openai: unsupported message part type: %T", part)
		}
	}
	msg.Content = strings.Join(texts, "\n")
	return msg, nil
}

// toolFromTool converts an llms.Tool to the wire Tool.
func toolFromTool(t llms.Tool) (openaiclient.Tool, error) {
	if t.Type != string(openaiclient.ToolTypeFunction) {
		return openaiclient.Tool{}, errors.Errorf("tool type %v not supported", t.Type)
	}
	return openaiclient.Tool{
		Type: openaiclient.ToolTypeFunction,
		Function: openaiclient.FunctionDefinition{
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		},
	}, nil
}
