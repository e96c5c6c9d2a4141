package anthropic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/pkg/llms/anthropic"
	"github.com/tessellate-ai/agentools/pkg/schema"
	"github.com/tessellate-ai/agentools/tools"
)

func TestNew_Validation(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := anthropic.New(anthropic.WithModel("claude-sonnet-4-20250514"))
	assert.ErrorIs(t, err, anthropic.ErrMissingToken)

	_, err = anthropic.New(anthropic.WithToken("sk-test"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is required")

	llm, err := anthropic.New(
		anthropic.WithToken("sk-test"),
		anthropic.WithModel("claude-sonnet-4-20250514"),
	)
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-20250514", llm.GetName())
	assert.Equal(t, llms.ProviderAnthropic, llm.GetProviderType())
}

func TestProcessMessages(t *testing.T) {
	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "be brief"),
		llms.MessageFromTextParts(llms.RoleSystem, "be kind"),
		llms.MessageFromTextParts(llms.RoleHuman, "search the web"),
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:   "call_1",
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      "web_search",
				Arguments: `{"query":"weather"}`,
			},
		}),
		llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: "call_1",
			Name:       "web_search",
			Content:    `{"value":{"answer":"sunny"}}`,
		}),
	}

	sdkMessages, systemPrompt, err := anthropic.ProcessMessages(messages)
	require.NoError(t, err)
	// system messages are lifted out of the transcript and joined
	assert.Equal(t, "be brief\nbe kind", systemPrompt)
	require.Len(t, sdkMessages, 3)
	assert.Equal(t, "user", string(sdkMessages[0].Role))
	assert.Equal(t, "assistant", string(sdkMessages[1].Role))
	// tool results ride on a user message
	assert.Equal(t, "user", string(sdkMessages[2].Role))
}

func TestProcessMessages_Invalid(t *testing.T) {
	_, _, err := anthropic.ProcessMessages([]llms.Message{
		llms.MessageFromTextParts("bogus", "hi"),
	})
	assert.ErrorIs(t, err, anthropic.ErrUnsupportedMessageType)

	// tool call arguments must be valid JSON
	_, _, err = anthropic.ProcessMessages([]llms.Message{
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:           "call_1",
			FunctionCall: &llms.FunctionCall{Name: "echo", Arguments: "not json"},
		}),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal tool call arguments")
}

func TestToTools(t *testing.T) {
	assert.Nil(t, anthropic.ToTools(nil))

	def := schema.MustDefinition(
		schema.Field{Name: "query", Type: schema.String, Required: true},
		schema.Field{Name: "max_results", Type: schema.Integer},
	)
	tool, err := tools.New(tools.Spec{
		Name:        "web_search",
		Description: "Searches the web.",
		Input:       def,
		Output:      def,
	}, tools.HandlerFunc(func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	}))
	require.NoError(t, err)

	sdkTools := anthropic.ToTools([]llms.Tool{tool.Definition()})
	require.Len(t, sdkTools, 1)
	require.NotNil(t, sdkTools[0].OfTool)
	assert.Equal(t, "web_search", sdkTools[0].OfTool.Name)
	assert.Equal(t, "object", string(sdkTools[0].OfTool.InputSchema.Type))
	assert.Equal(t, []string{"query"}, sdkTools[0].OfTool.InputSchema.Required)

	props := sdkTools[0].OfTool.InputSchema.Properties
	require.NotNil(t, props)
	assert.Contains(t, props, "query")
	assert.Contains(t, props, "max_results")
}
