package llms_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentools/pkg/llms"
)

func TestMessageRoundTrip(t *testing.T) {
	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "be helpful"),
		llms.MessageFromTextParts(llms.RoleHuman, "what is the weather?"),
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
		llms.MessageFromTextParts(llms.RoleAI, "It is sunny."),
	}

	for _, msg := range messages {
		bs, err := json.Marshal(msg)
		require.NoError(t, err)

		var got llms.Message
		require.NoError(t, json.Unmarshal(bs, &got))
		if diff := cmp.Diff(msg, got); diff != "" {
			t.Errorf("message did not round-trip (-want +got):\n%s", diff)
		}
	}
}

func TestMessageUnmarshal_Invalid(t *testing.T) {
	var msg llms.Message
	err := json.Unmarshal([]byte(`{"role":"ai","parts":[{"type":"image"}]}`), &msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content part type")

	err = json.Unmarshal([]byte(`{"role":"ai","parts":[{"type":"tool_call"}]}`), &msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool_call part without payload")
}

func TestProviderCapabilities(t *testing.T) {
	assert.True(t, llms.ProviderAnthropic.Supports(llms.CapabilityFunctionCalling))
	assert.True(t, llms.ProviderOpenAI.Supports(llms.CapabilityFunctionCalling|llms.CapabilitySystemPrompt))
	assert.True(t, llms.ProviderOpenRouter.Supports(llms.CapabilityMultiToolCalling))
	assert.False(t, llms.ProviderType("UNKNOWN").Supports(llms.CapabilityText))
}
