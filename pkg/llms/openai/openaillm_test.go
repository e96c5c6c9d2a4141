package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/pkg/llms/openai"
	"github.com/tessellate-ai/agentools/pkg/schema"
	"github.com/tessellate-ai/agentools/tools"
)

func TestNew_Validation(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := openai.New(openai.WithModel("gpt-5-mini"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing API key")

	llm, err := openai.New(
		openai.WithToken("sk-test"),
		openai.WithModel("gpt-5-mini"),
	)
	require.NoError(t, err)
	assert.Equal(t, "gpt-5-mini", llm.GetName())
	assert.Equal(t, llms.ProviderOpenAI, llm.GetProviderType())

	router, err := openai.New(
		openai.WithToken("sk-test"),
		openai.WithModel("qwen/qwen3-30b"),
		openai.WithBaseURL(openai.OpenRouterBaseURL),
		openai.WithProviderType(llms.ProviderOpenRouter),
	)
	require.NoError(t, err)
	assert.Equal(t, llms.ProviderOpenRouter, router.GetProviderType())
}

func TestGenerateContent(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-5-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "tool_calls",
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{{
						"id":   "call_1",
						"type": "function",
						"function": map[string]any{
							"name":      "web_search",
							"arguments": `{"query":"golang"}`,
						},
					}},
				},
			}},
			"usage": map[string]any{
				"prompt_tokens":     12,
				"completion_tokens": 7,
				"total_tokens":      19,
			},
		})
	}))
	t.Cleanup(srv.Close)

	llm, err := openai.New(
		openai.WithToken("sk-test"),
		openai.WithModel("gpt-5-mini"),
		openai.WithBaseURL(srv.URL),
	)
	require.NoError(t, err)

	def := schema.MustDefinition(schema.Field{Name: "query", Type: schema.String, Required: true})
	tool, err := tools.New(tools.Spec{
		Name:        "web_search",
		Description: "Searches the web.",
		Input:       def,
		Output:      def,
	}, tools.HandlerFunc(func(ctx context.Context, args map[string]any) (map[string]any, error) {
		return map[string]any{}, nil
	}))
	require.NoError(t, err)

	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "be helpful"),
		llms.MessageFromTextParts(llms.RoleHuman, "search golang"),
	}
	resp, err := llm.GenerateContent(context.Background(), messages,
		llms.WithModel("gpt-5-mini"),
		llms.WithMaxTokens(256),
		llms.WithTools([]llms.Tool{tool.Definition()}),
	)
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "tool_calls", resp.Choices[0].StopReason)
	require.Len(t, resp.Choices[0].ToolCalls, 1)
	assert.Equal(t, "call_1", resp.Choices[0].ToolCalls[0].ID)
	assert.Equal(t, "web_search", resp.Choices[0].ToolCalls[0].FunctionCall.Name)

	// request carried roles, tools and limits in the wire format
	assert.Equal(t, "gpt-5-mini", gotReq["model"])
	assert.Equal(t, float64(256), gotReq["max_completion_tokens"])
	reqMsgs := gotReq["messages"].([]any)
	require.Len(t, reqMsgs, 2)
	assert.Equal(t, "system", reqMsgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", reqMsgs[1].(map[string]any)["role"])
	reqTools := gotReq["tools"].([]any)
	require.Len(t, reqTools, 1)
}

func TestGenerateContent_ToolRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		msgs := req["messages"].([]any)

		// assistant tool_calls and the tool response must survive conversion
		assistant := msgs[2].(map[string]any)
		require.Equal(t, "assistant", assistant["role"])
		require.Len(t, assistant["tool_calls"].([]any), 1)
		toolMsg := msgs[3].(map[string]any)
		require.Equal(t, "tool", toolMsg["role"])
		require.Equal(t, "call_1", toolMsg["tool_call_id"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "chatcmpl-2",
			"choices": []map[string]any{{
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": "It is sunny.",
				},
			}},
		})
	}))
	t.Cleanup(srv.Close)

	llm, err := openai.New(
		openai.WithToken("sk-test"),
		openai.WithModel("gpt-5-mini"),
		openai.WithBaseURL(srv.URL),
	)
	require.NoError(t, err)

	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "be helpful"),
		llms.MessageFromTextParts(llms.RoleHuman, "weather?"),
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:           "call_1",
			Type:         "function",
			FunctionCall: &llms.FunctionCall{Name: "web_search", Arguments: `{"query":"weather"}`},
		}),
		llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: "call_1",
			Name:       "web_search",
			Content:    `{"value":{"answer":"sunny"}}`,
		}),
	}
	resp, err := llm.GenerateContent(context.Background(), messages)
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "It is sunny.", resp.Choices[0].Content)
}

func TestGenerateContent_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	t.Cleanup(srv.Close)

	llm, err := openai.New(
		openai.WithToken("sk-bad"),
		openai.WithModel("gpt-5-mini"),
		openai.WithBaseURL(srv.URL),
	)
	require.NoError(t, err)

	_, err = llm.GenerateContent(context.Background(),
		[]llms.Message{llms.MessageFromTextParts(llms.RoleHuman, "hi")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Contains(t, err.Error(), "401")
}
