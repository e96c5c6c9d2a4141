package websearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentools/tools"
	"github.com/tessellate-ai/agentools/tools/websearch"
)

func newServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Setenv("TAVILY_API_KEY", "")
	_, err := websearch.New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TAVILY_API_KEY")
}

func TestSearch(t *testing.T) {
	srv := newServer(t, http.StatusOK, map[string]any{
		"query":  "what is golang",
		"answer": "Go is a programming language.",
		"results": []map[string]any{
			{
				"title":   "The Go Programming Language",
				"url":     "https://go.dev",
				"content": "Go is an open source programming language.",
				"score":   0.97,
			},
		},
	})

	tool, err := websearch.New(
		websearch.WithAPIKey("test-key"),
		websearch.WithBaseURL(srv.URL),
	)
	require.NoError(t, err)
	assert.Equal(t, websearch.ToolName, tool.Name())

	res := tool.Call(context.Background(), `{"query":"what is golang","max_results":3}`)
	require.True(t, res.OK(), "unexpected error: %v", res.Error)
	assert.Equal(t, "Go is a programming language.", res.Value["answer"])

	results, ok := res.Value["results"].([]any)
	require.True(t, ok)
	require.Len(t, results, 1)
	first, ok := results[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://go.dev", first["url"])
}

func TestSearch_InvalidArguments(t *testing.T) {
	tool, err := websearch.New(websearch.WithAPIKey("test-key"))
	require.NoError(t, err)

	res := tool.Call(context.Background(), `{}`)
	require.False(t, res.OK())
	assert.Equal(t, tools.KindValidation, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "query")

	res = tool.Call(context.Background(), `{"query":"x","max_results":50}`)
	require.False(t, res.OK())
	assert.Equal(t, tools.KindValidation, res.Error.Kind)
}

func TestSearch_ProviderFailures(t *testing.T) {
	tcases := []struct {
		name    string
		status  int
		expKind tools.Kind
	}{
		{"authentication", http.StatusUnauthorized, tools.KindAuthentication},
		{"rate limit", http.StatusTooManyRequests, tools.KindRateLimit},
		{"server error", http.StatusInternalServerError, tools.KindExecution},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newServer(t, tc.status, map[string]any{"error": "nope"})

			tool, err := websearch.New(
				websearch.WithAPIKey("test-key"),
				websearch.WithBaseURL(srv.URL),
			)
			require.NoError(t, err)

			res := tool.Call(context.Background(), `{"query":"anything"}`)
			require.False(t, res.OK())
			assert.Equal(t, tc.expKind, res.Error.Kind)
		})
	}
}
