package webfetch_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tessellate-ai/agentools/tools"
	"github.com/tessellate-ai/agentools/tools/webfetch"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>hello</body></html>")
	}))
	t.Cleanup(srv.Close)

	tool, err := webfetch.New()
	require.NoError(t, err)
	assert.Equal(t, webfetch.ToolName, tool.Name())

	res := tool.Call(context.Background(), fmt.Sprintf(`{"url":%q}`, srv.URL))
	require.True(t, res.OK(), "unexpected error: %v", res.Error)
	assert.Equal(t, srv.URL, res.Value["url"])
	assert.Equal(t, http.StatusOK, res.Value["status"])
	assert.Equal(t, "text/html", res.Value["content_type"])
	assert.Equal(t, "<html><body>hello</body></html>", res.Value["content"])
	assert.Equal(t, false, res.Value["truncated"])
}

func TestFetch_Truncation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("x", 100))
	}))
	t.Cleanup(srv.Close)

	tool, err := webfetch.New()
	require.NoError(t, err)

	res := tool.Call(context.Background(), fmt.Sprintf(`{"url":%q,"max_bytes":10}`, srv.URL))
	require.True(t, res.OK(), "unexpected error: %v", res.Error)
	assert.Equal(t, strings.Repeat("x", 10), res.Value["content"])
	assert.Equal(t, true, res.Value["truncated"])
}

func TestFetch_InvalidURL(t *testing.T) {
	tool, err := webfetch.New()
	require.NoError(t, err)

	res := tool.Call(context.Background(), `{"url":"ftp://example.com/file"}`)
	require.False(t, res.OK())
	assert.Equal(t, tools.KindExecution, res.Error.Kind)
	assert.Contains(t, res.Error.Message, "unsupported URL scheme")

	res = tool.Call(context.Background(), `{"url":"https://"}`)
	require.False(t, res.OK())
	assert.Equal(t, tools.KindExecution, res.Error.Kind)

	res = tool.Call(context.Background(), `{}`)
	require.False(t, res.OK())
	assert.Equal(t, tools.KindValidation, res.Error.Kind)
}

func TestFetch_StatusClassification(t *testing.T) {
	tcases := []struct {
		name    string
		status  int
		expKind tools.Kind
	}{
		{"unauthorized", http.StatusUnauthorized, tools.KindAuthentication},
		{"forbidden", http.StatusForbidden, tools.KindAuthentication},
		{"rate limited", http.StatusTooManyRequests, tools.KindRateLimit},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))
			t.Cleanup(srv.Close)

			tool, err := webfetch.New()
			require.NoError(t, err)

			res := tool.Call(context.Background(), fmt.Sprintf(`{"url":%q}`, srv.URL))
			require.False(t, res.OK())
			assert.Equal(t, tc.expKind, res.Error.Kind)
		})
	}
}

func TestFetch_NotFoundPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	tool, err := webfetch.New()
	require.NoError(t, err)

	// non-auth error statuses are data, not failures
	res := tool.Call(context.Background(), fmt.Sprintf(`{"url":%q}`, srv.URL))
	require.True(t, res.OK(), "unexpected error: %v", res.Error)
	assert.Equal(t, http.StatusNotFound, res.Value["status"])
}
