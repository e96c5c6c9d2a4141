// Package webfetch provides a tool that fetches a URL and returns its body
// as text, bounded in size.
package webfetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tessellate-ai/agentools/pkg/schema"
	"github.com/tessellate-ai/agentools/tools"
)

const (
	ToolName = "web_fetch"

	// DefaultMaxBytes bounds the fetched body when the caller does not.
	DefaultMaxBytes = 256 << 10
	// HardMaxBytes is the upper bound a caller may request.
	HardMaxBytes = 2 << 20
)

var inputSchema = schema.MustDefinition(
	schema.Field{
		Name:        "url",
		Type:        schema.String,
		Description: "The http or https URL to fetch.",
		Required:    true,
	},
	schema.Field{
		Name:        "max_bytes",
		Type:        schema.Integer,
		Description: "Maximum number of body bytes to return.",
		Minimum:     schema.Float(1),
		Maximum:     schema.Float(HardMaxBytes),
	},
)

var outputSchema = schema.MustDefinition(
	schema.Field{
		Name:     "url",
		Type:     schema.String,
		Required: true,
	},
	schema.Field{
		Name:        "status",
		Type:        schema.Integer,
		Description: "The HTTP status code of the response.",
		Required:    true,
	},
	schema.Field{
		Name: "content_type",
		Type: schema.String,
	},
	schema.Field{
		Name:        "content",
		Type:        schema.String,
		Description: "The response body, truncated to the byte limit.",
		Required:    true,
	},
	schema.Field{
		Name:        "truncated",
		Type:        schema.Boolean,
		Description: "Whether the body was cut at the byte limit.",
		Required:    true,
	},
)

// Options configure the fetch capability.
type Options struct {
	HTTPClient *http.Client
	UserAgent  string
}

// Option is a functional option for the fetch tool.
type Option func(*Options)

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// WithUserAgent sets the User-Agent header on outgoing requests.
func WithUserAgent(ua string) Option {
	return func(o *Options) {
		o.UserAgent = ua
	}
}

// New returns a web fetch tool.
func New(opts ...Option) (*tools.Tool, error) {
	options := &Options{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		UserAgent:  "agentools-webfetch/1.0",
	}
	for _, opt := range opts {
		opt(options)
	}

	h := &handler{opts: options}
	return tools.New(tools.Spec{
		Name:        ToolName,
		Description: "Fetches a web page over HTTP(S) and returns its body as text.",
		Input:       inputSchema,
		Output:      outputSchema,
	}, h)
}

type handler struct {
	opts *Options
}

func (h *handler) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	rawURL, _ := args["url"].(string)

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "webfetch: invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Newf("webfetch: unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("webfetch: URL host is required")
	}

	maxBytes := DefaultMaxBytes
	switch n := args["max_bytes"].(type) {
	case float64:
		maxBytes = int(n)
	case int:
		maxBytes = n
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "webfetch: failed to create request")
	}
	req.Header.Set("User-Agent", h.opts.UserAgent)

	resp, err := h.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "webfetch: request failed")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, errors.Mark(errors.Newf("webfetch: %s returned status %d", u.Host, resp.StatusCode), tools.ErrAuthentication)
	case http.StatusTooManyRequests:
		return nil, errors.Mark(errors.Newf("webfetch: %s returned status %d", u.Host, resp.StatusCode), tools.ErrRateLimit)
	}

	// read one extra byte to detect truncation
	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxBytes)+1))
	if err != nil {
		return nil, errors.Wrap(err, "webfetch: failed to read body")
	}
	truncated := len(body) > maxBytes
	if truncated {
		body = body[:maxBytes]
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	return map[string]any{
		"url":          u.String(),
		"status":       resp.StatusCode,
		"content_type": contentType,
		"content":      string(body),
		"truncated":    truncated,
	}, nil
}
