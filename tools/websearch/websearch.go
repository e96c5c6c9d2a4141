// Package websearch provides a web search tool backed by the Tavily API.
package websearch

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	tavilygo "github.com/diverged/tavily-go"
	tavilyModels "github.com/diverged/tavily-go/models"
	"github.com/tessellate-ai/agentools/pkg/schema"
	"github.com/tessellate-ai/agentools/tools"
)

const (
	ToolName = "web_search"

	DefaultMaxResults = 5
)

var inputSchema = schema.MustDefinition(
	schema.Field{
		Name:        "query",
		Type:        schema.String,
		Description: "The query to search the web for.",
		Required:    true,
	},
	schema.Field{
		Name:        "max_results",
		Type:        schema.Integer,
		Description: "Maximum number of results to return.",
		Minimum:     schema.Float(1),
		Maximum:     schema.Float(10),
	},
)

var outputSchema = schema.MustDefinition(
	schema.Field{
		Name:        "results",
		Type:        schema.Array,
		Description: "The results from the web search.",
		Required:    true,
		Items: &schema.Field{
			Type: schema.Object,
			Properties: []schema.Field{
				{Name: "title", Type: schema.String, Required: true},
				{Name: "url", Type: schema.String, Required: true},
				{Name: "content", Type: schema.String, Required: true},
				{Name: "score", Type: schema.Number},
			},
		},
	},
	schema.Field{
		Name:        "answer",
		Type:        schema.String,
		Description: "The aggregated answer from the web search.",
	},
)

// Options configure the search capability.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Option is a functional option for the search tool.
type Option func(*Options)

// WithAPIKey passes the Tavily API key. If not set, the key is read from the
// TAVILY_API_KEY environment variable.
func WithAPIKey(key string) Option {
	return func(o *Options) {
		o.APIKey = key
	}
}

// WithBaseURL overrides the Tavily endpoint. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(o *Options) {
		o.BaseURL = baseURL
	}
}

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = client
	}
}

// New returns a web search tool.
func New(opts ...Option) (*tools.Tool, error) {
	options := &Options{
		APIKey:     os.Getenv("TAVILY_API_KEY"),
		HTTPClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.APIKey == "" {
		return nil, errors.New("websearch: TAVILY_API_KEY is not set")
	}

	h := &handler{opts: options}
	return tools.New(tools.Spec{
		Name:        ToolName,
		Description: "Searches the web and returns relevant results with an aggregated answer.",
		Input:       inputSchema,
		Output:      outputSchema,
	}, h)
}

type handler struct {
	opts *Options
}

func (h *handler) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("websearch: empty query")
	}

	maxResults := DefaultMaxResults
	switch n := args["max_results"].(type) {
	case float64:
		maxResults = int(n)
	case int:
		maxResults = n
	}

	client := tavilygo.NewClient(h.opts.APIKey)
	if h.opts.BaseURL != "" {
		client.BaseURL = h.opts.BaseURL
	}
	if h.opts.HTTPClient != nil {
		client.HTTPClient = h.opts.HTTPClient
	}

	searchReq := tavilyModels.SearchRequest{
		Query:         query,
		SearchDepth:   "basic",
		IncludeAnswer: true,
		MaxResults:    maxResults,
	}

	searchResp, err := tavilygo.Search(client, searchReq)
	if err != nil {
		return nil, classify(err)
	}

	results := make([]any, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		results = append(results, map[string]any{
			"title":   r.Title,
			"url":     r.URL,
			"content": r.Content,
			"score":   r.Score,
		})
	}
	out := map[string]any{
		"results": results,
	}
	if searchResp.Answer != "" {
		out["answer"] = searchResp.Answer
	}
	return out, nil
}

// classify marks provider failures so the contract layer reports
// authentication and quota errors distinctly.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key"):
		return errors.Mark(errors.WithMessage(err, "websearch"), tools.ErrAuthentication)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests"):
		return errors.Mark(errors.WithMessage(err, "websearch"), tools.ErrRateLimit)
	default:
		return errors.WithMessage(err, "websearch: search failed")
	}
}
