package openaiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultChatModel = "gpt-5-mini"
)

// ErrEmptyResponse is returned when the API returns an empty response.
var ErrEmptyResponse = errors.New("empty response")

// Client is a client for OpenAI-compatible chat completion APIs. OpenRouter
// exposes the same wire format, so the same client serves both.
type Client struct {
	Model string

	token        string
	baseURL      string
	organization string
	httpClient   Doer
}

// Doer performs a HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// New returns a new OpenAI client.
func New(model, token, baseURL, organization string, httpClient Doer) (*Client, error) {
	c := &Client{
		Model:        model,
		token:        token,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		organization: organization,
		httpClient:   httpClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	return c, nil
}

// CreateChat creates chat request.
func (c *Client) CreateChat(ctx context.Context, r *ChatRequest) (*ChatCompletionResponse, error) {
	if r.Model == "" {
		if c.Model == "" {
			r.Model = DefaultChatModel
		} else {
			r.Model = c.Model
		}
	}
	resp, err := c.createChat(ctx, r)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}
	return resp, nil
}

func (c *Client) createChat(ctx context.Context, payload *ChatRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("/chat/completions"), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.decodeError(resp)
	}

	var response ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, errors.Wrap(err, "failed to decode chat response")
	}
	return &response, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.organization != "" {
		req.Header.Set("OpenAI-Organization", c.organization)
	}
}

func (c *Client) buildURL(suffix string) string {
	return fmt.Sprintf("%s%s", c.baseURL, suffix)
}

type errorMessage struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) decodeError(resp *http.Response) error {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Errorf("API returned unexpected status code: %d", resp.StatusCode)
	}

	var msg errorMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Error.Message == "" {
		return errors.Errorf("API returned unexpected status code: %d, body: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return errors.Errorf("API returned error: %s (status %d)", msg.Error.Message, resp.StatusCode)
}
