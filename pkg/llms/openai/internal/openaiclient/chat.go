package openaiclient

import (
	"github.com/invopop/jsonschema"
)

// ToolType is the type of a tool.
type ToolType string

const (
	ToolTypeFunction ToolType = "function"
)

// ChatRequest is a request to complete a chat.
type ChatRequest struct {
	Model               string         `json:"model"`
	Messages            []*ChatMessage `json:"messages"`
	Temperature         float64        `json:"temperature,omitempty"`
	TopP                float64        `json:"top_p,omitempty"`
	MaxCompletionTokens int            `json:"max_completion_tokens,omitempty"`
	StopWords           []string       `json:"stop,omitempty"`

	Tools      []Tool `json:"tools,omitempty"`
	ToolChoice any    `json:"tool_choice,omitempty"`
}

// ChatMessage is a message in a chat request.
type ChatMessage struct {
	// Role is one of "system", "user", "assistant", "tool".
	Role    string `json:"role"`
	Content string `json:"content"`

	// ToolCalls is the assistant's requested tool invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID identifies the call a "tool" role message responds to.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// Tool is a tool the model may call.
type Tool struct {
	Type     ToolType           `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function.
type FunctionDefinition struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     ToolType     `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction carries the function name and JSON-encoded arguments.
type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatCompletionResponse is a response to a chat request.
type ChatCompletionResponse struct {
	ID      string                  `json:"id"`
	Created int64                   `json:"created"`
	Model   string                  `json:"model"`
	Choices []*ChatCompletionChoice `json:"choices"`
	Usage   ChatUsage               `json:"usage"`
}

// ChatCompletionChoice is one of the response choices.
type ChatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatUsage is the token accounting of a completion.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
