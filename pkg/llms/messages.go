package llms

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrUnexpectedRole is returned when a message role is of an unexpected type.
var ErrUnexpectedRole = errors.New("unexpected role")

// Role is the type of chat message.
type Role string

const (
	// RoleAI is a message sent by the model.
	RoleAI Role = "ai"
	// RoleHuman is a message sent by a human.
	RoleHuman Role = "human"
	// RoleSystem is a message sent by the system.
	RoleSystem Role = "system"
	// RoleTool is a message carrying a tool execution result.
	RoleTool Role = "tool"
)

// Message is one entry of a transcript. It has a role and a sequence of
// parts: plain text, tool calls requested by the model, or tool responses.
type Message struct {
	Role  Role          `json:"role"`
	Parts []ContentPart `json:"parts"`
}

// ContentPart is an interface all parts of content have to implement.
type ContentPart interface {
	isPart()
}

// TextPart creates TextContent from a given string.
func TextPart(s string) TextContent {
	return TextContent{Text: s}
}

// TextContent is content with some text.
type TextContent struct {
	Text string `json:"text"`
}

func (tc TextContent) String() string {
	return tc.Text
}

func (TextContent) isPart() {}

// FunctionCall is the name and arguments of a function call.
type FunctionCall struct {
	// The name of the function to call.
	Name string `json:"name"`
	// The arguments to pass to the function, as a JSON string.
	Arguments string `json:"arguments"`
}

// ToolCall is a call to a tool (as requested by the model) that should be executed.
type ToolCall struct {
	// ID is the unique identifier of the tool call.
	ID string `json:"id"`
	// Type is the type of the tool call. Typically, this would be "function".
	Type string `json:"type"`
	// FunctionCall is the function call to be executed.
	FunctionCall *FunctionCall `json:"function,omitempty"`
}

func (tc ToolCall) String() string {
	return fmt.Sprintf("ToolCall: %s (%s), input: %s", tc.ID, tc.FunctionCall.Name, tc.FunctionCall.Arguments)
}

func (ToolCall) isPart() {}

// ToolCallResponse is the response returned by a tool call.
type ToolCallResponse struct {
	// ToolCallID is the ID of the tool call this response is for.
	ToolCallID string `json:"tool_call_id"`
	// Name is the name of the tool that was called.
	Name string `json:"name"`
	// Content is the textual content of the response.
	Content string `json:"content"`
}

func (tc ToolCallResponse) String() string {
	return fmt.Sprintf("ToolCallResponse: %s (%s), response size: %d", tc.ToolCallID, tc.Name, len(tc.Content))
}

func (ToolCallResponse) isPart() {}

// ContentResponse is the response returned by a GenerateContent call.
// It can potentially return multiple content choices.
type ContentResponse struct {
	Choices []*ContentChoice
}

// ContentChoice is one of the response choices returned by GenerateContent calls.
type ContentChoice struct {
	// Content is the textual content of a response
	Content string `json:"content"`

	// StopReason is the reason the model stopped generating output.
	StopReason string `json:"stop_reason"`

	// GenerationInfo is arbitrary information the model adds to the response.
	GenerationInfo map[string]any `json:"generation_info"`

	// ToolCalls is a list of tool calls the model asks to invoke.
	ToolCalls []ToolCall `json:"tool_calls"`
}

// MessageFromParts creates a Message with a role and a list of parts.
func MessageFromParts(role Role, parts ...ContentPart) Message {
	return Message{
		Role:  role,
		Parts: parts,
	}
}

// MessageFromTextParts creates a Message with a role and a list of text parts.
func MessageFromTextParts(role Role, parts ...string) Message {
	result := Message{
		Role:  role,
		Parts: make([]ContentPart, 0, len(parts)),
	}
	for _, part := range parts {
		result.Parts = append(result.Parts, TextPart(part))
	}
	return result
}

// MessageFromToolCalls creates a Message with a role and a list of tool calls.
func MessageFromToolCalls(role Role, toolCalls ...ToolCall) Message {
	result := Message{
		Role:  role,
		Parts: make([]ContentPart, 0, len(toolCalls)),
	}
	for _, tc := range toolCalls {
		result.Parts = append(result.Parts, tc)
	}
	return result
}

// MessageFromToolResponse creates a Message with a role and a tool response.
func MessageFromToolResponse(role Role, response ToolCallResponse) Message {
	return Message{
		Role:  role,
		Parts: []ContentPart{response},
	}
}
