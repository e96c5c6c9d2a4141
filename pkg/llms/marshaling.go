package llms

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Wire models for transcript persistence. Each part is tagged with a
// "type" discriminator so a Message round-trips through JSON.

type contentPartJSON struct {
	Type         string            `json:"type"`
	Text         string            `json:"text,omitempty"`
	ToolCall     *ToolCall         `json:"tool_call,omitempty"`
	ToolResponse *ToolCallResponse `json:"tool_response,omitempty"`
}

type messageJSON struct {
	Role  Role              `json:"role"`
	Parts []contentPartJSON `json:"parts"`
}

// MarshalJSON implements json.Marshaler for Message.
func (m Message) MarshalJSON() ([]byte, error) {
	wire := messageJSON{
		Role:  m.Role,
		Parts: make([]contentPartJSON, 0, len(m.Parts)),
	}
	for _, part := range m.Parts {
		switch p := part.(type) {
		case TextContent:
			wire.Parts = append(wire.Parts, contentPartJSON{Type: "text", Text: p.Text})
		case ToolCall:
			tc := p
			wire.Parts = append(wire.Parts, contentPartJSON{Type: "tool_call", ToolCall: &tc})
		case ToolCallResponse:
			tr := p
			wire.Parts = append(wire.Parts, contentPartJSON{Type: "tool_response", ToolResponse: &tr})
		default:
			return nil, errors.Newf("unsupported content part type: %T", part)
		}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON implements json.Unmarshaler for Message.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire messageJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}
	m.Role = wire.Role
	m.Parts = make([]ContentPart, 0, len(wire.Parts))
	for _, part := range wire.Parts {
		switch part.Type {
		case "text":
			m.Parts = append(m.Parts, TextContent{Text: part.Text})
		case "tool_call":
			if part.ToolCall == nil {
				return errors.New("tool_call part without payload")
			}
			m.Parts = append(m.Parts, *part.ToolCall)
		case "tool_response":
			if part.ToolResponse == nil {
				return errors.New("tool_response part without payload")
			}
			m.Parts = append(m.Parts, *part.ToolResponse)
		default:
			return errors.Newf("unsupported content part type: %q", part.Type)
		}
	}
	return nil
}
