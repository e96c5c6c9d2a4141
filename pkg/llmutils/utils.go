// Package llmutils provides hygiene helpers for model-produced text and
// small JSON conveniences shared across the module.
package llmutils

import (
	"bytes"
	"encoding/json"

	"github.com/tessellate-ai/agentools/pkg/llms"
)

// CleanJSON returns JSON by trimming prefixes and postfixes. This is more
// useful than BytesTrimBackticks, as a model can reply like
// `Here you go: {json}`.
func CleanJSON(bs []byte) []byte {
	return trimPostfixAfterJSON(trimPrefixBeforeJSON(bs))
}

// Removes any prefixes before the JSON (like "Sure, here you go:")
func trimPrefixBeforeJSON(bs []byte) []byte {
	startObject := bytes.IndexByte(bs, '{')
	startArray := bytes.IndexByte(bs, '[')

	var start int
	if startObject == -1 && startArray == -1 {
		return bs
	} else if startObject == -1 {
		start = startArray
	} else if startArray == -1 {
		start = startObject
	} else {
		start = min(startObject, startArray)
	}
	return bs[start:]
}

// Removes any postfixes after the JSON
func trimPostfixAfterJSON(bs []byte) []byte {
	endObject := bytes.LastIndexByte(bs, '}')
	endArray := bytes.LastIndexByte(bs, ']')

	var end int
	if endObject == -1 && endArray == -1 {
		return bs
	} else if endObject == -1 {
		end = endArray
	} else if endArray == -1 {
		end = endObject
	} else {
		end = max(endObject, endArray)
	}
	return bs[:end+1]
}

var backtick = []byte("```")

// BytesTrimBackticks removes ```json or ``` fences.
func BytesTrimBackticks(bs []byte) []byte {
	size := len(bs)
	startIndex := bytes.Index(bs, backtick)
	if startIndex == -1 {
		return bs
	}
	startIndex += len(backtick)

	for i := startIndex; i < size && bs[i] != '{' && bs[i] != '['; i++ {
		if bs[i] == '\n' {
			startIndex = i + 1
			break
		}
	}

	contentAfterStart := bs[startIndex:]
	endIndex := bytes.LastIndex(contentAfterStart, backtick)
	if endIndex == -1 {
		return contentAfterStart
	}
	return bytes.TrimSpace(contentAfterStart[:endIndex])
}

// ToJSON returns the JSON encoding of v, ignoring encoding failures.
func ToJSON(v any) string {
	bs, _ := json.Marshal(v)
	return string(bs)
}

// CountMessagesContentSize returns the total content size of the transcript
// in bytes, used to bound the payload sent to the model.
func CountMessagesContentSize(messages []llms.Message) uint64 {
	var total uint64
	for _, m := range messages {
		for _, part := range m.Parts {
			switch p := part.(type) {
			case llms.TextContent:
				total += uint64(len(p.Text))
			case llms.ToolCall:
				if p.FunctionCall != nil {
					total += uint64(len(p.FunctionCall.Name) + len(p.FunctionCall.Arguments))
				}
			case llms.ToolCallResponse:
				total += uint64(len(p.Content))
			}
		}
	}
	return total
}

// CountResponseContentSize returns the content size of a model response.
func CountResponseContentSize(resp *llms.ContentResponse) uint64 {
	if resp == nil {
		return 0
	}
	var total uint64
	for _, choice := range resp.Choices {
		total += uint64(len(choice.Content))
		for _, tc := range choice.ToolCalls {
			if tc.FunctionCall != nil {
				total += uint64(len(tc.FunctionCall.Arguments))
			}
		}
	}
	return total
}

// FindLastUserQuestion returns the text of the last human message,
// useful for logging and scripted test models.
func FindLastUserQuestion(messages []llms.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != llms.RoleHuman {
			continue
		}
		for _, part := range messages[i].Parts {
			if tp, ok := part.(llms.TextContent); ok {
				return tp.Text
			}
		}
	}
	return ""
}
