package tools

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tessellate-ai/agentools/pkg/llms"
)

// Registry is an immutable mapping from tool name to Tool, built once at
// controller construction. Lookup is case-insensitive; registration order
// is preserved for schema emission. Read-only after construction and safe
// to share across concurrent agent loops.
type Registry struct {
	byName map[string]*Tool
	list   []*Tool
	names  []string
}

// NewRegistry builds a Registry from the given tools, rejecting duplicate
// names. There is no dynamic registration after construction.
func NewRegistry(list ...*Tool) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]*Tool, len(list)),
	}
	for _, tool := range list {
		key := strings.ToLower(tool.Name())
		if _, ok := r.byName[key]; ok {
			return nil, errors.Newf("tools: duplicate tool name: %s", tool.Name())
		}
		r.byName[key] = tool
		r.list = append(r.list, tool)
		r.names = append(r.names, tool.Name())
	}
	return r, nil
}

// Lookup returns the tool registered under name, case-insensitively.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.byName[strings.ToLower(name)]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	return r.names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.list)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	return r.list
}

// Definitions returns provider-agnostic tool definitions for a model call,
// in registration order.
func (r *Registry) Definitions() []llms.Tool {
	defs := make([]llms.Tool, 0, len(r.list))
	for _, t := range r.list {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Describe returns the provider schema documents of all registered tools,
// in registration order.
func (r *Registry) Describe(format ProviderFormat) ([]json.RawMessage, error) {
	docs := make([]json.RawMessage, 0, len(r.list))
	for _, t := range r.list {
		doc, err := t.Describe(format)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
