// Package tools defines the typed tool contract: a named capability with a
// declared input and output schema, validated execution, and deterministic
// provider function-calling schema emission.
package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/tessellate-ai/agentools/chatmodel"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/pkg/llmutils"
	"github.com/tessellate-ai/agentools/pkg/schema"
)

//go:generate mockgen -source=tool.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

var logger = xlog.NewPackageLogger("github.com/tessellate-ai/agentools", "tools")

// ProviderFormat names a target function-calling schema shape.
type ProviderFormat int

const (
	// FormatOpenAI is the OpenAI-style function schema.
	FormatOpenAI ProviderFormat = iota
	// FormatAnthropic is the Anthropic-style tool schema.
	FormatAnthropic
)

func (f ProviderFormat) String() string {
	switch f {
	case FormatOpenAI:
		return "openai"
	case FormatAnthropic:
		return "anthropic"
	default:
		return "unknown"
	}
}

// Handler is the capability behind a tool. It receives arguments already
// validated against the input schema and returns a value to be validated
// against the output schema. All I/O belongs here; the contract layer
// performs none.
type Handler interface {
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, args map[string]any) (map[string]any, error)

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	return f(ctx, args)
}

// Spec is the immutable descriptor of a tool: name, description and the
// structural schemas of its input and output. Pure data, safe to share.
type Spec struct {
	Name        string
	Description string
	Input       *schema.Definition
	Output      *schema.Definition
}

// Validate checks the spec is representable as a function-calling schema.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return errors.New("tools: name is required")
	}
	if s.Description == "" {
		return errors.New("tools: description is required")
	}
	if s.Input == nil {
		return errors.New("tools: input schema is required")
	}
	if s.Output == nil {
		return errors.New("tools: output schema is required")
	}
	return nil
}

// Option configures a Tool.
type Option func(*Tool)

// WithTimeout bounds a single execution of the capability. A timed out
// execution is reported as an ExecutionError, never left hanging.
func WithTimeout(d time.Duration) Option {
	return func(t *Tool) {
		t.timeout = d
	}
}

// WithLooseFields switches the tool to permissive-ignore for undeclared
// fields in both arguments and capability output. The default is
// strict-reject.
func WithLooseFields() Option {
	return func(t *Tool) {
		t.policy = schema.PolicyIgnore
	}
}

// Tool binds a Spec to a Handler behind the validated contract.
type Tool struct {
	spec    Spec
	handler Handler
	timeout time.Duration
	policy  schema.Policy

	// provider schema documents, rendered once at construction so Describe
	// is deterministic and byte-identical across calls
	openaiDoc    json.RawMessage
	anthropicDoc json.RawMessage
}

// New creates a Tool, validating the spec eagerly so Describe can never fail
// on representability later.
func New(spec Spec, handler Handler, opts ...Option) (*Tool, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, errors.Newf("tools: %s: handler is required", spec.Name)
	}
	t := &Tool{
		spec:    spec,
		handler: handler,
		policy:  schema.PolicyReject,
	}
	for _, opt := range opts {
		opt(t)
	}

	var err error
	if t.openaiDoc, err = renderDoc(spec, FormatOpenAI); err != nil {
		return nil, err
	}
	if t.anthropicDoc, err = renderDoc(spec, FormatAnthropic); err != nil {
		return nil, err
	}
	return t, nil
}

func renderDoc(spec Spec, format ProviderFormat) (json.RawMessage, error) {
	var doc any
	switch format {
	case FormatOpenAI:
		doc = map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        spec.Name,
				"description": spec.Description,
				"parameters":  spec.Input.JSONSchema(),
			},
		}
	case FormatAnthropic:
		doc = map[string]any{
			"name":         spec.Name,
			"description":  spec.Description,
			"input_schema": spec.Input.JSONSchema(),
		}
	default:
		return nil, errors.Newf("tools: unsupported provider format: %d", format)
	}
	bs, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "tools: %s: failed to render %s schema", spec.Name, format)
	}
	return bs, nil
}

// Name returns the unique name of the tool.
func (t *Tool) Name() string {
	return t.spec.Name
}

// Description returns the description of the tool, used by the model to
// decide applicability.
func (t *Tool) Description() string {
	return t.spec.Description
}

// Spec returns the tool descriptor.
func (t *Tool) Spec() Spec {
	return t.spec
}

// Describe returns the function-calling schema document for the given
// provider format. Pure and deterministic: the same spec always yields a
// byte-identical document.
func (t *Tool) Describe(format ProviderFormat) (json.RawMessage, error) {
	switch format {
	case FormatOpenAI:
		return t.openaiDoc, nil
	case FormatAnthropic:
		return t.anthropicDoc, nil
	default:
		return nil, errors.Newf("tools: unsupported provider format: %d", format)
	}
}

// Definition returns the provider-agnostic tool definition consumed by
// llms.Model implementations.
func (t *Tool) Definition() llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        t.spec.Name,
			Description: t.spec.Description,
			Parameters:  t.spec.Input.JSONSchema(),
		},
	}
}

// ValidateAndExecute validates raw arguments, executes the capability and
// validates its output. It never panics and never returns an unvalidated
// value: the outcome is always a Result suitable for transcript content.
func (t *Tool) ValidateAndExecute(ctx context.Context, raw map[string]any) Result {
	if raw == nil {
		raw = map[string]any{}
	}
	if err := t.spec.Input.Check(raw, t.policy); err != nil {
		return Err(KindValidation, err.Error())
	}
	args := raw
	if t.policy == schema.PolicyIgnore {
		args = t.spec.Input.Filter(raw)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	out, err := t.handler.Execute(ctx, args)
	if err != nil {
		return t.classify(err)
	}
	if out == nil {
		out = map[string]any{}
	}
	if err := t.spec.Output.Check(out, t.policy); err != nil {
		logger.KV(xlog.WARNING,
			"tool", t.spec.Name,
			"status", "malformed_output",
			"err", err.Error(),
		)
		return Err(KindExecution, "capability returned malformed output: "+err.Error())
	}
	if t.policy == schema.PolicyIgnore {
		out = t.spec.Output.Filter(out)
	}
	return Ok(out)
}

// Call is the string entry point used by the agent loop: it leniently
// parses model-produced argument text, then validates and executes.
func (t *Tool) Call(ctx context.Context, input string) Result {
	raw := map[string]any{}
	if input != "" {
		bs := llmutils.CleanJSON(llmutils.BytesTrimBackticks([]byte(input)))
		if err := ljson.Unmarshal(bs, &raw); err != nil {
			return Err(KindValidation, chatmodel.ErrFailedUnmarshalInput.Error())
		}
	}
	return t.ValidateAndExecute(ctx, raw)
}

func (t *Tool) classify(err error) Result {
	switch {
	case errors.Is(err, ErrAuthentication):
		return Err(KindAuthentication, err.Error())
	case errors.Is(err, ErrRateLimit):
		return Err(KindRateLimit, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return Err(KindExecution, errors.WithMessagef(err, "tool %s timed out", t.spec.Name).Error())
	default:
		return Err(KindExecution, err.Error())
	}
}
