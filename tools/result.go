package tools

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/tessellate-ai/agentools/pkg/llmutils"
)

// Kind classifies a tool failure.
type Kind string

const (
	// KindValidation marks malformed arguments. The capability was not invoked.
	KindValidation Kind = "ValidationError"
	// KindExecution marks a capability failure or malformed capability output.
	KindExecution Kind = "ExecutionError"
	// KindAuthentication marks failed credentials. Specializes KindExecution.
	KindAuthentication Kind = "AuthenticationError"
	// KindRateLimit marks exhausted quota. Specializes KindExecution.
	KindRateLimit Kind = "RateLimitError"
)

// IsExecution reports whether the kind is an execution failure, including
// its authentication and rate-limit specializations.
func (k Kind) IsExecution() bool {
	return k == KindExecution || k == KindAuthentication || k == KindRateLimit
}

// Sentinels capabilities wrap to signal failure classes to the contract layer.
var (
	// ErrAuthentication marks invalid or missing credentials.
	ErrAuthentication = errors.New("authentication failed")
	// ErrRateLimit marks an exhausted provider quota.
	ErrRateLimit = errors.New("rate limit exceeded")
)

// ResultError is the structured failure descriptor of a tool call.
type ResultError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Result is the outcome of one tool invocation: either a validated output
// value or a structured failure. It is always appended to the transcript,
// never silently discarded.
type Result struct {
	Value map[string]any `json:"value,omitempty"`
	Error *ResultError   `json:"error,omitempty"`
}

// Ok returns a success Result.
func Ok(value map[string]any) Result {
	return Result{Value: value}
}

// Err returns a failure Result.
func Err(kind Kind, message string) Result {
	return Result{Error: &ResultError{Kind: kind, Message: message}}
}

// OK reports whether the result carries a validated output value.
func (r Result) OK() bool {
	return r.Error == nil
}

// Content serializes the result as transcript content for the model.
func (r Result) Content() string {
	return llmutils.ToJSON(r)
}

// ParseResult parses transcript content produced by Content back into a
// Result, preserving kind and message for failures and the full value for
// successes.
func ParseResult(content string) (Result, error) {
	var r Result
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return Result{}, errors.Wrap(err, "failed to parse tool result")
	}
	if r.Error != nil && r.Error.Kind == "" {
		return Result{}, errors.New("tool result error without kind")
	}
	return r, nil
}
