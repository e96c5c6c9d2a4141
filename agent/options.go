package agent

import (
	"github.com/cockroachdb/errors"
	"github.com/tessellate-ai/agentools/store"
)

const (
	// DefaultMaxTurns is the default bound on model calls per run.
	DefaultMaxTurns = 8
	// DefaultLLMRetries is how many times a failed or empty model call is
	// retried before the failure propagates.
	DefaultLLMRetries = 2
	// DefaultMaxContentSize bounds the transcript payload sent to the model.
	DefaultMaxContentSize = uint64(2 << 20)
	// DefaultSystemPrompt seeds the transcript when no prompt is configured.
	DefaultSystemPrompt = "You are a helpful assistant. Use the available tools when they help you answer, and reply with a final answer when you are done."
	// DefaultName is the agent name used in logs and metrics.
	DefaultName = "agent"
)

// Option is a function that can be used to modify the agent Config.
type Option func(*Config)

// Config holds the agent loop configuration.
type Config struct {
	// Name of the agent, used in logs and metrics.
	Name string
	// SystemPrompt is the system instruction seeding every transcript.
	SystemPrompt string
	// MaxTurns is the hard upper bound on model calls per run.
	MaxTurns int
	// LLMRetries bounds retries of a failed or empty model call.
	LLMRetries int
	// MaxContentSize bounds the transcript payload in bytes.
	MaxContentSize uint64

	// Model overrides the provider's default model for this agent.
	Model string
	// MaxTokens is the maximum number of tokens to generate per model call.
	MaxTokens int
	// Temperature is the sampling temperature per model call.
	Temperature float64

	// Callback observes loop progress. Informational only: it never
	// affects control flow and may be left nil.
	Callback Callback
	// Store persists run transcripts. Optional.
	Store store.MessageStore
}

// NewConfig returns a Config with defaults applied, then options.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Name:           DefaultName,
		SystemPrompt:   DefaultSystemPrompt,
		MaxTurns:       DefaultMaxTurns,
		LLMRetries:     DefaultLLMRetries,
		MaxContentSize: DefaultMaxContentSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate rejects structurally invalid configuration eagerly.
func (c *Config) Validate() error {
	if c.MaxTurns <= 0 {
		return errors.Newf("agent: max turns must be positive, got %d", c.MaxTurns)
	}
	if c.LLMRetries < 0 {
		return errors.Newf("agent: LLM retries must not be negative, got %d", c.LLMRetries)
	}
	if c.SystemPrompt == "" {
		return errors.New("agent: system prompt is required")
	}
	return nil
}

// WithName sets the agent name used in logs and metrics.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithSystemPrompt sets the system instruction seeding the transcript.
func WithSystemPrompt(prompt string) Option {
	return func(c *Config) {
		c.SystemPrompt = prompt
	}
}

// WithMaxTurns bounds the number of model calls per run.
func WithMaxTurns(n int) Option {
	return func(c *Config) {
		c.MaxTurns = n
	}
}

// WithLLMRetries bounds retries of failed or empty model calls.
func WithLLMRetries(n int) Option {
	return func(c *Config) {
		c.LLMRetries = n
	}
}

// WithMaxContentSize bounds the transcript payload in bytes.
func WithMaxContentSize(n uint64) Option {
	return func(c *Config) {
		c.MaxContentSize = n
	}
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(c *Config) {
		c.Model = model
	}
}

// WithMaxTokens sets the per-call token generation bound.
func WithMaxTokens(n int) Option {
	return func(c *Config) {
		c.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithCallback sets the progress observer.
func WithCallback(cb Callback) Option {
	return func(c *Config) {
		c.Callback = cb
	}
}

// WithStore sets the transcript store.
func WithStore(s store.MessageStore) Option {
	return func(c *Config) {
		c.Store = s
	}
}
