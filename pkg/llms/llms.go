package llms

import (
	"context"
)

//go:generate mockgen -source=llms.go -destination=../../mocks/mockllms/llms_mock.gen.go -package mockllms

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderAnthropic is the type of provider.
	ProviderAnthropic ProviderType = "ANTHROPIC"
	// ProviderOpenAI is the type of provider.
	ProviderOpenAI ProviderType = "OPENAI"
	// ProviderOpenRouter is the type of provider.
	// OpenRouter exposes an OpenAI-compatible API for many hosted models.
	ProviderOpenRouter ProviderType = "OPENROUTER"
)

// Model is the interface chat completion providers implement.
type Model interface {
	// GetName returns the model identifier served by the provider.
	GetName() string
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GenerateContent asks the model to generate content from a sequence of
	// messages. The response either carries final text or a list of tool
	// calls the model wants executed.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// Basic text or chat generation
	CapabilityText Capability = 1 << iota

	// Function/tool calling
	CapabilityFunctionCalling
	CapabilityMultiToolCalling

	// System prompt support
	CapabilitySystemPrompt
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderOpenAI: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt,

	ProviderAnthropic: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt,

	ProviderOpenRouter: CapabilityText |
		CapabilityFunctionCalling |
		CapabilityMultiToolCalling |
		CapabilitySystemPrompt,
}

// ProviderCapabilities returns the capability set of a provider type.
func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

// Supports reports whether the provider supports all of the given capabilities.
func (pt ProviderType) Supports(caps Capability) bool {
	return providerCapabilities[pt]&caps == caps
}
