package llms

import (
	"github.com/invopop/jsonschema"
)

// CallOption is a function that configures a CallOptions.
type CallOption func(*CallOptions)

// CallOptions is a set of options for calling models. Not all models support
// all options.
type CallOptions struct {
	// Model is the model to use.
	Model string
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
	// Temperature is the temperature for sampling, between 0 and 1.
	Temperature float64
	// TopP is the cumulative probability for top-p sampling.
	TopP float64
	// StopWords is a list of words to stop on.
	StopWords []string

	// Tools is a list of tool definitions the model may invoke.
	Tools []Tool
	// ToolChoice is the choice of tool to use, it can either be "none",
	// "auto" (the default behavior), or a specific tool.
	ToolChoice any
}

// Tool is a tool that can be used by the model.
type Tool struct {
	// Type is the type of the tool.
	Type string `json:"type"`
	// Function is the function to call.
	Function *FunctionDefinition `json:"function,omitempty"`
}

// FunctionDefinition is a definition of a function that can be called by the model.
type FunctionDefinition struct {
	// Name is the name of the function.
	Name string `json:"name"`
	// Description is a description of the function.
	Description string `json:"description"`
	// Parameters is the JSON schema of the function parameters.
	Parameters *jsonschema.Schema `json:"parameters,omitempty"`
}

// WithModel specifies which model name to use.
func WithModel(model string) CallOption {
	return func(o *CallOptions) {
		o.Model = model
	}
}

// WithMaxTokens specifies the max number of tokens to generate.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature specifies the model temperature.
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = temperature
	}
}

// WithTopP specifies the cumulative probability for top-p sampling.
func WithTopP(topP float64) CallOption {
	return func(o *CallOptions) {
		o.TopP = topP
	}
}

// WithStopWords specifies a list of words to stop generation on.
func WithStopWords(stopWords []string) CallOption {
	return func(o *CallOptions) {
		o.StopWords = stopWords
	}
}

// WithTools specifies the tool definitions available to the model.
func WithTools(tools []Tool) CallOption {
	return func(o *CallOptions) {
		o.Tools = tools
	}
}

// WithToolChoice specifies the tool choice behavior.
func WithToolChoice(choice any) CallOption {
	return func(o *CallOptions) {
		o.ToolChoice = choice
	}
}
