package llmfactory

import (
	"github.com/effective-security/x/configloader"
)

// Config describes the configured model providers. The first provider is the
// default one.
type Config struct {
	Providers []*ProviderConfig `json:"providers" yaml:"providers"`
}

// ProviderConfig for a single model provider.
type ProviderConfig struct {
	// Name identifies this provider entry, e.g. "openrouter-prod".
	Name string `json:"name" yaml:"name"`
	// Provider is the provider type: OPENAI|ANTHROPIC|OPENROUTER.
	Provider string `json:"provider" yaml:"provider"`
	// Token is the API key. Supports ${ENV_VAR} expansion.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
	// BaseURL overrides the provider endpoint.
	BaseURL         string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	DefaultModel    string   `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty" yaml:"available_models,omitempty"`
}

// LoadConfig from file
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
