package openai

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/tessellate-ai/agentools/pkg/llms"
	"github.com/tessellate-ai/agentools/pkg/llms/openai/internal/openaiclient"
)

const (
	tokenEnvVarName        = "OPENAI_API_KEY"      //nolint:gosec
	modelEnvVarName        = "OPENAI_MODEL"        //nolint:gosec
	baseURLEnvVarName      = "OPENAI_BASE_URL"     //nolint:gosec
	organizationEnvVarName = "OPENAI_ORGANIZATION" //nolint:gosec

	// OpenRouterBaseURL is the OpenAI-compatible endpoint served by OpenRouter.
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

type options struct {
	token        string
	model        string
	baseURL      string
	organization string
	providerType llms.ProviderType
	httpClient   openaiclient.Doer
}

// Option is a functional option for the OpenAI client.
type Option func(*options)

// WithToken passes the OpenAI API token to the client. If not set, the token
// is read from the OPENAI_API_KEY environment variable.
func WithToken(token string) Option {
	return func(opts *options) {
		opts.token = token
	}
}

// WithModel passes the OpenAI model to the client. If not set, the model
// is read from the OPENAI_MODEL environment variable.
func WithModel(model string) Option {
	return func(opts *options) {
		opts.model = model
	}
}

// WithBaseURL passes the base url to the client. If not set, the base url
// is read from the OPENAI_BASE_URL environment variable, with
// https://api.openai.com/v1 as the final fallback. Point it at
// OpenRouterBaseURL to talk to OpenRouter.
func WithBaseURL(baseURL string) Option {
	return func(opts *options) {
		opts.baseURL = baseURL
	}
}

// WithOrganization passes the OpenAI organization to the client. If not set,
// the organization is read from the OPENAI_ORGANIZATION environment variable.
func WithOrganization(organization string) Option {
	return func(opts *options) {
		opts.organization = organization
	}
}

// WithProviderType marks which provider the client reports. Defaults to
// ProviderOpenAI; use ProviderOpenRouter together with WithBaseURL when the
// endpoint is OpenRouter.
func WithProviderType(pt llms.ProviderType) Option {
	return func(opts *options) {
		opts.providerType = pt
	}
}

// WithHTTPClient allows setting a custom HTTP client. If not set, the default value
// is http.DefaultClient.
func WithHTTPClient(client openaiclient.Doer) Option {
	return func(opts *options) {
		opts.httpClient = client
	}
}

func newClient(opts ...Option) (*options, *openaiclient.Client, error) {
	options := &options{
		token:        os.Getenv(tokenEnvVarName),
		model:        os.Getenv(modelEnvVarName),
		baseURL:      values.StringsCoalesce(os.Getenv(baseURLEnvVarName), openaiclient.DefaultBaseURL),
		organization: os.Getenv(organizationEnvVarName),
		providerType: llms.ProviderOpenAI,
	}

	for _, opt := range opts {
		opt(options)
	}

	if len(options.token) == 0 {
		return options, nil, errors.Newf("openai: missing API key, set it in the %s environment variable", tokenEnvVarName)
	}

	cli, err := openaiclient.New(options.model, options.token, options.baseURL,
		options.organization, options.httpClient)
	return options, cli, err
}
