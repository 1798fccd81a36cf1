package provider

import (
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// New maps the logical provider selection onto a callable chat model.
// Endpoint and model resolution order is: explicit config, then environment,
// then the hardcoded default for the provider family.
//
// An unrecognized provider tag fails with *UnsupportedProviderError. No
// retries happen at this layer; the only retry in the system is the
// orchestrator's critique loop.
func New(cfg ModelConfig) (llms.Model, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{
			openai.WithModel(firstNonEmpty(cfg.ModelName, defaultOpenAIModel)),
			openai.WithToken(firstNonEmpty(cfg.APIKey, envOr(envOpenAIKey, ""))),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(opts...)

	case ProviderOpenRouter:
		opts := []openai.Option{
			openai.WithModel(firstNonEmpty(cfg.ModelName, envOr(envOpenRouterModel, defaultOpenRouterModel))),
			openai.WithToken(firstNonEmpty(cfg.APIKey, envOr(envOpenRouterKey, ""))),
			openai.WithBaseURL(firstNonEmpty(cfg.BaseURL, defaultOpenRouterBase)),
		}
		return openai.New(opts...)

	case ProviderOllama:
		opts := []ollama.Option{
			ollama.WithModel(firstNonEmpty(cfg.ModelName, envOr(envOllamaModel, defaultOllamaModel))),
			ollama.WithServerURL(firstNonEmpty(cfg.BaseURL, envOr(envOllamaBaseURL, defaultOllamaBaseURL))),
		}
		if cfg.APIKey != "" {
			// Ollama has no auth option of its own; send a bearer token for
			// deployments behind an authenticating proxy.
			opts = append(opts, ollama.WithHTTPClient(&http.Client{
				Transport: &bearerTransport{token: cfg.APIKey, base: http.DefaultTransport},
			}))
		}
		return ollama.New(opts...)

	default:
		return nil, &UnsupportedProviderError{Provider: cfg.Provider}
	}
}

// supportsNativeJSON reports whether the provider family honors the OpenAI
// JSON-mode response format. Hardcoded per variant rather than probed.
func supportsNativeJSON(p Provider) bool {
	return p == ProviderOpenAI || p == ProviderOpenRouter
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
