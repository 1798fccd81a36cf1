package provider

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies a chat-completion backend family.
type Provider string

const (
	// ProviderOpenAI is the hosted OpenAI API.
	ProviderOpenAI Provider = "openai"

	// ProviderOpenRouter is the OpenRouter unified gateway, spoken over the
	// OpenAI-compatible protocol.
	ProviderOpenRouter Provider = "openrouter"

	// ProviderOllama is a self-hosted Ollama endpoint.
	ProviderOllama Provider = "ollama"
)

// Environment variables consulted when the config leaves a field empty.
const (
	envOpenAIKey       = "OPENAI_API_KEY"
	envOpenRouterKey   = "OPENROUTER_API_KEY"
	envOpenRouterModel = "OPENROUTER_MODEL"
	envOllamaModel     = "OLLAMA_MODEL"
	envOllamaBaseURL   = "OLLAMA_BASE_URL"
)

// Hardcoded defaults, used when neither the config nor the environment
// provides a value.
const (
	defaultOpenAIModel     = "gpt-4-turbo"
	defaultOpenRouterModel = "openai/gpt-4-turbo"
	defaultOpenRouterBase  = "https://openrouter.ai/api/v1"
	defaultOllamaModel     = "llama3"
	defaultOllamaBaseURL   = "http://localhost:11434"
	defaultTemperature     = 0.7
)

// StepFunc is invoked by the pipeline with a status label before each phase
// of work. It is awaited: a slow implementation delays the run.
type StepFunc func(ctx context.Context, status string) error

// ModelConfig selects a provider and model for one pipeline run.
type ModelConfig struct {
	Provider    Provider `yaml:"provider"`
	ModelName   string   `yaml:"modelName"`
	APIKey      string   `yaml:"apiKey"`
	BaseURL     string   `yaml:"baseUrl"`
	Temperature *float64 `yaml:"temperature"`

	// ImageAPIKey is the OpenAI key used for cover-image generation. Falls
	// back to APIKey when empty.
	ImageAPIKey string `yaml:"imageApiKey"`

	// StepTimeout bounds each node's model call. Zero means no deadline.
	StepTimeout time.Duration `yaml:"stepTimeout"`

	// VerifySources enables best-effort fetching of research source URLs to
	// attach page titles.
	VerifySources bool `yaml:"verifySources"`

	// OnStep receives status updates during a pipeline run.
	OnStep StepFunc `yaml:"-"`
}

// UnmarshalYAML accepts stepTimeout as a Go duration string ("45s", "2m").
func (c *ModelConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		Provider      Provider `yaml:"provider"`
		ModelName     string   `yaml:"modelName"`
		APIKey        string   `yaml:"apiKey"`
		BaseURL       string   `yaml:"baseUrl"`
		Temperature   *float64 `yaml:"temperature"`
		ImageAPIKey   string   `yaml:"imageApiKey"`
		StepTimeout   string   `yaml:"stepTimeout"`
		VerifySources bool     `yaml:"verifySources"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Provider = raw.Provider
	c.ModelName = raw.ModelName
	c.APIKey = raw.APIKey
	c.BaseURL = raw.BaseURL
	c.Temperature = raw.Temperature
	c.ImageAPIKey = raw.ImageAPIKey
	c.VerifySources = raw.VerifySources

	if raw.StepTimeout != "" {
		d, err := time.ParseDuration(raw.StepTimeout)
		if err != nil {
			return fmt.Errorf("invalid stepTimeout %q: %w", raw.StepTimeout, err)
		}
		c.StepTimeout = d
	}
	return nil
}

// TemperatureOrDefault returns the configured temperature, or the default.
func (c ModelConfig) TemperatureOrDefault() float64 {
	if c.Temperature != nil {
		return *c.Temperature
	}
	return defaultTemperature
}

// LoadConfig reads a ModelConfig from a YAML file. Credentials left empty in
// the file resolve from the environment at model-construction time.
func LoadConfig(path string) (ModelConfig, error) {
	var cfg ModelConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Provider == "" {
		return cfg, fmt.Errorf("config %s: provider is required", path)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
