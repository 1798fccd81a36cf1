package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// Validatable is implemented by every structured-output schema type.
type Validatable interface {
	Validate() error
}

// Structured wraps a chat model so each call returns a value of T parsed and
// validated from the completion. Providers with native JSON-mode support use
// it; everything else relies on extracting a JSON object from the raw
// completion text, tolerating surrounding prose and code fences.
//
// A Structured value holds no mutable call state: two instances built from
// the same config are fully independent.
type Structured[T Validatable] struct {
	model       llms.Model
	temperature float64
	jsonMode    bool
}

// NewStructured builds a structured model from the provider config.
func NewStructured[T Validatable](cfg ModelConfig) (*Structured[T], error) {
	model, err := New(cfg)
	if err != nil {
		return nil, err
	}
	return &Structured[T]{
		model:       model,
		temperature: cfg.TemperatureOrDefault(),
		jsonMode:    supportsNativeJSON(cfg.Provider),
	}, nil
}

// NewStructuredWithModel wraps an already-constructed model. Used by tests to
// inject deterministic backends.
func NewStructuredWithModel[T Validatable](model llms.Model, temperature float64, jsonMode bool) *Structured[T] {
	return &Structured[T]{model: model, temperature: temperature, jsonMode: jsonMode}
}

// Generate sends the system and user prompts to the model and returns the
// parsed, validated output.
func (s *Structured[T]) Generate(ctx context.Context, system, user string) (T, error) {
	var out T

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system+"\n\nRespond with a single JSON object and nothing else."),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}

	opts := []llms.CallOption{llms.WithTemperature(s.temperature)}
	if s.jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := s.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return out, err
	}
	if len(resp.Choices) == 0 {
		return out, fmt.Errorf("model returned no choices")
	}

	return ParseJSON[T](resp.Choices[0].Content)
}

// ParseJSON extracts a JSON object from text, unmarshals it into T and
// validates it. A parse or validation failure is reported as a
// *SchemaValidationError, never silently passed through.
func ParseJSON[T Validatable](text string) (T, error) {
	var out T

	jsonText := extractJSON(text)
	if jsonText == "" {
		return out, &SchemaValidationError{Raw: text, Err: fmt.Errorf("no JSON object found in completion")}
	}

	if err := json.Unmarshal([]byte(jsonText), &out); err != nil {
		return out, &SchemaValidationError{Raw: text, Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}

	if err := out.Validate(); err != nil {
		return out, &SchemaValidationError{Raw: text, Err: err}
	}

	return out, nil
}

var (
	codeBlockRegex  = regexp.MustCompile("(?s)```(?:json)?\\s*({.*?})\\s*```")
	jsonObjectRegex = regexp.MustCompile(`(?s){.*}`)
)

// extractJSON pulls a JSON object out of text that might contain markdown
// code blocks or explanatory prose around the payload.
func extractJSON(text string) string {
	if matches := codeBlockRegex.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	if match := jsonObjectRegex.FindString(text); match != "" {
		return match
	}
	return strings.TrimSpace(text)
}
