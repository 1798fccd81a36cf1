package provider

import "fmt"

// UnsupportedProviderError is returned at model-construction time when the
// provider tag is not one of the known backends. It is never converted into
// pipeline state: the caller must handle it before any node runs.
type UnsupportedProviderError struct {
	Provider Provider
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %s", e.Provider)
}

// SchemaValidationError is returned when a model's output cannot be parsed as
// JSON or does not satisfy the declared schema.
type SchemaValidationError struct {
	// Raw is the completion text that failed to parse or validate.
	Raw string
	// Err is the underlying parse or validation failure.
	Err error
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("structured output failed schema validation: %v", e.Err)
}

func (e *SchemaValidationError) Unwrap() error {
	return e.Err
}
