package graph

import (
	"context"

	"github.com/google/uuid"
)

// CallbackHandler receives lifecycle notifications during graph execution.
// All methods are invoked synchronously: a slow handler delays the graph.
type CallbackHandler interface {
	// OnChainStart is called once when graph execution begins.
	OnChainStart(ctx context.Context, inputs any, runID string)

	// OnChainEnd is called once when graph execution reaches END.
	OnChainEnd(ctx context.Context, outputs any, runID string)

	// OnChainError is called when graph execution fails with an error.
	OnChainError(ctx context.Context, err error, runID string)

	// OnGraphStep is called after each node has completed and its result
	// has been folded into the state.
	OnGraphStep(ctx context.Context, nodeName string, state any)
}

// Config carries per-invocation options for Runnable.InvokeWithConfig.
type Config struct {
	// Callbacks are notified of graph lifecycle events.
	Callbacks []CallbackHandler

	// InterruptBefore pauses execution before any of the named nodes runs.
	InterruptBefore []string

	// InterruptAfter pauses execution after any of the named nodes completes.
	InterruptAfter []string

	// ResumeFrom overrides the entry point, entering the graph at the named
	// node. The initial state must already contain everything the node and
	// its successors require.
	ResumeFrom string

	// Tags are free-form labels forwarded to callbacks.
	Tags []string

	// Metadata is free-form data forwarded to callbacks.
	Metadata map[string]any

	// Configurable holds runtime values nodes may read via GetConfig.
	Configurable map[string]any
}

// WithInterruptAfter creates a Config that pauses after the given nodes.
func WithInterruptAfter(nodes ...string) *Config {
	return &Config{InterruptAfter: nodes}
}

// WithInterruptBefore creates a Config that pauses before the given nodes.
func WithInterruptBefore(nodes ...string) *Config {
	return &Config{InterruptBefore: nodes}
}

// WithResumeFrom creates a Config that enters the graph at the given node.
func WithResumeFrom(node string) *Config {
	return &Config{ResumeFrom: node}
}

type configKey struct{}

// WithConfig injects the config into the context so nodes can inspect it.
func WithConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey{}, config)
}

// GetConfig retrieves the config from the context, or nil if absent.
func GetConfig(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey{}).(*Config); ok {
		return cfg
	}
	return nil
}

func generateRunID() string {
	return uuid.New().String()
}
