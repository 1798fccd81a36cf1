package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeNodeGraph(t *testing.T) *Runnable[testState] {
	t.Helper()
	g := NewStateGraph[testState]()
	g.AddNode("a", "", visit("a"))
	g.AddNode("b", "", visit("b"))
	g.AddNode("c", "", visit("c"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", END)

	runnable, err := g.Compile()
	require.NoError(t, err)
	return runnable
}

func TestInterruptBefore(t *testing.T) {
	runnable := threeNodeGraph(t)

	state, err := runnable.InvokeWithConfig(context.Background(), testState{}, WithInterruptBefore("b"))
	require.Error(t, err)

	var interrupt *GraphInterrupt
	require.ErrorAs(t, err, &interrupt)
	assert.Equal(t, "b", interrupt.Node)
	assert.Equal(t, []string{"b"}, interrupt.NextNodes)
	// The node before the interrupt has run, the interrupted node has not.
	assert.Equal(t, []string{"a"}, state.Visited)
}

func TestInterruptAfter(t *testing.T) {
	runnable := threeNodeGraph(t)

	state, err := runnable.InvokeWithConfig(context.Background(), testState{}, WithInterruptAfter("b"))
	require.Error(t, err)

	var interrupt *GraphInterrupt
	require.ErrorAs(t, err, &interrupt)
	assert.Equal(t, "b", interrupt.Node)
	assert.Equal(t, []string{"c"}, interrupt.NextNodes)
	assert.Equal(t, []string{"a", "b"}, state.Visited)
}

func TestResumeFrom(t *testing.T) {
	runnable := threeNodeGraph(t)

	// Resume at "b" with the state a previous partial run produced.
	state, err := runnable.InvokeWithConfig(context.Background(),
		testState{Visited: []string{"a"}}, WithResumeFrom("b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, state.Visited)
}

func TestInterruptThenResume(t *testing.T) {
	runnable := threeNodeGraph(t)

	paused, err := runnable.InvokeWithConfig(context.Background(), testState{}, WithInterruptAfter("a"))
	require.Error(t, err)

	var interrupt *GraphInterrupt
	require.ErrorAs(t, err, &interrupt)
	require.Equal(t, []string{"b"}, interrupt.NextNodes)

	final, err := runnable.InvokeWithConfig(context.Background(), paused, WithResumeFrom(interrupt.NextNodes[0]))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, final.Visited)
}

func TestGraphInterruptError(t *testing.T) {
	interrupt := &GraphInterrupt{Node: "plan", NextNodes: []string{"write"}}
	assert.Contains(t, interrupt.Error(), "plan")
}

type recordingHandler struct {
	starts int
	ends   int
	errors int
	steps  []string
}

func (h *recordingHandler) OnChainStart(ctx context.Context, inputs any, runID string) { h.starts++ }
func (h *recordingHandler) OnChainEnd(ctx context.Context, outputs any, runID string)  { h.ends++ }
func (h *recordingHandler) OnChainError(ctx context.Context, err error, runID string)  { h.errors++ }
func (h *recordingHandler) OnGraphStep(ctx context.Context, nodeName string, state any) {
	h.steps = append(h.steps, nodeName)
}

func TestCallbacks(t *testing.T) {
	runnable := threeNodeGraph(t)
	handler := &recordingHandler{}

	_, err := runnable.InvokeWithConfig(context.Background(), testState{}, &Config{
		Callbacks: []CallbackHandler{handler},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, handler.starts)
	assert.Equal(t, 1, handler.ends)
	assert.Equal(t, 0, handler.errors)
	assert.Equal(t, []string{"a", "b", "c"}, handler.steps)
}

func TestConfigFromContext(t *testing.T) {
	g := NewStateGraph[testState]()
	g.AddNode("a", "", func(ctx context.Context, s testState) (testState, error) {
		cfg := GetConfig(ctx)
		if cfg != nil {
			if v, ok := cfg.Configurable["suffix"].(string); ok {
				s.Visited = append(s.Visited, "a"+v)
				return s, nil
			}
		}
		s.Visited = append(s.Visited, "a")
		return s, nil
	})
	g.SetEntryPoint("a")
	g.AddEdge("a", END)

	runnable, err := g.Compile()
	require.NoError(t, err)

	state, err := runnable.InvokeWithConfig(context.Background(), testState{}, &Config{
		Configurable: map[string]any{"suffix": "!"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a!"}, state.Visited)
}
