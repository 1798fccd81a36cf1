package pipeline

import (
	"context"

	"github.com/google/uuid"
)

// Task is a handle to a pipeline run executing in the background. Hosts that
// kick off generation and poll for progress spawn a Task keyed by their
// content id instead of blocking on Run.
type Task struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}

	state State
	err   error
}

// Launch starts the run on its own goroutine and returns immediately.
func (p *Pipeline) Launch(ctx context.Context, topic string, opts ...RunOption) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		id:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		t.state, t.err = p.Run(ctx, topic, opts...)
	}()

	return t
}

// ID returns the task's unique identifier.
func (t *Task) ID() string {
	return t.id
}

// Done is closed when the run has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Cancel aborts the run. The in-flight model call observes the cancelled
// context and the affected node records the failure in the state.
func (t *Task) Cancel() {
	t.cancel()
}

// Wait blocks until the run finishes or ctx is cancelled.
func (t *Task) Wait(ctx context.Context) (State, error) {
	select {
	case <-t.done:
		return t.state, t.err
	case <-ctx.Done():
		return State{}, ctx.Err()
	}
}

// Result returns the final state and error. Only valid after Done is closed.
func (t *Task) Result() (State, error) {
	return t.state, t.err
}
