package runner

import (
	"context"
	"sync"
)

// Recorder is a Runner that records commands instead of executing them.
// Handler, when set, decides each command's output and error.
type Recorder struct {
	Handler func(Command) ([]byte, error)

	mu    sync.Mutex
	calls []Command
}

func (r *Recorder) Run(_ context.Context, cmd Command) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, cmd)
	handler := r.Handler
	r.mu.Unlock()

	if handler == nil {
		return nil, nil
	}
	return handler(cmd)
}

// Calls returns the recorded commands in order.
func (r *Recorder) Calls() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Command, len(r.calls))
	copy(out, r.calls)
	return out
}

// CommandLines returns the recorded commands rendered as "name arg...".
func (r *Recorder) CommandLines() []string {
	calls := r.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}
