// Package tooltest provides a scripted tool.Runner for tests.
package tooltest

import (
	"context"
	"fmt"
	"sync"

	"github.com/backmassage/audiobench/internal/tool"
)

// Call records one invocation seen by a Fake.
type Call struct {
	Name string
	Args []string
}

// HandlerFunc scripts the response to an invocation.
type HandlerFunc func(args []string) (tool.Result, error)

// Fake is a tool.Runner that dispatches on the program name. Invocations of
// unregistered programs fail as if the binary were missing.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{handlers: make(map[string]HandlerFunc)}
}

// Handle registers h for program name, replacing any earlier handler.
func (f *Fake) Handle(name string, h HandlerFunc) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
	return f
}

// Run implements tool.Runner.
func (f *Fake) Run(ctx context.Context, name string, args ...string) (tool.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	h := f.handlers[name]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return tool.Result{}, err
	}
	if h == nil {
		return tool.Result{}, fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return h(args)
}

// Calls returns a copy of every recorded invocation.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded invocations of program name.
func (f *Fake) CallsTo(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Exit builds the Result/error pair a real runner returns for a non-zero exit.
func Exit(name string, code int, stderr string) (tool.Result, error) {
	return tool.Result{Stderr: stderr, ExitCode: code},
		&tool.ExitError{Name: name, ExitCode: code, StderrTail: tool.Tail(stderr, 20)}
}
