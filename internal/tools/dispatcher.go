package tools

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Call is one tool invocation as seen by a handler.  UserID is the user
// of the chat session, not a model-supplied argument.
type Call struct {
	UserID string
	Args   map[string]any
}

// Handler executes one tool.
type Handler func(ctx context.Context, call Call) (any, error)

// Proposed is a tool call proposed by the model.  Arguments is the raw
// JSON object.
type Proposed struct {
	ID        string
	Name      string
	Arguments string
}

// Outcome is the result or the error of one proposed call.
type Outcome struct {
	Call Proposed
	Tool Name // zero when the name was not recognized
	Type ResultType
	Data any
	Err  error
}

// Result is a successful outcome as returned to the client.
type Result struct {
	Type ResultType `json:"type"`
	Data any        `json:"data"`
}

// Failure is a failed outcome as returned to the client.
type Failure struct {
	Tool  string `json:"tool"`
	Error string `json:"error"`
}

// Policy decides what happens to a batch after a call fails.
type Policy int

const (
	// Isolate keeps executing the remaining calls and reports every
	// outcome.
	Isolate Policy = iota
	// Abort stops at the first failure and fails the whole batch.
	Abort
)

// ParsePolicy converts "isolate" or "abort".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "isolate":
		return Isolate, nil
	case "abort":
		return Abort, nil
	}
	return 0, fmt.Errorf("unknown tool failure policy %q", s)
}

// Dispatcher routes proposed calls to their handlers.
type Dispatcher struct {
	handlers map[Name]Handler
	policy   Policy
	logger   *slog.Logger
}

// NewDispatcher checks that every catalog tool has a handler.
func NewDispatcher(handlers map[Name]Handler, policy Policy, logger *slog.Logger) (*Dispatcher, error) {
	var missing []string
	for _, n := range Names {
		if handlers[n] == nil {
			missing = append(missing, n.String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("no handler for tools: %s", strings.Join(missing, ", "))
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher{handlers: handlers, policy: policy, logger: logger}, nil
}

// Execute runs calls sequentially in the given order.  Under Isolate every
// call yields an Outcome and the returned error is nil; under Abort the
// first failure is returned along with the outcomes so far.
func (d *Dispatcher) Execute(ctx context.Context, userID string, calls []Proposed) ([]Outcome, error) {
	out := make([]Outcome, 0, len(calls))
	for _, c := range calls {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		o := d.run(ctx, userID, c)
		out = append(out, o)
		if o.Err != nil && d.policy == Abort {
			return out, o.Err
		}
	}
	return out, nil
}

func (d *Dispatcher) run(ctx context.Context, userID string, c Proposed) Outcome {
	o := Outcome{Call: c}
	name, err := ParseName(c.Name)
	if err != nil {
		d.logger.Warn("tool rejected", "tool", c.Name, "err", err)
		o.Err = err
		return o
	}
	o.Tool, o.Type = name, name.ResultType()

	args, err := parseArgs(c.Arguments)
	if err != nil {
		o.Err = err
		return o
	}
	start := time.Now()
	o.Data, o.Err = d.handlers[name](ctx, Call{UserID: userID, Args: args})
	d.logger.Debug("tool executed", "tool", name.String(), "user", userID, "elapsed", time.Since(start), "err", o.Err)
	return o
}

// Split separates outcomes into client results and failures, preserving
// order.
func Split(outcomes []Outcome) ([]Result, []Failure) {
	results := []Result{}
	var failures []Failure
	for _, o := range outcomes {
		if o.Err != nil {
			failures = append(failures, Failure{Tool: o.Call.Name, Error: o.Err.Error()})
			continue
		}
		results = append(results, Result{Type: o.Type, Data: o.Data})
	}
	return results, failures
}
