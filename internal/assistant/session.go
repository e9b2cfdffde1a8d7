// Package assistant drives one chat turn: it loads the user's history,
// asks the model, executes the tool calls it proposes and asks the model
// again with their results.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/iliyamo/food-ordering-assistant/internal/conversation"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
	"github.com/iliyamo/food-ordering-assistant/internal/tools"
)

// EmptyReply is stored in the history in place of a blank model answer.
const EmptyReply = "[Error: Empty response from model]"

// Generator is the model client.  *googleai.GoogleAI satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Executor runs the tool calls of one turn.  *tools.Dispatcher satisfies
// it.
type Executor interface {
	Execute(ctx context.Context, userID string, calls []tools.Proposed) ([]tools.Outcome, error)
}

// Request is one inbound user message.
type Request struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

// Reply is the answer to a Request.  Type is "text" when the model called
// no tools.
type Reply struct {
	Message   string          `json:"message"`
	Type      string          `json:"type,omitempty"`
	Responses []tools.Result  `json:"responses"`
	Errors    []tools.Failure `json:"errors,omitempty"`
}

// Session answers chat requests.  It is safe for concurrent use.
type Session struct {
	model   Generator
	tools   Executor
	history conversation.Store
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option customizes a Session.
type Option func(*Session)

// WithTimeout bounds a whole turn, both model calls included.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time stamps of stored turns.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession wires a session.
func NewSession(g Generator, exec Executor, history conversation.Store, opts ...Option) *Session {
	s := &Session{
		model:   g,
		tools:   exec,
		history: history,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handle runs one turn.  The user message and the first model answer are
// stored before any tool runs, so they survive a failure later in the
// turn.
func (s *Session) Handle(ctx context.Context, req Request) (*Reply, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message and userId are required", ErrValidation)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()

	past, err := s.history.History(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	msgs := make([]llms.MessageContent, 0, len(past)+4)
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, instructions(req.UserID)))
	for _, t := range past {
		msgs = append(msgs, llms.TextParts(roleOf(t.Role), t.Text))
	}
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, req.Message))

	first, err := s.generate(ctx, "initial", msgs)
	if err != nil {
		return nil, err
	}
	text, calls := unpack(first)
	stored := storedText(text)
	if err := s.history.Append(ctx, req.UserID,
		model.Turn{Role: model.RoleUser, Text: req.Message, At: s.now()},
		model.Turn{Role: model.RoleAssistant, Text: stored, At: s.now()},
	); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	if len(calls) == 0 {
		s.logger.Info("chat turn", "user", req.UserID, "tools", 0, "elapsed", time.Since(start))
		return &Reply{Message: text, Type: "text", Responses: []tools.Result{}}, nil
	}

	outcomes, err := s.tools.Execute(ctx, req.UserID, calls)
	if err != nil {
		return nil, err
	}
	results, failures := tools.Split(outcomes)

	feedback, err := functionResponses(results, failures)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeAI, text))
	}
	msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, feedback))
	final, err := s.generate(ctx, "final", msgs)
	if err != nil {
		return nil, err
	}
	finalText, _ := unpack(final)
	if err := s.history.Append(ctx, req.UserID, model.Turn{Role: model.RoleAssistant, Text: storedText(finalText), At: s.now()}); err != nil {
		return nil, fmt.Errorf("save history: %w", err)
	}

	s.logger.Info("chat turn", "user", req.UserID, "tools", len(calls), "failed", len(failures), "elapsed", time.Since(start))
	return &Reply{Message: finalText, Responses: results, Errors: failures}, nil
}

func (s *Session) generate(ctx context.Context, stage string, msgs []llms.MessageContent) (*llms.ContentResponse, error) {
	resp, err := s.model.GenerateContent(ctx, msgs, llms.WithTools(tools.Catalog()))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UpstreamModelError{Stage: stage, Err: err}
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, &UpstreamModelError{Stage: stage, Err: ErrEmptyResponse}
	}
	return resp, nil
}

// unpack joins the text of every choice and collects the tool calls in
// the order the model proposed them.
func unpack(resp *llms.ContentResponse) (string, []tools.Proposed) {
	var (
		text  []string
		calls []tools.Proposed
	)
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Content) != "" {
			text = append(text, c.Content)
		}
		for _, tc := range c.ToolCalls {
			if tc.FunctionCall == nil {
				continue
			}
			calls = append(calls, tools.Proposed{ID: tc.ID, Name: tc.FunctionCall.Name, Arguments: tc.FunctionCall.Arguments})
		}
		if len(c.ToolCalls) == 0 && c.FuncCall != nil {
			calls = append(calls, tools.Proposed{Name: c.FuncCall.Name, Arguments: c.FuncCall.Arguments})
		}
	}
	return strings.Join(text, "\n"), calls
}

func storedText(text string) string {
	if strings.TrimSpace(text) == "" {
		return EmptyReply
	}
	return text
}

// functionResponses renders tool results for the second model call.
func functionResponses(results []tools.Result, failures []tools.Failure) (string, error) {
	b, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("encode tool results: %w", err)
	}
	out := "Function responses: " + string(b)
	if len(failures) > 0 {
		fb, err := json.Marshal(failures)
		if err != nil {
			return "", fmt.Errorf("encode tool errors: %w", err)
		}
		out += "\nFunction errors: " + string(fb)
	}
	return out, nil
}

func roleOf(r model.Role) llms.ChatMessageType {
	if r == model.RoleAssistant {
		return llms.ChatMessageTypeAI
	}
	return llms.ChatMessageTypeHuman
}
