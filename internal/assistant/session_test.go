package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/iliyamo/food-ordering-assistant/internal/conversation"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
	"github.com/iliyamo/food-ordering-assistant/internal/tools"
)

type scripted struct {
	resp *llms.ContentResponse
	err  error
}

type fakeModel struct {
	mu      sync.Mutex
	script  []scripted
	calls   [][]llms.MessageContent
	toolSet []int
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var o llms.CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	f.calls = append(f.calls, msgs)
	f.toolSet = append(f.toolSet, len(o.Tools))
	if len(f.script) == 0 {
		return nil, errors.New("unexpected model call")
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.resp, next.err
}

func text(s string) scripted {
	return scripted{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: s}}}}
}

func toolCalls(s string, calls ...llms.FunctionCall) scripted {
	c := &llms.ContentChoice{Content: s}
	for i := range calls {
		c.ToolCalls = append(c.ToolCalls, llms.ToolCall{ID: calls[i].Name, Type: "function", FunctionCall: &calls[i]})
	}
	return scripted{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{c}}}
}

type fakeExecutor struct {
	got      []tools.Proposed
	outcomes []tools.Outcome
	err      error
}

func (f *fakeExecutor) Execute(_ context.Context, _ string, calls []tools.Proposed) ([]tools.Outcome, error) {
	f.got = calls
	return f.outcomes, f.err
}

var fixed = time.Date(2026, 10, 16, 13, 0, 0, 0, time.UTC)

func newSession(m *fakeModel, exec Executor) (*Session, conversation.Store) {
	store := conversation.NewMemoryStore(conversation.Options{})
	return NewSession(m, exec, store, WithClock(func() time.Time { return fixed })), store
}

func texts(t *testing.T, store conversation.Store, userID string) []string {
	t.Helper()
	h, err := store.History(context.Background(), userID)
	require.NoError(t, err)
	out := make([]string, 0, len(h))
	for _, turn := range h {
		out = append(out, string(turn.Role)+": "+turn.Text)
	}
	return out
}

func partText(m llms.MessageContent) string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(llms.TextContent); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

func TestHandleTextOnly(t *testing.T) {
	m := &fakeModel{script: []scripted{text("Hi! What would you like to eat?")}}
	s, store := newSession(m, &fakeExecutor{})

	reply, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Hi! What would you like to eat?", reply.Message)
	assert.Equal(t, "text", reply.Type)
	assert.Empty(t, reply.Responses)

	require.Len(t, m.calls, 1)
	assert.Equal(t, 7, m.toolSet[0])
	msgs := m.calls[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
	assert.Equal(t, "hello", partText(msgs[1]))

	assert.Equal(t, []string{"user: hello", "assistant: Hi! What would you like to eat?"}, texts(t, store, "u-1"))
}

func TestHandleTellsModelTheUser(t *testing.T) {
	m := &fakeModel{script: []scripted{text("Checking your order.")}}
	s, _ := newSession(m, &fakeExecutor{})

	_, err := s.Handle(context.Background(), Request{UserID: "u-42", Message: "where is my order o-1?"})
	require.NoError(t, err)
	require.Len(t, m.calls, 1)
	system := m.calls[0][0]
	assert.Equal(t, llms.ChatMessageTypeSystem, system.Role)
	assert.Contains(t, partText(system), "The current user's id is u-42.")
}

func TestHandleReplaysHistory(t *testing.T) {
	m := &fakeModel{script: []scripted{text("Sure.")}}
	s, store := newSession(m, &fakeExecutor{})
	require.NoError(t, store.Append(context.Background(), "u-1",
		model.Turn{Role: model.RoleUser, Text: "any biryani?"},
		model.Turn{Role: model.RoleAssistant, Text: "Spice Hub has some."},
	))

	_, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "order one"})
	require.NoError(t, err)

	msgs := m.calls[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, msgs[2].Role)
	assert.Equal(t, "Spice Hub has some.", partText(msgs[2]))
	assert.Equal(t, "order one", partText(msgs[3]))
}

func TestHandleWithTools(t *testing.T) {
	m := &fakeModel{script: []scripted{
		toolCalls("", llms.FunctionCall{Name: "previewOrder", Arguments: `{"restaurantName":"Spice Hub"}`}),
		text("Your order comes to 350 rupees."),
	}}
	exec := &fakeExecutor{outcomes: []tools.Outcome{
		{Tool: tools.PreviewOrder, Type: tools.TypeOrderPreview, Data: map[string]any{"total": 350}},
	}}
	s, store := newSession(m, exec)

	reply, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "2 veg biryani from spice hub"})
	require.NoError(t, err)
	assert.Equal(t, "Your order comes to 350 rupees.", reply.Message)
	assert.Empty(t, reply.Type)
	require.Len(t, reply.Responses, 1)
	assert.Equal(t, tools.TypeOrderPreview, reply.Responses[0].Type)
	assert.Empty(t, reply.Errors)

	require.Len(t, exec.got, 1)
	assert.Equal(t, tools.Proposed{ID: "previewOrder", Name: "previewOrder", Arguments: `{"restaurantName":"Spice Hub"}`}, exec.got[0])

	require.Len(t, m.calls, 2)
	second := m.calls[1]
	require.Len(t, second, 3, "a tool-only answer is not replayed as text")
	for _, msg := range second {
		assert.NotContains(t, partText(msg), EmptyReply)
	}
	assert.Equal(t, llms.ChatMessageTypeHuman, second[2].Role)
	assert.Equal(t, `Function responses: [{"type":"orderPreview","data":{"total":350}}]`, partText(second[2]))

	assert.Equal(t, []string{
		"user: 2 veg biryani from spice hub",
		"assistant: " + EmptyReply,
		"assistant: Your order comes to 350 rupees.",
	}, texts(t, store, "u-1"))
}

func TestHandleReportsToolFailures(t *testing.T) {
	m := &fakeModel{script: []scripted{
		toolCalls("Looking.", llms.FunctionCall{Name: "orderPizza"}, llms.FunctionCall{Name: "searchRestaurants"}),
		text("I could not do that."),
	}}
	exec := &fakeExecutor{outcomes: []tools.Outcome{
		{Call: tools.Proposed{Name: "orderPizza"}, Err: &tools.UnsupportedToolError{Name: "orderPizza"}},
		{Call: tools.Proposed{Name: "searchRestaurants"}, Type: tools.TypeRestaurants, Data: []string{}},
	}}
	s, _ := newSession(m, exec)

	reply, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "pizza"})
	require.NoError(t, err)
	require.Len(t, reply.Responses, 1)
	require.Len(t, reply.Errors, 1)
	assert.Equal(t, "orderPizza", reply.Errors[0].Tool)
	require.Len(t, m.calls[1], 4)
	assert.Equal(t, "Looking.", partText(m.calls[1][2]))
	assert.Contains(t, partText(m.calls[1][3]), `Function errors: [{"tool":"orderPizza","error":"unsupported tool \"orderPizza\""}]`)
}

func TestHandleAbortedBatchKeepsFirstTurn(t *testing.T) {
	m := &fakeModel{script: []scripted{toolCalls("One moment.", llms.FunctionCall{Name: "orderPizza"})}}
	exec := &fakeExecutor{err: &tools.UnsupportedToolError{Name: "orderPizza"}}
	s, store := newSession(m, exec)

	_, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "pizza"})
	var u *tools.UnsupportedToolError
	require.ErrorAs(t, err, &u)
	assert.Len(t, m.calls, 1)
	assert.Equal(t, []string{"user: pizza", "assistant: One moment."}, texts(t, store, "u-1"))
}

func TestHandleModelFailures(t *testing.T) {
	t.Run("initial", func(t *testing.T) {
		m := &fakeModel{script: []scripted{{err: errors.New("quota exceeded")}}}
		s, store := newSession(m, &fakeExecutor{})
		_, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "hi"})
		var up *UpstreamModelError
		require.ErrorAs(t, err, &up)
		assert.Equal(t, "initial", up.Stage)
		assert.Empty(t, texts(t, store, "u-1"))
	})
	t.Run("no candidates", func(t *testing.T) {
		m := &fakeModel{script: []scripted{{resp: &llms.ContentResponse{}}}}
		s, _ := newSession(m, &fakeExecutor{})
		_, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "hi"})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
	t.Run("final", func(t *testing.T) {
		m := &fakeModel{script: []scripted{
			toolCalls("", llms.FunctionCall{Name: "searchRestaurants"}),
			{err: errors.New("backend unavailable")},
		}}
		exec := &fakeExecutor{outcomes: []tools.Outcome{{Type: tools.TypeRestaurants, Data: []string{}}}}
		s, store := newSession(m, exec)
		_, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "hi"})
		var up *UpstreamModelError
		require.ErrorAs(t, err, &up)
		assert.Equal(t, "final", up.Stage)
		assert.Len(t, texts(t, store, "u-1"), 2)
	})
}

func TestHandleRejectsIncompleteRequests(t *testing.T) {
	s, _ := newSession(&fakeModel{}, &fakeExecutor{})
	for _, req := range []Request{{UserID: "u-1"}, {Message: "hi"}, {UserID: " ", Message: "hi"}} {
		_, err := s.Handle(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

type slowModel struct{}

func (slowModel) GenerateContent(ctx context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	<-ctx.Done()
	return nil, errors.New("request aborted")
}

func TestHandleTimeout(t *testing.T) {
	s := NewSession(slowModel{}, &fakeExecutor{}, conversation.NewMemoryStore(conversation.Options{}), WithTimeout(20*time.Millisecond))
	_, err := s.Handle(context.Background(), Request{UserID: "u-1", Message: "hi"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
