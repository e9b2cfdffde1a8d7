package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/food-ordering-assistant/internal/assistant"
	"github.com/iliyamo/food-ordering-assistant/internal/cache"
	"github.com/iliyamo/food-ordering-assistant/internal/config"
	"github.com/iliyamo/food-ordering-assistant/internal/conversation"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
	"github.com/iliyamo/food-ordering-assistant/internal/pricing"
	"github.com/iliyamo/food-ordering-assistant/internal/repository"
	"github.com/iliyamo/food-ordering-assistant/internal/tools"
)

type fakeChat struct {
	got   assistant.Request
	reply *assistant.Reply
	err   error
}

func (f *fakeChat) Handle(_ context.Context, req assistant.Request) (*assistant.Reply, error) {
	f.got = req
	return f.reply, f.err
}

func do(t *testing.T, h echo.HandlerFunc, method, target, body string, set map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range set {
		c.Set(k, v)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestChat(t *testing.T) {
	chat := &fakeChat{reply: &assistant.Reply{
		Message:   "Here you go.",
		Responses: []tools.Result{{Type: tools.TypeRestaurants, Data: []string{"Spice Hub"}}},
	}}
	h := &ChatHandler{Session: chat}

	rec := do(t, h.Chat, http.MethodPost, "/v1/chat", `{"message":"biryani places?","userId":"u-1"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Here you go.","responses":[{"type":"restaurants","data":["Spice Hub"]}]}`, rec.Body.String())
	assert.Equal(t, assistant.Request{UserID: "u-1", Message: "biryani places?"}, chat.got)
}

func TestChatValidation(t *testing.T) {
	h := &ChatHandler{Session: &fakeChat{}}

	rec := do(t, h.Chat, http.MethodPost, "/v1/chat", `{"message":"hi"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Message and userId are required"}`, rec.Body.String())

	rec = do(t, h.Chat, http.MethodPost, "/v1/chat", `{"message":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h.Chat, http.MethodPost, "/v1/chat", `{"message":"hi","userId":"u-2"}`, map[string]any{"user_id": "u-1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestChatErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: empty", assistant.ErrValidation), http.StatusBadRequest},
		{&tools.ValidationError{Field: "items", Msg: "is required"}, http.StatusBadRequest},
		{&repository.NotFoundError{Entity: "restaurant", Key: "Nowhere"}, http.StatusNotFound},
		{&pricing.InvalidCustomizationError{Item: "Veg Biryani", Name: "Gold Leaf"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("Closed Kitchen: %w", tools.ErrNotAcceptingOrders), http.StatusUnprocessableEntity},
		{repository.ErrConflict, http.StatusConflict},
		{&tools.UnsupportedToolError{Name: "orderPizza"}, http.StatusBadGateway},
		{&assistant.UpstreamModelError{Stage: "initial", Err: errors.New("quota")}, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		h := &ChatHandler{Session: &fakeChat{err: tc.err}}
		rec := do(t, h.Chat, http.MethodPost, "/v1/chat", `{"message":"hi","userId":"u-1"}`, nil)
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())
	}

	h := &ChatHandler{Session: &fakeChat{err: errors.New("disk full")}}
	rec := do(t, h.Chat, http.MethodPost, "/v1/chat", `{"message":"hi","userId":"u-1"}`, nil)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestClearHistory(t *testing.T) {
	store := conversation.NewMemoryStore(conversation.Options{})
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "u-1", model.Turn{Role: model.RoleUser, Text: "hi"}))
	h := &ChatHandler{History: store}

	rec := do(t, h.ClearHistory, http.MethodDelete, "/v1/chat/history?userId=u-1", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	turns, err := store.History(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	rec = do(t, h.ClearHistory, http.MethodDelete, "/v1/chat/history", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type fakeCanceller struct {
	userID, orderID string
	err             error
}

func (f *fakeCanceller) CancelOrder(_ context.Context, userID, orderID string) (*model.Order, error) {
	f.userID, f.orderID = userID, orderID
	if f.err != nil {
		return nil, f.err
	}
	return &model.Order{ID: orderID, UserID: userID, Status: model.OrderCancelled}, nil
}

func TestCancelOrder(t *testing.T) {
	fc := &fakeCanceller{}
	h := &OrderHandler{Orders: fc}
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/order-1/cancel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("order-1")
	c.Set("user_id", "u-1")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", fc.userID)
	assert.Equal(t, "order-1", fc.orderID)
	assert.Contains(t, rec.Body.String(), `"CANCELLED"`)

	fc.err = repository.ErrConflict
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("order-1")
	c.Set("user_id", "u-1")
	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCacheAdmin(t *testing.T) {
	svc := cache.NewService(config.CacheConfig{})
	svc.Set(cache.Menu, "menu:spice hub", "x")
	svc.Set(cache.Restaurant, "restaurant:spice hub", "y")
	h := &CacheHandler{Cache: svc}
	e := echo.New()

	rec := do(t, h.Stats, http.MethodGet, "/v1/admin/cache", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"menu":{"keys":1,"entries":["menu:spice hub"]`)

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/cache/menu", nil)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("kind")
	c.SetParamValues("menu")
	require.NoError(t, h.Invalidate(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := svc.Get(cache.Menu, "menu:spice hub")
	assert.False(t, ok)
	_, ok = svc.Get(cache.Restaurant, "restaurant:spice hub")
	assert.True(t, ok)

	svc.Set(cache.Restaurant, cache.Key("restaurant", "Spice Hub"), "z")
	invalidate := func(target string) int {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodDelete, target, nil), rec)
		c.SetParamNames("kind")
		c.SetParamValues("restaurant")
		require.NoError(t, h.Invalidate(c))
		return rec.Code
	}
	assert.Equal(t, http.StatusNotFound, invalidate("/v1/admin/cache/restaurant?key=Spice%20Hub"))
	_, ok = svc.Get(cache.Restaurant, "restaurant:spice hub")
	assert.True(t, ok)
	assert.Equal(t, http.StatusNoContent, invalidate("/v1/admin/cache/restaurant?prefix=restaurant&key=Spice%20Hub"))
	_, ok = svc.Get(cache.Restaurant, "restaurant:spice hub")
	assert.False(t, ok)
	svc.Set(cache.Restaurant, "restaurant:spice hub", "z")
	assert.Equal(t, http.StatusNoContent, invalidate("/v1/admin/cache/restaurant?key=restaurant:spice%20hub"))
	_, ok = svc.Get(cache.Restaurant, "restaurant:spice hub")
	assert.False(t, ok)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("kind")
	c.SetParamValues("orders")
	require.NoError(t, h.Invalidate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	rec := do(t, (&HealthHandler{DB: pinger{}}).Health, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, (&HealthHandler{DB: pinger{err: errors.New("refused")}}).Health, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
