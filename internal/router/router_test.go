package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/food-ordering-assistant/internal/assistant"
	"github.com/iliyamo/food-ordering-assistant/internal/cache"
	"github.com/iliyamo/food-ordering-assistant/internal/config"
	"github.com/iliyamo/food-ordering-assistant/internal/conversation"
	"github.com/iliyamo/food-ordering-assistant/internal/handler"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
	"github.com/iliyamo/food-ordering-assistant/internal/utils"
)

type echoChat struct{}

func (echoChat) Handle(_ context.Context, req assistant.Request) (*assistant.Reply, error) {
	return &assistant.Reply{Message: "hello " + req.UserID, Type: "text"}, nil
}

type noOrders struct{}

func (noOrders) CancelOrder(context.Context, string, string) (*model.Order, error) {
	return nil, nil
}

func newTestServer(secret string) http.Handler {
	cfg := config.Config{JWTSecret: secret}
	h := Handlers{
		Health: &handler.HealthHandler{},
		Chat:   &handler.ChatHandler{Session: echoChat{}, History: conversation.NewMemoryStore(conversation.Options{})},
		Orders: &handler.OrderHandler{Orders: noOrders{}},
		Cache:  &handler.CacheHandler{Cache: cache.NewService(config.CacheConfig{})},
	}
	return New(cfg, h, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func request(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutesWithoutAuth(t *testing.T) {
	srv := newTestServer("")

	assert.Equal(t, http.StatusOK, request(srv, http.MethodGet, "/healthz", "", "").Code)

	rec := request(srv, http.MethodPost, "/v1/chat", `{"message":"hi","userId":"u-1"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"hello u-1","type":"text","responses":null}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, request(srv, http.MethodGet, "/v1/admin/cache", "", "").Code)

	rec = request(srv, http.MethodDelete, "/v1/chat/history", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"userId is required"}`, rec.Body.String())

	assert.Equal(t, http.StatusNotFound, request(srv, http.MethodGet, "/v1/nope", "", "").Code)
}

func TestRoutesWithAuth(t *testing.T) {
	srv := newTestServer("s3cret")
	user, err := utils.NewAccessToken("s3cret", "u-1", "USER", time.Minute)
	require.NoError(t, err)
	admin, err := utils.NewAccessToken("s3cret", "ops", "ADMIN", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, request(srv, http.MethodPost, "/v1/chat", `{"message":"hi","userId":"u-1"}`, "").Code)

	rec := request(srv, http.MethodPost, "/v1/chat", `{"message":"hi","userId":"u-1"}`, user.Token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = request(srv, http.MethodPost, "/v1/chat", `{"message":"hi","userId":"u-2"}`, user.Token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, http.StatusNoContent, request(srv, http.MethodDelete, "/v1/chat/history", "", user.Token).Code)

	assert.Equal(t, http.StatusForbidden, request(srv, http.MethodGet, "/v1/admin/cache", "", user.Token).Code)
	assert.Equal(t, http.StatusOK, request(srv, http.MethodGet, "/v1/admin/cache", "", admin.Token).Code)
	assert.Equal(t, http.StatusNoContent, request(srv, http.MethodDelete, "/v1/admin/cache/all", "", admin.Token).Code)
}
