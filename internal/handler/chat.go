package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering-assistant/internal/assistant"
	"github.com/iliyamo/food-ordering-assistant/internal/conversation"
)

// Chatter answers one chat turn.  *assistant.Session implements it.
type Chatter interface {
	Handle(ctx context.Context, req assistant.Request) (*assistant.Reply, error)
}

// ChatHandler serves the conversational endpoints.
type ChatHandler struct {
	Session Chatter
	History conversation.Store
}

// Chat handles POST /v1/chat with a body of {"message", "userId"}.
func (h *ChatHandler) Chat(c echo.Context) error {
	var req assistant.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Message == "" || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Message and userId are required"})
	}
	uid, err := callerID(c, req.UserID)
	if err != nil {
		return err
	}
	req.UserID = uid

	reply, err := h.Session.Handle(c.Request().Context(), req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, reply)
}

// ClearHistory handles DELETE /v1/chat/history?userId=.
func (h *ChatHandler) ClearHistory(c echo.Context) error {
	uid, err := callerID(c, c.QueryParam("userId"))
	if err != nil {
		return err
	}
	if err := h.History.Clear(c.Request().Context(), uid); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
