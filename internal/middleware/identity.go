package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/labstack/echo/v4"
)

// maxPeek bounds how much of a JSON body is read to find the caller.
const maxPeek = 64 << 10

// userID identifies the caller for rate limiting: the token subject when
// authenticated, else the userId query parameter, else the userId field of
// a JSON body, else "anon".
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	if v := c.QueryParam("userId"); v != "" {
		return v
	}
	if v := bodyUserID(c); v != "" {
		return v
	}
	return "anon"
}

// bodyUserID reads userId from a JSON request body and restores the body
// for the handler.
func bodyUserID(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		return ""
	}
	head, err := io.ReadAll(io.LimitReader(req.Body, maxPeek))
	req.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), req.Body))
	if err != nil {
		return ""
	}
	var body struct {
		UserID string `json:"userId"`
	}
	if json.Unmarshal(head, &body) != nil {
		return ""
	}
	return strings.TrimSpace(body.UserID)
}
