package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering-assistant/internal/assistant"
	"github.com/iliyamo/food-ordering-assistant/internal/pricing"
	"github.com/iliyamo/food-ordering-assistant/internal/repository"
	"github.com/iliyamo/food-ordering-assistant/internal/tools"
)

// statusOf maps a domain error onto an HTTP status code.
func statusOf(err error) int {
	var (
		validation *tools.ValidationError
		customize  *pricing.InvalidCustomizationError
		unknown    *tools.UnsupportedToolError
		upstream   *assistant.UpstreamModelError
	)
	switch {
	case errors.Is(err, assistant.ErrValidation), errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &customize), errors.Is(err, tools.ErrNotAcceptingOrders):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &unknown), errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// fail writes err as {"error": "..."}.  Internal errors are logged and
// reported without detail.
func fail(c echo.Context, err error) error {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(code, echo.Map{"error": "internal error"})
	}
	return c.JSON(code, echo.Map{"error": err.Error()})
}

// callerID returns the authenticated user, or claimed when the request is
// not authenticated.  An authenticated caller may only act for itself.
func callerID(c echo.Context, claimed string) (string, error) {
	if sub, ok := c.Get("user_id").(string); ok && sub != "" {
		if claimed != "" && claimed != sub {
			return "", echo.NewHTTPError(http.StatusForbidden, "userId does not match token")
		}
		return sub, nil
	}
	if claimed == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "userId is required")
	}
	return claimed, nil
}
