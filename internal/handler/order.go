package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

// OrderCanceller cancels a user's order.  *tools.Service implements it.
type OrderCanceller interface {
	CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
}

// OrderHandler serves order maintenance outside the chat.
type OrderHandler struct {
	Orders OrderCanceller
}

// Cancel handles POST /v1/orders/:id/cancel.  Only PLACED or ACCEPTED
// orders inside the cancellation window can be cancelled; other orders
// yield 409.
func (h *OrderHandler) Cancel(c echo.Context) error {
	uid, err := callerID(c, c.QueryParam("userId"))
	if err != nil {
		return err
	}
	o, err := h.Orders.CancelOrder(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, o)
}
