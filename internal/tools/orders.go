package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/food-ordering-assistant/internal/cache"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
	"github.com/iliyamo/food-ordering-assistant/internal/pricing"
	"github.com/iliyamo/food-ordering-assistant/internal/queue"
	"github.com/iliyamo/food-ordering-assistant/internal/repository"
)

// OrderPreview is a fully priced prospective order.  It is not persisted.
type OrderPreview struct {
	Restaurant        PreviewRestaurant `json:"restaurant"`
	Items             []PreviewLine     `json:"items"`
	Pricing           pricing.Summary   `json:"pricing"`
	EstimatedWaitTime int               `json:"estimatedWaitTime"`
}

// PreviewRestaurant is the restaurant snapshot of a preview.
type PreviewRestaurant struct {
	Name            string `json:"name"`
	IsCurrentlyOpen bool   `json:"isCurrentlyOpen"`
}

// PreviewLine is one priced line of a preview.
type PreviewLine struct {
	Name                    string                `json:"name"`
	Quantity                int                   `json:"quantity"`
	BasePrice               float64               `json:"basePrice"`
	Type                    model.DietaryType     `json:"type"`
	Category                string                `json:"category"`
	AvailableCustomizations []model.Customization `json:"availableCustomizations"`
	SelectedCustomizations  []model.Customization `json:"selectedCustomizations"`
	ItemTotal               float64               `json:"itemTotal"`
	Subtotal                float64               `json:"subtotal"`
}

// RestaurantContact is attached to placed orders and order status.
type RestaurantContact struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
}

// PlacedOrder is the result of createOrder.
type PlacedOrder struct {
	*model.Order
	Restaurant RestaurantContact `json:"restaurant"`
	Pricing    pricing.Summary   `json:"pricing"`
}

// OrderStatusResult is an order with its lines enriched from the catalog.
type OrderStatusResult struct {
	*model.Order
	Items             []StatusLine       `json:"items"`
	Restaurant        *RestaurantContact `json:"restaurant"`
	EstimatedWaitTime int                `json:"estimatedWaitTime"`
	CanBeCancelled    bool               `json:"canBeCancelled"`
}

// StatusLine is an order line with the item's current catalog data.  The
// catalog fields are null when the item no longer exists.
type StatusLine struct {
	model.OrderLine
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Type        *model.DietaryType `json:"type"`
	Category    *string            `json:"category"`
}

// pricedLine is a requested item resolved against the catalog.
type pricedLine struct {
	item     *model.Item
	quantity int
	unit     float64
	selected []model.Customization
}

func (l pricedLine) previewLine() previewLine {
	names := make([]string, 0, len(l.selected))
	for _, c := range l.selected {
		names = append(names, c.Name)
	}
	return previewLine{ItemID: l.item.ID, Quantity: l.quantity, Customizations: names}
}

func (s *Service) restaurantByName(ctx context.Context, name string) (*model.Restaurant, error) {
	return cache.GetOrFetch(ctx, s.Cache, cache.Restaurant, cache.Key("restaurant", name), func(ctx context.Context) (*model.Restaurant, error) {
		return s.Restaurants.GetByName(ctx, name)
	})
}

// resolveOrder prices the requested items against the restaurant's active
// menu.  Preview and creation share it, so both apply the same
// customization rule and catalog prices.
func (s *Service) resolveOrder(ctx context.Context, a *orderArgs) (*model.Restaurant, []pricedLine, error) {
	r, err := s.restaurantByName(ctx, a.RestaurantName)
	if err != nil {
		return nil, nil, err
	}
	if !r.AcceptsOrders() {
		return nil, nil, fmt.Errorf("%s: %w", r.Name, ErrNotAcceptingOrders)
	}
	menu, err := cache.GetOrFetch(ctx, s.Cache, cache.Menu, cache.Key("restaurant_menu", r.ID), func(ctx context.Context) (*model.Menu, error) {
		return s.Menus.ActiveByRestaurant(ctx, r.ID)
	})
	if err != nil {
		return nil, nil, err
	}

	lines := make([]pricedLine, 0, len(a.Items))
	for _, req := range a.Items {
		key := cache.Key("item", fmt.Sprintf("%d:%s", menu.ID, req.ItemName))
		it, err := cache.GetOrFetch(ctx, s.Cache, cache.Item, key, func(ctx context.Context) (*model.Item, error) {
			return s.Items.FindInMenu(ctx, menu.ID, req.ItemName)
		})
		if err != nil {
			return nil, nil, err
		}
		requested := make([]model.Customization, 0, len(req.Customizations))
		for _, c := range req.Customizations {
			requested = append(requested, model.Customization{Name: c.Name, Price: c.Price})
		}
		unit, selected, err := pricing.LinePrice(it, requested)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, pricedLine{item: it, quantity: req.Quantity, unit: unit, selected: selected})
	}
	return r, lines, nil
}

func summarize(lines []pricedLine) (pricing.Summary, []int) {
	pl := make([]pricing.Line, 0, len(lines))
	qs := make([]int, 0, len(lines))
	for _, l := range lines {
		pl = append(pl, pricing.Line{UnitPrice: l.unit, Quantity: l.quantity})
		qs = append(qs, l.quantity)
	}
	return pricing.Totals(pl), qs
}

func ledgerKey(userID string, r *model.Restaurant, lines []pricedLine) string {
	pls := make([]previewLine, 0, len(lines))
	for _, l := range lines {
		pls = append(pls, l.previewLine())
	}
	return fingerprint(userID, r.ID, pls)
}

func (s *Service) previewOrder(ctx context.Context, call Call) (any, error) {
	var a orderArgs
	if err := decode(call.Args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	r, lines, err := s.resolveOrder(ctx, &a)
	if err != nil {
		return nil, err
	}

	summary, quantities := summarize(lines)
	preview := &OrderPreview{
		Restaurant:        PreviewRestaurant{Name: r.Name, IsCurrentlyOpen: pricing.IsOpen(r.OpeningHours, s.now())},
		Items:             make([]PreviewLine, 0, len(lines)),
		Pricing:           summary,
		EstimatedWaitTime: pricing.EstimateWaitTime(quantities...),
	}
	for _, l := range lines {
		preview.Items = append(preview.Items, PreviewLine{
			Name:                    l.item.Name,
			Quantity:                l.quantity,
			BasePrice:               l.item.BasePrice,
			Type:                    l.item.Type,
			Category:                l.item.Category,
			AvailableCustomizations: l.item.Customizations,
			SelectedCustomizations:  l.selected,
			ItemTotal:               l.unit,
			Subtotal:                l.unit * float64(l.quantity),
		})
	}
	if s.Ledger != nil {
		if err := s.Ledger.Record(ctx, ledgerKey(call.UserID, r, lines)); err != nil {
			return nil, fmt.Errorf("record preview: %w", err)
		}
	}
	return preview, nil
}

func (s *Service) createOrder(ctx context.Context, call Call) (any, error) {
	var a orderArgs
	if err := decode(call.Args, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	var pickup *time.Time
	if a.PickupTime != "" {
		t, err := time.Parse(time.RFC3339, a.PickupTime)
		if err != nil {
			return nil, invalid("pickupTime", "must be an ISO 8601 timestamp")
		}
		pickup = &t
	}

	r, lines, err := s.resolveOrder(ctx, &a)
	if err != nil {
		return nil, err
	}
	fp := ledgerKey(call.UserID, r, lines)
	if s.Ledger != nil {
		ok, err := s.Ledger.Take(ctx, fp)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, invalid("items", "no matching preview; call previewOrder with the same restaurant and items first")
		}
	}

	summary, _ := summarize(lines)
	order := &model.Order{
		UserID:              call.UserID,
		RestaurantID:        r.ID,
		Items:               make([]model.OrderLine, 0, len(lines)),
		TotalAmount:         summary.Subtotal,
		PickupTime:          pickup,
		Payment:             model.Payment{UPIID: r.UPIID, Status: model.PaymentPending},
		Status:              model.OrderPlaced,
		SpecialInstructions: a.SpecialInstructions,
	}
	for _, l := range lines {
		order.Items = append(order.Items, model.OrderLine{
			ItemID:         l.item.ID,
			Quantity:       l.quantity,
			Price:          l.unit,
			Customizations: l.selected,
		})
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		if s.Ledger != nil {
			if rerr := s.Ledger.Record(context.WithoutCancel(ctx), fp); rerr != nil {
				s.Logger.Warn("preview not restored", "user", call.UserID, "err", rerr)
			}
		}
		return nil, err
	}
	s.publishPlaced(ctx, order, r, lines)

	return &PlacedOrder{
		Order:      order,
		Restaurant: RestaurantContact{Name: r.Name, ContactNumber: r.ContactNumber},
		Pricing:    summary,
	}, nil
}

func (s *Service) publishPlaced(ctx context.Context, o *model.Order, r *model.Restaurant, lines []pricedLine) {
	if s.Events == nil {
		return
	}
	ev := queue.OrderPlacedEvent{
		OrderID:        o.ID,
		UserID:         o.UserID,
		RestaurantID:   r.ID,
		RestaurantName: r.Name,
		Items:          make([]queue.OrderEventLine, 0, len(lines)),
		TotalAmount:    o.TotalAmount,
		PlacedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.PickupTime != nil {
		ev.PickupTime = o.PickupTime.UTC().Format(time.RFC3339)
	}
	for _, l := range lines {
		names := make([]string, 0, len(l.selected))
		for _, c := range l.selected {
			names = append(names, c.Name)
		}
		ev.Items = append(ev.Items, queue.OrderEventLine{
			ItemID:         l.item.ID,
			Name:           l.item.Name,
			Quantity:       l.quantity,
			UnitPrice:      l.unit,
			Customizations: names,
		})
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Events.OrderPlaced(pctx, ev); err != nil {
		s.Logger.Warn("order event not published", "order_id", o.ID, "err", err)
	}
}

func (s *Service) getOrderStatus(ctx context.Context, call Call) (any, error) {
	var a orderStatusArgs
	if err := decode(call.Args, &a); err != nil {
		return nil, err
	}
	if a.OrderID == "" {
		return nil, invalid("orderId", "is required")
	}
	userID := call.UserID
	if userID == "" {
		userID = a.UserID
	}
	if userID == "" {
		return nil, invalid("userId", "is required")
	}
	if a.UserID != "" && a.UserID != userID {
		s.Logger.Debug("ignoring model-supplied userId", "session", userID, "arg", a.UserID)
	}

	order, err := s.Orders.GetForUser(ctx, a.OrderID, userID)
	if err != nil {
		return nil, err
	}

	res := &OrderStatusResult{
		Order:             order,
		Items:             make([]StatusLine, len(order.Items)),
		EstimatedWaitTime: pricing.EstimateWaitTime(order.Quantities()...),
		CanBeCancelled:    pricing.CanBeCancelled(order, s.Now()),
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, line := range order.Items {
		res.Items[i] = StatusLine{OrderLine: line}
		g.Go(func() error {
			it, err := cache.GetOrFetch(gctx, s.Cache, cache.Item, cache.Key("order_item", line.ItemID), func(ctx context.Context) (*model.Item, error) {
				return s.Items.GetByID(ctx, line.ItemID)
			})
			if err != nil {
				return s.bestEffort(gctx, err, "item", line.ItemID)
			}
			name, desc, typ, category := it.Name, it.Description, it.Type, it.Category
			res.Items[i].Name = &name
			res.Items[i].Description = &desc
			res.Items[i].Type = &typ
			res.Items[i].Category = &category
			return nil
		})
	}
	g.Go(func() error {
		r, err := cache.GetOrFetch(gctx, s.Cache, cache.Restaurant, cache.Key("restaurant_id", order.RestaurantID), func(ctx context.Context) (*model.Restaurant, error) {
			return s.Restaurants.GetByID(ctx, order.RestaurantID)
		})
		if err != nil {
			return s.bestEffort(gctx, err, "restaurant", order.RestaurantID)
		}
		res.Restaurant = &RestaurantContact{Name: r.Name, ContactNumber: r.ContactNumber}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// bestEffort swallows enrichment failures unless the request itself was
// cancelled.
func (s *Service) bestEffort(ctx context.Context, err error, entity string, id uint64) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.Logger.Warn("order status enrichment failed", "entity", entity, "id", id, "err", err)
	}
	return nil
}

// CancelOrder cancels one of userID's orders while it is still
// cancellable.  It returns repository.ErrConflict once the order has
// progressed or the cancellation window has passed.
func (s *Service) CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	if orderID == "" {
		return nil, invalid("orderId", "is required")
	}
	return s.Orders.Cancel(ctx, orderID, userID, s.Now().Add(-pricing.CancelWindow))
}
