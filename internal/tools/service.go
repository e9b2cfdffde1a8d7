package tools

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/iliyamo/food-ordering-assistant/internal/cache"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
	"github.com/iliyamo/food-ordering-assistant/internal/queue"
	"github.com/iliyamo/food-ordering-assistant/internal/repository"
)

// RestaurantStore is the restaurant lookup used by the handlers.
type RestaurantStore interface {
	Search(ctx context.Context, f repository.RestaurantFilter) ([]*model.Restaurant, error)
	GetByName(ctx context.Context, name string) (*model.Restaurant, error)
	GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)
}

// MenuStore resolves active menus.
type MenuStore interface {
	ActiveByName(ctx context.Context, name string) (*model.Menu, error)
	ActiveByRestaurant(ctx context.Context, restaurantID uint64) (*model.Menu, error)
}

// ItemStore reads menu items.
type ItemStore interface {
	ListByMenu(ctx context.Context, menuID uint64) ([]*model.Item, error)
	FindInMenu(ctx context.Context, menuID uint64, name string) (*model.Item, error)
	GetByID(ctx context.Context, id uint64) (*model.Item, error)
	SearchItems(ctx context.Context, q repository.ItemSearchQuery) ([]repository.ItemMatch, error)
}

// OrderStore persists and loads orders.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	GetForUser(ctx context.Context, id, userID string) (*model.Order, error)
	Cancel(ctx context.Context, id, userID string, notBefore time.Time) (*model.Order, error)
}

// OrderEvents receives placed orders.  Failures are logged and never fail
// the order.
type OrderEvents interface {
	OrderPlaced(ctx context.Context, ev queue.OrderPlacedEvent) error
}

// Deps are the collaborators of a Service.  Events and Ledger are
// optional; a nil Ledger disables the preview requirement.
type Deps struct {
	Restaurants RestaurantStore
	Menus       MenuStore
	Items       ItemStore
	Orders      OrderStore
	Cache       *cache.Service
	Events      OrderEvents
	Ledger      Ledger
	Logger      *slog.Logger
	Location    *time.Location   // zone of the opening hours
	Now         func() time.Time // defaults to time.Now
	// IncludeUnavailable lets item searches return items flagged
	// unavailable, as development data often is.
	IncludeUnavailable bool
}

// Service implements the tool handlers.
type Service struct {
	Deps
}

const (
	restaurantSearchLimit = 20
	itemSearchLimit       = 50
)

// NewService fills in defaults for the optional dependencies.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{Deps: d}
}

// Handlers returns the handler table for a Dispatcher.
func (s *Service) Handlers() map[Name]Handler {
	return map[Name]Handler{
		SearchRestaurants:     s.searchRestaurants,
		GetRestaurantMenu:     s.getRestaurantMenu,
		SearchMenuItems:       s.searchMenuItems,
		FindRestaurantsByItem: s.findRestaurantsByItem,
		PreviewOrder:          s.previewOrder,
		CreateOrder:           s.createOrder,
		GetOrderStatus:        s.getOrderStatus,
	}
}

func (s *Service) now() time.Time {
	return s.Now().In(s.Location)
}
