package tools

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/food-ordering-assistant/internal/cache"
	"github.com/iliyamo/food-ordering-assistant/internal/config"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
	"github.com/iliyamo/food-ordering-assistant/internal/queue"
	"github.com/iliyamo/food-ordering-assistant/internal/repository"
)

// Friday 2026-10-16 13:00 UTC
var testNow = time.Date(2026, 10, 16, 13, 0, 0, 0, time.UTC)

func nf(entity, key string) error { return &repository.NotFoundError{Entity: entity, Key: key} }

type fakeRestaurants struct {
	mu      sync.Mutex
	list    []*model.Restaurant
	calls   int
	filters []repository.RestaurantFilter
}

func (f *fakeRestaurants) Search(_ context.Context, flt repository.RestaurantFilter) ([]*model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.filters = append(f.filters, flt)
	out := []*model.Restaurant{}
	for _, r := range f.list {
		if flt.Name == "" || strings.Contains(strings.ToLower(r.Name), strings.ToLower(flt.Name)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRestaurants) GetByName(_ context.Context, name string) (*model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, r := range f.list {
		if strings.EqualFold(r.Name, strings.TrimSpace(name)) {
			return r, nil
		}
	}
	return nil, nf("restaurant", name)
}

func (f *fakeRestaurants) GetByID(_ context.Context, id uint64) (*model.Restaurant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, r := range f.list {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nf("restaurant", "")
}

type fakeMenus struct {
	mu    sync.Mutex
	list  []*model.Menu
	calls int
}

func (f *fakeMenus) ActiveByName(_ context.Context, name string) (*model.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, m := range f.list {
		if m.IsActive && strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, nf("menu", name)
}

func (f *fakeMenus) ActiveByRestaurant(_ context.Context, id uint64) (*model.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, m := range f.list {
		if m.IsActive && m.RestaurantID == id {
			return m, nil
		}
	}
	return nil, nf("menu", "")
}

type fakeItems struct {
	mu      sync.Mutex
	list    []*model.Item
	matches []repository.ItemMatch
	queries []repository.ItemSearchQuery
	calls   int
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func (f *fakeItems) ListByMenu(_ context.Context, menuID uint64) ([]*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := []*model.Item{}
	for _, it := range f.list {
		if it.MenuID == menuID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) FindInMenu(_ context.Context, menuID uint64, name string) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, it := range f.list {
		if it.MenuID == menuID && strings.Contains(squash(it.Name), squash(name)) {
			return it, nil
		}
	}
	return nil, nf("item", name)
}

func (f *fakeItems) GetByID(_ context.Context, id uint64) (*model.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for _, it := range f.list {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, nf("item", "")
}

func (f *fakeItems) SearchItems(_ context.Context, q repository.ItemSearchQuery) ([]repository.ItemMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	return f.matches, nil
}

type fakeOrders struct {
	mu      sync.Mutex
	orders  map[string]*model.Order
	created []*model.Order
	err     error
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	o.ID = "order-1"
	o.CreatedAt = testNow
	f.created = append(f.created, o)
	if f.orders == nil {
		f.orders = map[string]*model.Order{}
	}
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrders) GetForUser(_ context.Context, id, userID string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok && o.UserID == userID {
		return o, nil
	}
	return nil, nf("order", id)
}

func (f *fakeOrders) Cancel(_ context.Context, id, userID string, notBefore time.Time) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.UserID != userID {
		return nil, nf("order", id)
	}
	if o.CreatedAt.Before(notBefore) {
		return nil, repository.ErrConflict
	}
	o.Status = model.OrderCancelled
	return o, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []queue.OrderPlacedEvent
	err    error
}

func (f *fakeEvents) OrderPlaced(_ context.Context, ev queue.OrderPlacedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

type fixture struct {
	svc         *Service
	restaurants *fakeRestaurants
	menus       *fakeMenus
	items       *fakeItems
	orders      *fakeOrders
	events      *fakeEvents
	ledger      *MemoryLedger
}

func spiceHub() *model.Restaurant {
	return &model.Restaurant{
		ID:            1,
		Name:          "Spice Hub",
		Cuisines:      []string{"Indian", "Mughlai"},
		PriceTier:     2,
		Rating:        4.4,
		ContactNumber: "+91 98000 00000",
		UPIID:         "spicehub@upi",
		IsActive:      true,
		IsVerified:    true,
		OpeningHours: model.Schedule{
			time.Monday: {{Open: 540, Close: 1320}},
			time.Friday: {{Open: 600, Close: 1380}},
		},
	}
}

func newFixture() *fixture {
	closed := &model.Restaurant{ID: 2, Name: "Closed Kitchen", IsActive: false, IsVerified: true, UPIID: "closed@upi"}
	f := &fixture{
		restaurants: &fakeRestaurants{list: []*model.Restaurant{spiceHub(), closed}},
		menus: &fakeMenus{list: []*model.Menu{
			{ID: 7, RestaurantID: 1, Name: "Spice Hub's Menu", IsActive: true},
			{ID: 8, RestaurantID: 2, Name: "Closed Kitchen's Menu", IsActive: true},
		}},
		items: &fakeItems{list: []*model.Item{
			{ID: 11, MenuID: 7, Name: "Veg Biryani", BasePrice: 150, Category: "Main Course", Type: model.TypeVeg,
				Tags:           []string{"spicy"},
				Customizations: []model.Customization{{Name: "Extra Raita", Price: 20}, {Name: "Extra Gravy", Price: 15}}},
			{ID: 12, MenuID: 7, Name: "Paneer Tikka", BasePrice: 220, Category: "Starters", Type: model.TypeVeg,
				Tags: []string{"bestseller"}},
			{ID: 13, MenuID: 7, Name: "Chicken Biryani", BasePrice: 250, Category: "Main Course", Type: model.TypeNonVeg},
		}},
		orders: &fakeOrders{},
		events: &fakeEvents{},
		ledger: NewMemoryLedger(15 * time.Minute),
	}
	f.svc = NewService(Deps{
		Restaurants: f.restaurants,
		Menus:       f.menus,
		Items:       f.items,
		Orders:      f.orders,
		Cache:       cache.NewService(config.CacheConfig{}),
		Events:      f.events,
		Ledger:      f.ledger,
		Location:    time.UTC,
		Now:         func() time.Time { return testNow },
	})
	return f
}

func (f *fixture) call(name Name, userID string, args map[string]any) (any, error) {
	return f.svc.Handlers()[name](context.Background(), Call{UserID: userID, Args: args})
}

// spiceHubOrder is "2 Veg Biryani with Extra Raita".  The client price of
// the customization is deliberately wrong.
func spiceHubOrder() map[string]any {
	return map[string]any{
		"restaurantName": "Spice Hub",
		"items": []any{
			map[string]any{
				"itemName": "veg biryani",
				"quantity": float64(2),
				"customizations": []any{
					map[string]any{"name": " extra RAITA ", "price": float64(999)},
				},
			},
		},
	}
}
