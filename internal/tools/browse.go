package tools

import (
	"context"
	"strings"

	"github.com/iliyamo/food-ordering-assistant/internal/cache"
	"github.com/iliyamo/food-ordering-assistant/internal/model"
	"github.com/iliyamo/food-ordering-assistant/internal/pricing"
	"github.com/iliyamo/food-ordering-assistant/internal/repository"
)

// RestaurantResult is a restaurant annotated with its live open status.
type RestaurantResult struct {
	*model.Restaurant
	IsCurrentlyOpen bool `json:"isCurrentlyOpen"`
}

// MenuResult lists the items of a restaurant's active menu.
type MenuResult struct {
	RestaurantID uint64        `json:"restaurantId"`
	MenuID       uint64        `json:"menuId"`
	Items        []*model.Item `json:"items"`
}

// MenuItemResult is an item found by a cross-restaurant search.
type MenuItemResult struct {
	*model.Item
	Menu       string                   `json:"menu"`
	Restaurant repository.RestaurantRef `json:"restaurant"`
}

// RestaurantWithItems is a restaurant serving at least one item that
// matched a search.
type RestaurantWithItems struct {
	ID            uint64         `json:"id"`
	Name          string         `json:"name"`
	PriceRange    int            `json:"priceRange"`
	MatchingItems []MatchingItem `json:"matchingItems"`
}

// MatchingItem summarizes an item in RestaurantWithItems.
type MatchingItem struct {
	ItemID    uint64            `json:"itemId"`
	Name      string            `json:"name"`
	BasePrice float64           `json:"basePrice"`
	Type      model.DietaryType `json:"type"`
	Category  string            `json:"category"`
}

func (s *Service) searchRestaurants(ctx context.Context, call Call) (any, error) {
	var a searchRestaurantsArgs
	if err := decode(call.Args, &a); err != nil {
		return nil, err
	}
	key := cache.Key("search_restaurants", sanitize(call.Args))
	list, err := cache.GetOrFetch(ctx, s.Cache, cache.Restaurant, key, func(ctx context.Context) ([]*model.Restaurant, error) {
		return s.Restaurants.Search(ctx, repository.RestaurantFilter{
			Name:         a.Name,
			Cuisine:      a.Cuisine,
			MaxPriceTier: a.PriceRange,
			MinRating:    a.Rating,
			Limit:        restaurantSearchLimit,
		})
	})
	if err != nil {
		return nil, err
	}
	// open status is computed on every call, cached entries outlive shifts
	now := s.now()
	out := make([]RestaurantResult, 0, len(list))
	for _, r := range list {
		out = append(out, RestaurantResult{Restaurant: r, IsCurrentlyOpen: pricing.IsOpen(r.OpeningHours, now)})
	}
	return out, nil
}

func (s *Service) getRestaurantMenu(ctx context.Context, call Call) (any, error) {
	var a menuArgs
	if err := decode(call.Args, &a); err != nil {
		return nil, err
	}
	if a.RestaurantName == "" {
		return nil, invalid("restaurantName", "is required")
	}
	typ, err := dietaryType("type", a.Type)
	if err != nil {
		return nil, err
	}

	menu, err := cache.GetOrFetch(ctx, s.Cache, cache.Menu, cache.Key("menu", a.RestaurantName), func(ctx context.Context) (*MenuResult, error) {
		m, err := s.Menus.ActiveByName(ctx, model.MenuName(a.RestaurantName))
		if err != nil {
			return nil, err
		}
		items, err := s.Items.ListByMenu(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		return &MenuResult{RestaurantID: m.RestaurantID, MenuID: m.ID, Items: items}, nil
	})
	if err != nil {
		return nil, err
	}

	filtered := &MenuResult{RestaurantID: menu.RestaurantID, MenuID: menu.MenuID, Items: make([]*model.Item, 0, len(menu.Items))}
	category := strings.ToLower(a.Category)
	for _, it := range menu.Items {
		switch {
		case category != "" && !strings.Contains(strings.ToLower(it.Category), category):
		case typ != "" && it.Type != typ:
		case a.MaxPrice > 0 && it.BasePrice > a.MaxPrice:
		case !it.HasTags(a.Tags):
		default:
			filtered.Items = append(filtered.Items, it)
		}
	}
	return filtered, nil
}

func (s *Service) searchMenuItems(ctx context.Context, call Call) (any, error) {
	var a searchItemsArgs
	if err := decode(call.Args, &a); err != nil {
		return nil, err
	}
	typ, err := dietaryType("type", a.Type)
	if err != nil {
		return nil, err
	}
	key := cache.Key("menu_items", sanitize(call.Args))
	return cache.GetOrFetch(ctx, s.Cache, cache.Item, key, func(ctx context.Context) ([]MenuItemResult, error) {
		matches, err := s.Items.SearchItems(ctx, repository.ItemSearchQuery{
			Name:          a.Name,
			Category:      a.Category,
			Type:          typ,
			MaxPrice:      a.MaxBasePrice,
			Tags:          a.Tags,
			Allergens:     a.Allergens,
			AvailableOnly: !s.IncludeUnavailable,
			Limit:         itemSearchLimit,
		})
		if err != nil {
			return nil, err
		}
		out := make([]MenuItemResult, 0, len(matches))
		for _, m := range matches {
			if !m.Restaurant.IsActive || !m.Restaurant.IsVerified {
				continue
			}
			out = append(out, MenuItemResult{Item: m.Item, Menu: m.MenuName, Restaurant: m.Restaurant})
		}
		return out, nil
	})
}

func (s *Service) findRestaurantsByItem(ctx context.Context, call Call) (any, error) {
	var a itemRestaurantsArgs
	if err := decode(call.Args, &a); err != nil {
		return nil, err
	}
	terms := repository.Terms(a.ItemName)
	if len(terms) == 0 {
		return nil, invalid("itemName", "is required")
	}
	typ, err := dietaryType("type", a.Type)
	if err != nil {
		return nil, err
	}
	key := cache.Key("restaurants_by_item", sanitize(call.Args))
	return cache.GetOrFetch(ctx, s.Cache, cache.Restaurant, key, func(ctx context.Context) ([]*RestaurantWithItems, error) {
		matches, err := s.Items.SearchItems(ctx, repository.ItemSearchQuery{
			Terms:    terms,
			Category: a.Category,
			Type:     typ,
			MaxPrice: a.MaxPrice,
		})
		if err != nil {
			return nil, err
		}
		return groupByRestaurant(matches), nil
	})
}

// groupByRestaurant keeps restaurants in first-seen order.
func groupByRestaurant(matches []repository.ItemMatch) []*RestaurantWithItems {
	out := []*RestaurantWithItems{}
	byID := map[uint64]*RestaurantWithItems{}
	for _, m := range matches {
		r, ok := byID[m.Restaurant.ID]
		if !ok {
			r = &RestaurantWithItems{ID: m.Restaurant.ID, Name: m.Restaurant.Name, PriceRange: m.Restaurant.PriceTier}
			byID[m.Restaurant.ID] = r
			out = append(out, r)
		}
		r.MatchingItems = append(r.MatchingItems, MatchingItem{
			ItemID:    m.Item.ID,
			Name:      m.Item.Name,
			BasePrice: m.Item.BasePrice,
			Type:      m.Item.Type,
			Category:  m.Item.Category,
		})
	}
	return out
}
