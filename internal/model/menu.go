package model

import (
	"fmt"
	"time"
)

// Menu groups the items a restaurant sells.  A restaurant is expected to
// have at most one active menu at a time; the datastore does not enforce it.
type Menu struct {
	ID           uint64      `json:"id"`           // menus.id
	RestaurantID uint64      `json:"restaurantId"` // menus.restaurant_id
	Name         string      `json:"name"`         // menus.name
	Description  string      `json:"description"`  // menus.description
	Items        []MenuEntry `json:"items"`        // menus.items (JSON)
	ActiveFrom   time.Time   `json:"activeFrom"`   // menus.active_from
	ActiveTo     *time.Time  `json:"activeTo"`     // menus.active_to (nullable)
	IsActive     bool        `json:"isActive"`     // menus.is_active
}

// MenuEntry is the denormalized reference a menu keeps to each item.
type MenuEntry struct {
	ItemID              uint64 `json:"itemId"`
	Name                string `json:"name"`
	IsAvailable         bool   `json:"isAvailable"`
	SpecialInstructions string `json:"specialInstructions"`
}

// MenuName returns the conventional name of a restaurant's menu.
func MenuName(restaurantName string) string {
	return fmt.Sprintf("%s's Menu", restaurantName)
}
