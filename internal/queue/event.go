// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderPlacedQueue is the durable queue order events are published to.
const OrderPlacedQueue = "order.placed"

// OrderPlacedEvent is published when the assistant persists a new order.
// It contains enough information for downstream consumers (restaurant
// dashboards, notifications, analytics) to act without querying the
// primary database.
type OrderPlacedEvent struct {
	OrderID        string           `json:"order_id"`
	UserID         string           `json:"user_id"`
	RestaurantID   uint64           `json:"restaurant_id"`
	RestaurantName string           `json:"restaurant_name"`
	Items          []OrderEventLine `json:"items"`
	TotalAmount    float64          `json:"total_amount"`
	PickupTime     string           `json:"pickup_time,omitempty"`
	PlacedAt       string           `json:"placed_at"`
}

// OrderEventLine is one line of an OrderPlacedEvent.
type OrderEventLine struct {
	ItemID         uint64   `json:"item_id"`
	Name           string   `json:"name"`
	Quantity       int      `json:"quantity"`
	UnitPrice      float64  `json:"unit_price"`
	Customizations []string `json:"customizations,omitempty"`
}
