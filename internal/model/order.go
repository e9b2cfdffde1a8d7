package model

import "time"

// OrderStatus is the fulfilment lifecycle of an order.
type OrderStatus string

const (
	OrderPlaced         OrderStatus = "PLACED"
	OrderAccepted       OrderStatus = "ACCEPTED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// PaymentStatus tracks the UPI payment attached to an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// Order records a user's purchase from one restaurant.
//
// Fields:
//  ID                  – UUID assigned at creation.
//  UserID              – user who placed the order.
//  RestaurantID        – restaurant fulfilling the order.
//  Items               – priced order lines (stored as JSON).
//  TotalAmount         – sum of line price × quantity, without platform fee.
//  PickupTime          – optional requested pickup time.
//  Payment             – UPI payment sub-record.
//  Status              – lifecycle status, PLACED on creation.
//  SpecialInstructions – free text from the user.
//  CreatedAt           – creation timestamp.
type Order struct {
	ID                  string      `json:"id"`                  // orders.id
	UserID              string      `json:"userId"`              // orders.user_id
	RestaurantID        uint64      `json:"restaurantId"`        // orders.restaurant_id
	Items               []OrderLine `json:"items"`               // orders.items
	TotalAmount         float64     `json:"totalAmount"`         // orders.total_amount
	PickupTime          *time.Time  `json:"pickupTime"`          // orders.pickup_time (nullable)
	Payment             Payment     `json:"payment"`             // orders.payment_*
	Status              OrderStatus `json:"status"`              // orders.status
	SpecialInstructions string      `json:"specialInstructions"` // orders.special_instructions
	CreatedAt           time.Time   `json:"createdAt"`           // orders.created_at
	UpdatedAt           time.Time   `json:"updatedAt"`           // orders.updated_at
}

// OrderLine is one item of an order.  Price is the unit price including
// customizations; Quantity is at least one.
type OrderLine struct {
	ItemID         uint64          `json:"itemId"`
	Quantity       int             `json:"quantity"`
	Price          float64         `json:"price"`
	Customizations []Customization `json:"customizations"`
}

// Payment is the payment sub-record of an order.
type Payment struct {
	UPIID         string        `json:"upiId"`
	Status        PaymentStatus `json:"status"`
	TransactionID *string       `json:"transactionId"`
}

// Quantities returns the quantity of every line, in order.
func (o *Order) Quantities() []int {
	out := make([]int, 0, len(o.Items))
	for _, l := range o.Items {
		out = append(out, l.Quantity)
	}
	return out
}
