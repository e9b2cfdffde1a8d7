package model

import "time"

// Restaurant is a food outlet that can receive orders through the
// assistant.  It corresponds to a row in the `restaurants` table.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – display name, also used by the model to refer to it.
//  Description   – free text shown on restaurant cards.
//  Cuisines      – list of cuisines served (stored as JSON).
//  PriceTier     – ordinal price level, 1 is the cheapest.
//  Rating        – average customer rating.
//  OpeningHours  – weekly schedule of open shifts (stored as JSON).
//  ContactNumber – phone number returned with placed orders.
//  UPIID         – payment identifier copied onto new orders.
//  IsActive      – restaurant is currently operating.
//  IsVerified    – restaurant passed staff verification.
type Restaurant struct {
	ID            uint64    `json:"id"`             // restaurants.id
	Name          string    `json:"name"`           // restaurants.name
	Description   string    `json:"description"`    // restaurants.description
	Cuisines      []string  `json:"cuisine"`        // restaurants.cuisines
	PriceTier     int       `json:"priceRange"`     // restaurants.price_tier
	Rating        float64   `json:"rating"`         // restaurants.rating
	OpeningHours  Schedule  `json:"openingHours"`   // restaurants.opening_hours
	ContactNumber string    `json:"contactNumber"`  // restaurants.contact_number
	UPIID         string    `json:"-"`              // restaurants.upi_id
	IsActive      bool      `json:"isActive"`       // restaurants.is_active
	IsVerified    bool      `json:"isVerified"`     // restaurants.is_verified
	CreatedAt     time.Time `json:"createdAt"`      // restaurants.created_at
	UpdatedAt     time.Time `json:"updatedAt"`      // restaurants.updated_at
}

// AcceptsOrders reports whether the restaurant may receive new orders.
func (r *Restaurant) AcceptsOrders() bool {
	return r.IsActive && r.IsVerified
}

// Shift is a single open interval within a day, in minutes after midnight.
// Both ends are inclusive.
type Shift struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

// Schedule maps a weekday to the shifts the restaurant is open on that day.
// A day without an entry is a closed day.
type Schedule map[time.Weekday][]Shift

// MinuteOfDay converts an "HH:MM" pair into minutes after midnight.
func MinuteOfDay(hour, minute int) int {
	return hour*60 + minute
}
