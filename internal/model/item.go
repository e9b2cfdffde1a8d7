package model

import "strings"

// DietaryType classifies an item for dietary filtering.
type DietaryType string

const (
	TypeVeg    DietaryType = "VEG"
	TypeNonVeg DietaryType = "NON_VEG"
	TypeEgg    DietaryType = "EGG"
	TypeVegan  DietaryType = "VEGAN"
)

// DietaryTypes lists the accepted values in declaration order.
var DietaryTypes = []DietaryType{TypeVeg, TypeNonVeg, TypeEgg, TypeVegan}

// Valid reports whether t is one of the declared dietary types.
func (t DietaryType) Valid() bool {
	for _, d := range DietaryTypes {
		if t == d {
			return true
		}
	}
	return false
}

// Customization is an optional add-on for an item with a non-negative
// price delta.
type Customization struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Nutrition holds optional nutritional estimates for an item.
type Nutrition struct {
	Calories      *float64 `json:"calories"`
	Proteins      *float64 `json:"proteins"`
	Carbohydrates *float64 `json:"carbohydrates"`
	Fats          *float64 `json:"fats"`
}

// Item is a dish on a menu.  Customization names are unique within an
// item when compared case-insensitively.
type Item struct {
	ID             uint64          `json:"id"`             // items.id
	MenuID         uint64          `json:"menuId"`         // items.menu_id
	Name           string          `json:"name"`           // items.name
	Description    string          `json:"description"`    // items.description
	BasePrice      float64         `json:"basePrice"`      // items.base_price
	Category       string          `json:"category"`       // items.category
	Type           DietaryType     `json:"type"`           // items.type
	Tags           []string        `json:"tags"`           // items.tags (JSON)
	Allergens      []string        `json:"allergens"`      // items.allergens (JSON)
	Customizations []Customization `json:"customizations"` // items.customizations (JSON)
	Nutrition      Nutrition       `json:"nutritionalInfo"`
	IsAvailable    bool            `json:"isAvailable"` // items.is_available
}

// Customization returns the declared customization whose name matches
// name ignoring case and surrounding whitespace.
func (it *Item) Customization(name string) (Customization, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, c := range it.Customizations {
		if strings.ToLower(strings.TrimSpace(c.Name)) == want {
			return c, true
		}
	}
	return Customization{}, false
}

// HasTags reports whether the item carries every tag in tags.
func (it *Item) HasTags(tags []string) bool {
	for _, want := range tags {
		found := false
		for _, t := range it.Tags {
			if strings.EqualFold(t, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
