package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

// ItemSearchQuery defines the filters of a cross-restaurant item search.
// Zero values do not filter.
type ItemSearchQuery struct {
	Name          string   // fuzzy name, see FuzzyPattern
	Terms         []string // every term must occur in the name, in any order
	Category      string   // substring of the category
	Type          model.DietaryType
	MaxPrice      float64
	Tags          []string // all must be present
	Allergens     []string // none may be present
	AvailableOnly bool
	Limit         int
}

// RestaurantRef is the slice of restaurant data joined onto item search
// results.
type RestaurantRef struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	PriceTier  int    `json:"priceRange"`
	IsActive   bool   `json:"isActive"`
	IsVerified bool   `json:"isVerified"`
}

// ItemMatch is an item together with the restaurant serving it.
type ItemMatch struct {
	Item       *model.Item
	MenuName   string
	Restaurant RestaurantRef
}

// SearchItems runs an item search joined to menus and restaurants.  Rows
// are ordered by restaurant then item name so callers can group them
// without sorting.
func (r *ItemRepo) SearchItems(ctx context.Context, q ItemSearchQuery) ([]ItemMatch, error) {
	where := []string{}
	args := []any{}

	if q.Name != "" {
		if p := FuzzyPattern(q.Name); p != "" {
			where = append(where, "REGEXP_LIKE(i.name, ?, 'i')")
			args = append(args, p)
		}
	}
	for _, t := range q.Terms {
		where = append(where, "LOWER(i.name) LIKE ?")
		args = append(args, containsPattern(t))
	}
	if q.Category != "" {
		where = append(where, "LOWER(i.category) LIKE ?")
		args = append(args, containsPattern(q.Category))
	}
	if q.Type != "" {
		where = append(where, "i.type = ?")
		args = append(args, string(q.Type))
	}
	if q.MaxPrice > 0 {
		where = append(where, "i.base_price <= ?")
		args = append(args, q.MaxPrice)
	}
	for _, tag := range q.Tags {
		where = append(where, "JSON_CONTAINS(i.tags, JSON_QUOTE(?))")
		args = append(args, tag)
	}
	for _, a := range q.Allergens {
		where = append(where, "NOT JSON_CONTAINS(i.allergens, JSON_QUOTE(?))")
		args = append(args, a)
	}
	if q.AvailableOnly {
		where = append(where, "i.is_available = TRUE")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	dataSQL := `SELECT ` + itemColumns + `,
			m.name,
			r.id, r.name, r.price_tier, r.is_active, r.is_verified
		FROM items i
		JOIN menus m       ON m.id = i.menu_id
		JOIN restaurants r ON r.id = m.restaurant_id
		WHERE ` + cond + `
		ORDER BY r.name, r.id, i.name`
	if q.Limit > 0 {
		dataSQL += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ItemMatch{}
	for rows.Next() {
		var m ItemMatch
		it, err := scanItem(rows,
			&m.MenuName,
			&m.Restaurant.ID,
			&m.Restaurant.Name,
			&m.Restaurant.PriceTier,
			&m.Restaurant.IsActive,
			&m.Restaurant.IsVerified,
		)
		if err != nil {
			return nil, err
		}
		m.Item = it
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
