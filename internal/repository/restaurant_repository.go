// Package repository contains data access logic separated from the tool
// and HTTP handlers.  This file defines restaurant lookups.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

const restaurantColumns = `r.id, r.name, r.description, r.cuisines, r.price_tier, r.rating,
	r.opening_hours, r.contact_number, r.upi_id, r.is_active, r.is_verified,
	r.created_at, r.updated_at`

// RestaurantFilter narrows a restaurant search.  Empty fields do not
// filter.
type RestaurantFilter struct {
	Name         string  // substring of the name, case-insensitive
	Cuisine      string  // substring of any listed cuisine, case-insensitive
	MaxPriceTier int     // highest acceptable price tier
	MinRating    float64 // lowest acceptable rating
	Limit        int
}

// RestaurantRepo encapsulates all database queries related to restaurants.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo constructs a RestaurantRepo with the provided DB handle.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

func scanRestaurant(s scanner) (*model.Restaurant, error) {
	var (
		r               model.Restaurant
		cuisines, hours []byte
	)
	if err := s.Scan(&r.ID, &r.Name, &r.Description, &cuisines, &r.PriceTier, &r.Rating,
		&hours, &r.ContactNumber, &r.UPIID, &r.IsActive, &r.IsVerified,
		&r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeJSON(cuisines, &r.Cuisines); err != nil {
		return nil, err
	}
	if err := decodeJSON(hours, &r.OpeningHours); err != nil {
		return nil, err
	}
	return &r, nil
}

// Search returns restaurants matching f ordered by name.  At most f.Limit
// rows are returned when Limit is positive.
func (r *RestaurantRepo) Search(ctx context.Context, f RestaurantFilter) ([]*model.Restaurant, error) {
	where := []string{}
	args := []any{}
	if f.Name != "" {
		where = append(where, `LOWER(r.name) LIKE ?`)
		args = append(args, containsPattern(f.Name))
	}
	if f.Cuisine != "" {
		// matched against the JSON text of the array
		where = append(where, `LOWER(CAST(r.cuisines AS CHAR)) LIKE ?`)
		args = append(args, containsPattern(f.Cuisine))
	}
	if f.MaxPriceTier > 0 {
		where = append(where, `r.price_tier <= ?`)
		args = append(args, f.MaxPriceTier)
	}
	if f.MinRating > 0 {
		where = append(where, `r.rating >= ?`)
		args = append(args, f.MinRating)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	q := `SELECT ` + restaurantColumns + ` FROM restaurants r WHERE ` + cond + ` ORDER BY r.name`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Restaurant{}
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rest)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByName fetches a restaurant by its name, ignoring case.  It returns a
// *NotFoundError if no row matches.
func (r *RestaurantRepo) GetByName(ctx context.Context, name string) (*model.Restaurant, error) {
	q := `SELECT ` + restaurantColumns + ` FROM restaurants r WHERE LOWER(r.name) = ? LIMIT 1`
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx, q, strings.ToLower(strings.TrimSpace(name))))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("restaurant", name)
		}
		return nil, err
	}
	return rest, nil
}

// GetByID fetches a restaurant by primary key.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	q := `SELECT ` + restaurantColumns + ` FROM restaurants r WHERE r.id = ?`
	rest, err := scanRestaurant(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("restaurant", "")
		}
		return nil, err
	}
	return rest, nil
}
