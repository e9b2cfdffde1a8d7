package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

const menuColumns = `m.id, m.restaurant_id, m.name, m.description, m.items, m.active_from, m.active_to, m.is_active`

// MenuRepo provides access to the menus table.  Only active menus are
// exposed; a restaurant has at most one by convention, and when several
// are flagged active the most recently activated wins.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the provided database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

func scanMenu(s scanner) (*model.Menu, error) {
	var (
		m        model.Menu
		items    []byte
		activeTo sql.NullTime
	)
	if err := s.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Description, &items, &m.ActiveFrom, &activeTo, &m.IsActive); err != nil {
		return nil, err
	}
	if activeTo.Valid {
		t := activeTo.Time
		m.ActiveTo = &t
	}
	if err := decodeJSON(items, &m.Items); err != nil {
		return nil, err
	}
	return &m, nil
}

// ActiveByName returns the active menu with the given name, such as
// "Spice Hub's Menu".
func (r *MenuRepo) ActiveByName(ctx context.Context, name string) (*model.Menu, error) {
	q := `SELECT ` + menuColumns + ` FROM menus m
	      WHERE m.name = ? AND m.is_active = TRUE
	      ORDER BY m.active_from DESC LIMIT 1`
	m, err := scanMenu(r.db.QueryRowContext(ctx, q, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("menu", name)
		}
		return nil, err
	}
	return m, nil
}

// ActiveByRestaurant returns the active menu of a restaurant.
func (r *MenuRepo) ActiveByRestaurant(ctx context.Context, restaurantID uint64) (*model.Menu, error) {
	q := `SELECT ` + menuColumns + ` FROM menus m
	      WHERE m.restaurant_id = ? AND m.is_active = TRUE
	      ORDER BY m.active_from DESC LIMIT 1`
	m, err := scanMenu(r.db.QueryRowContext(ctx, q, restaurantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("menu", "")
		}
		return nil, err
	}
	return m, nil
}
