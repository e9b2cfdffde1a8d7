package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

const itemColumns = `i.id, i.menu_id, i.name, i.description, i.base_price, i.category, i.type,
	i.tags, i.allergens, i.customizations, i.nutrition, i.is_available`

// ItemRepo provides access to the items table.  Items belong to exactly
// one menu; restaurant data is reached through menus.restaurant_id.
type ItemRepo struct {
	db *sql.DB
}

// NewItemRepo returns a new ItemRepo bound to the provided database.
func NewItemRepo(db *sql.DB) *ItemRepo { return &ItemRepo{db: db} }

// scanItem reads the itemColumns followed by any extra destinations.
func scanItem(s scanner, extra ...any) (*model.Item, error) {
	var (
		it                                     model.Item
		typ                                    string
		tags, allergens, customizations, nutri []byte
	)
	dest := []any{&it.ID, &it.MenuID, &it.Name, &it.Description, &it.BasePrice, &it.Category, &typ,
		&tags, &allergens, &customizations, &nutri, &it.IsAvailable}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	it.Type = model.DietaryType(typ)
	for _, col := range []struct {
		raw []byte
		dst any
	}{{tags, &it.Tags}, {allergens, &it.Allergens}, {customizations, &it.Customizations}, {nutri, &it.Nutrition}} {
		if err := decodeJSON(col.raw, col.dst); err != nil {
			return nil, err
		}
	}
	return &it, nil
}

func collectItems(rows *sql.Rows) ([]*model.Item, error) {
	defer rows.Close()
	out := []*model.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByMenu returns every item of a menu sorted by category, then name.
func (r *ItemRepo) ListByMenu(ctx context.Context, menuID uint64) ([]*model.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items i WHERE i.menu_id = ? ORDER BY i.category, i.name`
	rows, err := r.db.QueryContext(ctx, q, menuID)
	if err != nil {
		return nil, err
	}
	return collectItems(rows)
}

// FindInMenu resolves an item of a menu by a loosely typed name.  The name
// is matched with FuzzyPattern, so spacing differences are tolerated; an
// exact case-insensitive match is preferred, then the shortest name.
func (r *ItemRepo) FindInMenu(ctx context.Context, menuID uint64, name string) (*model.Item, error) {
	name = strings.TrimSpace(name)
	q := `SELECT ` + itemColumns + ` FROM items i
	      WHERE i.menu_id = ? AND REGEXP_LIKE(i.name, ?, 'i')
	      ORDER BY (LOWER(i.name) = ?) DESC, CHAR_LENGTH(i.name), i.id
	      LIMIT 1`
	it, err := scanItem(r.db.QueryRowContext(ctx, q, menuID, FuzzyPattern(name), strings.ToLower(name)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("item", name)
		}
		return nil, err
	}
	return it, nil
}

// GetByID fetches an item by primary key.
func (r *ItemRepo) GetByID(ctx context.Context, id uint64) (*model.Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items i WHERE i.id = ?`
	it, err := scanItem(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("item", "")
		}
		return nil, err
	}
	return it, nil
}
