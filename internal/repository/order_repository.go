package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/food-ordering-assistant/internal/model"
)

const orderColumns = `o.id, o.user_id, o.restaurant_id, o.items, o.total_amount, o.pickup_time,
	o.payment_upi_id, o.payment_status, o.payment_transaction_id, o.status,
	o.special_instructions, o.created_at, o.updated_at`

// OrderRepo persists orders.  Order lines are stored as a JSON column; the
// payment sub-record is flattened into payment_* columns.  Timestamps are
// stored in UTC.
type OrderRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db, now: time.Now}
}

func scanOrder(s scanner) (*model.Order, error) {
	var (
		o             model.Order
		items         []byte
		pickup        sql.NullTime
		paymentStatus string
		status        string
		txID          sql.NullString
	)
	if err := s.Scan(&o.ID, &o.UserID, &o.RestaurantID, &items, &o.TotalAmount, &pickup,
		&o.Payment.UPIID, &paymentStatus, &txID, &status,
		&o.SpecialInstructions, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	if pickup.Valid {
		t := pickup.Time
		o.PickupTime = &t
	}
	if txID.Valid {
		id := txID.String
		o.Payment.TransactionID = &id
	}
	o.Payment.Status = model.PaymentStatus(paymentStatus)
	o.Status = model.OrderStatus(status)
	if err := decodeJSON(items, &o.Items); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts o.  It assigns a new UUID and the creation timestamps,
// and defaults the order and payment status to PLACED and PENDING when
// they are empty.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	o.ID = uuid.NewString()
	now := r.now().UTC().Truncate(time.Second)
	o.CreatedAt, o.UpdatedAt = now, now
	if o.Status == "" {
		o.Status = model.OrderPlaced
	}
	if o.Payment.Status == "" {
		o.Payment.Status = model.PaymentPending
	}
	items, err := encodeJSON(o.Items)
	if err != nil {
		return err
	}
	var pickup any
	if o.PickupTime != nil {
		pickup = o.PickupTime.UTC()
	}
	const q = `INSERT INTO orders
		(id, user_id, restaurant_id, items, total_amount, pickup_time,
		 payment_upi_id, payment_status, payment_transaction_id, status,
		 special_instructions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q,
		o.ID, o.UserID, o.RestaurantID, items, o.TotalAmount, pickup,
		o.Payment.UPIID, string(o.Payment.Status), o.Payment.TransactionID, string(o.Status),
		o.SpecialInstructions, o.CreatedAt, o.UpdatedAt,
	)
	return err
}

// GetForUser loads the order with the given ID placed by userID.  An
// order that exists but belongs to another user is reported as not found.
func (r *OrderRepo) GetForUser(ctx context.Context, id, userID string) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = ? AND o.user_id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("order", id)
		}
		return nil, err
	}
	return o, nil
}

// Cancel marks the order CANCELLED if it is still PLACED or ACCEPTED and
// was created no earlier than notBefore.  It returns ErrConflict when the
// order exists but can no longer be cancelled.
func (r *OrderRepo) Cancel(ctx context.Context, id, userID string, notBefore time.Time) (*model.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	q := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = ? AND o.user_id = ? FOR UPDATE`
	o, err := scanOrder(tx.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound("order", id)
		}
		return nil, err
	}
	if (o.Status != model.OrderPlaced && o.Status != model.OrderAccepted) || o.CreatedAt.Before(notBefore) {
		return nil, ErrConflict
	}
	now := r.now().UTC().Truncate(time.Second)
	const upd = `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, upd, string(model.OrderCancelled), now, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	o.Status = model.OrderCancelled
	o.UpdatedAt = now
	return o, nil
}
