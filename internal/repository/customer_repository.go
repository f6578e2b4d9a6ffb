package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/bookstore/internal/model"
)

// CustomerRepo manages purchasing profiles. The points column is
// only ever written through AdjustPointsTx so that the balance
// stays reconcilable against the points_transactions ledger.
type CustomerRepo struct {
	db *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// GetOrCreateByUserID returns the customer profile for a user,
// creating an empty one on first contact. Creation races resolve
// through the unique user_id index: on a duplicate-key error the
// existing row is re-read.
func (r *CustomerRepo) GetOrCreateByUserID(ctx context.Context, userID uint64) (*model.Customer, error) {
	c, err := r.getByUserID(ctx, userID)
	if err == nil {
		return c, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO customers (user_id, phone, points) VALUES (?, '', 0)`, userID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return r.getByUserID(ctx, userID)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Customer{ID: uint64(id), UserID: userID}, nil
}

func (r *CustomerRepo) getByUserID(ctx context.Context, userID uint64) (*model.Customer, error) {
	const q = `SELECT id, user_id, phone, points, created_at, updated_at FROM customers WHERE user_id = ?`
	var c model.Customer
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&c.ID, &c.UserID, &c.Phone, &c.Points, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID returns a customer by primary key.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	const q = `SELECT id, user_id, phone, points, created_at, updated_at FROM customers WHERE id = ?`
	var c model.Customer
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.UserID, &c.Phone, &c.Points, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetForUpdateTx loads a customer row-locked within a transaction.
// Locking the customer row serializes concurrent settlements for
// the same customer: two checkouts cannot both read the same points
// balance or consume the same cart.
func (r *CustomerRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Customer, error) {
	const q = `SELECT id, user_id, phone, points, created_at, updated_at FROM customers WHERE id = ? FOR UPDATE`
	var c model.Customer
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.UserID, &c.Phone, &c.Points, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SetPhoneTx updates the contact phone within a transaction. Used
// by checkout to snapshot the phone supplied on a customer's first
// order.
func (r *CustomerRepo) SetPhoneTx(ctx context.Context, tx *sql.Tx, id uint64, phone string) error {
	_, err := tx.ExecContext(ctx, `UPDATE customers SET phone = ? WHERE id = ?`, phone, id)
	return err
}

// AdjustPointsTx applies a signed delta to the points balance within
// a transaction. For negative deltas the WHERE guard refuses to take
// the balance below zero and the function returns false, making the
// spend an atomic conditional decrement rather than check-then-act.
func (r *CustomerRepo) AdjustPointsTx(ctx context.Context, tx *sql.Tx, id uint64, delta int64) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE customers SET points = points + ? WHERE id = ? AND points + ? >= 0`, delta, id, delta)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return true, nil
	}
	// A zero delta on an existing row also reports 0 rows affected
	// under MySQL; treat it as success when the row exists.
	if delta == 0 {
		var one int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM customers WHERE id = ?`, id).Scan(&one); err == nil {
			return true, nil
		}
	}
	return false, nil
}
