package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/bookstore/internal/model"
)

// PointsRepo persists the loyalty ledger. Entries are append-only:
// there is no update or delete here, so the ledger remains a full
// history and the balance stays recomputable as the sum of deltas.
type PointsRepo struct {
	db *sql.DB
}

func NewPointsRepo(db *sql.DB) *PointsRepo { return &PointsRepo{db: db} }

// AppendTx inserts a ledger entry within an existing transaction
// and populates its ID. Balance adjustment happens separately via
// CustomerRepo.AdjustPointsTx in the same transaction.
func (r *PointsRepo) AppendTx(ctx context.Context, tx *sql.Tx, e *model.PointsTransaction) error {
	const q = `INSERT INTO points_transactions (customer_id, points, kind, description, order_id) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, e.CustomerID, e.Points, e.Kind, e.Description, e.OrderID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// ListByCustomer returns a customer's ledger entries newest first.
func (r *PointsRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.PointsTransaction, error) {
	const q = `SELECT id, customer_id, points, kind, description, order_id, created_at
	           FROM points_transactions WHERE customer_id = ?
	           ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := make([]model.PointsTransaction, 0)
	for rows.Next() {
		var e model.PointsTransaction
		var orderID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.CustomerID, &e.Points, &e.Kind, &e.Description, &orderID, &e.CreatedAt); err != nil {
			return nil, err
		}
		if orderID.Valid {
			oid := uint64(orderID.Int64)
			e.OrderID = &oid
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SumForCustomer returns the sum of all ledger deltas for a
// customer. Used by the reconciliation check: the result must equal
// the customer's stored points balance at all times.
func (r *PointsRepo) SumForCustomer(ctx context.Context, customerID uint64) (int64, error) {
	var sum sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(points) FROM points_transactions WHERE customer_id = ?`, customerID).Scan(&sum)
	if err != nil {
		return 0, err
	}
	return sum.Int64, nil
}
