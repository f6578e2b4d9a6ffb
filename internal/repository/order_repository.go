package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/bookstore/internal/model"
)

// OrderRepo provides persistence for orders and their line items.
// Orders are created inside the settlement transaction together
// with their items, ledger entries and cart deletion; the caller
// owns commit and rollback. All timestamps are stored in UTC.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// CreateTx inserts a new order within the scope of an existing
// transaction and populates the generated ID on the record. Status
// should be one of the persisted status strings.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `INSERT INTO orders (public_id, customer_id, payment_method, shipping_address, status, total, points_discount)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		o.PublicID, o.CustomerID, o.PaymentMethod, o.ShippingAddress, o.Status, o.Total, o.PointsDiscount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	return nil
}

// CreateItemsBulkTx inserts multiple order_items rows in a single
// statement within the provided transaction. Passing an empty slice
// has no effect and returns nil.
func (r *OrderRepo) CreateItemsBulkTx(ctx context.Context, tx *sql.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	query := `INSERT INTO order_items (order_id, book_id, title, price, quantity, total_price) VALUES `
	args := make([]interface{}, 0, len(items)*6)
	for i, it := range items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, it.OrderID, it.BookID, it.Title, it.Price, it.Quantity, it.TotalPrice)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// SetStatusTx updates an order's status within a transaction. Also
// writes the total so the completed order carries the settled sum.
func (r *OrderRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ?, total = ?, points_discount = ? WHERE id = ?`,
		o.Status, o.Total, o.PointsDiscount, o.ID)
	return err
}

// GetByIDForCustomer returns a single order with its items,
// restricted to the owning customer. sql.ErrNoRows is returned when
// the order does not exist; ErrForbidden when it belongs to someone
// else.
func (r *OrderRepo) GetByIDForCustomer(ctx context.Context, orderID, customerID uint64) (*model.Order, []model.OrderItem, error) {
	const q = `SELECT id, public_id, customer_id, payment_method, shipping_address, status, total, points_discount, created_at, updated_at
	           FROM orders WHERE id = ?`
	var o model.Order
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&o.ID, &o.PublicID, &o.CustomerID, &o.PaymentMethod, &o.ShippingAddress,
		&o.Status, &o.Total, &o.PointsDiscount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, nil, err
	}
	if o.CustomerID != customerID {
		return nil, nil, ErrForbidden
	}
	items, err := r.itemsForOrders(ctx, []uint64{o.ID})
	if err != nil {
		return nil, nil, err
	}
	return &o, items[o.ID], nil
}

// ListByCustomer returns all of a customer's orders newest first,
// each with its items populated.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Order, map[uint64][]model.OrderItem, error) {
	const q = `SELECT id, public_id, customer_id, payment_method, shipping_address, status, total, points_discount, created_at, updated_at
	           FROM orders WHERE customer_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	ids := make([]uint64, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.PublicID, &o.CustomerID, &o.PaymentMethod, &o.ShippingAddress,
			&o.Status, &o.Total, &o.PointsDiscount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, nil, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if len(orders) == 0 {
		return orders, map[uint64][]model.OrderItem{}, nil
	}
	items, err := r.itemsForOrders(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return orders, items, nil
}

// itemsForOrders loads items for a set of orders in one query and
// groups them by order id.
func (r *OrderRepo) itemsForOrders(ctx context.Context, orderIDs []uint64) (map[uint64][]model.OrderItem, error) {
	placeholders := make([]string, 0, len(orderIDs))
	args := make([]interface{}, 0, len(orderIDs))
	for _, id := range orderIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT id, order_id, book_id, title, price, quantity, total_price
	      FROM order_items
	      WHERE order_id IN (` + strings.Join(placeholders, ",") + `)
	      ORDER BY order_id, id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	grouped := make(map[uint64][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.BookID, &it.Title, &it.Price, &it.Quantity, &it.TotalPrice); err != nil {
			return nil, err
		}
		grouped[it.OrderID] = append(grouped[it.OrderID], it)
	}
	return grouped, rows.Err()
}
