package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/bookstore/internal/model"
)

// CartRepo manages carts and their line items. Each customer owns
// at most one cart; (cart_id, book_id) is unique among items.
type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// GetOrCreate returns the customer's cart, creating it on first use.
func (r *CartRepo) GetOrCreate(ctx context.Context, customerID uint64) (*model.Cart, error) {
	cart, err := r.getByCustomer(ctx, customerID)
	if err == nil {
		return cart, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO carts (customer_id) VALUES (?)`, customerID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return r.getByCustomer(ctx, customerID)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Cart{ID: uint64(id), CustomerID: customerID}, nil
}

func (r *CartRepo) getByCustomer(ctx context.Context, customerID uint64) (*model.Cart, error) {
	var cart model.Cart
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, created_at FROM carts WHERE customer_id = ?`, customerID).
		Scan(&cart.ID, &cart.CustomerID, &cart.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetItem returns the line for a book in a cart, or sql.ErrNoRows.
func (r *CartRepo) GetItem(ctx context.Context, cartID, bookID uint64) (*model.CartItem, error) {
	var it model.CartItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, cart_id, book_id, quantity, created_at FROM cart_items WHERE cart_id = ? AND book_id = ?`,
		cartID, bookID).Scan(&it.ID, &it.CartID, &it.BookID, &it.Quantity, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// GetItemByID returns a line by primary key, or sql.ErrNoRows.
func (r *CartRepo) GetItemByID(ctx context.Context, itemID uint64) (*model.CartItem, error) {
	var it model.CartItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, cart_id, book_id, quantity, created_at FROM cart_items WHERE id = ?`,
		itemID).Scan(&it.ID, &it.CartID, &it.BookID, &it.Quantity, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// InsertItem creates a new line with the given quantity.
func (r *CartRepo) InsertItem(ctx context.Context, cartID, bookID uint64, qty uint32) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO cart_items (cart_id, book_id, quantity) VALUES (?, ?, ?)`, cartID, bookID, qty)
	return err
}

// SetItemQuantity overwrites a line's quantity. Callers must never
// pass zero; lines reaching zero are deleted instead.
func (r *CartRepo) SetItemQuantity(ctx context.Context, itemID uint64, qty uint32) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE id = ?`, qty, itemID)
	return err
}

// DeleteItem removes a single line.
func (r *CartRepo) DeleteItem(ctx context.Context, itemID uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ?`, itemID)
	return err
}

// Lines returns all items of the customer's cart joined with live
// book data, ordered by insertion.
func (r *CartRepo) Lines(ctx context.Context, customerID uint64) ([]model.CartLine, error) {
	const q = `SELECT ci.id, ci.book_id, b.title, b.price, b.stock, ci.quantity
	           FROM cart_items ci
	           JOIN carts c ON c.id = ci.cart_id
	           JOIN books b ON b.id = ci.book_id
	           WHERE c.customer_id = ?
	           ORDER BY ci.id`
	return r.scanLines(r.db.QueryContext(ctx, q, customerID))
}

// LinesTx is Lines within an existing transaction. Checkout uses it
// so the prices it captures are consistent with the stock it
// decrements in the same transaction.
func (r *CartRepo) LinesTx(ctx context.Context, tx *sql.Tx, customerID uint64) ([]model.CartLine, error) {
	const q = `SELECT ci.id, ci.book_id, b.title, b.price, b.stock, ci.quantity
	           FROM cart_items ci
	           JOIN carts c ON c.id = ci.cart_id
	           JOIN books b ON b.id = ci.book_id
	           WHERE c.customer_id = ?
	           ORDER BY ci.id`
	return r.scanLines(tx.QueryContext(ctx, q, customerID))
}

func (r *CartRepo) scanLines(rows *sql.Rows, err error) ([]model.CartLine, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := make([]model.CartLine, 0)
	for rows.Next() {
		var l model.CartLine
		if err := rows.Scan(&l.ItemID, &l.BookID, &l.Title, &l.UnitPrice, &l.Stock, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// ClearTx deletes every line of the customer's cart within a
// transaction. Called at the end of a successful settlement.
func (r *CartRepo) ClearTx(ctx context.Context, tx *sql.Tx, customerID uint64) error {
	_, err := tx.ExecContext(ctx,
		`DELETE ci FROM cart_items ci JOIN carts c ON c.id = ci.cart_id WHERE c.customer_id = ?`,
		customerID)
	return err
}
