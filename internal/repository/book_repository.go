package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/bookstore/internal/model"
)

// BookRepo provides CRUD operations for the catalog. Prices are
// stored as DECIMAL(10,2) and scanned into exact decimals; stock is
// an unsigned count that is only ever decremented with a guard so
// it can never go negative.
type BookRepo struct {
	db *sql.DB
}

// NewBookRepo returns a new BookRepo bound to the given database.
func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{db: db} }

// Create inserts a new book and populates the generated ID.
func (r *BookRepo) Create(ctx context.Context, b *model.Book) error {
	const q = `INSERT INTO books (title, author, description, price, stock, category_id) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.Title, b.Author, b.Description, b.Price, b.Stock, b.CategoryID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Update overwrites the mutable fields of a book. Changing the
// price here never affects already-settled order items, which carry
// their own captured unit price.
func (r *BookRepo) Update(ctx context.Context, b *model.Book) error {
	const q = `UPDATE books SET title=?, author=?, description=?, price=?, stock=?, category_id=? WHERE id=?`
	res, err := r.db.ExecContext(ctx, q, b.Title, b.Author, b.Description, b.Price, b.Stock, b.CategoryID, b.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// RowsAffected is also 0 when the update is a no-op, so
		// confirm existence before reporting not found.
		var exists uint64
		if err := r.db.QueryRowContext(ctx, `SELECT id FROM books WHERE id=?`, b.ID).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return ErrBookNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a book. Books referenced by order items must stay
// so purchase history keeps its titles; such deletes fail with
// ErrConflict.
func (r *BookRepo) Delete(ctx context.Context, id uint64) error {
	var refs uint64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM order_items WHERE book_id=?`, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrConflict
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetByID returns one book or ErrBookNotFound.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (*model.Book, error) {
	const q = `SELECT id, title, author, description, price, stock, category_id, created_at, updated_at
	           FROM books WHERE id = ?`
	var b model.Book
	var catID sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.Description, &b.Price, &b.Stock, &catID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if catID.Valid {
		cid := uint64(catID.Int64)
		b.CategoryID = &cid
	}
	return &b, nil
}

// List returns books, optionally filtered by category and by a
// case-insensitive title substring. Both filters may be combined;
// passing zero/empty disables each.
func (r *BookRepo) List(ctx context.Context, categoryID uint64, titleQuery string) ([]model.Book, error) {
	q := `SELECT id, title, author, description, price, stock, category_id, created_at, updated_at FROM books`
	var conds []string
	var args []interface{}
	if categoryID != 0 {
		conds = append(conds, "category_id = ?")
		args = append(args, categoryID)
	}
	if s := strings.TrimSpace(titleQuery); s != "" {
		conds = append(conds, "title LIKE ?")
		args = append(args, "%"+s+"%")
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY title, id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		var catID sql.NullInt64
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Description, &b.Price, &b.Stock, &catID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		if catID.Valid {
			cid := uint64(catID.Int64)
			b.CategoryID = &cid
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// PriceStock returns the current price and stock of a book. Used by
// cart operations; checkout reads the same values inside its own
// transaction instead.
func (r *BookRepo) PriceStock(ctx context.Context, id uint64) (decimal.Decimal, uint32, error) {
	var price decimal.Decimal
	var stock uint32
	err := r.db.QueryRowContext(ctx,
		`SELECT price, stock FROM books WHERE id = ?`, id).Scan(&price, &stock)
	if err == sql.ErrNoRows {
		return decimal.Decimal{}, 0, ErrBookNotFound
	}
	return price, stock, err
}

// DecrementStockTx conditionally decrements stock within an existing
// transaction. It returns false when the remaining stock is smaller
// than qty; the guard in the WHERE clause makes the check-then-act
// atomic under concurrent checkouts.
func (r *BookRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, bookID uint64, qty uint32) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE books SET stock = stock - ? WHERE id = ? AND stock >= ?`, qty, bookID, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
