package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/bookstore/internal/model"
)

// ReviewRepo persists book reviews and answers the purchase check
// that gates review submission.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review and populates its ID. The (book_id,
// user_id) pair is unique; a duplicate surfaces as ErrConflict.
func (r *ReviewRepo) Create(ctx context.Context, rev *model.Review) error {
	const q = `INSERT INTO reviews (book_id, user_id, rating, comment) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rev.BookID, rev.UserID, rev.Rating, rev.Comment)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	return nil
}

// ListByBook returns all reviews of a book, newest first.
func (r *ReviewRepo) ListByBook(ctx context.Context, bookID uint64) ([]model.Review, error) {
	const q = `SELECT id, book_id, user_id, rating, comment, created_at
	           FROM reviews WHERE book_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := make([]model.Review, 0)
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.BookID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}

// Exists reports whether the user already reviewed the book.
func (r *ReviewRepo) Exists(ctx context.Context, bookID, userID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM reviews WHERE book_id = ? AND user_id = ? LIMIT 1`, bookID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// HasPurchased reports whether the user has a completed order
// containing the book. Reviews are only accepted from purchasers.
func (r *ReviewRepo) HasPurchased(ctx context.Context, bookID, userID uint64) (bool, error) {
	const q = `SELECT 1
	           FROM order_items oi
	           JOIN orders o ON o.id = oi.order_id
	           JOIN customers c ON c.id = o.customer_id
	           WHERE oi.book_id = ? AND c.user_id = ? AND o.status = ?
	           LIMIT 1`
	var one int
	err := r.db.QueryRowContext(ctx, q, bookID, userID, model.OrderStatusCompleted).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}
