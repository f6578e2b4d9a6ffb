package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book represents a catalog entry as stored in the `books` table.
// Price is an exact decimal; money is never handled as a float
// anywhere in the application. Stock counts remaining sellable
// copies and is decremented inside the checkout transaction.
//
// Fields:
//  ID          – primary key identifier of the book.
//  Title       – book title.
//  Author      – author display name.
//  Description – free-form description shown on the detail page.
//  Price       – unit price, DECIMAL(10,2) in the database.
//  Stock       – remaining sellable copies, never negative.
//  CategoryID  – optional reference into the categories table.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Book struct {
	ID          uint64          // books.id
	Title       string          // books.title
	Author      string          // books.author
	Description string          // books.description
	Price       decimal.Decimal // books.price
	Stock       uint32          // books.stock
	CategoryID  *uint64         // books.category_id (nullable)
	CreatedAt   time.Time       // books.created_at
	UpdatedAt   time.Time       // books.updated_at
}

// Category is a row in the `categories` table used to group books
// for browsing filters.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name
}

// Review is a customer review of a book. Only users who purchased
// the book may review it, and at most one review per (user, book)
// pair is accepted.
//
// Fields:
//  ID        – primary key identifier.
//  BookID    – reviewed book.
//  UserID    – reviewing user.
//  Rating    – star rating, 1 through 5.
//  Comment   – review text.
//  CreatedAt – timestamp of creation.
type Review struct {
	ID        uint64    // reviews.id
	BookID    uint64    // reviews.book_id
	UserID    uint64    // reviews.user_id
	Rating    uint8     // reviews.rating
	Comment   string    // reviews.comment
	CreatedAt time.Time // reviews.created_at
}
