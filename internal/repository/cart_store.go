package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/bookstore/internal/model"
)

// CartStore adapts CartRepo and BookRepo to the service.CartStore
// interface. Line lookups translate sql.ErrNoRows into (nil, nil)
// so the service stays free of database/sql.
type CartStore struct {
	carts *CartRepo
	books *BookRepo
}

func NewCartStore(carts *CartRepo, books *BookRepo) *CartStore {
	if carts == nil || books == nil {
		panic("nil dependency passed to NewCartStore")
	}
	return &CartStore{carts: carts, books: books}
}

func (s *CartStore) EnsureCart(ctx context.Context, customerID uint64) (*model.Cart, error) {
	return s.carts.GetOrCreate(ctx, customerID)
}

func (s *CartStore) Line(ctx context.Context, cartID, bookID uint64) (*model.CartItem, error) {
	it, err := s.carts.GetItem(ctx, cartID, bookID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

func (s *CartStore) LineByID(ctx context.Context, itemID uint64) (*model.CartItem, error) {
	it, err := s.carts.GetItemByID(ctx, itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return it, err
}

func (s *CartStore) BookPriceStock(ctx context.Context, bookID uint64) (decimal.Decimal, uint32, error) {
	return s.books.PriceStock(ctx, bookID)
}

func (s *CartStore) InsertLine(ctx context.Context, cartID, bookID uint64, qty uint32) error {
	return s.carts.InsertItem(ctx, cartID, bookID, qty)
}

func (s *CartStore) SetLineQuantity(ctx context.Context, itemID uint64, qty uint32) error {
	return s.carts.SetItemQuantity(ctx, itemID, qty)
}

func (s *CartStore) DeleteLine(ctx context.Context, itemID uint64) error {
	return s.carts.DeleteItem(ctx, itemID)
}

func (s *CartStore) Lines(ctx context.Context, customerID uint64) ([]model.CartLine, error) {
	return s.carts.Lines(ctx, customerID)
}
