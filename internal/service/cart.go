package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/bookstore/internal/model"
)

// CartStore is the storage surface of the cart aggregate. Line
// lookups return (nil, nil) when no row exists.
type CartStore interface {
	EnsureCart(ctx context.Context, customerID uint64) (*model.Cart, error)
	Line(ctx context.Context, cartID, bookID uint64) (*model.CartItem, error)
	LineByID(ctx context.Context, itemID uint64) (*model.CartItem, error)
	BookPriceStock(ctx context.Context, bookID uint64) (decimal.Decimal, uint32, error)
	InsertLine(ctx context.Context, cartID, bookID uint64, qty uint32) error
	SetLineQuantity(ctx context.Context, itemID uint64, qty uint32) error
	DeleteLine(ctx context.Context, itemID uint64) error
	Lines(ctx context.Context, customerID uint64) ([]model.CartLine, error)
}

// CartService implements the cart aggregate: adding books, stepping
// quantities and deriving totals. Quantities never persist at zero
// or below; a decrement that reaches zero deletes the line.
type CartService struct {
	store CartStore
}

// NewCartService returns a CartService backed by the given store.
func NewCartService(store CartStore) *CartService {
	if store == nil {
		panic("nil store passed to NewCartService")
	}
	return &CartService{store: store}
}

// AddItem creates or increments the cart line for a book. Creating
// a new line requires at least one copy in stock (ErrOutOfStock);
// growing an existing line past the book's stock fails with
// ErrInsufficientStock. qty defaults to 1 when zero.
func (s *CartService) AddItem(ctx context.Context, customerID, bookID uint64, qty uint32) error {
	if qty == 0 {
		qty = 1
	}
	cart, err := s.store.EnsureCart(ctx, customerID)
	if err != nil {
		return err
	}
	_, stock, err := s.store.BookPriceStock(ctx, bookID)
	if err != nil {
		return err
	}
	line, err := s.store.Line(ctx, cart.ID, bookID)
	if err != nil {
		return err
	}
	if line == nil {
		if stock < 1 {
			return ErrOutOfStock
		}
		if qty > stock {
			return ErrInsufficientStock
		}
		return s.store.InsertLine(ctx, cart.ID, bookID, qty)
	}
	if line.Quantity+qty > stock {
		return ErrInsufficientStock
	}
	return s.store.SetLineQuantity(ctx, line.ID, line.Quantity+qty)
}

// ChangeQuantity steps a line by ±1. Incrementing is bounded by the
// book's stock; decrementing to zero removes the line so negative
// quantities never persist. The line must belong to the customer's
// cart.
func (s *CartService) ChangeQuantity(ctx context.Context, customerID, itemID uint64, delta int) error {
	if delta != 1 && delta != -1 {
		return ErrInvalidDelta
	}
	line, err := s.ownedLine(ctx, customerID, itemID)
	if err != nil {
		return err
	}
	if delta == -1 {
		if line.Quantity <= 1 {
			return s.store.DeleteLine(ctx, line.ID)
		}
		return s.store.SetLineQuantity(ctx, line.ID, line.Quantity-1)
	}
	_, stock, err := s.store.BookPriceStock(ctx, line.BookID)
	if err != nil {
		return err
	}
	if line.Quantity+1 > stock {
		return ErrInsufficientStock
	}
	return s.store.SetLineQuantity(ctx, line.ID, line.Quantity+1)
}

// RemoveItem deletes a line outright regardless of quantity.
func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID uint64) error {
	line, err := s.ownedLine(ctx, customerID, itemID)
	if err != nil {
		return err
	}
	return s.store.DeleteLine(ctx, line.ID)
}

// View returns the customer's cart lines and their total. The total
// is recomputed from current book prices on every call; it is never
// stored.
func (s *CartService) View(ctx context.Context, customerID uint64) ([]model.CartLine, decimal.Decimal, error) {
	lines, err := s.store.Lines(ctx, customerID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return lines, model.CartTotal(lines), nil
}

// ownedLine loads a line and verifies it belongs to the customer's
// cart.
func (s *CartService) ownedLine(ctx context.Context, customerID, itemID uint64) (*model.CartItem, error) {
	cart, err := s.store.EnsureCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	line, err := s.store.LineByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if line == nil || line.CartID != cart.ID {
		return nil, ErrItemNotFound
	}
	return line, nil
}
