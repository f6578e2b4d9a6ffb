package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bookstore/internal/model"
)

// memCartStore is an in-memory CartStore. Line lookups return
// (nil, nil) when no row exists, mirroring the SQL adapter.
type memCartStore struct {
	mu     sync.Mutex
	carts  map[uint64]uint64 // customer ID -> cart ID
	items  map[uint64]model.CartItem
	prices map[uint64]decimal.Decimal
	titles map[uint64]string
	stock  map[uint64]uint32
	nextID uint64
}

func newMemCartStore() *memCartStore {
	return &memCartStore{
		carts:  make(map[uint64]uint64),
		items:  make(map[uint64]model.CartItem),
		prices: make(map[uint64]decimal.Decimal),
		titles: make(map[uint64]string),
		stock:  make(map[uint64]uint32),
		nextID: 1,
	}
}

var errBookMissing = errors.New("book not found")

func (m *memCartStore) addBook(id uint64, title, price string, stock uint32) {
	m.titles[id] = title
	m.prices[id] = decimal.RequireFromString(price)
	m.stock[id] = stock
}

func (m *memCartStore) take() uint64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memCartStore) EnsureCart(ctx context.Context, customerID uint64) (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.carts[customerID]
	if !ok {
		id = m.take()
		m.carts[customerID] = id
	}
	return &model.Cart{ID: id, CustomerID: customerID}, nil
}

func (m *memCartStore) Line(ctx context.Context, cartID, bookID uint64) (*model.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.CartID == cartID && it.BookID == bookID {
			found := it
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memCartStore) LineByID(ctx context.Context, itemID uint64) (*model.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return nil, nil
	}
	found := it
	return &found, nil
}

func (m *memCartStore) BookPriceStock(ctx context.Context, bookID uint64) (decimal.Decimal, uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	price, ok := m.prices[bookID]
	if !ok {
		return decimal.Zero, 0, errBookMissing
	}
	return price, m.stock[bookID], nil
}

func (m *memCartStore) InsertLine(ctx context.Context, cartID, bookID uint64, qty uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.take()
	m.items[id] = model.CartItem{ID: id, CartID: cartID, BookID: bookID, Quantity: qty}
	return nil
}

func (m *memCartStore) SetLineQuantity(ctx context.Context, itemID uint64, qty uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return errors.New("item not found")
	}
	it.Quantity = qty
	m.items[itemID] = it
	return nil
}

func (m *memCartStore) DeleteLine(ctx context.Context, itemID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, itemID)
	return nil
}

func (m *memCartStore) Lines(ctx context.Context, customerID uint64) ([]model.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cartID, ok := m.carts[customerID]
	if !ok {
		return nil, nil
	}
	lines := make([]model.CartLine, 0)
	for _, it := range m.items {
		if it.CartID != cartID {
			continue
		}
		lines = append(lines, model.CartLine{
			ItemID:    it.ID,
			BookID:    it.BookID,
			Title:     m.titles[it.BookID],
			UnitPrice: m.prices[it.BookID],
			Stock:     m.stock[it.BookID],
			Quantity:  it.Quantity,
		})
	}
	return lines, nil
}

// lineFor finds the customer's line for a book directly in the
// store, bypassing the service.
func (m *memCartStore) lineFor(customerID, bookID uint64) *model.CartItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	cartID := m.carts[customerID]
	for _, it := range m.items {
		if it.CartID == cartID && it.BookID == bookID {
			found := it
			return &found
		}
	}
	return nil
}

func TestCart_AddItemCreatesAndIncrements(t *testing.T) {
	store := newMemCartStore()
	store.addBook(10, "First", "10.00", 3)
	svc := NewCartService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 1, 10, 0)) // qty defaults to 1
	line := store.lineFor(1, 10)
	require.NotNil(t, line)
	assert.Equal(t, uint32(1), line.Quantity)

	// Adding the same book again grows the existing line.
	require.NoError(t, svc.AddItem(ctx, 1, 10, 2))
	line = store.lineFor(1, 10)
	assert.Equal(t, uint32(3), line.Quantity)

	// Growing past the stock fails.
	assert.ErrorIs(t, svc.AddItem(ctx, 1, 10, 1), ErrInsufficientStock)
}

func TestCart_AddItemOutOfStock(t *testing.T) {
	store := newMemCartStore()
	store.addBook(10, "First", "10.00", 0)
	store.addBook(11, "Second", "5.00", 2)
	svc := NewCartService(store)
	ctx := context.Background()

	assert.ErrorIs(t, svc.AddItem(ctx, 1, 10, 1), ErrOutOfStock)
	assert.ErrorIs(t, svc.AddItem(ctx, 1, 11, 3), ErrInsufficientStock)
	assert.ErrorIs(t, svc.AddItem(ctx, 1, 99, 1), errBookMissing)
}

func TestCart_ChangeQuantitySteps(t *testing.T) {
	store := newMemCartStore()
	store.addBook(10, "First", "10.00", 2)
	svc := NewCartService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 1, 10, 1))
	line := store.lineFor(1, 10)
	require.NotNil(t, line)

	assert.ErrorIs(t, svc.ChangeQuantity(ctx, 1, line.ID, 2), ErrInvalidDelta)
	assert.ErrorIs(t, svc.ChangeQuantity(ctx, 1, line.ID, 0), ErrInvalidDelta)

	require.NoError(t, svc.ChangeQuantity(ctx, 1, line.ID, 1))
	assert.Equal(t, uint32(2), store.lineFor(1, 10).Quantity)

	// Increment past stock fails.
	assert.ErrorIs(t, svc.ChangeQuantity(ctx, 1, line.ID, 1), ErrInsufficientStock)

	require.NoError(t, svc.ChangeQuantity(ctx, 1, line.ID, -1))
	assert.Equal(t, uint32(1), store.lineFor(1, 10).Quantity)

	// A decrement at quantity one deletes the line.
	require.NoError(t, svc.ChangeQuantity(ctx, 1, line.ID, -1))
	assert.Nil(t, store.lineFor(1, 10))
}

func TestCart_OwnershipEnforced(t *testing.T) {
	store := newMemCartStore()
	store.addBook(10, "First", "10.00", 5)
	svc := NewCartService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 1, 10, 1))
	line := store.lineFor(1, 10)
	require.NotNil(t, line)

	// Customer 2 cannot touch customer 1's line.
	assert.ErrorIs(t, svc.ChangeQuantity(ctx, 2, line.ID, 1), ErrItemNotFound)
	assert.ErrorIs(t, svc.RemoveItem(ctx, 2, line.ID), ErrItemNotFound)
	assert.ErrorIs(t, svc.RemoveItem(ctx, 1, 9999), ErrItemNotFound)

	require.NoError(t, svc.RemoveItem(ctx, 1, line.ID))
	assert.Nil(t, store.lineFor(1, 10))
}

func TestCart_ViewRecomputesTotalFromCurrentPrices(t *testing.T) {
	store := newMemCartStore()
	store.addBook(10, "First", "10.00", 5)
	store.addBook(11, "Second", "19.99", 5)
	svc := NewCartService(store)
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 1, 10, 2))
	require.NoError(t, svc.AddItem(ctx, 1, 11, 1))

	lines, total, err := svc.View(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Equal(t, "39.99", total.StringFixed(2))

	// A catalog price change shows up on the next read.
	store.addBook(10, "First", "12.50", 5)
	_, total, err = svc.View(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "44.99", total.StringFixed(2))
}
