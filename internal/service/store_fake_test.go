package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/bookstore/internal/model"
)

// memStore is an in-memory SettlementStore with transaction
// semantics: ExecTx stages a deep copy of the state and publishes
// it only when the function succeeds, so a failed settlement leaves
// the store exactly as it was. The mutex serializes transactions
// the way the row lock does in MySQL.
type memStore struct {
	mu        sync.Mutex
	customers map[uint64]model.Customer
	stock     map[uint64]uint32
	prices    map[uint64]decimal.Decimal
	titles    map[uint64]string
	cartLines map[uint64][]model.CartLine // keyed by customer ID
	orders    map[uint64]model.Order
	ledger    []model.PointsTransaction
	items     []model.OrderItem
	nextID    uint64
}

func newMemStore() *memStore {
	return &memStore{
		customers: make(map[uint64]model.Customer),
		stock:     make(map[uint64]uint32),
		prices:    make(map[uint64]decimal.Decimal),
		titles:    make(map[uint64]string),
		cartLines: make(map[uint64][]model.CartLine),
		orders:    make(map[uint64]model.Order),
		nextID:    1,
	}
}

func (m *memStore) addCustomer(id uint64, points int64) {
	m.customers[id] = model.Customer{ID: id, Points: points}
}

func (m *memStore) addBook(id uint64, title, price string, stock uint32) {
	m.titles[id] = title
	m.prices[id] = decimal.RequireFromString(price)
	m.stock[id] = stock
}

func (m *memStore) putCartLine(customerID, bookID uint64, qty uint32) {
	m.cartLines[customerID] = append(m.cartLines[customerID], model.CartLine{
		ItemID:    m.take(),
		BookID:    bookID,
		Title:     m.titles[bookID],
		UnitPrice: m.prices[bookID],
		Stock:     m.stock[bookID],
		Quantity:  qty,
	})
}

func (m *memStore) take() uint64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *memStore) balance(customerID uint64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.customers[customerID].Points
}

func (m *memStore) ledgerSum(customerID uint64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.ledger {
		if e.CustomerID == customerID {
			sum += e.Points
		}
	}
	return sum
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	c.nextID = m.nextID
	for k, v := range m.customers {
		c.customers[k] = v
	}
	for k, v := range m.stock {
		c.stock[k] = v
	}
	for k, v := range m.prices {
		c.prices[k] = v
	}
	for k, v := range m.titles {
		c.titles[k] = v
	}
	for k, v := range m.cartLines {
		c.cartLines[k] = append([]model.CartLine(nil), v...)
	}
	for k, v := range m.orders {
		c.orders[k] = v
	}
	c.ledger = append([]model.PointsTransaction(nil), m.ledger...)
	c.items = append([]model.OrderItem(nil), m.items...)
	return c
}

func (m *memStore) ExecTx(ctx context.Context, fn func(tx SettlementTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	staged := m.clone()
	if err := fn(&memTx{s: staged}); err != nil {
		return err
	}
	// Commit: publish the staged state.
	m.customers = staged.customers
	m.stock = staged.stock
	m.prices = staged.prices
	m.titles = staged.titles
	m.cartLines = staged.cartLines
	m.orders = staged.orders
	m.ledger = staged.ledger
	m.items = staged.items
	m.nextID = staged.nextID
	return nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) CustomerForUpdate(ctx context.Context, customerID uint64) (*model.Customer, error) {
	c, ok := t.s.customers[customerID]
	if !ok {
		return nil, errors.New("customer not found")
	}
	return &c, nil
}

func (t *memTx) SetCustomerPhone(ctx context.Context, customerID uint64, phone string) error {
	c, ok := t.s.customers[customerID]
	if !ok {
		return errors.New("customer not found")
	}
	c.Phone = phone
	t.s.customers[customerID] = c
	return nil
}

func (t *memTx) CartLines(ctx context.Context, customerID uint64) ([]model.CartLine, error) {
	return append([]model.CartLine(nil), t.s.cartLines[customerID]...), nil
}

func (t *memTx) DecrementStock(ctx context.Context, bookID uint64, qty uint32) (bool, error) {
	if t.s.stock[bookID] < qty {
		return false, nil
	}
	t.s.stock[bookID] -= qty
	return true, nil
}

func (t *memTx) CreateOrder(ctx context.Context, o *model.Order) error {
	o.ID = t.s.take()
	t.s.orders[o.ID] = *o
	return nil
}

func (t *memTx) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	for i := range items {
		items[i].ID = t.s.take()
	}
	t.s.items = append(t.s.items, items...)
	return nil
}

func (t *memTx) AdjustPoints(ctx context.Context, customerID uint64, delta int64) (bool, error) {
	c, ok := t.s.customers[customerID]
	if !ok {
		return false, errors.New("customer not found")
	}
	if c.Points+delta < 0 {
		return false, nil
	}
	c.Points += delta
	t.s.customers[customerID] = c
	return true, nil
}

func (t *memTx) AppendPointsEntry(ctx context.Context, e *model.PointsTransaction) error {
	e.ID = t.s.take()
	t.s.ledger = append(t.s.ledger, *e)
	return nil
}

func (t *memTx) ClearCart(ctx context.Context, customerID uint64) error {
	delete(t.s.cartLines, customerID)
	return nil
}

func (t *memTx) FinishOrder(ctx context.Context, o *model.Order) error {
	stored, ok := t.s.orders[o.ID]
	if !ok {
		return errors.New("order not found")
	}
	stored.Status = o.Status
	stored.Total = o.Total
	stored.PointsDiscount = o.PointsDiscount
	t.s.orders[o.ID] = stored
	return nil
}
