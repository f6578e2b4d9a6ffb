package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/bookstore/internal/model"
	"github.com/iliyamo/bookstore/internal/service"
)

// SettlementStore adapts the raw-SQL repositories to the
// service.SettlementStore interface. ExecTx opens one transaction
// and hands the service a view whose every operation runs inside
// it, so a settlement commits or rolls back as a whole.
type SettlementStore struct {
	db        *sql.DB
	customers *CustomerRepo
	carts     *CartRepo
	books     *BookRepo
	orders    *OrderRepo
	points    *PointsRepo
}

// NewSettlementStore wires the repositories used inside settlement
// transactions.
func NewSettlementStore(db *sql.DB, customers *CustomerRepo, carts *CartRepo, books *BookRepo, orders *OrderRepo, points *PointsRepo) *SettlementStore {
	if db == nil || customers == nil || carts == nil || books == nil || orders == nil || points == nil {
		panic("nil dependency passed to NewSettlementStore")
	}
	return &SettlementStore{db: db, customers: customers, carts: carts, books: books, orders: orders, points: points}
}

// ExecTx runs fn inside a transaction, committing when it returns
// nil and rolling back otherwise.
func (s *SettlementStore) ExecTx(ctx context.Context, fn func(tx service.SettlementTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&settlementTx{tx: tx, store: s}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// settlementTx is the per-transaction view handed to the service.
type settlementTx struct {
	tx    *sql.Tx
	store *SettlementStore
}

func (t *settlementTx) CustomerForUpdate(ctx context.Context, customerID uint64) (*model.Customer, error) {
	return t.store.customers.GetForUpdateTx(ctx, t.tx, customerID)
}

func (t *settlementTx) SetCustomerPhone(ctx context.Context, customerID uint64, phone string) error {
	return t.store.customers.SetPhoneTx(ctx, t.tx, customerID, phone)
}

func (t *settlementTx) CartLines(ctx context.Context, customerID uint64) ([]model.CartLine, error) {
	return t.store.carts.LinesTx(ctx, t.tx, customerID)
}

func (t *settlementTx) DecrementStock(ctx context.Context, bookID uint64, qty uint32) (bool, error) {
	return t.store.books.DecrementStockTx(ctx, t.tx, bookID, qty)
}

func (t *settlementTx) CreateOrder(ctx context.Context, o *model.Order) error {
	return t.store.orders.CreateTx(ctx, t.tx, o)
}

func (t *settlementTx) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	return t.store.orders.CreateItemsBulkTx(ctx, t.tx, items)
}

func (t *settlementTx) AdjustPoints(ctx context.Context, customerID uint64, delta int64) (bool, error) {
	return t.store.customers.AdjustPointsTx(ctx, t.tx, customerID, delta)
}

func (t *settlementTx) AppendPointsEntry(ctx context.Context, e *model.PointsTransaction) error {
	return t.store.points.AppendTx(ctx, t.tx, e)
}

func (t *settlementTx) ClearCart(ctx context.Context, customerID uint64) error {
	return t.store.carts.ClearTx(ctx, t.tx, customerID)
}

func (t *settlementTx) FinishOrder(ctx context.Context, o *model.Order) error {
	return t.store.orders.SetStatusTx(ctx, t.tx, o)
}
