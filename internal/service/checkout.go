package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/bookstore/internal/model"
)

// pointsPerCurrencyUnit is the redemption rate: 20 points equal one
// currency unit (100 points = 5.00), so one point is worth 0.05.
const pointsPerCurrencyUnit = 20

// SettlementTx is the set of storage operations available inside
// one settlement transaction. Every method sees the same consistent
// snapshot; the prices read through CartLines are the prices whose
// stock DecrementStock adjusts.
type SettlementTx interface {
	// CustomerForUpdate loads the customer with a row lock,
	// serializing concurrent settlements for the same customer.
	CustomerForUpdate(ctx context.Context, customerID uint64) (*model.Customer, error)
	SetCustomerPhone(ctx context.Context, customerID uint64, phone string) error
	CartLines(ctx context.Context, customerID uint64) ([]model.CartLine, error)
	// DecrementStock returns false when remaining stock is smaller
	// than qty; the decrement and the check are one atomic step.
	DecrementStock(ctx context.Context, bookID uint64, qty uint32) (bool, error)
	CreateOrder(ctx context.Context, o *model.Order) error
	CreateOrderItems(ctx context.Context, items []model.OrderItem) error
	// AdjustPoints applies a signed delta and returns false when a
	// negative delta would take the balance below zero.
	AdjustPoints(ctx context.Context, customerID uint64, delta int64) (bool, error)
	AppendPointsEntry(ctx context.Context, e *model.PointsTransaction) error
	ClearCart(ctx context.Context, customerID uint64) error
	FinishOrder(ctx context.Context, o *model.Order) error
}

// SettlementStore runs a function inside a single transaction. The
// function's error aborts the transaction; all effects of a
// settlement either commit together or roll back together.
type SettlementStore interface {
	ExecTx(ctx context.Context, fn func(tx SettlementTx) error) error
}

// SettleInput carries everything the settlement engine needs to
// convert a cart into an order. The customer identity arrives here
// explicitly; the engine has no notion of the current request.
type SettleInput struct {
	CustomerID      uint64
	ShippingAddress string
	PaymentMethod   string
	Phone           string
	PointsToRedeem  int64
}

// Settlement is the outcome of a successful checkout.
type Settlement struct {
	Order          model.Order
	Items          []model.OrderItem
	PointsEarned   int64
	PointsRedeemed int64
}

// CheckoutService converts a customer's cart into a completed order
// plus the associated loyalty ledger effects.
type CheckoutService struct {
	store SettlementStore
}

// NewCheckoutService returns a CheckoutService backed by the given
// store.
func NewCheckoutService(store SettlementStore) *CheckoutService {
	if store == nil {
		panic("nil store passed to NewCheckoutService")
	}
	return &CheckoutService{store: store}
}

// Settle performs checkout as one transaction: it captures current
// prices as immutable order item prices, decrements stock, applies
// an optional points redemption, awards earned points and clears
// the cart. On any failure nothing is persisted — no partial order,
// no ledger entry, no cart change.
//
// Points earned are floor(order total) computed from the
// pre-discount total, matching the historical behavior: redeeming
// points lowers the amount charged but not the earning base.
func (s *CheckoutService) Settle(ctx context.Context, in SettleInput) (*Settlement, error) {
	if !model.ValidPaymentMethod(in.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}
	if in.PointsToRedeem < 0 {
		return nil, ErrInvalidPoints
	}

	var out Settlement
	err := s.store.ExecTx(ctx, func(tx SettlementTx) error {
		cust, err := tx.CustomerForUpdate(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if in.PointsToRedeem > cust.Points {
			return ErrInsufficientPoints
		}
		lines, err := tx.CartLines(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}
		// Snapshot the phone supplied with a customer's first order.
		if cust.Phone == "" && in.Phone != "" {
			if err := tx.SetCustomerPhone(ctx, cust.ID, in.Phone); err != nil {
				return err
			}
		}

		order := model.Order{
			PublicID:        uuid.NewString(),
			CustomerID:      cust.ID,
			PaymentMethod:   in.PaymentMethod,
			ShippingAddress: in.ShippingAddress,
			Status:          model.OrderStatusProcessing,
			Total:           decimal.Zero,
			PointsDiscount:  decimal.Zero,
		}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(lines))
		total := decimal.Zero
		for _, l := range lines {
			ok, err := tx.DecrementStock(ctx, l.BookID, l.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientStock
			}
			lineTotal := l.Total()
			items = append(items, model.OrderItem{
				OrderID:    order.ID,
				BookID:     l.BookID,
				Title:      l.Title,
				Price:      l.UnitPrice,
				Quantity:   l.Quantity,
				TotalPrice: lineTotal,
			})
			total = total.Add(lineTotal)
		}
		if err := tx.CreateOrderItems(ctx, items); err != nil {
			return err
		}
		order.Total = total

		if in.PointsToRedeem > 0 {
			order.PointsDiscount = RedemptionValue(in.PointsToRedeem)
			ok, err := tx.AdjustPoints(ctx, cust.ID, -in.PointsToRedeem)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientPoints
			}
			if err := tx.AppendPointsEntry(ctx, &model.PointsTransaction{
				CustomerID:  cust.ID,
				Points:      -in.PointsToRedeem,
				Kind:        model.PointsKindSpent,
				Description: fmt.Sprintf("Redeemed on order %s", order.PublicID),
				OrderID:     &order.ID,
			}); err != nil {
				return err
			}
		}

		// One point per whole currency unit of the pre-discount total.
		earned := total.Floor().IntPart()
		if earned > 0 {
			ok, err := tx.AdjustPoints(ctx, cust.ID, earned)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientPoints
			}
			if err := tx.AppendPointsEntry(ctx, &model.PointsTransaction{
				CustomerID:  cust.ID,
				Points:      earned,
				Kind:        model.PointsKindEarned,
				Description: fmt.Sprintf("Earned on order %s", order.PublicID),
				OrderID:     &order.ID,
			}); err != nil {
				return err
			}
		}

		if err := tx.ClearCart(ctx, in.CustomerID); err != nil {
			return err
		}
		order.Status = model.OrderStatusCompleted
		if err := tx.FinishOrder(ctx, &order); err != nil {
			return err
		}

		out = Settlement{
			Order:          order,
			Items:          items,
			PointsEarned:   earned,
			PointsRedeemed: in.PointsToRedeem,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RedemptionValue converts redeemed points into their exact
// currency value (1 point = 0.05 units). The division is exact;
// rounding happens only when the value is formatted for display.
func RedemptionValue(points int64) decimal.Decimal {
	return decimal.NewFromInt(points).Div(decimal.NewFromInt(pointsPerCurrencyUnit))
}
