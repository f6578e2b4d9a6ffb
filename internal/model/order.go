package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status values as persisted in orders.status. These strings
// are externally visible vocabulary and must be preserved verbatim.
const (
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// Payment method values as persisted in orders.payment_method. The
// method is a label only; no payment processing occurs.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// Order is a finalized purchase produced by checkout settlement.
// Status transitions processing→completed (or →cancelled) only.
// PointsDiscount is informational: it records the currency value of
// redeemed points for receipts and does not change the total used
// as the points-earning base.
//
// Fields:
//  ID              – primary key identifier.
//  PublicID        – UUID exposed to clients instead of the row id.
//  CustomerID      – purchasing customer.
//  PaymentMethod   – "cash" or "card".
//  ShippingAddress – destination address captured at checkout.
//  Status          – "processing", "completed" or "cancelled".
//  Total           – sum of item totals at settlement time.
//  PointsDiscount  – currency value of redeemed points, zero if none.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type Order struct {
	ID              uint64          // orders.id
	PublicID        string          // orders.public_id
	CustomerID      uint64          // orders.customer_id
	PaymentMethod   string          // orders.payment_method
	ShippingAddress string          // orders.shipping_address
	Status          string          // orders.status
	Total           decimal.Decimal // orders.total
	PointsDiscount  decimal.Decimal // orders.points_discount
	CreatedAt       time.Time       // orders.created_at
	UpdatedAt       time.Time       // orders.updated_at
}

// OrderItem is one purchased line. Price is the unit price copied
// from the book at settlement time and must never change if the
// catalog price later changes. TotalPrice = Price × Quantity.
type OrderItem struct {
	ID         uint64          // order_items.id
	OrderID    uint64          // order_items.order_id
	BookID     uint64          // order_items.book_id
	Title      string          // order_items.title (denormalized for display)
	Price      decimal.Decimal // order_items.price, captured at purchase
	Quantity   uint32          // order_items.quantity
	TotalPrice decimal.Decimal // order_items.total_price
}

// ValidPaymentMethod reports whether m is one of the persisted
// payment method strings.
func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}
