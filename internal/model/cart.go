package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart groups the pending line items of one customer. A customer
// has at most one cart; totals are never stored here but always
// recomputed from live items and current book prices.
type Cart struct {
	ID         uint64    // carts.id
	CustomerID uint64    // carts.customer_id (unique)
	CreatedAt  time.Time // carts.created_at
}

// CartItem is one (book, quantity) line awaiting purchase. The pair
// (cart_id, book_id) is unique; quantity is at least 1 and rows are
// deleted rather than ever reaching zero.
type CartItem struct {
	ID        uint64    // cart_items.id
	CartID    uint64    // cart_items.cart_id
	BookID    uint64    // cart_items.book_id
	Quantity  uint32    // cart_items.quantity
	CreatedAt time.Time // cart_items.created_at
}

// CartLine is a cart item joined with its book's live title, price
// and stock. Cart totals are always derived from these live prices,
// never cached, so a catalog price change is reflected the next
// time the cart is read. At settlement the line's UnitPrice is the
// value captured onto the order item.
type CartLine struct {
	ItemID    uint64
	BookID    uint64
	Title     string
	UnitPrice decimal.Decimal
	Stock     uint32
	Quantity  uint32
}

// Total returns UnitPrice × Quantity as an exact decimal.
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartTotal sums the line totals of a cart view.
func CartTotal(lines []CartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}
