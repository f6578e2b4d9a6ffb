package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bookstore/internal/model"
)

func TestSettle_TwoCopiesEarnFloorOfTotal(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 0)
	store.addBook(10, "The Go Programming Language", "19.99", 5)
	store.putCartLine(1, 10, 2)

	svc := NewCheckoutService(store)
	out, err := svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, "39.98", out.Order.Total.StringFixed(2))
	assert.Equal(t, int64(39), out.PointsEarned)
	assert.Equal(t, model.OrderStatusCompleted, out.Order.Status)
	assert.Equal(t, "0.00", out.Order.PointsDiscount.StringFixed(2))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "19.99", out.Items[0].Price.StringFixed(2))
	assert.Equal(t, uint32(2), out.Items[0].Quantity)
	assert.Equal(t, "39.98", out.Items[0].TotalPrice.StringFixed(2))

	// Stock decremented, cart cleared, balance matches ledger.
	assert.Equal(t, uint32(3), store.stock[10])
	assert.Empty(t, store.cartLines[1])
	assert.Equal(t, int64(39), store.balance(1))
	assert.Equal(t, store.balance(1), store.ledgerSum(1))
}

func TestSettle_RedemptionDiscountsButKeepsEarningBase(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 150)
	store.addBook(10, "The Go Programming Language", "19.99", 5)
	store.putCartLine(1, 10, 2)

	svc := NewCheckoutService(store)
	out, err := svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCash,
		PointsToRedeem:  100,
	})
	require.NoError(t, err)

	// 100 points are worth 5.00; the discount is informational and
	// the earning base stays the pre-discount total.
	assert.Equal(t, "5.00", out.Order.PointsDiscount.StringFixed(2))
	assert.Equal(t, "39.98", out.Order.Total.StringFixed(2))
	assert.Equal(t, int64(39), out.PointsEarned)
	assert.Equal(t, int64(100), out.PointsRedeemed)

	// 150 - 100 + 39 = 89, and the ledger agrees.
	assert.Equal(t, int64(89), store.balance(1))
	assert.Equal(t, store.balance(1), store.ledgerSum(1))

	// One spent entry, one earned entry, both tied to the order.
	var spent, earned int
	for _, e := range store.ledger {
		switch e.Kind {
		case model.PointsKindSpent:
			spent++
			assert.Equal(t, int64(-100), e.Points)
			require.NotNil(t, e.OrderID)
			assert.Equal(t, out.Order.ID, *e.OrderID)
		case model.PointsKindEarned:
			earned++
			assert.Equal(t, int64(39), e.Points)
		}
	}
	assert.Equal(t, 1, spent)
	assert.Equal(t, 1, earned)
}

func TestSettle_EmptyCart(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 50)

	svc := NewCheckoutService(store)
	_, err := svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, int64(50), store.balance(1))
	assert.Empty(t, store.ledger)
	assert.Empty(t, store.orders)
}

func TestSettle_InsufficientPointsLeavesEverythingIntact(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 150)
	store.addBook(10, "The Go Programming Language", "19.99", 5)
	store.putCartLine(1, 10, 2)

	svc := NewCheckoutService(store)
	_, err := svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCard,
		PointsToRedeem:  500,
	})
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// No order, no ledger rows, stock and cart untouched.
	assert.Equal(t, int64(150), store.balance(1))
	assert.Empty(t, store.ledger)
	assert.Empty(t, store.orders)
	assert.Equal(t, uint32(5), store.stock[10])
	assert.Len(t, store.cartLines[1], 1)
}

func TestSettle_InvalidPaymentMethod(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 0)

	svc := NewCheckoutService(store)
	_, err := svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   "bitcoin",
	})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCash,
		PointsToRedeem:  -5,
	})
	assert.ErrorIs(t, err, ErrInvalidPoints)
}

func TestSettle_InsufficientStockRollsBackWholeCart(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 0)
	store.addBook(10, "First", "10.00", 5)
	store.addBook(11, "Second", "15.00", 1)
	store.putCartLine(1, 10, 2)
	store.putCartLine(1, 11, 3) // only 1 in stock

	svc := NewCheckoutService(store)
	_, err := svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// The first line's decrement rolled back with everything else.
	assert.Equal(t, uint32(5), store.stock[10])
	assert.Equal(t, uint32(1), store.stock[11])
	assert.Empty(t, store.orders)
	assert.Len(t, store.cartLines[1], 2)
}

func TestSettle_ItemPricesImmuneToLaterCatalogChanges(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 0)
	store.addBook(10, "The Go Programming Language", "19.99", 5)
	store.putCartLine(1, 10, 1)

	svc := NewCheckoutService(store)
	out, err := svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCard,
	})
	require.NoError(t, err)

	// A catalog price change after settlement must not touch the
	// captured order item price.
	store.addBook(10, "The Go Programming Language", "29.99", 5)
	require.Len(t, store.items, 1)
	assert.Equal(t, "19.99", store.items[0].Price.StringFixed(2))
	assert.Equal(t, "19.99", out.Items[0].Price.StringFixed(2))
}

func TestSettle_PhoneCapturedOnlyWhenMissing(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 0)
	store.addBook(10, "First", "10.00", 5)
	store.putCartLine(1, 10, 1)

	svc := NewCheckoutService(store)
	_, err := svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCash,
		Phone:           "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", store.customers[1].Phone)

	// A second checkout with a different phone keeps the first one.
	store.putCartLine(1, 10, 1)
	_, err = svc.Settle(context.Background(), SettleInput{
		CustomerID:      1,
		ShippingAddress: "1 Main St",
		PaymentMethod:   model.PaymentMethodCash,
		Phone:           "555-0199",
	})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", store.customers[1].Phone)
}

func TestSettle_ConcurrentDoubleCheckout(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 0)
	store.addBook(10, "First", "10.00", 2)
	store.putCartLine(1, 10, 2)

	svc := NewCheckoutService(store)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Settle(context.Background(), SettleInput{
				CustomerID:      1,
				ShippingAddress: "1 Main St",
				PaymentMethod:   model.PaymentMethodCard,
			})
		}(i)
	}
	wg.Wait()

	// Exactly one settlement wins; the loser finds the cart gone.
	var ok, empty int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case err == ErrEmptyCart:
			empty++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, empty)
	assert.Equal(t, uint32(0), store.stock[10])
	assert.Equal(t, int64(20), store.balance(1))
	assert.Equal(t, store.balance(1), store.ledgerSum(1))
}
