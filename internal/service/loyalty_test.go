package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bookstore/internal/model"
)

func TestLoyalty_EarnAppendsLedgerEntry(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 0)
	svc := NewLoyaltyService(store)

	require.NoError(t, svc.Earn(context.Background(), 1, 25, model.PointsKindBonus, "welcome bonus", nil))
	assert.Equal(t, int64(25), store.balance(1))
	require.Len(t, store.ledger, 1)
	assert.Equal(t, model.PointsKindBonus, store.ledger[0].Kind)
	assert.Equal(t, int64(25), store.ledger[0].Points)

	// Unknown kinds fall back to earned.
	require.NoError(t, svc.Earn(context.Background(), 1, 10, "promo", "typo kind", nil))
	assert.Equal(t, model.PointsKindEarned, store.ledger[1].Kind)

	assert.ErrorIs(t, svc.Earn(context.Background(), 1, 0, model.PointsKindBonus, "zero", nil), ErrInvalidPoints)
	assert.ErrorIs(t, svc.Earn(context.Background(), 1, -5, model.PointsKindBonus, "negative", nil), ErrInvalidPoints)
}

func TestLoyalty_SpendIsConditional(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 30)
	svc := NewLoyaltyService(store)

	require.NoError(t, svc.Spend(context.Background(), 1, 20, "redeemed", nil))
	assert.Equal(t, int64(10), store.balance(1))
	require.Len(t, store.ledger, 1)
	assert.Equal(t, int64(-20), store.ledger[0].Points)
	assert.Equal(t, model.PointsKindSpent, store.ledger[0].Kind)

	// Overdraw fails atomically: no balance change, no entry.
	assert.ErrorIs(t, svc.Spend(context.Background(), 1, 11, "too much", nil), ErrInsufficientPoints)
	assert.Equal(t, int64(10), store.balance(1))
	assert.Len(t, store.ledger, 1)
}

func TestLoyalty_BalanceAlwaysEqualsLedgerSum(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 0)
	svc := NewLoyaltyService(store)
	ctx := context.Background()

	require.NoError(t, svc.Earn(ctx, 1, 100, model.PointsKindEarned, "order", nil))
	require.NoError(t, svc.Spend(ctx, 1, 40, "redeemed", nil))
	require.NoError(t, svc.Earn(ctx, 1, 15, model.PointsKindBonus, "promo", nil))
	_ = svc.Spend(ctx, 1, 500, "rejected", nil)

	assert.Equal(t, int64(75), store.balance(1))
	assert.Equal(t, store.balance(1), store.ledgerSum(1))
}

func TestLoyalty_ConcurrentSpendsNeverOverdraw(t *testing.T) {
	store := newMemStore()
	store.addCustomer(1, 100)
	svc := NewLoyaltyService(store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Spend(context.Background(), 1, 10, "concurrent", nil)
		}()
	}
	wg.Wait()

	// 100 points cover exactly ten spends of ten.
	assert.Equal(t, int64(0), store.balance(1))
	assert.Equal(t, store.balance(1), store.ledgerSum(1))
	assert.Len(t, store.ledger, 10)
}
