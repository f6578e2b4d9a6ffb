package service

import (
	"context"

	"github.com/iliyamo/bookstore/internal/model"
)

// LoyaltyService applies balance changes through the append-only
// points ledger. Every change runs in one transaction covering both
// the balance adjustment and the ledger entry, so the balance is
// always the sum of the customer's ledger deltas. Ledger entries
// are never mutated or deleted.
type LoyaltyService struct {
	store SettlementStore
}

// NewLoyaltyService returns a LoyaltyService backed by the given
// store.
func NewLoyaltyService(store SettlementStore) *LoyaltyService {
	if store == nil {
		panic("nil store passed to NewLoyaltyService")
	}
	return &LoyaltyService{store: store}
}

// Earn credits points to a customer and appends an "earned" or
// "bonus" ledger entry. Points must be positive.
func (s *LoyaltyService) Earn(ctx context.Context, customerID uint64, points int64, kind, description string, orderID *uint64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	if kind != model.PointsKindEarned && kind != model.PointsKindBonus {
		kind = model.PointsKindEarned
	}
	return s.store.ExecTx(ctx, func(tx SettlementTx) error {
		if _, err := tx.CustomerForUpdate(ctx, customerID); err != nil {
			return err
		}
		if _, err := tx.AdjustPoints(ctx, customerID, points); err != nil {
			return err
		}
		return tx.AppendPointsEntry(ctx, &model.PointsTransaction{
			CustomerID:  customerID,
			Points:      points,
			Kind:        kind,
			Description: description,
			OrderID:     orderID,
		})
	})
}

// Spend debits points from a customer and appends a "spent" ledger
// entry with a negative delta. The debit is an atomic conditional
// decrement: when the balance is smaller than points the whole
// transaction fails with ErrInsufficientPoints and nothing is
// recorded.
func (s *LoyaltyService) Spend(ctx context.Context, customerID uint64, points int64, description string, orderID *uint64) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	return s.store.ExecTx(ctx, func(tx SettlementTx) error {
		if _, err := tx.CustomerForUpdate(ctx, customerID); err != nil {
			return err
		}
		ok, err := tx.AdjustPoints(ctx, customerID, -points)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientPoints
		}
		return tx.AppendPointsEntry(ctx, &model.PointsTransaction{
			CustomerID:  customerID,
			Points:      -points,
			Kind:        model.PointsKindSpent,
			Description: description,
			OrderID:     orderID,
		})
	})
}
