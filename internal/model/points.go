package model

import "time"

// Points transaction kinds as persisted in points_transactions.kind.
// Externally visible vocabulary; preserved verbatim.
const (
	PointsKindEarned  = "earned"
	PointsKindSpent   = "spent"
	PointsKindBonus   = "bonus"
	PointsKindExpired = "expired"
)

// PointsTransaction is one immutable entry of the loyalty ledger.
// Points is a signed delta: positive for earned/bonus, negative for
// spent/expired. Entries are append-only and never mutated or
// deleted, so a customer's balance is always recomputable as the
// sum of their deltas. Listed newest-first for display.
//
// Fields:
//  ID          – primary key identifier.
//  CustomerID  – owning customer.
//  Points      – signed point delta.
//  Kind        – "earned", "spent", "bonus" or "expired".
//  Description – human-readable reason.
//  OrderID     – originating order, if any.
//  CreatedAt   – timestamp of creation.
type PointsTransaction struct {
	ID          uint64    // points_transactions.id
	CustomerID  uint64    // points_transactions.customer_id
	Points      int64     // points_transactions.points
	Kind        string    // points_transactions.kind
	Description string    // points_transactions.description
	OrderID     *uint64   // points_transactions.order_id (nullable)
	CreatedAt   time.Time // points_transactions.created_at
}
