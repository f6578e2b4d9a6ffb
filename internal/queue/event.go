// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCompletedEvent is published when a checkout settlement commits.
// It carries enough information for downstream consumers to log, notify,
// or feed analytics without querying the primary database.
type OrderCompletedEvent struct {
	OrderID        uint64 `json:"order_id"`
	PublicID       string `json:"public_id"`
	CustomerID     uint64 `json:"customer_id"`
	UserID         uint64 `json:"user_id"`
	PaymentMethod  string `json:"payment_method"`
	Total          string `json:"total"`
	PointsDiscount string `json:"points_discount"`
	PointsEarned   int64  `json:"points_earned"`
	PointsRedeemed int64  `json:"points_redeemed"`
	ItemCount      int    `json:"item_count"`
	CompletedAt    string `json:"completed_at"`
}
