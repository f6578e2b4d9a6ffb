package model

import "time"

// Customer is the purchasing profile linked one-to-one with a user.
// Points is the loyalty balance; it is mutated only through the
// loyalty ledger operations (earn/spend), never written directly
// by other code paths, so that the balance always equals the sum
// of the customer's points transactions.
//
// Fields:
//  ID        – primary key identifier of the customer.
//  UserID    – linked user identity (unique).
//  Phone     – contact phone, captured on first checkout if empty.
//  Points    – current loyalty points balance, never negative.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Customer struct {
	ID        uint64    // customers.id
	UserID    uint64    // customers.user_id
	Phone     string    // customers.phone
	Points    int64     // customers.points
	CreatedAt time.Time // customers.created_at
	UpdatedAt time.Time // customers.updated_at
}
