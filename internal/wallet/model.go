package wallet

import "time"

// MovementKind distinguishes the two movement tables
type MovementKind string

const (
	MovementKindIncome  MovementKind = "INCOME"
	MovementKindExpense MovementKind = "EXPENSE"
)

// Wallet represents a money store owned by a single user. Its balance is
// only ever changed through signed deltas, never overwritten.
type Wallet struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// Movement is a realized income or expense record against a wallet
type Movement struct {
	ID           int64        `json:"id"`
	Kind         MovementKind `json:"kind"`
	UserID       int64        `json:"user_id"`
	WalletID     int64        `json:"wallet_id"`
	Amount       float64      `json:"amount"`
	CurrencyCode string       `json:"currency_code"`
	Description  *string      `json:"description,omitempty"`
	Reference    string       `json:"reference"`
	OccurredOn   time.Time    `json:"occurred_on"`
	CreatedAt    time.Time    `json:"created_at"`
}
