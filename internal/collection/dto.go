package collection

// CreateCollectionRequest represents the request to create a collection.
// Role is the side the caller takes (CREDITOR or DEBTOR); the counterparty
// goes into the opposite slot and is referenced by exactly one of
// counterparty_friend_id, counterparty_user_id or counterparty_name.
type CreateCollectionRequest struct {
	Role                 string  `json:"role" validate:"required,oneof=CREDITOR DEBTOR"`
	CounterpartyFriendID *int64  `json:"counterparty_friend_id,omitempty"`
	CounterpartyUserID   *int64  `json:"counterparty_user_id,omitempty"`
	CounterpartyName     *string `json:"counterparty_name,omitempty"`
	Amount               float64 `json:"amount" validate:"required,gt=0"`
	CurrencyCode         string  `json:"currency_code,omitempty"`
	Description          *string `json:"description,omitempty"`
}

// RespondRequest represents the counterparty's approval decision
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// RecordPaymentRequest represents the request to record a partial payment.
// WalletID, when present, realizes the caller's own side of the payment
// immediately against that wallet.
type RecordPaymentRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Notes    *string `json:"notes,omitempty"`
	WalletID *int64  `json:"wallet_id,omitempty"`
}

// SettleRequest represents the request to pay off the whole outstanding
// balance in one payment
type SettleRequest struct {
	Notes    *string `json:"notes,omitempty"`
	WalletID *int64  `json:"wallet_id,omitempty"`
}

// AllocateRequest represents the request to realize a recorded payment
// against one of the caller's wallets
type AllocateRequest struct {
	WalletID int64 `json:"wallet_id" validate:"required"`
}

// CollectionResponse represents the response for a collection
type CollectionResponse struct {
	ID               int64   `json:"id"`
	CreditorID       *int64  `json:"creditor_id,omitempty"`
	CreditorName     *string `json:"creditor_name,omitempty"`
	CreditorUsername *string `json:"creditor_username,omitempty"`
	DebtorID         *int64  `json:"debtor_id,omitempty"`
	DebtorName       *string `json:"debtor_name,omitempty"`
	DebtorUsername   *string `json:"debtor_username,omitempty"`
	Amount           float64 `json:"amount"`
	CurrencyCode     string  `json:"currency_code"`
	Description      *string `json:"description,omitempty"`
	Status           Status  `json:"status"`
	CreatedBy        Role    `json:"created_by"`
	PaidTotal        float64 `json:"paid_total"`
	Outstanding      float64 `json:"outstanding"`
	CreatedAt        string  `json:"created_at"`
}

// PaymentResponse represents the response for a collection payment
type PaymentResponse struct {
	ID               int64   `json:"id"`
	CollectionID     int64   `json:"collection_id"`
	Amount           float64 `json:"amount"`
	Notes            *string `json:"notes,omitempty"`
	PaidOn           string  `json:"paid_on"`
	CreditorIncomeID *int64  `json:"creditor_income_id,omitempty"`
	DebtorExpenseID  *int64  `json:"debtor_expense_id,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// ToResponse converts a Collection model to a CollectionResponse DTO
func (c *Collection) ToResponse() *CollectionResponse {
	return &CollectionResponse{
		ID:               c.ID,
		CreditorID:       c.CreditorID,
		CreditorName:     c.CreditorName,
		CreditorUsername: c.CreditorUsername,
		DebtorID:         c.DebtorID,
		DebtorName:       c.DebtorName,
		DebtorUsername:   c.DebtorUsername,
		Amount:           c.Amount,
		CurrencyCode:     c.CurrencyCode,
		Description:      c.Description,
		Status:           c.Status,
		CreatedBy:        c.CreatedBy,
		PaidTotal:        c.PaidTotal,
		Outstanding:      c.Outstanding(),
		CreatedAt:        c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Payment model to a PaymentResponse DTO
func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:               p.ID,
		CollectionID:     p.CollectionID,
		Amount:           p.Amount,
		Notes:            p.Notes,
		PaidOn:           p.PaidOn.Format("2006-01-02"),
		CreditorIncomeID: p.CreditorIncomeID,
		DebtorExpenseID:  p.DebtorExpenseID,
		CreatedAt:        p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
