package wallet

// CreateWalletRequest represents the request to create a wallet
type CreateWalletRequest struct {
	Name           string  `json:"name" validate:"required,min=1,max=100"`
	CurrencyCode   string  `json:"currency_code,omitempty"`
	InitialBalance float64 `json:"initial_balance,omitempty"`
}

// RecordMovementRequest represents the request to record a standalone
// income or expense against a wallet
type RecordMovementRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Description *string `json:"description,omitempty"`
	OccurredOn  *string `json:"occurred_on,omitempty"` // YYYY-MM-DD, defaults to today
}

// WalletResponse represents the response for a wallet
type WalletResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	CurrencyCode string  `json:"currency_code"`
	Balance      float64 `json:"balance"`
	CreatedAt    string  `json:"created_at"`
}

// MovementResponse represents the response for a movement
type MovementResponse struct {
	ID           int64   `json:"id"`
	Kind         string  `json:"kind"`
	WalletID     int64   `json:"wallet_id"`
	Amount       float64 `json:"amount"`
	CurrencyCode string  `json:"currency_code"`
	Description  *string `json:"description,omitempty"`
	Reference    string  `json:"reference"`
	OccurredOn   string  `json:"occurred_on"`
	CreatedAt    string  `json:"created_at"`
}

// ToResponse converts a Wallet model to a WalletResponse DTO
func (w *Wallet) ToResponse() *WalletResponse {
	return &WalletResponse{
		ID:           w.ID,
		Name:         w.Name,
		CurrencyCode: w.CurrencyCode,
		Balance:      w.Balance,
		CreatedAt:    w.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Movement model to a MovementResponse DTO
func (m *Movement) ToResponse() *MovementResponse {
	return &MovementResponse{
		ID:           m.ID,
		Kind:         string(m.Kind),
		WalletID:     m.WalletID,
		Amount:       m.Amount,
		CurrencyCode: m.CurrencyCode,
		Description:  m.Description,
		Reference:    m.Reference,
		OccurredOn:   m.OccurredOn.Format("2006-01-02"),
		CreatedAt:    m.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
