package wallet

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrNotWalletOwner  = errors.New("not the owner of this wallet")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrNegativeBalance = errors.New("initial balance cannot be negative")
	ErrNameRequired    = errors.New("wallet name is required")
	ErrInvalidDate     = errors.New("occurred_on must be a YYYY-MM-DD date")
)

// DefaultCurrency is applied when a wallet is created without one
const DefaultCurrency = "SAR"

// Service handles wallet business logic
type Service struct {
	repo *Repository
}

// NewService creates a new wallet service
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a new wallet for the caller
func (s *Service) Create(ctx context.Context, ownerID int64, req *CreateWalletRequest) (*Wallet, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.InitialBalance < 0 {
		return nil, ErrNegativeBalance
	}

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" {
		currency = DefaultCurrency
	}

	return s.repo.CreateWallet(ctx, ownerID, strings.TrimSpace(req.Name), currency, req.InitialBalance)
}

// GetByID retrieves a wallet owned by the caller
func (s *Service) GetByID(ctx context.Context, actorID, id int64) (*Wallet, error) {
	wallet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, ErrWalletNotFound
	}
	if wallet.UserID != actorID {
		return nil, ErrNotWalletOwner
	}
	return wallet, nil
}

// List retrieves all wallets owned by the caller
func (s *Service) List(ctx context.Context, ownerID int64) ([]*Wallet, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// RecordIncome records a standalone income on one of the caller's wallets
func (s *Service) RecordIncome(ctx context.Context, actorID, walletID int64, req *RecordMovementRequest) (*Movement, error) {
	return s.recordMovement(ctx, MovementKindIncome, actorID, walletID, req)
}

// RecordExpense records a standalone expense on one of the caller's wallets
func (s *Service) RecordExpense(ctx context.Context, actorID, walletID int64, req *RecordMovementRequest) (*Movement, error) {
	return s.recordMovement(ctx, MovementKindExpense, actorID, walletID, req)
}

func (s *Service) recordMovement(ctx context.Context, kind MovementKind, actorID, walletID int64, req *RecordMovementRequest) (*Movement, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.GetByID(ctx, actorID, walletID)
	if err != nil {
		return nil, err
	}

	occurredOn := time.Now().UTC()
	if req.OccurredOn != nil && *req.OccurredOn != "" {
		occurredOn, err = time.Parse("2006-01-02", *req.OccurredOn)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	return s.repo.RecordMovement(ctx, kind, actorID, walletID, req.Amount, wallet.CurrencyCode, req.Description, NewReference(), occurredOn)
}

// ListMovements retrieves movements of one of the caller's wallets
func (s *Service) ListMovements(ctx context.Context, actorID, walletID int64, page, perPage int) ([]*Movement, int, error) {
	if _, err := s.GetByID(ctx, actorID, walletID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.repo.ListMovements(ctx, walletID, perPage, offset)
}

// NewReference generates a short unique code stamped on every movement row
func NewReference() string {
	return "MOV-" + strings.ToUpper(uuid.NewString()[:8])
}
