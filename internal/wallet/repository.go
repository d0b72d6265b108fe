package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrWalletGone is returned by the Tx-scoped ledger methods when the
// target wallet row does not exist
var ErrWalletGone = errors.New("wallet does not exist")

// Repository handles wallet and movement persistence. The *Tx methods
// take an open transaction so callers (the collection allocation engine)
// can commit a movement, a balance delta and their own writes atomically.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new wallet repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateWallet inserts a new wallet
func (r *Repository) CreateWallet(ctx context.Context, ownerID int64, name, currencyCode string, initialBalance float64) (*Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, name, currency_code, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, name, currency_code, balance, created_at
	`

	wallet := &Wallet{}
	err := r.db.QueryRowContext(ctx, query, ownerID, name, currencyCode, initialBalance).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Name,
		&wallet.CurrencyCode,
		&wallet.Balance,
		&wallet.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	return wallet, nil
}

// GetByID retrieves a wallet by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Wallet, error) {
	query := `
		SELECT id, user_id, name, currency_code, balance, created_at
		FROM wallets
		WHERE id = $1
	`

	wallet := &Wallet{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Name,
		&wallet.CurrencyCode,
		&wallet.Balance,
		&wallet.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	return wallet, nil
}

// ListByOwner retrieves all wallets owned by a user
func (r *Repository) ListByOwner(ctx context.Context, ownerID int64) ([]*Wallet, error) {
	query := `
		SELECT id, user_id, name, currency_code, balance, created_at
		FROM wallets
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []*Wallet
	for rows.Next() {
		wallet := &Wallet{}
		if err := rows.Scan(
			&wallet.ID,
			&wallet.UserID,
			&wallet.Name,
			&wallet.CurrencyCode,
			&wallet.Balance,
			&wallet.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wallet: %w", err)
		}
		wallets = append(wallets, wallet)
	}

	return wallets, nil
}

// AdjustBalanceTx applies a signed delta to a wallet balance inside an
// open transaction. The delta update serializes against concurrent wallet
// activity through the row lock the UPDATE takes.
func (r *Repository) AdjustBalanceTx(ctx context.Context, tx *sql.Tx, walletID int64, delta float64) error {
	query := `UPDATE wallets SET balance = balance + $2 WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, walletID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust wallet balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to adjust wallet balance: %w", err)
	}
	if affected == 0 {
		return ErrWalletGone
	}

	return nil
}

// CreateIncomeTx inserts an income record inside an open transaction and
// returns its id
func (r *Repository) CreateIncomeTx(ctx context.Context, tx *sql.Tx, userID, walletID int64, amount float64, currencyCode string, description *string, reference string, occurredOn time.Time) (int64, error) {
	query := `
		INSERT INTO incomes (user_id, wallet_id, amount, currency_code, description, reference, occurred_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := tx.QueryRowContext(ctx, query, userID, walletID, amount, currencyCode, description, reference, occurredOn).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create income: %w", err)
	}

	return id, nil
}

// CreateExpenseTx inserts an expense record inside an open transaction and
// returns its id
func (r *Repository) CreateExpenseTx(ctx context.Context, tx *sql.Tx, userID, walletID int64, amount float64, currencyCode string, description *string, reference string, occurredOn time.Time) (int64, error) {
	query := `
		INSERT INTO expenses (user_id, wallet_id, amount, currency_code, description, reference, occurred_on)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := tx.QueryRowContext(ctx, query, userID, walletID, amount, currencyCode, description, reference, occurredOn).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create expense: %w", err)
	}

	return id, nil
}

// RecordMovement inserts a standalone income or expense and applies the
// matching balance delta in one transaction
func (r *Repository) RecordMovement(ctx context.Context, kind MovementKind, userID, walletID int64, amount float64, currencyCode string, description *string, reference string, occurredOn time.Time) (*Movement, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	var delta float64
	switch kind {
	case MovementKindIncome:
		id, err = r.CreateIncomeTx(ctx, tx, userID, walletID, amount, currencyCode, description, reference, occurredOn)
		delta = amount
	case MovementKindExpense:
		id, err = r.CreateExpenseTx(ctx, tx, userID, walletID, amount, currencyCode, description, reference, occurredOn)
		delta = -amount
	default:
		return nil, fmt.Errorf("unknown movement kind: %s", kind)
	}
	if err != nil {
		return nil, err
	}

	if err := r.AdjustBalanceTx(ctx, tx, walletID, delta); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit movement: %w", err)
	}

	return &Movement{
		ID:           id,
		Kind:         kind,
		UserID:       userID,
		WalletID:     walletID,
		Amount:       amount,
		CurrencyCode: currencyCode,
		Description:  description,
		Reference:    reference,
		OccurredOn:   occurredOn,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// ListMovements retrieves incomes and expenses of a wallet, newest first
func (r *Repository) ListMovements(ctx context.Context, walletID int64, limit, offset int) ([]*Movement, int, error) {
	var total int
	countQuery := `
		SELECT (SELECT COUNT(*) FROM incomes WHERE wallet_id = $1)
		     + (SELECT COUNT(*) FROM expenses WHERE wallet_id = $1)
	`
	if err := r.db.QueryRowContext(ctx, countQuery, walletID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	query := `
		SELECT id, 'INCOME' AS kind, user_id, wallet_id, amount, currency_code, description, reference, occurred_on, created_at
		FROM incomes
		WHERE wallet_id = $1
		UNION ALL
		SELECT id, 'EXPENSE' AS kind, user_id, wallet_id, amount, currency_code, description, reference, occurred_on, created_at
		FROM expenses
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	var movements []*Movement
	for rows.Next() {
		movement := &Movement{}
		if err := rows.Scan(
			&movement.ID,
			&movement.Kind,
			&movement.UserID,
			&movement.WalletID,
			&movement.Amount,
			&movement.CurrencyCode,
			&movement.Description,
			&movement.Reference,
			&movement.OccurredOn,
			&movement.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, movement)
	}

	return movements, total, nil
}
