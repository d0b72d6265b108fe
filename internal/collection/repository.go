package collection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Ledger is the Tx-scoped wallet contract the repository composes into
// its own transactions, so a movement row, a balance delta and a
// back-reference claim commit together or not at all. Implemented by the
// wallet repository.
type Ledger interface {
	CreateIncomeTx(ctx context.Context, tx *sql.Tx, userID, walletID int64, amount float64, currencyCode string, description *string, reference string, occurredOn time.Time) (int64, error)
	CreateExpenseTx(ctx context.Context, tx *sql.Tx, userID, walletID int64, amount float64, currencyCode string, description *string, reference string, occurredOn time.Time) (int64, error)
	AdjustBalanceTx(ctx context.Context, tx *sql.Tx, walletID int64, delta float64) error
}

// Repository handles collection and payment persistence
type Repository struct {
	db     *sql.DB
	ledger Ledger
}

// NewRepository creates a new collection repository
func NewRepository(db *sql.DB, ledger Ledger) *Repository {
	return &Repository{db: db, ledger: ledger}
}

const collectionColumns = `
	c.id, c.creditor_id, c.creditor_name, c.debtor_id, c.debtor_name,
	c.amount, c.currency_code, c.description, c.status, c.created_by, c.created_at,
	COALESCE((SELECT SUM(p.amount) FROM collection_payments p WHERE p.collection_id = c.id), 0) AS paid_total,
	cu.username AS creditor_username, du.username AS debtor_username
`

const collectionJoins = `
	FROM collections c
	LEFT JOIN users cu ON c.creditor_id = cu.id
	LEFT JOIN users du ON c.debtor_id = du.id
`

func scanCollection(row interface{ Scan(...interface{}) error }) (*Collection, error) {
	c := &Collection{}
	err := row.Scan(
		&c.ID,
		&c.CreditorID,
		&c.CreditorName,
		&c.DebtorID,
		&c.DebtorName,
		&c.Amount,
		&c.CurrencyCode,
		&c.Description,
		&c.Status,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.PaidTotal,
		&c.CreditorUsername,
		&c.DebtorUsername,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateCollection inserts a new collection row
func (r *Repository) CreateCollection(ctx context.Context, c *Collection) (*Collection, error) {
	query := `
		INSERT INTO collections (creditor_id, creditor_name, debtor_id, debtor_name, amount, currency_code, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		c.CreditorID,
		c.CreditorName,
		c.DebtorID,
		c.DebtorName,
		c.Amount,
		c.CurrencyCode,
		c.Description,
		c.Status,
		c.CreatedBy,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return r.GetByID(ctx, c.ID)
}

// GetByID retrieves a collection with its derived paid total
func (r *Repository) GetByID(ctx context.Context, id int64) (*Collection, error) {
	query := `SELECT ` + collectionColumns + collectionJoins + ` WHERE c.id = $1`

	c, err := scanCollection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}

	return c, nil
}

// ListByParticipant retrieves all collections a registered user is on
// either side of
func (r *Repository) ListByParticipant(ctx context.Context, userID int64, limit, offset int) ([]*Collection, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM collections WHERE creditor_id = $1 OR debtor_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count collections: %w", err)
	}

	query := `SELECT ` + collectionColumns + collectionJoins + `
		WHERE c.creditor_id = $1 OR c.debtor_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []*Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}

	return collections, total, nil
}

// UpdateStatus transitions a collection's status only when its current
// status is in the allowed set. Returns nil when no row matched.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, from []Status, to Status) (*Collection, error) {
	statuses := make([]string, len(from))
	for i, s := range from {
		statuses[i] = string(s)
	}

	query := `
		UPDATE collections
		SET status = $2
		WHERE id = $1 AND status = ANY($3)
		RETURNING id
	`

	var updatedID int64
	err := r.db.QueryRowContext(ctx, query, id, to, pq.Array(statuses)).Scan(&updatedID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update collection status: %w", err)
	}

	return r.GetByID(ctx, updatedID)
}

const paymentColumns = `id, collection_id, amount, notes, paid_on, creditor_income_id, debtor_expense_id, created_at`

func scanPayment(row interface{ Scan(...interface{}) error }) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(
		&p.ID,
		&p.CollectionID,
		&p.Amount,
		&p.Notes,
		&p.PaidOn,
		&p.CreditorIncomeID,
		&p.DebtorExpenseID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPaymentByID retrieves a single payment
func (r *Repository) GetPaymentByID(ctx context.Context, id int64) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM collection_payments WHERE id = $1`

	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return p, nil
}

// ListPayments retrieves all payments of a collection, oldest first
func (r *Repository) ListPayments(ctx context.Context, collectionID int64) ([]*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM collection_payments WHERE collection_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, collectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, nil
}

// RecordPayment appends a payment in one transaction. The collection row
// is locked first, so the outstanding-balance check serializes against
// concurrent payments: two payments that individually fit but jointly
// overshoot can never both commit. When alloc is non-nil the actor's side
// is realized inside the same transaction.
func (r *Repository) RecordPayment(ctx context.Context, collectionID int64, amount float64, payRemainder bool, notes *string, alloc *AllocationSpec) (*Payment, *Collection, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status Status
	var total float64
	var currency string
	lockQuery := `SELECT status, amount, currency_code FROM collections WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, lockQuery, collectionID).Scan(&status, &total, &currency); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrCollectionNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock collection: %w", err)
	}

	if !status.AcceptsPayments() {
		return nil, nil, ErrCollectionClosed
	}

	var paid float64
	sumQuery := `SELECT COALESCE(SUM(amount), 0) FROM collection_payments WHERE collection_id = $1`
	if err := tx.QueryRowContext(ctx, sumQuery, collectionID).Scan(&paid); err != nil {
		return nil, nil, fmt.Errorf("failed to sum payments: %w", err)
	}

	outstanding := round2(total - paid)
	if payRemainder {
		amount = outstanding
	}
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if amount > outstanding+Tolerance {
		return nil, nil, ErrPaymentTooLarge
	}

	insertQuery := `
		INSERT INTO collection_payments (collection_id, amount, notes, paid_on)
		VALUES ($1, $2, $3, CURRENT_DATE)
		RETURNING ` + paymentColumns

	payment, err := scanPayment(tx.QueryRowContext(ctx, insertQuery, collectionID, amount, notes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create payment: %w", err)
	}

	newStatus := StatusForOutstanding(round2(outstanding - amount))
	if _, err := tx.ExecContext(ctx, `UPDATE collections SET status = $2 WHERE id = $1`, collectionID, newStatus); err != nil {
		return nil, nil, fmt.Errorf("failed to update collection status: %w", err)
	}

	if alloc != nil {
		if err := r.allocateInTx(ctx, tx, payment, currency, alloc); err != nil {
			return nil, nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	c, err := r.GetByID(ctx, collectionID)
	if err != nil {
		return nil, nil, err
	}

	return payment, c, nil
}

// AllocatePayment realizes one side of an existing payment in one
// transaction: movement row, conditional back-reference claim and wallet
// delta commit together or roll back together.
func (r *Repository) AllocatePayment(ctx context.Context, paymentID int64, alloc *AllocationSpec) (*Payment, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		SELECT p.id, p.collection_id, p.amount, p.notes, p.paid_on, p.creditor_income_id, p.debtor_expense_id, p.created_at,
		       c.currency_code
		FROM collection_payments p
		JOIN collections c ON p.collection_id = c.id
		WHERE p.id = $1
		FOR UPDATE OF p
	`

	payment := &Payment{}
	var currency string
	err = tx.QueryRowContext(ctx, query, paymentID).Scan(
		&payment.ID,
		&payment.CollectionID,
		&payment.Amount,
		&payment.Notes,
		&payment.PaidOn,
		&payment.CreditorIncomeID,
		&payment.DebtorExpenseID,
		&payment.CreatedAt,
		&currency,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to lock payment: %w", err)
	}

	if err := r.allocateInTx(ctx, tx, payment, currency, alloc); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit allocation: %w", err)
	}

	return r.GetPaymentByID(ctx, paymentID)
}

// allocateInTx creates the movement record for one side, claims the
// side's back-reference while it is still null and applies the signed
// wallet delta. Any failure leaves the whole transaction to roll back.
func (r *Repository) allocateInTx(ctx context.Context, tx *sql.Tx, payment *Payment, currency string, alloc *AllocationSpec) error {
	var movementID int64
	var claimQuery string
	var delta float64
	var err error

	switch alloc.Role {
	case RoleCreditor:
		movementID, err = r.ledger.CreateIncomeTx(ctx, tx, alloc.ActorID, alloc.WalletID, payment.Amount, currency, &alloc.Description, alloc.Reference, alloc.Date)
		claimQuery = `UPDATE collection_payments SET creditor_income_id = $1 WHERE id = $2 AND creditor_income_id IS NULL`
		delta = payment.Amount
	case RoleDebtor:
		movementID, err = r.ledger.CreateExpenseTx(ctx, tx, alloc.ActorID, alloc.WalletID, payment.Amount, currency, &alloc.Description, alloc.Reference, alloc.Date)
		claimQuery = `UPDATE collection_payments SET debtor_expense_id = $1 WHERE id = $2 AND debtor_expense_id IS NULL`
		delta = -payment.Amount
	default:
		return fmt.Errorf("cannot allocate for role %q", alloc.Role)
	}
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, claimQuery, movementID, payment.ID)
	if err != nil {
		return fmt.Errorf("failed to claim allocation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to claim allocation: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyAllocated
	}

	return r.ledger.AdjustBalanceTx(ctx, tx, alloc.WalletID, delta)
}
