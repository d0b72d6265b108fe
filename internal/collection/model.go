package collection

import (
	"math"
	"time"
)

// Status represents the lifecycle state of a collection
type Status string

const (
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusActive          Status = "ACTIVE"
	StatusPartiallyPaid   Status = "PARTIALLY_PAID"
	StatusPaid            Status = "PAID"
	StatusRejected        Status = "REJECTED"
	StatusCancelled       Status = "CANCELLED"
)

// IsTerminal reports whether no further transitions or payments are accepted
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusRejected || s == StatusCancelled
}

// AcceptsPayments reports whether payments may be recorded in this state
func (s Status) AcceptsPayments() bool {
	return s == StatusActive || s == StatusPartiallyPaid
}

// Role identifies which side of a collection a participant occupies
type Role string

const (
	RoleCreditor Role = "CREDITOR"
	RoleDebtor   Role = "DEBTOR"
	RoleNone     Role = ""
)

// Opposite returns the other side
func (r Role) Opposite() Role {
	switch r {
	case RoleCreditor:
		return RoleDebtor
	case RoleDebtor:
		return RoleCreditor
	default:
		return RoleNone
	}
}

// Tolerance is the absolute currency amount under which an outstanding
// balance counts as fully settled
const Tolerance = 0.01

// Collection is a bilateral money obligation. Each slot is either a
// registered account (the *ID field) or a manual label (the *Name field);
// exactly one of the pair is populated per slot.
type Collection struct {
	ID           int64     `json:"id"`
	CreditorID   *int64    `json:"creditor_id,omitempty"`
	CreditorName *string   `json:"creditor_name,omitempty"`
	DebtorID     *int64    `json:"debtor_id,omitempty"`
	DebtorName   *string   `json:"debtor_name,omitempty"`
	Amount       float64   `json:"amount"`
	CurrencyCode string    `json:"currency_code"`
	Description  *string   `json:"description,omitempty"`
	Status       Status    `json:"status"`
	CreatedBy    Role      `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`

	// PaidTotal is derived from the payment rows and populated on reads
	PaidTotal float64 `json:"paid_total"`

	// Populated via JOIN for registered slots
	CreditorUsername *string `json:"creditor_username,omitempty"`
	DebtorUsername   *string `json:"debtor_username,omitempty"`
}

// Outstanding returns the remaining balance
func (c *Collection) Outstanding() float64 {
	return round2(c.Amount - c.PaidTotal)
}

// RoleOf resolves which side the given registered user occupies, or
// RoleNone if they are not a participant. A manual slot never matches.
func (c *Collection) RoleOf(userID int64) Role {
	if c.CreditorID != nil && *c.CreditorID == userID {
		return RoleCreditor
	}
	if c.DebtorID != nil && *c.DebtorID == userID {
		return RoleDebtor
	}
	return RoleNone
}

// SideRegistered reports whether the given side holds a registered account
func (c *Collection) SideRegistered(role Role) bool {
	switch role {
	case RoleCreditor:
		return c.CreditorID != nil
	case RoleDebtor:
		return c.DebtorID != nil
	default:
		return false
	}
}

// SideUserID returns the registered user occupying the given side, if any
func (c *Collection) SideUserID(role Role) *int64 {
	switch role {
	case RoleCreditor:
		return c.CreditorID
	case RoleDebtor:
		return c.DebtorID
	default:
		return nil
	}
}

// SideLabel returns a display name for the given side
func (c *Collection) SideLabel(role Role) string {
	switch role {
	case RoleCreditor:
		if c.CreditorUsername != nil {
			return *c.CreditorUsername
		}
		if c.CreditorName != nil {
			return *c.CreditorName
		}
	case RoleDebtor:
		if c.DebtorUsername != nil {
			return *c.DebtorUsername
		}
		if c.DebtorName != nil {
			return *c.DebtorName
		}
	}
	return "someone"
}

// CreatorUserID returns the registered user who created the record. The
// creator always occupies a registered slot.
func (c *Collection) CreatorUserID() *int64 {
	return c.SideUserID(c.CreatedBy)
}

// StatusForOutstanding derives the post-payment status of a collection
// that is already accepting payments
func StatusForOutstanding(outstanding float64) Status {
	if outstanding <= Tolerance {
		return StatusPaid
	}
	return StatusPartiallyPaid
}

// Payment is a partial settlement event against a collection. The row is
// immutable except for the two allocation back-references, each of which
// is set at most once and never cleared.
type Payment struct {
	ID           int64     `json:"id"`
	CollectionID int64     `json:"collection_id"`
	Amount       float64   `json:"amount"`
	Notes        *string   `json:"notes,omitempty"`
	PaidOn       time.Time `json:"paid_on"`

	CreditorIncomeID *int64 `json:"creditor_income_id,omitempty"`
	DebtorExpenseID  *int64 `json:"debtor_expense_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// AllocatedFor reports whether the given side has already realized this
// payment against a wallet
func (p *Payment) AllocatedFor(role Role) bool {
	switch role {
	case RoleCreditor:
		return p.CreditorIncomeID != nil
	case RoleDebtor:
		return p.DebtorExpenseID != nil
	default:
		return false
	}
}

// round2 rounds to two decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
