package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aldawsari/tadayun/internal/party"
	"github.com/aldawsari/tadayun/internal/wallet"
)

// Common errors
var (
	ErrCollectionNotFound  = errors.New("collection not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidRole         = errors.New("role must be CREDITOR or DEBTOR")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrNotCounterparty     = errors.New("only the counterparty can respond to this collection")
	ErrNotCreator          = errors.New("only the creator can cancel a pending collection")
	ErrNotParticipant      = errors.New("not a participant of this collection")
	ErrInvalidStatusChange = errors.New("invalid status change")
	ErrCollectionClosed    = errors.New("collection does not accept payments in its current state")
	ErrPaymentTooLarge     = errors.New("payment exceeds the outstanding balance")
	ErrAlreadyAllocated    = errors.New("this side of the payment is already allocated")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrNotWalletOwner      = errors.New("not the owner of this wallet")
	ErrCurrencyMismatch    = errors.New("wallet currency does not match the collection currency")
)

// AllocationSpec describes one side's realization of a payment: which
// wallet receives the balance delta and the movement row to create.
type AllocationSpec struct {
	Role        Role
	ActorID     int64
	WalletID    int64
	Description string
	Reference   string
	Date        time.Time
}

// Store is the persistence contract the service drives. Implemented by
// Repository. RecordPayment and AllocatePayment carry the atomic
// contracts: the outstanding-balance check is serialized against
// concurrent payments, and an allocation claim only succeeds while the
// side's back-reference is still null.
type Store interface {
	CreateCollection(ctx context.Context, c *Collection) (*Collection, error)
	GetByID(ctx context.Context, id int64) (*Collection, error)
	ListByParticipant(ctx context.Context, userID int64, limit, offset int) ([]*Collection, int, error)
	// UpdateStatus transitions id from one of the given statuses to the
	// target; it returns nil when no row matched (raced or wrong state).
	UpdateStatus(ctx context.Context, id int64, from []Status, to Status) (*Collection, error)
	GetPaymentByID(ctx context.Context, id int64) (*Payment, error)
	ListPayments(ctx context.Context, collectionID int64) ([]*Payment, error)
	// RecordPayment appends a payment, recomputes the status and, when
	// alloc is non-nil, realizes the actor's side, all in one atomic unit.
	// payRemainder ignores amount and pays exactly the outstanding balance.
	RecordPayment(ctx context.Context, collectionID int64, amount float64, payRemainder bool, notes *string, alloc *AllocationSpec) (*Payment, *Collection, error)
	// AllocatePayment realizes one side of an existing payment: movement
	// row, back-reference claim and wallet delta commit together or not
	// at all.
	AllocatePayment(ctx context.Context, paymentID int64, alloc *AllocationSpec) (*Payment, error)
}

// WalletFinder is the slice of the wallet repository the service needs
// for pre-flight wallet checks (ownership, currency). The Tx-scoped
// ledger methods are consumed by Repository inside its transactions.
type WalletFinder interface {
	GetByID(ctx context.Context, id int64) (*wallet.Wallet, error)
}

// CounterpartyResolver resolves a raw counterparty reference into a party
// slot. Implemented by the party service.
type CounterpartyResolver interface {
	ResolveCounterparty(ctx context.Context, ownerID int64, friendID, userID *int64, name *string) (party.Ref, error)
}

// Notifier dispatches side-channel notifications. Failures are logged by
// the caller, never propagated.
type Notifier interface {
	NotifyCollectionRequested(ctx context.Context, recipientID int64, creatorName string, amount float64, currencyCode string, collectionID int64) error
	NotifyCollectionAccepted(ctx context.Context, recipientID int64, responderName string, collectionID int64) error
	NotifyPaymentRecorded(ctx context.Context, recipientID int64, actorName string, amount float64, currencyCode string, collectionID, paymentID int64) error
}

// Service handles collection business logic: the lifecycle state machine,
// the payment ledger and the dual-sided allocation engine.
type Service struct {
	store    Store
	ledger   WalletFinder
	resolver CounterpartyResolver
	notifier Notifier
}

// NewService creates a new collection service
func NewService(store Store, ledger WalletFinder, resolver CounterpartyResolver, notifier Notifier) *Service {
	return &Service{
		store:    store,
		ledger:   ledger,
		resolver: resolver,
		notifier: notifier,
	}
}

// Create creates a new collection with the caller in the given role. A
// registered counterparty must approve it; a manual counterparty cannot,
// so the collection starts ACTIVE.
func (s *Service) Create(ctx context.Context, actorID int64, req *CreateCollectionRequest) (*Collection, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if role != RoleCreditor && role != RoleDebtor {
		return nil, ErrInvalidRole
	}
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	ref, err := s.resolver.ResolveCounterparty(ctx, actorID, req.CounterpartyFriendID, req.CounterpartyUserID, req.CounterpartyName)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.CurrencyCode))
	if currency == "" {
		currency = wallet.DefaultCurrency
	}

	c := &Collection{
		Amount:       round2(req.Amount),
		CurrencyCode: currency,
		Description:  req.Description,
		CreatedBy:    role,
	}
	if role == RoleCreditor {
		c.CreditorID = &actorID
		c.DebtorID, c.DebtorName = ref.UserID, ref.Name
	} else {
		c.DebtorID = &actorID
		c.CreditorID, c.CreditorName = ref.UserID, ref.Name
	}

	if ref.IsRegistered() {
		c.Status = StatusPendingApproval
	} else {
		c.Status = StatusActive
	}

	created, err := s.store.CreateCollection(ctx, c)
	if err != nil {
		return nil, err
	}

	if ref.IsRegistered() {
		s.dispatch(ctx, "collection requested", func(ctx context.Context) error {
			return s.notifier.NotifyCollectionRequested(ctx, *ref.UserID, created.SideLabel(role), created.Amount, created.CurrencyCode, created.ID)
		})
	}

	return created, nil
}

// GetByID retrieves a collection the caller participates in
func (s *Service) GetByID(ctx context.Context, actorID, id int64) (*Collection, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCollectionNotFound
	}
	if c.RoleOf(actorID) == RoleNone {
		return nil, ErrNotParticipant
	}
	return c, nil
}

// List retrieves all collections the caller participates in
func (s *Service) List(ctx context.Context, actorID int64, page, perPage int) ([]*Collection, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByParticipant(ctx, actorID, perPage, offset)
}

// Respond lets the registered counterparty accept or decline a pending
// collection
func (s *Service) Respond(ctx context.Context, collectionID, actorID int64, accept bool) (*Collection, error) {
	c, err := s.store.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCollectionNotFound
	}
	if c.Status != StatusPendingApproval {
		return nil, ErrInvalidStatusChange
	}

	counterpartID := c.SideUserID(c.CreatedBy.Opposite())
	if counterpartID == nil || *counterpartID != actorID {
		return nil, ErrNotCounterparty
	}

	target := StatusRejected
	if accept {
		target = StatusActive
	}

	updated, err := s.store.UpdateStatus(ctx, collectionID, []Status{StatusPendingApproval}, target)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrInvalidStatusChange
	}

	if accept {
		if creatorID := c.CreatorUserID(); creatorID != nil {
			s.dispatch(ctx, "collection accepted", func(ctx context.Context) error {
				return s.notifier.NotifyCollectionAccepted(ctx, *creatorID, c.SideLabel(c.CreatedBy.Opposite()), c.ID)
			})
		}
	}

	return updated, nil
}

// Cancel cancels a collection. While pending approval only the creator
// may cancel; once active either registered participant may. Recorded
// payments and their allocations stay on the books.
func (s *Service) Cancel(ctx context.Context, collectionID, actorID int64) (*Collection, error) {
	c, err := s.store.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCollectionNotFound
	}
	if c.RoleOf(actorID) == RoleNone {
		return nil, ErrNotParticipant
	}
	if c.Status.IsTerminal() {
		return nil, ErrInvalidStatusChange
	}

	if c.Status == StatusPendingApproval {
		creatorID := c.CreatorUserID()
		if creatorID == nil || *creatorID != actorID {
			return nil, ErrNotCreator
		}
	}

	updated, err := s.store.UpdateStatus(ctx, collectionID, []Status{StatusPendingApproval, StatusActive, StatusPartiallyPaid}, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrInvalidStatusChange
	}

	return updated, nil
}

// RecordPayment appends a partial payment to an active collection. When
// walletID is given the caller's own side is realized against that wallet
// in the same atomic unit.
func (s *Service) RecordPayment(ctx context.Context, collectionID, actorID int64, req *RecordPaymentRequest) (*Payment, *Collection, error) {
	if req.Amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	return s.recordPayment(ctx, collectionID, actorID, round2(req.Amount), false, req.Notes, req.WalletID)
}

// MarkFullyPaid records a payment for exactly the outstanding balance,
// transitioning the collection to PAID
func (s *Service) MarkFullyPaid(ctx context.Context, collectionID, actorID int64, req *SettleRequest) (*Payment, *Collection, error) {
	return s.recordPayment(ctx, collectionID, actorID, 0, true, req.Notes, req.WalletID)
}

func (s *Service) recordPayment(ctx context.Context, collectionID, actorID int64, amount float64, payRemainder bool, notes *string, walletID *int64) (*Payment, *Collection, error) {
	c, err := s.store.GetByID(ctx, collectionID)
	if err != nil {
		return nil, nil, err
	}
	if c == nil {
		return nil, nil, ErrCollectionNotFound
	}

	role := c.RoleOf(actorID)
	if role == RoleNone {
		return nil, nil, ErrNotParticipant
	}
	if !c.Status.AcceptsPayments() {
		return nil, nil, ErrCollectionClosed
	}

	var alloc *AllocationSpec
	if walletID != nil {
		alloc, err = s.buildAllocation(ctx, c, role, actorID, *walletID)
		if err != nil {
			return nil, nil, err
		}
	}

	payment, updated, err := s.store.RecordPayment(ctx, collectionID, amount, payRemainder, notes, alloc)
	if err != nil {
		return nil, nil, err
	}

	if otherID := updated.SideUserID(role.Opposite()); otherID != nil {
		s.dispatch(ctx, "payment recorded", func(ctx context.Context) error {
			return s.notifier.NotifyPaymentRecorded(ctx, *otherID, updated.SideLabel(role), payment.Amount, updated.CurrencyCode, updated.ID, payment.ID)
		})
	}

	return payment, updated, nil
}

// Allocate realizes the caller's side of a recorded payment against one
// of their wallets. At most one allocation ever succeeds per side; the
// two sides are fully independent.
func (s *Service) Allocate(ctx context.Context, paymentID, actorID, walletID int64) (*Payment, error) {
	p, err := s.store.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}

	c, err := s.store.GetByID(ctx, p.CollectionID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCollectionNotFound
	}

	role := c.RoleOf(actorID)
	if role == RoleNone {
		return nil, ErrNotParticipant
	}
	if p.AllocatedFor(role) {
		return nil, ErrAlreadyAllocated
	}

	alloc, err := s.buildAllocation(ctx, c, role, actorID, walletID)
	if err != nil {
		return nil, err
	}

	return s.store.AllocatePayment(ctx, paymentID, alloc)
}

// ListPayments retrieves the payment ledger of a collection the caller
// participates in
func (s *Service) ListPayments(ctx context.Context, collectionID, actorID int64) ([]*Payment, error) {
	if _, err := s.GetByID(ctx, actorID, collectionID); err != nil {
		return nil, err
	}
	return s.store.ListPayments(ctx, collectionID)
}

// buildAllocation validates the wallet against the actor and the
// collection and assembles the movement to be created
func (s *Service) buildAllocation(ctx context.Context, c *Collection, role Role, actorID, walletID int64) (*AllocationSpec, error) {
	w, err := s.ledger.GetByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWalletNotFound
	}
	if w.UserID != actorID {
		return nil, ErrNotWalletOwner
	}
	if w.CurrencyCode != c.CurrencyCode {
		return nil, ErrCurrencyMismatch
	}

	var description string
	if role == RoleCreditor {
		description = fmt.Sprintf("Collection payment from %s", c.SideLabel(RoleDebtor))
	} else {
		description = fmt.Sprintf("Collection payment to %s", c.SideLabel(RoleCreditor))
	}

	return &AllocationSpec{
		Role:        role,
		ActorID:     actorID,
		WalletID:    walletID,
		Description: description,
		Reference:   wallet.NewReference(),
		Date:        time.Now().UTC(),
	}, nil
}

// dispatch runs a notification call and logs failures without surfacing
// them: the primary operation has already committed
func (s *Service) dispatch(ctx context.Context, event string, fn func(ctx context.Context) error) {
	if err := fn(ctx); err != nil {
		slog.WarnContext(ctx, "notification dispatch failed", "event", event, "error", err)
	}
}
