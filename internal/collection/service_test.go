package collection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldawsari/tadayun/internal/party"
	"github.com/aldawsari/tadayun/internal/wallet"
)

// fakeWallets backs both the service's pre-flight checks and the fake
// store's balance deltas.
type fakeWallets struct {
	mu      sync.Mutex
	wallets map[int64]*wallet.Wallet
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{wallets: map[int64]*wallet.Wallet{}}
}

func (f *fakeWallets) add(w *wallet.Wallet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[w.ID] = w
}

func (f *fakeWallets) GetByID(ctx context.Context, id int64) (*wallet.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wallets[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (f *fakeWallets) balance(id int64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wallets[id].Balance
}

func (f *fakeWallets) adjust(id int64, delta float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wallets[id].Balance += delta
}

// fakeStore reproduces the repository's atomic contracts in memory: the
// overshoot check runs under the same lock as the insert, and an
// allocation claim only succeeds while the side's back-reference is nil.
type fakeStore struct {
	mu          sync.Mutex
	collections map[int64]*Collection
	payments    map[int64]*Payment
	nextID      int64
	nextMoveID  int64
	wallets     *fakeWallets
}

func newFakeStore(wallets *fakeWallets) *fakeStore {
	return &fakeStore{
		collections: map[int64]*Collection{},
		payments:    map[int64]*Payment{},
		wallets:     wallets,
	}
}

func (f *fakeStore) CreateCollection(ctx context.Context, c *Collection) (*Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	cp := *c
	cp.ID = f.nextID
	cp.CreatedAt = time.Now()
	f.collections[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(id), nil
}

func (f *fakeStore) ListByParticipant(ctx context.Context, userID int64, limit, offset int) ([]*Collection, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Collection
	for id, c := range f.collections {
		if c.RoleOf(userID) != RoleNone {
			out = append(out, f.snapshot(id))
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id int64, from []Status, to Status) (*Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collections[id]
	if !ok {
		return nil, nil
	}
	for _, s := range from {
		if c.Status == s {
			c.Status = to
			return f.snapshot(id), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetPaymentByID(ctx context.Context, id int64) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListPayments(ctx context.Context, collectionID int64) ([]*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Payment
	for _, p := range f.payments {
		if p.CollectionID == collectionID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) RecordPayment(ctx context.Context, collectionID int64, amount float64, payRemainder bool, notes *string, alloc *AllocationSpec) (*Payment, *Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.collections[collectionID]
	if !ok {
		return nil, nil, ErrCollectionNotFound
	}
	if !c.Status.AcceptsPayments() {
		return nil, nil, ErrCollectionClosed
	}

	outstanding := round2(c.Amount - f.paidTotal(collectionID))
	if payRemainder {
		amount = outstanding
	}
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}
	if amount > outstanding+Tolerance {
		return nil, nil, ErrPaymentTooLarge
	}

	f.nextID++
	p := &Payment{
		ID:           f.nextID,
		CollectionID: collectionID,
		Amount:       amount,
		Notes:        notes,
		PaidOn:       time.Now(),
		CreatedAt:    time.Now(),
	}
	f.payments[p.ID] = p
	c.Status = StatusForOutstanding(round2(outstanding - amount))

	if alloc != nil {
		if err := f.applyAllocation(p, alloc); err != nil {
			return nil, nil, err
		}
	}

	cp := *p
	return &cp, f.snapshot(collectionID), nil
}

func (f *fakeStore) AllocatePayment(ctx context.Context, paymentID int64, alloc *AllocationSpec) (*Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, ErrPaymentNotFound
	}
	if err := f.applyAllocation(p, alloc); err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) applyAllocation(p *Payment, alloc *AllocationSpec) error {
	if p.AllocatedFor(alloc.Role) {
		return ErrAlreadyAllocated
	}
	f.nextMoveID++
	moveID := f.nextMoveID
	if alloc.Role == RoleCreditor {
		p.CreditorIncomeID = &moveID
		f.wallets.adjust(alloc.WalletID, p.Amount)
	} else {
		p.DebtorExpenseID = &moveID
		f.wallets.adjust(alloc.WalletID, -p.Amount)
	}
	return nil
}

func (f *fakeStore) paidTotal(collectionID int64) float64 {
	var sum float64
	for _, p := range f.payments {
		if p.CollectionID == collectionID {
			sum += p.Amount
		}
	}
	return sum
}

// snapshot returns a copy with the derived paid total populated, like a
// fresh read would
func (f *fakeStore) snapshot(id int64) *Collection {
	c, ok := f.collections[id]
	if !ok {
		return nil
	}
	cp := *c
	cp.PaidTotal = round2(f.paidTotal(id))
	return &cp
}

type fakeResolver struct {
	ref party.Ref
	err error
}

func (f *fakeResolver) ResolveCounterparty(ctx context.Context, ownerID int64, friendID, userID *int64, name *string) (party.Ref, error) {
	return f.ref, f.err
}

type notified struct {
	event       string
	recipientID int64
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notified
	err   error
}

func (f *fakeNotifier) record(event string, recipientID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notified{event: event, recipientID: recipientID})
	return f.err
}

func (f *fakeNotifier) NotifyCollectionRequested(ctx context.Context, recipientID int64, creatorName string, amount float64, currencyCode string, collectionID int64) error {
	return f.record("requested", recipientID)
}

func (f *fakeNotifier) NotifyCollectionAccepted(ctx context.Context, recipientID int64, responderName string, collectionID int64) error {
	return f.record("accepted", recipientID)
}

func (f *fakeNotifier) NotifyPaymentRecorded(ctx context.Context, recipientID int64, actorName string, amount float64, currencyCode string, collectionID, paymentID int64) error {
	return f.record("payment", recipientID)
}

type fixture struct {
	service  *Service
	store    *fakeStore
	wallets  *fakeWallets
	resolver *fakeResolver
	notifier *fakeNotifier
}

func newFixture() *fixture {
	wallets := newFakeWallets()
	store := newFakeStore(wallets)
	resolver := &fakeResolver{}
	notifier := &fakeNotifier{}
	return &fixture{
		service:  NewService(store, wallets, resolver, notifier),
		store:    store,
		wallets:  wallets,
		resolver: resolver,
		notifier: notifier,
	}
}

// seed inserts an ACTIVE collection directly into the store:
// user 1 creditor, user 2 debtor, created by the creditor.
func (fx *fixture) seed(t *testing.T, amount float64) *Collection {
	t.Helper()
	creditorID, debtorID := int64(1), int64(2)
	c, err := fx.store.CreateCollection(context.Background(), &Collection{
		CreditorID:   &creditorID,
		DebtorID:     &debtorID,
		Amount:       amount,
		CurrencyCode: "SAR",
		Status:       StatusActive,
		CreatedBy:    RoleCreditor,
	})
	require.NoError(t, err)
	return c
}

func (fx *fixture) seedWallet(id, ownerID int64, currency string) {
	fx.wallets.add(&wallet.Wallet{ID: id, UserID: ownerID, Name: "Main", CurrencyCode: currency})
}

func TestCreateCollection(t *testing.T) {
	t.Run("registered counterparty starts pending", func(t *testing.T) {
		fx := newFixture()
		fx.resolver.ref = party.Registered(2)

		c, err := fx.service.Create(context.Background(), 1, &CreateCollectionRequest{
			Role:   "creditor",
			Amount: 150,
		})
		require.NoError(t, err)

		assert.Equal(t, StatusPendingApproval, c.Status)
		require.NotNil(t, c.CreditorID)
		require.NotNil(t, c.DebtorID)
		assert.Equal(t, int64(1), *c.CreditorID)
		assert.Equal(t, int64(2), *c.DebtorID)
		assert.Equal(t, RoleCreditor, c.CreatedBy)
		assert.Equal(t, wallet.DefaultCurrency, c.CurrencyCode)

		require.Len(t, fx.notifier.calls, 1)
		assert.Equal(t, "requested", fx.notifier.calls[0].event)
		assert.Equal(t, int64(2), fx.notifier.calls[0].recipientID)
	})

	t.Run("manual counterparty starts active", func(t *testing.T) {
		fx := newFixture()
		fx.resolver.ref = party.Manual("Abu Khalid")

		c, err := fx.service.Create(context.Background(), 1, &CreateCollectionRequest{
			Role:   "DEBTOR",
			Amount: 80,
		})
		require.NoError(t, err)

		assert.Equal(t, StatusActive, c.Status)
		require.NotNil(t, c.DebtorID)
		assert.Equal(t, int64(1), *c.DebtorID)
		assert.Nil(t, c.CreditorID)
		require.NotNil(t, c.CreditorName)
		assert.Equal(t, "Abu Khalid", *c.CreditorName)
		assert.Empty(t, fx.notifier.calls)
	})

	t.Run("invalid role", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.service.Create(context.Background(), 1, &CreateCollectionRequest{Role: "LENDER", Amount: 10})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.service.Create(context.Background(), 1, &CreateCollectionRequest{Role: "CREDITOR", Amount: 0})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("notification failure does not fail the create", func(t *testing.T) {
		fx := newFixture()
		fx.resolver.ref = party.Registered(2)
		fx.notifier.err = errors.New("smtp down")

		c, err := fx.service.Create(context.Background(), 1, &CreateCollectionRequest{Role: "CREDITOR", Amount: 25})
		require.NoError(t, err)
		assert.Equal(t, StatusPendingApproval, c.Status)
	})
}

func TestRespond(t *testing.T) {
	pending := func(fx *fixture) *Collection {
		c := fx.seed(t, 100)
		c, err := fx.store.UpdateStatus(context.Background(), c.ID, []Status{StatusActive}, StatusPendingApproval)
		require.NoError(t, err)
		return c
	}

	t.Run("accept activates", func(t *testing.T) {
		fx := newFixture()
		c := pending(fx)

		updated, err := fx.service.Respond(context.Background(), c.ID, 2, true)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, updated.Status)

		require.Len(t, fx.notifier.calls, 1)
		assert.Equal(t, "accepted", fx.notifier.calls[0].event)
		assert.Equal(t, int64(1), fx.notifier.calls[0].recipientID)
	})

	t.Run("decline rejects", func(t *testing.T) {
		fx := newFixture()
		c := pending(fx)

		updated, err := fx.service.Respond(context.Background(), c.ID, 2, false)
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, updated.Status)
		assert.Empty(t, fx.notifier.calls)
	})

	t.Run("creator cannot respond to their own request", func(t *testing.T) {
		fx := newFixture()
		c := pending(fx)

		_, err := fx.service.Respond(context.Background(), c.ID, 1, true)
		assert.ErrorIs(t, err, ErrNotCounterparty)
	})

	t.Run("only pending collections accept a response", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		_, err := fx.service.Respond(context.Background(), c.ID, 2, true)
		assert.ErrorIs(t, err, ErrInvalidStatusChange)
	})
}

func TestCancel(t *testing.T) {
	t.Run("creator cancels while pending", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		_, err := fx.store.UpdateStatus(context.Background(), c.ID, []Status{StatusActive}, StatusPendingApproval)
		require.NoError(t, err)

		updated, err := fx.service.Cancel(context.Background(), c.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, updated.Status)
	})

	t.Run("counterparty cannot cancel while pending", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		_, err := fx.store.UpdateStatus(context.Background(), c.ID, []Status{StatusActive}, StatusPendingApproval)
		require.NoError(t, err)

		_, err = fx.service.Cancel(context.Background(), c.ID, 2)
		assert.ErrorIs(t, err, ErrNotCreator)
	})

	t.Run("either participant cancels once active", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		updated, err := fx.service.Cancel(context.Background(), c.ID, 2)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, updated.Status)
	})

	t.Run("terminal collections stay put", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		_, err := fx.store.UpdateStatus(context.Background(), c.ID, []Status{StatusActive}, StatusPaid)
		require.NoError(t, err)

		_, err = fx.service.Cancel(context.Background(), c.ID, 1)
		assert.ErrorIs(t, err, ErrInvalidStatusChange)
	})

	t.Run("strangers cannot cancel", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		_, err := fx.service.Cancel(context.Background(), c.ID, 99)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})
}

func TestRecordPayment(t *testing.T) {
	t.Run("partial payment", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		p, updated, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 60})
		require.NoError(t, err)

		assert.Equal(t, 60.0, p.Amount)
		assert.Equal(t, StatusPartiallyPaid, updated.Status)
		assert.InDelta(t, 40, updated.Outstanding(), 0.0001)

		require.Len(t, fx.notifier.calls, 1)
		assert.Equal(t, "payment", fx.notifier.calls[0].event)
		assert.Equal(t, int64(1), fx.notifier.calls[0].recipientID)
	})

	t.Run("exact remainder settles", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 60})
		require.NoError(t, err)
		_, updated, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 40})
		require.NoError(t, err)

		assert.Equal(t, StatusPaid, updated.Status)
	})

	t.Run("residue within tolerance settles", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 60})
		require.NoError(t, err)
		_, updated, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 39.99})
		require.NoError(t, err)

		assert.Equal(t, StatusPaid, updated.Status)
	})

	t.Run("overshoot is rejected", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 60})
		require.NoError(t, err)
		_, _, err = fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 50})
		assert.ErrorIs(t, err, ErrPaymentTooLarge)
	})

	t.Run("closed collection rejects payments", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		_, err := fx.store.UpdateStatus(context.Background(), c.ID, []Status{StatusActive}, StatusCancelled)
		require.NoError(t, err)

		_, _, err = fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 10})
		assert.ErrorIs(t, err, ErrCollectionClosed)
	})

	t.Run("strangers cannot pay", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 99, &RecordPaymentRequest{Amount: 10})
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: -5})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestMarkFullyPaid(t *testing.T) {
	fx := newFixture()
	c := fx.seed(t, 100)

	_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 35})
	require.NoError(t, err)

	p, updated, err := fx.service.MarkFullyPaid(context.Background(), c.ID, 1, &SettleRequest{})
	require.NoError(t, err)

	assert.Equal(t, 65.0, p.Amount)
	assert.Equal(t, StatusPaid, updated.Status)
	assert.InDelta(t, 0, updated.Outstanding(), 0.0001)
}

func TestRecordPaymentWithWallet(t *testing.T) {
	t.Run("creditor side realizes inline", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		fx.seedWallet(10, 1, "SAR")

		walletID := int64(10)
		p, _, err := fx.service.RecordPayment(context.Background(), c.ID, 1, &RecordPaymentRequest{Amount: 60, WalletID: &walletID})
		require.NoError(t, err)

		assert.NotNil(t, p.CreditorIncomeID)
		assert.Nil(t, p.DebtorExpenseID)
		assert.InDelta(t, 60, fx.wallets.balance(10), 0.0001)
	})

	t.Run("debtor side realizes inline", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		fx.seedWallet(20, 2, "SAR")

		walletID := int64(20)
		p, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 60, WalletID: &walletID})
		require.NoError(t, err)

		assert.NotNil(t, p.DebtorExpenseID)
		assert.Nil(t, p.CreditorIncomeID)
		assert.InDelta(t, -60, fx.wallets.balance(20), 0.0001)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)

		walletID := int64(404)
		_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 1, &RecordPaymentRequest{Amount: 10, WalletID: &walletID})
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})

	t.Run("someone else's wallet", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		fx.seedWallet(10, 2, "SAR")

		walletID := int64(10)
		_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 1, &RecordPaymentRequest{Amount: 10, WalletID: &walletID})
		assert.ErrorIs(t, err, ErrNotWalletOwner)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		fx.seedWallet(10, 1, "USD")

		walletID := int64(10)
		_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 1, &RecordPaymentRequest{Amount: 10, WalletID: &walletID})
		assert.ErrorIs(t, err, ErrCurrencyMismatch)
	})
}

func TestAllocate(t *testing.T) {
	t.Run("both sides allocate independently", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		fx.seedWallet(10, 1, "SAR")
		fx.seedWallet(20, 2, "SAR")

		p, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 60})
		require.NoError(t, err)

		p1, err := fx.service.Allocate(context.Background(), p.ID, 1, 10)
		require.NoError(t, err)
		assert.NotNil(t, p1.CreditorIncomeID)

		p2, err := fx.service.Allocate(context.Background(), p.ID, 2, 20)
		require.NoError(t, err)
		assert.NotNil(t, p2.CreditorIncomeID)
		assert.NotNil(t, p2.DebtorExpenseID)

		assert.InDelta(t, 60, fx.wallets.balance(10), 0.0001)
		assert.InDelta(t, -60, fx.wallets.balance(20), 0.0001)
	})

	t.Run("a side allocates at most once", func(t *testing.T) {
		fx := newFixture()
		c := fx.seed(t, 100)
		fx.seedWallet(10, 1, "SAR")
		fx.seedWallet(11, 1, "SAR")

		p, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 60})
		require.NoError(t, err)

		_, err = fx.service.Allocate(context.Background(), p.ID, 1, 10)
		require.NoError(t, err)

		_, err = fx.service.Allocate(context.Background(), p.ID, 1, 11)
		assert.ErrorIs(t, err, ErrAlreadyAllocated)
		assert.InDelta(t, 60, fx.wallets.balance(10), 0.0001)
		assert.InDelta(t, 0, fx.wallets.balance(11), 0.0001)
	})

	t.Run("manual side is never allocatable", func(t *testing.T) {
		fx := newFixture()
		creditorID := int64(1)
		debtorName := "Abu Khalid"
		c, err := fx.store.CreateCollection(context.Background(), &Collection{
			CreditorID:   &creditorID,
			DebtorName:   &debtorName,
			Amount:       100,
			CurrencyCode: "SAR",
			Status:       StatusActive,
			CreatedBy:    RoleCreditor,
		})
		require.NoError(t, err)

		p, _, err := fx.service.RecordPayment(context.Background(), c.ID, 1, &RecordPaymentRequest{Amount: 40})
		require.NoError(t, err)

		// Nobody occupies the debtor slot, so no caller can claim it
		fx.seedWallet(30, 3, "SAR")
		_, err = fx.service.Allocate(context.Background(), p.ID, 3, 30)
		assert.ErrorIs(t, err, ErrNotParticipant)
	})

	t.Run("unknown payment", func(t *testing.T) {
		fx := newFixture()
		_, err := fx.service.Allocate(context.Background(), 404, 1, 10)
		assert.ErrorIs(t, err, ErrPaymentNotFound)
	})
}

func TestConcurrentPayments(t *testing.T) {
	fx := newFixture()
	c := fx.seed(t, 100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 15})
		}()
	}
	wg.Wait()

	updated, err := fx.service.GetByID(context.Background(), 1, c.ID)
	require.NoError(t, err)
	assert.LessOrEqual(t, updated.PaidTotal, c.Amount+Tolerance)
	assert.Equal(t, StatusPartiallyPaid, updated.Status)
}

func TestListPayments(t *testing.T) {
	fx := newFixture()
	c := fx.seed(t, 100)

	_, _, err := fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 10})
	require.NoError(t, err)
	_, _, err = fx.service.RecordPayment(context.Background(), c.ID, 2, &RecordPaymentRequest{Amount: 20})
	require.NoError(t, err)

	payments, err := fx.service.ListPayments(context.Background(), c.ID, 1)
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	_, err = fx.service.ListPayments(context.Background(), c.ID, 99)
	assert.ErrorIs(t, err, ErrNotParticipant)
}
