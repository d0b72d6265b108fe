package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPendingApproval.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.False(t, StatusPartiallyPaid.IsTerminal())
	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}

func TestStatusAcceptsPayments(t *testing.T) {
	assert.True(t, StatusActive.AcceptsPayments())
	assert.True(t, StatusPartiallyPaid.AcceptsPayments())
	assert.False(t, StatusPendingApproval.AcceptsPayments())
	assert.False(t, StatusPaid.AcceptsPayments())
	assert.False(t, StatusRejected.AcceptsPayments())
	assert.False(t, StatusCancelled.AcceptsPayments())
}

func TestRoleOpposite(t *testing.T) {
	assert.Equal(t, RoleDebtor, RoleCreditor.Opposite())
	assert.Equal(t, RoleCreditor, RoleDebtor.Opposite())
	assert.Equal(t, RoleNone, RoleNone.Opposite())
}

func TestCollectionOutstanding(t *testing.T) {
	c := &Collection{Amount: 100, PaidTotal: 33.335}
	assert.InDelta(t, 66.67, c.Outstanding(), 0.0001)

	c = &Collection{Amount: 0.3, PaidTotal: 0.1}
	assert.InDelta(t, 0.2, c.Outstanding(), 0.0001)
}

func TestCollectionRoleOf(t *testing.T) {
	creditorID := int64(1)
	debtorName := "Abu Khalid"
	c := &Collection{CreditorID: &creditorID, DebtorName: &debtorName}

	assert.Equal(t, RoleCreditor, c.RoleOf(1))
	// The manual slot never matches a registered user
	assert.Equal(t, RoleNone, c.RoleOf(2))
}

func TestCollectionSideLabel(t *testing.T) {
	username := "khalid"
	manual := "Abu Khalid"
	c := &Collection{CreditorUsername: &username, DebtorName: &manual}

	assert.Equal(t, "khalid", c.SideLabel(RoleCreditor))
	assert.Equal(t, "Abu Khalid", c.SideLabel(RoleDebtor))
	assert.Equal(t, "someone", (&Collection{}).SideLabel(RoleCreditor))
}

func TestCollectionCreatorUserID(t *testing.T) {
	creditorID, debtorID := int64(1), int64(2)
	c := &Collection{CreditorID: &creditorID, DebtorID: &debtorID, CreatedBy: RoleDebtor}

	got := c.CreatorUserID()
	assert.NotNil(t, got)
	assert.Equal(t, int64(2), *got)
}

func TestStatusForOutstanding(t *testing.T) {
	assert.Equal(t, StatusPaid, StatusForOutstanding(0))
	assert.Equal(t, StatusPaid, StatusForOutstanding(0.005))
	assert.Equal(t, StatusPaid, StatusForOutstanding(Tolerance))
	assert.Equal(t, StatusPartiallyPaid, StatusForOutstanding(0.02))
	assert.Equal(t, StatusPartiallyPaid, StatusForOutstanding(40))
}

func TestPaymentAllocatedFor(t *testing.T) {
	incomeID := int64(7)
	p := &Payment{CreditorIncomeID: &incomeID}

	assert.True(t, p.AllocatedFor(RoleCreditor))
	assert.False(t, p.AllocatedFor(RoleDebtor))
	assert.False(t, p.AllocatedFor(RoleNone))
}
