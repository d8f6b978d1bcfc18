package library

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverdueIsDerivedNotStored(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	txn, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	overdue, err := mgr.Reports.OverdueTransactions()
	require.NoError(t, err)
	assert.Empty(t, overdue, "not overdue before the due date")

	clock.T = txn.DueDate.AddDate(0, 0, 1)
	overdue, err = mgr.Reports.OverdueTransactions()
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, StatusOverdue, overdue[0].Status, "the report labels it Overdue")

	stored, err := mgr.Reports.TransactionsForMember(member.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, StatusActive, stored[0].Status, "the stored status stays Active until return")

	active, err := mgr.Reports.ActiveTransactions()
	require.NoError(t, err)
	assert.Len(t, active, 1, "an overdue loan is still an active loan")
}

func TestTransactionHistoryOrdering(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	first, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)
	clock.T = clock.T.AddDate(0, 0, 3)
	_, _, err = mgr.Engine.Return(first.ID, DamageNone)
	require.NoError(t, err)

	clock.T = clock.T.AddDate(0, 0, 2)
	second, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	history, err := mgr.Reports.TransactionsForMember(member.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID, "newest first")
	assert.Equal(t, first.ID, history[1].ID)

	byBook, err := mgr.Reports.TransactionsForBook(book.ID)
	require.NoError(t, err)
	require.Len(t, byBook, 2)
	assert.Equal(t, second.ID, byBook[0].ID)
}

func TestProfileSplitsActiveAndHistory(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	first, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)
	clock.T = clock.T.AddDate(0, 0, 3)
	_, _, err = mgr.Engine.Return(first.ID, DamageNone)
	require.NoError(t, err)

	second, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	profile, err := mgr.Reports.Profile(member.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, profile.Member.ID)
	require.Len(t, profile.Active, 1)
	assert.Equal(t, second.ID, profile.Active[0].ID)
	require.Len(t, profile.History, 1)
	assert.Equal(t, first.ID, profile.History[0].ID)

	_, err = mgr.Reports.Profile("mbr-ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStatsAggregation(t *testing.T) {
	mgr, clock := newTestManager(t)
	first := addTestBook(t, mgr, "Atomic Habits", 500)
	second := addTestBook(t, mgr, "Sapiens", 600)
	alice := registerTestMember(t, mgr, "Alice", "alice@test.com")
	bob := registerTestMember(t, mgr, "Bob", "bob@test.com")

	// Alice borrows and returns a day late: fine 1050, copy back.
	txn, err := mgr.Engine.Borrow(first.ID, alice.ID, BorrowIndividual, nil)
	require.NoError(t, err)
	clock.T = txn.DueDate.AddDate(0, 0, 1)
	_, _, err = mgr.Engine.Return(txn.ID, DamageNone)
	require.NoError(t, err)

	// Bob borrows and keeps the book past due.
	bobTxn, err := mgr.Engine.Borrow(second.ID, bob.ID, BorrowIndividual, nil)
	require.NoError(t, err)
	clock.T = bobTxn.DueDate.Add(time.Hour)

	stats, err := mgr.Reports.Stats()
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalCopies)
	assert.Equal(t, 5, stats.AvailableCopies)
	assert.Equal(t, 1, stats.BorrowedCopies)
	assert.Equal(t, 2, stats.MemberCount)
	assert.Equal(t, 1, stats.ActiveCount)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.Equal(t, 1050, stats.TotalFines)
}
