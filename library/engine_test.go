package library

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBorrowCreatesActiveTransaction(t *testing.T) {
	mgr, _ := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	txn, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, txn.Status)
	assert.Equal(t, book.Title, txn.BookName)
	assert.Equal(t, member.FullName, txn.BorrowerName)
	assert.Equal(t, testEpoch, txn.FromDate)
	assert.Equal(t, testEpoch.Add(30*24*time.Hour), txn.DueDate)
	assert.Nil(t, txn.ReturnDate)
	assert.Zero(t, txn.Fine)

	after, err := mgr.Catalog.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.AvailableCopies)
}

func TestBorrowGroupUsesLongTerm(t *testing.T) {
	mgr, _ := newTestManager(t)
	book := addTestBook(t, mgr, "Sapiens", 600)
	alice := registerTestMember(t, mgr, "Alice", "alice@test.com")
	bob := registerTestMember(t, mgr, "Bob", "bob@test.com")
	carol := registerTestMember(t, mgr, "Carol", "carol@test.com")

	txn, err := mgr.Engine.Borrow(book.ID, alice.ID, BorrowGroup, []string{bob.ID, carol.ID})
	require.NoError(t, err)

	assert.Equal(t, testEpoch.Add(180*24*time.Hour), txn.DueDate)
	assert.Equal(t, []string{alice.ID, bob.ID, carol.ID}, txn.GroupMembers)

	// The stored row round-trips the group list.
	stored, err := mgr.Reports.TransactionsForMember(alice.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, txn.GroupMembers, stored[0].GroupMembers)
}

func TestBorrowGroupSizeValidation(t *testing.T) {
	mgr, _ := newTestManager(t)
	book := addTestBook(t, mgr, "Sapiens", 600)
	alice := registerTestMember(t, mgr, "Alice", "alice@test.com")
	bob := registerTestMember(t, mgr, "Bob", "bob@test.com")

	// One extra member makes a group of two; the minimum is three.
	_, err := mgr.Engine.Borrow(book.ID, alice.ID, BorrowGroup, []string{bob.ID})
	assert.ErrorIs(t, err, ErrValidation)

	// Six extras make a group of seven; the maximum is six.
	ids := make([]string, 6)
	for i := range ids {
		m := registerTestMember(t, mgr, fmt.Sprintf("M%d", i), fmt.Sprintf("m%d@test.com", i))
		ids[i] = m.ID
	}
	_, err = mgr.Engine.Borrow(book.ID, alice.ID, BorrowGroup, ids)
	assert.ErrorIs(t, err, ErrValidation)

	// Nothing was mutated by the failed attempts.
	after, err := mgr.Catalog.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.AvailableCopies)
}

func TestBorrowGroupRejectsUnknownAndDuplicateMembers(t *testing.T) {
	mgr, _ := newTestManager(t)
	book := addTestBook(t, mgr, "Sapiens", 600)
	alice := registerTestMember(t, mgr, "Alice", "alice@test.com")
	bob := registerTestMember(t, mgr, "Bob", "bob@test.com")

	_, err := mgr.Engine.Borrow(book.ID, alice.ID, BorrowGroup, []string{bob.ID, "mbr-ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = mgr.Engine.Borrow(book.ID, alice.ID, BorrowGroup, []string{bob.ID, bob.ID})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = mgr.Engine.Borrow(book.ID, alice.ID, BorrowGroup, []string{bob.ID, alice.ID})
	assert.ErrorIs(t, err, ErrValidation, "borrower listed as their own group member")
}

func TestBorrowSecondActiveRejected(t *testing.T) {
	mgr, _ := newTestManager(t)
	first := addTestBook(t, mgr, "Atomic Habits", 500)
	second := addTestBook(t, mgr, "Sapiens", 600)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	_, err := mgr.Engine.Borrow(first.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	_, err = mgr.Engine.Borrow(second.ID, member.ID, BorrowIndividual, nil)
	assert.ErrorIs(t, err, ErrConflict)

	// The second book's availability is untouched by the failure.
	after, err := mgr.Catalog.GetBook(second.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.AvailableCopies)
}

func TestBorrowNoCopiesAvailable(t *testing.T) {
	mgr, _ := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)

	for i := 0; i < 3; i++ {
		m := registerTestMember(t, mgr, fmt.Sprintf("M%d", i), fmt.Sprintf("m%d@test.com", i))
		_, err := mgr.Engine.Borrow(book.ID, m.ID, BorrowIndividual, nil)
		require.NoError(t, err)
	}

	late := registerTestMember(t, mgr, "Late", "late@test.com")
	_, err := mgr.Engine.Borrow(book.ID, late.ID, BorrowIndividual, nil)
	assert.ErrorIs(t, err, ErrValidation)

	after, err := mgr.Catalog.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.AvailableCopies)
}

func TestBorrowUnknownBookOrMember(t *testing.T) {
	mgr, _ := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	_, err := mgr.Engine.Borrow("book-ghost", member.ID, BorrowIndividual, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = mgr.Engine.Borrow(book.ID, "mbr-ghost", BorrowIndividual, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnOnDueDateExactly(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	txn, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	// Returning at the exact due instant is on time.
	clock.T = txn.DueDate
	returned, fine, err := mgr.Engine.Return(txn.ID, DamageNone)
	require.NoError(t, err)

	assert.Equal(t, 0, fine)
	assert.Equal(t, StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, txn.DueDate, *returned.ReturnDate)

	after, err := mgr.Catalog.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.AvailableCopies)

	m, err := mgr.Membership.GetMember(member.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, m.Points, "no penalty for an on-time, undamaged return")
}

func TestReturnOneDayLateIsMissing(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	txn, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	clock.T = txn.DueDate.AddDate(0, 0, 1)
	returned, fine, err := mgr.Engine.Return(txn.ID, DamageNone)
	require.NoError(t, err)

	// 200% of price plus one day of late fee.
	assert.Equal(t, 1050, fine)
	assert.Equal(t, StatusMissing, returned.Status)

	m, err := mgr.Membership.GetMember(member.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Points, "105 point penalty clamps at zero")

	after, err := mgr.Catalog.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.AvailableCopies, "the copy returns to the shelf even when fined as missing")
}

func TestReturnEarlyWithLargeDamage(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	txn, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	clock.T = txn.FromDate.AddDate(0, 0, 10)
	returned, fine, err := mgr.Engine.Return(txn.ID, DamageLarge)
	require.NoError(t, err)

	assert.Equal(t, 250, fine)
	assert.Equal(t, StatusReturned, returned.Status)
	require.NotNil(t, returned.DamageType)
	assert.Equal(t, DamageLarge, *returned.DamageType)

	m, err := mgr.Membership.GetMember(member.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, m.Points)
}

func TestReturnTwiceFails(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	txn, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	clock.T = txn.DueDate
	_, _, err = mgr.Engine.Return(txn.ID, DamageNone)
	require.NoError(t, err)

	_, _, err = mgr.Engine.Return(txn.ID, DamageNone)
	assert.ErrorIs(t, err, ErrInvalidState)

	// No double availability or points adjustment.
	after, err := mgr.Catalog.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, after.AvailableCopies)
	m, err := mgr.Membership.GetMember(member.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, m.Points)
}

func TestReturnUnknownTransaction(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, _, err := mgr.Engine.Return("txn-ghost", DamageNone)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReturnRejectsUnknownDamage(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, _, err := mgr.Engine.Return("txn-any", DamageType("Shredded"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestBorrowAgainAfterReturn(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	txn, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	clock.T = clock.T.AddDate(0, 0, 5)
	_, _, err = mgr.Engine.Return(txn.ID, DamageNone)
	require.NoError(t, err)

	// The slate is clean once the loan closes.
	_, err = mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)
}

func TestConcurrentBorrowsRespectInventory(t *testing.T) {
	mgr, _ := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)

	members := make([]*Member, 5)
	for i := range members {
		members[i] = registerTestMember(t, mgr, fmt.Sprintf("M%d", i), fmt.Sprintf("m%d@test.com", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, len(members))
	for i, m := range members {
		wg.Add(1)
		go func(i int, memberID string) {
			defer wg.Done()
			_, errs[i] = mgr.Engine.Borrow(book.ID, memberID, BorrowIndividual, nil)
		}(i, m.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrValidation)
		}
	}
	assert.Equal(t, 3, succeeded, "exactly one borrow per copy")

	after, err := mgr.Catalog.GetBook(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.AvailableCopies)
}

func TestConcurrentBorrowsSameMember(t *testing.T) {
	mgr, _ := newTestManager(t)
	first := addTestBook(t, mgr, "Atomic Habits", 500)
	second := addTestBook(t, mgr, "Sapiens", 600)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, bookID := range []string{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, bookID string) {
			defer wg.Done()
			_, errs[i] = mgr.Engine.Borrow(bookID, member.ID, BorrowIndividual, nil)
		}(i, bookID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrConflict)
		}
	}
	assert.Equal(t, 1, succeeded, "at most one active borrow per member")
}
