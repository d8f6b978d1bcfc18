package library

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

// newTestManager wires a manager around a throwaway database, a fixed
// clock, and a silent logger. Tests advance time through the returned
// clock.
func newTestManager(t *testing.T) (*LibraryManager, *FixedClock) {
	t.Helper()
	clock := &FixedClock{T: testEpoch}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr, err := NewLibraryManager(filepath.Join(t.TempDir(), "lib.db"), clock, logger)
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr, clock
}

func addTestBook(t *testing.T, mgr *LibraryManager, title string, price int) *Book {
	t.Helper()
	book, err := mgr.Catalog.AddBook(BookSpec{
		Title: title, Author: "Test Author", Category: "Fiction", Price: price,
	})
	require.NoError(t, err)
	return book
}

func registerTestMember(t *testing.T, mgr *LibraryManager, name, email string) *Member {
	t.Helper()
	member, err := mgr.Membership.Register(MemberSpec{
		FullName: name, Email: email, MemberType: MemberStudent,
		AdmissionID: "ADM-" + name, MobileNumber: "1234567890", Password: "secret123",
	})
	require.NoError(t, err)
	return member
}

func TestAddBookDefaults(t *testing.T) {
	mgr, _ := newTestManager(t)

	book := addTestBook(t, mgr, "Atomic Habits", 500)
	assert.Equal(t, 3, book.TotalCopies)
	assert.Equal(t, 3, book.AvailableCopies)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, testEpoch, book.CreatedAt)
}

func TestAddBookValidation(t *testing.T) {
	mgr, _ := newTestManager(t)

	testCases := []struct {
		name string
		spec BookSpec
	}{
		{"missing title", BookSpec{Author: "A", Category: "C", Price: 100}},
		{"missing author", BookSpec{Title: "T", Category: "C", Price: 100}},
		{"missing category", BookSpec{Title: "T", Author: "A", Price: 100}},
		{"zero price", BookSpec{Title: "T", Author: "A", Category: "C"}},
		{"negative price", BookSpec{Title: "T", Author: "A", Category: "C", Price: -5}},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mgr.Catalog.AddBook(tt.spec)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdateBookKeepsCopyCounts(t *testing.T) {
	mgr, clock := newTestManager(t)
	book := addTestBook(t, mgr, "Old Title", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	_, err := mgr.Engine.Borrow(book.ID, member.ID, BorrowIndividual, nil)
	require.NoError(t, err)

	clock.T = clock.T.Add(time.Hour)
	updated, err := mgr.Catalog.UpdateBook(book.ID, BookSpec{
		Title: "New Title", Author: "New Author", Category: "History", Price: 600,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, 2, updated.AvailableCopies, "copy counts are owned by the transaction flow")
	assert.Equal(t, 3, updated.TotalCopies)
}

func TestFeedbackLifecycle(t *testing.T) {
	mgr, _ := newTestManager(t)
	book := addTestBook(t, mgr, "Atomic Habits", 500)
	member := registerTestMember(t, mgr, "Alice", "alice@test.com")

	_, err := mgr.Feedback.Add(FeedbackSpec{
		UserID: member.ID, BookID: book.ID, Title: "Great read", Comment: "Loved it", Rating: 6,
	})
	assert.ErrorIs(t, err, ErrValidation, "rating above 5")

	fb, err := mgr.Feedback.Add(FeedbackSpec{
		UserID: member.ID, BookID: book.ID, Title: "Great read", Comment: "Loved it", Rating: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, member.FullName, fb.UserName)
	assert.Equal(t, book.Title, fb.BookTitle)

	list, err := mgr.Feedback.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, mgr.Feedback.Delete(fb.ID))
	assert.ErrorIs(t, mgr.Feedback.Delete(fb.ID), ErrNotFound)
}
