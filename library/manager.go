package library

import (
	"fmt"
	"log/slog"
)

// LibraryManager is a thin façade over the services, keeping CLI code
// simple. Dependencies are constructor-injected; pass a FixedClock for
// deterministic tests.
type LibraryManager struct {
	db *Database

	Catalog    *Catalog
	Membership *Membership
	Engine     *Engine
	Reports    *Reports
	Holds      *Holds
	Feedback   *FeedbackService
}

// NewLibraryManager opens (or creates) the SQLite database at dbPath
// and wires the services around it.
func NewLibraryManager(dbPath string, clock Clock, logger *slog.Logger) (*LibraryManager, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := NewDatabase(dbPath)
	if err != nil {
		return nil, err
	}

	return &LibraryManager{
		db:         db,
		Catalog:    NewCatalog(db, clock, logger),
		Membership: NewMembership(db, clock, logger),
		Engine:     NewEngine(db, clock, logger),
		Reports:    NewReports(db, clock),
		Holds:      NewHolds(db, clock, logger),
		Feedback:   NewFeedbackService(db, clock, logger),
	}, nil
}

// Close closes the underlying database.
func (lm *LibraryManager) Close() error { return lm.db.Close() }

// PrettyBook formats a book for list output.
func PrettyBook(b *Book) string {
	return fmt.Sprintf("%-26s %-30s %-22s %-14s %6d %7d/%d",
		b.ID, truncate(b.Title, 30), truncate(b.Author, 22), truncate(b.Category, 14),
		b.Price, b.AvailableCopies, b.TotalCopies)
}

// PrettyTransaction formats a transaction for list output.
func PrettyTransaction(t *Transaction) string {
	due := t.DueDate.Format("2006-01-02")
	ret := "-"
	if t.ReturnDate != nil {
		ret = t.ReturnDate.Format("2006-01-02")
	}
	return fmt.Sprintf("%-26s %-28s %-22s %-10s %-10s %-10s %-8s %6d",
		t.ID, truncate(t.BookName, 28), truncate(t.BorrowerName, 22),
		t.BorrowingType, due, ret, t.Status, t.Fine)
}

func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
