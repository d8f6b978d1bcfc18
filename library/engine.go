package library

import (
	"log/slog"
	"sync"
)

// Group loans carry the borrower plus 2-5 listed members.
const (
	minExtraGroupMembers = 2
	maxExtraGroupMembers = 5
)

// Engine orchestrates borrow and return. It is the only writer of
// transaction lifecycle fields, the only caller of AdjustPoints in
// normal flow, and the bottleneck enforcing at most one active borrow
// per member.
type Engine struct {
	db     *Database
	clock  Clock
	logger *slog.Logger

	// Serializes the check-then-act sequences of borrow and return.
	// Each operation is short and non-blocking, so one writer suffices;
	// the store re-verifies preconditions under its SQL transaction as
	// a second line of defense.
	mu sync.Mutex
}

// NewEngine creates the transaction engine.
func NewEngine(db *Database, clock Clock, logger *slog.Logger) *Engine {
	return &Engine{db: db, clock: clock, logger: logger}
}

// Borrow checks eligibility and creates an Active transaction, taking
// one copy off the shelf atomically. Preconditions are checked in
// order: existence, availability, group size, then the one-active-loan
// rule; the first failure short-circuits with nothing mutated.
func (e *Engine) Borrow(bookID, borrowerID string, borrowingType BorrowingType, groupMemberIDs []string) (*Transaction, error) {
	if !borrowingType.Valid() {
		return nil, Validationf("unknown borrowing type %q", borrowingType)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	book, err := e.db.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	borrower, err := e.db.GetMember(borrowerID)
	if err != nil {
		return nil, err
	}

	if book.AvailableCopies < 1 {
		return nil, Validation("no copies available")
	}

	var group []string
	if borrowingType == BorrowGroup {
		if len(groupMemberIDs) < minExtraGroupMembers || len(groupMemberIDs) > maxExtraGroupMembers {
			return nil, Validation("group must have 3-6 members including the borrower")
		}
		seen := map[string]bool{borrowerID: true}
		for _, memberID := range groupMemberIDs {
			if seen[memberID] {
				return nil, Validationf("duplicate group member %s", memberID)
			}
			seen[memberID] = true
			if _, err := e.db.GetMember(memberID); err != nil {
				return nil, err
			}
		}
		group = append([]string{borrowerID}, groupMemberIDs...)
	} else if len(groupMemberIDs) > 0 {
		return nil, Validation("group members are only allowed on group borrowings")
	}

	active, err := e.db.CountActiveForMember(borrowerID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, Conflict("member already has an active borrowing")
	}

	id, err := newID(idPrefixTransaction)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	txn := &Transaction{
		ID:            id,
		BookID:        book.ID,
		BookName:      book.Title,
		BorrowerID:    borrower.ID,
		BorrowerName:  borrower.FullName,
		BorrowingType: borrowingType,
		GroupMembers:  group,
		FromDate:      now,
		DueDate:       now.Add(borrowingType.Term()),
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.db.ExecBorrow(txn); err != nil {
		return nil, err
	}

	e.logger.Info("book borrowed",
		"transaction_id", txn.ID,
		"book_id", book.ID,
		"borrower_id", borrower.ID,
		"type", borrowingType,
		"due", txn.DueDate)
	return txn, nil
}

// Return closes an Active transaction: computes the fine as of now,
// sets the terminal status (Missing when past due, Returned otherwise),
// shelves the copy, and deducts points proportional to the fine. All
// side effects land in one store transaction; a failure mutates
// nothing.
func (e *Engine) Return(transactionID string, damage DamageType) (*Transaction, int, error) {
	if damage == "" {
		damage = DamageNone
	}
	if !damage.Valid() {
		return nil, 0, Validationf("unknown damage type %q", damage)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	txn, err := e.db.GetTransaction(transactionID)
	if err != nil {
		return nil, 0, err
	}
	if txn.Status != StatusActive {
		return nil, 0, InvalidStatef("transaction %s is already %s", txn.ID, txn.Status)
	}

	book, err := e.db.GetBook(txn.BookID)
	if err != nil {
		return nil, 0, err
	}

	now := e.clock.Now()
	fine := CalculateFine(txn.DueDate, now, book.Price, damage)

	txn.ReturnDate = &now
	txn.Status = StatusReturned
	if now.After(txn.DueDate) {
		txn.Status = StatusMissing
	}
	txn.Fine = fine
	txn.DamageType = &damage
	txn.UpdatedAt = now

	// Points penalty is proportional to the fine and never positive on
	// this path; the store clamps the balance at zero.
	if err := e.db.ExecReturn(txn, -(fine / 10)); err != nil {
		return nil, 0, err
	}

	e.logger.Info("book returned",
		"transaction_id", txn.ID,
		"book_id", txn.BookID,
		"status", txn.Status,
		"fine", fine,
		"damage", damage)
	return txn, fine, nil
}
