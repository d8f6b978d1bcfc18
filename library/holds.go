package library

import "log/slog"

// Holds manages the advisory hold queue. A hold marks interest in a
// fully borrowed book; it never assigns the book, since assignment must
// go through the engine's eligibility checks.
type Holds struct {
	db     *Database
	clock  Clock
	logger *slog.Logger
}

// NewHolds creates the holds service.
func NewHolds(db *Database, clock Clock, logger *slog.Logger) *Holds {
	return &Holds{db: db, clock: clock, logger: logger}
}

// PlaceHold queues a hold for a member on a book with no available
// copies. Holding a book that still has copies on the shelf is
// rejected; so is holding a book the member currently has out.
func (h *Holds) PlaceHold(bookID, memberID string) (*Hold, error) {
	book, err := h.db.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	if _, err := h.db.GetMember(memberID); err != nil {
		return nil, err
	}
	if book.AvailableCopies > 0 {
		return nil, Validation("copies are available; borrow the book instead of holding it")
	}

	txns, err := h.db.TransactionsForMember(memberID)
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		if t.Status == StatusActive && t.BookID == bookID {
			return nil, Conflict("member already has this book out")
		}
	}

	id, err := newID(idPrefixHold)
	if err != nil {
		return nil, err
	}
	hold := &Hold{ID: id, BookID: bookID, MemberID: memberID, CreatedAt: h.clock.Now()}
	if err := h.db.CreateHold(hold); err != nil {
		return nil, err
	}

	h.logger.Info("hold placed", "hold_id", hold.ID, "book_id", bookID, "member_id", memberID)
	return hold, nil
}

// QueueForBook returns a book's active holds in FIFO order.
func (h *Holds) QueueForBook(bookID string) ([]*Hold, error) {
	if _, err := h.db.GetBook(bookID); err != nil {
		return nil, err
	}
	return h.db.HoldsForBook(bookID)
}

// HoldsForMember returns a member's active holds, oldest first.
func (h *Holds) HoldsForMember(memberID string) ([]*Hold, error) {
	if _, err := h.db.GetMember(memberID); err != nil {
		return nil, err
	}
	return h.db.HoldsForMember(memberID)
}

// CancelHold withdraws an active hold.
func (h *Holds) CancelHold(bookID, memberID string) error {
	return h.db.CancelHold(bookID, memberID, h.clock.Now())
}
