package library

// Reports derives read-only views from the transaction set. It never
// mutates anything; the Overdue status it reports is computed, not
// stored.
type Reports struct {
	db    *Database
	clock Clock
}

// NewReports creates the reporting service.
func NewReports(db *Database, clock Clock) *Reports {
	return &Reports{db: db, clock: clock}
}

// ActiveTransactions returns all loans not yet returned, newest first.
func (r *Reports) ActiveTransactions() ([]*Transaction, error) {
	return r.db.ActiveTransactions()
}

// OverdueTransactions returns loans that are still active but past
// their due date. These are logically Overdue, distinct from Missing,
// which only applies after an actual late return.
func (r *Reports) OverdueTransactions() ([]*Transaction, error) {
	txns, err := r.db.OverdueTransactions(r.clock.Now())
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		t.Status = StatusOverdue
	}
	return txns, nil
}

// TransactionsForMember returns a member's full history, newest first.
func (r *Reports) TransactionsForMember(memberID string) ([]*Transaction, error) {
	return r.db.TransactionsForMember(memberID)
}

// TransactionsForBook returns a book's full history, newest first.
func (r *Reports) TransactionsForBook(bookID string) ([]*Transaction, error) {
	return r.db.TransactionsForBook(bookID)
}

// Stats returns the dashboard aggregates.
func (r *Reports) Stats() (*Stats, error) {
	return r.db.StatsCounts(r.clock.Now())
}

// MemberProfile is the member dashboard view: the member plus their
// active and past loans.
type MemberProfile struct {
	Member  *Member        `json:"member"`
	Active  []*Transaction `json:"activeTransactions"`
	History []*Transaction `json:"prevTransactions"`
}

// Profile assembles a member's profile view.
func (r *Reports) Profile(memberID string) (*MemberProfile, error) {
	member, err := r.db.GetMember(memberID)
	if err != nil {
		return nil, err
	}
	txns, err := r.db.TransactionsForMember(memberID)
	if err != nil {
		return nil, err
	}
	profile := &MemberProfile{Member: member}
	for _, t := range txns {
		if t.Status == StatusActive {
			profile.Active = append(profile.Active, t)
		} else {
			profile.History = append(profile.History, t)
		}
	}
	return profile, nil
}
