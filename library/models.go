package library

import "time"

// MemberType is the membership class a member registers under.
type MemberType string

const (
	MemberStudent MemberType = "Student"
	MemberStaff   MemberType = "Staff"
	MemberAdmin   MemberType = "Admin"
)

// Valid reports whether t is one of the known membership classes.
func (t MemberType) Valid() bool {
	switch t {
	case MemberStudent, MemberStaff, MemberAdmin:
		return true
	}
	return false
}

// BorrowingType selects the loan term: Individual loans run 30 days,
// Group loans run 180 days and carry 3-6 participants.
type BorrowingType string

const (
	BorrowIndividual BorrowingType = "Individual"
	BorrowGroup      BorrowingType = "Group"
)

// Valid reports whether t is a known borrowing type.
func (t BorrowingType) Valid() bool {
	return t == BorrowIndividual || t == BorrowGroup
}

// Term returns the loan duration for the borrowing type.
func (t BorrowingType) Term() time.Duration {
	if t == BorrowGroup {
		return 180 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// TransactionStatus tracks a transaction through its lifecycle.
// Active is the only non-terminal status. Missing means the book came
// back after its due date and is fined as a loss. Overdue is never
// stored; the reporting layer derives it from Active past-due rows.
type TransactionStatus string

const (
	StatusActive   TransactionStatus = "Active"
	StatusReturned TransactionStatus = "Returned"
	StatusMissing  TransactionStatus = "Missing"
	StatusOverdue  TransactionStatus = "Overdue"
)

// Terminal reports whether the status ends the transaction lifecycle.
func (s TransactionStatus) Terminal() bool {
	return s == StatusReturned || s == StatusMissing
}

// DamageType grades the condition of a returned book.
type DamageType string

const (
	DamageNone  DamageType = "None"
	DamageSmall DamageType = "Small"
	DamageLarge DamageType = "Large"
)

// Valid reports whether d is a known damage grade.
func (d DamageType) Valid() bool {
	switch d {
	case DamageNone, DamageSmall, DamageLarge:
		return true
	}
	return false
}

// Member is a registered library member.
type Member struct {
	ID           string     `json:"id"`
	FullName     string     `json:"fullName"`
	Email        string     `json:"email"`
	MemberType   MemberType `json:"memberType"`
	AdmissionID  string     `json:"admissionId,omitempty"`
	EmployeeID   string     `json:"employeeId,omitempty"`
	MobileNumber string     `json:"mobileNumber"`
	Age          int        `json:"age"`
	Gender       string     `json:"gender,omitempty"`
	DOB          string     `json:"dob,omitempty"`
	Address      string     `json:"address,omitempty"`
	Points       int        `json:"points"`
	IsAdmin      bool       `json:"isAdmin"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Book is a catalog entry with copy-count inventory.
// Every new title enters the catalog with three copies.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Category        string    `json:"category"`
	CoverURL        string    `json:"coverUrl,omitempty"`
	Price           int       `json:"price"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	IsPopular       bool      `json:"isPopular,omitempty"`
	IsRecent        bool      `json:"isRecent,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Transaction is a borrow record. BookName and BorrowerName are
// snapshots taken at creation time; later renames do not touch them.
type Transaction struct {
	ID            string            `json:"id"`
	BookID        string            `json:"bookId"`
	BookName      string            `json:"bookName"`
	BorrowerID    string            `json:"borrowerId"`
	BorrowerName  string            `json:"borrowerName"`
	BorrowingType BorrowingType     `json:"borrowingType"`
	GroupMembers  []string          `json:"groupMembers,omitempty"`
	FromDate      time.Time         `json:"fromDate"`
	DueDate       time.Time         `json:"dueDate"`
	ReturnDate    *time.Time        `json:"returnDate,omitempty"`
	Status        TransactionStatus `json:"status"`
	Fine          int               `json:"fine"`
	DamageType    *DamageType       `json:"damageType,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Hold is an advisory reservation on a book with no available copies.
// Holds never assign the book; they only mark interest in FIFO order.
type Hold struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	MemberID  string    `json:"memberId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feedback is a member-submitted review. It never interacts with
// borrowing rules.
type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	BookID    string    `json:"bookId,omitempty"`
	BookTitle string    `json:"bookTitle,omitempty"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats is the aggregate snapshot shown on the admin dashboard.
type Stats struct {
	TotalCopies     int `json:"totalCopies"`
	AvailableCopies int `json:"availableCopies"`
	BorrowedCopies  int `json:"borrowedCopies"`
	MemberCount     int `json:"memberCount"`
	ActiveCount     int `json:"activeCount"`
	OverdueCount    int `json:"overdueCount"`
	TotalFines      int `json:"totalFines"`
}
