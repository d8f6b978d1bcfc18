package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Database provides high-level helpers around a SQLite connection.
// Multi-step mutations run inside SQL transactions so a failure never
// leaves the catalog, membership, and transaction tables half-updated.
type Database struct {
	db *sql.DB

	addBookStmt   *sql.Stmt
	addMemberStmt *sql.Stmt
	addTxnStmt    *sql.Stmt
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies
// schema migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	// Enable busy_timeout and foreign keys; store timestamps in UTC.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_loc=UTC", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	for _, stmt := range []*sql.Stmt{d.addBookStmt, d.addMemberStmt, d.addTxnStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	// WAL improves write concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
            id TEXT PRIMARY KEY,
            full_name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            member_type TEXT NOT NULL,
            admission_id TEXT NOT NULL DEFAULT '',
            employee_id TEXT NOT NULL DEFAULT '',
            mobile_number TEXT NOT NULL,
            age INTEGER NOT NULL DEFAULT 0,
            gender TEXT NOT NULL DEFAULT '',
            dob TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            points INTEGER NOT NULL DEFAULT 100,
            is_admin BOOLEAN NOT NULL DEFAULT 0,
            password_hash TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            category TEXT NOT NULL,
            cover_url TEXT NOT NULL DEFAULT '',
            price INTEGER NOT NULL,
            total_copies INTEGER NOT NULL,
            available_copies INTEGER NOT NULL,
            is_popular BOOLEAN NOT NULL DEFAULT 0,
            is_recent BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            CHECK (available_copies >= 0 AND available_copies <= total_copies)
        );`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id TEXT PRIMARY KEY,
            book_id TEXT NOT NULL REFERENCES books(id),
            book_name TEXT NOT NULL,
            borrower_id TEXT NOT NULL REFERENCES members(id),
            borrower_name TEXT NOT NULL,
            borrowing_type TEXT NOT NULL,
            group_members TEXT NOT NULL DEFAULT '',
            from_date DATETIME NOT NULL,
            due_date DATETIME NOT NULL,
            return_date DATETIME,
            status TEXT NOT NULL,
            fine INTEGER NOT NULL DEFAULT 0,
            damage_type TEXT,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_txn_borrower ON transactions(borrower_id, status);`,
		`CREATE INDEX IF NOT EXISTS idx_txn_book ON transactions(book_id);`,
		`CREATE TABLE IF NOT EXISTS holds (
            id TEXT PRIMARY KEY,
            book_id TEXT NOT NULL REFERENCES books(id),
            member_id TEXT NOT NULL REFERENCES members(id),
            created_at DATETIME NOT NULL,
            cancelled_at DATETIME,
            UNIQUE(book_id, member_id)
        );`,
		`CREATE TABLE IF NOT EXISTS feedbacks (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES members(id),
            user_name TEXT NOT NULL,
            book_id TEXT NOT NULL DEFAULT '',
            book_title TEXT NOT NULL DEFAULT '',
            title TEXT NOT NULL,
            comment TEXT NOT NULL,
            rating INTEGER NOT NULL,
            image_url TEXT NOT NULL DEFAULT '',
            created_at DATETIME NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Prepare(`INSERT INTO books
        (id,title,author,category,cover_url,price,total_copies,available_copies,is_popular,is_recent,created_at,updated_at)
        VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.addMemberStmt, err = d.db.Prepare(`INSERT INTO members
        (id,full_name,email,member_type,admission_id,employee_id,mobile_number,age,gender,dob,address,points,is_admin,password_hash,created_at,updated_at)
        VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.addTxnStmt, err = d.db.Prepare(`INSERT INTO transactions
        (id,book_id,book_name,borrower_id,borrower_name,borrowing_type,group_members,from_date,due_date,status,fine,created_at,updated_at)
        VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Books
// ---------------------------------------------------------------------------

func (d *Database) CreateBook(b *Book) error {
	_, err := d.addBookStmt.Exec(b.ID, b.Title, b.Author, b.Category, b.CoverURL,
		b.Price, b.TotalCopies, b.AvailableCopies, b.IsPopular, b.IsRecent, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

const bookColumns = `id,title,author,category,cover_url,price,total_copies,available_copies,is_popular,is_recent,created_at,updated_at`

func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.CoverURL,
		&b.Price, &b.TotalCopies, &b.AvailableCopies, &b.IsPopular, &b.IsRecent, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (d *Database) GetBook(id string) (*Book, error) {
	b, err := scanBook(d.db.QueryRow(`SELECT `+bookColumns+` FROM books WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return nil, NotFoundf("book %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (d *Database) ListBooks() ([]*Book, error) {
	return d.queryBooks(`SELECT ` + bookColumns + ` FROM books ORDER BY title`)
}

// SearchBooks matches title, author, or category case-insensitively.
func (d *Database) SearchBooks(q string) ([]*Book, error) {
	if strings.TrimSpace(q) == "" {
		return []*Book{}, nil
	}
	like := "%" + strings.TrimSpace(q) + "%"
	return d.queryBooks(`SELECT `+bookColumns+` FROM books
        WHERE title LIKE ? OR author LIKE ? OR category LIKE ?
        ORDER BY title`, like, like, like)
}

func (d *Database) queryBooks(query string, args ...any) ([]*Book, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook rewrites the administrative fields of a book. Copy counts
// are deliberately not written here; only borrow/return flow and
// AdjustAvailability touch them.
func (d *Database) UpdateBook(b *Book) error {
	res, err := d.db.Exec(`UPDATE books SET title=?, author=?, category=?, cover_url=?, price=?,
        is_popular=?, is_recent=?, updated_at=? WHERE id=?`,
		b.Title, b.Author, b.Category, b.CoverURL, b.Price, b.IsPopular, b.IsRecent, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundf("book %s not found", b.ID)
	}
	return nil
}

func (d *Database) DeleteBook(id string) error {
	res, err := d.db.Exec(`DELETE FROM books WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundf("book %s not found", id)
	}
	return nil
}

// AdjustAvailability moves available_copies by delta, guarded so the
// count can never leave [0, total_copies]. A guard miss on a book that
// exists is an invariant violation, not user error.
func (d *Database) AdjustAvailability(bookID string, delta int) error {
	return d.adjustAvailabilityTx(d.db, bookID, delta)
}

// execer covers *sql.DB and *sql.Tx so guarded updates run in either.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (d *Database) adjustAvailabilityTx(e execer, bookID string, delta int) error {
	res, err := e.Exec(`UPDATE books SET available_copies = available_copies + ?, updated_at = ?
        WHERE id = ? AND available_copies + ? BETWEEN 0 AND total_copies`,
		delta, time.Now().UTC(), bookID, delta)
	if err != nil {
		return fmt.Errorf("adjust availability: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := e.QueryRow(`SELECT EXISTS(SELECT 1 FROM books WHERE id=?)`, bookID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return NotFoundf("book %s not found", bookID)
		}
		return Invariantf("availability adjustment by %d would leave book %s outside [0,total]", delta, bookID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Members
// ---------------------------------------------------------------------------

func (d *Database) CreateMember(m *Member) error {
	_, err := d.addMemberStmt.Exec(m.ID, m.FullName, m.Email, string(m.MemberType),
		m.AdmissionID, m.EmployeeID, m.MobileNumber, m.Age, m.Gender, m.DOB, m.Address,
		m.Points, m.IsAdmin, m.PasswordHash, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return Conflict("a member with this email already exists").WithCause(err)
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

const memberColumns = `id,full_name,email,member_type,admission_id,employee_id,mobile_number,age,gender,dob,address,points,is_admin,password_hash,created_at,updated_at`

func scanMember(row interface{ Scan(...any) error }) (*Member, error) {
	var m Member
	var mt string
	err := row.Scan(&m.ID, &m.FullName, &m.Email, &mt, &m.AdmissionID, &m.EmployeeID,
		&m.MobileNumber, &m.Age, &m.Gender, &m.DOB, &m.Address, &m.Points, &m.IsAdmin,
		&m.PasswordHash, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.MemberType = MemberType(mt)
	return &m, nil
}

func (d *Database) GetMember(id string) (*Member, error) {
	m, err := scanMember(d.db.QueryRow(`SELECT `+memberColumns+` FROM members WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return nil, NotFoundf("member %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (d *Database) GetMemberByEmail(email string) (*Member, error) {
	m, err := scanMember(d.db.QueryRow(`SELECT `+memberColumns+` FROM members WHERE email=?`, email))
	if err == sql.ErrNoRows {
		return nil, NotFoundf("member with email %s not found", email)
	}
	if err != nil {
		return nil, fmt.Errorf("get member by email: %w", err)
	}
	return m, nil
}

func (d *Database) ListMembers() ([]*Member, error) {
	rows, err := d.db.Query(`SELECT ` + memberColumns + ` FROM members ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (d *Database) UpdateMember(m *Member) error {
	res, err := d.db.Exec(`UPDATE members SET full_name=?, mobile_number=?, age=?, gender=?,
        dob=?, address=?, password_hash=?, updated_at=? WHERE id=?`,
		m.FullName, m.MobileNumber, m.Age, m.Gender, m.DOB, m.Address, m.PasswordHash, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundf("member %s not found", m.ID)
	}
	return nil
}

// AdjustPoints moves a member's balance by delta, clamped at a floor of
// zero. Points never go negative.
func (d *Database) AdjustPoints(memberID string, delta int) error {
	return d.adjustPointsTx(d.db, memberID, delta)
}

func (d *Database) adjustPointsTx(e execer, memberID string, delta int) error {
	res, err := e.Exec(`UPDATE members SET points = MAX(0, points + ?), updated_at = ? WHERE id = ?`,
		delta, time.Now().UTC(), memberID)
	if err != nil {
		return fmt.Errorf("adjust points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundf("member %s not found", memberID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Transactions
// ---------------------------------------------------------------------------

const txnColumns = `id,book_id,book_name,borrower_id,borrower_name,borrowing_type,group_members,from_date,due_date,return_date,status,fine,damage_type,created_at,updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*Transaction, error) {
	var t Transaction
	var bt, status, groupJSON string
	var returnDate sql.NullTime
	var damage sql.NullString
	err := row.Scan(&t.ID, &t.BookID, &t.BookName, &t.BorrowerID, &t.BorrowerName,
		&bt, &groupJSON, &t.FromDate, &t.DueDate, &returnDate, &status, &t.Fine,
		&damage, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.BorrowingType = BorrowingType(bt)
	t.Status = TransactionStatus(status)
	if returnDate.Valid {
		rd := returnDate.Time
		t.ReturnDate = &rd
	}
	if damage.Valid {
		dt := DamageType(damage.String)
		t.DamageType = &dt
	}
	if groupJSON != "" {
		if err := json.Unmarshal([]byte(groupJSON), &t.GroupMembers); err != nil {
			return nil, fmt.Errorf("decode group members: %w", err)
		}
	}
	return &t, nil
}

func (d *Database) GetTransaction(id string) (*Transaction, error) {
	t, err := scanTransaction(d.db.QueryRow(`SELECT `+txnColumns+` FROM transactions WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return nil, NotFoundf("transaction %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (d *Database) queryTransactions(query string, args ...any) ([]*Transaction, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (d *Database) ActiveTransactions() ([]*Transaction, error) {
	return d.queryTransactions(`SELECT `+txnColumns+` FROM transactions
        WHERE status=? ORDER BY from_date DESC`, string(StatusActive))
}

// OverdueTransactions returns still-active loans past their due date.
func (d *Database) OverdueTransactions(now time.Time) ([]*Transaction, error) {
	return d.queryTransactions(`SELECT `+txnColumns+` FROM transactions
        WHERE status=? AND due_date < ? ORDER BY from_date DESC`, string(StatusActive), now)
}

func (d *Database) TransactionsForMember(memberID string) ([]*Transaction, error) {
	return d.queryTransactions(`SELECT `+txnColumns+` FROM transactions
        WHERE borrower_id=? ORDER BY from_date DESC`, memberID)
}

func (d *Database) TransactionsForBook(bookID string) ([]*Transaction, error) {
	return d.queryTransactions(`SELECT `+txnColumns+` FROM transactions
        WHERE book_id=? ORDER BY from_date DESC`, bookID)
}

func (d *Database) CountActiveForMember(memberID string) (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE borrower_id=? AND status=?`,
		memberID, string(StatusActive)).Scan(&n)
	return n, err
}

// ExecBorrow atomically creates the transaction and takes one copy off
// the shelf. Preconditions the engine already checked are re-verified
// under the SQL transaction so two concurrent borrows for the same book
// or borrower cannot both pass the check-then-act sequence.
func (d *Database) ExecBorrow(t *Transaction) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var active int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM transactions WHERE borrower_id=? AND status=?`,
		t.BorrowerID, string(StatusActive)).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return Conflict("member already has an active borrowing")
	}

	res, err := tx.Exec(`UPDATE books SET available_copies = available_copies - 1, updated_at = ?
        WHERE id = ? AND available_copies >= 1`, t.CreatedAt, t.BookID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Validation("no copies available")
	}

	groupJSON := ""
	if len(t.GroupMembers) > 0 {
		raw, err := json.Marshal(t.GroupMembers)
		if err != nil {
			return fmt.Errorf("encode group members: %w", err)
		}
		groupJSON = string(raw)
	}

	if _, err := tx.Stmt(d.addTxnStmt).Exec(t.ID, t.BookID, t.BookName, t.BorrowerID,
		t.BorrowerName, string(t.BorrowingType), groupJSON, t.FromDate, t.DueDate,
		string(t.Status), t.Fine, t.CreatedAt, t.UpdatedAt); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	return tx.Commit()
}

// ExecReturn atomically closes an Active transaction, shelves the copy,
// and applies the points penalty. The status guard in the UPDATE makes
// a second return of the same transaction fail cleanly.
func (d *Database) ExecReturn(t *Transaction, pointsDelta int) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var damage any
	if t.DamageType != nil {
		damage = string(*t.DamageType)
	}
	res, err := tx.Exec(`UPDATE transactions SET return_date=?, status=?, fine=?, damage_type=?, updated_at=?
        WHERE id=? AND status=?`,
		t.ReturnDate, string(t.Status), t.Fine, damage, t.UpdatedAt, t.ID, string(StatusActive))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return InvalidStatef("transaction %s is not active", t.ID)
	}

	if err := d.adjustAvailabilityTx(tx, t.BookID, +1); err != nil {
		return err
	}
	if pointsDelta != 0 {
		if err := d.adjustPointsTx(tx, t.BorrowerID, pointsDelta); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Holds
// ---------------------------------------------------------------------------

// CreateHold queues an advisory hold. The caller validates book and
// member existence and availability; uniqueness is enforced here.
func (d *Database) CreateHold(h *Hold) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM holds WHERE book_id=? AND member_id=? AND cancelled_at IS NULL)`,
		h.BookID, h.MemberID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return Conflict("member already has a hold on this book")
	}

	if _, err := tx.Exec(`INSERT INTO holds(id,book_id,member_id,created_at) VALUES(?,?,?,?)
        ON CONFLICT(book_id,member_id) DO UPDATE SET cancelled_at=NULL, created_at=excluded.created_at`,
		h.ID, h.BookID, h.MemberID, h.CreatedAt); err != nil {
		return fmt.Errorf("insert hold: %w", err)
	}
	return tx.Commit()
}

func (d *Database) queryHolds(query string, args ...any) ([]*Hold, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []*Hold
	for rows.Next() {
		var h Hold
		if err := rows.Scan(&h.ID, &h.BookID, &h.MemberID, &h.CreatedAt); err != nil {
			return nil, err
		}
		holds = append(holds, &h)
	}
	return holds, rows.Err()
}

// HoldsForBook returns the active hold queue in FIFO order.
func (d *Database) HoldsForBook(bookID string) ([]*Hold, error) {
	return d.queryHolds(`SELECT id,book_id,member_id,created_at FROM holds
        WHERE book_id=? AND cancelled_at IS NULL ORDER BY created_at ASC`, bookID)
}

func (d *Database) HoldsForMember(memberID string) ([]*Hold, error) {
	return d.queryHolds(`SELECT id,book_id,member_id,created_at FROM holds
        WHERE member_id=? AND cancelled_at IS NULL ORDER BY created_at ASC`, memberID)
}

func (d *Database) CancelHold(bookID, memberID string, now time.Time) error {
	res, err := d.db.Exec(`UPDATE holds SET cancelled_at=? WHERE book_id=? AND member_id=? AND cancelled_at IS NULL`,
		now, bookID, memberID)
	if err != nil {
		return fmt.Errorf("cancel hold: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundf("no active hold for member %s on book %s", memberID, bookID)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Feedback
// ---------------------------------------------------------------------------

func (d *Database) CreateFeedback(f *Feedback) error {
	_, err := d.db.Exec(`INSERT INTO feedbacks(id,user_id,user_name,book_id,book_title,title,comment,rating,image_url,created_at)
        VALUES(?,?,?,?,?,?,?,?,?,?)`,
		f.ID, f.UserID, f.UserName, f.BookID, f.BookTitle, f.Title, f.Comment, f.Rating, f.ImageURL, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (d *Database) ListFeedback() ([]*Feedback, error) {
	rows, err := d.db.Query(`SELECT id,user_id,user_name,book_id,book_title,title,comment,rating,image_url,created_at
        FROM feedbacks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedbacks []*Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.UserName, &f.BookID, &f.BookTitle,
			&f.Title, &f.Comment, &f.Rating, &f.ImageURL, &f.CreatedAt); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, &f)
	}
	return feedbacks, rows.Err()
}

func (d *Database) DeleteFeedback(id string) error {
	res, err := d.db.Exec(`DELETE FROM feedbacks WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundf("feedback %s not found", id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Aggregates
// ---------------------------------------------------------------------------

// StatsCounts computes the dashboard aggregates in SQL.
func (d *Database) StatsCounts(now time.Time) (*Stats, error) {
	var s Stats
	err := d.db.QueryRow(`SELECT COALESCE(SUM(total_copies),0), COALESCE(SUM(available_copies),0) FROM books`).
		Scan(&s.TotalCopies, &s.AvailableCopies)
	if err != nil {
		return nil, err
	}
	s.BorrowedCopies = s.TotalCopies - s.AvailableCopies

	if err := d.db.QueryRow(`SELECT COUNT(*) FROM members WHERE is_admin=0`).Scan(&s.MemberCount); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE status=?`, string(StatusActive)).Scan(&s.ActiveCount); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE status=? AND due_date < ?`,
		string(StatusActive), now).Scan(&s.OverdueCount); err != nil {
		return nil, err
	}
	if err := d.db.QueryRow(`SELECT COALESCE(SUM(fine),0) FROM transactions WHERE fine > 0`).Scan(&s.TotalFines); err != nil {
		return nil, err
	}
	return &s, nil
}
