package library

import (
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// defaultTotalCopies is the fixed copy count for any new title.
const defaultTotalCopies = 3

var validate = validator.New()

// validationError folds validator failures into a single domain error
// naming the offending fields.
func validationError(err error) *Error {
	var verrs validator.ValidationErrors
	if As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" "+fe.Tag())
		}
		return Validationf("invalid input: %s", strings.Join(fields, ", "))
	}
	return Validation(err.Error()).WithCause(err)
}

// BookSpec is the input for adding a book to the catalog.
type BookSpec struct {
	Title     string `validate:"required"`
	Author    string `validate:"required"`
	Category  string `validate:"required"`
	Price     int    `validate:"required,gt=0"`
	CoverURL  string `validate:"omitempty,url"`
	IsPopular bool
	IsRecent  bool
}

// Catalog owns book records and copy-count inventory.
type Catalog struct {
	db     *Database
	clock  Clock
	logger *slog.Logger
}

// NewCatalog creates the catalog service.
func NewCatalog(db *Database, clock Clock, logger *slog.Logger) *Catalog {
	return &Catalog{db: db, clock: clock, logger: logger}
}

// AddBook creates a book with all copies on the shelf.
func (c *Catalog) AddBook(spec BookSpec) (*Book, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, validationError(err)
	}

	id, err := newID(idPrefixBook)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	book := &Book{
		ID:              id,
		Title:           spec.Title,
		Author:          spec.Author,
		Category:        spec.Category,
		CoverURL:        spec.CoverURL,
		Price:           spec.Price,
		TotalCopies:     defaultTotalCopies,
		AvailableCopies: defaultTotalCopies,
		IsPopular:       spec.IsPopular,
		IsRecent:        spec.IsRecent,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := c.db.CreateBook(book); err != nil {
		return nil, err
	}

	c.logger.Info("book added", "book_id", book.ID, "title", book.Title)
	return book, nil
}

// GetBook returns the current snapshot of a book.
func (c *Catalog) GetBook(id string) (*Book, error) { return c.db.GetBook(id) }

// ListBooks returns the full catalog ordered by title.
func (c *Catalog) ListBooks() ([]*Book, error) { return c.db.ListBooks() }

// SearchBooks matches title, author, or category.
func (c *Catalog) SearchBooks(q string) ([]*Book, error) { return c.db.SearchBooks(q) }

// UpdateBook rewrites the administrative fields of a book. Copy counts
// are owned by the transaction flow and cannot be edited here.
func (c *Catalog) UpdateBook(id string, spec BookSpec) (*Book, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, validationError(err)
	}
	book, err := c.db.GetBook(id)
	if err != nil {
		return nil, err
	}
	book.Title = spec.Title
	book.Author = spec.Author
	book.Category = spec.Category
	book.CoverURL = spec.CoverURL
	book.Price = spec.Price
	book.IsPopular = spec.IsPopular
	book.IsRecent = spec.IsRecent
	book.UpdatedAt = c.clock.Now()
	if err := c.db.UpdateBook(book); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a title from the catalog. Historical transactions
// keep their denormalized book name and are not touched.
func (c *Catalog) DeleteBook(id string) error {
	if err := c.db.DeleteBook(id); err != nil {
		return err
	}
	c.logger.Info("book deleted", "book_id", id)
	return nil
}

// DecrementAvailability takes one copy off the shelf. A decrement that
// would go below zero signals a logic or concurrency bug upstream and
// is logged as a defect.
func (c *Catalog) DecrementAvailability(bookID string) error {
	err := c.db.AdjustAvailability(bookID, -1)
	if err != nil && Is(err, ErrInvariant) {
		c.logger.Error("availability invariant violated", "book_id", bookID, "err", err)
	}
	return err
}

// IncrementAvailability puts one copy back on the shelf.
func (c *Catalog) IncrementAvailability(bookID string) error {
	err := c.db.AdjustAvailability(bookID, +1)
	if err != nil && Is(err, ErrInvariant) {
		c.logger.Error("availability invariant violated", "book_id", bookID, "err", err)
	}
	return err
}
