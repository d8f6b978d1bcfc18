package library

import "log/slog"

// FeedbackSpec is the input for submitting feedback. The book reference
// is optional; general feedback about the library is allowed.
type FeedbackSpec struct {
	UserID   string `validate:"required"`
	BookID   string
	Title    string `validate:"required"`
	Comment  string `validate:"required"`
	Rating   int    `validate:"required,min=1,max=5"`
	ImageURL string `validate:"omitempty,url"`
}

// FeedbackService records member feedback. Feedback never interacts
// with borrowing rules.
type FeedbackService struct {
	db     *Database
	clock  Clock
	logger *slog.Logger
}

// NewFeedbackService creates the feedback service.
func NewFeedbackService(db *Database, clock Clock, logger *slog.Logger) *FeedbackService {
	return &FeedbackService{db: db, clock: clock, logger: logger}
}

// Add validates and stores a feedback record, snapshotting the user and
// book names at submission time.
func (s *FeedbackService) Add(spec FeedbackSpec) (*Feedback, error) {
	if err := validate.Struct(spec); err != nil {
		return nil, validationError(err)
	}

	user, err := s.db.GetMember(spec.UserID)
	if err != nil {
		return nil, err
	}

	var bookTitle string
	if spec.BookID != "" {
		book, err := s.db.GetBook(spec.BookID)
		if err != nil {
			return nil, err
		}
		bookTitle = book.Title
	}

	id, err := newID(idPrefixFeedback)
	if err != nil {
		return nil, err
	}
	fb := &Feedback{
		ID:        id,
		UserID:    user.ID,
		UserName:  user.FullName,
		BookID:    spec.BookID,
		BookTitle: bookTitle,
		Title:     spec.Title,
		Comment:   spec.Comment,
		Rating:    spec.Rating,
		ImageURL:  spec.ImageURL,
		CreatedAt: s.clock.Now(),
	}
	if err := s.db.CreateFeedback(fb); err != nil {
		return nil, err
	}

	s.logger.Info("feedback added", "feedback_id", fb.ID, "rating", fb.Rating)
	return fb, nil
}

// List returns all feedback, newest first.
func (s *FeedbackService) List() ([]*Feedback, error) { return s.db.ListFeedback() }

// Delete removes a feedback record.
func (s *FeedbackService) Delete(id string) error { return s.db.DeleteFeedback(id) }
