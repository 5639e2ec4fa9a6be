package library

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Catalog is the in-memory record store. It keeps books in insertion order
// and writes the whole collection through its Codec after every successful
// mutation. A Catalog is not safe for concurrent use.
type Catalog struct {
	books []*Book

	codec  Codec
	clock  Clocker
	loan   time.Duration
	logger *zap.Logger
}

// Option customizes a Catalog created by Open.
type Option func(*Catalog)

// WithClock sets the time source used for due dates.
func WithClock(ck Clocker) Option {
	return func(c *Catalog) { c.clock = ck }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// WithLoanPeriod overrides DefaultLoanPeriod. Only whole days count.
func WithLoanPeriod(d time.Duration) Option {
	return func(c *Catalog) {
		if d >= 24*time.Hour {
			c.loan = d
		}
	}
}

// Open loads the catalog from codec. Stored records must satisfy the
// circulation invariants and carry unique IDs.
func Open(codec Codec, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		codec:  codec,
		clock:  NewClock(nil),
		loan:   DefaultLoanPeriod,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	books, err := codec.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	c.books = make([]*Book, 0, len(books))
	seen := make(map[int64]struct{}, len(books))
	for i := range books {
		b := books[i]
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("load catalog: book %d: %w", b.ID, ErrDuplicateID)
		}
		if err := checkState(b); err != nil {
			return nil, fmt.Errorf("load catalog: book %d: %w", b.ID, err)
		}
		seen[b.ID] = struct{}{}
		c.books = append(c.books, &b)
	}
	c.logger.Info("catalog loaded", zap.Int("books", len(c.books)))
	return c, nil
}

func checkState(b Book) error {
	if b.TimesIssued < 0 {
		return fmt.Errorf("%w: negative issue count", ErrMalformedRecord)
	}
	if b.Issued {
		if b.IssuedTo == "" || !validDueDate(b.DueDate) {
			return fmt.Errorf("%w: issued without borrower or due date", ErrMalformedRecord)
		}
		return nil
	}
	if b.IssuedTo != "" || b.DueDate != NoDueDate {
		return fmt.Errorf("%w: available book carries loan data", ErrMalformedRecord)
	}
	return nil
}

// Close releases the underlying codec.
func (c *Catalog) Close() error { return c.codec.Close() }

// Books returns a copy of every book in store order.
func (c *Catalog) Books() []Book { return c.snapshot() }

// Len returns the number of books.
func (c *Catalog) Len() int { return len(c.books) }

// Save writes every book through the codec. Failures wrap ErrIOUnavailable.
func (c *Catalog) Save() error {
	if err := c.codec.Save(c.snapshot()); err != nil {
		if !errors.Is(err, ErrIOUnavailable) {
			err = fmt.Errorf("%w: %w", ErrIOUnavailable, err)
		}
		return err
	}
	return nil
}

// persist saves after a mutation. The mutation stays in memory even when
// the save fails.
func (c *Catalog) persist(op string, id int64) error {
	if err := c.Save(); err != nil {
		c.logger.Error("save failed", zap.String("op", op), zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("%s book %d: %w", op, id, err)
	}
	c.logger.Debug("catalog saved", zap.String("op", op), zap.Int64("id", id), zap.Int("books", len(c.books)))
	return nil
}

func (c *Catalog) snapshot() []Book {
	out := make([]Book, len(c.books))
	for i, b := range c.books {
		out[i] = *b
	}
	return out
}

// check asks the codec whether it can store b.
func (c *Catalog) check(b Book) error {
	if ck, ok := c.codec.(Checker); ok {
		return ck.Check(b)
	}
	return nil
}

func (c *Catalog) indexOf(id int64) int {
	for i, b := range c.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// ------------------ Book helpers ------------------

// AddBook appends a new, available book. IDs are chosen by the caller.
func (c *Catalog) AddBook(id int64, title, author string) error {
	if c.indexOf(id) != -1 {
		return fmt.Errorf("book %d: %w", id, ErrDuplicateID)
	}
	b := newBook(id, title, author)
	if err := c.check(*b); err != nil {
		return err
	}
	c.books = append(c.books, b)
	return c.persist("add", id)
}

// Import inserts a complete record, circulation state included. It is used
// when converting between backends.
func (c *Catalog) Import(b Book) error {
	if c.indexOf(b.ID) != -1 {
		return fmt.Errorf("book %d: %w", b.ID, ErrDuplicateID)
	}
	if err := checkState(b); err != nil {
		return fmt.Errorf("book %d: %w", b.ID, err)
	}
	if err := c.check(b); err != nil {
		return err
	}
	c.books = append(c.books, &b)
	return c.persist("import", b.ID)
}

// FindByID returns a copy of the book with the given ID.
func (c *Catalog) FindByID(id int64) (Book, error) {
	i := c.indexOf(id)
	if i == -1 {
		return Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	return *c.books[i], nil
}

// SearchByTitle returns every book whose title equals title exactly,
// in store order.
func (c *Catalog) SearchByTitle(title string) []Book {
	matches := []Book{}
	for _, b := range c.books {
		if b.Title == title {
			matches = append(matches, *b)
		}
	}
	return matches
}

// ListAll returns a sorted copy of the catalog. Store order is untouched.
func (c *Catalog) ListAll(key SortKey) []Book {
	books := c.snapshot()
	switch key {
	case SortByTitle:
		slices.SortStableFunc(books, func(a, b Book) int { return strings.Compare(a.Title, b.Title) })
	default:
		slices.SortStableFunc(books, func(a, b Book) int {
			switch {
			case a.ID < b.ID:
				return -1
			case a.ID > b.ID:
				return 1
			}
			return 0
		})
	}
	return books
}

// ListAvailable returns books that are not issued, in store order.
func (c *Catalog) ListAvailable() []Book {
	books := []Book{}
	for _, b := range c.books {
		if !b.Issued {
			books = append(books, *b)
		}
	}
	return books
}

// DeleteBook removes a book regardless of its circulation state.
func (c *Catalog) DeleteBook(id int64) error {
	i := c.indexOf(id)
	if i == -1 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	c.books = slices.Delete(c.books, i, i+1)
	return c.persist("delete", id)
}

// ------------------ Circulation ------------------

// IssueBook lends the book to borrower until the end of the loan period.
// The returned copy reflects the new state even if saving failed.
func (c *Catalog) IssueBook(id int64, borrower string) (Book, error) {
	i := c.indexOf(id)
	if i == -1 {
		return Book{}, fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	b := c.books[i]
	if b.Issued {
		return *b, fmt.Errorf("book %d: %w", id, ErrAlreadyIssued)
	}
	borrower = strings.TrimSpace(borrower)
	if borrower == "" {
		return *b, fmt.Errorf("book %d: borrower name is empty: %w", id, ErrInvalidInput)
	}

	next := *b
	next.Issued = true
	next.IssuedTo = borrower
	next.DueDate = DueDate(c.clock.Now(), c.loan)
	next.TimesIssued++
	if err := c.check(next); err != nil {
		return *b, err
	}
	*b = next
	return *b, c.persist("issue", id)
}

// ReturnBook puts an issued book back on the shelf. TimesIssued is kept.
func (c *Catalog) ReturnBook(id int64) error {
	i := c.indexOf(id)
	if i == -1 {
		return fmt.Errorf("book %d: %w", id, ErrNotFound)
	}
	b := c.books[i]
	if !b.Issued {
		return fmt.Errorf("book %d: %w", id, ErrNotIssued)
	}

	b.Issued = false
	b.IssuedTo = ""
	b.DueDate = NoDueDate
	return c.persist("return", id)
}
