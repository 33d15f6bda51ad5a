package library

// Book is a catalog entry plus its current circulation state. The catalog
// attributes (ISBN, title, author, year) never change after creation; only
// the availability flag and the borrower reference move, and only through
// MarkBorrowed/MarkReturned.
type Book struct {
	isbn      string
	title     string
	author    string
	year      int
	available bool
	borrower  *Member
}

// NewBook creates an available book with no borrower.
func NewBook(isbn, title, author string, year int) *Book {
	return &Book{
		isbn:      isbn,
		title:     title,
		author:    author,
		year:      year,
		available: true,
	}
}

func (b *Book) ISBN() string    { return b.isbn }
func (b *Book) Title() string   { return b.title }
func (b *Book) Author() string  { return b.author }
func (b *Book) Year() int       { return b.year }
func (b *Book) Available() bool { return b.available }

// Borrower returns the member currently holding the book, or nil when the
// book is available. The flag and the reference always move together.
func (b *Book) Borrower() *Member { return b.borrower }

// MarkBorrowed hands the book to member. It does not check availability
// itself; Library verifies the preconditions before calling it.
func (b *Book) MarkBorrowed(m *Member) {
	b.available = false
	b.borrower = m
}

// MarkReturned clears the borrower unconditionally. Calling it twice leaves
// the same end state; Library gates the call on current unavailability.
func (b *Book) MarkReturned() {
	b.available = true
	b.borrower = nil
}
