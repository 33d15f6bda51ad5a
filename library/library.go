package library

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Library is the registry of books and members and the only component that
// mutates both sides of a loan. Every exported operation takes the single
// mutex for its full duration so the check-then-act sequences in Borrow and
// Return stay atomic under concurrent callers.
type Library struct {
	mu      sync.Mutex
	books   map[string]*Book
	members map[string]*Member
}

// NewLibrary creates an empty registry.
func NewLibrary() *Library {
	return &Library{
		books:   make(map[string]*Book),
		members: make(map[string]*Member),
	}
}

// AddBook inserts book into the catalog keyed by its ISBN. An existing entry
// with the same ISBN is silently overwritten.
func (l *Library) AddBook(b *Book) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.books[b.ISBN()] = b
}

// RegisterMember inserts member keyed by its id, silently overwriting any
// existing entry with the same id.
func (l *Library) RegisterMember(m *Member) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.members[m.ID()] = m
}

// Borrow lends the book to the member, reporting exactly which precondition
// failed. All preconditions are re-evaluated on every call and the two-entity
// mutation happens only after every check has passed, so a failed call leaves
// all state unchanged.
func (l *Library) Borrow(memberID, isbn string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	member, ok := l.members[memberID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}
	book, ok := l.books[isbn]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBookNotFound, isbn)
	}
	if !book.Available() {
		return fmt.Errorf("%w: %s", ErrBookUnavailable, isbn)
	}
	if !member.CanBorrow() {
		return fmt.Errorf("%w: %s holds %d of %d", ErrBorrowLimitExceeded,
			memberID, len(member.borrowed), member.Membership().BorrowLimit())
	}

	book.MarkBorrowed(member)
	member.RecordBorrow(book)
	return nil
}

// BorrowBook is the boolean form of Borrow: true on success, false for any
// failure without distinguishing the cause.
func (l *Library) BorrowBook(memberID, isbn string) bool {
	return l.Borrow(memberID, isbn) == nil
}

// Return takes the book back from circulation. It does not verify that
// memberID is the recorded borrower; any known member id passes as long as
// the book is currently out.
func (l *Library) Return(memberID, isbn string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	member, ok := l.members[memberID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrMemberNotFound, memberID)
	}
	book, ok := l.books[isbn]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBookNotFound, isbn)
	}
	if book.Available() {
		return fmt.Errorf("%w: %s", ErrBookAlreadyAvailable, isbn)
	}

	book.MarkReturned()
	member.RecordReturn(book)
	return nil
}

// ReturnBook is the boolean form of Return.
func (l *Library) ReturnBook(memberID, isbn string) bool {
	return l.Return(memberID, isbn) == nil
}

// SearchByTitle returns the books whose title contains fragment,
// case-insensitively. Each call computes a fresh snapshot in unspecified
// order.
func (l *Library) SearchByTitle(fragment string) []*Book {
	return l.search(fragment, (*Book).Title)
}

// SearchByAuthor is SearchByTitle over the author attribute.
func (l *Library) SearchByAuthor(fragment string) []*Book {
	return l.search(fragment, (*Book).Author)
}

func (l *Library) search(fragment string, attr func(*Book) string) []*Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	needle := strings.ToLower(fragment)
	matches := make([]*Book, 0)
	for _, b := range l.books {
		if strings.Contains(strings.ToLower(attr(b)), needle) {
			matches = append(matches, b)
		}
	}
	return matches
}

// MemberBorrowedBooks returns a snapshot of the member's current holdings.
// An unknown member id yields an empty sequence, not an error.
func (l *Library) MemberBorrowedBooks(memberID string) []*Book {
	l.mu.Lock()
	defer l.mu.Unlock()

	member, ok := l.members[memberID]
	if !ok {
		return []*Book{}
	}
	return member.BorrowedBooks()
}

// Book looks up a catalog entry by ISBN.
func (l *Library) Book(isbn string) (*Book, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.books[isbn]
	return b, ok
}

// Member looks up a registered member by id.
func (l *Library) Member(id string) (*Member, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.members[id]
	return m, ok
}

// Books returns the whole catalog sorted by ISBN, for listings.
func (l *Library) Books() []*Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.booksSorted()
}

// Members returns all registered members sorted by id, for listings.
func (l *Library) Members() []*Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.membersSorted()
}

func (l *Library) booksSorted() []*Book {
	out := make([]*Book, 0, len(l.books))
	for _, b := range l.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISBN() < out[j].ISBN() })
	return out
}

func (l *Library) membersSorted() []*Member {
	out := make([]*Member, 0, len(l.members))
	for _, m := range l.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
