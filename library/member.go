package library

// Member is a registered borrower. Identity attributes and the membership
// tier are fixed at registration; the borrowed set and the history change
// only through RecordBorrow/RecordReturn, which Library drives.
type Member struct {
	id         string
	name       string
	email      string
	membership MembershipType
	borrowed   []*Book
	history    []*Book
}

// NewMember creates a member with empty borrowed and history collections.
func NewMember(id, name, email string, membership MembershipType) *Member {
	return &Member{
		id:         id,
		name:       name,
		email:      email,
		membership: membership,
	}
}

func (m *Member) ID() string                 { return m.id }
func (m *Member) Name() string               { return m.name }
func (m *Member) Email() string              { return m.email }
func (m *Member) Membership() MembershipType { return m.membership }

// CanBorrow reports whether the member is below their tier's borrow limit.
func (m *Member) CanBorrow() bool {
	return len(m.borrowed) < m.membership.BorrowLimit()
}

// RecordBorrow appends book to the borrowed set and the history. It does not
// re-check CanBorrow; Library verifies the limit before calling it.
func (m *Member) RecordBorrow(b *Book) {
	m.borrowed = append(m.borrowed, b)
	m.history = append(m.history, b)
}

// RecordReturn removes the first entry matching book's ISBN from the
// borrowed set. The history is append-only and stays untouched. Returning a
// book the member does not hold is a silent no-op.
func (m *Member) RecordReturn(b *Book) {
	for i, held := range m.borrowed {
		if held.ISBN() == b.ISBN() {
			m.borrowed = append(m.borrowed[:i], m.borrowed[i+1:]...)
			return
		}
	}
}

// BorrowedBooks returns a copy of the currently borrowed set in borrow
// order. Mutating the returned slice does not affect the member.
func (m *Member) BorrowedBooks() []*Book {
	out := make([]*Book, len(m.borrowed))
	copy(out, m.borrowed)
	return out
}

// History returns a copy of every book the member has ever borrowed, in
// borrow order, with duplicates when a book was borrowed more than once.
func (m *Member) History() []*Book {
	out := make([]*Book, len(m.history))
	copy(out, m.history)
	return out
}
