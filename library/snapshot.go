package library

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BookRecord is the serialized form of a Book. BorrowerID is empty when the
// book is available.
type BookRecord struct {
	ISBN       string `json:"isbn"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       int    `json:"year"`
	Available  bool   `json:"available"`
	BorrowerID string `json:"borrower_id,omitempty"`
}

// MemberRecord is the serialized form of a Member. Borrowed and History hold
// ISBNs in borrow order.
type MemberRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Membership string   `json:"membership"`
	Borrowed   []string `json:"borrowed,omitempty"`
	History    []string `json:"history,omitempty"`
}

// Snapshot is the complete library state in serializable form. It is what
// the SQLite store persists and what export/import move as JSON.
type Snapshot struct {
	Books   []BookRecord   `json:"books"`
	Members []MemberRecord `json:"members"`
}

// Snapshot captures the current state under a single critical section.
// Books and members are emitted in key order so two snapshots of the same
// state compare equal.
func (l *Library) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := &Snapshot{
		Books:   make([]BookRecord, 0, len(l.books)),
		Members: make([]MemberRecord, 0, len(l.members)),
	}

	for _, b := range l.booksSorted() {
		rec := BookRecord{
			ISBN:      b.ISBN(),
			Title:     b.Title(),
			Author:    b.Author(),
			Year:      b.Year(),
			Available: b.Available(),
		}
		if borrower := b.Borrower(); borrower != nil {
			rec.BorrowerID = borrower.ID()
		}
		snap.Books = append(snap.Books, rec)
	}

	for _, m := range l.membersSorted() {
		rec := MemberRecord{
			ID:         m.ID(),
			Name:       m.Name(),
			Email:      m.Email(),
			Membership: m.Membership().TypeName(),
		}
		for _, b := range m.BorrowedBooks() {
			rec.Borrowed = append(rec.Borrowed, b.ISBN())
		}
		for _, b := range m.History() {
			rec.History = append(rec.History, b.ISBN())
		}
		snap.Members = append(snap.Members, rec)
	}

	return snap
}

// RestoreLibrary rebuilds a Library from a snapshot. Circulation state comes
// from the book records' borrower ids; each member's borrowed and history
// lists are kept verbatim, stale entries included, since a return by a
// different member legally leaves the real borrower with a stale holding.
// It fails only on records no library can represent: an unknown membership
// tier, an ISBN absent from the catalog, a member holding more books than
// their tier allows, or a borrower id naming no member.
func RestoreLibrary(snap *Snapshot) (*Library, error) {
	lib := NewLibrary()

	for _, rec := range snap.Books {
		lib.books[rec.ISBN] = NewBook(rec.ISBN, rec.Title, rec.Author, rec.Year)
	}

	for _, rec := range snap.Members {
		tier, err := ParseMembershipType(rec.Membership)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", rec.ID, err)
		}
		if len(rec.Borrowed) > tier.BorrowLimit() {
			return nil, fmt.Errorf("member %s holds %d books, over the %s limit of %d",
				rec.ID, len(rec.Borrowed), tier.TypeName(), tier.BorrowLimit())
		}
		member := NewMember(rec.ID, rec.Name, rec.Email, tier)

		for _, isbn := range rec.Borrowed {
			book, ok := lib.books[isbn]
			if !ok {
				return nil, fmt.Errorf("member %s borrowed unknown book %s", rec.ID, isbn)
			}
			member.borrowed = append(member.borrowed, book)
		}
		for _, isbn := range rec.History {
			book, ok := lib.books[isbn]
			if !ok {
				return nil, fmt.Errorf("member %s history has unknown book %s", rec.ID, isbn)
			}
			member.history = append(member.history, book)
		}

		lib.members[rec.ID] = member
	}

	for _, rec := range snap.Books {
		if rec.BorrowerID == "" {
			continue
		}
		member, ok := lib.members[rec.BorrowerID]
		if !ok {
			return nil, fmt.Errorf("book %s: borrower %s is not a registered member", rec.ISBN, rec.BorrowerID)
		}
		book := lib.books[rec.ISBN]
		book.available = false
		book.borrower = member
	}

	return lib, nil
}

// WriteTo encodes the snapshot as indented JSON.
func (s *Snapshot) WriteTo(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ReadSnapshot decodes a snapshot previously written with WriteTo.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
