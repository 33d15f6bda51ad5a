package library

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib := NewLibrary()
	lib.AddBook(NewBook("978-1", "Clean Code", "Robert Martin", 2008))
	lib.AddBook(NewBook("978-2", "Effective Java", "Joshua Bloch", 2017))
	lib.RegisterMember(NewMember("M1", "Alice", "alice@example.com", Regular))
	lib.RegisterMember(NewMember("M2", "Bob", "bob@example.com", Premium))
	return lib
}

func TestBorrowAndReturnRoundTrip(t *testing.T) {
	lib := newTestLibrary(t)

	if !lib.BorrowBook("M1", "978-1") {
		t.Fatalf("borrow should succeed")
	}
	book, _ := lib.Book("978-1")
	if book.Available() {
		t.Fatalf("book should be unavailable after borrow")
	}
	if book.Borrower() == nil || book.Borrower().ID() != "M1" {
		t.Fatalf("borrower should be M1")
	}

	if !lib.ReturnBook("M1", "978-1") {
		t.Fatalf("return should succeed")
	}
	if !book.Available() {
		t.Fatalf("book should be available after return")
	}
	if book.Borrower() != nil {
		t.Fatalf("borrower should be cleared after return")
	}

	member, _ := lib.Member("M1")
	if len(member.BorrowedBooks()) != 0 {
		t.Fatalf("borrowed set should be empty after return")
	}
	history := member.History()
	if len(history) != 1 || history[0].ISBN() != "978-1" {
		t.Fatalf("history should contain 978-1 exactly once, got %d entries", len(history))
	}
}

func TestBorrowUnknownIDsLeaveStateUnchanged(t *testing.T) {
	lib := newTestLibrary(t)

	if lib.BorrowBook("nobody", "978-1") {
		t.Fatalf("borrow with unknown member should fail")
	}
	if lib.BorrowBook("M1", "no-such-isbn") {
		t.Fatalf("borrow with unknown book should fail")
	}

	book, _ := lib.Book("978-1")
	if !book.Available() {
		t.Fatalf("failed borrow must not mutate the book")
	}
	if got := lib.MemberBorrowedBooks("M1"); len(got) != 0 {
		t.Fatalf("failed borrow must not mutate the member, got %d books", len(got))
	}
	member, _ := lib.Member("M1")
	if len(member.History()) != 0 {
		t.Fatalf("failed borrow must not touch history")
	}
}

func TestBorrowErrorKinds(t *testing.T) {
	lib := newTestLibrary(t)

	if err := lib.Borrow("nobody", "978-1"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("want ErrMemberNotFound, got %v", err)
	}
	if err := lib.Borrow("M1", "no-such-isbn"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("want ErrBookNotFound, got %v", err)
	}

	if err := lib.Borrow("M2", "978-1"); err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if err := lib.Borrow("M1", "978-1"); !errors.Is(err, ErrBookUnavailable) {
		t.Fatalf("want ErrBookUnavailable, got %v", err)
	}

	if err := lib.Return("M1", "978-2"); !errors.Is(err, ErrBookAlreadyAvailable) {
		t.Fatalf("want ErrBookAlreadyAvailable, got %v", err)
	}
}

func TestReturnAvailableBookChangesNothing(t *testing.T) {
	lib := newTestLibrary(t)

	if lib.ReturnBook("M1", "978-1") {
		t.Fatalf("returning an available book should fail")
	}
	book, _ := lib.Book("978-1")
	if !book.Available() {
		t.Fatalf("book state must be unchanged")
	}
}

func TestRegularMemberLimit(t *testing.T) {
	lib := NewLibrary()
	lib.RegisterMember(NewMember("M1", "Alice", "alice@example.com", Regular))
	for i := 0; i < 4; i++ {
		isbn := fmt.Sprintf("isbn-%d", i)
		lib.AddBook(NewBook(isbn, fmt.Sprintf("Book %d", i), "Author", 2000+i))
	}

	for i := 0; i < 3; i++ {
		if !lib.BorrowBook("M1", fmt.Sprintf("isbn-%d", i)) {
			t.Fatalf("borrow %d should succeed", i)
		}
	}

	member, _ := lib.Member("M1")
	if member.CanBorrow() {
		t.Fatalf("canBorrow should be false after 3 borrows")
	}
	if err := lib.Borrow("M1", "isbn-3"); !errors.Is(err, ErrBorrowLimitExceeded) {
		t.Fatalf("want ErrBorrowLimitExceeded, got %v", err)
	}
	if got := len(lib.MemberBorrowedBooks("M1")); got != 3 {
		t.Fatalf("borrowed count should stay at 3, got %d", got)
	}
}

func TestPremiumMemberLimit(t *testing.T) {
	lib := NewLibrary()
	lib.RegisterMember(NewMember("M2", "Bob", "bob@example.com", Premium))
	for i := 0; i < 6; i++ {
		lib.AddBook(NewBook(fmt.Sprintf("isbn-%d", i), fmt.Sprintf("Book %d", i), "Author", 2000+i))
	}

	for i := 0; i < 5; i++ {
		if !lib.BorrowBook("M2", fmt.Sprintf("isbn-%d", i)) {
			t.Fatalf("borrow %d should succeed", i)
		}
	}
	if lib.BorrowBook("M2", "isbn-5") {
		t.Fatalf("6th borrow should fail")
	}
	if got := len(lib.MemberBorrowedBooks("M2")); got != 5 {
		t.Fatalf("borrowed count should stay at 5, got %d", got)
	}
}

func TestAvailabilityBorrowerInvariant(t *testing.T) {
	lib := newTestLibrary(t)

	checkInvariant := func() {
		t.Helper()
		for _, b := range lib.Books() {
			holders := 0
			for _, m := range lib.Members() {
				for _, held := range m.BorrowedBooks() {
					if held.ISBN() == b.ISBN() {
						holders++
					}
				}
			}
			if b.Available() && holders != 0 {
				t.Fatalf("book %s available but held by %d member(s)", b.ISBN(), holders)
			}
			if !b.Available() {
				if holders != 1 {
					t.Fatalf("book %s unavailable but held by %d member(s)", b.ISBN(), holders)
				}
				if b.Borrower() == nil {
					t.Fatalf("book %s unavailable with no borrower", b.ISBN())
				}
			}
		}
	}

	checkInvariant()
	lib.BorrowBook("M1", "978-1")
	checkInvariant()
	lib.BorrowBook("M2", "978-2")
	checkInvariant()
	lib.ReturnBook("M1", "978-1")
	checkInvariant()
	lib.BorrowBook("M2", "978-1")
	checkInvariant()
}

func TestSearchByTitle(t *testing.T) {
	lib := newTestLibrary(t)

	results := lib.SearchByTitle("clean")
	if len(results) != 1 || results[0].Title() != "Clean Code" {
		t.Fatalf("search 'clean' should return exactly Clean Code, got %d result(s)", len(results))
	}

	if got := lib.SearchByTitle("e"); len(got) != 2 {
		t.Fatalf("search 'e' should match both books, got %d", len(got))
	}
	if got := lib.SearchByTitle("nonexistent"); len(got) != 0 {
		t.Fatalf("search with no match should return empty, got %d", len(got))
	}
}

func TestSearchByAuthor(t *testing.T) {
	lib := newTestLibrary(t)

	results := lib.SearchByAuthor("BLOCH")
	if len(results) != 1 || results[0].Author() != "Joshua Bloch" {
		t.Fatalf("author search should be case-insensitive, got %d result(s)", len(results))
	}
}

func TestMemberBorrowedBooksUnknownMember(t *testing.T) {
	lib := newTestLibrary(t)
	if got := lib.MemberBorrowedBooks("nobody"); got == nil || len(got) != 0 {
		t.Fatalf("unknown member should yield an empty sequence, got %v", got)
	}
}

func TestSilentOverwriteOnDuplicateIDs(t *testing.T) {
	lib := NewLibrary()

	lib.AddBook(NewBook("978-1", "First Edition", "Author", 2000))
	lib.AddBook(NewBook("978-1", "Second Edition", "Author", 2010))
	book, ok := lib.Book("978-1")
	if !ok || book.Title() != "Second Edition" {
		t.Fatalf("duplicate ISBN should silently overwrite")
	}

	lib.RegisterMember(NewMember("M1", "Alice", "alice@example.com", Regular))
	lib.RegisterMember(NewMember("M1", "Alicia", "alicia@example.com", Premium))
	member, ok := lib.Member("M1")
	if !ok || member.Name() != "Alicia" {
		t.Fatalf("duplicate member id should silently overwrite")
	}
}

// The return path does not verify the caller is the recorded borrower; any
// registered member can return a book that is currently out.
func TestReturnByDifferentMember(t *testing.T) {
	lib := newTestLibrary(t)

	lib.BorrowBook("M1", "978-1")
	if !lib.ReturnBook("M2", "978-1") {
		t.Fatalf("return by a different member should succeed")
	}
	book, _ := lib.Book("978-1")
	if !book.Available() {
		t.Fatalf("book should be available")
	}
	// M1 still holds the stale entry; the silent no-op removal hit M2.
	if got := len(lib.MemberBorrowedBooks("M2")); got != 0 {
		t.Fatalf("M2 should hold nothing, got %d", got)
	}
}

// The scenario from the design exercise, step by step.
func TestExampleScenario(t *testing.T) {
	lib := NewLibrary()
	lib.AddBook(NewBook("978-1", "Book One", "Author One", 2001))
	lib.AddBook(NewBook("978-2", "Book Two", "Author Two", 2002))
	lib.RegisterMember(NewMember("M1", "Alice", "alice@example.com", Regular))

	if !lib.BorrowBook("M1", "978-1") {
		t.Fatalf("first borrow should succeed")
	}
	if !lib.BorrowBook("M1", "978-2") {
		t.Fatalf("second borrow should succeed")
	}
	if lib.BorrowBook("M1", "978-1") {
		t.Fatalf("re-borrowing an unavailable book should fail")
	}
	if !lib.ReturnBook("M1", "978-1") {
		t.Fatalf("return should succeed")
	}

	borrowed := lib.MemberBorrowedBooks("M1")
	if len(borrowed) != 1 || borrowed[0].ISBN() != "978-2" {
		t.Fatalf("only 978-2 should remain borrowed, got %d book(s)", len(borrowed))
	}
}

func TestConcurrentBorrowSingleWinner(t *testing.T) {
	lib := NewLibrary()
	lib.AddBook(NewBook("978-1", "Contested", "Author", 2000))
	const members = 8
	for i := 0; i < members; i++ {
		lib.RegisterMember(NewMember(fmt.Sprintf("M%d", i), "Member", "m@example.com", Regular))
	}

	var wg sync.WaitGroup
	results := make([]bool, members)
	for i := 0; i < members; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = lib.BorrowBook(fmt.Sprintf("M%d", i), "978-1")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, ok := range results {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("exactly one borrow should win, got %d", winners)
	}
	book, _ := lib.Book("978-1")
	if book.Available() || book.Borrower() == nil {
		t.Fatalf("book should be held by the single winner")
	}
}
