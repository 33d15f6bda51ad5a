// seedcatalog rebuilds library.db from scratch with a starter catalog and a
// pair of demo members, for trying the CLI out without typing in data.
package main

import (
	"fmt"
	"os"
	"strings"

	"library-lending/library"
)

const dbFile = "library.db"

type seedBook struct {
	isbn   string
	title  string
	author string
	year   int
}

var catalog = []seedBook{
	{"978-0134685991", "Effective Java", "Joshua Bloch", 2017},
	{"978-0132350884", "Clean Code", "Robert Martin", 2008},
	{"978-0201633610", "Design Patterns", "Erich Gamma", 1994},
	{"978-0135957059", "The Pragmatic Programmer", "David Thomas", 2019},
	{"978-0451524935", "1984", "George Orwell", 1949},
	{"978-0547928227", "The Hobbit", "J.R.R. Tolkien", 1937},
	{"978-0743273565", "The Great Gatsby", "F. Scott Fitzgerald", 1925},
	{"978-0141439518", "Pride and Prejudice", "Jane Austen", 1813},
}

func main() {
	// Start from a clean slate, WAL sidecars included.
	fmt.Println("Cleaning up existing database files...")
	for _, file := range []string{dbFile, dbFile + "-shm", dbFile + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}

	store, err := library.OpenStore(dbFile, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	lib := library.NewLibrary()
	for _, b := range catalog {
		lib.AddBook(library.NewBook(b.isbn, b.title, b.author, b.year))
		fmt.Printf("Seeded: %s by %s (%s)\n", b.title, b.author, b.isbn)
	}

	lib.RegisterMember(library.NewMember("M001", "Alice", "alice@example.com", library.Regular))
	lib.RegisterMember(library.NewMember("M002", "Bob", "bob@example.com", library.Premium))
	fmt.Println("Seeded members M001 (Regular) and M002 (Premium)")

	if err := store.Save(lib); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving library: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nSeed complete: %d books, %d members\n", len(lib.Books()), len(lib.Members()))
	fmt.Printf("%-16s %-35s %-25s\n", "ISBN", "Title", "Author")
	fmt.Println(strings.Repeat("-", 80))
	for _, b := range lib.Books() {
		fmt.Printf("%-16s %-35s %-25s\n", b.ISBN(), b.Title(), b.Author())
	}
}
