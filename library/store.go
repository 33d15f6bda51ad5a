package library

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Store persists Library snapshots in a SQLite database. The registry itself
// stays in memory; the CLI loads a Library from the store, runs one
// operation, and saves the result back.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenStore opens (or creates) the SQLite database at path and applies
// schema migrations. A nil logger disables logging.
func OpenStore(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("store opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

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
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            membership TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS books (
            isbn TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            year INTEGER NOT NULL,
            available BOOLEAN NOT NULL DEFAULT 1,
            borrower_id TEXT REFERENCES members(id)
        );`,
		// Current holdings per member, in borrow order.
		`CREATE TABLE IF NOT EXISTS holdings (
            member_id TEXT NOT NULL REFERENCES members(id),
            isbn TEXT NOT NULL REFERENCES books(isbn),
            position INTEGER NOT NULL,
            PRIMARY KEY (member_id, position)
        );`,
		// Full borrowing history per member, append-only, duplicates allowed.
		`CREATE TABLE IF NOT EXISTS loans (
            member_id TEXT NOT NULL REFERENCES members(id),
            isbn TEXT NOT NULL REFERENCES books(isbn),
            position INTEGER NOT NULL,
            PRIMARY KEY (member_id, position)
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

// Save replaces the stored state with a snapshot of lib, in one transaction.
func (s *Store) Save(lib *Library) error {
	snap := lib.Snapshot()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"holdings", "loans", "books", "members"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertMember, err := tx.Prepare(`INSERT INTO members(id,name,email,membership) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer insertMember.Close()
	for _, m := range snap.Members {
		if _, err := insertMember.Exec(m.ID, m.Name, m.Email, m.Membership); err != nil {
			return fmt.Errorf("save member %s: %w", m.ID, err)
		}
	}

	insertBook, err := tx.Prepare(`INSERT INTO books(isbn,title,author,year,available,borrower_id) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer insertBook.Close()
	for _, b := range snap.Books {
		borrower := sql.NullString{String: b.BorrowerID, Valid: b.BorrowerID != ""}
		if _, err := insertBook.Exec(b.ISBN, b.Title, b.Author, b.Year, b.Available, borrower); err != nil {
			return fmt.Errorf("save book %s: %w", b.ISBN, err)
		}
	}

	insertHolding, err := tx.Prepare(`INSERT INTO holdings(member_id,isbn,position) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer insertHolding.Close()
	insertLoan, err := tx.Prepare(`INSERT INTO loans(member_id,isbn,position) VALUES(?,?,?)`)
	if err != nil {
		return err
	}
	defer insertLoan.Close()

	for _, m := range snap.Members {
		for i, isbn := range m.Borrowed {
			if _, err := insertHolding.Exec(m.ID, isbn, i); err != nil {
				return fmt.Errorf("save holding %s/%s: %w", m.ID, isbn, err)
			}
		}
		for i, isbn := range m.History {
			if _, err := insertLoan.Exec(m.ID, isbn, i); err != nil {
				return fmt.Errorf("save loan %s/%s: %w", m.ID, isbn, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("library saved",
		zap.Int("books", len(snap.Books)),
		zap.Int("members", len(snap.Members)))
	return nil
}

// Load reads the stored state and rebuilds a Library from it. An empty
// database yields an empty Library.
func (s *Store) Load() (*Library, error) {
	snap := &Snapshot{}

	rows, err := s.db.Query(`SELECT isbn,title,author,year,available,COALESCE(borrower_id,'') FROM books ORDER BY isbn`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b BookRecord
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Author, &b.Year, &b.Available, &b.BorrowerID); err != nil {
			return nil, err
		}
		snap.Books = append(snap.Books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	memberRows, err := s.db.Query(`SELECT id,name,email,membership FROM members ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var m MemberRecord
		if err := memberRows.Scan(&m.ID, &m.Name, &m.Email, &m.Membership); err != nil {
			return nil, err
		}
		snap.Members = append(snap.Members, m)
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}

	for i := range snap.Members {
		m := &snap.Members[i]
		if m.Borrowed, err = s.loadSequence("holdings", m.ID); err != nil {
			return nil, err
		}
		if m.History, err = s.loadSequence("loans", m.ID); err != nil {
			return nil, err
		}
	}

	lib, err := RestoreLibrary(snap)
	if err != nil {
		return nil, fmt.Errorf("restore library: %w", err)
	}
	s.log.Info("library loaded",
		zap.Int("books", len(snap.Books)),
		zap.Int("members", len(snap.Members)))
	return lib, nil
}

func (s *Store) loadSequence(table, memberID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT isbn FROM `+table+` WHERE member_id=? ORDER BY position`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var isbns []string
	for rows.Next() {
		var isbn string
		if err := rows.Scan(&isbn); err != nil {
			return nil, err
		}
		isbns = append(isbns, isbn)
	}
	return isbns, rows.Err()
}
