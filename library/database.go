package library

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteCodec keeps the catalog in a SQLite database. Store order lives in
// an explicit position column.
type SQLiteCodec struct {
	db *sql.DB

	insertBookStmt *sql.Stmt
}

// NewSQLiteCodec opens (or creates) the SQLite database at dbPath, applies
// schema migrations, and prepares common statements.
func NewSQLiteCodec(dbPath string) (*SQLiteCodec, error) {
	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", ErrIOUnavailable, err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}

	codec := &SQLiteCodec{db: db}
	if err := codec.prepareStatements(); err != nil {
		codec.Close()
		return nil, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	return codec, nil
}

// Close releases prepared statements and closes the DB.
func (d *SQLiteCodec) Close() error {
	if d.insertBookStmt != nil {
		d.insertBookStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	err := db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS books (
            position INTEGER PRIMARY KEY,
            id INTEGER NOT NULL UNIQUE,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            issued BOOLEAN NOT NULL DEFAULT 0,
            issued_to TEXT NOT NULL DEFAULT '',
            due_date TEXT NOT NULL DEFAULT 'N/A',
            times_issued INTEGER NOT NULL DEFAULT 0
        );`); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *SQLiteCodec) prepareStatements() error {
	var err error
	d.insertBookStmt, err = d.db.Prepare(`INSERT INTO books(position,id,title,author,issued,issued_to,due_date,times_issued)
        VALUES(?,?,?,?,?,?,?,?)`)
	return err
}

// ---------------------------------------------------------------------------
// Codec
// ---------------------------------------------------------------------------

// Save replaces every row in one transaction.
func (d *SQLiteCodec) Save(books []Book) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM books`); err != nil {
		return fmt.Errorf("%w: clear books: %v", ErrIOUnavailable, err)
	}
	stmt := tx.Stmt(d.insertBookStmt)
	defer stmt.Close()
	for i, b := range books {
		if _, err := stmt.Exec(i, b.ID, b.Title, b.Author, b.Issued, b.IssuedTo, b.DueDate, b.TimesIssued); err != nil {
			return fmt.Errorf("%w: insert book %d: %v", ErrIOUnavailable, b.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	return nil
}

// Load returns all books ordered by position.
func (d *SQLiteCodec) Load() ([]Book, error) {
	rows, err := d.db.Query(`SELECT id,title,author,issued,issued_to,due_date,times_issued FROM books ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Issued, &b.IssuedTo, &b.DueDate, &b.TimesIssued); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOUnavailable, err)
	}
	return books, nil
}
