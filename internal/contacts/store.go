// Package contacts persists the user's contact book in a local sqlite
// database.
package contacts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"eva/internal/logger"
)

// ErrNotFound is returned when no contact matches a lookup.
var ErrNotFound = errors.New("contact not found")

// Contact is one address-book entry.
type Contact struct {
	Name  string
	Email string
}

// Store wraps the contacts database.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its parent directory) if needed
// and prepares the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create contacts dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open contacts db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS contacts (
		name  TEXT PRIMARY KEY,
		email TEXT NOT NULL
	);`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create contacts table: %w", err)
	}

	logger.Debug("contacts: opened store at %s", path)
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ErrInvalidEmail is returned when the address fails basic parsing.
var ErrInvalidEmail = errors.New("invalid email address")

// Upsert inserts or replaces a contact. Names are stored lowercased so
// lookups are case insensitive.
func (s *Store) Upsert(ctx context.Context, name, email string) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return errors.New("empty contact name")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contacts (name, email) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET email = excluded.email;`,
		key, strings.TrimSpace(email))
	if err != nil {
		return fmt.Errorf("upsert contact %q: %w", name, err)
	}
	return nil
}

// All returns every contact, sorted by name.
func (s *Store) All(ctx context.Context) ([]Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, email FROM contacts ORDER BY name;`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.Name, &c.Email); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a contact by name and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE name = ?;`,
		strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return false, fmt.Errorf("delete contact %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EmailFor resolves a name to an address. An exact (case-insensitive)
// match wins; otherwise a unique substring match is accepted.
func (s *Store) EmailFor(ctx context.Context, name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	var email string
	err := s.db.QueryRowContext(ctx, `SELECT email FROM contacts WHERE name = ?;`, key).Scan(&email)
	if err == nil {
		return email, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup contact %q: %w", name, err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT email FROM contacts WHERE name LIKE ?;`, "%"+key+"%")
	if err != nil {
		return "", fmt.Errorf("lookup contact %q: %w", name, err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return "", err
		}
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(matches) == 1 {
		return matches[0], nil
	}
	return "", ErrNotFound
}
