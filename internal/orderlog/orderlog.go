// Package orderlog keeps a best-effort SQLite journal of the order markers
// the assistant emits. The journal is decoupled from inventory: it records
// the signal, it does not mutate stock.
package orderlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"BukuBot/internal/order"
)

// Journal writes detected orders to SQLite.
type Journal struct {
	db *sql.DB
}

// Entry is one journaled order.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Customer  string    `json:"customer"`
	Title     string    `json:"title"`
	Quantity  int       `json:"quantity"`
	Raw       string    `json:"raw"`
	CreatedAt time.Time `json:"created_at"`
}

// Open opens (or creates) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open order database: %w", err)
	}

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		customer TEXT,
		title TEXT,
		quantity INTEGER,
		raw TEXT,
		created_at DATETIME
	);`

	if _, err := db.Exec(createOrdersTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create orders table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record journals one parsed order for the given session.
func (j *Journal) Record(sessionID string, o order.Order) error {
	_, err := j.db.Exec(
		"INSERT INTO orders (session_id, customer, title, quantity, raw, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		sessionID, o.Customer, o.Title, o.Quantity, o.Raw, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record order: %w", err)
	}
	return nil
}

// Recent returns up to limit journaled orders, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	rows, err := j.db.Query(
		"SELECT id, session_id, customer, title, quantity, raw, created_at FROM orders ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Customer, &e.Title, &e.Quantity, &e.Raw, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
