// Package sqlitestore implements the storage repositories on a single
// SQLite database, for deployments that outgrow the flat files.
package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cosmoexpertbot/pkg/storage"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS chats (
    chat_id INTEGER PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS registrations (
    name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    field TEXT NOT NULL,
    first_question TEXT NOT NULL,
    handle TEXT NOT NULL,
    handle_key TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS experts (
    id TEXT NOT NULL,
    handle TEXT NOT NULL,
    fields TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS message_log (
    sender TEXT NOT NULL,
    logged_at TEXT NOT NULL,
    message TEXT NOT NULL
);
`

// Store owns the database handle; the repository views share it.
type Store struct {
	db *sql.DB
}

// New opens (creating if necessary) the database at dsn and applies the
// schema.
func New(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("sqlitestore: DSN not set")
	}
	if dir := filepath.Dir(dsn); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Directory() storage.ChatDirectory { return directory{s.db} }

func (s *Store) Registrations() storage.RegistrationRepo { return registrations{s.db} }

func (s *Store) Experts() storage.ExpertRoster { return experts{s.db} }

func (s *Store) MessageLog() storage.MessageLog { return messageLog{s.db} }

// AddExpert seeds the roster. Intended for migrations and tests, the
// conversation core only reads experts.
func (s *Store) AddExpert(expert storage.Expert) error {
	_, err := s.db.Exec(
		`INSERT INTO experts (id, handle, fields) VALUES (?, ?, ?)`,
		expert.ID, expert.Handle, strings.Join(expert.Fields, ";"),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expert %s: %w", expert.Handle, err)
	}
	return nil
}

type directory struct{ db *sql.DB }

var _ storage.ChatDirectory = directory{}

func (d directory) Add(chatID int64) error {
	_, err := d.db.Exec(`INSERT OR IGNORE INTO chats (chat_id) VALUES (?)`, chatID)
	if err != nil {
		return fmt.Errorf("failed to insert chat %d: %w", chatID, err)
	}
	return nil
}

func (d directory) All() ([]int64, error) {
	rows, err := d.db.Query(`SELECT chat_id FROM chats ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chat id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type registrations struct{ db *sql.DB }

var _ storage.RegistrationRepo = registrations{}

func (r registrations) Append(rec storage.Registration) error {
	_, err := r.db.Exec(
		`INSERT INTO registrations (name, last_name, field, first_question, handle, handle_key) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Name, rec.LastName, rec.Field, rec.FirstQuestion, rec.Handle, storage.NormalizeHandle(rec.Handle),
	)
	if err != nil {
		return fmt.Errorf("failed to insert registration for %s: %w", rec.Handle, err)
	}
	return nil
}

func (r registrations) FindByHandle(handle string) (storage.Registration, error) {
	row := r.db.QueryRow(
		`SELECT name, last_name, field, first_question, handle FROM registrations WHERE handle_key = ?`,
		storage.NormalizeHandle(handle),
	)

	var rec storage.Registration
	err := row.Scan(&rec.Name, &rec.LastName, &rec.Field, &rec.FirstQuestion, &rec.Handle)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Registration{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Registration{}, fmt.Errorf("failed to query registration: %w", err)
	}
	return rec, nil
}

type experts struct{ db *sql.DB }

var _ storage.ExpertRoster = experts{}

func (e experts) FindByField(field string) (storage.Expert, error) {
	rows, err := e.db.Query(`SELECT id, handle, fields FROM experts ORDER BY rowid`)
	if err != nil {
		return storage.Expert{}, fmt.Errorf("failed to query experts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expert storage.Expert
		var fields string
		if err := rows.Scan(&expert.ID, &expert.Handle, &fields); err != nil {
			return storage.Expert{}, fmt.Errorf("failed to scan expert: %w", err)
		}
		for _, f := range strings.Split(fields, ";") {
			if trimmed := strings.TrimSpace(f); trimmed != "" {
				expert.Fields = append(expert.Fields, trimmed)
			}
		}
		if expert.Covers(field) {
			return expert, nil
		}
	}
	if err := rows.Err(); err != nil {
		return storage.Expert{}, err
	}
	return storage.Expert{}, storage.ErrNotFound
}

type messageLog struct{ db *sql.DB }

var _ storage.MessageLog = messageLog{}

func (m messageLog) Append(entry storage.LogEntry) error {
	_, err := m.db.Exec(
		`INSERT INTO message_log (sender, logged_at, message) VALUES (?, ?, ?)`,
		entry.Sender, entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Text,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log entry: %w", err)
	}
	return nil
}
