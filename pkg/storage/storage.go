package storage

import (
	"errors"
	"strings"
	"time"
)

// Package storage defines the repository contracts behind the
// conversation core. Engines (flat files, sqlite) implement these so the
// core never touches a concrete backend.

// ErrNotFound reports a lookup miss in any repository.
var ErrNotFound = errors.New("storage: record not found")

// ErrUnavailable reports a missing backing resource (absent table/file).
var ErrUnavailable = errors.New("storage: backend unavailable")

// Registration is a completed questionnaire. Immutable once appended.
type Registration struct {
	Name          string
	LastName      string
	Field         string
	FirstQuestion string
	Handle        string
}

// Expert is a read-only roster entry.
type Expert struct {
	ID     string
	Handle string
	Fields []string
}

// Covers reports whether the expert's field list contains the field.
func (e Expert) Covers(field string) bool {
	for _, f := range e.Fields {
		if strings.EqualFold(strings.TrimSpace(f), strings.TrimSpace(field)) {
			return true
		}
	}
	return false
}

// LogEntry is one inbound message, recorded regardless of gate outcome.
type LogEntry struct {
	Sender    string
	Timestamp time.Time
	Text      string
}

// ChatDirectory tracks every chat id that ever sent /start.
type ChatDirectory interface {
	// Add records the chat id; adding a known id is a no-op.
	Add(chatID int64) error
	All() ([]int64, error)
}

// RegistrationRepo is the append-only registration table.
type RegistrationRepo interface {
	Append(rec Registration) error
	// FindByHandle matches case-insensitively with the leading marker
	// stripped from both sides. Returns ErrNotFound on a miss and
	// ErrUnavailable when the table itself is absent.
	FindByHandle(handle string) (Registration, error)
}

// ExpertRoster is the read-only expert reference table.
type ExpertRoster interface {
	// FindByField returns the first expert covering the field, in
	// roster order. Returns ErrNotFound on a miss and ErrUnavailable
	// when the roster is absent.
	FindByField(field string) (Expert, error)
}

// MessageLog is the append-only inbound message log.
type MessageLog interface {
	Append(entry LogEntry) error
}

// NormalizeHandle lowercases a handle and strips the leading @ so
// lookups match regardless of how the handle was written.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
