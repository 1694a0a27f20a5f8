package filestore

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"sync"

	"cosmoexpertbot/pkg/storage"
)

const logTimeLayout = "2006-01-02 15:04:05"

// MessageLog appends inbound messages to a delimited log with a header
// row written on first creation.
type MessageLog struct {
	path string
	mu   sync.Mutex
}

var _ storage.MessageLog = (*MessageLog)(nil)

func NewMessageLog(path string) *MessageLog {
	ml := &MessageLog{path: path}
	if err := ml.ensureHeader(); err != nil {
		log.Printf("[NewMessageLog] Failed to create log file '%s': %v", path, err)
	}
	return ml
}

func (m *MessageLog) ensureHeader() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureHeaderLocked()
}

func (m *MessageLog) ensureHeaderLocked() error {
	if _, err := os.Stat(m.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat '%s': %w", m.path, err)
	}

	file, err := os.OpenFile(m.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create '%s': %w", m.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"username", "date_time", "message"}); err != nil {
		return fmt.Errorf("failed to write log header: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

func (m *MessageLog) Append(entry storage.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// The file may have been rotated away since construction; the
	// header must come back with it.
	if err := m.ensureHeaderLocked(); err != nil {
		return err
	}

	file, err := os.OpenFile(m.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open '%s' for append: %w", m.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	row := []string{entry.Sender, entry.Timestamp.Format(logTimeLayout), entry.Text}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write log row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush log row: %w", err)
	}
	return nil
}
