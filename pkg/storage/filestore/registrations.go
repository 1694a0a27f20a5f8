package filestore

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"cosmoexpertbot/pkg/storage"
)

// Registrations appends completed questionnaires to a delimited table,
// one row per record: name, surname, field, first question, handle.
type Registrations struct {
	path string
	mu   sync.Mutex
}

var _ storage.RegistrationRepo = (*Registrations)(nil)

func NewRegistrations(path string) *Registrations {
	return &Registrations{path: path}
}

func (r *Registrations) Append(rec storage.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open '%s' for append: %w", r.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{rec.Name, rec.LastName, rec.Field, rec.FirstQuestion, rec.Handle}); err != nil {
		return fmt.Errorf("failed to write registration row: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush registration row: %w", err)
	}
	return nil
}

func (r *Registrations) FindByHandle(handle string) (storage.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.Registration{}, storage.ErrUnavailable
		}
		return storage.Registration{}, fmt.Errorf("failed to open '%s': %w", r.path, err)
	}
	defer file.Close()

	want := storage.NormalizeHandle(handle)

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return storage.Registration{}, fmt.Errorf("failed to read '%s': %w", r.path, err)
	}

	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		if storage.NormalizeHandle(row[4]) == want {
			return storage.Registration{
				Name:          row[0],
				LastName:      row[1],
				Field:         row[2],
				FirstQuestion: row[3],
				Handle:        row[4],
			}, nil
		}
	}
	return storage.Registration{}, storage.ErrNotFound
}
