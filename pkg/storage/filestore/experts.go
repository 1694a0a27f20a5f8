package filestore

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"

	"cosmoexpertbot/pkg/storage"
)

// Experts reads the roster file: id, handle, semicolon-separated field
// list. The roster is reference data, this store never writes it.
type Experts struct {
	path string
	mu   sync.Mutex
}

var _ storage.ExpertRoster = (*Experts)(nil)

func NewExperts(path string) *Experts {
	return &Experts{path: path}
}

func (e *Experts) FindByField(field string) (storage.Expert, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	file, err := os.Open(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return storage.Expert{}, storage.ErrUnavailable
		}
		return storage.Expert{}, fmt.Errorf("failed to open '%s': %w", e.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return storage.Expert{}, fmt.Errorf("failed to read '%s': %w", e.path, err)
	}

	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		expert := storage.Expert{
			ID:     row[0],
			Handle: row[1],
			Fields: splitFields(row[2]),
		}
		if expert.Covers(field) {
			return expert, nil
		}
	}
	return storage.Expert{}, storage.ErrNotFound
}

func splitFields(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
