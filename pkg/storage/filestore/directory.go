package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Directory keeps the known chat ids as a flat JSON array, matching the
// human-inspectable layout the operators expect.
type Directory struct {
	path string
	mu   sync.Mutex
}

func NewDirectory(path string) *Directory {
	return &Directory{path: path}
}

func (d *Directory) Add(chatID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids, err := d.load()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == chatID {
			return nil
		}
	}
	ids = append(ids, chatID)

	data, err := json.MarshalIndent(ids, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal chat ids: %w", err)
	}
	if err := os.WriteFile(d.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", d.path, err)
	}
	return nil
}

func (d *Directory) All() ([]int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load()
}

func (d *Directory) load() ([]int64, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read '%s': %w", d.path, err)
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal '%s': %w", d.path, err)
	}
	return ids, nil
}
