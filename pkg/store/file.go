package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/matzehuels/scrawl/pkg/errors"
)

// FileStore persists diagrams as JSON files in a data directory.
// Suited to CLI use; a process-local mutex guards concurrent access.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based diagram store.
// If baseDir is empty, defaults to ~/.local/share/scrawl/diagrams/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "get home dir")
		}
		baseDir = filepath.Join(home, ".local", "share", "scrawl", "diagrams")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create diagram dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) diagramPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

// Save inserts or replaces a diagram by id.
func (s *FileStore) Save(ctx context.Context, d *Diagram) error {
	if err := validateDiagram(d); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal diagram %s", d.ID)
	}
	if err := os.WriteFile(s.diagramPath(d.ID), data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write diagram %s", d.ID)
	}
	return nil
}

// Get retrieves a diagram by id.
func (s *FileStore) Get(ctx context.Context, id string) (*Diagram, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.diagramPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeDiagramNotFound, "diagram %s not found", id)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read diagram %s", id)
	}

	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse diagram %s", id)
	}
	return &d, nil
}

// List returns summaries of all diagrams, most recently updated first.
// Unreadable or malformed files are skipped.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read diagram dir")
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var d Diagram
		if err := json.Unmarshal(data, &d); err != nil {
			continue
		}
		summaries = append(summaries, d.Summary())
	}

	slices.SortFunc(summaries, func(a, b Summary) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return summaries, nil
}

// Delete removes a diagram.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.diagramPath(id)); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeDiagramNotFound, "diagram %s not found", id)
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "remove diagram %s", id)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

// Path returns the base directory for diagram files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
