package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/harry7799/heng-studio/internal/models"
)

// ProjectStore owns the canonical list of projects. WriteAll is the only
// mutation primitive; Update runs a read-modify-write under the store's
// single-writer lock.
type ProjectStore interface {
	ReadAll(ctx context.Context) ([]models.Project, error)
	ReadOne(ctx context.Context, id string) (models.Project, error)
	WriteAll(ctx context.Context, projects []models.Project) error
	Update(ctx context.Context, fn func([]models.Project) ([]models.Project, error)) error
	Snapshot(ctx context.Context) error
	Close() error
}

// FileProjectStore keeps projects in one JSON document on disk.
type FileProjectStore struct {
	doc *JSONDocument
	mu  sync.Mutex
}

func NewFileProjectStore(dataFile string, opts DocumentOptions) *FileProjectStore {
	if opts.BackupPrefix == "" {
		opts.BackupPrefix = "projects"
	}
	return &FileProjectStore{doc: NewJSONDocument(dataFile, opts)}
}

func (s *FileProjectStore) Document() *JSONDocument {
	return s.doc
}

// ReadAll returns a fresh copy of every project. A missing document is
// created as an empty list.
func (s *FileProjectStore) ReadAll(ctx context.Context) ([]models.Project, error) {
	projects, exists, err := s.load()
	if err != nil {
		return nil, err
	}
	if exists {
		return projects, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	projects, exists, err = s.load()
	if err != nil {
		return nil, err
	}
	if !exists {
		if _, err := s.doc.Write(ctx, []models.Project{}); err != nil {
			return nil, fmt.Errorf("failed to initialize project store: %w", err)
		}
	}
	return projects, nil
}

func (s *FileProjectStore) ReadOne(ctx context.Context, id string) (models.Project, error) {
	projects, err := s.ReadAll(ctx)
	if err != nil {
		return models.Project{}, err
	}
	for _, p := range projects {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Project{}, models.ErrNotFound
}

func (s *FileProjectStore) WriteAll(ctx context.Context, projects []models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(ctx, projects)
}

func (s *FileProjectStore) Update(ctx context.Context, fn func([]models.Project) ([]models.Project, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _, err := s.load()
	if err != nil {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.writeLocked(ctx, next)
}

// Snapshot takes an out-of-band backup of the current document.
func (s *FileProjectStore) Snapshot(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.doc.Backup(ctx)
	return err
}

func (s *FileProjectStore) Close() error {
	return nil
}

func (s *FileProjectStore) writeLocked(ctx context.Context, projects []models.Project) error {
	if projects == nil {
		projects = []models.Project{}
	}
	_, err := s.doc.Write(ctx, projects)
	return err
}

func (s *FileProjectStore) load() ([]models.Project, bool, error) {
	raw, err := s.doc.ReadRaw()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Project{}, false, nil
		}
		return nil, false, err
	}
	projects, err := decodeProjects(raw)
	if err != nil {
		return nil, true, err
	}
	return projects, true, nil
}

// decodeProjects treats any non-array document as empty.
func decodeProjects(raw []byte) ([]models.Project, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []models.Project{}, nil
	}
	var projects []models.Project
	if err := json.Unmarshal(trimmed, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode project store: %w", err)
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}
