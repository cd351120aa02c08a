package gallery

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/harry7799/heng-studio/internal/database"
	"github.com/harry7799/heng-studio/internal/models"
)

// Manifest is where a gallery ordering is loaded from and saved to. Versions
// are opaque strings; an empty ifMatch saves unconditionally.
type Manifest interface {
	Load(ctx context.Context) ([]models.GalleryEntry, string, error)
	Save(ctx context.Context, entries []models.GalleryEntry, ifMatch string) (string, error)
}

// FileManifest is a JSON array of entries on disk, replaced atomically on
// save. Its version is the SHA-256 of the file content.
type FileManifest struct {
	doc *database.JSONDocument
	mu  sync.Mutex
}

func NewFileManifest(path string) *FileManifest {
	return &FileManifest{doc: database.NewJSONDocument(path, database.DocumentOptions{})}
}

func (m *FileManifest) Path() string {
	return m.doc.Path()
}

// Load returns the entries sorted by number. A missing manifest loads as an
// empty gallery with an empty version.
func (m *FileManifest) Load(ctx context.Context) ([]models.GalleryEntry, string, error) {
	raw, err := m.doc.ReadRaw()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.GalleryEntry{}, "", nil
		}
		return nil, "", err
	}
	entries, err := decodeEntries(raw)
	if err != nil {
		return nil, "", err
	}
	return sortByNumber(entries), Version(raw), nil
}

func (m *FileManifest) Save(ctx context.Context, entries []models.GalleryEntry, ifMatch string) (string, error) {
	if err := ValidateEntries(entries); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if ifMatch != "" && ifMatch != "*" {
		current, err := m.currentVersion()
		if err != nil {
			return "", err
		}
		if current != ifMatch {
			return "", models.ErrStaleManifest
		}
	}

	data, err := m.doc.Write(ctx, models.Renumber(models.CloneEntries(entries)))
	if err != nil {
		return "", fmt.Errorf("failed to save gallery manifest: %w", err)
	}
	return Version(data), nil
}

func (m *FileManifest) currentVersion() (string, error) {
	raw, err := m.doc.ReadRaw()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return Version(raw), nil
}

// Version derives a manifest version from its bytes.
func Version(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ValidateEntries requires a name and url on every entry.
func ValidateEntries(entries []models.GalleryEntry) error {
	var issues []models.Issue
	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			issues = append(issues, models.Issue{Path: "[" + strconv.Itoa(i) + "].name", Message: "is required"})
		}
		if strings.TrimSpace(e.URL) == "" {
			issues = append(issues, models.Issue{Path: "[" + strconv.Itoa(i) + "].url", Message: "is required"})
		}
	}
	if len(issues) > 0 {
		return models.NewValidationError(issues...)
	}
	return nil
}

// DecodeEntries parses a manifest payload, which must be a JSON array.
func DecodeEntries(body []byte) ([]models.GalleryEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, models.NewValidationError(models.Issue{Message: "request body must be a JSON array"})
	}
	var entries []models.GalleryEntry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, models.NewValidationError(models.Issue{Message: "malformed JSON body"})
	}
	if entries == nil {
		entries = []models.GalleryEntry{}
	}
	return entries, nil
}

func decodeEntries(raw []byte) ([]models.GalleryEntry, error) {
	var entries []models.GalleryEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode gallery manifest: %w", err)
	}
	if entries == nil {
		entries = []models.GalleryEntry{}
	}
	return entries, nil
}
