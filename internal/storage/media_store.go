package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/harry7799/heng-studio/internal/models"
)

const (
	DefaultMaxUploadBytes int64 = 15 << 20
	PublicPrefix                = "/uploads/"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".avif": true,
}

// MediaStore is a flat directory of uploaded images served under /uploads/.
// File names are always generated server side.
type MediaStore struct {
	dir      string
	maxBytes int64
}

func NewMediaStore(dir string, maxBytes int64) *MediaStore {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &MediaStore{dir: dir, maxBytes: maxBytes}
}

// List returns every stored file, most recently modified first.
func (m *MediaStore) List(ctx context.Context) ([]models.MediaItem, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	items := make([]models.MediaItem, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		items = append(items, models.MediaItem{
			Name:    e.Name(),
			URL:     PublicURL(e.Name()),
			Size:    info.Size(),
			MtimeMs: info.ModTime().UnixMilli(),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].MtimeMs != items[j].MtimeMs {
			return items[i].MtimeMs > items[j].MtimeMs
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// CheckUpload validates the declared content type and the extension of the
// client's file name, returning the normalized extension to store under.
func CheckUpload(originalName, contentType string) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if !strings.HasPrefix(ct, "image/") {
		return "", &models.UploadRejectedError{Reason: "only image uploads are allowed"}
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", &models.UploadRejectedError{Reason: "unsupported file extension"}
	}
	return ext, nil
}

// Save streams r into a fresh file. The payload is written to a hidden
// temporary file first and only renamed into place once it is known to fit
// within the size limit.
func (m *MediaStore) Save(ctx context.Context, originalName, contentType string, r io.Reader) (models.MediaItem, error) {
	ext, err := CheckUpload(originalName, contentType)
	if err != nil {
		return models.MediaItem{}, err
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return models.MediaItem{}, fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(m.dir, ".upload-*.tmp")
	if err != nil {
		return models.MediaItem{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	n, err := io.Copy(tmp, io.LimitReader(r, m.maxBytes+1))
	if err != nil {
		cleanup()
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return models.MediaItem{}, &models.UploadRejectedError{Reason: "file too large"}
		}
		return models.MediaItem{}, fmt.Errorf("failed to write upload: %w", err)
	}
	if n > m.maxBytes {
		cleanup()
		return models.MediaItem{}, &models.UploadRejectedError{Reason: "file too large"}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return models.MediaItem{}, fmt.Errorf("failed to close upload: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return models.MediaItem{}, fmt.Errorf("failed to chmod upload: %w", err)
	}

	name := uuid.NewString() + ext
	finalPath := filepath.Join(m.dir, name)
	if err := os.Rename(tmpName, finalPath); err != nil {
		os.Remove(tmpName)
		return models.MediaItem{}, fmt.Errorf("failed to store upload: %w", err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return models.MediaItem{}, fmt.Errorf("failed to stat upload: %w", err)
	}
	return models.MediaItem{
		Name:    name,
		URL:     PublicURL(name),
		Size:    info.Size(),
		MtimeMs: info.ModTime().UnixMilli(),
	}, nil
}

// Open returns a reader for a stored file, for mirroring to remote storage.
func (m *MediaStore) Open(name string) (*os.File, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("invalid media name %q", name)
	}
	return os.Open(filepath.Join(m.dir, name))
}

func PublicURL(name string) string {
	return PublicPrefix + url.PathEscape(name)
}
