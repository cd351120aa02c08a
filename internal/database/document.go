package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harry7799/heng-studio/internal/logging"
)

const DefaultBackupRetention = 20

// DocumentOptions configures backups for a JSONDocument. An empty BackupDir
// disables backups.
type DocumentOptions struct {
	BackupDir    string
	BackupPrefix string
	Retention    int
	Now          func() time.Time
}

// JSONDocument is a single JSON file that is replaced atomically on every
// write: the new content goes to a temporary file in the same directory which
// is then renamed over the canonical path.
type JSONDocument struct {
	path         string
	backupDir    string
	backupPrefix string
	retention    int
	now          func() time.Time

	stampMu   sync.Mutex
	lastStamp time.Time
}

func NewJSONDocument(path string, opts DocumentOptions) *JSONDocument {
	prefix := opts.BackupPrefix
	if prefix == "" {
		prefix = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	retention := opts.Retention
	if retention <= 0 {
		retention = DefaultBackupRetention
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &JSONDocument{
		path:         path,
		backupDir:    opts.BackupDir,
		backupPrefix: prefix,
		retention:    retention,
		now:          now,
	}
}

func (d *JSONDocument) Path() string {
	return d.path
}

// ReadRaw returns the current file content. A missing file is reported with
// an error satisfying errors.Is(err, os.ErrNotExist).
func (d *JSONDocument) ReadRaw() ([]byte, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", d.path, err)
	}
	return data, nil
}

// Write encodes v as indented JSON and replaces the document with it,
// backing up the previous content first when backups are enabled.
func (d *JSONDocument) Write(ctx context.Context, v interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", d.path, err)
	}
	data = append(data, '\n')
	if err := d.WriteRaw(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

func (d *JSONDocument) WriteRaw(ctx context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if d.backupDir != "" {
		if _, err := d.Backup(ctx); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.NewLogger(ctx).LogWarnf("backup", "path=%s error=%v", d.path, err)
		}
	}

	return writeFileAtomic(d.path, data)
}

// Backup copies the current document into a timestamped file in the backup
// directory and prunes old backups down to the retention limit.
func (d *JSONDocument) Backup(ctx context.Context) (string, error) {
	if d.backupDir == "" {
		return "", fmt.Errorf("backups are disabled for %s", d.path)
	}
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d.backupDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s.%s.json", d.backupPrefix, d.nextStamp())
	backupPath := filepath.Join(d.backupDir, name)
	if err := os.WriteFile(backupPath, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if err := d.prune(); err != nil {
		logging.NewLogger(ctx).LogWarnf("backup_prune", "dir=%s error=%v", d.backupDir, err)
	}
	return backupPath, nil
}

// Backups lists backup file names, newest first.
func (d *JSONDocument) Backups() ([]string, error) {
	entries, err := os.ReadDir(d.backupDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasPrefix(e.Name(), d.backupPrefix+".") && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

func (d *JSONDocument) prune() error {
	names, err := d.Backups()
	if err != nil {
		return err
	}
	if len(names) <= d.retention {
		return nil
	}
	for _, name := range names[d.retention:] {
		// Individual delete failures are left for the next prune.
		_ = os.Remove(filepath.Join(d.backupDir, name))
	}
	return nil
}

// nextStamp returns a fixed-width UTC timestamp that sorts lexicographically
// and never repeats within the process.
func (d *JSONDocument) nextStamp() string {
	d.stampMu.Lock()
	defer d.stampMu.Unlock()

	t := d.now().UTC()
	if !t.After(d.lastStamp) {
		t = d.lastStamp.Add(time.Nanosecond)
	}
	d.lastStamp = t
	return strings.NewReplacer(":", "-", ".", "-").Replace(t.Format("2006-01-02T15:04:05.000000000Z"))
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
