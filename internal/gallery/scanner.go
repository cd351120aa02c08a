package gallery

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/harry7799/heng-studio/internal/models"
)

const DefaultURLPrefix = "/images/gallery"

var numberedImage = regexp.MustCompile(`(?i)^(\d+)\.(jpe?g|png|webp|avif)$`)

// Scan lists numerically named images in dir, sorted by number. When two
// files share a number, a three-digit name such as 010.jpg is preferred.
func Scan(dir, urlPrefix string) ([]models.GalleryEntry, error) {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read gallery directory: %w", err)
	}

	type candidate struct {
		entry  models.GalleryEntry
		digits int
	}
	byNumber := make(map[int]candidate)
	for _, de := range dirEntries {
		if !de.Type().IsRegular() {
			continue
		}
		m := numberedImage.FindStringSubmatch(de.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		next := candidate{
			entry: models.GalleryEntry{
				Name:   de.Name(),
				URL:    path.Join(urlPrefix, url.PathEscape(de.Name())),
				Number: n,
			},
			digits: len(m[1]),
		}
		current, seen := byNumber[n]
		if !seen || (next.digits == 3 && current.digits != 3) {
			byNumber[n] = next
		}
	}

	entries := make([]models.GalleryEntry, 0, len(byNumber))
	for _, c := range byNumber {
		entries = append(entries, c.entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Number < entries[j].Number })
	return entries, nil
}

// WatchedScanner caches the last Scan result and drops it whenever the
// directory changes.
type WatchedScanner struct {
	dir       string
	urlPrefix string

	mu     sync.RWMutex
	cached []models.GalleryEntry
	valid  bool
	gen    uint64

	watcher *fsnotify.Watcher
}

// NewWatchedScanner watches dir for changes. If the directory cannot be
// watched the scanner still works, rescanning on every call.
func NewWatchedScanner(dir, urlPrefix string) *WatchedScanner {
	s := &WatchedScanner{dir: dir, urlPrefix: urlPrefix}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("Warning: gallery watcher unavailable: %v", err)
		return s
	}
	if err := watcher.Add(dir); err != nil {
		log.Printf("Warning: cannot watch gallery directory %s: %v", dir, err)
		_ = watcher.Close()
		return s
	}
	s.watcher = watcher
	return s
}

// Run consumes watcher events until ctx is done.
func (s *WatchedScanner) Run(ctx context.Context) {
	if s.watcher == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				s.Invalidate()
			}
		case watchErr, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: gallery watcher error: %v", watchErr)
			s.Invalidate()
		}
	}
}

func (s *WatchedScanner) Watching() bool {
	return s.watcher != nil
}

func (s *WatchedScanner) Scan() ([]models.GalleryEntry, error) {
	var gen uint64
	if s.watcher != nil {
		s.mu.RLock()
		if s.valid {
			out := models.CloneEntries(s.cached)
			s.mu.RUnlock()
			return out, nil
		}
		gen = s.gen
		s.mu.RUnlock()
	}

	entries, err := Scan(s.dir, s.urlPrefix)
	if err != nil {
		return nil, err
	}
	if s.watcher != nil {
		s.mu.Lock()
		// A change observed during the scan leaves the cache empty.
		if s.gen == gen {
			s.cached = entries
			s.valid = true
		}
		s.mu.Unlock()
	}
	return models.CloneEntries(entries), nil
}

func (s *WatchedScanner) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.cached = nil
	s.gen++
	s.mu.Unlock()
}

func (s *WatchedScanner) Close() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Close()
}
