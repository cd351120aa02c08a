// Package gallery holds the gallery ordering session, the manifest it is
// loaded from and saved to, and the directory scanner behind GET /api/gallery.
//
// A Session edits the ordering purely in memory. Every mutating operation
// renumbers the whole sequence so that entry i always carries number i+1,
// and nothing reaches the manifest until Save.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/harry7799/heng-studio/internal/models"
)

const PageSize = 60

var (
	ErrNoSelection      = errors.New("no entries selected")
	ErrOutOfRange       = errors.New("position out of range")
	ErrSwapNeedsTwo     = errors.New("swap requires exactly two selected entries")
	ErrAtBoundary       = errors.New("selection is already at the edge")
	ErrNoDragInProgress = errors.New("no drag in progress")
)

// Modifier selects how Select combines the clicked index with the current
// selection.
type Modifier int

const (
	// SelectReplace selects only the index, or clears the selection when the
	// index is already the sole selected entry.
	SelectReplace Modifier = iota
	// SelectRange adds every index between the last clicked one and this one.
	SelectRange
	// SelectToggle flips membership of one index.
	SelectToggle
)

type Session struct {
	manifest Manifest

	entries  []models.GalleryEntry
	original []models.GalleryEntry
	version  string

	selected    map[int]struct{}
	lastClicked int
	dragging    bool
}

// Open loads the manifest and starts an editing session over it.
func Open(ctx context.Context, manifest Manifest) (*Session, error) {
	s := &Session{manifest: manifest, selected: map[int]struct{}{}, lastClicked: -1}
	if err := s.Reset(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSession starts a session over entries that did not come from a manifest.
// Save requires a manifest.
func NewSession(entries []models.GalleryEntry) *Session {
	sorted := sortByNumber(entries)
	return &Session{
		entries:     sorted,
		original:    models.CloneEntries(sorted),
		selected:    map[int]struct{}{},
		lastClicked: -1,
	}
}

// Entries returns a copy of the current ordering.
func (s *Session) Entries() []models.GalleryEntry {
	return models.CloneEntries(s.entries)
}

func (s *Session) Len() int {
	return len(s.entries)
}

// Version is the manifest version the session was loaded from or last saved
// as.
func (s *Session) Version() string {
	return s.version
}

// Selected returns the selected indices in ascending order.
func (s *Session) Selected() []int {
	out := make([]int, 0, len(s.selected))
	for idx := range s.selected {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func (s *Session) IsSelected(index int) bool {
	_, ok := s.selected[index]
	return ok
}

func (s *Session) HasChanges() bool {
	if len(s.entries) != len(s.original) {
		return true
	}
	for i := range s.entries {
		if s.entries[i].URL != s.original[i].URL {
			return true
		}
	}
	return false
}

func (s *Session) Select(index int, mod Modifier) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}

	switch {
	case mod == SelectRange && s.lastClicked >= 0:
		lo, hi := s.lastClicked, index
		if lo > hi {
			lo, hi = hi, lo
		}
		for i := lo; i <= hi; i++ {
			s.selected[i] = struct{}{}
		}
	case mod == SelectToggle:
		if s.IsSelected(index) {
			delete(s.selected, index)
		} else {
			s.selected[index] = struct{}{}
		}
	default:
		sole := len(s.selected) == 1 && s.IsSelected(index)
		s.selected = map[int]struct{}{}
		if !sole {
			s.selected[index] = struct{}{}
		}
	}
	s.lastClicked = index
	return nil
}

// SelectRange adds indices [start, end) to the selection, clamped to the
// sequence.
func (s *Session) SelectRange(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > len(s.entries) {
		end = len(s.entries)
	}
	for i := start; i < end; i++ {
		s.selected[i] = struct{}{}
	}
}

// SelectPage adds every entry on the given zero-based page.
func (s *Session) SelectPage(page int) {
	s.SelectRange(page*PageSize, (page+1)*PageSize)
}

func (s *Session) ClearSelection() {
	s.selected = map[int]struct{}{}
	s.lastClicked = -1
}

// MoveToPosition moves the selected block, in its current relative order, so
// that it starts at the 1-based target position.
func (s *Session) MoveToPosition(target int) error {
	if len(s.selected) == 0 {
		return ErrNoSelection
	}
	if target < 1 || target > len(s.entries) {
		return fmt.Errorf("%w: enter a number between 1 and %d", ErrOutOfRange, len(s.entries))
	}
	s.moveBlock(target - 1)
	return nil
}

// MoveBy shifts every selected entry one step up (delta -1) or down (+1).
func (s *Session) MoveBy(delta int) error {
	if len(s.selected) == 0 {
		return ErrNoSelection
	}
	if delta != -1 && delta != 1 {
		return fmt.Errorf("%w: delta must be -1 or +1", ErrOutOfRange)
	}
	sel := s.Selected()
	if delta < 0 && sel[0] == 0 {
		return ErrAtBoundary
	}
	if delta > 0 && sel[len(sel)-1] == len(s.entries)-1 {
		return ErrAtBoundary
	}

	next := models.CloneEntries(s.entries)
	if delta < 0 {
		for _, idx := range sel {
			next[idx], next[idx+delta] = next[idx+delta], next[idx]
		}
	} else {
		for i := len(sel) - 1; i >= 0; i-- {
			idx := sel[i]
			next[idx], next[idx+delta] = next[idx+delta], next[idx]
		}
	}
	s.entries = models.Renumber(next)

	moved := make(map[int]struct{}, len(sel))
	for _, idx := range sel {
		moved[idx+delta] = struct{}{}
	}
	s.selected = moved
	return nil
}

// Swap exchanges the two selected entries and clears the selection.
func (s *Session) Swap() error {
	if len(s.selected) != 2 {
		return ErrSwapNeedsTwo
	}
	sel := s.Selected()
	next := models.CloneEntries(s.entries)
	next[sel[0]], next[sel[1]] = next[sel[1]], next[sel[0]]
	s.entries = models.Renumber(next)
	s.ClearSelection()
	return nil
}

// DeleteSelected drops every selected entry and clears the selection. It
// returns the number of entries removed.
func (s *Session) DeleteSelected() (int, error) {
	if len(s.selected) == 0 {
		return 0, ErrNoSelection
	}
	next := make([]models.GalleryEntry, 0, len(s.entries)-len(s.selected))
	for i, e := range s.entries {
		if !s.IsSelected(i) {
			next = append(next, e)
		}
	}
	removed := len(s.entries) - len(next)
	s.entries = models.Renumber(next)
	s.ClearSelection()
	return removed, nil
}

// DragStart begins dragging index. Dragging an unselected entry makes it the
// only selected one; dragging a selected entry carries the whole selection.
func (s *Session) DragStart(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if !s.IsSelected(index) {
		s.selected = map[int]struct{}{index: {}}
	}
	s.dragging = true
	return nil
}

// DragDrop drops the dragged block at the zero-based index of the entry it
// was released on.
func (s *Session) DragDrop(dropIndex int) error {
	if !s.dragging {
		return ErrNoDragInProgress
	}
	s.dragging = false
	if err := s.checkIndex(dropIndex); err != nil {
		return err
	}
	if len(s.selected) == 0 {
		return ErrNoSelection
	}
	s.moveBlock(dropIndex)
	return nil
}

func (s *Session) CancelDrag() {
	s.dragging = false
}

// Reset discards in-memory edits by reloading the manifest. Sessions created
// with NewSession fall back to their initial entries.
func (s *Session) Reset(ctx context.Context) error {
	if s.manifest == nil {
		s.entries = models.CloneEntries(s.original)
		s.ClearSelection()
		s.dragging = false
		return nil
	}

	entries, version, err := s.manifest.Load(ctx)
	if err != nil {
		return err
	}
	s.entries = entries
	s.original = models.CloneEntries(entries)
	s.version = version
	s.ClearSelection()
	s.dragging = false
	return nil
}

// Save writes the current ordering to the manifest, overwriting whatever is
// there.
func (s *Session) Save(ctx context.Context) (string, error) {
	return s.save(ctx, "")
}

// SaveIfUnchanged saves only when the manifest still has the version this
// session loaded, failing with models.ErrStaleManifest otherwise.
func (s *Session) SaveIfUnchanged(ctx context.Context) (string, error) {
	return s.save(ctx, s.version)
}

func (s *Session) save(ctx context.Context, ifMatch string) (string, error) {
	if s.manifest == nil {
		return "", errors.New("session has no manifest to save to")
	}
	version, err := s.manifest.Save(ctx, s.entries, ifMatch)
	if err != nil {
		return "", err
	}
	s.original = models.CloneEntries(s.entries)
	s.version = version
	return version, nil
}

// PageOf returns the zero-based page containing index.
func PageOf(index int) int {
	if index < 0 {
		return 0
	}
	return index / PageSize
}

func (s *Session) Pages() int {
	return (len(s.entries) + PageSize - 1) / PageSize
}

// Page returns a copy of the entries on a zero-based page.
func (s *Session) Page(page int) []models.GalleryEntry {
	start := page * PageSize
	if page < 0 || start >= len(s.entries) {
		return []models.GalleryEntry{}
	}
	end := start + PageSize
	if end > len(s.entries) {
		end = len(s.entries)
	}
	return models.CloneEntries(s.entries[start:end])
}

// moveBlock removes the selected entries and reinserts them starting at
// targetIdx minus the number of selected entries that sat before it. The
// moved block stays selected at its new indices.
func (s *Session) moveBlock(targetIdx int) {
	sel := s.Selected()
	block := make([]models.GalleryEntry, 0, len(sel))
	remaining := make([]models.GalleryEntry, 0, len(s.entries)-len(sel))
	removedBefore := 0
	for i, e := range s.entries {
		if s.IsSelected(i) {
			block = append(block, e)
			if i < targetIdx {
				removedBefore++
			}
			continue
		}
		remaining = append(remaining, e)
	}

	insertAt := targetIdx - removedBefore
	if insertAt < 0 {
		insertAt = 0
	}
	if insertAt > len(remaining) {
		insertAt = len(remaining)
	}

	next := make([]models.GalleryEntry, 0, len(s.entries))
	next = append(next, remaining[:insertAt]...)
	next = append(next, block...)
	next = append(next, remaining[insertAt:]...)
	s.entries = models.Renumber(next)

	s.selected = make(map[int]struct{}, len(block))
	for i := range block {
		s.selected[insertAt+i] = struct{}{}
	}
}

func (s *Session) checkIndex(index int) error {
	if index < 0 || index >= len(s.entries) {
		return fmt.Errorf("%w: index %d not in [0, %d)", ErrOutOfRange, index, len(s.entries))
	}
	return nil
}

func sortByNumber(entries []models.GalleryEntry) []models.GalleryEntry {
	out := models.CloneEntries(entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
