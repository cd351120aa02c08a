package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harry7799/heng-studio/internal/cli"
	"github.com/harry7799/heng-studio/internal/gallery"
	"github.com/harry7799/heng-studio/internal/models"
)

type result struct {
	Out string
	Err error
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	deps := &cli.Deps{In: strings.NewReader(stdin), Out: &out, Err: &errOut}
	err := cli.Run(context.Background(), args, deps)
	return result{Out: out.String() + errOut.String(), Err: err}
}

func writeManifest(t *testing.T, n int) string {
	t.Helper()
	entries := make([]models.GalleryEntry, n)
	for i := range entries {
		name := fmt.Sprintf("%03d.jpg", i+1)
		entries[i] = models.GalleryEntry{Name: name, URL: "/images/gallery/" + name, Number: i + 1}
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "gallery.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func loadNames(t *testing.T, path string) []string {
	t.Helper()
	entries, _, err := gallery.NewFileManifest(path).Load(context.Background())
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		assert.Equal(t, i+1, e.Number)
		names[i] = strings.TrimSuffix(e.Name, ".jpg")
	}
	return names
}

func TestMove_BlockToFront(t *testing.T) {
	path := writeManifest(t, 5)

	res := run(t, "", "--manifest", path, "move", "--select", "2,4", "--to", "1")
	require.NoError(t, res.Err, res.Out)

	assert.Equal(t, []string{"002", "004", "001", "003", "005"}, loadNames(t, path))
	assert.Contains(t, res.Out, "moved to positions 1-2 (page 1)")
	assert.Contains(t, res.Out, "saved 5 entries")
}

func TestMove_RangeSelection(t *testing.T) {
	path := writeManifest(t, 6)

	res := run(t, "", "--manifest", path, "move", "--select", "4-6", "--to", "2")
	require.NoError(t, res.Err, res.Out)

	assert.Equal(t, []string{"001", "004", "005", "006", "002", "003"}, loadNames(t, path))
}

func TestMove_OutOfRange(t *testing.T) {
	path := writeManifest(t, 3)

	res := run(t, "", "--manifest", path, "move", "--select", "1", "--to", "9")
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, gallery.ErrOutOfRange)
	assert.Equal(t, []string{"001", "002", "003"}, loadNames(t, path))

	res = run(t, "", "--manifest", path, "move", "--select", "7", "--to", "1")
	require.Error(t, res.Err)
	assert.Contains(t, res.Out, "position 7")
}

func TestShift_Down(t *testing.T) {
	path := writeManifest(t, 4)

	res := run(t, "", "--manifest", path, "shift", "--select", "1,2", "--by", "1")
	require.NoError(t, res.Err, res.Out)

	assert.Equal(t, []string{"003", "001", "002", "004"}, loadNames(t, path))
}

func TestShift_AtBoundary(t *testing.T) {
	path := writeManifest(t, 4)

	res := run(t, "", "--manifest", path, "shift", "--select", "1", "--by", "-1")
	assert.ErrorIs(t, res.Err, gallery.ErrAtBoundary)
}

func TestSwap(t *testing.T) {
	path := writeManifest(t, 5)

	res := run(t, "", "--manifest", path, "swap", "1", "5")
	require.NoError(t, res.Err, res.Out)

	assert.Equal(t, []string{"005", "002", "003", "004", "001"}, loadNames(t, path))
}

func TestSwap_SamePosition(t *testing.T) {
	path := writeManifest(t, 5)

	res := run(t, "", "--manifest", path, "swap", "2", "2")
	assert.ErrorIs(t, res.Err, gallery.ErrSwapNeedsTwo)
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	path := writeManifest(t, 3)

	res := run(t, "", "--manifest", path, "delete", "--select", "2")
	require.Error(t, res.Err)
	assert.Contains(t, res.Out, "--yes")
	assert.Len(t, loadNames(t, path), 3)

	res = run(t, "", "--manifest", path, "delete", "--select", "2", "--yes")
	require.NoError(t, res.Err, res.Out)
	assert.Equal(t, []string{"001", "003"}, loadNames(t, path))
	assert.Contains(t, res.Out, "removed 1 entries")
}

func TestDryRun_LeavesManifestUntouched(t *testing.T) {
	path := writeManifest(t, 3)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	res := run(t, "", "--manifest", path, "--dry-run", "move", "--select", "3", "--to", "1")
	require.NoError(t, res.Err, res.Out)
	assert.Contains(t, res.Out, "dry run")

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestList(t *testing.T) {
	path := writeManifest(t, 2)

	res := run(t, "", "--manifest", path, "list")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "001.jpg")
	assert.Contains(t, res.Out, "/images/gallery/002.jpg")

	res = run(t, "", "--manifest", path, "list", "--yaml")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "- name: 001.jpg")
	assert.Contains(t, res.Out, "number: 2")
}

func TestList_MissingManifestIsEmpty(t *testing.T) {
	res := run(t, "", "--manifest", filepath.Join(t.TempDir(), "none.json"), "list")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "(empty)")
}

func TestInit_ScansGalleryDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2.png", "1.jpg", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	path := filepath.Join(t.TempDir(), "gallery.json")

	res := run(t, "", "--manifest", path, "--gallery-dir", dir, "init")
	require.NoError(t, res.Err, res.Out)

	entries, _, err := gallery.NewFileManifest(path).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1.jpg", entries[0].Name)
	assert.Equal(t, "2.png", entries[1].Name)

	res = run(t, "", "--manifest", path, "--gallery-dir", dir, "init")
	require.Error(t, res.Err)
	assert.Contains(t, res.Out, "--force")
}

type recordingManifest struct {
	entries []models.GalleryEntry
	ifMatch []string
}

func (m *recordingManifest) Load(ctx context.Context) ([]models.GalleryEntry, string, error) {
	return models.CloneEntries(m.entries), "v1", nil
}

func (m *recordingManifest) Save(ctx context.Context, entries []models.GalleryEntry, ifMatch string) (string, error) {
	m.ifMatch = append(m.ifMatch, ifMatch)
	if ifMatch != "" && ifMatch != "v1" {
		return "", models.ErrStaleManifest
	}
	m.entries = models.CloneEntries(entries)
	return "v2", nil
}

func TestIfUnchanged_SendsLoadedVersion(t *testing.T) {
	m := &recordingManifest{entries: []models.GalleryEntry{
		{Name: "a", URL: "/a", Number: 1},
		{Name: "b", URL: "/b", Number: 2},
	}}

	var out bytes.Buffer
	deps := &cli.Deps{In: strings.NewReader(""), Out: &out, Err: &out, Manifest: m}
	err := cli.Run(context.Background(), []string{"--if-unchanged", "swap", "1", "2"}, deps)
	require.NoError(t, err, out.String())

	assert.Equal(t, []string{"v1"}, m.ifMatch)
	assert.Equal(t, "b", m.entries[0].Name)
}

func TestEdit_MoveAndSave(t *testing.T) {
	path := writeManifest(t, 5)

	script := "select 5\nmove 1\nstatus\nsave\nquit\n"
	res := run(t, script, "--manifest", path, "edit")
	require.NoError(t, res.Err, res.Out)

	assert.Equal(t, []string{"005", "001", "002", "003", "004"}, loadNames(t, path))
	assert.Contains(t, res.Out, "moved to position 1 (page 1)")
	assert.Contains(t, res.Out, "selected: 1, unsaved changes")
}

func TestEdit_QuitGuardsUnsavedChanges(t *testing.T) {
	path := writeManifest(t, 3)

	script := "select 1\ndown\nquit\nquit!\n"
	res := run(t, script, "--manifest", path, "edit")
	require.NoError(t, res.Err, res.Out)

	assert.Contains(t, res.Out, "unsaved changes; save first")
	assert.Equal(t, []string{"001", "002", "003"}, loadNames(t, path))
}

func TestEdit_DragDropAndErrors(t *testing.T) {
	path := writeManifest(t, 4)

	script := strings.Join([]string{
		"drop 2",
		"swap",
		"bogus",
		"range 3 4",
		"drag 3",
		"drop 1",
		"save",
		"q",
	}, "\n")
	res := run(t, script, "--manifest", path, "edit")
	require.NoError(t, res.Err, res.Out)

	assert.Contains(t, res.Out, gallery.ErrNoDragInProgress.Error())
	assert.Contains(t, res.Out, gallery.ErrSwapNeedsTwo.Error())
	assert.Contains(t, res.Out, `unknown command "bogus"`)
	assert.Equal(t, []string{"003", "004", "001", "002"}, loadNames(t, path))
}

func TestEdit_DeleteAsksFirst(t *testing.T) {
	path := writeManifest(t, 5)

	res := run(t, "select 2\ndelete\nsave\nquit\n", "--manifest", path, "edit")
	require.NoError(t, res.Err, res.Out)
	assert.Contains(t, res.Out, "remove 1 entries? [y/N]")
	assert.Contains(t, res.Out, "delete cancelled")
	assert.Equal(t, []string{"001", "002", "003", "004", "005"}, loadNames(t, path))

	res = run(t, "select 2\ndelete\nn\nsave\nquit\n", "--manifest", path, "edit")
	require.NoError(t, res.Err, res.Out)
	assert.Equal(t, []string{"001", "002", "003", "004", "005"}, loadNames(t, path))

	res = run(t, "select 2,3\ndelete\ny\nsave\nquit\n", "--manifest", path, "edit")
	require.NoError(t, res.Err, res.Out)
	assert.Contains(t, res.Out, "removed 2 entries")
	assert.Equal(t, []string{"001", "004", "005"}, loadNames(t, path))

	res = run(t, "delete\nquit\n", "--manifest", path, "edit")
	require.NoError(t, res.Err, res.Out)
	assert.Contains(t, res.Out, gallery.ErrNoSelection.Error())
}

func TestEdit_CancelDrag(t *testing.T) {
	path := writeManifest(t, 3)

	res := run(t, "drag 3\ncancel\ndrop 1\nquit\n", "--manifest", path, "edit")
	require.NoError(t, res.Err, res.Out)
	assert.Contains(t, res.Out, gallery.ErrNoDragInProgress.Error())
	assert.Equal(t, []string{"001", "002", "003"}, loadNames(t, path))
}
