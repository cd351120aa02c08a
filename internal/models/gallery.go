package models

// GalleryEntry is one image in the ordered gallery manifest. Number is the
// 1-based position of the entry in the persisted ordering.
type GalleryEntry struct {
	Name   string `json:"name"`
	URL    string `json:"url"`
	Number int    `json:"number"`
}

// Renumber rewrites every Number from its slice position, in place.
func Renumber(entries []GalleryEntry) []GalleryEntry {
	for i := range entries {
		entries[i].Number = i + 1
	}
	return entries
}

func CloneEntries(entries []GalleryEntry) []GalleryEntry {
	out := make([]GalleryEntry, len(entries))
	copy(out, entries)
	return out
}
