package models

// MediaItem describes one uploaded binary in the upload directory.
type MediaItem struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Size    int64  `json:"size"`
	MtimeMs int64  `json:"mtimeMs"`
}
