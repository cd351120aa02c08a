package models

type ErrorResponse struct {
	Error   string  `json:"error"`
	Message string  `json:"message,omitempty"`
	Issues  []Issue `json:"issues,omitempty"`
}

type DeleteResponse struct {
	OK      bool    `json:"ok"`
	Deleted Project `json:"deleted"`
}

type UploadResponse struct {
	OK   bool      `json:"ok"`
	Item MediaItem `json:"item"`
}

type SaveGalleryResponse struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service,omitempty"`
	Version  string            `json:"version,omitempty"`
	Backends map[string]string `json:"backends,omitempty"`
}
