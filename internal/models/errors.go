package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotConfigured  = errors.New("admin is not configured")
	ErrStaleManifest  = errors.New("gallery manifest changed since it was loaded")
	ErrNoFileUploaded = errors.New("no file uploaded")
)

// Issue is a single field-level validation problem.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type ValidationError struct {
	Issues []Issue
}

func NewValidationError(issues ...Issue) *ValidationError {
	return &ValidationError{Issues: issues}
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		if is.Path == "" {
			parts[i] = is.Message
			continue
		}
		parts[i] = fmt.Sprintf("%s: %s", is.Path, is.Message)
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}

// UploadRejectedError reports a file refused before it reached the upload
// directory.
type UploadRejectedError struct {
	Reason string
}

func (e *UploadRejectedError) Error() string {
	return "upload rejected: " + e.Reason
}
