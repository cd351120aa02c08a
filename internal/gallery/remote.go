package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/harry7799/heng-studio/internal/models"
)

// RemoteManifest loads and saves the manifest through a running API server.
type RemoteManifest struct {
	baseURL    string
	adminToken string
	httpClient *http.Client
	backoffs   []time.Duration
}

func NewRemoteManifest(baseURL, adminToken string) *RemoteManifest {
	return &RemoteManifest{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		adminToken: strings.TrimSpace(adminToken),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// WithBackoffs replaces the retry delays; the number of delays plus one is
// the attempt count.
func (c *RemoteManifest) WithBackoffs(backoffs ...time.Duration) *RemoteManifest {
	c.backoffs = backoffs
	return c
}

// permanentError stops retries: the server answered and retrying will not
// change the answer.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (c *RemoteManifest) Load(ctx context.Context) ([]models.GalleryEntry, string, error) {
	var (
		entries []models.GalleryEntry
		version string
	)
	err := c.retryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/gallery/manifest", nil)
		if err != nil {
			return &permanentError{fmt.Errorf("failed to create request: %w", err)}
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return statusError("failed to load manifest", resp.StatusCode, body)
		}
		if err := json.Unmarshal(body, &entries); err != nil {
			return &permanentError{fmt.Errorf("failed to decode response: %w", err)}
		}
		version = strings.Trim(resp.Header.Get("ETag"), `"`)
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if entries == nil {
		entries = []models.GalleryEntry{}
	}
	return sortByNumber(entries), version, nil
}

func (c *RemoteManifest) Save(ctx context.Context, entries []models.GalleryEntry, ifMatch string) (string, error) {
	jsonData, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	var version string
	err = c.retryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/save-gallery", bytes.NewReader(jsonData))
		if err != nil {
			return &permanentError{fmt.Errorf("failed to create request: %w", err)}
		}
		req.Header.Set("Content-Type", "application/json")
		if c.adminToken != "" {
			req.Header.Set("X-Admin-Token", c.adminToken)
		}
		if ifMatch != "" {
			req.Header.Set("If-Match", `"`+ifMatch+`"`)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		switch {
		case resp.StatusCode == http.StatusPreconditionFailed:
			return &permanentError{models.ErrStaleManifest}
		case resp.StatusCode == http.StatusUnauthorized:
			return &permanentError{models.ErrUnauthorized}
		case resp.StatusCode == http.StatusServiceUnavailable:
			return &permanentError{models.ErrNotConfigured}
		case resp.StatusCode != http.StatusOK:
			return statusError("failed to save manifest", resp.StatusCode, body)
		}

		var result models.SaveGalleryResponse
		if err := json.Unmarshal(body, &result); err != nil {
			return &permanentError{fmt.Errorf("failed to decode response: %w", err)}
		}
		version = result.Version
		return nil
	})
	if err != nil {
		return "", err
	}
	return version, nil
}

func statusError(msg string, status int, body []byte) error {
	err := fmt.Errorf("%s: status %d, body: %s", msg, status, string(body))
	if status >= 500 {
		return err
	}
	return &permanentError{err}
}

// retryWithBackoff runs fn until it succeeds, fails permanently, or the
// backoff schedule is exhausted.
func (c *RemoteManifest) retryWithBackoff(ctx context.Context, fn func() error) error {
	attempts := len(c.backoffs) + 1

	var lastErr error
	for i := 0; i < attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
		if i < len(c.backoffs) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoffs[i]):
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
