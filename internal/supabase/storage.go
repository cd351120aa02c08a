package supabase

import (
	"fmt"
	"io"
	"path"
	"strings"

	storage "github.com/supabase-community/storage-go"
)

// ObjectAPI is the subset of the storage-go client used for mirroring.
type ObjectAPI interface {
	UploadFile(bucketID string, relativePath string, data io.Reader, fileOptions ...storage.FileOptions) (storage.FileUploadResponse, error)
}

// StorageClient mirrors uploaded media into a Supabase Storage bucket under
// media/{name}.
type StorageClient struct {
	client  ObjectAPI
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) *StorageClient {
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)
	return NewStorageClientWithAPI(client, baseURL, bucket)
}

func NewStorageClientWithAPI(client ObjectAPI, baseURL, bucket string) *StorageClient {
	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *StorageClient) UploadMedia(name, contentType string, data io.Reader) (string, string, error) {
	storagePath := path.Join("media", name)

	upsert := true
	_, err := s.client.UploadFile(s.bucket, storagePath, data, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}
	return storagePath, s.GetPublicURL(storagePath), nil
}

func (s *StorageClient) GetPublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}
