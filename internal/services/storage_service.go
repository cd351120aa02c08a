package services

import (
	"context"
	"io"

	"github.com/harry7799/heng-studio/internal/logging"
	"github.com/harry7799/heng-studio/internal/models"
	"github.com/harry7799/heng-studio/internal/realtime"
	"github.com/harry7799/heng-studio/internal/storage"
)

// Mirror copies a stored upload to a remote bucket.
type Mirror interface {
	UploadMedia(name, contentType string, data io.Reader) (string, string, error)
}

// StorageService runs the upload pipeline: local store first, then an
// optional remote mirror and a change event. Only the local write can fail
// the request.
type StorageService struct {
	media     *storage.MediaStore
	mirror    Mirror
	publisher *realtime.Publisher
}

func NewStorageService(media *storage.MediaStore, mirror Mirror, publisher *realtime.Publisher) *StorageService {
	return &StorageService{
		media:     media,
		mirror:    mirror,
		publisher: publisher,
	}
}

func (s *StorageService) List(ctx context.Context) ([]models.MediaItem, error) {
	return s.media.List(ctx)
}

func (s *StorageService) Upload(ctx context.Context, originalName, contentType string, r io.Reader) (models.MediaItem, error) {
	logger := logging.NewLogger(ctx)

	item, err := s.media.Save(ctx, originalName, contentType, r)
	if err != nil {
		return models.MediaItem{}, err
	}
	logger.LogInfof("media_upload", "name=%s size=%d", item.Name, item.Size)

	if s.mirror != nil {
		s.mirrorItem(ctx, item, contentType)
	}

	if err := s.publisher.PublishEvent(ctx, realtime.MediaChannel, realtime.EventMediaUploaded,
		realtime.MediaUploadedPayload(item.Name, item.URL, item.Size)); err != nil {
		logger.LogWarnf("publish_event", "event=%s error=%v", realtime.EventMediaUploaded, err)
	}
	return item, nil
}

func (s *StorageService) mirrorItem(ctx context.Context, item models.MediaItem, contentType string) {
	logger := logging.NewLogger(ctx)

	f, err := s.media.Open(item.Name)
	if err != nil {
		logger.LogWarnf("media_mirror", "name=%s error=%v", item.Name, err)
		return
	}
	defer f.Close()

	_, publicURL, err := s.mirror.UploadMedia(item.Name, contentType, f)
	if err != nil {
		logger.LogWarnf("media_mirror", "name=%s error=%v", item.Name, err)
		return
	}
	logger.LogInfof("media_mirror", "name=%s url=%s", item.Name, publicURL)
}
