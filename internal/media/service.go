package media

import (
	"context"
	"fmt"
	"time"

	"agama-events/internal/logger"
	"agama-events/internal/models"
	"agama-events/internal/storage"

	"github.com/google/uuid"
)

// ErrUnsupportedType rejects anything that isn't a known image MIME type.
var ErrUnsupportedType = fmt.Errorf("unsupported file type")

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/heic": "heic",
}

// EventSource resolves an event without an identity. Uploads and the gallery
// are open to anyone who knows the event page.
type EventSource interface {
	PublicEvent(ctx context.Context, eventID string) (*models.Event, bool, error)
}

type AssetStore interface {
	CreateMediaAsset(ctx context.Context, asset models.MediaAsset) error
	ListMediaForEvent(ctx context.Context, eventID string) ([]models.MediaAsset, error)
}

// Service signs direct-to-bucket uploads for event imagery and records the
// resulting assets.
type Service struct {
	Events EventSource
	DB     AssetStore
	Store  storage.ObjectStore
	Logger *logger.Logger
}

func NewService(events EventSource, db AssetStore, store storage.ObjectStore, log *logger.Logger) *Service {
	return &Service{Events: events, DB: db, Store: store, Logger: log}
}

// SignUpload validates that the event exists and the file type is an image,
// then returns a presigned PUT URL plus the object key the client must
// upload to.
func (s *Service) SignUpload(ctx context.Context, req models.SignUploadRequest) (*models.SignUploadResponse, error) {
	if _, _, err := s.Events.PublicEvent(ctx, req.EventID); err != nil {
		return nil, err
	}

	ext, ok := allowedTypes[req.FileType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	key := fmt.Sprintf("events/%s/%s.%s", req.EventID, uuid.NewString(), ext)
	uploadURL, err := s.Store.PresignUpload(ctx, key, req.FileType)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload: %w", err)
	}

	s.Logger.Info("MEDIA", fmt.Sprintf("signed upload %s for event %s", key, req.EventID))
	return &models.SignUploadResponse{UploadURL: uploadURL, Key: key}, nil
}

// CompleteUpload records an asset after the client finished its direct PUT.
func (s *Service) CompleteUpload(ctx context.Context, req models.CompleteUploadRequest) (*models.MediaAsset, error) {
	if _, _, err := s.Events.PublicEvent(ctx, req.EventID); err != nil {
		return nil, err
	}

	asset := models.MediaAsset{
		ID:         uuid.NewString(),
		EventID:    req.EventID,
		StorageKey: req.Key,
		URL:        s.Store.PublicURL(req.Key),
		UploadedAt: time.Now(),
	}
	if err := s.DB.CreateMediaAsset(ctx, asset); err != nil {
		return nil, fmt.Errorf("failed to record media asset: %w", err)
	}
	return &asset, nil
}

func (s *Service) ListForEvent(ctx context.Context, eventID string) ([]models.MediaAsset, error) {
	if _, _, err := s.Events.PublicEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.DB.ListMediaForEvent(ctx, eventID)
}
