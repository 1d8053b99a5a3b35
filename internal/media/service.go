package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"homestash/internal/auth"
	"homestash/internal/catalog"
	"homestash/internal/common"
	"homestash/internal/config"
)

// Service stores and serves item photos. Visibility follows the owning
// group's tag set, so a restricted item's photo is as hidden as the item.
type Service struct {
	db     *gorm.DB
	client *StorageClient
	cfg    *config.Config
}

// NewService creates a new media service
func NewService(db *gorm.DB, client *StorageClient, cfg *config.Config) *Service {
	return &Service{db: db, client: client, cfg: cfg}
}

// UploadItemPhoto stores the photo and records its key on the item.
func (s *Service) UploadItemPhoto(ctx context.Context, itemID uint, contentType string, body io.Reader) (string, error) {
	var item catalog.Item
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", common.NewNotFoundError("item %d not found", itemID)
		}
		return "", err
	}

	key := fmt.Sprintf("items/%d/%s", itemID, uuid.New().String())
	if err := s.client.PutObject(ctx, key, contentType, body); err != nil {
		return "", err
	}

	if err := s.db.Model(&item).Update("photo_key", key).Error; err != nil {
		return "", fmt.Errorf("failed to record photo key: %w", err)
	}
	return key, nil
}

// GetItemPhoto streams the photo of a visible item.
func (s *Service) GetItemPhoto(ctx context.Context, itemID uint, principal auth.Principal) (io.ReadCloser, string, int64, error) {
	var item catalog.Item
	if err := s.db.Preload("Group.Tags").First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", 0, common.NewNotFoundError("item %d not found", itemID)
		}
		return nil, "", 0, err
	}

	// hidden items must not leak through their photos
	if !catalog.GroupVisible(&item.Group, s.cfg.RestrictedMarker, principal) {
		return nil, "", 0, common.NewNotFoundError("item %d not found", itemID)
	}

	if item.PhotoKey == nil {
		return nil, "", 0, common.NewNotFoundError("item %d has no photo", itemID)
	}
	return s.client.GetObject(ctx, *item.PhotoKey)
}
