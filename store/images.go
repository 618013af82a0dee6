package store

import (
	"context"
	"fmt"
	"time"

	"goldpawn/models"

	"github.com/google/uuid"
)

// CountUploadsSince counts images a user uploaded after since.
func (s *Store) CountUploadsSince(ctx context.Context, uploaderID uuid.UUID, since time.Time) (int64, error) {
	const op = "CountUploadsSince"

	var count int64
	result := s.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("uploader_id = ? AND created_at > ?", uploaderID, since).
		Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("[%s] Fail to count uploaded images, err=%w", op, result.Error)
	}
	return count, nil
}

func (s *Store) RecordUpload(ctx context.Context, image *models.Image) error {
	const op = "RecordUpload"

	if result := s.db.WithContext(ctx).Omit("Uploader").Create(image); result.Error != nil {
		return fmt.Errorf("[%s] Fail to record image upload, err=%w", op, result.Error)
	}
	return nil
}
