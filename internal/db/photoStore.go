package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"play4peace-server/internal/entities"
)

type PhotoStore struct {
	db *gorm.DB
}

func NewPhotoStore(db *gorm.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func (s *PhotoStore) CreatePhoto(ctx context.Context, p entities.Photo) (entities.Photo, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	tx := s.db.WithContext(ctx).Create(&p)
	return p, translate(tx.Error)
}

func (s *PhotoStore) GetPhoto(ctx context.Context, id uuid.UUID) (entities.Photo, error) {
	var p entities.Photo
	tx := s.db.WithContext(ctx).First(&p, "id = ?", id)
	return p, translate(tx.Error)
}

// ListPhotos returns photos newest upload first; visibleOnly hides unpublished weeks.
func (s *PhotoStore) ListPhotos(ctx context.Context, visibleOnly bool) ([]entities.Photo, error) {
	q := s.db.WithContext(ctx).Order("uploaded_at desc")
	if visibleOnly {
		q = q.Where("visible = ?", true)
	}
	var photos []entities.Photo
	tx := q.Find(&photos)
	return photos, translate(tx.Error)
}

func (s *PhotoStore) SetWeekVisible(ctx context.Context, weekDate string) (int64, error) {
	tx := s.db.WithContext(ctx).Model(&entities.Photo{}).Where("week_date = ?", weekDate).Update("visible", true)
	return tx.RowsAffected, translate(tx.Error)
}

func (s *PhotoStore) DeletePhoto(ctx context.Context, id uuid.UUID) error {
	tx := s.db.WithContext(ctx).Delete(&entities.Photo{}, "id = ?", id)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
