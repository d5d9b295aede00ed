package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"play4peace-server/internal/entities"
)

type AnnouncementStore struct {
	db *gorm.DB
}

func NewAnnouncementStore(db *gorm.DB) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

func (s *AnnouncementStore) CreateAnnouncement(ctx context.Context, a entities.Announcement) (entities.Announcement, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	tx := s.db.WithContext(ctx).Create(&a)
	return a, translate(tx.Error)
}

func (s *AnnouncementStore) GetAnnouncement(ctx context.Context, id uuid.UUID) (entities.Announcement, error) {
	var a entities.Announcement
	tx := s.db.WithContext(ctx).First(&a, "id = ?", id)
	return a, translate(tx.Error)
}

func (s *AnnouncementStore) ListAnnouncements(ctx context.Context) ([]entities.Announcement, error) {
	var list []entities.Announcement
	tx := s.db.WithContext(ctx).Order("created_at desc").Find(&list)
	return list, translate(tx.Error)
}

func (s *AnnouncementStore) UpdateAnnouncement(ctx context.Context, id uuid.UUID, update entities.AnnouncementUpdate) (entities.Announcement, error) {
	tx := s.db.WithContext(ctx).Model(&entities.Announcement{}).Where("id = ?", id).Updates(update.Columns())
	if tx.Error != nil {
		return entities.Announcement{}, translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return entities.Announcement{}, ErrNotFound
	}
	return s.GetAnnouncement(ctx, id)
}

func (s *AnnouncementStore) DeleteAnnouncement(ctx context.Context, id uuid.UUID) error {
	tx := s.db.WithContext(ctx).Delete(&entities.Announcement{}, "id = ?", id)
	if tx.Error != nil {
		return translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *AnnouncementStore) CountAnnouncements(ctx context.Context) (int64, error) {
	var n int64
	tx := s.db.WithContext(ctx).Model(&entities.Announcement{}).Count(&n)
	return n, translate(tx.Error)
}
