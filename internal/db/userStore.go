package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"play4peace-server/internal/entities"
)

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, user entities.User) (entities.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	tx := s.db.WithContext(ctx).Create(&user)
	return user, translate(tx.Error)
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (entities.User, error) {
	var user entities.User
	tx := s.db.WithContext(ctx).First(&user, "id = ?", id)
	return user, translate(tx.Error)
}

func (s *UserStore) UpdateUser(ctx context.Context, id uuid.UUID, update entities.UserUpdate) (entities.User, error) {
	tx := s.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(update.Columns())
	if tx.Error != nil {
		return entities.User{}, translate(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return entities.User{}, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *UserStore) TouchUser(ctx context.Context, id uuid.UUID, at time.Time) error {
	tx := s.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Update("last_active", at)
	return translate(tx.Error)
}

// PageUsers returns one page of users, newest first, whose name contains
// search (case-insensitive), together with the total match count.
func (s *UserStore) PageUsers(ctx context.Context, search string, offset, limit int) ([]entities.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&entities.User{})
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err)
	}

	var users []entities.User
	tx := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&users)
	return users, total, translate(tx.Error)
}
