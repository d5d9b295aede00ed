package entities

import (
	"time"

	"github.com/google/uuid"
)

type Announcement struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	Title     string
	Content   string
	Author    string
}

type AnnouncementUpdate struct {
	Title   *string
	Content *string
}

func (u AnnouncementUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.Content != nil {
		cols["content"] = *u.Content
	}
	return cols
}
