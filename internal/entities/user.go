package entities

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;"`
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
	Name       string
	IsAdmin    bool
	PhotoURL   string
	LastActive time.Time
}

type UserUpdate struct {
	Name     *string
	IsAdmin  *bool
	PhotoURL *string
}

func (u UserUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.IsAdmin != nil {
		cols["is_admin"] = *u.IsAdmin
	}
	if u.PhotoURL != nil {
		cols["photo_url"] = *u.PhotoURL
	}
	return cols
}
