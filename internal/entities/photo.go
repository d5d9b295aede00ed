package entities

import (
	"time"

	"github.com/google/uuid"
)

type Photo struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;"`
	ObjectKey  string    `gorm:"uniqueIndex"`
	URL        string
	WeekDate   string `gorm:"index"`
	UploadedBy string
	UploadedAt time.Time `gorm:"index"`
	Visible    bool
}
