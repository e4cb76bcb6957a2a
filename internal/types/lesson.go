package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultRequiredWatchSeconds is the watch-timer policy applied when a
// lesson row carries no explicit value.
const DefaultRequiredWatchSeconds = 120

type Lesson struct {
	ID                   uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProductID            uuid.UUID      `gorm:"type:uuid;not null;index;column:product_id" json:"product_id"`
	Product              *Product       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`
	Title                string         `gorm:"not null;column:title" json:"title"`
	VideoURL             string         `gorm:"column:video_url" json:"video_url"`
	OrderIndex           int            `gorm:"not null;default:0;column:order_index" json:"order_index"`
	RequiredWatchSeconds int            `gorm:"not null;default:120;column:required_watch_seconds" json:"required_watch_seconds"`
	CreatedAt            time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Lesson) TableName() string { return "lesson" }

// RequiredSeconds falls back to the platform default when the catalog
// row predates the column.
func (l *Lesson) RequiredSeconds() int {
	if l == nil || l.RequiredWatchSeconds <= 0 {
		return DefaultRequiredWatchSeconds
	}
	return l.RequiredWatchSeconds
}
