package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type System struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	OrderIndex  int            `gorm:"not null;default:0;column:order_index" json:"order_index"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (System) TableName() string { return "system" }
