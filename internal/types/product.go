package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a course inside a system; it doubles as the certification
// track (trilha) the tiered quizzes hang off.
type Product struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SystemID    uuid.UUID      `gorm:"type:uuid;not null;index;column:system_id" json:"system_id"`
	System      *System        `gorm:"constraint:OnDelete:CASCADE;foreignKey:SystemID;references:ID" json:"system,omitempty"`
	Name        string         `gorm:"not null;column:name" json:"name"`
	Description string         `gorm:"column:description" json:"description"`
	OrderIndex  int            `gorm:"not null;default:0;column:order_index" json:"order_index"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string { return "product" }
