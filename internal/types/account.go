package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AccountTypeCartorio = "cartorio"
	AccountTypeAdmin    = "admin"
)

type Account struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email      string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password   string         `gorm:"not null;column:password" json:"-"`
	Name       string         `gorm:"not null;column:name" json:"name"`
	Type       string         `gorm:"not null;default:'cartorio';column:type" json:"type"`
	CartorioID *uuid.UUID     `gorm:"type:uuid;index;column:cartorio_id" json:"cartorio_id,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Account) TableName() string { return "account" }
