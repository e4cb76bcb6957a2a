package types

import (
	"time"

	"github.com/google/uuid"
)

type AccountToken struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID    uuid.UUID  `gorm:"type:uuid;index;not null;column:account_id" json:"account_id"`
	Account      *Account   `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID" json:"account,omitempty"`
	AccessToken  string     `gorm:"uniqueIndex;not null;column:access_token" json:"access_token"`
	RefreshToken string     `gorm:"uniqueIndex;not null;column:refresh_token" json:"refresh_token"`
	ExpiresAt    time.Time  `gorm:"column:expires_at" json:"expires_at"`
	LastSeenAt   *time.Time `gorm:"column:last_seen_at" json:"last_seen_at,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (AccountToken) TableName() string { return "account_token" }
