package types

import (
	"time"

	"github.com/google/uuid"
)

// TrackCompletion marks that an account passed every lesson quiz of a
// product; it is the precondition for the bronze certification tier.
type TrackCompletion struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;index:idx_account_product,unique;column:account_id" json:"account_id"`
	Account     *Account  `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID" json:"account,omitempty"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index:idx_account_product,unique;column:product_id" json:"product_id"`
	Product     *Product  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`
	CompletedAt time.Time `gorm:"not null;default:now();column:completed_at" json:"completed_at"`
	CreatedAt   time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (TrackCompletion) TableName() string { return "track_completion" }
