package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QuizAttempt rows are append-only: every graded submission is a new
// row, downstream gating looks for any passed attempt.
type QuizAttempt struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID    uuid.UUID      `gorm:"type:uuid;not null;index;column:account_id" json:"account_id"`
	Account      *Account       `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID" json:"account,omitempty"`
	QuizID       uuid.UUID      `gorm:"type:uuid;not null;index;column:quiz_id" json:"quiz_id"`
	Quiz         *Quiz          `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	ProductID    uuid.UUID      `gorm:"type:uuid;not null;index;column:product_id" json:"product_id"`
	Score        int            `gorm:"not null;default:0;column:score" json:"score"`
	CorrectCount int            `gorm:"not null;default:0;column:correct_count" json:"correct_count"`
	Passed       bool           `gorm:"not null;default:false;column:passed" json:"passed"`
	Answers      datatypes.JSON `gorm:"type:jsonb;column:answers" json:"answers"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }
