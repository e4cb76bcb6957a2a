package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CorrectAnswer is opaque to the grader: it is compared structurally
// against the submitted answer, never interpreted.
type QuizQuestion struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	QuizID        uuid.UUID      `gorm:"type:uuid;not null;index;column:quiz_id" json:"quiz_id"`
	Quiz          *Quiz          `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	Prompt        string         `gorm:"not null;column:prompt" json:"prompt"`
	Options       datatypes.JSON `gorm:"type:jsonb;column:options" json:"options"`
	CorrectAnswer datatypes.JSON `gorm:"type:jsonb;column:correct_answer" json:"-"`
	OrderIndex    int            `gorm:"not null;default:0;column:order_index" json:"order_index"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }
