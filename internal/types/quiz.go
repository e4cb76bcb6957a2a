package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	QuizTierAula   = "aula"
	QuizTierBronze = "bronze"
	QuizTierPrata  = "prata"
)

// Quiz is either lesson-scoped (tier aula) or track-scoped
// (tiers bronze/prata); ouro has no quiz, it unlocks off prata.
type Quiz struct {
	ID                  uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProductID           uuid.UUID      `gorm:"type:uuid;not null;index;column:product_id" json:"product_id"`
	Product             *Product       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProductID;references:ID" json:"product,omitempty"`
	LessonID            *uuid.UUID     `gorm:"type:uuid;index;column:lesson_id" json:"lesson_id,omitempty"`
	Lesson              *Lesson        `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	Tier                string         `gorm:"not null;default:'aula';column:tier" json:"tier"`
	Title               string         `gorm:"column:title" json:"title"`
	PassingCorrectCount int            `gorm:"not null;default:0;column:passing_correct_count" json:"passing_correct_count"`
	QuestionsToShow     int            `gorm:"not null;default:0;column:questions_to_show" json:"questions_to_show"`
	CreatedAt           time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quiz" }
