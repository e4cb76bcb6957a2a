package types

import (
	"time"

	"github.com/google/uuid"
)

// CompletionRecord tracks one account's progress through one lesson.
// One row per (account, lesson); writes go through the gate's upsert.
type CompletionRecord struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AccountID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_account_lesson,unique;column:account_id" json:"account_id"`
	Account        *Account   `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID" json:"account,omitempty"`
	LessonID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_account_lesson,unique;column:lesson_id" json:"lesson_id"`
	Lesson         *Lesson    `gorm:"constraint:OnDelete:CASCADE;foreignKey:LessonID;references:ID" json:"lesson,omitempty"`
	WatchedSeconds int        `gorm:"not null;default:0;column:watched_seconds" json:"watched_seconds"`
	IsComplete     bool       `gorm:"not null;default:false;column:is_complete" json:"is_complete"`
	FirstOpenedAt  *time.Time `gorm:"column:first_opened_at" json:"first_opened_at,omitempty"`
	LastViewedAt   *time.Time `gorm:"column:last_viewed_at" json:"last_viewed_at,omitempty"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (CompletionRecord) TableName() string { return "completion_record" }
