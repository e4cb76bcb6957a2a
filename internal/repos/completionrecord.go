package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/types"
)

type CompletionRecordRepo interface {
	GetByAccountAndLessonIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.CompletionRecord, error)
	GetByAccountAndLessonID(ctx context.Context, tx *gorm.DB, accountID, lessonID uuid.UUID) (*types.CompletionRecord, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.CompletionRecord) error
}

type completionRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCompletionRecordRepo(db *gorm.DB, baseLog *logger.Logger) CompletionRecordRepo {
	repoLog := baseLog.With("repo", "CompletionRecordRepo")
	return &completionRecordRepo{db: db, log: repoLog}
}

func (r *completionRecordRepo) GetByAccountAndLessonIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, lessonIDs []uuid.UUID) ([]*types.CompletionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.CompletionRecord
	if accountID == uuid.Nil || len(lessonIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("account_id = ? AND lesson_id IN ?", accountID, lessonIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *completionRecordRepo) GetByAccountAndLessonID(ctx context.Context, tx *gorm.DB, accountID, lessonID uuid.UUID) (*types.CompletionRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if accountID == uuid.Nil || lessonID == uuid.Nil {
		return nil, nil
	}

	var results []*types.CompletionRecord
	if err := transaction.WithContext(ctx).
		Where("account_id = ? AND lesson_id = ?", accountID, lessonID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// Upsert writes the single row for (account_id, lesson_id). Last write
// wins; there is no version column.
func (r *completionRecordRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.CompletionRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("account_id = ? AND lesson_id = ?", row.AccountID, row.LessonID).
		Assign(map[string]interface{}{
			"watched_seconds": row.WatchedSeconds,
			"is_complete":     row.IsComplete,
			"first_opened_at": row.FirstOpenedAt,
			"last_viewed_at":  row.LastViewedAt,
			"completed_at":    row.CompletedAt,
		}).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}
