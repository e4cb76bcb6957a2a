package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/types"
)

type QuizAttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.QuizAttempt) ([]*types.QuizAttempt, error)
	GetByAccountAndQuizIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, quizIDs []uuid.UUID) ([]*types.QuizAttempt, error)
	HasPassed(ctx context.Context, tx *gorm.DB, accountID, quizID uuid.UUID) (bool, error)
	PassedQuizIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, quizIDs []uuid.UUID) ([]uuid.UUID, error)
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	repoLog := baseLog.With("repo", "QuizAttemptRepo")
	return &quizAttemptRepo{db: db, log: repoLog}
}

// Create appends attempt rows. Attempts are never updated or replaced.
func (r *quizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.QuizAttempt) ([]*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.QuizAttempt{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *quizAttemptRepo) GetByAccountAndQuizIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, quizIDs []uuid.UUID) ([]*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizAttempt
	if accountID == uuid.Nil || len(quizIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("account_id = ? AND quiz_id IN ?", accountID, quizIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizAttemptRepo) HasPassed(ctx context.Context, tx *gorm.DB, accountID, quizID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if accountID == uuid.Nil || quizID == uuid.Nil {
		return false, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.QuizAttempt{}).
		Where("account_id = ? AND quiz_id = ? AND passed = ?", accountID, quizID, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// PassedQuizIDs returns the subset of quizIDs the account has at least
// one passed attempt for.
func (r *quizAttemptRepo) PassedQuizIDs(ctx context.Context, tx *gorm.DB, accountID uuid.UUID, quizIDs []uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if accountID == uuid.Nil || len(quizIDs) == 0 {
		return ids, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.QuizAttempt{}).
		Distinct("quiz_id").
		Where("account_id = ? AND quiz_id IN ? AND passed = ?", accountID, quizIDs, true).
		Pluck("quiz_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
