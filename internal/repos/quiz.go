package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/types"
)

type QuizRepo interface {
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error)
	GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Quiz, error)
	GetByProductAndTier(ctx context.Context, tx *gorm.DB, productID uuid.UUID, tier string) (*types.Quiz, error)
	ListLessonQuizzesByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.Quiz, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	repoLog := baseLog.With("repo", "QuizRepo")
	return &quizRepo{db: db, log: repoLog}
}

func (r *quizRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Quiz
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) GetByLessonID(ctx context.Context, tx *gorm.DB, lessonID uuid.UUID) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if lessonID == uuid.Nil {
		return nil, nil
	}

	var results []*types.Quiz
	if err := transaction.WithContext(ctx).
		Where("lesson_id = ? AND tier = ?", lessonID, types.QuizTierAula).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// GetByProductAndTier returns nil when the tier has no quiz configured
// for the track; callers treat that as "tier not applicable".
func (r *quizRepo) GetByProductAndTier(ctx context.Context, tx *gorm.DB, productID uuid.UUID, tier string) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if productID == uuid.Nil || tier == "" {
		return nil, nil
	}

	var results []*types.Quiz
	if err := transaction.WithContext(ctx).
		Where("product_id = ? AND tier = ?", productID, tier).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *quizRepo) ListLessonQuizzesByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Quiz
	if productID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("product_id = ? AND tier = ?", productID, types.QuizTierAula).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
