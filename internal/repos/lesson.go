package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/types"
)

type LessonRepo interface {
	ListByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.Lesson, error)
	IDsByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]uuid.UUID, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Lesson, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	repoLog := baseLog.With("repo", "LessonRepo")
	return &lessonRepo{db: db, log: repoLog}
}

func (r *lessonRepo) ListByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
	if productID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// IDsByProductID returns the ordered lesson id sequence of a product.
// An unknown product yields an empty sequence, not an error.
func (r *lessonRepo) IDsByProductID(ctx context.Context, tx *gorm.DB, productID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	if productID == uuid.Nil {
		return ids, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Lesson{}).
		Where("product_id = ?", productID).
		Order("order_index ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *lessonRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Lesson, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lesson
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
