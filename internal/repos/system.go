package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/types"
)

type SystemRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.System, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.System, error)
}

type systemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSystemRepo(db *gorm.DB, baseLog *logger.Logger) SystemRepo {
	repoLog := baseLog.With("repo", "SystemRepo")
	return &systemRepo{db: db, log: repoLog}
}

func (r *systemRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.System, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.System
	if err := transaction.WithContext(ctx).
		Order("order_index ASC, name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *systemRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.System, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.System
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
