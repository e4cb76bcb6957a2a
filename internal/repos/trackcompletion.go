package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/types"
)

type TrackCompletionRepo interface {
	GetByAccountAndProductID(ctx context.Context, tx *gorm.DB, accountID, productID uuid.UUID) (*types.TrackCompletion, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.TrackCompletion) error
}

type trackCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTrackCompletionRepo(db *gorm.DB, baseLog *logger.Logger) TrackCompletionRepo {
	repoLog := baseLog.With("repo", "TrackCompletionRepo")
	return &trackCompletionRepo{db: db, log: repoLog}
}

func (r *trackCompletionRepo) GetByAccountAndProductID(ctx context.Context, tx *gorm.DB, accountID, productID uuid.UUID) (*types.TrackCompletion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if accountID == uuid.Nil || productID == uuid.Nil {
		return nil, nil
	}

	var results []*types.TrackCompletion
	if err := transaction.WithContext(ctx).
		Where("account_id = ? AND product_id = ?", accountID, productID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *trackCompletionRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.TrackCompletion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("account_id = ? AND product_id = ?", row.AccountID, row.ProductID).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}
