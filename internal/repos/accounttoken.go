package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/types"
)

type AccountTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.AccountToken) ([]*types.AccountToken, error)
	GetByAccountIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.AccountToken, error)
	GetByAccessTokens(ctx context.Context, tx *gorm.DB, tokens []string) ([]*types.AccountToken, error)
	GetByRefreshTokens(ctx context.Context, tx *gorm.DB, tokens []string) ([]*types.AccountToken, error)
	TouchLastSeen(ctx context.Context, tx *gorm.DB, accessToken string, at time.Time) error
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	DeleteIdleSince(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type accountTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountTokenRepo(db *gorm.DB, baseLog *logger.Logger) AccountTokenRepo {
	repoLog := baseLog.With("repo", "AccountTokenRepo")
	return &accountTokenRepo{db: db, log: repoLog}
}

func (r *accountTokenRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.AccountToken) ([]*types.AccountToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.AccountToken{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *accountTokenRepo) GetByAccountIDs(ctx context.Context, tx *gorm.DB, accountIDs []uuid.UUID) ([]*types.AccountToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AccountToken
	if len(accountIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("account_id IN ?", accountIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *accountTokenRepo) GetByAccessTokens(ctx context.Context, tx *gorm.DB, tokens []string) ([]*types.AccountToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AccountToken
	if len(tokens) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("access_token IN ?", tokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *accountTokenRepo) GetByRefreshTokens(ctx context.Context, tx *gorm.DB, tokens []string) ([]*types.AccountToken, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.AccountToken
	if len(tokens) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("refresh_token IN ?", tokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *accountTokenRepo) TouchLastSeen(ctx context.Context, tx *gorm.DB, accessToken string, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if accessToken == "" {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.AccountToken{}).
		Where("access_token = ?", accessToken).
		Update("last_seen_at", at).Error
}

func (r *accountTokenRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ids) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&types.AccountToken{}).Error; err != nil {
		return err
	}
	return nil
}

// DeleteIdleSince removes cartório sessions whose heartbeat went quiet
// before cutoff, along with anything past its hard expiry.
func (r *accountTokenRepo) DeleteIdleSince(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("expires_at < ? OR (last_seen_at IS NOT NULL AND last_seen_at < ?)", time.Now(), cutoff).
		Delete(&types.AccountToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
