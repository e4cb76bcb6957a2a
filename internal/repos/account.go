package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/types"
)

type AccountRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Account) ([]*types.Account, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Account, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Account, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	repoLog := baseLog.With("repo", "AccountRepo")
	return &accountRepo{db: db, log: repoLog}
}

func (r *accountRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Account) ([]*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Account{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *accountRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Account
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

func (r *accountRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Account, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Account
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *accountRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if email == "" {
		return false, nil
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Account{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
