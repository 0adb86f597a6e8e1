package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	GetAccount(ctx context.Context, accountID uint64) (*Account, error)
	GetAccountByExternalID(ctx context.Context, provider, externalID string) (*Account, error)
	GetOrCreateAccount(ctx context.Context, provider, externalID, loginName string) (*Account, bool, error)
	SaveAccount(ctx context.Context, account *Account) error
	ListAccounts(ctx context.Context) (Accounts, error)
	SetAccountLastAuthenticated(ctx context.Context, accountID uint64) error

	Transaction(func(rp Repository) error) error
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

type repository struct {
	db *gorm.DB
}

func (r *repository) withContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func (r *repository) Transaction(action func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return action(NewRepository(tx))
	})
}
