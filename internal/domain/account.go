package domain

import (
	"context"
	"errors"
	"time"

	"github.com/jsiebens/weiboauth/internal/util"
	"gorm.io/gorm"
)

// Account links an identity of an external provider to a local account.
type Account struct {
	ID                uint64 `gorm:"primary_key"`
	Provider          string
	ExternalID        string
	LoginName         string
	Email             string
	Profile           Profile
	LastAuthenticated *time.Time
}

type Accounts []Account

func (r *repository) GetOrCreateAccount(ctx context.Context, provider, externalID, loginName string) (*Account, bool, error) {
	account := &Account{}
	id := util.NextID()

	tx := r.withContext(ctx).
		Where(Account{Provider: provider, ExternalID: externalID}).
		Attrs(Account{ID: id, LoginName: loginName}).
		FirstOrCreate(account)

	if tx.Error != nil {
		return nil, false, tx.Error
	}

	return account, account.ID == id, nil
}

func (r *repository) GetAccount(ctx context.Context, id uint64) (*Account, error) {
	var account Account
	tx := r.withContext(ctx).Take(&account, "id = ?", id)

	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &account, nil
}

func (r *repository) GetAccountByExternalID(ctx context.Context, provider, externalID string) (*Account, error) {
	var account Account
	tx := r.withContext(ctx).Take(&account, "provider = ? AND external_id = ?", provider, externalID)

	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if tx.Error != nil {
		return nil, tx.Error
	}

	return &account, nil
}

func (r *repository) SaveAccount(ctx context.Context, account *Account) error {
	tx := r.withContext(ctx).Save(account)

	if tx.Error != nil {
		return tx.Error
	}

	return nil
}

func (r *repository) ListAccounts(ctx context.Context) (Accounts, error) {
	var accounts = Accounts{}
	tx := r.withContext(ctx).Order("id").Find(&accounts)

	if tx.Error != nil {
		return nil, tx.Error
	}

	return accounts, nil
}

func (r *repository) SetAccountLastAuthenticated(ctx context.Context, accountID uint64) error {
	now := time.Now().UTC()
	tx := r.withContext(ctx).
		Model(Account{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{"last_authenticated": &now})

	if tx.Error != nil {
		return tx.Error
	}

	return nil
}
