package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func m202610150800_account_provider_index() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202610150800",
		Migrate: func(db *gorm.DB) error {
			type Account struct {
				Provider   string `gorm:"uniqueIndex:idx_accounts_provider_external_id"`
				ExternalID string `gorm:"uniqueIndex:idx_accounts_provider_external_id"`
			}

			return db.AutoMigrate(
				&Account{},
			)
		},
		Rollback: nil,
	}
}
