package migration

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/jsiebens/weiboauth/internal/domain"
	"gorm.io/gorm"
)

func m202610010900_initial_schema() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202610010900",
		Migrate: func(db *gorm.DB) error {
			type Account struct {
				ID                uint64 `gorm:"primary_key;autoIncrement:false"`
				Provider          string
				ExternalID        string
				LoginName         string
				Email             string
				Profile           domain.Profile
				LastAuthenticated *time.Time
			}

			return db.AutoMigrate(
				&Account{},
			)
		},
		Rollback: nil,
	}
}
