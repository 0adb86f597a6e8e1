package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"
)

func Migrations() []*gormigrate.Migration {
	var migrations = []*gormigrate.Migration{
		m202610010900_initial_schema(),
		m202610150800_account_provider_index(),
	}
	return migrations
}
