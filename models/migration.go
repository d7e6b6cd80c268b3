package models

import (
	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"gorm.io/gorm"
)

// MigrateTable migrates the process-wide DB.
func MigrateTable() error {
	return Migrate(config.GetDB())
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&State{}, &City{}, &Market{},
		&Item{}, &Unit{},
		&PriceReport{},
	)
}
