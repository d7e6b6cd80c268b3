package models

import (
	"context"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
)

// State is the root of the location hierarchy. States are created by seeding only.
type State struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// GetStates lists every state by name, reading through the redis list cache.
func GetStates(ctx context.Context) ([]*State, error) {
	cached, err := utils.RetrieveRedisList[State](ctx, "")
	if err != nil {
		logCacheError("GetStates", err)
	} else if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	results := []*State{}
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}

	if err := utils.StoreRedisList[State](ctx, results, ""); err != nil {
		logCacheError("GetStates", err)
	}
	return results, nil
}
