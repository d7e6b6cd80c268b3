package models

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
)

type City struct {
	ID        int     `gorm:"primary_key" json:"id"`
	Name      string  `gorm:"size:100;not null;uniqueIndex:idx_cities_name_state" json:"name"`
	Latitude  float64 `gorm:"not null;default:0" json:"latitude"`
	Longitude float64 `gorm:"not null;default:0" json:"longitude"`
	StateId   int     `gorm:"not null;index;uniqueIndex:idx_cities_name_state" json:"stateId"`
	State     *State  `gorm:"foreignKey:StateId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// GetCitiesByState lists the cities of one state by name.
// A state without cities yields an empty list; an unknown state yields ErrorRecordNotFound.
func GetCitiesByState(ctx context.Context, stateId int) ([]*City, error) {
	scope := fmt.Sprint(stateId)
	cached, err := utils.RetrieveRedisList[City](ctx, scope)
	if err != nil {
		logCacheError("GetCitiesByState", err)
	} else if cached != nil {
		return cached, nil
	}

	if err := utils.ValidateResourceId[State](ctx, stateId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	results := []*City{}
	if err := db.WithContext(ctx).Where("state_id = ?", stateId).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}

	if err := utils.StoreRedisList[City](ctx, results, scope); err != nil {
		logCacheError("GetCitiesByState", err)
	}
	return results, nil
}
