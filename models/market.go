package models

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
)

type Market struct {
	ID     int    `gorm:"primary_key" json:"id"`
	Name   string `gorm:"size:100;not null;uniqueIndex:idx_markets_name_city" json:"name"`
	CityId int    `gorm:"not null;index;uniqueIndex:idx_markets_name_city" json:"cityId"`
	City   *City  `gorm:"foreignKey:CityId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// GetMarketsByCity lists the markets of one city by name.
// An unknown city yields ErrorRecordNotFound.
func GetMarketsByCity(ctx context.Context, cityId int) ([]*Market, error) {
	scope := fmt.Sprint(cityId)
	cached, err := utils.RetrieveRedisList[Market](ctx, scope)
	if err != nil {
		logCacheError("GetMarketsByCity", err)
	} else if cached != nil {
		return cached, nil
	}

	if err := utils.ValidateResourceId[City](ctx, cityId); err != nil {
		return nil, err
	}

	db := config.GetDB()
	results := []*Market{}
	if err := db.WithContext(ctx).Where("city_id = ?", cityId).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}

	if err := utils.StoreRedisList[Market](ctx, results, scope); err != nil {
		logCacheError("GetMarketsByCity", err)
	}
	return results, nil
}
