package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PriceReportView is a price report flattened with the names of everything it references.
// It is computed at read time and never stored.
type PriceReportView struct {
	ID         int             `json:"id"`
	Price      decimal.Decimal `json:"price"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
	ItemName   string          `json:"itemName"`
	UnitName   string          `json:"unitName"`
	MarketName string          `json:"marketName"`
	CityName   string          `json:"cityName"`
	StateName  string          `json:"stateName"`
	ItemId     int             `json:"itemId"`
	UnitId     int             `json:"unitId"`
	MarketId   int             `json:"marketId"`
	CityId     int             `json:"cityId"`
	StateId    int             `json:"stateId"`
}

type PriceReportPage struct {
	Data     []*PriceReportView `json:"data"`
	Metadata PageMetadata       `json:"metadata"`
}

// PriceReportFilter selects reports. Zero means "not set". Only the most specific location
// filter is applied: MarketId, then CityId, then StateId. ItemId and UnitId always apply.
type PriceReportFilter struct {
	StateId  int
	CityId   int
	MarketId int
	ItemId   int
	UnitId   int
}

const priceReportViewColumns = `price_reports.id, price_reports.price,
	price_reports.created_at, price_reports.updated_at,
	price_reports.item_id, price_reports.unit_id, price_reports.market_id,
	markets.city_id AS city_id, cities.state_id AS state_id,
	items.name AS item_name, units.name AS unit_name, markets.name AS market_name,
	cities.name AS city_name, states.name AS state_name`

func priceReportViewQuery(ctx context.Context) *gorm.DB {
	db := config.GetDB()
	return db.WithContext(ctx).Table("price_reports").
		Joins("JOIN items ON items.id = price_reports.item_id").
		Joins("JOIN units ON units.id = price_reports.unit_id").
		Joins("JOIN markets ON markets.id = price_reports.market_id").
		Joins("JOIN cities ON cities.id = markets.city_id").
		Joins("JOIN states ON states.id = cities.state_id")
}

func (f PriceReportFilter) apply(query *gorm.DB) *gorm.DB {
	switch {
	case f.MarketId > 0:
		query = query.Where("price_reports.market_id = ?", f.MarketId)
	case f.CityId > 0:
		query = query.Where("markets.city_id = ?", f.CityId)
	case f.StateId > 0:
		query = query.Where("cities.state_id = ?", f.StateId)
	}
	if f.ItemId > 0 {
		query = query.Where("price_reports.item_id = ?", f.ItemId)
	}
	if f.UnitId > 0 {
		query = query.Where("price_reports.unit_id = ?", f.UnitId)
	}
	return query
}

func newestFirst(query *gorm.DB) *gorm.DB {
	return query.Order("price_reports.created_at DESC").Order("price_reports.id DESC")
}

// ListPriceReports returns one page of matching reports, newest first.
func ListPriceReports(ctx context.Context, filter PriceReportFilter, page int, limit int) (*PriceReportPage, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}

	var total int64
	if err := filter.apply(priceReportViewQuery(ctx)).Count(&total).Error; err != nil {
		return nil, err
	}

	metadata := NewPageMetadata(total, page, limit)
	results := []*PriceReportView{}
	// pages past the end are empty without a query
	if page <= metadata.TotalPages {
		query := newestFirst(filter.apply(priceReportViewQuery(ctx)).Select(priceReportViewColumns))
		if err := query.Limit(limit).Offset(pageOffset(page, limit)).Scan(&results).Error; err != nil {
			return nil, err
		}
	}

	return &PriceReportPage{
		Data:     results,
		Metadata: metadata,
	}, nil
}

// FindPriceReports returns up to max matching reports, newest first, without paging.
func FindPriceReports(ctx context.Context, filter PriceReportFilter, max int) ([]*PriceReportView, error) {
	results := []*PriceReportView{}
	query := newestFirst(filter.apply(priceReportViewQuery(ctx)).Select(priceReportViewColumns))
	if max > 0 {
		query = query.Limit(max)
	}
	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetPriceReportView returns the projection of one report (may return RecordNotFound).
func GetPriceReportView(ctx context.Context, id int) (*PriceReportView, error) {
	var results []*PriceReportView
	err := priceReportViewQuery(ctx).Select(priceReportViewColumns).
		Where("price_reports.id = ?", id).Limit(1).Scan(&results).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if len(results) == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	return results[0], nil
}
