package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Unit is a measure an item is sold in ("50kg bag"). Names are unique per item, ignoring case.
type Unit struct {
	ID       int          `gorm:"primary_key" json:"id"`
	Name     string       `gorm:"size:100;not null" json:"name"`
	NameKey  string       `gorm:"size:100;not null;uniqueIndex:idx_units_item_name_key" json:"-"`
	ItemId   int          `gorm:"not null;index;uniqueIndex:idx_units_item_name_key" json:"itemId"`
	Item     *Item        `gorm:"foreignKey:ItemId" json:"-"`
	ItemInfo *ItemSummary `gorm:"-" json:"item,omitempty"`
}

// ItemSummary is the parent item as embedded in a unit response.
type ItemSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type NewUnit struct {
	Name   string            `json:"name" binding:"required"`
	ItemId utils.FlexibleInt `json:"itemId" binding:"required,gt=0"`
}

func (input *NewUnit) validate() (name string, err error) {
	verr := &utils.ValidationError{}
	name = strings.TrimSpace(input.Name)
	if name == "" {
		verr.Violations = append(verr.Violations, utils.FieldViolation{Field: "name", Tag: "required", Message: "Unit name is required"})
	}
	if input.ItemId <= 0 {
		verr.Violations = append(verr.Violations, utils.FieldViolation{Field: "itemId", Tag: "gt", Message: "Item ID is required"})
	}
	if len(verr.Violations) > 0 {
		return "", verr
	}
	return name, nil
}

func (unit *Unit) attachItemInfo() {
	if unit.Item != nil {
		unit.ItemInfo = &ItemSummary{ID: unit.Item.ID, Name: unit.Item.Name}
		unit.Item = nil
	}
}

// GetUnits lists every unit with its parent item, by name.
func GetUnits(ctx context.Context) ([]*Unit, error) {
	cached, err := utils.RetrieveRedisList[Unit](ctx, "")
	if err != nil {
		logCacheError("GetUnits", err)
	} else if cached != nil {
		return cached, nil
	}

	db := config.GetDB()
	results := []*Unit{}
	if err := db.WithContext(ctx).Preload("Item").Order("name").Order("id").Find(&results).Error; err != nil {
		return nil, err
	}
	for _, unit := range results {
		unit.attachItemInfo()
	}

	if err := utils.StoreRedisList[Unit](ctx, results, ""); err != nil {
		logCacheError("GetUnits", err)
	}
	return results, nil
}

// FindOrCreateUnit returns the unit of the item whose name matches case-insensitively,
// creating it when absent. An itemId without a stored item fails with ErrInvalidForeignKey.
func FindOrCreateUnit(ctx context.Context, input *NewUnit) (unit *Unit, created bool, err error) {
	name, err := input.validate()
	if err != nil {
		return nil, false, err
	}
	itemId := int(input.ItemId)
	key := utils.NormalizeName(name)

	unlock := obtainCatalogLock(ctx, fmt.Sprintf("unit:%d:%s", itemId, key))
	defer unlock()

	existing, err := findUnitByKey(ctx, itemId, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, false, err
	}

	newUnit := Unit{Name: name, NameKey: key, ItemId: itemId}
	db := config.GetDB()
	result := db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&newUnit)
	if result.Error != nil {
		return nil, false, utils.TranslateStoreError(result.Error)
	}
	if result.RowsAffected == 0 {
		existing, err := findUnitByKey(ctx, itemId, key)
		return existing, false, err
	}

	clearRedis(ctx, "FindOrCreateUnit", newUnit)

	stored, err := findUnitByKey(ctx, itemId, key)
	if err != nil {
		return nil, false, err
	}
	return stored, true, nil
}

func findUnitByKey(ctx context.Context, itemId int, key string) (*Unit, error) {
	db := config.GetDB()
	var unit Unit
	err := db.WithContext(ctx).Preload("Item").Where("item_id = ? AND name_key = ?", itemId, key).Take(&unit).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	unit.attachItemInfo()
	return &unit, nil
}

// GetUnit returns one unit with its item summary (may return RecordNotFound).
func GetUnit(ctx context.Context, id int) (*Unit, error) {
	unit, err := utils.FetchSingleModel[Unit](ctx, id, "Item")
	if err != nil {
		return nil, err
	}
	unit.attachItemInfo()
	return unit, nil
}
