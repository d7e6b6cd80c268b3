package models

import (
	"context"
	"errors"
	"strings"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Item struct {
	ID      int    `gorm:"primary_key" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	NameKey string `gorm:"size:100;not null;uniqueIndex" json:"-"`
	Units   []Unit `gorm:"foreignKey:ItemId;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"units"`
}

type NewItem struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewItem) validate() (name string, err error) {
	name = strings.TrimSpace(input.Name)
	if name == "" {
		return "", utils.NewValidationError("name", "required", "Item name is required")
	}
	return name, nil
}

func preloadUnits(db *gorm.DB) *gorm.DB {
	return db.Order("name")
}

// GetItems lists every item with its units, both by name.
func GetItems(ctx context.Context) ([]*Item, error) {
	cached, err := utils.RetrieveRedisList[Item](ctx, "")
	if err != nil {
		logCacheError("GetItems", err)
	} else if cached != nil {
		for _, item := range cached {
			item.ensureUnits()
		}
		return cached, nil
	}

	db := config.GetDB()
	results := []*Item{}
	if err := db.WithContext(ctx).Preload("Units", preloadUnits).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	for _, item := range results {
		item.ensureUnits()
	}

	if err := utils.StoreRedisList[Item](ctx, results, ""); err != nil {
		logCacheError("GetItems", err)
	}
	return results, nil
}

// GetItem returns one item with its units (may return RecordNotFound).
func GetItem(ctx context.Context, id int) (*Item, error) {
	db := config.GetDB()
	var item Item
	err := db.WithContext(ctx).Preload("Units", preloadUnits).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	item.ensureUnits()
	return &item, nil
}

// FindOrCreateItem returns the item whose name matches case-insensitively, creating it when
// absent. created reports whether this call inserted the row.
func FindOrCreateItem(ctx context.Context, input *NewItem) (item *Item, created bool, err error) {
	name, err := input.validate()
	if err != nil {
		return nil, false, err
	}
	key := utils.NormalizeName(name)

	unlock := obtainCatalogLock(ctx, "item:"+key)
	defer unlock()

	existing, err := findItemByKey(ctx, key)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		return nil, false, err
	}

	newItem := Item{Name: name, NameKey: key}
	db := config.GetDB()
	result := db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&newItem)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		// lost the race to a concurrent insert of the same name
		existing, err := findItemByKey(ctx, key)
		return existing, false, err
	}

	clearRedis(ctx, "FindOrCreateItem", newItem)
	newItem.ensureUnits()
	return &newItem, true, nil
}

func findItemByKey(ctx context.Context, key string) (*Item, error) {
	db := config.GetDB()
	var item Item
	err := db.WithContext(ctx).Preload("Units", preloadUnits).Where("name_key = ?", key).Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	item.ensureUnits()
	return &item, nil
}

// units always serialize as a list
func (item *Item) ensureUnits() {
	if item.Units == nil {
		item.Units = []Unit{}
	}
}
