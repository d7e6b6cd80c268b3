package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

func init() {
	// prices go over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceReport is one observed price. Reports are immutable once stored.
type PriceReport struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	ItemId    int             `gorm:"not null;index" json:"itemId"`
	UnitId    int             `gorm:"not null;index" json:"unitId"`
	MarketId  int             `gorm:"not null;index" json:"marketId"`
	CreatedAt time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`

	Item   *Item   `gorm:"foreignKey:ItemId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Unit   *Unit   `gorm:"foreignKey:UnitId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Market *Market `gorm:"foreignKey:MarketId;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

type NewPriceReport struct {
	Price    *decimal.Decimal  `json:"price" binding:"required"`
	ItemId   utils.FlexibleInt `json:"itemId" binding:"required,gt=0"`
	UnitId   utils.FlexibleInt `json:"unitId" binding:"required,gt=0"`
	MarketId utils.FlexibleInt `json:"marketId" binding:"required,gt=0"`
}

// MissingFieldsMessage is reported when any of the four inputs is absent.
const MissingFieldsMessage = "Missing required fields: price, itemId, unitId, marketId"

// Bounds of the decimal(20,4) price column.
const PriceScale = 4

var MaxPrice = decimal.New(1, 16)

func (input *NewPriceReport) validate(ctx context.Context) error {
	verr := &utils.ValidationError{}
	if input.Price == nil {
		verr.Violations = append(verr.Violations, utils.FieldViolation{Field: "price", Tag: "required", Message: "price is required"})
	} else if !input.Price.IsPositive() {
		verr.Violations = append(verr.Violations, utils.FieldViolation{Field: "price", Tag: "gt", Message: "price must be greater than 0"})
	} else if input.Price.GreaterThanOrEqual(MaxPrice) {
		verr.Violations = append(verr.Violations, utils.FieldViolation{Field: "price", Tag: "lt", Message: "price must be less than " + MaxPrice.String()})
	} else if !input.Price.Equal(input.Price.Round(PriceScale)) {
		verr.Violations = append(verr.Violations, utils.FieldViolation{Field: "price", Tag: "scale", Message: fmt.Sprintf("price must have at most %d decimal places", PriceScale)})
	}
	for _, f := range []struct {
		name  string
		value utils.FlexibleInt
	}{{"itemId", input.ItemId}, {"unitId", input.UnitId}, {"marketId", input.MarketId}} {
		if f.value <= 0 {
			verr.Violations = append(verr.Violations, utils.FieldViolation{Field: f.name, Tag: "required", Message: f.name + " is required"})
		}
	}
	if len(verr.Violations) > 0 {
		return verr
	}

	if config.StrictUnitItemMatch() {
		return validateUnitBelongsToItem(ctx, int(input.UnitId), int(input.ItemId))
	}
	return nil
}

func validateUnitBelongsToItem(ctx context.Context, unitId int, itemId int) error {
	db := config.GetDB()
	var owner []int
	if err := db.WithContext(ctx).Model(&Unit{}).Where("id = ?", unitId).Pluck("item_id", &owner).Error; err != nil {
		return err
	}
	if len(owner) == 0 {
		return fmt.Errorf("%w: unit %d does not exist", utils.ErrInvalidForeignKey, unitId)
	}
	if owner[0] != itemId {
		return utils.NewValidationError("unitId", "unit_item", fmt.Sprintf("unit %d does not belong to item %d", unitId, itemId))
	}
	return nil
}

// CreatePriceReport stores a report and returns its denormalized view.
// Referential integrity is left to the store's foreign keys; a violation comes back as
// ErrInvalidForeignKey.
func CreatePriceReport(ctx context.Context, input *NewPriceReport) (*PriceReportView, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	report := PriceReport{
		Price:    *input.Price,
		ItemId:   int(input.ItemId),
		UnitId:   int(input.UnitId),
		MarketId: int(input.MarketId),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(&report).Error; err != nil {
		return nil, utils.TranslateStoreError(err)
	}

	view, err := GetPriceReportView(ctx, report.ID)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			return nil, fmt.Errorf("price report %d vanished after insert: %w", report.ID, err)
		}
		return nil, err
	}
	return view, nil
}
