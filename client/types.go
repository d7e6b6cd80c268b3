package client

import (
	"time"

	"github.com/shopspring/decimal"
)

type State struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type City struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	StateId   int     `json:"stateId"`
}

type Market struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	CityId int    `json:"cityId"`
}

type Item struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Units []Unit `json:"units"`
}

type ItemRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type Unit struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	ItemId int      `json:"itemId"`
	Item   *ItemRef `json:"item,omitempty"`
}

type PriceReport struct {
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

type PageMetadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type PricePage struct {
	Data     []PriceReport `json:"data"`
	Metadata PageMetadata  `json:"metadata"`
}

// PriceQuery filters GET /prices. Zero fields are omitted.
type PriceQuery struct {
	StateId  int
	CityId   int
	MarketId int
	ItemId   int
	UnitId   int
	Page     int
	Limit    int
}

type NewPriceReport struct {
	Price    decimal.Decimal `json:"price"`
	ItemId   int             `json:"itemId"`
	UnitId   int             `json:"unitId"`
	MarketId int             `json:"marketId"`
}

// FieldViolation mirrors one entry of an error response's details.
type FieldViolation struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}
