package cascade

import (
	"context"

	"bitbucket.org/mmdatafocus/pricewatch_backend/client"
)

// API is the part of client.Client the state machines use.
type API interface {
	States(ctx context.Context) ([]client.State, error)
	Cities(ctx context.Context, stateId int) ([]client.City, error)
	Markets(ctx context.Context, cityId int) ([]client.Market, error)
	Items(ctx context.Context) ([]client.Item, error)
	CreateItem(ctx context.Context, name string) (*client.Item, error)
	CreateUnit(ctx context.Context, name string, itemId int) (*client.Unit, error)
	Prices(ctx context.Context, q client.PriceQuery) (*client.PricePage, error)
	SubmitPrice(ctx context.Context, report client.NewPriceReport) (*client.PriceReport, error)
}

var _ API = (*client.Client)(nil)
