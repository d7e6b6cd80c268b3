package cascade

import (
	"context"
	"sync"

	"bitbucket.org/mmdatafocus/pricewatch_backend/client"
)

const browserPageLimit = 10

// Browser is the filtered, paginated price table. Every filter change reloads page 1.
type Browser struct {
	api API

	Location *Location
	Catalog  *Catalog
	Reports  *Selector[client.PriceReport]

	mu       sync.Mutex
	metadata client.PageMetadata
}

func NewBrowser(api API, n Notifier) *Browser {
	return &Browser{
		api:      api,
		Location: NewLocation(api, n),
		Catalog:  NewCatalog(api, n),
		Reports:  NewSelector[client.PriceReport](n, "Failed to load prices"),
	}
}

// Init loads states, items and the first page.
func (b *Browser) Init(ctx context.Context) error {
	statesErr := b.Location.LoadStates(ctx)
	itemsErr := b.Catalog.LoadItems(ctx)
	pageErr := b.LoadPage(ctx, 1)
	for _, err := range []error{statesErr, itemsErr, pageErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Browser) query(page int) client.PriceQuery {
	loc := b.Location.Selection()
	cat := b.Catalog.Selection()
	return client.PriceQuery{
		StateId:  loc.StateId,
		CityId:   loc.CityId,
		MarketId: loc.MarketId,
		ItemId:   cat.ItemId,
		UnitId:   cat.UnitId,
		Page:     page,
		Limit:    browserPageLimit,
	}
}

// LoadPage fetches one page with the current filters. The page and metadata change only
// when the load is not superseded.
func (b *Browser) LoadPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	q := b.query(page)
	var result *client.PricePage
	return b.Reports.LoadThen(ctx, func(ctx context.Context) ([]client.PriceReport, error) {
		p, err := b.api.Prices(ctx, q)
		if err != nil {
			return nil, err
		}
		result = p
		return p.Data, nil
	}, func([]client.PriceReport) {
		b.mu.Lock()
		b.metadata = result.Metadata
		b.mu.Unlock()
	})
}

func (b *Browser) Metadata() client.PageMetadata {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metadata
}

// NextPage is a no-op on the last page.
func (b *Browser) NextPage(ctx context.Context) error {
	md := b.Metadata()
	if md.Page >= md.TotalPages {
		return nil
	}
	return b.LoadPage(ctx, md.Page+1)
}

// PrevPage is a no-op on the first page.
func (b *Browser) PrevPage(ctx context.Context) error {
	md := b.Metadata()
	if md.Page <= 1 {
		return nil
	}
	return b.LoadPage(ctx, md.Page-1)
}

// SetState changes the state filter. A failed city load is notified but the table still
// reloads with the new filter.
func (b *Browser) SetState(ctx context.Context, stateId int) error {
	_ = b.Location.SelectState(ctx, stateId)
	return b.LoadPage(ctx, 1)
}

func (b *Browser) SetCity(ctx context.Context, cityId int) error {
	_ = b.Location.SelectCity(ctx, cityId)
	return b.LoadPage(ctx, 1)
}

func (b *Browser) SetMarket(ctx context.Context, marketId int) error {
	b.Location.SelectMarket(marketId)
	return b.LoadPage(ctx, 1)
}

func (b *Browser) SetItem(ctx context.Context, itemId int) error {
	b.Catalog.SelectItem(itemId)
	return b.LoadPage(ctx, 1)
}

func (b *Browser) SetUnit(ctx context.Context, unitId int) error {
	b.Catalog.SelectUnit(unitId)
	return b.LoadPage(ctx, 1)
}

func (b *Browser) ClearFilters(ctx context.Context) error {
	b.Location.Clear()
	b.Catalog.Clear()
	return b.LoadPage(ctx, 1)
}
