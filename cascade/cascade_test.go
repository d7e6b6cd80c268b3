package cascade_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/pricewatch_backend/cascade"
	"bitbucket.org/mmdatafocus/pricewatch_backend/client"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cityNames(l *cascade.Location) []string {
	names := []string{}
	for _, c := range l.Cities.Options() {
		names = append(names, c.Name)
	}
	return names
}

func TestSelectStateLoadsCitiesAndClearsBelow(t *testing.T) {
	api := newFakeAPI()
	loc := cascade.NewLocation(api, nil)
	ctx := context.Background()

	require.NoError(t, loc.LoadStates(ctx))
	assert.Len(t, loc.States.Options(), 2)

	require.NoError(t, loc.SelectState(ctx, 1))
	require.NoError(t, loc.SelectCity(ctx, 10))
	loc.SelectMarket(100)
	assert.Equal(t, cascade.LocationSelection{StateId: 1, CityId: 10, MarketId: 100}, loc.Selection())
	assert.Len(t, loc.Markets.Options(), 1)

	require.NoError(t, loc.SelectState(ctx, 2))
	assert.Equal(t, cascade.LocationSelection{StateId: 2}, loc.Selection())
	assert.Equal(t, []string{"Port Harcourt"}, cityNames(loc))
	assert.Empty(t, loc.Markets.Options())
	assert.Equal(t, cascade.StatusIdle, loc.Markets.Status())

	require.NoError(t, loc.SelectState(ctx, 0))
	assert.Empty(t, loc.Cities.Options())
}

func TestSelectCityClearsMarket(t *testing.T) {
	api := newFakeAPI()
	loc := cascade.NewLocation(api, nil)
	ctx := context.Background()

	require.NoError(t, loc.SelectState(ctx, 1))
	require.NoError(t, loc.SelectCity(ctx, 10))
	loc.SelectMarket(100)

	require.NoError(t, loc.SelectCity(ctx, 11))
	assert.Equal(t, cascade.LocationSelection{StateId: 1, CityId: 11}, loc.Selection())
	assert.Empty(t, loc.Markets.Options())
	assert.Equal(t, cascade.StatusLoaded, loc.Markets.Status())
}

func TestStaleCityLoadIsDiscarded(t *testing.T) {
	api := newFakeAPI()
	api.cityGate[1] = make(chan struct{})
	api.cityStarted = make(chan int, 2)
	loc := cascade.NewLocation(api, nil)
	ctx := context.Background()

	slow := make(chan error, 1)
	go func() { slow <- loc.SelectState(ctx, 1) }()
	require.Equal(t, 1, <-api.cityStarted)

	require.NoError(t, loc.SelectState(ctx, 2))
	require.Equal(t, 2, <-api.cityStarted)
	close(api.cityGate[1])

	assert.ErrorIs(t, <-slow, cascade.ErrSuperseded)
	assert.Equal(t, []string{"Port Harcourt"}, cityNames(loc))
	assert.Equal(t, 2, loc.Selection().StateId)
}

func TestFailedLoadKeepsOptionsAndNotifies(t *testing.T) {
	api := newFakeAPI()
	rec := &recorder{}
	loc := cascade.NewLocation(api, rec)
	ctx := context.Background()

	require.NoError(t, loc.SelectState(ctx, 1))
	api.failCities = true
	err := loc.SelectState(ctx, 1)
	assert.ErrorIs(t, err, errUnavailable)

	assert.Equal(t, []string{"Ikeja", "Lekki"}, cityNames(loc))
	assert.Equal(t, cascade.StatusError, loc.Cities.Status())
	assert.Equal(t, []string{"Failed to load cities"}, rec.messages())
}

func TestCatalogUnitsFollowItem(t *testing.T) {
	api := newFakeAPI()
	cat := cascade.NewCatalog(api, nil)
	require.NoError(t, cat.LoadItems(context.Background()))

	cat.SelectItem(1)
	cat.SelectUnit(1)
	require.Len(t, cat.Units.Options(), 1)
	assert.Equal(t, "50kg bag", cat.Units.Options()[0].Name)

	cat.SelectItem(2)
	assert.Equal(t, cascade.CatalogSelection{ItemId: 2}, cat.Selection())
	assert.Equal(t, "paint bucket", cat.Units.Options()[0].Name)

	cat.SelectItem(0)
	assert.Empty(t, cat.Units.Options())
}

func TestAddItemAndUnitSelectResult(t *testing.T) {
	api := newFakeAPI()
	rec := &recorder{}
	cat := cascade.NewCatalog(api, rec)
	ctx := context.Background()
	require.NoError(t, cat.LoadItems(ctx))

	_, err := cat.AddUnit(ctx, "cup")
	assert.ErrorIs(t, err, cascade.ErrNoItemSelected)
	_, err = cat.AddItem(ctx, "   ")
	assert.ErrorIs(t, err, cascade.ErrBlankName)

	item, err := cat.AddItem(ctx, " Garri ")
	require.NoError(t, err)
	assert.Equal(t, "Garri", item.Name)
	assert.Equal(t, item.ID, cat.Selection().ItemId)
	assert.Len(t, cat.Items.Options(), 3)
	assert.Empty(t, cat.Units.Options())

	unit, err := cat.AddUnit(ctx, "mudu")
	require.NoError(t, err)
	assert.Equal(t, cascade.CatalogSelection{ItemId: item.ID, UnitId: unit.ID}, cat.Selection())
	require.Len(t, cat.Units.Options(), 1)

	// the embedded units of the cached item are updated too
	cat.SelectItem(1)
	cat.SelectItem(item.ID)
	assert.Len(t, cat.Units.Options(), 1)

	// an existing item is selected rather than duplicated
	again, err := cat.AddItem(ctx, "Garri")
	require.NoError(t, err)
	assert.Equal(t, item.ID, again.ID)
	assert.Len(t, cat.Items.Options(), 3)

	assert.Equal(t, []string{"Item created successfully", "Unit created successfully", "Item created successfully"}, rec.messages())
}

func TestFormValidation(t *testing.T) {
	form := cascade.NewForm(newFakeAPI(), nil)

	errs := form.Validate()
	msgs := []string{}
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{
		"Please select a state",
		"Please select a city",
		"Please select a market",
		"Please select an item",
		"Please select a unit",
		"Price must be greater than 0",
	}, msgs)

	_, err := form.Submit(context.Background())
	var verr cascade.ValidationErrors
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr, 6)
}

func fillForm(t *testing.T, form *cascade.Form, price string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, form.Init(ctx))
	require.NoError(t, form.Location.SelectState(ctx, 1))
	require.NoError(t, form.Location.SelectCity(ctx, 10))
	form.Location.SelectMarket(100)
	form.Catalog.SelectItem(1)
	form.Catalog.SelectUnit(1)
	form.SetPrice(decimal.RequireFromString(price))
}

func TestFormSubmit(t *testing.T) {
	api := newFakeAPI()
	rec := &recorder{}
	form := cascade.NewForm(api, rec)
	fillForm(t, form, "0.001")

	errs := form.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "price", errs[0].Field)

	form.SetPrice(decimal.RequireFromString("45000"))
	report, err := form.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, report.MarketId)
	require.Len(t, api.submitted, 1)
	sent := api.submitted[0]
	assert.True(t, sent.Price.Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, [3]int{1, 1, 100}, [3]int{sent.ItemId, sent.UnitId, sent.MarketId})

	// reset after success; the loaded lists stay
	assert.Equal(t, cascade.LocationSelection{}, form.Location.Selection())
	assert.Equal(t, cascade.CatalogSelection{}, form.Catalog.Selection())
	assert.True(t, form.Price().IsZero())
	assert.Len(t, form.Location.States.Options(), 2)
	assert.Equal(t, []string{"Thanks for contributing!"}, rec.messages())
}

func TestFormSubmitFailureKeepsValues(t *testing.T) {
	api := newFakeAPI()
	api.failSubmit = true
	rec := &recorder{}
	form := cascade.NewForm(api, rec)
	fillForm(t, form, "100")

	_, err := form.Submit(context.Background())
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, cascade.LocationSelection{StateId: 1, CityId: 10, MarketId: 100}, form.Location.Selection())
	assert.Equal(t, "100", form.Price().String())
	assert.Equal(t, []string{"Failed to submit price. Please try again."}, rec.messages())
}

func TestBrowserPagingAndFilters(t *testing.T) {
	api := newFakeAPI()
	for i := 1; i <= 23; i++ {
		api.reports = append(api.reports, client.PriceReport{ID: i, ItemName: fmt.Sprint("report ", i)})
	}
	b := cascade.NewBrowser(api, nil)
	ctx := context.Background()

	require.NoError(t, b.Init(ctx))
	assert.Equal(t, client.PageMetadata{Total: 23, Page: 1, Limit: 10, TotalPages: 3}, b.Metadata())
	assert.Len(t, b.Reports.Options(), 10)

	require.NoError(t, b.PrevPage(ctx))
	assert.Equal(t, 1, b.Metadata().Page)

	require.NoError(t, b.NextPage(ctx))
	require.NoError(t, b.NextPage(ctx))
	assert.Equal(t, 3, b.Metadata().Page)
	assert.Len(t, b.Reports.Options(), 3)
	calls := len(api.queries)
	require.NoError(t, b.NextPage(ctx))
	assert.Equal(t, calls, len(api.queries), "no request past the last page")

	require.NoError(t, b.SetState(ctx, 1))
	require.NoError(t, b.SetMarket(ctx, 100))
	require.NoError(t, b.SetItem(ctx, 2))
	last := api.queries[len(api.queries)-1]
	assert.Equal(t, client.PriceQuery{StateId: 1, MarketId: 100, ItemId: 2, Page: 1, Limit: 10}, last)
	assert.Equal(t, 1, b.Metadata().Page)

	require.NoError(t, b.ClearFilters(ctx))
	last = api.queries[len(api.queries)-1]
	assert.Equal(t, client.PriceQuery{Page: 1, Limit: 10}, last)
}

func TestBrowserLoadFailure(t *testing.T) {
	api := newFakeAPI()
	api.reports = []client.PriceReport{{ID: 1}}
	rec := &recorder{}
	b := cascade.NewBrowser(api, rec)
	ctx := context.Background()
	require.NoError(t, b.LoadPage(ctx, 1))

	api.failPrices = true
	assert.ErrorIs(t, b.LoadPage(ctx, 1), errUnavailable)
	assert.Len(t, b.Reports.Options(), 1)
	assert.Equal(t, []string{"Failed to load prices"}, rec.messages())
}
