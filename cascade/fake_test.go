package cascade_test

import (
	"context"
	"errors"
	"sync"

	"bitbucket.org/mmdatafocus/pricewatch_backend/cascade"
	"bitbucket.org/mmdatafocus/pricewatch_backend/client"
)

var errUnavailable = errors.New("api unavailable")

// fakeAPI serves a fixed location tree and an in-memory catalog.
type fakeAPI struct {
	mu sync.Mutex

	states  []client.State
	cities  map[int][]client.City
	markets map[int][]client.Market
	items   []client.Item

	// cityGate blocks Cities for a state until closed; cityStarted is signalled on entry
	cityGate    map[int]chan struct{}
	cityStarted chan int

	failCities bool
	failSubmit bool
	failPrices bool

	submitted []client.NewPriceReport
	queries   []client.PriceQuery
	reports   []client.PriceReport
	nextId    int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		states: []client.State{{ID: 1, Name: "Lagos"}, {ID: 2, Name: "Rivers"}},
		cities: map[int][]client.City{
			1: {{ID: 10, Name: "Ikeja", StateId: 1}, {ID: 11, Name: "Lekki", StateId: 1}},
			2: {{ID: 20, Name: "Port Harcourt", StateId: 2}},
		},
		markets: map[int][]client.Market{
			10: {{ID: 100, Name: "Computer Village", CityId: 10}},
			20: {{ID: 200, Name: "Mile 1 Market", CityId: 20}},
		},
		items: []client.Item{
			{ID: 1, Name: "Rice", Units: []client.Unit{{ID: 1, Name: "50kg bag", ItemId: 1}}},
			{ID: 2, Name: "Beans", Units: []client.Unit{{ID: 2, Name: "paint bucket", ItemId: 2}}},
		},
		cityGate: map[int]chan struct{}{},
		nextId:   1000,
	}
}

var _ cascade.API = (*fakeAPI)(nil)

func (f *fakeAPI) States(ctx context.Context) ([]client.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.State{}, f.states...), nil
}

func (f *fakeAPI) Cities(ctx context.Context, stateId int) ([]client.City, error) {
	f.mu.Lock()
	gate := f.cityGate[stateId]
	started := f.cityStarted
	fail := f.failCities
	f.mu.Unlock()

	if started != nil {
		started <- stateId
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errUnavailable
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.City{}, f.cities[stateId]...), nil
}

func (f *fakeAPI) Markets(ctx context.Context, cityId int) ([]client.Market, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.Market{}, f.markets[cityId]...), nil
}

func (f *fakeAPI) Items(ctx context.Context) ([]client.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]client.Item, 0, len(f.items))
	for _, item := range f.items {
		item.Units = append([]client.Unit{}, item.Units...)
		out = append(out, item)
	}
	return out, nil
}

func (f *fakeAPI) CreateItem(ctx context.Context, name string) (*client.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.Name == name {
			return &item, nil
		}
	}
	f.nextId++
	item := client.Item{ID: f.nextId, Name: name, Units: []client.Unit{}}
	f.items = append(f.items, item)
	return &item, nil
}

func (f *fakeAPI) CreateUnit(ctx context.Context, name string, itemId int) (*client.Unit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID != itemId {
			continue
		}
		f.nextId++
		unit := client.Unit{ID: f.nextId, Name: name, ItemId: itemId, Item: &client.ItemRef{ID: itemId, Name: f.items[i].Name}}
		f.items[i].Units = append(f.items[i].Units, unit)
		return &unit, nil
	}
	return nil, &client.APIError{Status: 400, Message: "Invalid foreign key: Ensure item, unit, or market exists."}
}

// Prices pages over f.reports, ignoring filters.
func (f *fakeAPI) Prices(ctx context.Context, q client.PriceQuery) (*client.PricePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.failPrices {
		return nil, errUnavailable
	}
	total := len(f.reports)
	start := (q.Page - 1) * q.Limit
	end := min(start+q.Limit, total)
	data := []client.PriceReport{}
	if start < total {
		data = append(data, f.reports[start:end]...)
	}
	return &client.PricePage{
		Data: data,
		Metadata: client.PageMetadata{
			Total: int64(total), Page: q.Page, Limit: q.Limit,
			TotalPages: (total + q.Limit - 1) / q.Limit,
		},
	}, nil
}

func (f *fakeAPI) SubmitPrice(ctx context.Context, report client.NewPriceReport) (*client.PriceReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSubmit {
		return nil, errUnavailable
	}
	f.submitted = append(f.submitted, report)
	f.nextId++
	return &client.PriceReport{ID: f.nextId, Price: report.Price, ItemId: report.ItemId, UnitId: report.UnitId, MarketId: report.MarketId}, nil
}

type notification struct {
	level   cascade.Level
	message string
}

type recorder struct {
	mu   sync.Mutex
	seen []notification
}

func (r *recorder) Notify(level cascade.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, notification{level, message})
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, n := range r.seen {
		out = append(out, n.message)
	}
	return out
}
