package cascade

import (
	"context"
	"sync"

	"bitbucket.org/mmdatafocus/pricewatch_backend/client"
)

type LocationSelection struct {
	StateId  int
	CityId   int
	MarketId int
}

// Location is the state → city → market cascade. Choosing a state clears the city, the
// market and the market list, then loads that state's cities; choosing a city clears the
// market and loads its markets.
type Location struct {
	api API

	States  *Selector[client.State]
	Cities  *Selector[client.City]
	Markets *Selector[client.Market]

	mu        sync.Mutex
	selection LocationSelection
}

func NewLocation(api API, n Notifier) *Location {
	return &Location{
		api:     api,
		States:  NewSelector[client.State](n, "Failed to load states"),
		Cities:  NewSelector[client.City](n, "Failed to load cities"),
		Markets: NewSelector[client.Market](n, "Failed to load markets"),
	}
}

func (l *Location) LoadStates(ctx context.Context) error {
	return l.States.Load(ctx, l.api.States)
}

// SelectState selects stateId (0 clears it) and loads its cities.
func (l *Location) SelectState(ctx context.Context, stateId int) error {
	l.mu.Lock()
	l.selection = LocationSelection{StateId: stateId}
	l.mu.Unlock()

	l.Markets.Reset()
	if stateId <= 0 {
		l.Cities.Reset()
		return nil
	}
	return l.Cities.Load(ctx, func(ctx context.Context) ([]client.City, error) {
		return l.api.Cities(ctx, stateId)
	})
}

// SelectCity selects cityId (0 clears it) and loads its markets.
func (l *Location) SelectCity(ctx context.Context, cityId int) error {
	l.mu.Lock()
	l.selection.CityId = cityId
	l.selection.MarketId = 0
	l.mu.Unlock()

	if cityId <= 0 {
		l.Markets.Reset()
		return nil
	}
	return l.Markets.Load(ctx, func(ctx context.Context) ([]client.Market, error) {
		return l.api.Markets(ctx, cityId)
	})
}

func (l *Location) SelectMarket(marketId int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selection.MarketId = marketId
}

func (l *Location) Selection() LocationSelection {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selection
}

// Clear drops every selection and the dependent lists; the state list stays.
func (l *Location) Clear() {
	l.mu.Lock()
	l.selection = LocationSelection{}
	l.mu.Unlock()
	l.Cities.Reset()
	l.Markets.Reset()
}
