package cascade

import (
	"context"
	"strings"
	"sync"

	"bitbucket.org/mmdatafocus/pricewatch_backend/client"
	"github.com/shopspring/decimal"
)

var minPrice = decimal.RequireFromString("0.01")

type FieldError struct {
	Field   string
	Message string
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Form is the price submission form: both cascades, a price, and submit.
type Form struct {
	api      API
	notifier Notifier

	Location *Location
	Catalog  *Catalog

	mu    sync.Mutex
	price decimal.Decimal
}

func NewForm(api API, n Notifier) *Form {
	return &Form{
		api:      api,
		notifier: notifierOrDiscard(n),
		Location: NewLocation(api, n),
		Catalog:  NewCatalog(api, n),
	}
}

// Init loads the state and item lists. Each failure is notified on its own; the first is
// returned.
func (f *Form) Init(ctx context.Context) error {
	statesErr := f.Location.LoadStates(ctx)
	itemsErr := f.Catalog.LoadItems(ctx)
	if statesErr != nil {
		return statesErr
	}
	return itemsErr
}

func (f *Form) SetPrice(price decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.price = price
}

func (f *Form) Price() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.price
}

// Validate reports every missing selection and a price below 0.01.
func (f *Form) Validate() ValidationErrors {
	loc := f.Location.Selection()
	cat := f.Catalog.Selection()

	var errs ValidationErrors
	if loc.StateId <= 0 {
		errs = append(errs, FieldError{Field: "stateId", Message: "Please select a state"})
	}
	if loc.CityId <= 0 {
		errs = append(errs, FieldError{Field: "cityId", Message: "Please select a city"})
	}
	if loc.MarketId <= 0 {
		errs = append(errs, FieldError{Field: "marketId", Message: "Please select a market"})
	}
	if cat.ItemId <= 0 {
		errs = append(errs, FieldError{Field: "itemId", Message: "Please select an item"})
	}
	if cat.UnitId <= 0 {
		errs = append(errs, FieldError{Field: "unitId", Message: "Please select a unit"})
	}
	if f.Price().LessThan(minPrice) {
		errs = append(errs, FieldError{Field: "price", Message: "Price must be greater than 0"})
	}
	return errs
}

// Submit posts the report. On success the form is reset; on failure it keeps its values.
func (f *Form) Submit(ctx context.Context) (*client.PriceReport, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return nil, errs
	}
	loc := f.Location.Selection()
	cat := f.Catalog.Selection()

	report, err := f.api.SubmitPrice(ctx, client.NewPriceReport{
		Price:    f.Price(),
		ItemId:   cat.ItemId,
		UnitId:   cat.UnitId,
		MarketId: loc.MarketId,
	})
	if err != nil {
		f.notifier.Notify(LevelError, "Failed to submit price. Please try again.")
		return nil, err
	}
	f.notifier.Notify(LevelSuccess, "Thanks for contributing!")
	f.Reset()
	return report, nil
}

// Reset clears selections and price. Loaded state and item lists stay.
func (f *Form) Reset() {
	f.Location.Clear()
	f.Catalog.Clear()
	f.SetPrice(decimal.Zero)
}
