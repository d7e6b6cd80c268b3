package cascade

import (
	"context"
	"errors"
	"strings"
	"sync"

	"bitbucket.org/mmdatafocus/pricewatch_backend/client"
)

var (
	ErrNoItemSelected = errors.New("select an item first")
	ErrBlankName      = errors.New("name is required")
)

type CatalogSelection struct {
	ItemId int
	UnitId int
}

// Catalog is the item → unit cascade. Units come from the selected item's embedded units,
// so choosing an item never fetches.
type Catalog struct {
	api      API
	notifier Notifier

	Items *Selector[client.Item]
	Units *Selector[client.Unit]

	mu        sync.Mutex
	selection CatalogSelection
}

func NewCatalog(api API, n Notifier) *Catalog {
	return &Catalog{
		api:      api,
		notifier: notifierOrDiscard(n),
		Items:    NewSelector[client.Item](n, "Failed to load items"),
		Units:    NewSelector[client.Unit](n, "Failed to load units"),
	}
}

// LoadItems refreshes the item list and the unit list of the selected item.
func (c *Catalog) LoadItems(ctx context.Context) error {
	if err := c.Items.Load(ctx, c.api.Items); err != nil {
		return err
	}
	if itemId := c.Selection().ItemId; itemId > 0 {
		c.refreshUnits(itemId)
	}
	return nil
}

// SelectItem selects itemId (0 clears it), recomputes the units and clears the unit.
func (c *Catalog) SelectItem(itemId int) {
	c.mu.Lock()
	c.selection = CatalogSelection{ItemId: itemId}
	c.mu.Unlock()

	if itemId <= 0 {
		c.Units.Reset()
		return
	}
	c.refreshUnits(itemId)
}

func (c *Catalog) refreshUnits(itemId int) {
	item, ok := c.Items.Find(func(i client.Item) bool { return i.ID == itemId })
	if !ok {
		c.Units.Replace(nil)
		return
	}
	c.Units.Replace(item.Units)
}

func (c *Catalog) SelectUnit(unitId int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.UnitId = unitId
}

func (c *Catalog) Selection() CatalogSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

func (c *Catalog) Clear() {
	c.mu.Lock()
	c.selection = CatalogSelection{}
	c.mu.Unlock()
	c.Units.Reset()
}

// AddItem creates (or finds) an item by name and selects it.
func (c *Catalog) AddItem(ctx context.Context, name string) (*client.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}
	item, err := c.api.CreateItem(ctx, name)
	if err != nil {
		c.notifier.Notify(LevelError, "Failed to create item")
		return nil, err
	}

	c.Items.Update(func(items []client.Item) []client.Item {
		for i := range items {
			if items[i].ID == item.ID {
				items[i] = *item
				return items
			}
		}
		return append(items, *item)
	})
	c.SelectItem(item.ID)
	c.notifier.Notify(LevelSuccess, "Item created successfully")
	return item, nil
}

// AddUnit creates (or finds) a unit of the selected item and selects it.
func (c *Catalog) AddUnit(ctx context.Context, name string) (*client.Unit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrBlankName
	}
	itemId := c.Selection().ItemId
	if itemId <= 0 {
		return nil, ErrNoItemSelected
	}
	unit, err := c.api.CreateUnit(ctx, name, itemId)
	if err != nil {
		c.notifier.Notify(LevelError, "Failed to create unit")
		return nil, err
	}

	c.Items.Update(func(items []client.Item) []client.Item {
		for i := range items {
			if items[i].ID == itemId {
				items[i].Units = upsertUnit(items[i].Units, *unit)
			}
		}
		return items
	})
	c.Units.Update(func(units []client.Unit) []client.Unit {
		return upsertUnit(units, *unit)
	})
	c.SelectUnit(unit.ID)
	c.notifier.Notify(LevelSuccess, "Unit created successfully")
	return unit, nil
}

func upsertUnit(units []client.Unit, unit client.Unit) []client.Unit {
	for i := range units {
		if units[i].ID == unit.ID {
			units[i] = unit
			return units
		}
	}
	return append(append([]client.Unit{}, units...), unit)
}
