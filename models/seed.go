package models

import (
	"context"
	"fmt"
	"strings"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type SeedData struct {
	States []SeedState `yaml:"states"`
	Items  []SeedItem  `yaml:"items"`
}

type SeedState struct {
	Name   string     `yaml:"name"`
	Cities []SeedCity `yaml:"cities"`
}

type SeedCity struct {
	Name      string   `yaml:"name"`
	Latitude  float64  `yaml:"latitude"`
	Longitude float64  `yaml:"longitude"`
	Markets   []string `yaml:"markets"`
}

type SeedItem struct {
	Name  string   `yaml:"name"`
	Units []string `yaml:"units"`
}

// SeedSummary counts the rows touched by ApplySeed, created or already present.
type SeedSummary struct {
	States  int
	Cities  int
	Markets int
	Items   int
	Units   int
}

func ParseSeed(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}
	for _, s := range data.States {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("parsing seed: state without a name")
		}
		for _, c := range s.Cities {
			if strings.TrimSpace(c.Name) == "" {
				return nil, fmt.Errorf("parsing seed: city without a name in state %q", s.Name)
			}
		}
	}
	return &data, nil
}

// ApplySeed upserts the location hierarchy in one transaction, then the catalog through
// find-or-create. Running it twice leaves the database unchanged.
func ApplySeed(ctx context.Context, data *SeedData) (*SeedSummary, error) {
	summary := &SeedSummary{}
	db := config.GetDB()
	var stateIds, cityIds []int

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range data.States {
			state := State{}
			if err := tx.Where(State{Name: strings.TrimSpace(s.Name)}).FirstOrCreate(&state).Error; err != nil {
				return fmt.Errorf("state %q: %w", s.Name, err)
			}
			summary.States++

			for _, c := range s.Cities {
				city := City{}
				err := tx.Where(City{Name: strings.TrimSpace(c.Name), StateId: state.ID}).
					Assign(map[string]interface{}{"latitude": c.Latitude, "longitude": c.Longitude}).
					FirstOrCreate(&city).Error
				if err != nil {
					return fmt.Errorf("city %q: %w", c.Name, err)
				}
				summary.Cities++

				for _, m := range c.Markets {
					market := Market{}
					if err := tx.Where(Market{Name: strings.TrimSpace(m), CityId: city.ID}).FirstOrCreate(&market).Error; err != nil {
						return fmt.Errorf("market %q: %w", m, err)
					}
					summary.Markets++
				}
				cityIds = append(cityIds, city.ID)
			}
			stateIds = append(stateIds, state.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// after commit; a read racing the transaction would re-cache the old lists
	clearRedis(ctx, "ApplySeed", State{})
	for _, id := range stateIds {
		clearRedis(ctx, "ApplySeed", City{StateId: id})
	}
	for _, id := range cityIds {
		clearRedis(ctx, "ApplySeed", Market{CityId: id})
	}

	for _, i := range data.Items {
		item, _, err := FindOrCreateItem(ctx, &NewItem{Name: i.Name})
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", i.Name, err)
		}
		summary.Items++
		for _, u := range i.Units {
			if _, _, err := FindOrCreateUnit(ctx, &NewUnit{Name: u, ItemId: utils.FlexibleInt(item.ID)}); err != nil {
				return nil, fmt.Errorf("unit %q of item %q: %w", u, i.Name, err)
			}
			summary.Units++
		}
	}
	return summary, nil
}
