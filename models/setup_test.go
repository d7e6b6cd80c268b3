package models_test

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/models"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// setupDB installs a fresh in-memory database as the process-wide handle. Redis is off.
func setupDB(t *testing.T) {
	t.Helper()
	conn, err := config.OpenSQLite("")
	require.NoError(t, err)
	require.NoError(t, models.Migrate(conn))

	prevDB, prevRedis := config.GetDB(), config.GetRedisDB()
	config.SetDB(conn)
	config.SetRedisClient(nil)
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
		config.SetDB(prevDB)
		config.SetRedisClient(prevRedis)
	})
}

// setupRedis switches the cache on for the rest of the test.
func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	config.SetRedisClient(client)
	t.Cleanup(func() {
		_ = client.Close()
		config.SetRedisClient(nil)
	})
	return mr
}

type fixture struct {
	lagos, rivers                       models.State
	ikeja, lekki, phc                   models.City
	computerVillage, lekkiMarket, mile1 models.Market
	rice, beans                         models.Item
	riceBag, riceCup, beansBag          models.Unit
}

// seedFixture builds two states, three cities, three markets and two items.
func seedFixture(t *testing.T) fixture {
	t.Helper()
	db := config.GetDB()
	var f fixture

	f.lagos = models.State{Name: "Lagos"}
	f.rivers = models.State{Name: "Rivers"}
	require.NoError(t, db.Create(&f.lagos).Error)
	require.NoError(t, db.Create(&f.rivers).Error)

	f.ikeja = models.City{Name: "Ikeja", StateId: f.lagos.ID, Latitude: 6.6211, Longitude: 3.3441}
	f.lekki = models.City{Name: "Lekki", StateId: f.lagos.ID}
	f.phc = models.City{Name: "Port Harcourt", StateId: f.rivers.ID}
	require.NoError(t, db.Create(&f.ikeja).Error)
	require.NoError(t, db.Create(&f.lekki).Error)
	require.NoError(t, db.Create(&f.phc).Error)

	f.computerVillage = models.Market{Name: "Computer Village", CityId: f.ikeja.ID}
	f.lekkiMarket = models.Market{Name: "Lekki Market", CityId: f.lekki.ID}
	f.mile1 = models.Market{Name: "Mile 1 Market", CityId: f.phc.ID}
	require.NoError(t, db.Create(&f.computerVillage).Error)
	require.NoError(t, db.Create(&f.lekkiMarket).Error)
	require.NoError(t, db.Create(&f.mile1).Error)

	ctx := context.Background()
	rice, _, err := models.FindOrCreateItem(ctx, &models.NewItem{Name: "Rice"})
	require.NoError(t, err)
	beans, _, err := models.FindOrCreateItem(ctx, &models.NewItem{Name: "Beans"})
	require.NoError(t, err)
	f.rice, f.beans = *rice, *beans

	f.riceBag = createUnit(t, "50kg bag", rice.ID)
	f.riceCup = createUnit(t, "cup", rice.ID)
	f.beansBag = createUnit(t, "50kg bag", beans.ID)
	return f
}

func createUnit(t *testing.T, name string, itemId int) models.Unit {
	t.Helper()
	unit, _, err := models.FindOrCreateUnit(context.Background(), &models.NewUnit{Name: name, ItemId: flexId(itemId)})
	require.NoError(t, err)
	return *unit
}

func reportPrice(t *testing.T, price string, item models.Item, unit models.Unit, market models.Market) *models.PriceReportView {
	t.Helper()
	p := decimal.RequireFromString(price)
	view, err := models.CreatePriceReport(context.Background(), &models.NewPriceReport{
		Price:    &p,
		ItemId:   flexId(item.ID),
		UnitId:   flexId(unit.ID),
		MarketId: flexId(market.ID),
	})
	require.NoError(t, err)
	return view
}

func flexId(id int) utils.FlexibleInt {
	return utils.FlexibleInt(id)
}
