package models_test

import (
	"context"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/models"
	"bitbucket.org/mmdatafocus/pricewatch_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationHierarchy(t *testing.T) {
	setupDB(t)
	f := seedFixture(t)
	ctx := context.Background()

	states, err := models.GetStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "Lagos", states[0].Name)
	assert.Equal(t, "Rivers", states[1].Name)

	cities, err := models.GetCitiesByState(ctx, f.lagos.ID)
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Ikeja", cities[0].Name)
	assert.Equal(t, f.lagos.ID, cities[0].StateId)
	assert.InDelta(t, 6.6211, cities[0].Latitude, 1e-9)

	markets, err := models.GetMarketsByCity(ctx, f.ikeja.ID)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, "Computer Village", markets[0].Name)
}

func TestLocationEmptyAndUnknownParents(t *testing.T) {
	setupDB(t)
	seedFixture(t)
	ctx := context.Background()

	oyo := models.State{Name: "Oyo"}
	require.NoError(t, config.GetDB().Create(&oyo).Error)

	cities, err := models.GetCitiesByState(ctx, oyo.ID)
	require.NoError(t, err)
	assert.NotNil(t, cities)
	assert.Empty(t, cities)

	_, err = models.GetCitiesByState(ctx, 9999)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)

	_, err = models.GetMarketsByCity(ctx, 9999)
	assert.ErrorIs(t, err, utils.ErrorRecordNotFound)
}

func TestCitiesAreCachedPerState(t *testing.T) {
	setupDB(t)
	f := seedFixture(t)
	mr := setupRedis(t)
	ctx := context.Background()

	_, err := models.GetCitiesByState(ctx, f.lagos.ID)
	require.NoError(t, err)
	_, err = models.GetCitiesByState(ctx, f.rivers.ID)
	require.NoError(t, err)

	assert.True(t, mr.Exists(fmt.Sprintf("CityList:%d", f.lagos.ID)))
	assert.True(t, mr.Exists(fmt.Sprintf("CityList:%d", f.rivers.ID)))
}
