package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"bitbucket.org/mmdatafocus/pricewatch_backend/config"
	"bitbucket.org/mmdatafocus/pricewatch_backend/handlers"
	"bitbucket.org/mmdatafocus/pricewatch_backend/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
}

// newTestAPI serves the router over a fresh in-memory database seeded with the Lagos data set.
func newTestAPI(t *testing.T) *testAPI {
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

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &testAPI{t: t, router: handlers.NewRouter(logger)}
}

const testSeed = `
states:
  - name: Lagos
    cities:
      - name: Ikeja
        latitude: 6.6211
        longitude: 3.3441
        markets: [Computer Village]
      - name: Lekki
        markets: [Lekki Market]
  - name: Rivers
    cities:
      - name: Port Harcourt
        markets: [Mile 1 Market]
  - name: Oyo
items:
  - name: Rice
    units: [50kg bag]
  - name: Beans
    units: [50kg bag]
`

func (api *testAPI) seed() {
	api.t.Helper()
	data, err := models.ParseSeed([]byte(testSeed))
	require.NoError(api.t, err)
	_, err = models.ApplySeed(api.t.Context(), data)
	require.NoError(api.t, err)
}

func (api *testAPI) do(method string, path string, body string) *httptest.ResponseRecorder {
	api.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// idOf looks up a row id by name.
func idOf(t *testing.T, model interface{}, name string) int {
	t.Helper()
	var ids []int
	require.NoError(t, config.GetDB().Model(model).Where("name = ?", name).Order("id").Pluck("id", &ids).Error)
	require.NotEmpty(t, ids, name)
	return ids[0]
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}
