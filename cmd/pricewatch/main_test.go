package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeServer(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var submitted []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/states", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"Lagos"},{"id":2,"name":"Rivers"}]`)
	})
	mux.HandleFunc("GET /api/states/1/cities", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"Ikeja","latitude":6.6211,"longitude":3.3441,"stateId":1}]`)
	})
	mux.HandleFunc("GET /api/cities/1/markets", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"Computer Village","cityId":1}]`)
	})
	mux.HandleFunc("GET /api/items", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"name":"Rice","units":[{"id":1,"name":"50kg bag","itemId":1}]}]`)
	})
	mux.HandleFunc("POST /api/prices", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		submitted = append(submitted, body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":9,"price":45000,"createdAt":"2026-10-19T10:00:00Z","itemName":"Rice",
			"unitName":"50kg bag","marketName":"Computer Village","cityName":"Ikeja","stateName":"Lagos"}`)
	})
	mux.HandleFunc("GET /api/prices", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("cityId"))
		_, _ = io.WriteString(w, `{"data":[],"metadata":{"total":0,"page":1,"limit":10,"totalPages":0}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &submitted
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatesTable(t *testing.T) {
	srv, _ := fakeServer(t)

	out, err := run(t, "--api", srv.URL+"/api", "states")
	require.NoError(t, err)
	assert.Contains(t, out, "ID  NAME")
	assert.Contains(t, out, "2   Rivers")

	out, err = run(t, "--api", srv.URL+"/api", "--json", "cities", "--state", "1")
	require.NoError(t, err)
	var cities []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cities))
	assert.Equal(t, "Ikeja", cities[0]["name"])
}

func TestSubmit(t *testing.T) {
	srv, submitted := fakeServer(t)

	out, err := run(t, "--api", srv.URL+"/api", "submit",
		"--state", "1", "--city", "1", "--market", "1", "--item", "1", "--unit", "1", "--price", "45000")
	require.NoError(t, err)
	assert.Contains(t, out, "Computer Village")
	assert.Contains(t, out, "45000.00")
	require.Len(t, *submitted, 1)
	assert.EqualValues(t, 1, (*submitted)[0]["marketId"])

	_, err = run(t, "--api", srv.URL+"/api", "submit", "--state", "1", "--price", "10")
	assert.ErrorContains(t, err, "Please select a city")
	assert.Len(t, *submitted, 1)

	_, err = run(t, "--api", srv.URL+"/api", "submit", "--price", "ten")
	assert.ErrorContains(t, err, "invalid --price")
}

func TestPricesPageSummary(t *testing.T) {
	srv, _ := fakeServer(t)

	out, err := run(t, "--api", srv.URL+"/api", "prices", "--state", "1", "--city", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "page 1 of 0 (0 reports)")
}
