package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details []FieldViolation
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pricewatch api: %d %s", e.Status, e.Message)
}

// Client talks to the pricewatch REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:8080/api".
// A nil httpClient uses a client with a 15 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

func (c *Client) States(ctx context.Context) ([]State, error) {
	var out []State
	err := c.do(ctx, http.MethodGet, "/states", nil, nil, &out)
	return out, err
}

func (c *Client) Cities(ctx context.Context, stateId int) ([]City, error) {
	var out []City
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/states/%d/cities", stateId), nil, nil, &out)
	return out, err
}

func (c *Client) Markets(ctx context.Context, cityId int) ([]Market, error) {
	var out []Market
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/cities/%d/markets", cityId), nil, nil, &out)
	return out, err
}

func (c *Client) Items(ctx context.Context) ([]Item, error) {
	var out []Item
	err := c.do(ctx, http.MethodGet, "/items", nil, nil, &out)
	return out, err
}

func (c *Client) Units(ctx context.Context) ([]Unit, error) {
	var out []Unit
	err := c.do(ctx, http.MethodGet, "/units", nil, nil, &out)
	return out, err
}

// CreateItem finds or creates an item by name.
func (c *Client) CreateItem(ctx context.Context, name string) (*Item, error) {
	var out Item
	if err := c.do(ctx, http.MethodPost, "/items", nil, map[string]any{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUnit finds or creates a unit of an item by name.
func (c *Client) CreateUnit(ctx context.Context, name string, itemId int) (*Unit, error) {
	var out Unit
	if err := c.do(ctx, http.MethodPost, "/units", nil, map[string]any{"name": name, "itemId": itemId}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Prices(ctx context.Context, q PriceQuery) (*PricePage, error) {
	params := url.Values{}
	for name, v := range map[string]int{
		"stateId": q.StateId, "cityId": q.CityId, "marketId": q.MarketId,
		"itemId": q.ItemId, "unitId": q.UnitId, "page": q.Page, "limit": q.Limit,
	} {
		if v > 0 {
			params.Set(name, strconv.Itoa(v))
		}
	}
	var out PricePage
	if err := c.do(ctx, http.MethodGet, "/prices", params, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SubmitPrice(ctx context.Context, report NewPriceReport) (*PriceReport, error) {
	var out PriceReport
	if err := c.do(ctx, http.MethodPost, "/prices", nil, report, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-correlation-id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var payload struct {
		Error   string           `json:"error"`
		Details []FieldViolation `json:"details"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Details = payload.Details
	}
	return apiErr
}
