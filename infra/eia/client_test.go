package eia

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridstatus/auth"
	"github.com/kilianp07/gridstatus/infra/httpx"
)

var fastHTTP = httpx.Config{RequestsPerSecond: 1000, Burst: 10}

var regionRows = []map[string]any{
	{"period": "2023-03-08T05", "respondent": "MISO", "respondent-name": "Midcontinent Independent System Operator, Inc.", "type": "D", "type-name": "Demand", "value": 70123, "value-units": "megawatthours"},
	{"period": "2023-03-08T05", "respondent": "MISO", "respondent-name": "Midcontinent Independent System Operator, Inc.", "type": "DF", "type-name": "Day-ahead demand forecast", "value": "71000", "value-units": "megawatthours"},
	{"period": "2023-03-08T06", "respondent": "MISO", "respondent-name": "Midcontinent Independent System Operator, Inc.", "type": "D", "type-name": "Demand", "value": nil, "value-units": "megawatthours"},
}

func pagedServer(t *testing.T, rows []map[string]any, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "secret", q.Get("api_key"))
		assert.Equal(t, "hourly", q.Get("frequency"))
		assert.Equal(t, "value", q.Get("data[0]"))
		assert.Equal(t, []string{"MISO"}, q["facets[respondent][]"])

		offset, _ := strconv.Atoi(q.Get("offset"))
		length, _ := strconv.Atoi(q.Get("length"))
		end := min(offset+length, len(rows))
		var resp struct {
			Response struct {
				Total string           `json:"total"`
				Data  []map[string]any `json:"data"`
			} `json:"response"`
		}
		resp.Response.Total = strconv.Itoa(len(rows))
		resp.Response.Data = rows[offset:end]
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{}, fastHTTP)
	assert.True(t, errors.Is(err, auth.ErrMissingKey))
}

func TestConfigValidate(t *testing.T) {
	c := Config{PageSize: 10000}
	assert.Error(t, c.Validate())
	c = Config{}
	c.SetDefaults()
	assert.NoError(t, c.Validate())
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, DefaultPageSize, c.PageSize)
}

func TestRegionDataPages(t *testing.T) {
	var calls atomic.Int32
	srv := pagedServer(t, regionRows, &calls)
	defer srv.Close()

	c, err := New(Config{APIKey: "secret", BaseURL: srv.URL, PageSize: 2}, fastHTTP)
	require.NoError(t, err)

	start := time.Date(2023, 3, 8, 0, 0, 0, 0, time.UTC)
	recs, err := c.RegionData(context.Background(), RegionQuery{Respondent: "MISO", Start: start, End: start.Add(24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, time.Date(2023, 3, 8, 5, 0, 0, 0, time.UTC), recs[0].Period)
	assert.Equal(t, "D", recs[0].Type)
	assert.Equal(t, 70123.0, recs[0].Value)
	assert.Equal(t, "megawatthours", recs[0].Units)
	assert.Equal(t, 71000.0, recs[1].Value)
	assert.True(t, math.IsNaN(recs[2].Value))
	assert.Equal(t, "Demand", recs[2].TypeName)
}

func TestFuelTypeData(t *testing.T) {
	rows := []map[string]any{
		{"period": "2023-03-08T05", "respondent": "MISO", "respondent-name": "MISO", "fueltype": "COL", "type-name": "Coal", "value": 21000, "value-units": "megawatthours"},
		{"period": "2023-03-08T05", "respondent": "MISO", "respondent-name": "MISO", "fueltype": "WND", "type-name": "Wind", "value": 9000, "value-units": "megawatthours"},
	}
	var calls atomic.Int32
	srv := pagedServer(t, rows, &calls)
	defer srv.Close()

	c, err := New(Config{APIKey: "secret", BaseURL: srv.URL}, fastHTTP)
	require.NoError(t, err)
	recs, err := c.FuelTypeData(context.Background(), FuelTypeQuery{Respondent: "MISO"})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "WND", recs[1].FuelType)
	assert.Equal(t, "Wind", recs[1].TypeName)
	assert.Equal(t, []string{"Period", "Respondent", "Respondent Name", "Fuel Type", "Type Name", "Value", "Units"}, recs[1].Columns())
}

func TestErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"invalid facet"}}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "secret", BaseURL: srv.URL}, fastHTTP)
	require.NoError(t, err)
	_, err = c.RegionData(context.Background(), RegionQuery{Respondent: "MISO"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "invalid facet", apiErr.Message)
}

func TestHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"API_KEY_INVALID"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "secret", BaseURL: srv.URL}, fastHTTP)
	require.NoError(t, err)
	_, err = c.FuelTypeData(context.Background(), FuelTypeQuery{})
	var status *httpx.StatusError
	require.ErrorAs(t, err, &status)
	assert.Equal(t, http.StatusForbidden, status.StatusCode)
}
