package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/freightcost/internal/config"
)

const referenceJSON = `{
	"distance_km": 500,
	"estimated_days": 10,
	"truck_type": "40ft_dry_van",
	"is_export": false,
	"num_stops": 1,
	"cif_value": 100000,
	"customs_duty_rate": 10,
	"vat_rate": 15,
	"wht_rate": 2,
	"driver_cost": 1000,
	"truck_rental_cost": 2000,
	"fuel_price": 50,
	"handling_cost": 1500,
	"inspection_fee": 500
}`

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

type apiError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details []json.RawMessage `json:"details"`
	} `json:"error"`
}

func TestAPITrucks(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := get(t, h, "/api/v1/trucks")
	require.Equal(t, http.StatusOK, rr.Code)

	var body trucksResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Trucks, 6)
	assert.Equal(t, "40FT_DRY_VAN", string(body.Trucks[1].Type))
	assert.Equal(t, 2.78, body.Trucks[1].FuelEfficiencyKmPerLiter)
}

func TestAPIQuote(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := postJSON(t, h, "/api/v1/quotes", referenceJSON)
	require.Equal(t, http.StatusOK, rr.Code)

	var body quoteResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	_, err := uuid.Parse(body.QuoteID)
	assert.NoError(t, err)
	assert.Equal(t, "ETB", body.Currency)
	assert.Equal(t, 58005.58, body.Total)
	assert.InDelta(t, 38992.805755, body.Result.Transport.Total, 1e-5)
	assert.InDelta(t, 12384.0, body.Result.TariffSubtotal, 1e-9)
	assert.Equal(t, "40FT_DRY_VAN", string(body.Result.Input.TruckType))
}

func TestAPIQuoteIDsAreUnique(t *testing.T) {
	_, h := newTestServer(t, nil)

	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		rr := postJSON(t, h, "/api/v1/quotes", referenceJSON)
		require.Equal(t, http.StatusOK, rr.Code)
		var body quoteResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		ids[body.QuoteID] = true
	}
	assert.Len(t, ids, 3)
}

func TestAPIQuoteInvalidInput(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := postJSON(t, h, "/api/v1/quotes", `{"distance_km": -1, "estimated_days": 0, "truck_type": "FLATBED", "num_stops": 1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var body apiError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_INPUT", body.Error.Code)
	assert.Len(t, body.Error.Details, 2)
}

func TestAPIQuoteMalformedJSON(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := postJSON(t, h, "/api/v1/quotes", `{"distance_km": 10, "colour": "red"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_INPUT")
}

func TestAPIQuoteUnknownTruckType(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := postJSON(t, h, "/api/v1/quotes", strings.Replace(referenceJSON, "40ft_dry_van", "HOVERCRAFT", 1))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body apiError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "UNKNOWN_TRUCK_TYPE", body.Error.Code)
	assert.Contains(t, body.Error.Message, "HOVERCRAFT")
}

func TestAPIRateLimit(t *testing.T) {
	_, h := newTestServer(t, func(cfg *config.Config) {
		cfg.APIRateLimit = "2-M"
	})

	assert.Equal(t, http.StatusOK, get(t, h, "/api/v1/trucks").Code)
	assert.Equal(t, http.StatusOK, get(t, h, "/api/v1/trucks").Code)

	rr := get(t, h, "/api/v1/trucks")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "RATE_LIMITED")

	// The HTML surface is not limited.
	assert.Equal(t, http.StatusOK, get(t, h, "/").Code)
}

func TestAPICORS(t *testing.T) {
	_, h := newTestServer(t, func(cfg *config.Config) {
		cfg.CORSAllowedOrigins = []string{"https://ops.example.com"}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trucks", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "https://ops.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/trucks", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
