package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeListsTruckTypes(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := get(t, h, "/")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	for _, code := range []string{"20FT_DRY_VAN", "40FT_DRY_VAN", "40FT_REEFER", "FLATBED", "LOWBED", "FUEL_TANKER"} {
		assert.Contains(t, body, code)
	}
	assert.Contains(t, body, `name="distance_km"`)
}

func TestQuoteRendersReport(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := postForm(t, h, "/quote", referenceForm())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "A. Transport")
	assert.Contains(t, body, "38,992.81")
	assert.Contains(t, body, "12,384.00")
	assert.Contains(t, body, "6,628.78")
	assert.Contains(t, body, "58,005.58 ETB")
	assert.Contains(t, body, "Customs Duty")
}

func TestQuoteInvalidFormRerendersWithErrors(t *testing.T) {
	_, h := newTestServer(t, nil)

	form := referenceForm()
	form.Set("distance_km", "far")
	form.Set("vat_rate", "150")

	rr := postForm(t, h, "/quote", form)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "must be numeric")
	assert.Contains(t, body, `value="150"`)
}

func TestQuoteValidationBounds(t *testing.T) {
	_, h := newTestServer(t, nil)

	form := referenceForm()
	form.Set("num_stops", "0")

	rr := postForm(t, h, "/quote", form)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "field-error")
}

func TestQuoteUnknownTruckType(t *testing.T) {
	_, h := newTestServer(t, nil)

	form := referenceForm()
	form.Set("truck_type", "HOVERCRAFT")

	rr := postForm(t, h, "/quote", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "is not a known truck type")
}

func TestQuoteTextReport(t *testing.T) {
	_, h := newTestServer(t, nil)

	rr := postForm(t, h, "/quote/text", referenceForm())
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, "Quote ")
	assert.Contains(t, body, "Shipment cost estimate (ETB)")
	assert.Contains(t, body, "Total: 58,005.58 ETB")
}

func TestQuoteTextReportRejectsUnknownTruck(t *testing.T) {
	_, h := newTestServer(t, nil)

	form := referenceForm()
	form.Set("truck_type", "HOVERCRAFT")

	rr := postForm(t, h, "/quote/text", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "truck_type")
}

func TestQuoteTextReportListsFieldsInFormOrder(t *testing.T) {
	_, h := newTestServer(t, nil)

	form := referenceForm()
	form.Set("distance_km", "far")
	form.Set("estimated_days", "soon")
	form.Set("num_stops", "some")

	for range 5 {
		rr := postForm(t, h, "/quote/text", form)
		require.Equal(t, http.StatusBadRequest, rr.Code)

		body := rr.Body.String()
		distance := strings.Index(body, "distance_km:")
		days := strings.Index(body, "estimated_days:")
		stops := strings.Index(body, "num_stops:")
		require.True(t, distance >= 0 && days >= 0 && stops >= 0, body)
		assert.Less(t, distance, days)
		assert.Less(t, days, stops)
	}
}

func TestTruckLabel(t *testing.T) {
	assert.Equal(t, "FLATBED", truckLabel(" flatbed "))
	assert.Equal(t, "unknown", truckLabel("HOVERCRAFT"))
}
