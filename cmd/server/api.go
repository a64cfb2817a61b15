package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Simplici0/freightcost/internal/intake"
	"github.com/Simplici0/freightcost/internal/pricing"
	"github.com/Simplici0/freightcost/internal/ratetable"
)

// errorBody is the error payload returned by the JSON API.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type trucksResponse struct {
	Trucks []ratetable.TruckProfile `json:"trucks"`
}

type quoteResponse struct {
	QuoteID  string         `json:"quote_id"`
	Currency string         `json:"currency"`
	Total    float64        `json:"total"`
	Result   pricing.Result `json:"result"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, map[string]any{
		"error": errorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func handleLimitReached(w http.ResponseWriter, r *http.Request) {
	writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
}

func (s *server) handleAPITrucks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, trucksResponse{Trucks: s.engine().Rates().Trucks()})
}

func (s *server) handleAPIQuote(w http.ResponseWriter, r *http.Request) {
	req, err := intake.DecodeJSON(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.recordRejection(req, err)
		writeQuoteError(w, err)
		return
	}

	q, err := s.calculate(req)
	if err != nil {
		writeQuoteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		QuoteID:  q.ID,
		Currency: s.currency,
		Total:    q.Result.RoundedTotal(),
		Result:   q.Result,
	})
}

func writeQuoteError(w http.ResponseWriter, err error) {
	status, code := quoteErrorStatus(err)
	if status == http.StatusInternalServerError {
		writeJSONError(w, status, code, "failed to calculate quote", nil)
		return
	}

	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		writeJSONError(w, status, code, "shipment input is invalid", verr.Fields)
		return
	}
	writeJSONError(w, status, code, err.Error(), nil)
}
