package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/Simplici0/freightcost/internal/intake"
	"github.com/Simplici0/freightcost/internal/obs"
	"github.com/Simplici0/freightcost/internal/pricing"
	"github.com/Simplici0/freightcost/internal/ratetable"
	"github.com/Simplici0/freightcost/internal/report"
)

type homeViewData struct {
	baseViewData
	Trucks   []ratetable.TruckProfile
	Values   url.Values
	Errors   map[string]string
	Currency string
}

type reportViewData struct {
	baseViewData
	QuoteID  string
	View     report.View
	Sections []report.Section
}

type quote struct {
	ID     string
	Result pricing.Result
}

func defaultFormValues() url.Values {
	return url.Values{
		"truck_type":     {string(ratetable.Truck40ftDryVan)},
		"estimated_days": {"1"},
		"num_stops":      {"1"},
	}
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "home.html", s.homeData(defaultFormValues(), nil, ""))
}

func (s *server) homeData(values url.Values, fieldErrors map[string]string, message string) homeViewData {
	return homeViewData{
		baseViewData: baseViewData{ErrorMessage: message},
		Trucks:       s.engine().Rates().Trucks(),
		Values:       values,
		Errors:       fieldErrors,
		Currency:     s.currency,
	}
}

func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	q, err := s.quoteFromForm(r.PostForm)
	if err != nil {
		status, _ := quoteErrorStatus(err)
		if status == http.StatusInternalServerError {
			http.Error(w, "failed to calculate quote", status)
			return
		}
		s.renderTemplate(w, status, "home.html", s.homeData(r.PostForm, fieldMessages(err), "Please correct the highlighted fields."))
		return
	}

	view := report.NewView(q.Result, s.currency)
	s.renderTemplate(w, http.StatusOK, "report.html", reportViewData{
		QuoteID:  q.ID,
		View:     view,
		Sections: []report.Section{view.Transport, view.Tariffs, view.Tax},
	})
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	q, err := s.quoteFromForm(r.PostForm)
	if err != nil {
		status, _ := quoteErrorStatus(err)
		if status == http.StatusInternalServerError {
			http.Error(w, "failed to calculate quote", status)
			return
		}
		var b strings.Builder
		b.WriteString("Quote rejected:\n")
		for _, f := range fieldErrors(err) {
			fmt.Fprintf(&b, "  %s: %s\n", f.Field, f.Message)
		}
		http.Error(w, b.String(), status)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Quote %s\n\n", q.ID)
	if err := report.WriteText(w, report.NewView(q.Result, s.currency)); err != nil {
		s.log.Error().Err(err).Str("quote_id", q.ID).Msg("write text report")
	}
}

func (s *server) quoteFromForm(form url.Values) (quote, error) {
	req, err := intake.FromForm(form)
	if err != nil {
		s.recordRejection(req, err)
		return quote{}, err
	}
	return s.calculate(req)
}

// calculate validates req and prices it with the current rate table. Every
// outcome is logged and counted.
func (s *server) calculate(req intake.Request) (quote, error) {
	if err := s.validator.Validate(req); err != nil {
		s.recordRejection(req, err)
		return quote{}, err
	}

	result, err := s.engine().Calculate(req.Input())
	if err != nil {
		s.recordRejection(req, err)
		return quote{}, err
	}

	q := quote{ID: uuid.NewString(), Result: result}
	s.quoteMetrics.Observe(obs.OutcomeCalculated, string(result.Input.TruckType), result.Input.IsExport, result.Total)
	s.log.Info().
		Str("quote_id", q.ID).
		Str("truck_type", string(result.Input.TruckType)).
		Bool("export", result.Input.IsExport).
		Bool("route_optimized", result.Optimization.Applied).
		Float64("total", result.RoundedTotal()).
		Msg("quote_calculated")
	return q, nil
}

func (s *server) recordRejection(req intake.Request, err error) {
	outcome := obs.OutcomeInvalid
	if errors.Is(err, ratetable.ErrUnknownTruckType) {
		outcome = obs.OutcomeRejected
	}
	truck := truckLabel(req.TruckType)
	s.quoteMetrics.Observe(outcome, truck, req.IsExport, 0)
	s.log.Warn().Err(err).Str("outcome", outcome).Str("truck_type", truck).Msg("quote_rejected")
}

// truckLabel keeps metric and log labels to the known truck codes.
func truckLabel(raw string) string {
	t, err := ratetable.ParseTruckType(raw)
	if err != nil {
		return "unknown"
	}
	return string(t)
}

func quoteErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, intake.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, ratetable.ErrUnknownTruckType):
		return http.StatusUnprocessableEntity, "UNKNOWN_TRUCK_TYPE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// fieldErrors lists the rejected fields of err in the order they were reported.
func fieldErrors(err error) []intake.FieldError {
	var verr *intake.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	if errors.Is(err, ratetable.ErrUnknownTruckType) {
		return []intake.FieldError{{Field: "truck_type", Message: "is not a known truck type"}}
	}
	return nil
}

func fieldMessages(err error) map[string]string {
	out := make(map[string]string)
	for _, f := range fieldErrors(err) {
		out[f.Field] = f.Message
	}
	return out
}
