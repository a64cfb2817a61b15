package main

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/freightcost/internal/ratetable"
)

type loginViewData struct {
	baseViewData
	Email    string
	Disabled bool
}

type ratesViewData struct {
	baseViewData
	Settings        ratetable.Settings
	Trucks          []ratetable.TruckProfile
	OverridesActive bool
}

func (s *server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.auth.authenticated(r) {
		http.Redirect(w, r, "/admin/rates", http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, http.StatusOK, "login.html", loginViewData{Disabled: !s.auth.enabled()})
}

func (s *server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	valid, err := s.auth.validateCredentials(email, r.FormValue("password"))
	if err != nil {
		s.log.Error().Err(err).Msg("validate admin credentials")
		http.Error(w, "authentication error", http.StatusInternalServerError)
		return
	}
	if !valid {
		s.log.Warn().Str("email", email).Msg("admin_login_failed")
		s.renderTemplate(w, http.StatusUnauthorized, "login.html", loginViewData{
			baseViewData: baseViewData{ErrorMessage: "Invalid credentials. Try again."},
			Email:        email,
			Disabled:     !s.auth.enabled(),
		})
		return
	}

	s.auth.setSessionCookie(w, email)
	s.log.Info().Str("email", email).Msg("admin_login")
	http.Redirect(w, r, "/admin/rates", http.StatusSeeOther)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *server) handleAdminRatesForm(w http.ResponseWriter, r *http.Request) {
	s.renderRates(w, r, http.StatusOK, baseViewData{SuccessMessage: r.URL.Query().Get("success")})
}

func (s *server) renderRates(w http.ResponseWriter, r *http.Request, status int, base baseViewData) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("load rate settings")
		http.Error(w, "failed to load rate settings", http.StatusInternalServerError)
		return
	}
	trucks, err := s.store.Trucks(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("load truck profiles")
		http.Error(w, "failed to load truck profiles", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, status, "admin_rates.html", ratesViewData{
		baseViewData:    base,
		Settings:        settings,
		Trucks:          trucks,
		OverridesActive: !s.overrides.Empty(),
	})
}

func (s *server) handleAdminRatesSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	settings, err := parseSettingsForm(r)
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		s.renderRates(w, r, http.StatusBadRequest, baseViewData{ErrorMessage: err.Error()})
		return
	}

	if err := s.store.SaveSettings(r.Context(), settings); err != nil {
		s.log.Error().Err(err).Msg("save rate settings")
		http.Error(w, "failed to save rate settings", http.StatusInternalServerError)
		return
	}
	if err := s.reloadRates(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("reload rate table")
		http.Error(w, "failed to reload rate table", http.StatusInternalServerError)
		return
	}

	s.log.Info().
		Float64("export_discount_factor", settings.ExportDiscountFactor).
		Float64("optimization_discount", settings.OptimizationDiscount).
		Int("optimization_min_stops", settings.OptimizationMinStops).
		Float64("storage_penalty_rate", settings.StoragePenalty.DailyRate).
		Int("storage_free_days", settings.StoragePenalty.FreeDays).
		Msg("rate_settings_updated")
	http.Redirect(w, r, "/admin/rates?success=Rate+settings+saved", http.StatusSeeOther)
}

func (s *server) handleAdminTruckUpdate(w http.ResponseWriter, r *http.Request) {
	truckType, err := ratetable.ParseTruckType(chi.URLParam(r, "code"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	profile := ratetable.TruckProfile{
		Type:     truckType,
		Category: strings.TrimSpace(r.FormValue("category")),
	}
	if profile.FuelEfficiencyKmPerLiter, err = parsePositiveFloat(r.FormValue("fuel_efficiency_km_per_liter"), "fuel_efficiency_km_per_liter"); err != nil {
		s.renderRates(w, r, http.StatusBadRequest, baseViewData{ErrorMessage: err.Error()})
		return
	}
	if profile.CapacityTonnes, err = parseOptionalNonNegativeFloat(r.FormValue("capacity_tonnes"), "capacity_tonnes"); err != nil {
		s.renderRates(w, r, http.StatusBadRequest, baseViewData{ErrorMessage: err.Error()})
		return
	}

	if err := s.store.SaveTruck(r.Context(), profile); err != nil {
		if errors.Is(err, ratetable.ErrInvalidTable) {
			s.renderRates(w, r, http.StatusBadRequest, baseViewData{ErrorMessage: err.Error()})
			return
		}
		s.log.Error().Err(err).Str("truck_type", string(truckType)).Msg("save truck profile")
		http.Error(w, "failed to save truck profile", http.StatusInternalServerError)
		return
	}
	if err := s.reloadRates(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("reload rate table")
		http.Error(w, "failed to reload rate table", http.StatusInternalServerError)
		return
	}

	s.log.Info().
		Str("truck_type", string(truckType)).
		Float64("fuel_efficiency_km_per_liter", profile.FuelEfficiencyKmPerLiter).
		Msg("truck_profile_updated")
	http.Redirect(w, r, "/admin/rates?success=Truck+profile+saved", http.StatusSeeOther)
}

func parseSettingsForm(r *http.Request) (ratetable.Settings, error) {
	var settings ratetable.Settings

	var err error
	if settings.ExportDiscountFactor, err = parseNonNegativeFloat(r.FormValue("export_discount_factor"), "export_discount_factor"); err != nil {
		return settings, err
	}
	if settings.OptimizationDiscount, err = parseNonNegativeFloat(r.FormValue("optimization_discount"), "optimization_discount"); err != nil {
		return settings, err
	}
	if settings.OptimizationMinStops, err = parseWholeNumber(r.FormValue("optimization_min_stops"), "optimization_min_stops"); err != nil {
		return settings, err
	}
	if settings.StoragePenalty.DailyRate, err = parseNonNegativeFloat(r.FormValue("storage_penalty_rate"), "storage_penalty_rate"); err != nil {
		return settings, err
	}
	if settings.StoragePenalty.FreeDays, err = parseWholeNumber(r.FormValue("storage_free_days"), "storage_free_days"); err != nil {
		return settings, err
	}

	return settings, nil
}

func parseNonNegativeFloat(raw, field string) (float64, error) {
	value, err := parseFiniteFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}

func parseOptionalNonNegativeFloat(raw, field string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	return parseNonNegativeFloat(raw, field)
}

func parsePositiveFloat(raw, field string) (float64, error) {
	value, err := parseFiniteFloat(raw, field)
	if err != nil {
		return 0, err
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}

// parseFiniteFloat rejects NaN and the infinities strconv accepts.
func parseFiniteFloat(raw, field string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be numeric", field)
	}
	return value, nil
}

func parseWholeNumber(raw, field string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	if value < 0 {
		return 0, fmt.Errorf("%s must be greater than or equal to 0", field)
	}
	return value, nil
}
