// Package intake turns raw form or JSON submissions into validated shipment
// inputs for the cost engine.
package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/Simplici0/freightcost/internal/pricing"
	"github.com/Simplici0/freightcost/internal/ratetable"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid shipment input")

// Request is a shipment submission before it reaches the engine.
type Request struct {
	DistanceKm      float64 `json:"distance_km" validate:"finite,gt=0"`
	EstimatedDays   int     `json:"estimated_days" validate:"min=1"`
	TruckType       string  `json:"truck_type" validate:"required"`
	IsExport        bool    `json:"is_export"`
	NumStops        int     `json:"num_stops" validate:"min=1"`
	CIFValue        float64 `json:"cif_value" validate:"finite,gte=0"`
	CustomsDutyRate float64 `json:"customs_duty_rate" validate:"finite,gte=0,lte=100"`
	VATRate         float64 `json:"vat_rate" validate:"finite,gte=0,lte=100"`
	WHTRate         float64 `json:"wht_rate" validate:"finite,gte=0,lte=100"`
	DriverCost      float64 `json:"driver_cost" validate:"finite,gte=0"`
	TruckRentalCost float64 `json:"truck_rental_cost" validate:"finite,gte=0"`
	FuelPrice       float64 `json:"fuel_price" validate:"finite,gte=0"`
	HandlingCost    float64 `json:"handling_cost" validate:"finite,gte=0"`
	InspectionFee   float64 `json:"inspection_fee" validate:"finite,gte=0"`
}

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalidInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Messages returns the per-field messages keyed by field name.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Message
	}
	return out
}

// Validator checks requests against their declared bounds.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a validator with the finite tag registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}); err != nil {
		panic(fmt.Sprintf("intake: register finite validation: %v", err))
	}
	return &Validator{v: v}
}

// Validate returns a *ValidationError when req is out of bounds.
func (val *Validator) Validate(req Request) error {
	err := val.v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate shipment: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "finite":
		return "must be a finite number"
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// Input converts a validated request into the engine's input record. Known
// truck types are normalized; anything else is passed through unchanged and
// left for the engine to reject.
func (r Request) Input() pricing.ShipmentInput {
	truckType := ratetable.TruckType(strings.TrimSpace(r.TruckType))
	if parsed, err := ratetable.ParseTruckType(r.TruckType); err == nil {
		truckType = parsed
	}

	return pricing.ShipmentInput{
		DistanceKm:      r.DistanceKm,
		EstimatedDays:   r.EstimatedDays,
		TruckType:       truckType,
		IsExport:        r.IsExport,
		NumStops:        r.NumStops,
		CIFValue:        r.CIFValue,
		CustomsDutyRate: r.CustomsDutyRate,
		VATRate:         r.VATRate,
		WHTRate:         r.WHTRate,
		DriverCost:      r.DriverCost,
		TruckRentalCost: r.TruckRentalCost,
		FuelPrice:       r.FuelPrice,
		HandlingCost:    r.HandlingCost,
		InspectionFee:   r.InspectionFee,
	}
}

// DecodeJSON reads a request body holding exactly one shipment object.
// Unknown fields are rejected.
func DecodeJSON(body io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, &ValidationError{Fields: []FieldError{{Field: "body", Message: "must be a valid JSON shipment: " + err.Error()}}}
	}
	if dec.More() {
		return Request{}, &ValidationError{Fields: []FieldError{{Field: "body", Message: "must contain a single JSON shipment"}}}
	}
	return req, nil
}

// FromForm parses submitted form values. Every unparsable field is reported,
// not just the first.
func FromForm(form url.Values) (Request, error) {
	p := formParser{form: form}
	req := Request{
		DistanceKm:      p.number("distance_km"),
		EstimatedDays:   p.wholeNumber("estimated_days"),
		TruckType:       strings.TrimSpace(form.Get("truck_type")),
		IsExport:        p.flag("is_export"),
		NumStops:        p.wholeNumber("num_stops"),
		CIFValue:        p.optionalNumber("cif_value"),
		CustomsDutyRate: p.optionalNumber("customs_duty_rate"),
		VATRate:         p.optionalNumber("vat_rate"),
		WHTRate:         p.optionalNumber("wht_rate"),
		DriverCost:      p.optionalNumber("driver_cost"),
		TruckRentalCost: p.optionalNumber("truck_rental_cost"),
		FuelPrice:       p.optionalNumber("fuel_price"),
		HandlingCost:    p.optionalNumber("handling_cost"),
		InspectionFee:   p.optionalNumber("inspection_fee"),
	}
	if len(p.errs) > 0 {
		return req, &ValidationError{Fields: p.errs}
	}
	return req, nil
}

type formParser struct {
	form url.Values
	errs []FieldError
}

func (p *formParser) number(field string) float64 {
	raw := strings.TrimSpace(p.form.Get(field))
	if raw == "" {
		p.errs = append(p.errs, FieldError{Field: field, Message: "is required"})
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, FieldError{Field: field, Message: "must be numeric"})
		return 0
	}
	return value
}

func (p *formParser) optionalNumber(field string) float64 {
	if strings.TrimSpace(p.form.Get(field)) == "" {
		return 0
	}
	return p.number(field)
}

func (p *formParser) wholeNumber(field string) int {
	raw := strings.TrimSpace(p.form.Get(field))
	if raw == "" {
		p.errs = append(p.errs, FieldError{Field: field, Message: "is required"})
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, FieldError{Field: field, Message: "must be a whole number"})
		return 0
	}
	return value
}

func (p *formParser) flag(field string) bool {
	switch strings.ToLower(strings.TrimSpace(p.form.Get(field))) {
	case "1", "true", "on", "yes":
		return true
	default:
		return false
	}
}
