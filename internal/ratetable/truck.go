package ratetable

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownTruckType is returned when a truck type has no profile in the rate table.
var ErrUnknownTruckType = errors.New("unknown truck type")

// TruckType identifies a truck profile in the rate table.
type TruckType string

const (
	Truck20ftDryVan TruckType = "20FT_DRY_VAN"
	Truck40ftDryVan TruckType = "40FT_DRY_VAN"
	Truck40ftReefer TruckType = "40FT_REEFER"
	TruckFlatbed    TruckType = "FLATBED"
	TruckLowbed     TruckType = "LOWBED"
	TruckTanker     TruckType = "FUEL_TANKER"
)

var knownTruckTypes = []TruckType{
	Truck20ftDryVan,
	Truck40ftDryVan,
	Truck40ftReefer,
	TruckFlatbed,
	TruckLowbed,
	TruckTanker,
}

// TruckTypes returns every truck type the engine understands, in display order.
func TruckTypes() []TruckType {
	out := make([]TruckType, len(knownTruckTypes))
	copy(out, knownTruckTypes)
	return out
}

// ParseTruckType normalizes raw and checks it against the known truck types.
func ParseTruckType(raw string) (TruckType, error) {
	key := TruckType(strings.ToUpper(strings.TrimSpace(raw)))
	if key.Known() {
		return key, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTruckType, raw)
}

// Known reports whether t is one of the enumerated truck types.
func (t TruckType) Known() bool {
	for _, known := range knownTruckTypes {
		if t == known {
			return true
		}
	}
	return false
}

func (t TruckType) String() string {
	return string(t)
}

// TruckProfile describes the fuel and cargo characteristics of a truck type.
type TruckProfile struct {
	Type                     TruckType `json:"type"`
	FuelEfficiencyKmPerLiter float64   `json:"fuel_efficiency_km_per_liter"`
	CapacityTonnes           float64   `json:"capacity_tonnes"`
	Category                 string    `json:"category"`
}

// Validate checks the profile names a known truck type with usable figures.
func (p TruckProfile) Validate() error {
	if !p.Type.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownTruckType, string(p.Type))
	}
	if !finite(p.FuelEfficiencyKmPerLiter) || p.FuelEfficiencyKmPerLiter <= 0 {
		return fmt.Errorf("%w: truck %s fuel efficiency must be finite and > 0, got %v", ErrInvalidTable, p.Type, p.FuelEfficiencyKmPerLiter)
	}
	if !finite(p.CapacityTonnes) || p.CapacityTonnes < 0 {
		return fmt.Errorf("%w: truck %s capacity must be finite and >= 0, got %v", ErrInvalidTable, p.Type, p.CapacityTonnes)
	}
	return nil
}

func defaultTrucks() []TruckProfile {
	return []TruckProfile{
		{Type: Truck20ftDryVan, FuelEfficiencyKmPerLiter: 3.20, CapacityTonnes: 21.7, Category: "Container"},
		{Type: Truck40ftDryVan, FuelEfficiencyKmPerLiter: 2.78, CapacityTonnes: 26.5, Category: "Container"},
		{Type: Truck40ftReefer, FuelEfficiencyKmPerLiter: 2.45, CapacityTonnes: 25.0, Category: "Refrigerated"},
		{Type: TruckFlatbed, FuelEfficiencyKmPerLiter: 2.95, CapacityTonnes: 30.0, Category: "Open deck"},
		{Type: TruckLowbed, FuelEfficiencyKmPerLiter: 2.10, CapacityTonnes: 60.0, Category: "Heavy haul"},
		{Type: TruckTanker, FuelEfficiencyKmPerLiter: 2.60, CapacityTonnes: 32.0, Category: "Liquid bulk"},
	}
}
