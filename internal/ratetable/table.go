// Package ratetable holds the reference data the cost engine prices against:
// truck fuel profiles, discount factors and the tariff schedule.
//
// A Table is immutable once built. Copies share nothing mutable, so a Table can
// be handed to any number of concurrent calculations.
package ratetable

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTable is returned when a rate table configuration is out of range.
var ErrInvalidTable = errors.New("invalid rate table")

const (
	// DefaultExportDiscountFactor is the share taken off export-eligible tariffs.
	DefaultExportDiscountFactor = 0.60
	// DefaultOptimizationDiscount is the distance reduction for multi-stop routes.
	DefaultOptimizationDiscount = 0.10
	// DefaultOptimizationMinStops is the stop count at which route optimization applies.
	DefaultOptimizationMinStops = 3
	// DefaultStoragePenaltyRate is charged per day beyond the free period.
	DefaultStoragePenaltyRate = 192.00
	// DefaultStorageFreeDays is the storage free period length.
	DefaultStorageFreeDays = 8
)

// StoragePenalty configures the per-day storage charge.
type StoragePenalty struct {
	DailyRate float64 `json:"daily_rate"`
	FreeDays  int     `json:"free_days"`
}

// Settings are the scalar pricing factors of a rate table.
type Settings struct {
	// ExportDiscountFactor is the fraction removed from export-eligible tariffs:
	// 0.60 leaves 40% of the base cost.
	ExportDiscountFactor float64 `json:"export_discount_factor"`
	// OptimizationDiscount is the fraction removed from the route distance once
	// the stop count reaches OptimizationMinStops.
	OptimizationDiscount float64        `json:"optimization_discount"`
	OptimizationMinStops int            `json:"optimization_min_stops"`
	StoragePenalty       StoragePenalty `json:"storage_penalty"`
}

// DefaultSettings returns the standard pricing factors.
func DefaultSettings() Settings {
	return Settings{
		ExportDiscountFactor: DefaultExportDiscountFactor,
		OptimizationDiscount: DefaultOptimizationDiscount,
		OptimizationMinStops: DefaultOptimizationMinStops,
		StoragePenalty: StoragePenalty{
			DailyRate: DefaultStoragePenaltyRate,
			FreeDays:  DefaultStorageFreeDays,
		},
	}
}

// Validate checks that every factor is finite and within its allowed range.
func (s Settings) Validate() error {
	if !fraction(s.ExportDiscountFactor) {
		return fmt.Errorf("%w: export discount factor must be in [0,1), got %v", ErrInvalidTable, s.ExportDiscountFactor)
	}
	if !fraction(s.OptimizationDiscount) {
		return fmt.Errorf("%w: optimization discount must be in [0,1), got %v", ErrInvalidTable, s.OptimizationDiscount)
	}
	if s.OptimizationMinStops < 1 {
		return fmt.Errorf("%w: optimization min stops must be >= 1, got %d", ErrInvalidTable, s.OptimizationMinStops)
	}
	if !finite(s.StoragePenalty.DailyRate) || s.StoragePenalty.DailyRate < 0 {
		return fmt.Errorf("%w: storage penalty rate must be finite and >= 0, got %v", ErrInvalidTable, s.StoragePenalty.DailyRate)
	}
	if s.StoragePenalty.FreeDays < 0 {
		return fmt.Errorf("%w: storage free days must be >= 0, got %d", ErrInvalidTable, s.StoragePenalty.FreeDays)
	}
	return nil
}

func fraction(v float64) bool {
	return v >= 0 && v < 1
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Table is an immutable rate table.
type Table struct {
	settings Settings
	trucks   map[TruckType]TruckProfile
}

// Default returns the standard rate table.
func Default() Table {
	t, err := New(DefaultSettings(), defaultTrucks())
	if err != nil {
		panic(fmt.Sprintf("ratetable: default table: %v", err))
	}
	return t
}

// DefaultTrucks returns the standard truck profiles.
func DefaultTrucks() []TruckProfile {
	return defaultTrucks()
}

// New builds a table from settings and truck profiles. Later profiles for the
// same truck type replace earlier ones.
func New(settings Settings, trucks []TruckProfile) (Table, error) {
	if err := settings.Validate(); err != nil {
		return Table{}, err
	}
	if len(trucks) == 0 {
		return Table{}, fmt.Errorf("%w: no truck profiles", ErrInvalidTable)
	}

	byType := make(map[TruckType]TruckProfile, len(trucks))
	for _, p := range trucks {
		if err := p.Validate(); err != nil {
			return Table{}, err
		}
		byType[p.Type] = p
	}

	return Table{settings: settings, trucks: byType}, nil
}

// WithSettings returns a copy of t priced with settings.
func (t Table) WithSettings(settings Settings) (Table, error) {
	if err := settings.Validate(); err != nil {
		return Table{}, err
	}
	return Table{settings: settings, trucks: t.trucks}, nil
}

// Settings returns the table's scalar factors.
func (t Table) Settings() Settings {
	return t.settings
}

// Truck looks up the profile for truckType.
func (t Table) Truck(truckType TruckType) (TruckProfile, error) {
	p, ok := t.trucks[truckType]
	if !ok {
		return TruckProfile{}, fmt.Errorf("%w: %q", ErrUnknownTruckType, string(truckType))
	}
	return p, nil
}

// Trucks returns the table's profiles in display order.
func (t Table) Trucks() []TruckProfile {
	out := make([]TruckProfile, 0, len(t.trucks))
	for _, key := range knownTruckTypes {
		if p, ok := t.trucks[key]; ok {
			out = append(out, p)
		}
	}
	return out
}
