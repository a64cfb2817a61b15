// Package ratestore persists the admin-editable rate table in SQLite.
package ratestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Simplici0/freightcost/internal/ratetable"
)

// ErrNotSeeded is returned when the rate_settings singleton has not been written yet.
var ErrNotSeeded = errors.New("rate table not seeded")

// Store reads and writes rate table configuration.
type Store struct {
	db *sql.DB
}

// New returns a store backed by db. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load builds a rate table from the stored settings and truck profiles.
func (s *Store) Load(ctx context.Context) (ratetable.Table, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return ratetable.Table{}, err
	}

	trucks, err := s.Trucks(ctx)
	if err != nil {
		return ratetable.Table{}, err
	}

	table, err := ratetable.New(settings, trucks)
	if err != nil {
		return ratetable.Table{}, fmt.Errorf("build stored rate table: %w", err)
	}
	return table, nil
}

// Settings returns the stored scalar factors.
func (s *Store) Settings(ctx context.Context) (ratetable.Settings, error) {
	var st ratetable.Settings
	err := s.db.QueryRowContext(ctx, `
		SELECT export_discount_factor, optimization_discount, optimization_min_stops, storage_penalty_rate, storage_free_days
		FROM rate_settings
		WHERE id = 1
	`).Scan(
		&st.ExportDiscountFactor,
		&st.OptimizationDiscount,
		&st.OptimizationMinStops,
		&st.StoragePenalty.DailyRate,
		&st.StoragePenalty.FreeDays,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ratetable.Settings{}, ErrNotSeeded
		}
		return ratetable.Settings{}, fmt.Errorf("query rate_settings: %w", err)
	}
	return st, nil
}

// Trucks returns the stored truck profiles. A code outside the known truck
// types fails with ratetable.ErrUnknownTruckType.
func (s *Store) Trucks(ctx context.Context) ([]ratetable.TruckProfile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, fuel_efficiency_km_per_liter, capacity_tonnes, category
		FROM truck_profiles
		ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("query truck profiles: %w", err)
	}
	defer rows.Close()

	trucks := make([]ratetable.TruckProfile, 0)
	for rows.Next() {
		var code string
		var p ratetable.TruckProfile
		if err := rows.Scan(&code, &p.FuelEfficiencyKmPerLiter, &p.CapacityTonnes, &p.Category); err != nil {
			return nil, fmt.Errorf("scan truck profile: %w", err)
		}
		if p.Type, err = ratetable.ParseTruckType(code); err != nil {
			return nil, fmt.Errorf("stored truck profile: %w", err)
		}
		trucks = append(trucks, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate truck profiles: %w", err)
	}

	return trucks, nil
}

// SaveSettings validates and upserts the scalar factors.
func (s *Store) SaveSettings(ctx context.Context, st ratetable.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rate_settings (
			id,
			export_discount_factor,
			optimization_discount,
			optimization_min_stops,
			storage_penalty_rate,
			storage_free_days
		) VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			export_discount_factor = excluded.export_discount_factor,
			optimization_discount = excluded.optimization_discount,
			optimization_min_stops = excluded.optimization_min_stops,
			storage_penalty_rate = excluded.storage_penalty_rate,
			storage_free_days = excluded.storage_free_days,
			updated_at = CURRENT_TIMESTAMP
	`,
		st.ExportDiscountFactor,
		st.OptimizationDiscount,
		st.OptimizationMinStops,
		st.StoragePenalty.DailyRate,
		st.StoragePenalty.FreeDays,
	)
	if err != nil {
		return fmt.Errorf("upsert rate_settings: %w", err)
	}
	return nil
}

// SaveTruck upserts one truck profile.
func (s *Store) SaveTruck(ctx context.Context, p ratetable.TruckProfile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("save truck profile: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO truck_profiles (code, fuel_efficiency_km_per_liter, capacity_tonnes, category)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			fuel_efficiency_km_per_liter = excluded.fuel_efficiency_km_per_liter,
			capacity_tonnes = excluded.capacity_tonnes,
			category = excluded.category,
			updated_at = CURRENT_TIMESTAMP
	`, string(p.Type), p.FuelEfficiencyKmPerLiter, p.CapacityTonnes, p.Category)
	if err != nil {
		return fmt.Errorf("upsert truck profile %s: %w", p.Type, err)
	}
	return nil
}
