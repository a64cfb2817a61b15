package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Simplici0/freightcost/internal/ratetable"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run writes the given rate table into an empty store. Existing rows are left
// untouched, so running it on every startup keeps admin edits.
func Run(ctx context.Context, db *sql.DB, table ratetable.Table) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := ensureSettings(ctx, tx, table.Settings(), &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	for _, truck := range table.Trucks() {
		if err := ensureTruck(ctx, tx, truck, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureSettings(ctx context.Context, tx *sql.Tx, s ratetable.Settings, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rate_settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check rate settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rate_settings (
			id,
			export_discount_factor,
			optimization_discount,
			optimization_min_stops,
			storage_penalty_rate,
			storage_free_days
		)
		VALUES (1, ?, ?, ?, ?, ?)
	`, s.ExportDiscountFactor, s.OptimizationDiscount, s.OptimizationMinStops, s.StoragePenalty.DailyRate, s.StoragePenalty.FreeDays); err != nil {
		return fmt.Errorf("insert rate settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureTruck(ctx context.Context, tx *sql.Tx, p ratetable.TruckProfile, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM truck_profiles WHERE code = ? LIMIT 1)`, string(p.Type)).Scan(&exists); err != nil {
		return fmt.Errorf("check truck profile %s existence: %w", p.Type, err)
	}
	if exists {
		return nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO truck_profiles (code, fuel_efficiency_km_per_liter, capacity_tonnes, category)
		VALUES (?, ?, ?, ?)
	`, string(p.Type), p.FuelEfficiencyKmPerLiter, p.CapacityTonnes, p.Category); err != nil {
		return fmt.Errorf("insert truck profile %s: %w", p.Type, err)
	}
	stats.Inserts++
	return nil
}
