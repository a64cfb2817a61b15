package pricing

import (
	"fmt"

	"github.com/Simplici0/freightcost/internal/ratetable"
)

// Optimization records how the route distance was adjusted.
type Optimization struct {
	OriginalKm      float64 `json:"original_km"`
	AdjustedKm      float64 `json:"adjusted_km"`
	Applied         bool    `json:"applied"`
	ReductionFactor float64 `json:"reduction_factor"`
	NumStops        int     `json:"num_stops"`
	Note            string  `json:"note"`
}

// OptimizeRoute shortens multi-stop routes by the table's optimization
// discount. Routes below the stop threshold keep their distance.
func OptimizeRoute(table ratetable.Table, distanceKm float64, numStops int) Optimization {
	settings := table.Settings()

	if numStops < settings.OptimizationMinStops {
		return Optimization{
			OriginalKm: distanceKm,
			AdjustedKm: distanceKm,
			NumStops:   numStops,
			Note: fmt.Sprintf("No route optimization: %d stop(s), optimization starts at %d",
				numStops, settings.OptimizationMinStops),
		}
	}

	adjusted := distanceKm * (1 - settings.OptimizationDiscount)
	return Optimization{
		OriginalKm:      distanceKm,
		AdjustedKm:      adjusted,
		Applied:         true,
		ReductionFactor: settings.OptimizationDiscount,
		NumStops:        numStops,
		Note: fmt.Sprintf("Route optimized for %d stops: %.0f%% distance reduction (%.2f km to %.2f km)",
			numStops, settings.OptimizationDiscount*100, distanceKm, adjusted),
	}
}
