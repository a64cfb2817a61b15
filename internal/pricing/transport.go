package pricing

import "github.com/Simplici0/freightcost/internal/ratetable"

// TransportInput holds the inputs of the transport cost calculation.
type TransportInput struct {
	DistanceKm      float64
	TruckType       ratetable.TruckType
	EstimatedDays   int
	DriverDailyWage float64
	FuelPrice       float64
	DailyRental     float64
}

// TransportCost is the fuel, driver and rental breakdown of a trip.
type TransportCost struct {
	TruckType      ratetable.TruckType `json:"truck_type"`
	DistanceKm     float64             `json:"distance_km"`
	FuelEfficiency float64             `json:"fuel_efficiency_km_per_liter"`
	FuelLiters     float64             `json:"fuel_liters"`
	FuelCost       float64             `json:"fuel_cost"`
	BillableDays   int                 `json:"billable_days"`
	DriverCost     float64             `json:"driver_cost"`
	RentalCost     float64             `json:"rental_cost"`
	Total          float64             `json:"total"`
}

// CalculateTransport prices fuel, driver wage and truck rental for a trip.
// At least one day is always billed.
func CalculateTransport(table ratetable.Table, in TransportInput) (TransportCost, error) {
	profile, err := table.Truck(in.TruckType)
	if err != nil {
		return TransportCost{}, err
	}

	billableDays := max(1, in.EstimatedDays)
	fuelLiters := in.DistanceKm / profile.FuelEfficiencyKmPerLiter
	fuelCost := fuelLiters * in.FuelPrice
	driverCost := float64(billableDays) * in.DriverDailyWage
	rentalCost := float64(billableDays) * in.DailyRental

	return TransportCost{
		TruckType:      profile.Type,
		DistanceKm:     in.DistanceKm,
		FuelEfficiency: profile.FuelEfficiencyKmPerLiter,
		FuelLiters:     fuelLiters,
		FuelCost:       fuelCost,
		BillableDays:   billableDays,
		DriverCost:     driverCost,
		RentalCost:     rentalCost,
		Total:          fuelCost + driverCost + rentalCost,
	}, nil
}
