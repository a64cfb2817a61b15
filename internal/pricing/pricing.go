package pricing

import (
	"math"

	"github.com/Simplici0/freightcost/internal/ratetable"
)

// ShipmentInput represents the parameters of one shipment to be priced.
type ShipmentInput struct {
	DistanceKm      float64             `json:"distance_km"`
	EstimatedDays   int                 `json:"estimated_days"`
	TruckType       ratetable.TruckType `json:"truck_type"`
	IsExport        bool                `json:"is_export"`
	NumStops        int                 `json:"num_stops"`
	CIFValue        float64             `json:"cif_value"`
	CustomsDutyRate float64             `json:"customs_duty_rate"`
	VATRate         float64             `json:"vat_rate"`
	WHTRate         float64             `json:"wht_rate"`
	DriverCost      float64             `json:"driver_cost"`
	TruckRentalCost float64             `json:"truck_rental_cost"`
	FuelPrice       float64             `json:"fuel_price"`
	HandlingCost    float64             `json:"handling_cost"`
	InspectionFee   float64             `json:"inspection_fee"`
}

// Result groups the full cost output of a shipment: the echoed input, every
// section breakdown and the grand total at full precision.
type Result struct {
	Input        ShipmentInput `json:"input"`
	Optimization Optimization  `json:"optimization"`
	Transport    TransportCost `json:"transport"`
	Tariffs      TariffCost    `json:"tariffs"`
	Duty         DutyCost      `json:"duty"`
	Tax          TaxCost       `json:"tax"`
	// TariffSubtotal is tariffs plus customs duty.
	TariffSubtotal float64 `json:"tariff_subtotal"`
	Total          float64 `json:"total"`
}

// RoundedTotal returns the grand total rounded to two decimals for display.
func (r Result) RoundedTotal() float64 {
	return Round2(r.Total)
}

// Charges lists the tariff line items followed by the customs duty line.
func (r Result) Charges() []LineItem {
	items := make([]LineItem, 0, len(r.Tariffs.Items)+1)
	items = append(items, r.Tariffs.Items...)
	items = append(items, LineItem{Name: "Customs Duty", Cost: r.Duty.Cost, Note: r.Duty.Note})
	return items
}

// Round2 rounds v half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Engine prices shipments against a fixed rate table. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	rates ratetable.Table
}

// NewEngine returns an engine bound to rates.
func NewEngine(rates ratetable.Table) *Engine {
	return &Engine{rates: rates}
}

// Rates returns the table the engine prices against.
func (e *Engine) Rates() ratetable.Table {
	return e.rates
}

// Calculate prices a shipment against the default rate table.
func Calculate(in ShipmentInput) (Result, error) {
	return NewEngine(ratetable.Default()).Calculate(in)
}

// Calculate computes the transport, tariff, duty and tax sections of a shipment
// and their grand total. Sub-calculation errors are returned unchanged.
func (e *Engine) Calculate(in ShipmentInput) (Result, error) {
	route := OptimizeRoute(e.rates, in.DistanceKm, in.NumStops)

	transport, err := CalculateTransport(e.rates, TransportInput{
		DistanceKm:      route.AdjustedKm,
		TruckType:       in.TruckType,
		EstimatedDays:   in.EstimatedDays,
		DriverDailyWage: in.DriverCost,
		FuelPrice:       in.FuelPrice,
		DailyRental:     in.TruckRentalCost,
	})
	if err != nil {
		return Result{}, err
	}

	tariffs := CalculateTariffs(e.rates, TariffInput{
		EstimatedDays:  in.EstimatedDays,
		IsExport:       in.IsExport,
		HandlingRate:   in.HandlingCost,
		InspectionRate: in.InspectionFee,
	})
	duty := CalculateDuty(in.CIFValue, in.CustomsDutyRate, in.IsExport)
	tariffSubtotal := tariffs.Total + duty.Cost

	tax := CalculateTax(transport.Total, in.VATRate, in.WHTRate)

	return Result{
		Input:          in,
		Optimization:   route,
		Transport:      transport,
		Tariffs:        tariffs,
		Duty:           duty,
		Tax:            tax,
		TariffSubtotal: tariffSubtotal,
		Total:          transport.Total + tariffSubtotal + tax.Total,
	}, nil
}
