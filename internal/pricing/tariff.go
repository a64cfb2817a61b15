package pricing

import (
	"fmt"
	"strings"

	"github.com/Simplici0/freightcost/internal/ratetable"
)

// TariffInput holds the inputs of the tariff calculation. EstimatedDays is the
// planned duration, not adjusted by route optimization.
type TariffInput struct {
	EstimatedDays  int
	IsExport       bool
	HandlingRate   float64
	InspectionRate float64
}

// LineItem is one reported charge in a cost section.
type LineItem struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
	Note string  `json:"note"`
}

// TariffCost is the itemized tariff breakdown.
type TariffCost struct {
	Items []LineItem `json:"items"`
	Total float64    `json:"total"`
}

// CalculateTariffs evaluates the table's tariff schedule for one shipment.
//
// A rule is reported when its final cost or its configured rate is positive,
// so a storage penalty inside the free period still appears at zero cost.
func CalculateTariffs(table ratetable.Table, in TariffInput) TariffCost {
	discount := table.Settings().ExportDiscountFactor
	rules := table.TariffSchedule(in.HandlingRate, in.InspectionRate)

	out := TariffCost{Items: make([]LineItem, 0, len(rules))}
	for _, rule := range rules {
		base, note := evaluateCharge(rule.Charge, in.EstimatedDays)

		cost := base
		if in.IsExport && rule.ExportEligible {
			cost = base * (1 - discount)
			note += fmt.Sprintf(" (%.0f%% export discount applied)", discount*100)
		}

		if cost <= 0 && rule.Charge.ConfiguredRate() <= 0 {
			continue
		}

		out.Items = append(out.Items, LineItem{
			Name: displayName(rule.Name),
			Cost: cost,
			Note: note,
		})
		out.Total += cost
	}

	return out
}

// evaluateCharge returns the undiscounted cost of c and how it was derived.
func evaluateCharge(c ratetable.Charge, days int) (float64, string) {
	switch c := c.(type) {
	case ratetable.FlatPerContainer:
		containers := max(1, c.Containers)
		if containers == 1 {
			return c.Rate, fmt.Sprintf("Flat %.2f per container", c.Rate)
		}
		return c.Rate * float64(containers), fmt.Sprintf("Flat %.2f per container x %d containers", c.Rate, containers)
	case ratetable.FlatPerShipment:
		return c.Rate, fmt.Sprintf("Flat %.2f per shipment", c.Rate)
	case ratetable.PerDayAfterFreePeriod:
		extra := days - c.FreeDays
		if extra <= 0 {
			return 0, fmt.Sprintf("Within %d-day free period, no penalty", c.FreeDays)
		}
		return float64(extra) * c.DailyRate, fmt.Sprintf("%d day(s) beyond %d-day free period at %.2f/day", extra, c.FreeDays, c.DailyRate)
	default:
		panic(fmt.Sprintf("pricing: unhandled tariff charge %T", c))
	}
}

// displayName drops a trailing parenthetical qualifier: "Handling Fee (Per
// Container)" is shown as "Handling Fee".
func displayName(name string) string {
	if i := strings.Index(name, "("); i > 0 {
		return strings.TrimSpace(name[:i])
	}
	return name
}
