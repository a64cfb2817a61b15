// Package report builds the display model of a priced shipment and renders it
// as plain text. Amounts are rounded to two decimals here and nowhere else.
package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Simplici0/freightcost/internal/pricing"
)

// Line is one formatted row of a report section.
type Line struct {
	Label  string
	Amount string
	Note   string
}

// Section is a titled group of lines with a subtotal.
type Section struct {
	Title    string
	Lines    []Line
	Subtotal string
}

// View is the presentation shape of a pricing result.
type View struct {
	Currency         string
	TruckType        string
	Export           bool
	OriginalDistance string
	AdjustedDistance string
	Optimized        bool
	OptimizationNote string
	NumStops         int
	Transport        Section
	Tariffs          Section
	Tax              Section
	Total            string
	// TotalValue is the grand total rounded to two decimals.
	TotalValue float64
}

var printer = message.NewPrinter(language.English)

// Money formats v with thousands separators and two decimals.
func Money(v float64) string {
	return printer.Sprintf("%.2f", pricing.Round2(v))
}

// NewView formats result for display.
func NewView(result pricing.Result, currency string) View {
	tr := result.Transport
	tax := result.Tax

	v := View{
		Currency:         currency,
		TruckType:        string(result.Input.TruckType),
		Export:           result.Input.IsExport,
		OriginalDistance: printer.Sprintf("%.2f km", result.Optimization.OriginalKm),
		AdjustedDistance: printer.Sprintf("%.2f km", result.Optimization.AdjustedKm),
		Optimized:        result.Optimization.Applied,
		OptimizationNote: result.Optimization.Note,
		NumStops:         result.Optimization.NumStops,
		Transport: Section{
			Title: "A. Transport",
			Lines: []Line{
				{
					Label:  "Fuel",
					Amount: Money(tr.FuelCost),
					Note: printer.Sprintf("%.2f L over %.2f km at %.2f km/L, %.2f per liter",
						tr.FuelLiters, tr.DistanceKm, tr.FuelEfficiency, result.Input.FuelPrice),
				},
				{
					Label:  "Driver",
					Amount: Money(tr.DriverCost),
					Note:   printer.Sprintf("%d billable day(s) at %.2f per day", tr.BillableDays, result.Input.DriverCost),
				},
				{
					Label:  "Truck rental",
					Amount: Money(tr.RentalCost),
					Note:   printer.Sprintf("%d billable day(s) at %.2f per day", tr.BillableDays, result.Input.TruckRentalCost),
				},
			},
			Subtotal: Money(tr.Total),
		},
		Tariffs: Section{
			Title:    "B. Tariffs & Duties",
			Subtotal: Money(result.TariffSubtotal),
		},
		Tax: Section{
			Title: "C. Taxes",
			Lines: []Line{
				{Label: "VAT", Amount: Money(tax.VAT), Note: printer.Sprintf("%.2f%% of transport subtotal", tax.VATRate)},
				{Label: "Withholding tax", Amount: Money(tax.WHT), Note: printer.Sprintf("%.2f%% of transport subtotal", tax.WHTRate)},
			},
			Subtotal: Money(tax.Total),
		},
		Total:      Money(result.Total),
		TotalValue: result.RoundedTotal(),
	}

	for _, item := range result.Charges() {
		v.Tariffs.Lines = append(v.Tariffs.Lines, Line{Label: item.Name, Amount: Money(item.Cost), Note: item.Note})
	}

	return v
}

// WriteText renders v as a plain-text report.
func WriteText(w io.Writer, v View) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Shipment cost estimate (%s)\n", v.Currency)
	fmt.Fprintf(&b, "Truck: %s\n", v.TruckType)
	if v.Export {
		b.WriteString("Cargo: export\n")
	} else {
		b.WriteString("Cargo: import/local\n")
	}
	fmt.Fprintf(&b, "Route: %s -> %s (%d stop(s))\n", v.OriginalDistance, v.AdjustedDistance, v.NumStops)
	fmt.Fprintf(&b, "  %s\n", v.OptimizationNote)

	for _, s := range []Section{v.Transport, v.Tariffs, v.Tax} {
		fmt.Fprintf(&b, "\n%s\n", s.Title)
		for _, l := range s.Lines {
			fmt.Fprintf(&b, "  %-18s %14s  %s\n", l.Label, l.Amount, l.Note)
		}
		fmt.Fprintf(&b, "  %-18s %14s\n", "Subtotal", s.Subtotal)
	}

	fmt.Fprintf(&b, "\nTotal: %s %s\n", v.Total, v.Currency)

	_, err := io.WriteString(w, b.String())
	return err
}
