package pricing

import (
	"errors"
	"strings"
	"testing"

	"github.com/Simplici0/freightcost/internal/ratetable"
)

func TestCalculateTransport_MinimumBillableDay(t *testing.T) {
	table := ratetable.Default()

	for _, days := range []int{0, -3} {
		cost, err := CalculateTransport(table, TransportInput{
			DistanceKm:      278,
			TruckType:       ratetable.Truck40ftDryVan,
			EstimatedDays:   days,
			DriverDailyWage: 1000,
			FuelPrice:       10,
			DailyRental:     2000,
		})
		if err != nil {
			t.Fatalf("CalculateTransport(days=%d): %v", days, err)
		}
		if cost.BillableDays != 1 {
			t.Fatalf("days=%d billable = %d, want 1", days, cost.BillableDays)
		}
		nearlyEqual(t, "driverCost", cost.DriverCost, 1000)
		nearlyEqual(t, "rentalCost", cost.RentalCost, 2000)
		nearlyEqual(t, "fuelLiters", cost.FuelLiters, 100)
		nearlyEqual(t, "total", cost.Total, 1000+2000+1000)
	}
}

func TestCalculateTransport_UnknownTruck(t *testing.T) {
	_, err := CalculateTransport(ratetable.Default(), TransportInput{DistanceKm: 10, TruckType: "UNICYCLE", EstimatedDays: 1})
	if !errors.Is(err, ratetable.ErrUnknownTruckType) {
		t.Fatalf("err = %v, want ErrUnknownTruckType", err)
	}
	if !strings.Contains(err.Error(), "UNICYCLE") {
		t.Fatalf("error %q should name the truck type", err)
	}
}

func TestCalculateTariffs_StoragePenalty(t *testing.T) {
	table := ratetable.Default()

	for _, days := range []int{1, 5, 8} {
		out := CalculateTariffs(table, TariffInput{EstimatedDays: days})
		if len(out.Items) != 1 {
			t.Fatalf("days=%d got %d items, want only the storage penalty", days, len(out.Items))
		}
		penalty := out.Items[0]
		if penalty.Name != "Storage Penalty" || penalty.Cost != 0 {
			t.Fatalf("days=%d unexpected penalty: %+v", days, penalty)
		}
		if !strings.Contains(penalty.Note, "8-day free period") {
			t.Fatalf("days=%d note %q should mention the free period", days, penalty.Note)
		}
		nearlyEqual(t, "total", out.Total, 0)
	}

	out := CalculateTariffs(table, TariffInput{EstimatedDays: 10})
	nearlyEqual(t, "penalty", out.Items[0].Cost, 384)
	if !strings.Contains(out.Items[0].Note, "2 day(s)") {
		t.Fatalf("note %q should count the penalty days", out.Items[0].Note)
	}
}

func TestCalculateTariffs_ExportDiscount(t *testing.T) {
	table := ratetable.Default()
	in := TariffInput{EstimatedDays: 12, HandlingRate: 1500, InspectionRate: 500}

	local := CalculateTariffs(table, in)
	in.IsExport = true
	export := CalculateTariffs(table, in)

	nearlyEqual(t, "handling", export.Items[0].Cost, local.Items[0].Cost*0.40)
	nearlyEqual(t, "inspection", export.Items[1].Cost, local.Items[1].Cost)
	nearlyEqual(t, "storage", export.Items[2].Cost, local.Items[2].Cost)
	nearlyEqual(t, "total", export.Total, 600+500+4*192)

	if !strings.Contains(export.Items[0].Note, "60% export discount applied") {
		t.Fatalf("handling note %q should mention the export discount", export.Items[0].Note)
	}
	if strings.Contains(export.Items[1].Note, "export") {
		t.Fatalf("inspection note %q should not mention a discount", export.Items[1].Note)
	}
}

func TestCalculateTariffs_DisplayNamesAndOrder(t *testing.T) {
	out := CalculateTariffs(ratetable.Default(), TariffInput{EstimatedDays: 9, HandlingRate: 1, InspectionRate: 1})

	want := []string{"Handling Fee", "Inspection Fee", "Storage Penalty"}
	if len(out.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(out.Items), len(want))
	}
	for i, name := range want {
		if out.Items[i].Name != name {
			t.Fatalf("items[%d].Name = %q, want %q", i, out.Items[i].Name, name)
		}
	}
}

func TestCalculateTariffs_ZeroRatesAreOmitted(t *testing.T) {
	settings := ratetable.DefaultSettings()
	settings.StoragePenalty.DailyRate = 0
	table, err := ratetable.New(settings, ratetable.DefaultTrucks())
	if err != nil {
		t.Fatalf("ratetable.New: %v", err)
	}

	out := CalculateTariffs(table, TariffInput{EstimatedDays: 20, InspectionRate: 250})
	if len(out.Items) != 1 || out.Items[0].Name != "Inspection Fee" {
		t.Fatalf("expected only the inspection fee, got %+v", out.Items)
	}
	nearlyEqual(t, "total", out.Total, 250)
}

func TestCalculateDuty(t *testing.T) {
	imported := CalculateDuty(100000, 10, false)
	nearlyEqual(t, "duty", imported.Cost, 10000)
	if !imported.Applied || !strings.Contains(imported.Note, "100000.00") || !strings.Contains(imported.Note, "10.00%") {
		t.Fatalf("unexpected import duty: %+v", imported)
	}

	for _, rate := range []float64{0, 10, 45} {
		exported := CalculateDuty(250000, rate, true)
		if exported.Cost != 0 || exported.Applied || exported.Note != DutyNotApplicable {
			t.Fatalf("rate=%v unexpected export duty: %+v", rate, exported)
		}
	}

	noRate := CalculateDuty(100000, 0, false)
	if noRate.Cost != 0 || noRate.Note != DutyNotApplicable {
		t.Fatalf("unexpected zero-rate duty: %+v", noRate)
	}
}

func TestCalculateTax(t *testing.T) {
	tax := CalculateTax(10000, 15, 2)
	nearlyEqual(t, "vat", tax.VAT, 1500)
	nearlyEqual(t, "wht", tax.WHT, 200)
	nearlyEqual(t, "total", tax.Total, 1700)
	nearlyEqual(t, "base", tax.Base, 10000)

	none := CalculateTax(10000, 0, 0)
	if none.Total != 0 {
		t.Fatalf("total = %v, want 0", none.Total)
	}
}

func TestOptimizeRoute_Notes(t *testing.T) {
	table := ratetable.Default()

	skipped := OptimizeRoute(table, 120, 2)
	if skipped.Applied || skipped.ReductionFactor != 0 || !strings.Contains(skipped.Note, "No route optimization") {
		t.Fatalf("unexpected skipped optimization: %+v", skipped)
	}

	applied := OptimizeRoute(table, 120, 3)
	if !applied.Applied || applied.ReductionFactor != 0.10 {
		t.Fatalf("unexpected optimization: %+v", applied)
	}
	if !strings.Contains(applied.Note, "120.00 km to 108.00 km") {
		t.Fatalf("note %q should show both distances", applied.Note)
	}
}
