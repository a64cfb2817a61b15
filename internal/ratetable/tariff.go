package ratetable

// Charge is the unit a tariff rule is billed in. The set of implementations is
// closed: FlatPerContainer, FlatPerShipment and PerDayAfterFreePeriod.
type Charge interface {
	// ConfiguredRate is the rate a rule is configured with, before any day
	// counting or discount.
	ConfiguredRate() float64
	charge()
}

// FlatPerContainer bills Rate once per container.
type FlatPerContainer struct {
	Rate       float64
	Containers int
}

// FlatPerShipment bills Rate once per shipment.
type FlatPerShipment struct {
	Rate float64
}

// PerDayAfterFreePeriod bills DailyRate for every day past FreeDays.
type PerDayAfterFreePeriod struct {
	FreeDays  int
	DailyRate float64
}

func (c FlatPerContainer) ConfiguredRate() float64      { return c.Rate }
func (c FlatPerShipment) ConfiguredRate() float64       { return c.Rate }
func (c PerDayAfterFreePeriod) ConfiguredRate() float64 { return c.DailyRate }

func (FlatPerContainer) charge()      {}
func (FlatPerShipment) charge()       {}
func (PerDayAfterFreePeriod) charge() {}

// TariffRule is one line of the tariff schedule.
type TariffRule struct {
	Name           string
	Charge         Charge
	ExportEligible bool
}

const (
	HandlingFeeName    = "Handling Fee (Per Container)"
	InspectionFeeName  = "Inspection Fee (Per Shipment)"
	StoragePenaltyName = "Storage Penalty (After Free Period)"
)

// TariffSchedule returns the ordered tariff rules for a shipment, binding the
// per-shipment handling and inspection rates to the table's static rules.
func (t Table) TariffSchedule(handlingRate, inspectionRate float64) []TariffRule {
	return []TariffRule{
		{
			Name:           HandlingFeeName,
			Charge:         FlatPerContainer{Rate: handlingRate, Containers: 1},
			ExportEligible: true,
		},
		{
			Name:   InspectionFeeName,
			Charge: FlatPerShipment{Rate: inspectionRate},
		},
		{
			Name: StoragePenaltyName,
			Charge: PerDayAfterFreePeriod{
				FreeDays:  t.settings.StoragePenalty.FreeDays,
				DailyRate: t.settings.StoragePenalty.DailyRate,
			},
		},
	}
}
