package pricing

import "fmt"

// DutyNotApplicable explains a zero duty line.
const DutyNotApplicable = "Customs duty applies only to import/local cargo"

// DutyCost is the customs duty line of a shipment.
type DutyCost struct {
	CIFValue float64 `json:"cif_value"`
	Rate     float64 `json:"rate"`
	Applied  bool    `json:"applied"`
	Cost     float64 `json:"cost"`
	Note     string  `json:"note"`
}

// CalculateDuty charges ratePercent of the CIF value on import/local cargo.
func CalculateDuty(cifValue, ratePercent float64, isExport bool) DutyCost {
	if isExport || ratePercent <= 0 {
		return DutyCost{
			CIFValue: cifValue,
			Rate:     ratePercent,
			Note:     DutyNotApplicable,
		}
	}

	return DutyCost{
		CIFValue: cifValue,
		Rate:     ratePercent,
		Applied:  true,
		Cost:     cifValue * (ratePercent / 100),
		Note:     fmt.Sprintf("%.2f%% of CIF value %.2f", ratePercent, cifValue),
	}
}
