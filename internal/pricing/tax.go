package pricing

// TaxCost is the VAT and withholding tax owed on the transport subtotal.
type TaxCost struct {
	Base    float64 `json:"base"`
	VATRate float64 `json:"vat_rate"`
	VAT     float64 `json:"vat"`
	WHTRate float64 `json:"wht_rate"`
	WHT     float64 `json:"wht"`
	Total   float64 `json:"total"`
}

// CalculateTax applies VAT and WHT percentages to subtotal. Tariffs and duty
// are never part of the tax base.
func CalculateTax(subtotal, vatPercent, whtPercent float64) TaxCost {
	vat := subtotal * (vatPercent / 100)
	wht := subtotal * (whtPercent / 100)

	return TaxCost{
		Base:    subtotal,
		VATRate: vatPercent,
		VAT:     vat,
		WHTRate: whtPercent,
		WHT:     wht,
		Total:   vat + wht,
	}
}
