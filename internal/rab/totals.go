package rab

// Markups applied on top of the ledger subtotal. Tax is charged on the
// subtotal plus overhead and profit.
const (
	OverheadRate = 0.10
	ProfitRate   = 0.15
	TaxRate      = 0.11
)

// Totals is the aggregate of a ledger. Values keep full precision; rounding
// is left to display.
type Totals struct {
	Subtotal   float64 `json:"subtotal"`
	Overhead   float64 `json:"overhead"`
	Profit     float64 `json:"profit"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grand_total"`
}

// ComputeTotals sums item amounts and applies overhead, profit and tax.
func ComputeTotals(items []LineItem) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Amount
	}

	overhead := subtotal * OverheadRate
	profit := subtotal * ProfitRate
	tax := (subtotal + overhead + profit) * TaxRate

	return Totals{
		Subtotal:   subtotal,
		Overhead:   overhead,
		Profit:     profit,
		Tax:        tax,
		GrandTotal: subtotal + overhead + profit + tax,
	}
}
