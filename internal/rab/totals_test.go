package rab

import "testing"

func TestComputeTotals_SingleItem(t *testing.T) {
	l := NewLedger()
	if _, err := l.AddItem(NewItem{
		Description: "Pekerjaan struktur",
		Category:    "Foundation & Structure",
		Unit:        "m³",
		Volume:      15,
		UnitPrice:   850000,
	}, nil); err != nil {
		t.Fatalf("add item: %v", err)
	}

	totals := l.Totals()

	nearlyEqual(t, "subtotal", totals.Subtotal, 12750000)
	nearlyEqual(t, "overhead", totals.Overhead, 1275000)
	nearlyEqual(t, "profit", totals.Profit, 1912500)
	nearlyEqual(t, "tax", totals.Tax, 1753125)
	nearlyEqual(t, "grandTotal", totals.GrandTotal, 17690625)
}

func TestComputeTotals_Empty(t *testing.T) {
	if got := ComputeTotals(nil); got != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
	if got := NewLedger().Totals(); got != (Totals{}) {
		t.Fatalf("expected zero totals for empty ledger, got %+v", got)
	}
}

func TestComputeTotals_Relations(t *testing.T) {
	ledgers := [][]LineItem{
		{{Amount: 1}},
		{{Amount: 2540000}, {Amount: 114000.5}, {Amount: 0}},
		{{Amount: 0.1}, {Amount: 0.2}, {Amount: 0.3}},
		{{Amount: 987654321.123}},
	}

	for _, items := range ledgers {
		totals := ComputeTotals(items)

		var sum float64
		for _, item := range items {
			sum += item.Amount
		}
		nearlyEqual(t, "subtotal", totals.Subtotal, sum)
		nearlyEqual(t, "overhead", totals.Overhead, 0.10*totals.Subtotal)
		nearlyEqual(t, "profit", totals.Profit, 0.15*totals.Subtotal)
		nearlyEqual(t, "tax", totals.Tax, 0.11*(totals.Subtotal+totals.Overhead+totals.Profit))
		nearlyEqual(t, "grandTotal", totals.GrandTotal, totals.Subtotal+totals.Overhead+totals.Profit+totals.Tax)
	}
}
