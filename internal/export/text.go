package export

import (
	"fmt"
	"strings"

	"github.com/Simplici0/rab.works/internal/currency"
	"github.com/Simplici0/rab.works/internal/rab"
)

// EstimateText renders an estimate as a plain-text summary suitable for
// pasting into a chat message.
func EstimateText(est rab.Estimate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "RAB %s\n", est.Title)
	if est.ClientName != "" {
		fmt.Fprintf(&b, "Klien: %s\n", est.ClientName)
	}
	if est.Location != "" {
		fmt.Fprintf(&b, "Lokasi: %s\n", est.Location)
	}
	b.WriteString("\n")

	if len(est.Items) == 0 {
		b.WriteString("Belum ada item pekerjaan.\n")
	}
	for i, item := range est.Items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, item.Description, item.Category)
		fmt.Fprintf(&b, "   %s %s x %s = %s\n",
			currency.FormatNumber(item.Volume, 3),
			item.Unit,
			currency.FormatRupiah(item.UnitPrice),
			currency.FormatRupiah(item.Amount),
		)
	}

	b.WriteString("\n")
	for _, line := range totalLines(est.Totals) {
		fmt.Fprintf(&b, "%s: %s\n", line.label, currency.FormatRupiah(line.value))
	}

	if notes := strings.TrimSpace(est.Notes); notes != "" {
		fmt.Fprintf(&b, "\nCatatan: %s\n", notes)
	}
	return b.String()
}
