package einvoice

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var totalsTolerance = decimal.NewFromFloat(0.01)

// HeaderTotals are the totals stated by the document itself. Nil fields were
// not present.
type HeaderTotals struct {
	Subtotal *decimal.Decimal
	Tax      *decimal.Decimal
	Total    *decimal.Decimal
}

func (h *HeaderTotals) empty() bool {
	return h == nil || (h.Subtotal == nil && h.Tax == nil && h.Total == nil)
}

// ReconcileTotals computes item sums and compares them with the document's
// own totals. Document totals win when present; every mismatch above one cent
// is recorded and logged.
func ReconcileTotals(items []Item, header *HeaderTotals) Totals {
	var sumSub, sumTax, sumTotal decimal.Decimal
	for _, it := range items {
		sumSub = sumSub.Add(it.Subtotal)
		sumTax = sumTax.Add(it.TaxAmount)
		sumTotal = sumTotal.Add(it.Total)
	}

	if header.empty() {
		return Totals{
			Subtotal:      round2(sumSub),
			Tax:           round2(sumTax),
			Total:         round2(sumTotal),
			Source:        TotalsFromItems,
			Discrepancies: []string{},
		}
	}

	sub := sumSub
	if header.Subtotal != nil {
		sub = *header.Subtotal
	}
	tax := sumTax
	switch {
	case header.Tax != nil:
		tax = *header.Tax
	case header.Total != nil && header.Subtotal != nil:
		tax = header.Total.Sub(*header.Subtotal)
	}
	total := sub.Add(tax)
	if header.Total != nil {
		total = *header.Total
	}

	out := Totals{
		Subtotal:      round2(sub),
		Tax:           round2(tax),
		Total:         round2(total),
		Source:        TotalsFromDocument,
		Discrepancies: []string{},
	}
	check := func(field string, doc, items decimal.Decimal) {
		if doc.Sub(items).Abs().GreaterThan(totalsTolerance) {
			out.Discrepancies = append(out.Discrepancies,
				fmt.Sprintf("%s: document %s, items %s", field, doc.StringFixed(2), items.StringFixed(2)))
		}
	}
	check("subtotal", out.Subtotal, sumSub)
	check("tax", out.Tax, sumTax)
	check("total", out.Total, sumTotal)

	if len(out.Discrepancies) > 0 {
		log.Warn().Strs("discrepancies", out.Discrepancies).
			Msg("einvoice.ReconcileTotals: document totals disagree with line items")
	}
	return out
}
