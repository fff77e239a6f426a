package einvoice

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ParseAmount reads a monetary or numeric string as written on invoices. It
// accepts "1234.56", "1.234,56", "1,234.56", currency symbols and spaces.
// A lone dot is a decimal point. Anything unreadable is zero.
func ParseAmount(s string) decimal.Decimal {
	d, _ := parseAmount(s, false)
	return d
}

// parseAmount normalizes the separators and parses. With dotGroups set, a lone
// dot followed by exactly three digits ("1.000") groups thousands, which is how
// Spanish-language exports write whole amounts.
func parseAmount(s string, dotGroups bool) (decimal.Decimal, bool) {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if clean == "" || clean == "-" {
		return decimal.Zero, false
	}

	lastDot := strings.LastIndexByte(clean, '.')
	lastComma := strings.LastIndexByte(clean, ',')
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Whichever separator comes last is the decimal one.
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		// "1,234,567" groups thousands; a single comma with at most two digits
		// after it is a decimal separator.
		if strings.Count(clean, ",") == 1 && len(clean)-lastComma-1 != 3 {
			clean = strings.Replace(clean, ",", ".", 1)
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	case dotGroups && lastDot >= 0 && len(clean)-lastDot-1 == 3:
		clean = strings.Replace(clean, ".", "", 1)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// amountOf returns the parsed text of a vocabulary node, or nil when the node
// is absent, empty or unreadable. UBL basic components (cbc:) carry
// xsd:decimal values; anything else may use dots to group thousands.
func amountOf(n *Node) *decimal.Decimal {
	if n == nil {
		return nil
	}
	return nodeAmount(n, n.Prefix != "cbc")
}

// ublAmountOf reads an xsd:decimal value, where a dot is always decimal.
func ublAmountOf(n *Node) *decimal.Decimal {
	if n == nil {
		return nil
	}
	return nodeAmount(n, false)
}

func nodeAmount(n *Node, dotGroups bool) *decimal.Decimal {
	if n.Text == "" {
		return nil
	}
	d, ok := parseAmount(n.Text, dotGroups)
	if !ok {
		return nil
	}
	return &d
}

func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// firstNonEmpty returns the first non-empty argument.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// joinAddress joins the non-empty address parts with ", ".
func joinAddress(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// rawLine is one line item as read from the document, before defaults and
// arithmetic are applied. Nil amounts were not present.
type rawLine struct {
	name      string
	sku       string
	altSKU    string
	quantity  *decimal.Decimal
	unitPrice *decimal.Decimal
	subtotal  *decimal.Decimal
	taxAmount *decimal.Decimal
	taxRate   *decimal.Decimal
}

// buildItem applies the line defaults and arithmetic shared by every dialect.
// index is zero-based.
func (d *Detector) buildItem(index int, l rawLine) Item {
	qty := decimal.Zero
	if l.quantity != nil {
		qty = *l.quantity
	}
	if !qty.IsPositive() {
		log.Debug().Int("line", index+1).Str("quantity", qty.String()).
			Msg("einvoice.buildItem: quantity missing or not positive, using 1")
		qty = decimal.NewFromInt(1)
	}

	var subtotal, price decimal.Decimal
	switch {
	case l.subtotal != nil:
		subtotal = *l.subtotal
		if l.unitPrice != nil {
			price = *l.unitPrice
		} else {
			price = subtotal.Div(qty)
		}
	case l.unitPrice != nil:
		price = *l.unitPrice
		subtotal = qty.Mul(price)
	}

	var rate, tax decimal.Decimal
	switch {
	case l.taxRate != nil:
		rate = *l.taxRate
	case l.taxAmount != nil && !subtotal.IsZero():
		rate = l.taxAmount.Div(subtotal).Mul(hundred)
	case l.taxAmount != nil:
		rate = decimal.Zero
	default:
		rate = d.opts.DefaultTaxRate
		log.Info().Int("line", index+1).Str("rate", rate.String()).
			Msg("einvoice.buildItem: no tax rate on line, applying default rate")
	}
	if l.taxAmount != nil {
		tax = *l.taxAmount
	} else {
		tax = subtotal.Mul(rate).Div(hundred)
	}

	subtotal = round2(subtotal)
	tax = round2(tax)

	return Item{
		Name:          l.name,
		SKU:           synthesizeSKU(index, l.name, l.sku, l.altSKU),
		Quantity:      qty,
		UnitPrice:     round2(price),
		TaxPercentage: round2(rate),
		TaxAmount:     tax,
		Subtotal:      subtotal,
		Total:         subtotal.Add(tax),
	}
}

// synthesizeSKU keeps a document-provided code when there is one; otherwise it
// derives a stable code from the item name, and finally from the line number.
func synthesizeSKU(index int, name string, codes ...string) string {
	if code := firstNonEmpty(codes...); code != "" {
		return code
	}
	if name = strings.TrimSpace(name); name != "" {
		sum := sha256.Sum256([]byte(strings.ToLower(name)))
		return "GEN-" + strings.ToUpper(hex.EncodeToString(sum[:])[:10])
	}
	return fmt.Sprintf("GEN-LINE-%d", index+1)
}
