package einvoice

// ublVocabulary holds the UBL leaf names the heuristic adapter can reach
// without knowing the UBL nesting.
var ublVocabulary = vocabulary{
	parties:      []string{"accountingsupplierparty"},
	taxID:        []string{"companyid"},
	name:         []string{"registrationname"},
	email:        []string{"electronicmail"},
	phone:        []string{"telephone"},
	addressLine:  []string{"line"},
	city:         []string{"cityname"},
	region:       []string{"countrysubentity"},
	number:       []string{"id"},
	issueDate:    []string{"issuedate"},
	dueDate:      []string{"duedate", "paymentduedate"},
	lines:        ublLineNames,
	itemName:     []string{"description"},
	quantity:     []string{"invoicedquantity", "creditedquantity", "debitedquantity"},
	unitPrice:    []string{"priceamount"},
	lineSubtotal: []string{"lineextensionamount"},
	taxAmount:    []string{"taxamount"},
	taxRate:      []string{"percent"},
	totalsGroups: []string{"legalmonetarytotal"},
	subtotal:     []string{"lineextensionamount", "taxexclusiveamount"},
	grandTotal:   []string{"payableamount", "taxinclusiveamount"},
}

// heuristicVocabulary merges every known vocabulary. UBL names come first for
// the structured fields; the generic "id" style catch-alls come last.
var heuristicVocabulary = mergeVocabularies(ublVocabulary, genericVocabulary)

// mergeVocabularies puts first's names ahead of second's, except for the
// invoice number where the bare "id" must come last.
func mergeVocabularies(first, second vocabulary) vocabulary {
	m := func(a, b []string) []string {
		out := make([]string, 0, len(a)+len(b))
		seen := make(map[string]bool, len(a)+len(b))
		for _, s := range append(append([]string{}, a...), b...) {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		return out
	}
	return vocabulary{
		roots:        m(first.roots, second.roots),
		parties:      m(first.parties, second.parties),
		taxID:        m(first.taxID, second.taxID),
		name:         m(first.name, second.name),
		email:        m(first.email, second.email),
		phone:        m(first.phone, second.phone),
		addressLine:  m(first.addressLine, second.addressLine),
		city:         m(first.city, second.city),
		region:       m(first.region, second.region),
		headers:      m(first.headers, second.headers),
		number:       m(second.number, first.number),
		numberPrefix: m(first.numberPrefix, second.numberPrefix),
		issueDate:    m(first.issueDate, second.issueDate),
		dueDate:      m(first.dueDate, second.dueDate),
		lineGroups:   m(first.lineGroups, second.lineGroups),
		lines:        m(first.lines, second.lines),
		itemName:     m(first.itemName, second.itemName),
		itemCode:     m(first.itemCode, second.itemCode),
		quantity:     m(first.quantity, second.quantity),
		unitPrice:    m(first.unitPrice, second.unitPrice),
		lineSubtotal: m(first.lineSubtotal, second.lineSubtotal),
		taxAmount:    m(first.taxAmount, second.taxAmount),
		taxRate:      m(first.taxRate, second.taxRate),
		totalsGroups: m(first.totalsGroups, second.totalsGroups),
		subtotal:     m(first.subtotal, second.subtotal),
		taxTotal:     m(first.taxTotal, second.taxTotal),
		grandTotal:   m(first.grandTotal, second.grandTotal),
	}
}

// heuristicAdapter is the last resort: it searches the merged vocabulary at
// every depth and always produces an invoice, however sparse. The validator
// decides whether the result is usable.
type heuristicAdapter struct {
	d *Detector
}

func (a *heuristicAdapter) name() string { return string(DialectHeuristic) }

func (a *heuristicAdapter) recognize(*Node) bool { return true }

func (a *heuristicAdapter) extract(root *Node, _ int) (*Result, error) {
	v := heuristicVocabulary
	deep := (*Node).Deep

	party := root.Deep(v.parties...)
	if party == nil {
		party = root
	}

	// Line names are tried one at a time so "item" inside a UBL invoice line
	// is not taken as a line of its own.
	var lines []*Node
	for _, name := range v.lines {
		if lines = root.DeepAll(name); len(lines) > 0 {
			break
		}
	}
	raw := make([]rawLine, 0, len(lines))
	for _, l := range lines {
		raw = append(raw, vocabularyLine(l, v, deep))
	}

	var totals *HeaderTotals
	if tg := root.Deep(v.totalsGroups...); tg != nil {
		totals = vocabularyTotals(tg, v, deep)
	}

	return a.d.finish(DialectHeuristic, vocabularySupplier(party, v, deep), heuristicHeader(root, v), raw, totals), nil
}

// heuristicHeader searches for the explicit number names anywhere. A bare "id"
// is only accepted directly under the root or under a UBL container found at
// any depth, where cbc:ID is the invoice number.
func heuristicHeader(root *Node, v vocabulary) Header {
	h := vocabularyHeader(root, genericOnlyNumber(v), (*Node).Deep)
	if h.Number != nil {
		return h
	}
	if n := optional(root.Find("id").Value()); n != nil {
		h.Number = n
		return h
	}
	if c := ublContainer(root); c != nil {
		id := c.FindPrefixed("cbc", "id")
		if id == nil {
			id = c.Find("id")
		}
		h.Number = optional(id.Value())
	}
	return h
}

// ublContainer returns the element holding the supplier party, the monetary
// totals or the first invoice line, whichever is found first.
func ublContainer(root *Node) *Node {
	anchors := append([]string{}, ublVocabulary.parties...)
	anchors = append(anchors, ublVocabulary.totalsGroups...)
	anchors = append(anchors, ublLineNames...)
	for _, name := range anchors {
		if target := root.Deep(name); target != nil {
			return root.parentOf(target)
		}
	}
	return nil
}

func genericOnlyNumber(v vocabulary) vocabulary {
	kept := make([]string, 0, len(v.number))
	for _, n := range v.number {
		if n != "id" {
			kept = append(kept, n)
		}
	}
	v.number = kept
	return v
}
