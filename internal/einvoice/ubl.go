package einvoice

import "github.com/shopspring/decimal"

// ublAdapter reads UBL 2.1 invoices, credit notes and debit notes as issued
// under the DIAN technical annex.
type ublAdapter struct {
	d *Detector
}

var (
	ublRoots     = []string{"invoice", "creditnote", "debitnote"}
	ublLineNames = []string{"invoiceline", "creditnoteline", "debitnoteline"}
)

func (a *ublAdapter) name() string { return string(DialectUBL) }

func (a *ublAdapter) recognize(root *Node) bool {
	if !root.Is(ublRoots...) {
		return false
	}
	return root.Find("accountingsupplierparty", "legalmonetarytotal") != nil ||
		len(root.All(ublLineNames...)) > 0
}

func (a *ublAdapter) extract(root *Node, _ int) (*Result, error) {
	lines := root.All(ublLineNames...)
	raw := make([]rawLine, 0, len(lines))
	for _, line := range lines {
		raw = append(raw, ublLine(line))
	}
	return a.d.finish(DialectUBL, ublSupplier(root), ublHeader(root), raw, ublTotals(root)), nil
}

func ublSupplier(root *Node) Supplier {
	sp := root.Find("accountingsupplierparty")
	party := sp.Find("party")
	if party == nil {
		party = sp
	}
	scheme := party.Find("partytaxscheme")
	legal := party.Find("partylegalentity")

	address := party.Path("physicallocation", "address")
	if address == nil {
		address = scheme.Find("registrationaddress")
	}
	if address == nil {
		address = party.Find("postaladdress")
	}

	return Supplier{
		TaxID: optional(firstNonEmpty(
			scheme.Find("companyid").Value(),
			legal.Find("companyid").Value(),
			party.Path("partyidentification", "id").Value(),
		)),
		Name: optional(firstNonEmpty(
			scheme.Find("registrationname").Value(),
			legal.Find("registrationname").Value(),
			party.Path("partyname", "name").Value(),
		)),
		Email: optional(firstNonEmpty(
			party.Path("contact", "electronicmail").Value(),
			sp.Path("accountingcontact", "electronicmail").Value(),
		)),
		Phone: optional(party.Path("contact", "telephone").Value()),
		Address: optional(joinAddress(
			address.Path("addressline", "line").Value(),
			address.Find("cityname").Value(),
			address.Find("countrysubentity").Value(),
		)),
	}
}

func ublHeader(root *Node) Header {
	// The document number is cbc:ID; other ID children (extensions, UUID
	// schemes) use different prefixes or names.
	number := root.FindPrefixed("cbc", "id")
	if number == nil {
		number = root.Find("id")
	}
	return Header{
		Number:    optional(number.Value()),
		IssueDate: optional(root.Find("issuedate").Value()),
		DueDate: optional(firstNonEmpty(
			root.Find("duedate").Value(),
			root.Path("paymentmeans", "paymentduedate").Value(),
		)),
	}
}

func ublLine(line *Node) rawLine {
	item := line.Find("item")
	taxTotal := line.Find("taxtotal")

	rate := ublAmountOf(taxTotal.Path("taxsubtotal", "taxcategory", "percent"))
	if rate == nil {
		rate = ublAmountOf(taxTotal.Path("taxsubtotal", "percent"))
	}

	return rawLine{
		name:      firstNonEmpty(item.Find("description").Value(), item.Find("name").Value()),
		sku:       item.Path("sellersitemidentification", "id").Value(),
		altSKU:    item.Path("standarditemidentification", "id").Value(),
		quantity:  ublAmountOf(line.Find("invoicedquantity", "creditedquantity", "debitedquantity")),
		unitPrice: ublAmountOf(line.Path("price", "priceamount")),
		subtotal:  ublAmountOf(line.Find("lineextensionamount")),
		taxAmount: ublAmountOf(taxTotal.Find("taxamount")),
		taxRate:   rate,
	}
}

func ublTotals(root *Node) *HeaderTotals {
	monetary := root.Find("legalmonetarytotal")
	h := &HeaderTotals{
		Subtotal: ublAmountOf(monetary.Find("lineextensionamount", "taxexclusiveamount")),
		Total:    ublAmountOf(monetary.Find("payableamount", "taxinclusiveamount")),
	}

	var tax *decimal.Decimal
	for _, tt := range root.All("taxtotal") {
		amt := ublAmountOf(tt.Find("taxamount"))
		if amt == nil {
			continue
		}
		sum := *amt
		if tax != nil {
			sum = sum.Add(*tax)
		}
		tax = &sum
	}
	if tax == nil {
		exclusive := ublAmountOf(monetary.Find("taxexclusiveamount"))
		payable := ublAmountOf(monetary.Find("payableamount", "taxinclusiveamount"))
		if exclusive != nil && payable != nil {
			diff := payable.Sub(*exclusive)
			tax = &diff
		}
	}
	h.Tax = tax
	return h
}
