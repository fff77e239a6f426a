package einvoice

import "strings"

// vocabulary lists candidate element names per logical field, most specific
// first.
type vocabulary struct {
	roots        []string
	parties      []string
	taxID        []string
	name         []string
	email        []string
	phone        []string
	addressLine  []string
	city         []string
	region       []string
	headers      []string
	number       []string
	numberPrefix []string
	issueDate    []string
	dueDate      []string
	lineGroups   []string
	lines        []string
	itemName     []string
	itemCode     []string
	quantity     []string
	unitPrice    []string
	lineSubtotal []string
	taxAmount    []string
	taxRate      []string
	totalsGroups []string
	subtotal     []string
	taxTotal     []string
	grandTotal   []string
}

// genericVocabulary covers flat, non-namespaced exports from billing software,
// Spanish first and English second.
var genericVocabulary = vocabulary{
	roots:        []string{"factura", "facturaelectronica", "invoice", "documento", "document", "comprobante"},
	parties:      []string{"emisor", "proveedor", "vendedor", "supplier", "seller", "vendor"},
	taxID:        []string{"nit", "rut", "taxid", "tax_id", "numerodocumento", "identificacion"},
	name:         []string{"razonsocial", "nombre", "name", "businessname"},
	email:        []string{"correo", "correoelectronico", "email"},
	phone:        []string{"telefono", "celular", "phone"},
	addressLine:  []string{"direccion", "address"},
	city:         []string{"ciudad", "municipio", "city"},
	region:       []string{"departamento", "region", "state"},
	headers:      []string{"encabezado", "cabecera", "header"},
	number:       []string{"numerofactura", "numero", "invoicenumber", "number", "consecutivo"},
	numberPrefix: []string{"prefijo", "prefix"},
	issueDate:    []string{"fechaemision", "fecha", "issuedate", "date"},
	dueDate:      []string{"fechavencimiento", "vencimiento", "duedate"},
	lineGroups:   []string{"items", "detalles", "lineas", "conceptos", "lines"},
	lines:        []string{"item", "detalle", "linea", "concepto", "line"},
	itemName:     []string{"descripcion", "nombre", "producto", "description", "name"},
	itemCode:     []string{"codigo", "sku", "referencia", "code"},
	quantity:     []string{"cantidad", "quantity", "qty"},
	unitPrice:    []string{"preciounitario", "valorunitario", "precio", "unitprice", "price"},
	lineSubtotal: []string{"subtotal", "valorsubtotal", "baseimponible", "linetotal"},
	taxAmount:    []string{"valoriva", "impuesto", "iva", "taxamount", "tax"},
	taxRate:      []string{"porcentajeiva", "tarifaiva", "porcentajeimpuesto", "taxrate", "taxpercentage"},
	totalsGroups: []string{"totales", "resumen", "totals"},
	subtotal:     []string{"subtotal", "totalbruto", "base"},
	taxTotal:     []string{"totaliva", "iva", "impuestos", "taxtotal", "tax"},
	grandTotal:   []string{"totalapagar", "totalfactura", "total", "grandtotal", "payable"},
}

// genericAdapter reads flat documents whose fields sit directly under a few
// well-known containers.
type genericAdapter struct {
	d *Detector
}

func (a *genericAdapter) name() string { return string(DialectGeneric) }

func (a *genericAdapter) recognize(root *Node) bool {
	return root.Is(genericVocabulary.roots...) && root.Find(genericVocabulary.parties...) != nil
}

func (a *genericAdapter) extract(root *Node, _ int) (*Result, error) {
	v := genericVocabulary
	find := (*Node).Find

	party := root.Find(v.parties...)
	header := root.Find(v.headers...)
	if header == nil {
		header = root
	}

	group := root.Find(v.lineGroups...)
	var lines []*Node
	if group != nil {
		lines = group.All(v.lines...)
	} else {
		lines = root.All(v.lines...)
	}
	raw := make([]rawLine, 0, len(lines))
	for _, l := range lines {
		raw = append(raw, vocabularyLine(l, v, find))
	}

	var totals *HeaderTotals
	if tg := root.Find(v.totalsGroups...); tg != nil {
		totals = vocabularyTotals(tg, v, find)
	}

	return a.d.finish(DialectGeneric, vocabularySupplier(party, v, find), vocabularyHeader(header, v, find), raw, totals), nil
}

// lookup is Node.Find for flat dialects and Node.Deep for the heuristic one.
type lookup func(n *Node, candidates ...string) *Node

func vocabularySupplier(party *Node, v vocabulary, get lookup) Supplier {
	return Supplier{
		TaxID: optional(get(party, v.taxID...).Value()),
		Name:  optional(get(party, v.name...).Value()),
		Email: optional(get(party, v.email...).Value()),
		Phone: optional(get(party, v.phone...).Value()),
		Address: optional(joinAddress(
			get(party, v.addressLine...).Value(),
			get(party, v.city...).Value(),
			get(party, v.region...).Value(),
		)),
	}
}

func vocabularyHeader(scope *Node, v vocabulary, get lookup) Header {
	number := get(scope, v.number...).Value()
	if prefix := get(scope, v.numberPrefix...).Value(); prefix != "" && number != "" && !strings.HasPrefix(number, prefix) {
		number = prefix + number
	}
	return Header{
		Number:    optional(number),
		IssueDate: optional(get(scope, v.issueDate...).Value()),
		DueDate:   optional(get(scope, v.dueDate...).Value()),
	}
}

func vocabularyLine(line *Node, v vocabulary, get lookup) rawLine {
	return rawLine{
		name:      get(line, v.itemName...).Value(),
		sku:       get(line, v.itemCode...).Value(),
		quantity:  amountOf(get(line, v.quantity...)),
		unitPrice: amountOf(get(line, v.unitPrice...)),
		subtotal:  amountOf(get(line, v.lineSubtotal...)),
		taxAmount: amountOf(get(line, v.taxAmount...)),
		taxRate:   amountOf(get(line, v.taxRate...)),
	}
}

func vocabularyTotals(scope *Node, v vocabulary, get lookup) *HeaderTotals {
	return &HeaderTotals{
		Subtotal: amountOf(get(scope, v.subtotal...)),
		Tax:      amountOf(get(scope, v.taxTotal...)),
		Total:    amountOf(get(scope, v.grandTotal...)),
	}
}
