package einvoice_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicebridge/internal/einvoice"
)

func TestDetect_UBLInvoice(t *testing.T) {
	res := detect(t, readFixture(t, "ubl_invoice.xml"))
	inv := res.Invoice

	assert.Equal(t, einvoice.DialectUBL, res.Dialect)
	assert.Equal(t, 0, res.EnvelopeDepth)
	assert.Equal(t, "FE-1001", inv.Number())
	assert.Equal(t, "Distribuidora Andina S.A.S.", inv.SupplierName())
	require.NotNil(t, inv.Supplier.TaxID)
	assert.Equal(t, "900123456", *inv.Supplier.TaxID)
	require.NotNil(t, inv.Supplier.Address)
	assert.Equal(t, "Calle 10 # 20-30, Bogotá, Cundinamarca", *inv.Supplier.Address)
	require.NotNil(t, inv.Invoice.IssueDate)
	assert.Equal(t, "2024-03-15", *inv.Invoice.IssueDate)

	require.Len(t, inv.Items, 3)
	assert.Equal(t, []string{"CUA-001", "LAP-002", "RES-003"},
		[]string{inv.Items[0].SKU, inv.Items[1].SKU, inv.Items[2].SKU})
	for _, it := range inv.Items {
		assert.True(t, it.Subtotal.Equal(decimal.NewFromInt(1000)))
		assert.True(t, it.TaxAmount.Equal(decimal.NewFromInt(190)))
		assert.True(t, it.TaxPercentage.Equal(decimal.NewFromInt(19)))
		assert.True(t, it.Total.Equal(decimal.NewFromInt(1190)))
	}

	assert.True(t, inv.Totals.Subtotal.Equal(decimal.NewFromInt(3000)))
	assert.True(t, inv.Totals.Tax.Equal(decimal.NewFromInt(570)))
	assert.True(t, inv.Totals.Total.Equal(decimal.NewFromInt(3570)))
	assert.Equal(t, einvoice.TotalsFromDocument, inv.Totals.Source)
	assert.Empty(t, inv.Totals.Discrepancies)
}

func TestDetect_DialectsAgree(t *testing.T) {
	ubl := detect(t, readFixture(t, "ubl_invoice.xml"))
	generic := detect(t, readFixture(t, "generic_invoice.xml"))

	assert.Equal(t, einvoice.DialectGeneric, generic.Dialect)
	assert.JSONEq(t, toJSON(t, ubl.Invoice), toJSON(t, generic.Invoice))
}

func TestDetect_EnvelopeMatchesInnerDocument(t *testing.T) {
	inner := readFixture(t, "ubl_invoice.xml")
	direct := detect(t, inner)
	wrapped := detect(t, envelope(t, inner))

	assert.Equal(t, einvoice.DialectUBL, wrapped.Dialect)
	assert.Equal(t, 1, wrapped.EnvelopeDepth)
	assert.JSONEq(t, toJSON(t, direct.Invoice), toJSON(t, wrapped.Invoice))
}

func TestDetect_EnvelopeWithCDATA(t *testing.T) {
	inner := string(readFixture(t, "generic_invoice.xml"))
	doc := `<AttachedDocument><Attachment><ExternalReference><Description><![CDATA[` + inner + `]]></Description></ExternalReference></Attachment></AttachedDocument>`

	res := detect(t, []byte(doc))
	assert.Equal(t, einvoice.DialectGeneric, res.Dialect)
	assert.Equal(t, "FE-1001", res.Invoice.Number())
}

func TestDetect_NestedEnvelopes(t *testing.T) {
	inner := readFixture(t, "ubl_invoice.xml")

	twice := envelope(t, envelope(t, inner))
	res := detect(t, twice)
	assert.Equal(t, 2, res.EnvelopeDepth)

	doc := inner
	for i := 0; i < einvoice.DefaultLimits().MaxEnvelopeDepth+1; i++ {
		doc = envelope(t, doc)
	}
	_, err := einvoice.NewDetector(einvoice.DefaultOptions()).DetectDocument(doc)
	assert.ErrorIs(t, err, einvoice.ErrEnvelopeUnwrap)
}

func TestDetect_EnvelopeFailures(t *testing.T) {
	d := einvoice.NewDetector(einvoice.DefaultOptions())

	_, err := d.DetectDocument([]byte(`<AttachedDocument><cbc:ID xmlns:cbc="x">1</cbc:ID></AttachedDocument>`))
	assert.ErrorIs(t, err, einvoice.ErrEnvelopeUnwrap)

	_, err = d.DetectDocument([]byte(`<AttachedDocument><Attachment><ExternalReference><Description>&lt;Invoice&gt;&lt;cbc:ID&gt;1&lt;/Invoice&gt;</Description></ExternalReference></Attachment></AttachedDocument>`))
	assert.ErrorIs(t, err, einvoice.ErrEnvelopeUnwrap)
	assert.ErrorIs(t, err, einvoice.ErrMalformedDocument)
}

func TestDetect_HeuristicFallback(t *testing.T) {
	doc := `<ExportacionContable>
  <Datos>
    <Proveedor><Nombre>Papeleria Central</Nombre><NIT>800555111</NIT></Proveedor>
    <Documento><Numero>PC-77</Numero></Documento>
    <Movimientos>
      <Linea><Descripcion>Marcador</Descripcion><Cantidad>2</Cantidad><Precio>500</Precio><IVA>190</IVA></Linea>
    </Movimientos>
  </Datos>
</ExportacionContable>`

	res := detect(t, []byte(doc))
	inv := res.Invoice
	assert.Equal(t, einvoice.DialectHeuristic, res.Dialect)
	assert.Equal(t, "Papeleria Central", inv.SupplierName())
	assert.Equal(t, "PC-77", inv.Number())
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, inv.Items[0].TaxPercentage.Equal(decimal.NewFromInt(19)))
	assert.True(t, inv.Items[0].Total.Equal(decimal.NewFromInt(1190)))
	assert.Equal(t, einvoice.TotalsFromItems, inv.Totals.Source)
}

func TestDetect_HeuristicNeverFails(t *testing.T) {
	res := detect(t, []byte(`<foo><bar>1</bar></foo>`))
	assert.Equal(t, einvoice.DialectHeuristic, res.Dialect)
	assert.Nil(t, res.Invoice.Supplier.Name)
	assert.Nil(t, res.Invoice.Invoice.Number)
	assert.NotNil(t, res.Invoice.Items)
	assert.Empty(t, res.Invoice.Items)

	js := toJSON(t, res.Invoice)
	assert.True(t, strings.Contains(js, `"name":null`))
	assert.True(t, strings.Contains(js, `"items":[]`))
}

func TestDetect_CreditNote(t *testing.T) {
	doc := strings.NewReplacer(
		"<Invoice ", "<CreditNote ",
		"</Invoice>", "</CreditNote>",
		"InvoiceLine>", "CreditNoteLine>",
		"InvoicedQuantity", "CreditedQuantity",
	).Replace(string(readFixture(t, "ubl_invoice.xml")))

	res := detect(t, []byte(doc))
	assert.Equal(t, einvoice.DialectUBL, res.Dialect)
	assert.Len(t, res.Invoice.Items, 3)
	assert.True(t, res.Invoice.Totals.Total.Equal(decimal.NewFromInt(3570)))
}

func TestDetect_LineDefaults(t *testing.T) {
	doc := `<Factura>
  <Emisor><RazonSocial>Acme</RazonSocial></Emisor>
  <NumeroFactura>X-1</NumeroFactura>
  <Items>
    <Item><Descripcion>Sin cantidad</Descripcion><Subtotal>500</Subtotal></Item>
    <Item><Cantidad>0</Cantidad><PrecioUnitario>100</PrecioUnitario><ValorIVA>0</ValorIVA></Item>
  </Items>
</Factura>`

	opts := einvoice.DefaultOptions()
	opts.DefaultTaxRate = decimal.NewFromInt(5)
	res, err := einvoice.NewDetector(opts).DetectDocument([]byte(doc))
	require.NoError(t, err)
	items := res.Invoice.Items
	require.Len(t, items, 2)

	// Quantity defaults to 1, price is back-computed, configured default rate applies.
	assert.True(t, items[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, items[0].UnitPrice.Equal(decimal.NewFromInt(500)))
	assert.True(t, items[0].TaxPercentage.Equal(decimal.NewFromInt(5)))
	assert.True(t, items[0].TaxAmount.Equal(decimal.NewFromInt(25)))
	assert.True(t, strings.HasPrefix(items[0].SKU, "GEN-"))
	assert.Len(t, items[0].SKU, len("GEN-")+10)

	// An explicit zero tax amount means exempt, not "use the default".
	assert.True(t, items[1].TaxPercentage.IsZero())
	assert.True(t, items[1].Total.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "GEN-LINE-2", items[1].SKU)
}

func TestDetect_SyntheticSKUIsStable(t *testing.T) {
	doc := `<Factura><Emisor><Nombre>A</Nombre></Emisor><Items><Item><Descripcion>Tornillo 3/8</Descripcion><Cantidad>1</Cantidad><Precio>10</Precio></Item></Items></Factura>`
	upper := strings.Replace(doc, "Tornillo 3/8", "TORNILLO 3/8", 1)

	a := detect(t, []byte(doc)).Invoice.Items[0].SKU
	b := detect(t, []byte(upper)).Invoice.Items[0].SKU
	assert.Equal(t, a, b)
}

func TestDetect_ConcurrentUse(t *testing.T) {
	d := einvoice.NewDetector(einvoice.DefaultOptions())
	doc := readFixture(t, "ubl_invoice.xml")

	done := make(chan string, 8)
	for i := 0; i < 8; i++ {
		go func() {
			res, err := d.DetectDocument(doc)
			if err != nil {
				done <- err.Error()
				return
			}
			done <- res.Invoice.Number()
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, "FE-1001", <-done)
	}
}

func TestDetect_EnvelopeWithLatin1Document(t *testing.T) {
	inner := `<?xml version="1.0" encoding="ISO-8859-1"?>
<Factura>
  <NumeroFactura>PB-12</NumeroFactura>
  <Emisor><NIT>901222333</NIT><RazonSocial>Panadería Bogotá</RazonSocial></Emisor>
  <Items><Item><Descripcion>Pan de queso añejo</Descripcion><Cantidad>2</Cantidad><PrecioUnitario>1500</PrecioUnitario></Item></Items>
</Factura>`

	direct := detect(t, latin1(inner))
	wrapped := detect(t, envelope(t, []byte(inner)))

	assert.Equal(t, "Panadería Bogotá", direct.Invoice.SupplierName())
	assert.Equal(t, "Panadería Bogotá", wrapped.Invoice.SupplierName())
	assert.Equal(t, "Pan de queso añejo", wrapped.Invoice.Items[0].Name)
	assert.JSONEq(t, toJSON(t, direct.Invoice), toJSON(t, wrapped.Invoice))
}

func TestDetect_HeuristicNestedUBLNumber(t *testing.T) {
	doc := `<Lote xmlns:cac="urn:cac" xmlns:cbc="urn:cbc">
  <Invoice>
    <cbc:ID>FE-9</cbc:ID>
    <cbc:IssueDate>2024-05-02</cbc:IssueDate>
    <cac:AccountingSupplierParty><cac:Party><cac:PartyTaxScheme>
      <cbc:RegistrationName>Acme</cbc:RegistrationName><cbc:CompanyID>800111222</cbc:CompanyID>
    </cac:PartyTaxScheme></cac:Party></cac:AccountingSupplierParty>
    <cac:InvoiceLine>
      <cbc:ID>1</cbc:ID>
      <cbc:InvoicedQuantity>1.000</cbc:InvoicedQuantity>
      <cbc:LineExtensionAmount>200.00</cbc:LineExtensionAmount>
      <cac:Item><cbc:Description>Tuerca</cbc:Description></cac:Item>
      <cac:Price><cbc:PriceAmount>200.00</cbc:PriceAmount></cac:Price>
    </cac:InvoiceLine>
  </Invoice>
</Lote>`

	res := detect(t, []byte(doc))
	inv := res.Invoice
	assert.Equal(t, einvoice.DialectHeuristic, res.Dialect)
	assert.Equal(t, "FE-9", inv.Number())
	assert.Equal(t, "Acme", inv.SupplierName())
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, inv.Items[0].Subtotal.Equal(decimal.NewFromInt(200)))
}

func TestDetect_GenericDotThousands(t *testing.T) {
	doc := `<Factura>
  <NumeroFactura>G-3</NumeroFactura>
  <Emisor><RazonSocial>Acme</RazonSocial></Emisor>
  <Items><Item><Descripcion>Silla</Descripcion><Cantidad>2</Cantidad><PrecioUnitario>1.000</PrecioUnitario><PorcentajeIVA>19</PorcentajeIVA></Item></Items>
</Factura>`

	item := detect(t, []byte(doc)).Invoice.Items[0]
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(1000)), "got %s", item.UnitPrice)
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(2000)))
}

func TestDetect_SingleLineTotalsFromItems(t *testing.T) {
	doc := `<Factura>
  <NumeroFactura>S-1</NumeroFactura>
  <Emisor><RazonSocial>Acme</RazonSocial></Emisor>
  <Items><Item><Descripcion>Caja</Descripcion><Cantidad>3</Cantidad><PrecioUnitario>1000</PrecioUnitario><PorcentajeIVA>19</PorcentajeIVA></Item></Items>
</Factura>`

	inv := detect(t, []byte(doc)).Invoice
	require.Len(t, inv.Items, 1)
	item := inv.Items[0]
	assert.True(t, item.Subtotal.Equal(decimal.NewFromInt(3000)))
	assert.True(t, item.TaxAmount.Equal(decimal.NewFromInt(570)))
	assert.True(t, item.Total.Equal(decimal.NewFromInt(3570)))

	assert.Equal(t, einvoice.TotalsFromItems, inv.Totals.Source)
	assert.True(t, inv.Totals.Subtotal.Equal(decimal.NewFromInt(3000)))
	assert.True(t, inv.Totals.Tax.Equal(decimal.NewFromInt(570)))
	assert.True(t, inv.Totals.Total.Equal(decimal.NewFromInt(3570)))
}
