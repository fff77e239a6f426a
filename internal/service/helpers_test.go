package service_test

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"invoicebridge/internal/config"
	"invoicebridge/internal/port"
	"invoicebridge/internal/repository/memory"
	"invoicebridge/internal/service"
)

type line struct {
	sku   string
	name  string
	price string
}

var defaultLines = []line{
	{"CUA-001", "Cuaderno argollado", "1000"},
	{"LAP-002", "Lapicero negro", "1000"},
	{"RES-003", "Resma carta", "1000"},
}

type party struct {
	taxID string
	name  string
}

var andina = party{taxID: "900123456", name: "Distribuidora Andina S.A.S."}

// invoiceXML renders a UBL invoice with one unit per line at 19% tax and
// document totals that agree with the lines.
func invoiceXML(number string, supplier party, lines ...line) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
         xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
         xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
`)
	if number != "" {
		fmt.Fprintf(&b, "  <cbc:ID>%s</cbc:ID>\n", number)
	}
	b.WriteString("  <cbc:IssueDate>2024-03-15</cbc:IssueDate>\n")
	fmt.Fprintf(&b, `  <cac:AccountingSupplierParty>
    <cac:Party>
      <cac:PartyTaxScheme>
        <cbc:RegistrationName>%s</cbc:RegistrationName>
        <cbc:CompanyID>%s</cbc:CompanyID>
      </cac:PartyTaxScheme>
    </cac:Party>
  </cac:AccountingSupplierParty>
`, supplier.name, supplier.taxID)

	rate := decimal.NewFromInt(19)
	subtotal, tax := decimal.Zero, decimal.Zero
	var body strings.Builder
	for _, l := range lines {
		price := decimal.RequireFromString(l.price)
		lineTax := price.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
		subtotal = subtotal.Add(price)
		tax = tax.Add(lineTax)
		fmt.Fprintf(&body, `  <cac:InvoiceLine>
    <cbc:InvoicedQuantity>1</cbc:InvoicedQuantity>
    <cbc:LineExtensionAmount>%s</cbc:LineExtensionAmount>
    <cac:TaxTotal>
      <cbc:TaxAmount>%s</cbc:TaxAmount>
      <cac:TaxSubtotal><cac:TaxCategory><cbc:Percent>19</cbc:Percent></cac:TaxCategory></cac:TaxSubtotal>
    </cac:TaxTotal>
    <cac:Item>
      <cbc:Description>%s</cbc:Description>
      <cac:SellersItemIdentification><cbc:ID>%s</cbc:ID></cac:SellersItemIdentification>
    </cac:Item>
    <cac:Price><cbc:PriceAmount>%s</cbc:PriceAmount></cac:Price>
  </cac:InvoiceLine>
`, price.StringFixed(2), lineTax.StringFixed(2), l.name, l.sku, price.StringFixed(2))
	}

	fmt.Fprintf(&b, `  <cac:TaxTotal><cbc:TaxAmount>%s</cbc:TaxAmount></cac:TaxTotal>
  <cac:LegalMonetaryTotal>
    <cbc:LineExtensionAmount>%s</cbc:LineExtensionAmount>
    <cbc:TaxExclusiveAmount>%s</cbc:TaxExclusiveAmount>
    <cbc:PayableAmount>%s</cbc:PayableAmount>
  </cac:LegalMonetaryTotal>
`, tax.StringFixed(2), subtotal.StringFixed(2), subtotal.StringFixed(2), subtotal.Add(tax).StringFixed(2))
	b.WriteString(body.String())
	b.WriteString("</Invoice>\n")
	return []byte(b.String())
}

// bundle zips an invoice together with a PDF rendering.
func bundle(t *testing.T, doc []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string][]byte{
		"factura.xml": doc,
		"factura.pdf": []byte("%PDF-1.4 rendering"),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func testImportConfig() config.ImportConfig {
	return config.ImportConfig{
		DefaultProfitMargin: 30,
		DefaultTaxRate:      19,
		MaxUploadMB:         25,
		MaxEntryMB:          20,
		MaxTotalMB:          50,
		MaxEnvelopeDepth:    3,
	}
}

func newMemoryService(store *memory.Store) service.ImportService {
	return service.NewImportService(store, store.Reader(), nil, nil, testImportConfig(), config.S3Config{})
}

func newServiceWith(store *memory.Store, storage port.ObjectStorage, email port.EmailSender) service.ImportService {
	cfg := testImportConfig()
	cfg.ArchiveUploads = true
	cfg.NotifyOnImport = true
	s3Cfg := config.S3Config{Bucket: "invoices", PresignExpiry: 900}
	return service.NewImportService(store, store.Reader(), storage, email, cfg, s3Cfg)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
