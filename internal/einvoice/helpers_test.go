package einvoice_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"invoicebridge/internal/einvoice"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// envelope wraps inner markup in an AttachedDocument as escaped text.
func envelope(t *testing.T, inner []byte) []byte {
	t.Helper()
	var escaped bytes.Buffer
	require.NoError(t, xml.EscapeText(&escaped, inner))
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<AttachedDocument xmlns="urn:oasis:names:specification:ubl:schema:xsd:AttachedDocument-2"
    xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
    xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">
  <cbc:UBLVersionID>UBL 2.1</cbc:UBLVersionID>
  <cbc:ID>ENV-1</cbc:ID>
  <cac:SenderParty><cac:PartyTaxScheme><cbc:RegistrationName>Remitente</cbc:RegistrationName></cac:PartyTaxScheme></cac:SenderParty>
  <cac:Attachment>
    <cac:ExternalReference>
      <cbc:MimeCode>text/xml</cbc:MimeCode>
      <cbc:EncodingCode>UTF-8</cbc:EncodingCode>
      <cbc:Description>` + escaped.String() + `</cbc:Description>
    </cac:ExternalReference>
  </cac:Attachment>
</AttachedDocument>`)
}

type zipEntry struct {
	name string
	body []byte
}

func buildZip(t *testing.T, entries ...zipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func detect(t *testing.T, doc []byte) *einvoice.Result {
	t.Helper()
	res, err := einvoice.NewDetector(einvoice.DefaultOptions()).DetectDocument(doc)
	require.NoError(t, err)
	require.NotNil(t, res.Invoice)
	return res
}

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// latin1 encodes s as ISO-8859-1. Every rune in s must fit in one byte.
func latin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		out = append(out, byte(r))
	}
	return out
}
