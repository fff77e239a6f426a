package einvoice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicebridge/internal/einvoice"
)

func TestParse_CanonicalNames(t *testing.T) {
	root, err := einvoice.Parse([]byte(`<cbc:Root xmlns:cbc="urn:x"><cbc:ID>7</cbc:ID><Other>  </Other><ext:ID>9</ext:ID></cbc:Root>`))
	require.NoError(t, err)

	assert.Equal(t, "root", root.Name)
	assert.Equal(t, "cbc", root.Prefix)
	assert.Equal(t, "7", root.Find("ID").Value())
	assert.Equal(t, "9", root.FindPrefixed("ext", "id").Value())
	assert.Equal(t, "", root.Find("other").Value())
	assert.Len(t, root.All("id"), 2)
	assert.Nil(t, root.Find("missing"))
}

func TestParse_Latin1Document(t *testing.T) {
	doc := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><a><city>Bogot`), 0xE1, '<', '/', 'c', 'i', 't', 'y', '>', '<', '/', 'a', '>')
	root, err := einvoice.Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, "Bogotá", root.Find("city").Value())
}

func TestParse_Malformed(t *testing.T) {
	cases := map[string]string{
		"mismatched": `<a><b></a></b>`,
		"unclosed":   `<a><b></b>`,
		"empty":      ``,
		"two roots":  `<a/><b/>`,
		"garbage":    `not markup at all`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := einvoice.Parse([]byte(doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, einvoice.ErrMalformedDocument)
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	depth := einvoice.MaxNodeDepth + 1
	doc := strings.Repeat("<n>", depth) + strings.Repeat("</n>", depth)
	_, err := einvoice.Parse([]byte(doc))
	assert.ErrorIs(t, err, einvoice.ErrMalformedDocument)

	ok := strings.Repeat("<n>", 10) + strings.Repeat("</n>", 10)
	_, err = einvoice.Parse([]byte(ok))
	assert.NoError(t, err)
}

func TestNode_DeepAndPath(t *testing.T) {
	root, err := einvoice.Parse([]byte(`<a><b><c><d>deep</d></c></b><d>shallow</d></a>`))
	require.NoError(t, err)

	assert.Equal(t, "shallow", root.Deep("d").Value())
	assert.Equal(t, "deep", root.Path("b", "c", "d").Value())
	assert.Nil(t, root.Path("b", "x", "d"))
	assert.Len(t, root.DeepAll("d"), 2)

	var nilNode *einvoice.Node
	assert.Equal(t, "", nilNode.Find("x").Value())
	assert.Empty(t, nilNode.All("x"))
}

func TestNode_FindPrefersCandidateOrder(t *testing.T) {
	root, err := einvoice.Parse([]byte(`<a><name>second</name><registrationname>first</registrationname></a>`))
	require.NoError(t, err)
	assert.Equal(t, "first", root.Find("registrationname", "name").Value())
	assert.Equal(t, "second", root.Find("name", "registrationname").Value())
	assert.Len(t, root.All("name", "registrationname"), 2)
}
