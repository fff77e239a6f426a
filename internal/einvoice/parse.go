package einvoice

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// MaxNodeDepth bounds element nesting so a hostile document cannot blow the
// stack of the recursive helpers.
const MaxNodeDepth = 256

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type openElement struct {
	node *Node
	name xml.Name
	text strings.Builder
}

// Parse builds a Node tree from XML markup. Declared encodings other than
// UTF-8 (ISO-8859-1 is common in DIAN documents) are transcoded. Text is
// trimmed; whitespace-only text becomes empty.
func Parse(data []byte) (*Node, error) {
	return parse(data, charset.NewReaderLabel)
}

// parseDecoded parses markup that was already decoded to UTF-8, such as the
// text of an envelope description. Its encoding declaration is ignored.
func parseDecoded(text string) (*Node, error) {
	return parse([]byte(text), keepEncoding)
}

func keepEncoding(_ string, r io.Reader) (io.Reader, error) { return r, nil }

func parse(data []byte, charsetReader func(label string, input io.Reader) (io.Reader, error)) (*Node, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &MalformedDocumentError{Err: errors.New("empty document")}
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	dec.Entity = xml.HTMLEntity

	var root *Node
	var stack []*openElement

	fail := func(err error) (*Node, error) {
		line, _ := dec.InputPos()
		return nil, &MalformedDocumentError{Line: line, Err: err}
	}

	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fail(err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 && root != nil {
				return fail(errors.New("multiple root elements"))
			}
			if len(stack) >= MaxNodeDepth {
				return fail(fmt.Errorf("element nesting deeper than %d", MaxNodeDepth))
			}
			n := &Node{
				Name:   strings.ToLower(t.Name.Local),
				Prefix: strings.ToLower(t.Name.Space),
				Attrs:  make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				n.Attrs[strings.ToLower(a.Name.Local)] = a.Value
			}
			if len(stack) == 0 {
				root = n
			} else {
				parent := stack[len(stack)-1].node
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, &openElement{node: n, name: t.Name})

		case xml.EndElement:
			if len(stack) == 0 {
				return fail(fmt.Errorf("unexpected closing tag </%s>", qualified(t.Name)))
			}
			top := stack[len(stack)-1]
			if top.name != t.Name {
				return fail(fmt.Errorf("element <%s> closed by </%s>", qualified(top.name), qualified(t.Name)))
			}
			top.node.Text = strings.TrimSpace(top.text.String())
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			} else if len(bytes.TrimSpace(t)) > 0 {
				return fail(errors.New("text outside the root element"))
			}
		}
	}

	if root == nil {
		return fail(errors.New("no root element"))
	}
	if len(stack) > 0 {
		return fail(fmt.Errorf("element <%s> is never closed", qualified(stack[len(stack)-1].name)))
	}
	return root, nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// looksLikeMarkup reports whether the payload starts, after a BOM and
// whitespace, with an angle bracket.
func looksLikeMarkup(data []byte) bool {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimLeft(data, " \t\r\n")
	return len(data) > 1 && data[0] == '<'
}
