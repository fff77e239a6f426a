package einvoice

// envelopeAdapter unwraps a DIAN AttachedDocument: the real invoice travels as
// escaped markup in attachment/externalreference/description.
type envelopeAdapter struct {
	d *Detector
}

func (a *envelopeAdapter) name() string { return "envelope" }

func (a *envelopeAdapter) recognize(root *Node) bool {
	return root.Is("attacheddocument")
}

func (a *envelopeAdapter) extract(root *Node, depth int) (*Result, error) {
	if depth >= a.d.opts.MaxEnvelopeDepth {
		return nil, &EnvelopeUnwrapError{Depth: depth, Reason: "envelopes nested too deeply"}
	}

	inner := embeddedDocument(root)
	if inner == "" {
		return nil, &EnvelopeUnwrapError{Depth: depth, Reason: "no embedded document under attachment/externalreference/description"}
	}

	innerRoot, err := parseDecoded(inner)
	if err != nil {
		return nil, &EnvelopeUnwrapError{Depth: depth, Reason: "embedded document is not parsable", Err: err}
	}

	res, err := a.d.detect(innerRoot, depth+1)
	if err != nil {
		return nil, err
	}
	res.EnvelopeDepth++
	return res, nil
}

// embeddedDocument returns the first description text that looks like markup,
// looking at the direct attachment chain before any nested one.
func embeddedDocument(root *Node) string {
	for _, att := range root.All("attachment") {
		if s := descriptionMarkup(att); s != "" {
			return s
		}
	}
	for _, att := range root.DeepAll("attachment") {
		if s := descriptionMarkup(att); s != "" {
			return s
		}
	}
	return ""
}

func descriptionMarkup(attachment *Node) string {
	for _, ref := range attachment.All("externalreference") {
		for _, desc := range ref.All("description") {
			if looksLikeMarkup([]byte(desc.Text)) {
				return desc.Text
			}
		}
	}
	return ""
}
