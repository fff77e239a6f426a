package einvoice

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	zipMagic = []byte("PK\x03\x04")
	pdfMagic = []byte("%PDF")
)

const sniffBytes = 512

// Limits bounds the work done on one upload.
type Limits struct {
	MaxEntryBytes    int64
	MaxTotalBytes    int64
	MaxEnvelopeDepth int
}

// DefaultLimits returns the limits used when configuration leaves them unset.
func DefaultLimits() Limits {
	return Limits{
		MaxEntryBytes:    20 << 20,
		MaxTotalBytes:    50 << 20,
		MaxEnvelopeDepth: 3,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxEntryBytes <= 0 {
		l.MaxEntryBytes = d.MaxEntryBytes
	}
	if l.MaxTotalBytes <= 0 {
		l.MaxTotalBytes = d.MaxTotalBytes
	}
	if l.MaxEnvelopeDepth <= 0 {
		l.MaxEnvelopeDepth = d.MaxEnvelopeDepth
	}
	return l
}

// RawBundle holds the payloads pulled out of an upload.
type RawBundle struct {
	Document      []byte
	DocumentName  string
	Rendering     []byte
	RenderingName string
	// Ignored lists structured entries found after the first one.
	Ignored []string
}

// HasRendering reports whether a human-readable rendering was found.
func (b *RawBundle) HasRendering() bool {
	return b != nil && len(b.Rendering) > 0
}

// ExtractBundle locates the structured document and the optional rendering in
// a zip upload. A bare XML upload is accepted as the document itself.
func ExtractBundle(data []byte, limits Limits) (*RawBundle, error) {
	limits = limits.withDefaults()

	if len(data) == 0 {
		return nil, &ExtractionError{Reason: "empty upload"}
	}
	if looksLikeMarkup(data) {
		if int64(len(data)) > limits.MaxEntryBytes {
			return nil, &ExtractionError{Reason: fmt.Sprintf("document exceeds %d bytes", limits.MaxEntryBytes)}
		}
		return &RawBundle{Document: data, DocumentName: "document.xml"}, nil
	}
	if !bytes.HasPrefix(data, zipMagic) {
		return nil, &ExtractionError{Reason: "upload is neither a zip archive nor an XML document"}
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ExtractionError{Reason: "corrupt zip archive", Err: err}
	}

	bundle := &RawBundle{}
	var total int64
	for _, f := range zr.File {
		if skipEntry(f) {
			continue
		}

		ext := strings.ToLower(path.Ext(f.Name))
		switch {
		case ext == ".xml":
			if bundle.Document != nil {
				bundle.Ignored = append(bundle.Ignored, f.Name)
				continue
			}
			body, err := readEntry(f, limits, &total)
			if err != nil {
				return nil, err
			}
			bundle.Document, bundle.DocumentName = body, f.Name

		case ext == ".pdf":
			if bundle.Rendering != nil {
				continue
			}
			body, err := readEntry(f, limits, &total)
			if err != nil {
				return nil, err
			}
			bundle.Rendering, bundle.RenderingName = body, f.Name

		default:
			head, err := sniffEntry(f)
			if err != nil {
				return nil, err
			}
			isDoc := looksLikeMarkup(head)
			isPDF := bytes.HasPrefix(head, pdfMagic)
			if (isDoc && bundle.Document != nil) || (isPDF && bundle.Rendering != nil) {
				if isDoc {
					bundle.Ignored = append(bundle.Ignored, f.Name)
				}
				continue
			}
			if !isDoc && !isPDF {
				continue
			}
			body, err := readEntry(f, limits, &total)
			if err != nil {
				return nil, err
			}
			if isDoc {
				bundle.Document, bundle.DocumentName = body, f.Name
			} else {
				bundle.Rendering, bundle.RenderingName = body, f.Name
			}
		}
	}

	if bundle.Document == nil {
		return nil, &ExtractionError{Reason: "archive contains no structured document"}
	}
	return bundle, nil
}

func skipEntry(f *zip.File) bool {
	if f.FileInfo().IsDir() {
		return true
	}
	name := f.Name
	if strings.HasPrefix(name, "__MACOSX/") || strings.HasPrefix(path.Base(name), "._") {
		return true
	}
	return false
}

func sniffEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, &ExtractionError{Reason: "open entry " + f.Name, Err: err}
	}
	defer rc.Close()

	head, err := io.ReadAll(io.LimitReader(rc, sniffBytes))
	if err != nil {
		return nil, &ExtractionError{Reason: "read entry " + f.Name, Err: err}
	}
	return head, nil
}

// readEntry reads one entry under both the per-entry and the running total
// limit. The declared size is checked first; the limited reader catches
// archives that lie about it.
func readEntry(f *zip.File, limits Limits, total *int64) ([]byte, error) {
	if f.UncompressedSize64 > uint64(limits.MaxEntryBytes) {
		return nil, &ExtractionError{Reason: fmt.Sprintf("entry %s exceeds %d bytes", f.Name, limits.MaxEntryBytes)}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &ExtractionError{Reason: "open entry " + f.Name, Err: err}
	}
	defer rc.Close()

	body, err := io.ReadAll(io.LimitReader(rc, limits.MaxEntryBytes+1))
	if err != nil {
		return nil, &ExtractionError{Reason: "read entry " + f.Name, Err: err}
	}
	if int64(len(body)) > limits.MaxEntryBytes {
		return nil, &ExtractionError{Reason: fmt.Sprintf("entry %s exceeds %d bytes", f.Name, limits.MaxEntryBytes)}
	}

	*total += int64(len(body))
	if *total > limits.MaxTotalBytes {
		return nil, &ExtractionError{Reason: fmt.Sprintf("archive content exceeds %d bytes", limits.MaxTotalBytes)}
	}
	return body, nil
}
