package einvoice

import (
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Options configures a Detector.
type Options struct {
	// DefaultTaxRate is applied to lines that carry neither a rate nor a tax
	// amount to derive one from.
	DefaultTaxRate   decimal.Decimal
	MaxEnvelopeDepth int
}

// DefaultOptions returns the detector defaults (19% tax, three envelope levels).
func DefaultOptions() Options {
	return Options{
		DefaultTaxRate:   decimal.NewFromInt(19),
		MaxEnvelopeDepth: DefaultLimits().MaxEnvelopeDepth,
	}
}

// adapter reads one document dialect. Recognize must be cheap and side-effect
// free; once an adapter recognizes a root its Extract result is final, errors
// included.
type adapter interface {
	name() string
	recognize(root *Node) bool
	extract(root *Node, depth int) (*Result, error)
}

// Detector classifies a parsed document and dispatches it to the matching
// dialect adapter. It holds no mutable state and is safe for concurrent use.
type Detector struct {
	opts     Options
	adapters []adapter
	fallback adapter
}

func NewDetector(opts Options) *Detector {
	if opts.MaxEnvelopeDepth <= 0 {
		opts.MaxEnvelopeDepth = DefaultLimits().MaxEnvelopeDepth
	}
	d := &Detector{opts: opts}
	d.adapters = []adapter{
		&envelopeAdapter{d: d},
		&ublAdapter{d: d},
		&genericAdapter{d: d},
	}
	d.fallback = &heuristicAdapter{d: d}
	return d
}

// Detect extracts a NormalizedInvoice from a parsed document. Only envelope
// failures are errors; every other document yields a best-effort invoice.
func (d *Detector) Detect(root *Node) (*Result, error) {
	return d.detect(root, 0)
}

// DetectDocument parses raw markup and detects it.
func (d *Detector) DetectDocument(data []byte) (*Result, error) {
	root, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return d.Detect(root)
}

func (d *Detector) detect(root *Node, depth int) (*Result, error) {
	for _, a := range d.adapters {
		if !a.recognize(root) {
			continue
		}
		log.Debug().Str("adapter", a.name()).Str("root", root.Name).Int("depth", depth).
			Msg("einvoice.Detector: dialect recognized")
		return a.extract(root, depth)
	}

	log.Info().Str("root", root.Name).Int("depth", depth).
		Msg("einvoice.Detector: no dialect recognized, using heuristic extraction")
	return d.fallback.extract(root, depth)
}

// finish assembles the invoice and reconciles its totals.
func (d *Detector) finish(dialect Dialect, supplier Supplier, header Header, lines []rawLine, totals *HeaderTotals) *Result {
	items := make([]Item, 0, len(lines))
	for i, l := range lines {
		items = append(items, d.buildItem(i, l))
	}
	return &Result{
		Invoice: &NormalizedInvoice{
			Supplier: supplier,
			Invoice:  header,
			Items:    items,
			Totals:   ReconcileTotals(items, totals),
		},
		Dialect: dialect,
	}
}
