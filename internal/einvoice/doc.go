// Package einvoice turns an uploaded electronic-invoice bundle into a
// NormalizedInvoice.
//
// The pipeline is ExtractBundle -> Parse -> Detector.Detect. Extraction and
// parsing are the only stages with hard failures; the dialect adapters degrade
// missing or malformed fields to nil/zero and leave the fatal/non-fatal call to
// the validator package. Everything here is free of shared mutable state and
// safe to call concurrently for independent uploads.
package einvoice
