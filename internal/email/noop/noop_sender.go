package noop

import (
	"context"

	"github.com/rs/zerolog/log"

	"invoicebridge/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that only logs what it would send.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendImportSummary(_ context.Context, toEmail string, summary port.ImportSummary) error {
	log.Info().
		Str("to", toEmail).
		Str("invoice", summary.InvoiceNumber).
		Str("supplier", summary.SupplierName).
		Int("items", summary.ItemCount).
		Int("new_products", summary.NewProducts).
		Str("total", summary.Total.StringFixed(2)).
		Str("url", s.frontendURL+"/purchases/"+summary.PurchaseID.String()).
		Msg("noop.SendImportSummary: email not sent")
	return nil
}
