package ses

import (
	"context"
	"fmt"
	"html"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"invoicebridge/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}, nil
}

func (s *sesSender) SendImportSummary(ctx context.Context, toEmail string, summary port.ImportSummary) error {
	purchaseURL := purchaseLink(s.frontendURL, summary)

	subject := fmt.Sprintf("Invoice %s imported", summary.InvoiceNumber)
	htmlBody := buildImportSummaryHTML(summary, purchaseURL)
	textBody := fmt.Sprintf("Invoice %s from %s was imported.\n\nItems: %d (%d new products)\nTotal: %s\n\nView the purchase:\n%s\n",
		summary.InvoiceNumber, summary.SupplierName, summary.ItemCount, summary.NewProducts,
		summary.Total.StringFixed(2), purchaseURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func purchaseLink(frontendURL string, summary port.ImportSummary) string {
	return fmt.Sprintf("%s/purchases/%s", frontendURL, summary.PurchaseID)
}

func buildImportSummaryHTML(summary port.ImportSummary, purchaseURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoice %s imported</h2>
  <p>The invoice from <strong>%s</strong> is now a pending purchase.</p>
  <table style="border-collapse: collapse; margin: 20px 0;">
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Items</td><td>%d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">New products</td><td>%d</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Total</td><td>%s</td></tr>
  </table>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Purchase</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">InvoiceBridge - Electronic Invoice Import</p>
</body>
</html>`,
		html.EscapeString(summary.InvoiceNumber),
		html.EscapeString(summary.SupplierName),
		summary.ItemCount,
		summary.NewProducts,
		summary.Total.StringFixed(2),
		purchaseURL)
}
