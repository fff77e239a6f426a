package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"invoicebridge/internal/config"
	"invoicebridge/internal/export"
	"invoicebridge/internal/logger"
	"invoicebridge/internal/repository/memory"
	"invoicebridge/internal/service"
)

var previewCmd = &cobra.Command{
	Use:   "preview [bundle]",
	Short: "Show what importing an invoice bundle would do",
	Long: `Reads a zip bundle or a bare XML invoice and prints the import preview.

Nothing is persisted. The catalog starts empty, so every supplier and product
is reported as new.`,
	Example: `  # JSON to stdout
  invoicectl preview factura.zip

  # Spreadsheet for review, with a 40% margin
  invoicectl preview factura.zip --format xlsx --margin 40 -o factura.xlsx

  # CSV named after the invoice number
  invoicectl preview factura.zip --format csv -o .`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var previewFlags struct {
	format   string
	output   string
	margin   string
	supplier string
	removed  []int
	shipping string
	discount string
}

func init() {
	f := previewCmd.Flags()
	f.StringVarP(&previewFlags.format, "format", "f", "json", "Output format: json, csv or xlsx")
	f.StringVarP(&previewFlags.output, "output", "o", "", "Output file, or a directory to use a generated name (default stdout)")
	f.StringVar(&previewFlags.margin, "margin", "", "Profit margin percentage for new products")
	f.StringVar(&previewFlags.supplier, "supplier", "", "Supplier name override")
	f.IntSliceVar(&previewFlags.removed, "remove", nil, "Zero-based item indices to leave out")
	f.StringVar(&previewFlags.shipping, "shipping", "", "Shipping cost added to the total")
	f.StringVar(&previewFlags.discount, "discount", "", "Discount subtracted from the total")
}

func runPreview(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("preview")

	format := strings.ToLower(previewFlags.format)
	switch format {
	case "json", "csv", "xlsx":
	default:
		return fmt.Errorf("unknown format %q, expected json, csv or xlsx", previewFlags.format)
	}

	opts, err := previewOptions()
	if err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading bundle: %w", err)
	}
	log.Debug().Str("file", path).Int("bytes", len(data)).Msg("read bundle")

	result, err := previewBundle(cmd.Context(), appConfig, filepath.Base(path), data, opts)
	if err != nil {
		return err
	}
	log.Info().
		Bool("valid", result.Valid).
		Str("dialect", string(result.Dialect)).
		Int("items", len(result.Items)).
		Msg("preview complete")

	out, closeOut, err := openOutput(result, format)
	if err != nil {
		return err
	}
	defer closeOut()

	switch format {
	case "csv":
		err = export.WriteCSV(out, result)
	case "xlsx":
		err = export.WriteXLSX(out, result)
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		err = enc.Encode(result)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", format, err)
	}
	return nil
}

// previewBundle runs a preview against an empty in-memory catalog.
func previewBundle(ctx context.Context, cfg *config.Config, name string, data []byte, opts service.ImportOptions) (*service.PreviewResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	store := memory.NewStore()
	svc := service.NewImportService(store, store.Reader(), nil, nil, cfg.Import, config.S3Config{})
	return svc.Preview(ctx, service.PreviewInput{
		TenantID: uuid.New(),
		FileName: name,
		Data:     data,
		Options:  opts,
	})
}

func previewOptions() (service.ImportOptions, error) {
	opts := service.ImportOptions{
		RemovedItems: previewFlags.removed,
		SupplierName: previewFlags.supplier,
	}
	if previewFlags.margin != "" {
		m, err := decimal.NewFromString(previewFlags.margin)
		if err != nil {
			return opts, fmt.Errorf("--margin: %w", err)
		}
		opts.ProfitMargin = &m
	}
	for _, a := range []struct {
		flag string
		raw  string
		dst  *decimal.Decimal
	}{
		{"--shipping", previewFlags.shipping, &opts.ShippingCost},
		{"--discount", previewFlags.discount, &opts.DiscountAmount},
	} {
		if a.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(a.raw)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", a.flag, err)
		}
		*a.dst = d
	}
	return opts, nil
}

// openOutput resolves -o. A directory gets a file named after the invoice.
func openOutput(result *service.PreviewResult, format string) (io.Writer, func(), error) {
	target := previewFlags.output
	if target == "" {
		return os.Stdout, func() {}, nil
	}
	if info, err := os.Stat(target); err == nil && info.IsDir() {
		number := ""
		if result.Invoice != nil {
			number = result.Invoice.Number()
		}
		target = filepath.Join(target, export.BuildFilename(number, format))
	}
	f, err := os.Create(target)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
