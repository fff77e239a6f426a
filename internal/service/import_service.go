package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"invoicebridge/internal/config"
	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
	"invoicebridge/internal/port"
	"invoicebridge/internal/validator"
)

// ImportOptions are the caller's adjustments to an import.
type ImportOptions struct {
	// ProfitMargin is a percentage; nil uses the configured default.
	ProfitMargin *decimal.Decimal
	// RemovedItems are zero-based indices into the invoice items.
	RemovedItems   []int
	ShippingCost   decimal.Decimal
	DiscountAmount decimal.Decimal
	// SupplierName overrides the name read from the invoice.
	SupplierName string
}

// ImportInput is the DTO for importing an uploaded invoice bundle.
type ImportInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	// Email receives the import notification when notifications are enabled.
	Email    string
	FileName string
	Data     []byte
	Options  ImportOptions
}

// ImportSummary describes a completed import.
type ImportSummary struct {
	SupplierName    string          `json:"supplier_name"`
	InvoiceNumber   string          `json:"invoice_number"`
	ItemCount       int             `json:"item_count"`
	NewProductCount int             `json:"new_product_count"`
	Total           decimal.Decimal `json:"total"`
}

// ImportResult is what a successful import returns.
type ImportResult struct {
	Purchase        *domain.Purchase `json:"purchase"`
	Summary         ImportSummary    `json:"summary"`
	Dialect         einvoice.Dialect `json:"dialect"`
	SupplierCreated bool             `json:"supplier_created"`
	Warnings        []string         `json:"warnings"`
}

// PreviewInput is the DTO for previewing an import without persisting it.
type PreviewInput struct {
	TenantID uuid.UUID
	FileName string
	Data     []byte
	Options  ImportOptions
}

// PreviewItem is one invoice item and what an import would do with it.
type PreviewItem struct {
	SourceIndex int             `json:"source_index"`
	Item        einvoice.Item   `json:"item"`
	Removed     bool            `json:"removed"`
	ProductID   *uuid.UUID      `json:"product_id"`
	MatchedBy   string          `json:"matched_by,omitempty"`
	NewProduct  bool            `json:"is_new_product"`
	SalePrice   decimal.Decimal `json:"sale_price"`
}

// PreviewResult is the would-be outcome of an import.
type PreviewResult struct {
	Valid          bool                        `json:"valid"`
	Errors         []string                    `json:"errors"`
	Warnings       []string                    `json:"warnings"`
	Invoice        *einvoice.NormalizedInvoice `json:"invoice"`
	Dialect        einvoice.Dialect            `json:"dialect"`
	EnvelopeDepth  int                         `json:"envelope_depth"`
	HasRendering   bool                        `json:"has_rendering"`
	IsDuplicate    bool                        `json:"is_duplicate"`
	DuplicateInfo  *domain.PurchaseSummary     `json:"duplicate_info"`
	SupplierExists bool                        `json:"supplier_exists"`
	SupplierID     *uuid.UUID                  `json:"supplier_id"`
	SupplierName   string                      `json:"supplier_name"`
	Items          []PreviewItem               `json:"items"`
	ProfitMargin   decimal.Decimal             `json:"profit_margin"`
	Subtotal       decimal.Decimal             `json:"subtotal"`
	TaxTotal       decimal.Decimal             `json:"tax_total"`
	ShippingCost   decimal.Decimal             `json:"shipping_cost"`
	DiscountAmount decimal.Decimal             `json:"discount_amount"`
	Total          decimal.Decimal             `json:"total"`
	Totals         einvoice.Totals             `json:"document_totals"`
}

// ImportService turns uploaded electronic invoices into purchases.
type ImportService interface {
	Preview(ctx context.Context, input PreviewInput) (*PreviewResult, error)
	Import(ctx context.Context, input ImportInput) (*ImportResult, error)
	GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*domain.Purchase, error)
}

type importService struct {
	txRunner      port.TxRunner
	reader        port.ImportRepos
	storage       port.ObjectStorage
	emailSender   port.EmailSender
	detector      *einvoice.Detector
	engine        *validator.Engine
	limits        einvoice.Limits
	defaultMargin decimal.Decimal
	bucket        string
	presignExpiry int64
	archive       bool
	notify        bool
}

// NewImportService creates a new ImportService. reader serves the read-only
// preview and purchase lookups; storage and emailSender may be nil.
func NewImportService(
	txRunner port.TxRunner,
	reader port.ImportRepos,
	storage port.ObjectStorage,
	emailSender port.EmailSender,
	importCfg config.ImportConfig,
	s3Cfg config.S3Config,
) ImportService {
	return &importService{
		txRunner:    txRunner,
		reader:      reader,
		storage:     storage,
		emailSender: emailSender,
		detector: einvoice.NewDetector(einvoice.Options{
			DefaultTaxRate:   decimal.NewFromFloat(importCfg.DefaultTaxRate),
			MaxEnvelopeDepth: importCfg.MaxEnvelopeDepth,
		}),
		engine: validator.NewEngine(validator.NewBuiltinRegistry()),
		limits: einvoice.Limits{
			MaxEntryBytes:    importCfg.MaxEntryMB << 20,
			MaxTotalBytes:    importCfg.MaxTotalMB << 20,
			MaxEnvelopeDepth: importCfg.MaxEnvelopeDepth,
		},
		defaultMargin: decimal.NewFromFloat(importCfg.DefaultProfitMargin),
		bucket:        s3Cfg.Bucket,
		presignExpiry: s3Cfg.PresignExpiry,
		archive:       importCfg.ArchiveUploads && storage != nil && s3Cfg.Bucket != "",
		notify:        importCfg.NotifyOnImport && emailSender != nil,
	}
}

// decoded is an upload after extraction, detection and validation.
type decoded struct {
	bundle     *einvoice.RawBundle
	result     *einvoice.Result
	validation *validator.Result
}

func (s *importService) decode(ctx context.Context, data []byte) (*decoded, error) {
	bundle, err := einvoice.ExtractBundle(data, s.limits)
	if err != nil {
		return nil, err
	}
	res, err := s.detector.DetectDocument(bundle.Document)
	if err != nil {
		return nil, err
	}
	return &decoded{
		bundle:     bundle,
		result:     res,
		validation: s.engine.Validate(ctx, res.Invoice),
	}, nil
}

// options are ImportOptions checked and filled with defaults.
type options struct {
	margin       decimal.Decimal
	shipping     decimal.Decimal
	discount     decimal.Decimal
	removed      map[int]bool
	supplierName string
}

func (s *importService) resolveOptions(in ImportOptions) (*options, error) {
	opts := &options{
		margin:       s.defaultMargin,
		shipping:     in.ShippingCost,
		discount:     in.DiscountAmount,
		removed:      make(map[int]bool, len(in.RemovedItems)),
		supplierName: strings.TrimSpace(in.SupplierName),
	}
	if in.ProfitMargin != nil {
		opts.margin = *in.ProfitMargin
	}
	if opts.margin.IsNegative() {
		return nil, fmt.Errorf("%w: profit margin must not be negative", domain.ErrInvalidImportOption)
	}
	if opts.shipping.IsNegative() {
		return nil, fmt.Errorf("%w: shipping cost must not be negative", domain.ErrInvalidImportOption)
	}
	if opts.discount.IsNegative() {
		return nil, fmt.Errorf("%w: discount must not be negative", domain.ErrInvalidImportOption)
	}
	for _, idx := range in.RemovedItems {
		opts.removed[idx] = true
	}
	return opts, nil
}

// keptItems returns the source indices of the items that survive removal, in
// invoice order. Indices outside the item list are ignored.
func (o *options) keptItems(items []einvoice.Item) []int {
	kept := make([]int, 0, len(items))
	for i := range items {
		if !o.removed[i] {
			kept = append(kept, i)
		}
	}
	return kept
}

// headerTotals computes subtotal, tax and total for the kept items.
func (o *options) headerTotals(items []einvoice.Item, kept []int) (subtotal, tax, total decimal.Decimal) {
	subtotal, tax = decimal.Zero, decimal.Zero
	for _, i := range kept {
		subtotal = subtotal.Add(items[i].Subtotal)
		tax = tax.Add(items[i].TaxAmount)
	}
	total = subtotal.Add(tax).Add(o.shipping).Sub(o.discount).Round(2)
	return subtotal.Round(2), tax.Round(2), total
}

func (s *importService) Preview(ctx context.Context, input PreviewInput) (*PreviewResult, error) {
	opts, err := s.resolveOptions(input.Options)
	if err != nil {
		return nil, err
	}
	dec, err := s.decode(ctx, input.Data)
	if err != nil {
		return nil, err
	}

	inv := dec.result.Invoice
	out := &PreviewResult{
		Valid:          dec.validation.Valid,
		Errors:         dec.validation.Errors,
		Warnings:       dec.validation.Warnings,
		Invoice:        inv,
		Dialect:        dec.result.Dialect,
		EnvelopeDepth:  dec.result.EnvelopeDepth,
		HasRendering:   dec.bundle.HasRendering(),
		ProfitMargin:   opts.margin,
		ShippingCost:   opts.shipping,
		DiscountAmount: opts.discount,
		Totals:         inv.Totals,
		Items:          make([]PreviewItem, 0, len(inv.Items)),
	}

	if number := strings.TrimSpace(inv.Number()); number != "" {
		existing, err := s.reader.Duplicates().FindByInvoiceNumber(ctx, input.TenantID, number)
		switch {
		case err == nil:
			out.IsDuplicate, out.DuplicateInfo = true, existing
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("import.Preview duplicate check: %w", err)
		}
	}

	sup, err := s.resolveSupplier(ctx, s.reader, input.TenantID, inv, opts.supplierName, false)
	if err != nil {
		return nil, fmt.Errorf("import.Preview supplier: %w", err)
	}
	out.SupplierName = sup.supplier.Name
	if !sup.created {
		out.SupplierExists = true
		out.SupplierID = &sup.supplier.ID
	}

	// Items planned in this preview stand in for products an import would
	// create, so repeated SKUs are only counted new once.
	planned := make(map[string]*domain.Product)
	for i, item := range inv.Items {
		pi := PreviewItem{SourceIndex: i, Item: item, Removed: opts.removed[i]}
		if pi.Removed {
			out.Items = append(out.Items, pi)
			continue
		}
		m, err := s.matchProduct(ctx, s.reader, input.TenantID, item)
		if err != nil {
			return nil, fmt.Errorf("import.Preview item %d: %w", i, err)
		}
		if m.product == nil {
			if p, ok := planned[item.SKU]; ok {
				m.product, m.matchedBy = p, "sku"
			}
		}
		if m.product != nil {
			pi.MatchedBy = m.matchedBy
			pi.SalePrice = m.product.SalePrice
			if m.product.ID != uuid.Nil {
				id := m.product.ID
				pi.ProductID = &id
			}
		} else {
			pi.NewProduct = true
			pi.SalePrice = SalePrice(item.UnitPrice, opts.margin)
			planned[item.SKU] = &domain.Product{SKU: item.SKU, SalePrice: pi.SalePrice}
		}
		out.Items = append(out.Items, pi)
	}

	out.Subtotal, out.TaxTotal, out.Total = opts.headerTotals(inv.Items, opts.keptItems(inv.Items))

	log.Debug().Str("tenant_id", input.TenantID.String()).Str("invoice", inv.Number()).
		Bool("valid", out.Valid).Bool("duplicate", out.IsDuplicate).
		Msg("import.Preview: invoice previewed")
	return out, nil
}

func (s *importService) Import(ctx context.Context, input ImportInput) (*ImportResult, error) {
	opts, err := s.resolveOptions(input.Options)
	if err != nil {
		return nil, err
	}
	dec, err := s.decode(ctx, input.Data)
	if err != nil {
		return nil, err
	}
	if err := dec.validation.Err(); err != nil {
		return nil, err
	}

	inv := dec.result.Invoice
	number := strings.TrimSpace(inv.Number())
	kept := opts.keptItems(inv.Items)
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: every invoice item was removed", domain.ErrInvalidImportOption)
	}

	var (
		purchase        *domain.Purchase
		supplierCreated bool
		newProducts     int
	)
	err = s.txRunner.RunInTx(ctx, func(repos port.ImportRepos) error {
		purchase, supplierCreated, newProducts = nil, false, 0

		if err := repos.LockInvoiceNumber(ctx, input.TenantID, number); err != nil {
			return stepError(domain.StepDuplicateCheck, -1, err)
		}
		existing, err := repos.Duplicates().FindByInvoiceNumber(ctx, input.TenantID, number)
		if err == nil {
			return &domain.DuplicateInvoiceError{InvoiceNumber: number, Existing: existing}
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return stepError(domain.StepDuplicateCheck, -1, err)
		}

		sup, err := s.resolveSupplier(ctx, repos, input.TenantID, inv, opts.supplierName, true)
		if err != nil {
			return stepError(domain.StepSupplierResolution, -1, err)
		}
		supplierCreated = sup.created

		items := make([]domain.PurchaseItem, 0, len(kept))
		for pos, idx := range kept {
			item := inv.Items[idx]
			product, created, err := s.materialize(ctx, repos, input.TenantID, item, opts.margin)
			if err != nil {
				return stepError(domain.StepItemMaterialize, idx, err)
			}
			if created {
				newProducts++
			}
			items = append(items, domain.PurchaseItem{
				TenantID:      input.TenantID,
				ProductID:     product.ID,
				Position:      pos + 1,
				SourceIndex:   idx,
				Description:   item.Name,
				SKU:           item.SKU,
				Quantity:      item.Quantity,
				UnitCost:      item.UnitPrice,
				TaxPercentage: item.TaxPercentage,
				TaxAmount:     item.TaxAmount,
				Subtotal:      item.Subtotal,
				Total:         item.Total,
				SalePrice:     product.SalePrice,
				IsNewProduct:  created,
			})
		}

		subtotal, tax, total := opts.headerTotals(inv.Items, kept)
		p := &domain.Purchase{
			TenantID:       input.TenantID,
			SupplierID:     sup.supplier.ID,
			InvoiceNumber:  number,
			IssueDate:      inv.Invoice.IssueDate,
			DueDate:        inv.Invoice.DueDate,
			Status:         domain.PurchaseStatusPending,
			Subtotal:       subtotal,
			TaxTotal:       tax,
			ShippingCost:   opts.shipping,
			DiscountAmount: opts.discount,
			Total:          total,
			ProfitMargin:   opts.margin,
			SourceFormat:   string(dec.result.Dialect),
			SourceFileName: uploadName(input.FileName, dec.bundle),
			CreatedBy:      input.UserID,
		}
		if dec.bundle.HasRendering() {
			name := path.Base(dec.bundle.RenderingName)
			p.RenderingFileName = &name
		}
		if err := repos.Purchases().Create(ctx, p); err != nil {
			var dup *domain.DuplicateInvoiceError
			if errors.As(err, &dup) {
				return dup
			}
			return stepError(domain.StepPurchaseHeader, -1, err)
		}

		for i := range items {
			items[i].PurchaseID = p.ID
			if err := repos.Purchases().CreateItem(ctx, &items[i]); err != nil {
				return stepError(domain.StepPurchaseItems, items[i].SourceIndex, err)
			}
		}

		p.Supplier = sup.supplier
		p.Items = items
		purchase = p
		return nil
	})
	if err != nil {
		return nil, s.importError(ctx, input.TenantID, number, err)
	}

	log.Info().Str("tenant_id", input.TenantID.String()).Str("purchase_id", purchase.ID.String()).
		Str("invoice", number).Int("items", len(purchase.Items)).Int("new_products", newProducts).
		Msg("import.Import: purchase created")

	result := &ImportResult{
		Purchase: purchase,
		Summary: ImportSummary{
			SupplierName:    purchase.Supplier.Name,
			InvoiceNumber:   number,
			ItemCount:       len(purchase.Items),
			NewProductCount: newProducts,
			Total:           purchase.Total,
		},
		Dialect:         dec.result.Dialect,
		SupplierCreated: supplierCreated,
		Warnings:        dec.validation.Warnings,
	}

	s.archiveUpload(ctx, purchase, input, dec.bundle)
	s.sendSummary(ctx, input, result)
	return result, nil
}

// importError maps a failed transaction to the error the caller sees. A
// duplicate caught by the unique index carries no prior purchase yet, so it
// is read again after the rollback.
func (s *importService) importError(ctx context.Context, tenantID uuid.UUID, number string, err error) error {
	var dup *domain.DuplicateInvoiceError
	if errors.As(err, &dup) {
		if dup.Existing == nil {
			existing, findErr := s.reader.Duplicates().FindByInvoiceNumber(ctx, tenantID, number)
			if findErr == nil {
				dup.Existing = existing
			} else {
				log.Warn().Err(findErr).Str("invoice", number).
					Msg("import.Import: could not load the existing purchase")
			}
		}
		log.Info().Str("tenant_id", tenantID.String()).Str("invoice", number).
			Msg("import.Import: duplicate invoice rejected")
		return dup
	}

	var stepErr *domain.ImportStepError
	if !errors.As(err, &stepErr) {
		stepErr = &domain.ImportStepError{Step: domain.StepCommit, ItemIndex: -1, Err: err}
	}
	log.Error().Err(stepErr.Err).Str("tenant_id", tenantID.String()).Str("invoice", number).
		Str("step", stepErr.Step).Int("item", stepErr.ItemIndex).
		Msg("import.Import: transaction rolled back")
	return stepErr
}

func stepError(step string, itemIndex int, err error) error {
	return &domain.ImportStepError{Step: step, ItemIndex: itemIndex, Err: err}
}

func (s *importService) GetPurchase(ctx context.Context, tenantID, purchaseID uuid.UUID) (*domain.Purchase, error) {
	p, err := s.reader.Purchases().GetByID(ctx, tenantID, purchaseID)
	if err != nil {
		return nil, err
	}
	if p.RenderingFileName != nil && s.storage != nil && s.bucket != "" {
		key := objectKey(tenantID, p.ID, *p.RenderingFileName)
		url, err := s.storage.GetPresignedURL(ctx, s.bucket, key, s.presignExpiry)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("import.GetPurchase: presigning rendering failed")
		} else {
			p.RenderingURL = url
		}
	}
	return p, nil
}

// uploadName is the name recorded as the purchase source file.
func uploadName(fileName string, bundle *einvoice.RawBundle) string {
	if name := path.Base(strings.ReplaceAll(fileName, "\\", "/")); name != "." && name != "/" && name != "" {
		return name
	}
	return path.Base(bundle.DocumentName)
}
