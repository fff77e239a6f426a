package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"invoicebridge/internal/domain"
	"invoicebridge/internal/einvoice"
	"invoicebridge/internal/port"
)

type supplierResolution struct {
	supplier *domain.Supplier
	created  bool
}

// resolveSupplier finds the invoice supplier by tax id, then by name. A name
// match is only accepted when it cannot belong to a different tax id. With
// write unset nothing is stored and a missing supplier is reported as created.
func (s *importService) resolveSupplier(
	ctx context.Context,
	repos port.ImportRepos,
	tenantID uuid.UUID,
	inv *einvoice.NormalizedInvoice,
	override string,
	write bool,
) (*supplierResolution, error) {
	name := override
	if name == "" {
		name = strings.TrimSpace(inv.SupplierName())
	}
	var taxID *string
	if inv.Supplier.TaxID != nil {
		if t := strings.TrimSpace(*inv.Supplier.TaxID); t != "" {
			taxID = &t
		}
	}

	if taxID != nil {
		found, err := repos.Suppliers().GetByTaxID(ctx, tenantID, *taxID)
		if err == nil {
			return &supplierResolution{supplier: found}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	found, err := repos.Suppliers().GetByName(ctx, tenantID, name)
	switch {
	case err == nil && (taxID == nil || found.TaxID == nil):
		return &supplierResolution{supplier: found}, nil
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	sup := &domain.Supplier{
		ID:       uuid.New(),
		TenantID: tenantID,
		TaxID:    taxID,
		Name:     name,
		Email:    inv.Supplier.Email,
		Phone:    inv.Supplier.Phone,
		Address:  inv.Supplier.Address,
	}
	if !write {
		return &supplierResolution{supplier: sup, created: true}, nil
	}
	id := sup.ID
	if err := repos.Suppliers().Upsert(ctx, sup); err != nil {
		return nil, err
	}
	return &supplierResolution{supplier: sup, created: sup.ID == id}, nil
}

type productMatch struct {
	product   *domain.Product
	matchedBy string
}

// matchProduct looks the item up by SKU, then by name. A nil product means
// no match.
func (s *importService) matchProduct(ctx context.Context, repos port.ImportRepos, tenantID uuid.UUID, item einvoice.Item) (productMatch, error) {
	if sku := strings.TrimSpace(item.SKU); sku != "" {
		p, err := repos.Products().GetBySKU(ctx, tenantID, sku)
		if err == nil {
			return productMatch{product: p, matchedBy: "sku"}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return productMatch{}, err
		}
	}
	if name := strings.TrimSpace(item.Name); name != "" {
		p, err := repos.Products().GetByName(ctx, tenantID, name)
		if err == nil {
			return productMatch{product: p, matchedBy: "name"}, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return productMatch{}, err
		}
	}
	return productMatch{}, nil
}

// materialize returns the product an item points at, creating it priced at
// the item cost plus margin when nothing matches. Matched products are left
// as they are.
func (s *importService) materialize(
	ctx context.Context,
	repos port.ImportRepos,
	tenantID uuid.UUID,
	item einvoice.Item,
	margin decimal.Decimal,
) (*domain.Product, bool, error) {
	m, err := s.matchProduct(ctx, repos, tenantID, item)
	if err != nil {
		return nil, false, err
	}
	if m.product != nil {
		return m.product, false, nil
	}

	p := &domain.Product{
		TenantID:  tenantID,
		SKU:       strings.TrimSpace(item.SKU),
		Name:      strings.TrimSpace(item.Name),
		Cost:      item.UnitPrice,
		SalePrice: SalePrice(item.UnitPrice, margin),
		TaxRate:   item.TaxPercentage,
	}
	created, err := repos.Products().Create(ctx, p)
	if err != nil {
		return nil, false, err
	}
	return p, created, nil
}

func objectKey(tenantID, purchaseID uuid.UUID, name string) string {
	return fmt.Sprintf("tenants/%s/purchases/%s/%s", tenantID, purchaseID, path.Base(name))
}

type archiveObject struct {
	name        string
	body        []byte
	contentType string
}

// archiveUpload stores the uploaded bundle and its rendering next to the
// purchase. Failures are logged and any object already written is removed.
func (s *importService) archiveUpload(ctx context.Context, purchase *domain.Purchase, input ImportInput, bundle *einvoice.RawBundle) {
	if !s.archive {
		return
	}
	ctx = context.WithoutCancel(ctx)

	contentType := "application/xml"
	if bytes.HasPrefix(input.Data, []byte("PK\x03\x04")) {
		contentType = "application/zip"
	}
	objects := []archiveObject{{name: purchase.SourceFileName, body: input.Data, contentType: contentType}}
	if purchase.RenderingFileName != nil {
		objects = append(objects, archiveObject{
			name:        *purchase.RenderingFileName,
			body:        bundle.Rendering,
			contentType: "application/pdf",
		})
	}

	var written []string
	for _, obj := range objects {
		key := objectKey(purchase.TenantID, purchase.ID, obj.name)
		_, err := s.storage.Upload(ctx, port.UploadInput{
			Bucket:      s.bucket,
			Key:         key,
			Body:        bytes.NewReader(obj.body),
			ContentType: obj.contentType,
			Size:        int64(len(obj.body)),
			Metadata: map[string]string{
				"invoice-number": purchase.InvoiceNumber,
				"purchase-id":    purchase.ID.String(),
			},
		})
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("import.archiveUpload: upload failed")
			for _, k := range written {
				if delErr := s.storage.Delete(ctx, s.bucket, k); delErr != nil {
					log.Warn().Err(delErr).Str("key", k).Msg("import.archiveUpload: cleanup failed")
				}
			}
			return
		}
		written = append(written, key)
	}
	log.Debug().Strs("keys", written).Msg("import.archiveUpload: bundle archived")
}

func (s *importService) sendSummary(ctx context.Context, input ImportInput, result *ImportResult) {
	if !s.notify || input.Email == "" {
		return
	}
	summary := port.ImportSummary{
		TenantID:      input.TenantID,
		PurchaseID:    result.Purchase.ID,
		InvoiceNumber: result.Summary.InvoiceNumber,
		SupplierName:  result.Summary.SupplierName,
		Total:         result.Summary.Total,
		ItemCount:     result.Summary.ItemCount,
		NewProducts:   result.Summary.NewProductCount,
	}
	if err := s.emailSender.SendImportSummary(context.WithoutCancel(ctx), input.Email, summary); err != nil {
		log.Warn().Err(err).Str("purchase_id", result.Purchase.ID.String()).
			Msg("import.sendSummary: notification failed")
	}
}
