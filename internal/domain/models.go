package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Supplier is the issuer of an imported invoice, scoped to a tenant.
type Supplier struct {
	ID        uuid.UUID `db:"id" json:"id"`
	TenantID  uuid.UUID `db:"tenant_id" json:"tenant_id"`
	TaxID     *string   `db:"tax_id" json:"tax_id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email"`
	Phone     *string   `db:"phone" json:"phone"`
	Address   *string   `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Product is an inventory item that purchase lines point at.
type Product struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	TenantID  uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	SKU       string          `db:"sku" json:"sku"`
	Name      string          `db:"name" json:"name"`
	Cost      decimal.Decimal `db:"cost" json:"cost"`
	SalePrice decimal.Decimal `db:"sale_price" json:"sale_price"`
	TaxRate   decimal.Decimal `db:"tax_rate" json:"tax_rate"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Purchase is the header of a purchase created from an imported invoice.
// It is written once per successful import and never mutated by the import pipeline.
// RenderingFileName names the PDF that came with the invoice, if any.
type Purchase struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	TenantID          uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	SupplierID        uuid.UUID       `db:"supplier_id" json:"supplier_id"`
	InvoiceNumber     string          `db:"invoice_number" json:"invoice_number"`
	IssueDate         *string         `db:"issue_date" json:"issue_date"`
	DueDate           *string         `db:"due_date" json:"due_date"`
	Status            PurchaseStatus  `db:"status" json:"status"`
	Subtotal          decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxTotal          decimal.Decimal `db:"tax_total" json:"tax_total"`
	ShippingCost      decimal.Decimal `db:"shipping_cost" json:"shipping_cost"`
	DiscountAmount    decimal.Decimal `db:"discount_amount" json:"discount_amount"`
	Total             decimal.Decimal `db:"total" json:"total"`
	ProfitMargin      decimal.Decimal `db:"profit_margin" json:"profit_margin"`
	SourceFormat      string          `db:"source_format" json:"source_format"`
	SourceFileName    string          `db:"source_file_name" json:"source_file_name"`
	RenderingFileName *string         `db:"rendering_file_name" json:"rendering_file_name"`
	CreatedBy         uuid.UUID       `db:"created_by" json:"created_by"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`

	Supplier     *Supplier      `db:"-" json:"supplier,omitempty"`
	Items        []PurchaseItem `db:"-" json:"items,omitempty"`
	RenderingURL string         `db:"-" json:"rendering_url,omitempty"`
}

// PurchaseItem is one ordered line of a purchase.
type PurchaseItem struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	PurchaseID    uuid.UUID       `db:"purchase_id" json:"purchase_id"`
	TenantID      uuid.UUID       `db:"tenant_id" json:"tenant_id"`
	ProductID     uuid.UUID       `db:"product_id" json:"product_id"`
	Position      int             `db:"position" json:"position"`
	SourceIndex   int             `db:"source_index" json:"source_index"`
	Description   string          `db:"description" json:"description"`
	SKU           string          `db:"sku" json:"sku"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost      decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	TaxPercentage decimal.Decimal `db:"tax_percentage" json:"tax_percentage"`
	TaxAmount     decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	Total         decimal.Decimal `db:"total" json:"total"`
	SalePrice     decimal.Decimal `db:"sale_price" json:"sale_price"`
	IsNewProduct  bool            `db:"is_new_product" json:"is_new_product"`
}

// PurchaseSummary identifies an existing purchase for duplicate warnings.
type PurchaseSummary struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	SupplierName  string          `db:"supplier_name" json:"supplier_name"`
	Total         decimal.Decimal `db:"total" json:"total"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
