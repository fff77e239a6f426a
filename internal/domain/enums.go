package domain

// UserRole defines the role hierarchy within a tenant.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// ValidUserRoles lists the roles a token may carry.
var ValidUserRoles = map[UserRole]bool{
	RoleAdmin:  true,
	RoleMember: true,
}

// PurchaseStatus represents the lifecycle of a purchase. Imports always create
// pending purchases; receiving and cancelling happen elsewhere.
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "pending"
	PurchaseStatusReceived  PurchaseStatus = "received"
	PurchaseStatusCancelled PurchaseStatus = "cancelled"
)

// AllowedUploadExtensions lists the upload extensions accepted by the import endpoints.
var AllowedUploadExtensions = map[string]bool{
	"zip": true,
	"xml": true,
}

// ValidationSeverity decides whether a failed rule rejects the invoice.
type ValidationSeverity string

const (
	ValidationSeverityError   ValidationSeverity = "error"
	ValidationSeverityWarning ValidationSeverity = "warning"
)

// ValidationRuleType groups built-in rules by the kind of check they make.
type ValidationRuleType string

const (
	ValidationRuleRequired ValidationRuleType = "required"
	ValidationRuleSumCheck ValidationRuleType = "sum_check"
	ValidationRuleLogical  ValidationRuleType = "logical"
)
