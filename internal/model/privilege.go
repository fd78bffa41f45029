package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Product management
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	// Category and branch management
	{Code: "category:manage", Name: "Manage Categories"},
	{Code: "branch:manage", Name: "Manage Branches"},
	// Checkout / register
	{Code: "checkout:operate", Name: "Operate Checkout"},
	// Receipts and sales
	{Code: "receipt:view", Name: "View Receipt"},
	{Code: "sale:view", Name: "View Sale"},
	// Stock movements (warehouse inflow/outflow)
	{Code: "movement:view", Name: "View Stock Movement"},
	{Code: "movement:create", Name: "Record Stock Movement"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
}

// CashierPrivilegeCodes are the privileges granted to the CASHIER role.
var CashierPrivilegeCodes = []string{
	"product:view",
	"checkout:operate",
	"receipt:view",
	"sale:view",
	"dashboard:view",
}
