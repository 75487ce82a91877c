package models

// ImportFormat identifies the uploaded file type
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportColumn describes one column of the inventory import template
type ImportColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate describes the recommended spreadsheet layout for inventory
// uploads. Columns are matched by synonym, so operators can keep their own
// header names; only a product-name column is mandatory.
type ImportTemplate struct {
	Columns []ImportColumn `json:"columns"`
}

// InventoryImportTemplate returns the import template definition
func InventoryImportTemplate() ImportTemplate {
	return ImportTemplate{
		Columns: []ImportColumn{
			{Name: "Name", Description: "Product name; matched case-insensitively against existing products", Required: true, Type: "string", Example: "Amul Milk"},
			{Name: "Stock", Description: "Stock quantity (also accepted: Qty, Stock Quantity)", Required: false, Type: "integer", Example: "50"},
			{Name: "Regular price", Description: "Original/list price (also accepted: MRP)", Required: false, Type: "number", Example: "40"},
			{Name: "Sale price", Description: "Selling price; falls back to the regular price when absent", Required: false, Type: "number", Example: "35"},
			{Name: "Categories", Description: "Category name, required for new products; hierarchical names like 'Dairy > Milk' resolve to the leaf", Required: false, Type: "string", Example: "Dairy"},
			{Name: "Unit", Description: "Pack size shown to customers; defaults to '1 piece'", Required: false, Type: "string", Example: "500 ml"},
		},
	}
}
