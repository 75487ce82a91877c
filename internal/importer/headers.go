package importer

import "strings"

// Canonical field names produced by header normalization.
const (
	FieldName          = "name"
	FieldStock         = "stock"
	FieldPrice         = "price"
	FieldOriginalPrice = "originalPrice"
	FieldCategory      = "category"
	FieldUnit          = "unit"
)

// headerSynonyms maps stripped header names to canonical fields. Keys are
// lower-cased with all non-alphanumerics removed, so "Regular price",
// "regular_price" and "RegularPrice" all land on the same entry.
var headerSynonyms = map[string]string{
	"name":          FieldName,
	"productname":   FieldName,
	"product":       FieldName,
	"title":         FieldName,
	"itemname":      FieldName,

	"stock":         FieldStock,
	"stockquantity": FieldStock,
	"quantity":      FieldStock,
	"qty":           FieldStock,
	"instock":       FieldStock,

	"price":         FieldPrice,
	"saleprice":     FieldPrice,
	"sellingprice":  FieldPrice,
	"offerprice":    FieldPrice,
	"currentprice":  FieldPrice,
	"sp":            FieldPrice,

	"originalprice": FieldOriginalPrice,
	"regularprice":  FieldOriginalPrice,
	"mrp":           FieldOriginalPrice,
	"listprice":     FieldOriginalPrice,
	"strikeprice":   FieldOriginalPrice,

	"category":        FieldCategory,
	"categories":      FieldCategory,
	"categoryname":    FieldCategory,
	"productcategory": FieldCategory,

	"unit":     FieldUnit,
	"uom":      FieldUnit,
	"packsize": FieldUnit,
	"size":     FieldUnit,
}

// NormalizeHeader maps an arbitrary spreadsheet column name to its canonical
// field name. Unrecognized headers pass through unchanged; the row builder
// simply never captures an index for them.
func NormalizeHeader(header string) string {
	stripped := stripNonAlnum(strings.ToLower(header))
	if canonical, ok := headerSynonyms[stripped]; ok {
		return canonical
	}
	return header
}

func stripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
