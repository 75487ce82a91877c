package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeaderSynonyms(t *testing.T) {
	cases := map[string]string{
		"name":           FieldName,
		"Product Name":   FieldName,
		"product_name":   FieldName,
		"Stock Quantity": FieldStock,
		"qty":            FieldStock,
		"QTY":            FieldStock,
		"Regular price":  FieldOriginalPrice,
		"MRP":            FieldOriginalPrice,
		"Sale price":     FieldPrice,
		"Selling Price":  FieldPrice,
		"Categories":     FieldCategory,
		"Category Name":  FieldCategory,
		"Unit":           FieldUnit,
		"Pack Size":      FieldUnit,
	}
	for header, want := range cases {
		assert.Equal(t, want, NormalizeHeader(header), "header %q", header)
	}
}

func TestNormalizeHeaderUnrecognizedPassesThrough(t *testing.T) {
	assert.Equal(t, "warehouse code", NormalizeHeader("warehouse code"))
	assert.Equal(t, "sku", NormalizeHeader("sku"))
}
