package importer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"storefront-service/internal/models"
)

// UpdateInstruction carries only the columns a row actually changes for an
// existing product.
type UpdateInstruction struct {
	ProductID uuid.UUID
	Name      string
	Fields    map[string]interface{}
}

// CreateInstruction carries a fully-defaulted product to insert.
type CreateInstruction struct {
	Line    int
	Product models.Product
}

// Result is the outcome of reconciling one batch of rows.
type Result struct {
	Total   int
	Updates []UpdateInstruction
	Creates []CreateInstruction
	Errors  []string
}

// Reconciler diffs incoming rows against the existing catalog. Products and
// categories are prefetched once per upload so every row resolves with O(1)
// map lookups instead of per-row queries.
type Reconciler struct {
	products   map[string]*models.Product  // lower-cased name -> product
	categories map[string]*models.Category // lower-cased name -> category
	usedSlugs  map[string]bool             // existing slugs plus slugs assigned this batch
}

// NewReconciler builds the lookup maps from the prefetched catalog state.
func NewReconciler(products []models.Product, categories []models.Category) *Reconciler {
	r := &Reconciler{
		products:   make(map[string]*models.Product, len(products)),
		categories: make(map[string]*models.Category, len(categories)),
		usedSlugs:  make(map[string]bool, len(products)),
	}
	for i := range products {
		p := &products[i]
		r.products[strings.ToLower(p.Name)] = p
		r.usedSlugs[p.Slug] = true
	}
	for i := range categories {
		c := &categories[i]
		r.categories[strings.ToLower(c.Name)] = c
	}
	return r
}

// Reconcile processes rows in file order. One bad row never aborts the batch:
// its error is collected and processing continues.
func (r *Reconciler) Reconcile(rows []Row) *Result {
	result := &Result{Total: len(rows)}
	for _, row := range rows {
		r.reconcileRow(row, result)
	}
	return result
}

func (r *Reconciler) reconcileRow(row Row, result *Result) {
	defer func() {
		if rec := recover(); rec != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", row.Line, rec))
		}
	}()

	name := strings.TrimSpace(row.Name)
	if name == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Empty product name", row.Line))
		return
	}

	// Selling price falls back to the original price when absent
	price := row.Price
	if price == nil && row.OriginalPrice != nil {
		price = row.OriginalPrice
	}

	if existing, ok := r.products[strings.ToLower(name)]; ok {
		r.reconcileUpdate(row, existing, price, result)
		return
	}
	r.reconcileCreate(row, name, price, result)
}

// reconcileUpdate builds an update instruction containing only the supplied
// fields that differ from the stored product. A row that changes nothing
// produces no instruction at all.
func (r *Reconciler) reconcileUpdate(row Row, existing *models.Product, price *float64, result *Result) {
	fields := make(map[string]interface{})

	if row.Stock != nil && *row.Stock != existing.Stock {
		fields["stock"] = *row.Stock
	}
	if price != nil && *price != existing.Price {
		fields["price"] = *price
	}
	if row.OriginalPrice != nil && (existing.OriginalPrice == nil || *row.OriginalPrice != *existing.OriginalPrice) {
		fields["original_price"] = *row.OriginalPrice
	}

	// Discount is only recomputed when the row supplies both prices
	if price != nil && row.OriginalPrice != nil {
		if discount := models.ComputeDiscount(*price, row.OriginalPrice); discount != existing.Discount {
			fields["discount"] = discount
		}
	}

	if len(fields) == 0 {
		return
	}
	result.Updates = append(result.Updates, UpdateInstruction{
		ProductID: existing.ID,
		Name:      existing.Name,
		Fields:    fields,
	})
}

// reconcileCreate builds a create instruction for a product not in the
// catalog. Requires a resolvable category and assigns a batch-unique slug.
func (r *Reconciler) reconcileCreate(row Row, name string, price *float64, result *Result) {
	category := r.resolveCategory(row.Category)
	if category == nil {
		if strings.TrimSpace(row.Category) == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Missing category for new product '%s'", row.Line, name))
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: Category '%s' not found", row.Line, row.Category))
		}
		return
	}

	slug := UniqueSlug(Slugify(name), r.usedSlugs)
	r.usedSlugs[slug] = true

	product := models.Product{
		Name:       name,
		Slug:       slug,
		CategoryID: category.ID,
		Stock:      0,
		Unit:       models.DefaultUnit,
		IsActive:   true,
		Images:     models.StringArray{},
		Tags:       models.StringArray{},
		TimeSlots:  models.StringArray{string(models.TimeSlotAllDay)},
	}
	if price != nil {
		product.Price = *price
	}
	if row.OriginalPrice != nil {
		product.OriginalPrice = row.OriginalPrice
	}
	if row.Stock != nil {
		product.Stock = *row.Stock
	}
	if row.Unit != "" {
		product.Unit = row.Unit
	}
	product.Discount = models.ComputeDiscount(product.Price, product.OriginalPrice)

	result.Creates = append(result.Creates, CreateInstruction{Line: row.Line, Product: product})
}

// resolveCategory resolves a spreadsheet category cell against the category
// map. Hierarchical names separated by ">" collapse to the leaf segment; the
// full original string is tried as a fallback.
func (r *Reconciler) resolveCategory(raw string) *models.Category {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	segments := strings.Split(raw, ">")
	leaf := strings.TrimSpace(segments[len(segments)-1])
	if category, ok := r.categories[strings.ToLower(leaf)]; ok {
		return category
	}
	if category, ok := r.categories[strings.ToLower(raw)]; ok {
		return category
	}
	return nil
}
