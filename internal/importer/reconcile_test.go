package importer

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func testCategory(name string) models.Category {
	return models.Category{ID: uuid.New(), Name: name, Slug: Slugify(name), IsActive: true}
}

func testProduct(name string, price float64, stock int) models.Product {
	return models.Product{
		ID:    uuid.New(),
		Name:  name,
		Slug:  Slugify(name),
		Price: price,
		Stock: stock,
		Unit:  models.DefaultUnit,
	}
}

func rowsFromCSV(t *testing.T, csv string) []Row {
	t.Helper()
	sheet, err := ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	rows, err := BuildRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestBuildRowsMissingNameColumn(t *testing.T) {
	sheet, err := ParseCSV(strings.NewReader("Stock,Sale price\n5,20\n"))
	require.NoError(t, err)

	_, err = BuildRows(sheet)
	assert.ErrorIs(t, err, ErrMissingNameColumn)
}

func TestReconcileCreatesNewProduct(t *testing.T) {
	dairy := testCategory("Dairy")
	r := NewReconciler(nil, []models.Category{dairy})

	rows := rowsFromCSV(t, "Name,Stock,Regular price,Sale price,Categories\nAmul Milk,50,40,35,Dairy\n")
	result := r.Reconcile(rows)

	require.Empty(t, result.Errors)
	require.Empty(t, result.Updates)
	require.Len(t, result.Creates, 1)

	p := result.Creates[0].Product
	assert.Equal(t, "Amul Milk", p.Name)
	assert.Equal(t, "amul-milk", p.Slug)
	assert.Equal(t, dairy.ID, p.CategoryID)
	assert.Equal(t, 35.0, p.Price)
	require.NotNil(t, p.OriginalPrice)
	assert.Equal(t, 40.0, *p.OriginalPrice)
	assert.Equal(t, 50, p.Stock)
	assert.Equal(t, 13, p.Discount)
	assert.Equal(t, models.DefaultUnit, p.Unit)
	assert.True(t, p.IsActive)
	assert.Equal(t, models.StringArray{"ALL_DAY"}, p.TimeSlots)
}

func TestReconcileCategoryNotFound(t *testing.T) {
	r := NewReconciler(nil, nil)

	rows := rowsFromCSV(t, "Name,Stock,Regular price,Sale price,Categories\nAmul Milk,50,40,35,Dairy\n")
	result := r.Reconcile(rows)

	assert.Empty(t, result.Creates)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Dairy")
	assert.Contains(t, result.Errors[0], "not found")
}

func TestReconcileMissingCategoryForNewProduct(t *testing.T) {
	r := NewReconciler(nil, []models.Category{testCategory("Dairy")})

	rows := rowsFromCSV(t, "Name,Stock\nNew Thing,5\n")
	result := r.Reconcile(rows)

	assert.Empty(t, result.Creates)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Missing category")
}

func TestReconcileHierarchicalCategoryResolvesLeaf(t *testing.T) {
	milk := testCategory("Milk")
	r := NewReconciler(nil, []models.Category{testCategory("Dairy"), milk})

	rows := rowsFromCSV(t, "Name,Categories\nToned Milk,Dairy > Milk\n")
	result := r.Reconcile(rows)

	require.Empty(t, result.Errors)
	require.Len(t, result.Creates, 1)
	assert.Equal(t, milk.ID, result.Creates[0].Product.CategoryID)
}

func TestReconcileSymbolOnlyNamesGetValidSlugs(t *testing.T) {
	r := NewReconciler(nil, []models.Category{testCategory("Dairy")})

	rows := rowsFromCSV(t, "Name,Categories\n!!!,Dairy\nदूध,Dairy\n")
	result := r.Reconcile(rows)

	require.Empty(t, result.Errors)
	require.Len(t, result.Creates, 2)
	assert.Equal(t, "product", result.Creates[0].Product.Slug)
	assert.Equal(t, "product-1", result.Creates[1].Product.Slug)
	for _, create := range result.Creates {
		assert.Regexp(t, slugPattern, create.Product.Slug)
	}
}

func TestReconcileUpdateChangedFieldsOnly(t *testing.T) {
	existing := testProduct("Amul Milk", 35, 50)
	r := NewReconciler([]models.Product{existing}, nil)

	// Stock changes, price stays the same, no original price supplied
	rows := rowsFromCSV(t, "Name,Stock,Sale price\namul milk,0,35\n")
	result := r.Reconcile(rows)

	require.Empty(t, result.Errors)
	require.Len(t, result.Updates, 1)

	u := result.Updates[0]
	assert.Equal(t, existing.ID, u.ProductID)
	assert.Equal(t, map[string]interface{}{"stock": 0}, u.Fields)
}

func TestReconcileUpdateNoOpSkipped(t *testing.T) {
	existing := testProduct("Amul Milk", 35, 50)
	r := NewReconciler([]models.Product{existing}, nil)

	rows := rowsFromCSV(t, "Name,Stock,Sale price\nAmul Milk,50,35\n")
	result := r.Reconcile(rows)

	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Creates)
}

func TestReconcileUpdateAbsentColumnsUntouched(t *testing.T) {
	existing := testProduct("Amul Milk", 35, 50)
	r := NewReconciler([]models.Product{existing}, nil)

	// Only a name column: nothing supplied, so no instruction at all
	rows := rowsFromCSV(t, "Name\nAmul Milk\n")
	result := r.Reconcile(rows)

	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Errors)
}

func TestReconcileUpdateRecomputesDiscount(t *testing.T) {
	existing := testProduct("Amul Milk", 40, 50)
	r := NewReconciler([]models.Product{existing}, nil)

	rows := rowsFromCSV(t, "Name,Regular price,Sale price\nAmul Milk,100,80\n")
	result := r.Reconcile(rows)

	require.Len(t, result.Updates, 1)
	fields := result.Updates[0].Fields
	assert.Equal(t, 80.0, fields["price"])
	assert.Equal(t, 100.0, fields["original_price"])
	assert.Equal(t, 20, fields["discount"])
}

func TestReconcileEqualPricesZeroDiscount(t *testing.T) {
	assert.Equal(t, 0, models.ComputeDiscount(100, floatPtr(100)))
	assert.Equal(t, 0, models.ComputeDiscount(100, nil))
	assert.Equal(t, 20, models.ComputeDiscount(80, floatPtr(100)))
	assert.Equal(t, 13, models.ComputeDiscount(35, floatPtr(40)))
}

func TestReconcilePriceFallsBackToOriginalPrice(t *testing.T) {
	r := NewReconciler(nil, []models.Category{testCategory("Dairy")})

	rows := rowsFromCSV(t, "Name,Regular price,Categories\nGhee,500,Dairy\n")
	result := r.Reconcile(rows)

	require.Len(t, result.Creates, 1)
	p := result.Creates[0].Product
	assert.Equal(t, 500.0, p.Price)
	assert.Equal(t, 0, p.Discount)
}

func TestReconcileEmptyNameRowError(t *testing.T) {
	r := NewReconciler(nil, nil)

	rows := rowsFromCSV(t, "Name,Stock\n,5\nMilk,3\n")
	result := r.Reconcile(rows)

	require.Len(t, result.Errors, 2) // empty name + Milk missing category
	assert.Equal(t, "Row 2: Empty product name", result.Errors[0])
}

func TestReconcileSlugCollisionWithinBatch(t *testing.T) {
	r := NewReconciler(nil, []models.Category{testCategory("Dairy")})

	rows := rowsFromCSV(t, "Name,Categories\nAmul Milk!,Dairy\nAmul Milk?,Dairy\n")
	result := r.Reconcile(rows)

	require.Len(t, result.Creates, 2)
	assert.Equal(t, "amul-milk", result.Creates[0].Product.Slug)
	assert.Equal(t, "amul-milk-1", result.Creates[1].Product.Slug)
}

func TestReconcileSlugCollisionWithExistingProduct(t *testing.T) {
	existing := testProduct("Amul Milk", 35, 50)
	r := NewReconciler([]models.Product{existing}, []models.Category{testCategory("Dairy")})

	// Different name, same derived slug
	rows := rowsFromCSV(t, "Name,Categories\nAmul. Milk,Dairy\n")
	result := r.Reconcile(rows)

	require.Len(t, result.Creates, 1)
	assert.Equal(t, "amul-milk-1", result.Creates[0].Product.Slug)
}

func TestReconcileIdempotentSecondUpload(t *testing.T) {
	dairy := testCategory("Dairy")
	r := NewReconciler(nil, []models.Category{dairy})

	csv := "Name,Stock,Regular price,Sale price,Categories\nAmul Milk,50,40,35,Dairy\nBread,10,30,25,Dairy\n"
	first := r.Reconcile(rowsFromCSV(t, csv))
	require.Len(t, first.Creates, 2)

	// Simulate the creates having been persisted, then re-upload
	persisted := make([]models.Product, 0, len(first.Creates))
	for _, c := range first.Creates {
		p := c.Product
		p.ID = uuid.New()
		persisted = append(persisted, p)
	}
	second := NewReconciler(persisted, []models.Category{dairy}).Reconcile(rowsFromCSV(t, csv))

	assert.Empty(t, second.Creates)
	assert.Empty(t, second.Updates)
	assert.Empty(t, second.Errors)
}

func TestReconcileRowOrderDeterministic(t *testing.T) {
	csv := "Name,Categories\nA B,Dairy\nA-B,Dairy\nA.B,Dairy\n"
	r := NewReconciler(nil, []models.Category{testCategory("Dairy")})

	result := r.Reconcile(rowsFromCSV(t, csv))
	require.Len(t, result.Creates, 3)
	assert.Equal(t, "a-b", result.Creates[0].Product.Slug)
	assert.Equal(t, "a-b-1", result.Creates[1].Product.Slug)
	assert.Equal(t, "a-b-2", result.Creates[2].Product.Slug)
}

func TestReconcileUnparsableNumbersIgnored(t *testing.T) {
	existing := testProduct("Amul Milk", 35, 50)
	r := NewReconciler([]models.Product{existing}, nil)

	rows := rowsFromCSV(t, "Name,Stock,Sale price\nAmul Milk,lots,cheap\n")
	result := r.Reconcile(rows)

	// Unparsable values behave like absent columns on update
	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Errors)
}
