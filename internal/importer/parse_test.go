package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVBasic(t *testing.T) {
	input := "Name,Stock,Regular price,Sale price,Categories\nAmul Milk,50,40,35,Dairy\nBread,10,,,Bakery\n"

	sheet, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "stock", "regular price", "sale price", "categories"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, []string{"Amul Milk", "50", "40", "35", "Dairy"}, sheet.Rows[0])
}

func TestParseCSVQuotedCommas(t *testing.T) {
	input := "Name,Categories\n\"Milk, Full Cream\",Dairy\n"

	sheet, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, "Milk, Full Cream", sheet.Rows[0][0])
}

func TestParseCSVEscapedQuotes(t *testing.T) {
	input := "Name,Categories\n\"Amul \"\"Gold\"\" Milk\",Dairy\n"

	sheet, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, `Amul "Gold" Milk`, sheet.Rows[0][0])
}

func TestParseCSVSkipsBlankLines(t *testing.T) {
	input := "Name,Stock\r\nMilk,5\r\n\r\nBread,2\r\n"

	sheet, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	// Row count equals data line count minus blank lines
	assert.Len(t, sheet.Rows, 2)
}

func TestParseCSVEmptyInput(t *testing.T) {
	sheet, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, sheet.Headers)
	assert.Empty(t, sheet.Rows)
}

func TestParseCSVHeaderOnly(t *testing.T) {
	sheet, err := ParseCSV(strings.NewReader("Name,Stock\n"))
	require.NoError(t, err)
	assert.Len(t, sheet.Headers, 2)
	assert.Empty(t, sheet.Rows)
}

func TestParseCSVStripsTemplateRequiredMarker(t *testing.T) {
	sheet, err := ParseCSV(strings.NewReader("Name *,Stock\nMilk,5\n"))
	require.NoError(t, err)
	assert.Equal(t, "name", sheet.Headers[0])
}

func TestParseCSVRaggedRows(t *testing.T) {
	input := "Name,Stock,Sale price\nMilk,5\nBread,2,25,extra\n"

	sheet, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, sheet.Rows, 2)
}
