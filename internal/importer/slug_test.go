package importer

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Amul Milk":            "amul-milk",
		"Amul  Milk (500 ml)":  "amul-milk-500-ml",
		"--Fresh Bread--":      "fresh-bread",
		"UPPER case":           "upper-case",
		"a&b@c":                "a-b-c",
		"Basmati Rice 5kg":     "basmati-rice-5kg",
	}
	for name, want := range cases {
		got := Slugify(name)
		assert.Equal(t, want, got)
		assert.Regexp(t, slugPattern, got)
	}
}

func TestSlugifyNoSlugCharactersFallsBack(t *testing.T) {
	for _, name := range []string{"!!!", "दूध", "---", "  ", "★★★"} {
		got := Slugify(name)
		assert.Equal(t, "product", got)
		assert.Regexp(t, slugPattern, got)
	}

	used := map[string]bool{}
	first := UniqueSlug(Slugify("!!!"), used)
	used[first] = true
	second := UniqueSlug(Slugify("दूध"), used)

	assert.Equal(t, "product", first)
	assert.Equal(t, "product-1", second)
	assert.Regexp(t, slugPattern, second)
}

func TestUniqueSlugSequentialSuffixes(t *testing.T) {
	used := map[string]bool{}

	first := UniqueSlug("amul-milk", used)
	used[first] = true
	second := UniqueSlug("amul-milk", used)
	used[second] = true
	third := UniqueSlug("amul-milk", used)

	assert.Equal(t, "amul-milk", first)
	assert.Equal(t, "amul-milk-1", second)
	assert.Equal(t, "amul-milk-2", third)
}
