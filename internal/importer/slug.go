package importer

import (
	"fmt"
	"strings"
)

// slugFallback is the base used for names with no ASCII alphanumerics at all
// (symbol-only or fully non-Latin names), so derived slugs always satisfy the
// slug column's format.
const slugFallback = "product"

// Slugify derives a URL-safe slug from a product name: lower-case, any run of
// non-alphanumeric characters collapsed to a single hyphen, no leading or
// trailing hyphens. Names that yield no slug characters fall back to a
// generic base and rely on UniqueSlug for disambiguation.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		} else {
			pendingHyphen = true
		}
	}
	if b.Len() == 0 {
		return slugFallback
	}
	return b.String()
}

// UniqueSlug returns base if unused, otherwise base-1, base-2, ... until a
// free slug is found. Resolution is strictly sequential, so final slugs are
// deterministic given row order.
func UniqueSlug(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !used[candidate] {
			return candidate
		}
	}
}
