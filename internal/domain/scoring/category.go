package scoring

import "strings"

// Category selects which family of templates renders a field.
type Category string

// Field categories.
const (
	// CategoryString covers scalar keyword fields (post_title, post_type, menu_order).
	CategoryString Category = "string"
	// CategoryTaxonomyObject covers arrays of term objects carrying a name property.
	CategoryTaxonomyObject Category = "taxonomy_object"
	// CategoryMetaObject covers meta arrays whose entries carry a raw property.
	CategoryMetaObject Category = "meta_object"
)

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	return c == CategoryString || c == CategoryTaxonomyObject || c == CategoryMetaObject
}

// MenuOrderField is the canonical name every menu_order variant collapses to.
const MenuOrderField = "menu_order"

// DefaultTaxonomyPrefixes lists field prefixes that address term object collections.
var DefaultTaxonomyPrefixes = []string{"terms."}

// Categorizer derives the field category from a field name.
type Categorizer struct {
	taxonomyPrefixes []string
}

// NewCategorizer creates a categorizer. Empty prefixes fall back to DefaultTaxonomyPrefixes.
func NewCategorizer(taxonomyPrefixes ...string) Categorizer {
	if len(taxonomyPrefixes) == 0 {
		taxonomyPrefixes = DefaultTaxonomyPrefixes
	}
	p := make([]string, 0, len(taxonomyPrefixes))
	for _, prefix := range taxonomyPrefixes {
		if prefix != "" {
			p = append(p, prefix)
		}
	}
	return Categorizer{taxonomyPrefixes: p}
}

// Normalize rewrites any field mentioning menu_order to the bare menu_order field.
func Normalize(field string) string {
	if strings.Contains(strings.ToLower(field), MenuOrderField) {
		return MenuOrderField
	}
	return field
}

// Categorize normalizes the field and returns it together with its category.
func (c Categorizer) Categorize(field string) (string, Category) {
	field = Normalize(field)
	lower := strings.ToLower(field)

	if strings.Contains(lower, "meta") {
		return field, CategoryMetaObject
	}
	if c.IsTaxonomy(field) {
		return field, CategoryTaxonomyObject
	}
	return field, CategoryString
}

// IsTaxonomy reports whether the field starts with one of the taxonomy prefixes.
func (c Categorizer) IsTaxonomy(field string) bool {
	lower := strings.ToLower(field)
	for _, prefix := range c.taxonomyPrefixes {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
