package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var categorySlugRegex = regexp.MustCompile(`^[a-z0-9-]{3,24}$`)

// reservedCategorySlugs are path segments the router already owns.
var reservedCategorySlugs = map[string]struct{}{
	"admin":         {},
	"api":           {},
	"auth":          {},
	"categories":    {},
	"services":      {},
	"orders":        {},
	"proposals":     {},
	"payments":      {},
	"reviews":       {},
	"chat":          {},
	"subscriptions": {},
	"users":         {},
	"ws":            {},
	"swagger":       {},
	"metrics":       {},
	"login":         {},
	"signup":        {},
}

// ValidateCategorySlug validates catalog category slug format and reserved names.
func ValidateCategorySlug(slug string) error {
	if !categorySlugRegex.MatchString(slug) {
		return fmt.Errorf("slug must be 3-24 characters and contain only lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return fmt.Errorf("slug cannot start or end with a hyphen")
	}

	if _, exists := reservedCategorySlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}
