package constants

import (
	"strings"
)

type Category string

const (
	Food          Category = "Food"
	Transport     Category = "Transport"
	Shopping      Category = "Shopping"
	Entertainment Category = "Entertainment"
	Utilities     Category = "Utilities"
	Other         Category = "Other"
)

var allCategories = []Category{
	Food,
	Transport,
	Shopping,
	Entertainment,
	Utilities,
	Other,
}

// CategoryKeywords pairs a category with its trigger keywords. Order matters:
// the first entry whose keyword appears in the text wins, so "gas" always
// resolves to Transport even though it is also listed under Utilities.
type CategoryKeywords struct {
	Category Category
	Keywords []string
}

var KeywordTaxonomy = []CategoryKeywords{
	{Food, []string{"restaurant", "cafe", "food", "pizza", "burger", "lunch", "dinner", "breakfast"}},
	{Transport, []string{"uber", "taxi", "gas", "fuel", "metro", "bus", "train"}},
	{Shopping, []string{"store", "shop", "mall", "clothes", "shoe"}},
	{Entertainment, []string{"cinema", "movie", "theater", "game", "sport"}},
	{Utilities, []string{"electric", "water", "gas", "internet", "phone"}},
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// IsValid reports whether input matches one of the closed category labels,
// case-insensitively.
func IsValid(input string) bool {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return true
		}
	}
	return false
}

// Canonicalize maps input onto the closed set, collapsing anything
// unrecognized (or empty) to Other.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}
	return Other, false
}
