package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned for category labels outside the closed set.
var ErrUnknownCategory = errors.New("unknown category")

// Category is a transaction category label drawn from a closed set.
type Category string

// The closed category set.
const (
	CategoryFood           Category = "Food & Dining"
	CategoryTransportation Category = "Transportation"
	CategoryShopping       Category = "Shopping"
	CategoryEntertainment  Category = "Entertainment"
	CategoryBills          Category = "Bills & Utilities"
	CategoryHealthcare     Category = "Healthcare"
	CategoryEducation      Category = "Education"
	CategoryTravel         Category = "Travel"
	CategoryIncome         Category = "Income"
	CategoryInvestment     Category = "Investment"
	CategoryOther          Category = "Other"
)

var allCategories = []Category{
	CategoryFood,
	CategoryTransportation,
	CategoryShopping,
	CategoryEntertainment,
	CategoryBills,
	CategoryHealthcare,
	CategoryEducation,
	CategoryTravel,
	CategoryIncome,
	CategoryInvestment,
	CategoryOther,
}

// Categories returns the closed category set in display order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the closed set, ignoring case and surrounding space.
// An empty string parses to the empty category so callers can request classification.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, known := range allCategories {
		if strings.EqualFold(s, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
