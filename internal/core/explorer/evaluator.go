// Package explorer holds the map-exploration core: listing filtering,
// boundary containment, and selection/viewport reconciliation. Everything
// here is synchronous and free of I/O.
package explorer

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/samirrijal/propmap/internal/core/domain"
)

// Matches reports whether l passes the free-text query and every criterion.
func Matches(l domain.Listing, query string, c domain.FilterCriteria) bool {
	return MatchesSearch(l, query) &&
		matchesPrice(l, c.PriceRange) &&
		atLeast(l.Bedrooms, c.Bedrooms) &&
		atLeast(l.Bathrooms, c.Bathrooms) &&
		matchesArea(l, c.MinArea) &&
		matchesType(l, c.PropertyType) &&
		containsFold(l.Name, c.Title) &&
		containsFold(l.Description, c.Description)
}

// MatchesSearch reports whether query occurs, case-insensitively, in the
// listing's name, description, property type, or the decimal form of its
// price, bedrooms, bathrooms, or area. An empty query matches everything.
func MatchesSearch(l domain.Listing, query string) bool {
	if query == "" {
		return true
	}
	q := fold(query)
	for _, field := range []string{
		l.Name,
		l.Description,
		l.PropertyType,
		formatNumber(l.Price),
		strconv.Itoa(l.Bedrooms),
		strconv.Itoa(l.Bathrooms),
		formatNumber(l.Area),
	} {
		if strings.Contains(fold(field), q) {
			return true
		}
	}
	return false
}

func matchesPrice(l domain.Listing, r domain.PriceRange) bool {
	return r.Low <= l.Price && l.Price <= r.High
}

// atLeast implements "N+" semantics: a nil bound is no constraint.
func atLeast(v int, min *int) bool {
	return min == nil || v >= *min
}

func matchesArea(l domain.Listing, min *float64) bool {
	return min == nil || l.Area >= *min
}

func matchesType(l domain.Listing, t *string) bool {
	return t == nil || l.PropertyType == *t
}

// containsFold is a case-insensitive substring test; an empty needle matches.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(fold(haystack), fold(needle))
}

// fold lower-cases s with Unicode case folding. A Caser is stateful, so a
// fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// formatNumber renders f the shortest way that round-trips, without an
// exponent for ordinary magnitudes ("1200", "1200.5").
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
