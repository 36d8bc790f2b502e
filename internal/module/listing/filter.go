package listing

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/classifieds/internal/domain"
)

// NewSearchFilter resolves raw browse parameters into a store predicate.
// A category equal to any of allCategories (case-insensitive) means "every
// category".
func NewSearchFilter(query, category, region string, allCategories []string) domain.ListingFilter {
	var f domain.ListingFilter

	if strings.TrimSpace(query) != "" {
		f.Variants = ExpandQuery(query)
	}

	category = strings.TrimSpace(category)
	if category != "" && !isAllCategories(category, allCategories) {
		f.Category = category
	}
	f.Region = strings.TrimSpace(region)

	return f
}

func isAllCategories(category string, sentinels []string) bool {
	for _, s := range sentinels {
		if strings.EqualFold(category, s) {
			return true
		}
	}
	return false
}

// SearchScope returns a GORM scope applying f to the listings table, newest
// first. Every variant matches title or city as a substring.
func SearchScope(f domain.ListingFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		title, city, op := searchColumns(db)

		var text []clause.Expression
		for _, v := range f.Variants {
			if v == "" {
				continue
			}
			pattern := "%" + v + "%"
			text = append(text,
				clause.Expr{SQL: title + " " + op + " ?", Vars: []any{pattern}},
				clause.Expr{SQL: city + " " + op + " ?", Vars: []any{pattern}},
			)
		}
		if len(text) > 0 {
			db = db.Where(clause.Or(text...))
		}

		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.Region != "" {
			db = db.Where("region = ?", f.Region)
		}

		return db.Order("id DESC")
	}
}

// searchColumns picks the matched columns and operator for the dialect.
// Postgres folds case itself with ILIKE. SQLite's LIKE folds ASCII only, so
// there the lowercased copies maintained by domain.Listing are matched.
func searchColumns(db *gorm.DB) (title, city, op string) {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "title", "city", "ILIKE"
	}
	return "title_lower", "city_lower", "LIKE"
}
