// Package search builds parameterized queries over the wardrobe tables from
// optional filter and sort criteria. Every user-supplied value is passed as
// a bound argument; nothing from the criteria is ever concatenated into the
// query text.
package search

import (
	"strings"
)

// SortKey names a sortable column. Anything outside the whitelist silently
// falls back to SortByName so malformed or injected keys can never reach
// the query text.
type SortKey string

const (
	SortByName         SortKey = "name"
	SortByPurchaseDate SortKey = "purchase_date"
)

// Criteria is one bundle of optional filters over clothing items.
// The zero value selects everything in the stable default order
// (name ascending).
type Criteria struct {
	// Query is matched case-insensitively as a substring against name,
	// material and brand. Blank (after trimming) means no text filter.
	Query string

	// Categories and Seasons are inclusion filters; an empty slice means
	// the dimension is unfiltered. Values within one slice are OR'd,
	// the dimensions are AND'd against each other and the text filter.
	Categories []string
	Seasons    []string

	SortBy     SortKey
	Descending bool
}

const itemColumns = `id, name, category, season, color_red, color_green, color_blue,
	material, brand, purchase_date, price, favorite, image_uri`

// BuildItems returns the SELECT over clothing_items for the given criteria
// together with its bound arguments.
func BuildItems(c Criteria) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString("SELECT ")
	sb.WriteString(itemColumns)
	sb.WriteString(" FROM clothing_items")

	writeWhere(&sb, &args, c)

	sb.WriteString(" ORDER BY ")
	sb.WriteString(string(sortColumn(c.SortBy)))
	if c.Descending {
		sb.WriteString(" DESC")
	} else {
		sb.WriteString(" ASC")
	}

	return sb.String(), args
}

// BuildOutfits returns the outfit search query: every outfit matching the
// optional name filter together with its item count. The join is an outer
// one so outfits with zero items still appear, with a count of 0.
func BuildOutfits(query string) (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString(`SELECT o.id, o.name, COUNT(oi.item_id) FROM outfits o
	LEFT JOIN outfit_items oi ON oi.outfit_id = o.id`)

	if q := strings.TrimSpace(query); q != "" {
		sb.WriteString(" WHERE LOWER(o.name) LIKE LOWER(?)")
		args = append(args, like(q))
	}

	sb.WriteString(" GROUP BY o.id, o.name ORDER BY o.name ASC")

	return sb.String(), args
}

func writeWhere(sb *strings.Builder, args *[]any, c Criteria) {
	var clauses []string

	if q := strings.TrimSpace(c.Query); q != "" {
		clauses = append(clauses,
			"(LOWER(name) LIKE LOWER(?) OR LOWER(material) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?))")
		p := like(q)
		*args = append(*args, p, p, p)
	}

	if len(c.Categories) > 0 {
		clauses = append(clauses, "category IN ("+placeholders(len(c.Categories))+")")
		for _, v := range c.Categories {
			*args = append(*args, v)
		}
	}

	if len(c.Seasons) > 0 {
		clauses = append(clauses, "season IN ("+placeholders(len(c.Seasons))+")")
		for _, v := range c.Seasons {
			*args = append(*args, v)
		}
	}

	if len(clauses) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(clauses, " AND "))
	}
}

// sortColumn maps a sort key onto a real column, falling back to name for
// anything unrecognized.
func sortColumn(k SortKey) SortKey {
	switch k {
	case SortByName, SortByPurchaseDate:
		return k
	default:
		return SortByName
	}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func like(q string) string {
	return "%" + q + "%"
}
