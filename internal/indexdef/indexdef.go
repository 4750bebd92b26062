// Package indexdef recovers column order and sort direction from a backend's
// textual index definition, e.g. the indexdef column of pg_indexes.
package indexdef

import (
	"strings"

	"github.com/koustreak/dbscribe/internal/errs"
	"github.com/koustreak/dbscribe/internal/schema"
)

// Definition is what Parse extracts from one index definition.
type Definition struct {
	Unique  bool
	Columns []schema.IndexColumn
}

var quoteReplacer = strings.NewReplacer(`"`, "", "`", "", "[", "", "]", "")

// Parse reads "CREATE [UNIQUE] INDEX name ON table (col [DESC], ...)" shaped
// text. Anything after the column list, such as WHERE or INCLUDE, is ignored.
func Parse(def string) (*Definition, error) {
	open := strings.IndexByte(def, '(')
	if open < 0 {
		return nil, errs.MalformedIndexDefinition(def)
	}
	closing := matchingParen(def, open)
	if closing < 0 {
		return nil, errs.MalformedIndexDefinition(def)
	}

	parts := splitTopLevel(def[open+1 : closing])
	cols := make([]schema.IndexColumn, 0, len(parts))
	for _, part := range parts {
		col, ok := parseColumn(part)
		if !ok {
			return nil, errs.MalformedIndexDefinition(def)
		}
		cols = append(cols, col)
	}

	return &Definition{
		Unique:  hasUniqueToken(def[:open]),
		Columns: cols,
	}, nil
}

func parseColumn(token string) (schema.IndexColumn, bool) {
	token = strings.TrimSpace(quoteReplacer.Replace(token))
	for _, suffix := range []string{" NULLS FIRST", " NULLS LAST"} {
		token = strings.TrimSuffix(token, suffix)
	}

	dir := schema.Ascending
	switch {
	case strings.HasSuffix(token, " DESC"):
		dir = schema.Descending
		token = strings.TrimSuffix(token, " DESC")
	case strings.HasSuffix(token, " ASC"):
		token = strings.TrimSuffix(token, " ASC")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return schema.IndexColumn{}, false
	}
	return schema.IndexColumn{Name: token, SortDirection: dir}, true
}

func hasUniqueToken(prefix string) bool {
	for _, word := range strings.Fields(prefix) {
		if strings.EqualFold(word, "UNIQUE") {
			return true
		}
	}
	return false
}

// matchingParen returns the index of the ")" closing the "(" at open, or -1.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits on commas not nested in parentheses, so expression
// columns like lower(a, b) stay whole.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
