// Package normalize canonicalizes user-supplied values before they are
// stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/posthub/internal/domain/models"
)

// Email trims and lowercases an address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims and collapses internal runs of whitespace. Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role lowercases a role; unknown roles become "".
func Role(s string) string {
	switch r := strings.ToLower(strings.TrimSpace(s)); r {
	case models.RoleAdmin, models.RoleUser:
		return r
	default:
		return ""
	}
}

// Status lowercases a status; unknown statuses become "".
func Status(s string) string {
	switch st := strings.ToLower(strings.TrimSpace(s)); st {
	case models.StatusActive, models.StatusInactive, models.StatusPending:
		return st
	default:
		return ""
	}
}

// Country trims a country name. Grouping is case-insensitive downstream,
// so case is kept as entered.
func Country(s string) string {
	return Name(s)
}

// Categories flattens repeated and comma-separated values into a list of
// trimmed, non-empty labels in first-seen order without duplicates.
func Categories(values []string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			c := Name(part)
			if c == "" {
				continue
			}
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Languages splits like Categories.
func Languages(values []string) []string {
	return Categories(values)
}
