package helper

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultSlugMaxLen = 160

// GenerateSlug normalizes a string into a slug:
// lower-case, non-alnum runs collapsed to a single "-", trimmed at both ends.
func GenerateSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	out := strings.Trim(b.String(), "-")
	if len(out) > DefaultSlugMaxLen {
		out = strings.Trim(out[:DefaultSlugMaxLen], "-")
	}
	return out
}

// EnsureUniqueSlug returns base if free on table.column, otherwise tries
// base plus a short random suffix a bounded number of times. Exhausting the
// retries is a configuration problem (the namespace is effectively full).
// An empty base (a title made of nothing but symbols) falls back to a
// random token so the column never ends up empty.
func EnsureUniqueSlug(db *gorm.DB, base, table, column string) (string, error) {
	const maxAttempts = 5

	if base == "" {
		base = strings.Split(uuid.New().String(), "-")[0]
	}
	candidate := base
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var count int64
		if err := db.Table(table).
			Where(fmt.Sprintf("%s = ?", column), candidate).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		suffix := strings.Split(uuid.New().String(), "-")[0]
		candidate = fmt.Sprintf("%s-%s", base, suffix)
	}

	return "", ErrConfiguration("could not generate a unique slug for " + table)
}
