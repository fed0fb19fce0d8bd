package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

	accentStripper = transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)

	transliterations = strings.NewReplacer(
		"ø", "o", "æ", "ae", "œ", "oe", "ß", "ss", "đ", "d", "ł", "l",
	)

	// Punctuation inside words is dropped rather than turned into a separator.
	droppedPunctuation = strings.NewReplacer(
		".", "", "'", "", "’", "", "\"", "", ",", "", "!", "", "?", "",
	)
)

// DefaultSlug is used when a title has no sluggable characters.
const DefaultSlug = "show"

// Slugify derives a URL-safe slug from a title. The same title always yields
// the same slug: "Deep House Vol.1" becomes "deep-house-vol1".
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	if normalized, _, err := transform.String(accentStripper, slug); err == nil {
		slug = normalized
	}
	slug = transliterations.Replace(slug)
	slug = droppedPunctuation.Replace(slug)
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return DefaultSlug
	}
	return slug
}

// UniqueSlug returns base when it is not taken, otherwise base-N with the
// smallest free N starting at 2.
func UniqueSlug(base string, taken []string) string {
	used := make(map[string]struct{}, len(taken))
	for _, s := range taken {
		used[s] = struct{}{}
	}
	if _, ok := used[base]; !ok {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, ok := used[candidate]; !ok {
			return candidate
		}
	}
}
