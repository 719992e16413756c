// Package filter narrows entry lists by tag glob patterns.
package filter

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/felixgeelhaar/memlog/internal/store"
)

// Validate reports the first malformed pattern.
func Validate(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid tag pattern: %q", p)
		}
	}
	return nil
}

// MatchTags reports whether any tag matches any pattern.
func MatchTags(tags, patterns []string) bool {
	for _, pattern := range patterns {
		for _, tag := range tags {
			if ok, err := doublestar.Match(pattern, tag); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// ByTags keeps the entries with at least one tag matching one of patterns,
// preserving order. With no patterns the input is returned unchanged.
func ByTags(entries []store.Entry, patterns []string) ([]store.Entry, error) {
	if len(patterns) == 0 {
		return entries, nil
	}
	if err := Validate(patterns); err != nil {
		return nil, err
	}

	out := make([]store.Entry, 0, len(entries))
	for _, e := range entries {
		if MatchTags(e.Tags, patterns) {
			out = append(out, e)
		}
	}
	return out, nil
}
