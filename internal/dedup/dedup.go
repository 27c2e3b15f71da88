// Package dedup implements duplicate detection over question text.
// Two questions are duplicates iff their normalized texts are equal;
// there is no semantic or fuzzy matching.
package dedup

import (
	"strings"

	"github.com/prept/prept-api/internal/domain"
)

// Normalize returns the deduplication key for a question text:
// lowercased and stripped of surrounding whitespace.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Partition splits candidates into questions whose normalized text is not
// present in existing, and the normalized texts of those that are.
// Candidate order is preserved in unique. A candidate that duplicates an
// earlier candidate in the same batch is treated as a duplicate even if
// neither text is in existing.
//
// existing must be the owner's full active-corpus text set at call time;
// a stale set produces false negatives.
func Partition(
	existing map[string]struct{},
	candidates []*domain.Question,
) (unique []*domain.Question, duplicateTexts []string) {
	unique = make([]*domain.Question, 0, len(candidates))
	duplicateTexts = make([]string, 0)

	seen := make(map[string]struct{}, len(existing)+len(candidates))
	for text := range existing {
		seen[Normalize(text)] = struct{}{}
	}

	for _, candidate := range candidates {
		key := candidate.NormalizedText()
		if _, dup := seen[key]; dup {
			duplicateTexts = append(duplicateTexts, key)
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, candidate)
	}

	return unique, duplicateTexts
}
