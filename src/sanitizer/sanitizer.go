// Package sanitizer applies ordered pattern/replacement rules to fetched
// content, neutralizing known hijack strings before they reach the LLM.
package sanitizer

import (
	"regexp"

	"github.com/rs/zerolog"

	"github.com/chainlink-tools/safe-fetch/src/rules"
)

// Sanitizer applies rule sets to text. Safe for reuse across calls; it holds
// no per-call state.
type Sanitizer struct {
	logger zerolog.Logger
}

// New creates a Sanitizer that logs rule diagnostics to the given logger.
func New(logger zerolog.Logger) *Sanitizer {
	return &Sanitizer{logger: logger.With().Str("area", "sanitizer").Logger()}
}

// Apply runs every rule against text in order, each rule consuming the
// previous rule's output, and returns the sanitized text along with the
// total number of individual replacements made across all rules.
//
// A rule whose pattern does not compile is logged and skipped; the remaining
// rules still apply. Compilation is the only failure mode: Go's RE2 engine
// cannot fault at match time. Identical (text, rules) inputs always produce
// identical output and count.
func (s *Sanitizer) Apply(text string, rs rules.RuleSet) (string, int) {
	current := text
	total := 0

	for _, r := range rs {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			s.logger.Warn().Err(err).Str("pattern", r.Pattern).Msg("invalid rule pattern, skipping")
			continue
		}

		matches := re.FindAllStringIndex(current, -1)
		if len(matches) == 0 {
			continue
		}
		current = re.ReplaceAllString(current, r.Replacement)
		total += len(matches)
	}

	return current, total
}
