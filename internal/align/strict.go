package align

import "github.com/mgpai22/trimcast/internal/lexeme"

// Strict aligns a deletion-only edit by scanning the original once, left to
// right. Every edited token must match a later original token than the one
// before it; the first one that does not yields an *AlignmentError. There is
// no fallback to synthesis.
func Strict(original []lexeme.TimedWord, edited []lexeme.EditedLexeme) (Alignment, error) {
	matches := make([]int, 0, len(edited))
	scan := 0
	for j, tok := range edited {
		hit := NoMatch
		for scan < len(original) {
			if lexeme.Matches(original[scan].Lexeme, tok.Lexeme) {
				hit = scan
				scan++
				break
			}
			scan++
		}
		if hit == NoMatch {
			return Alignment{}, &AlignmentError{
				Token:          tok.Text,
				EditedIndex:    j,
				ExistsAnywhere: containsMatch(original, tok.Lexeme),
				ExistsInSuffix: containsMatch(original[scan:], tok.Lexeme),
			}
		}
		matches = append(matches, hit)
	}

	metrics := newMetrics(len(original), len(edited), len(edited), MethodStrict)
	metrics.MatchRatio = 0
	if len(edited) > 0 {
		metrics.MatchRatio = 1
	}
	return Alignment{Edited: edited, Matches: matches, Metrics: metrics}, nil
}

func containsMatch(words []lexeme.TimedWord, lex string) bool {
	for _, w := range words {
		if lexeme.Matches(w.Lexeme, lex) {
			return true
		}
	}
	return false
}
