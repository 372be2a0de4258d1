// Package align maps an edited transcript back onto the timed words it was
// derived from.
//
// Three strategies are available: a global longest-common-subsequence
// alignment that tolerates rewrites (unmatched tokens are later
// synthesized), a strict subsequence scan for deletion-only edits that fails
// instead of synthesizing, and explicit index ranges where alignment is plain
// index membership.
package align

import (
	"math"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

// NoMatch marks an edited token that has no original counterpart.
const NoMatch = -1

// identifies how an alignment was produced
type Method string

const (
	MethodGlobal Method = "lcs_global_exact"
	MethodStrict Method = "strict_subsequence_exact_order"
	MethodRanges Method = "explicit_index_ranges"
)

// summary counts reported alongside every alignment
type Metrics struct {
	OriginalWordCount int     `json:"original_word_count"`
	EditedWordCount   int     `json:"edited_word_count"`
	MatchedWordCount  int     `json:"matched_word_count"`
	TTSWordCount      int     `json:"tts_word_count"`
	MatchRatio        float64 `json:"match_ratio"`
	CompressionRatio  float64 `json:"compression_ratio"`
	Method            Method  `json:"alignment_method"`
	DeletedWordCount  *int    `json:"deleted_word_count,omitempty"`
}

// Alignment pairs each edited token with an index into the original timed
// words, or NoMatch.
type Alignment struct {
	Edited  []lexeme.EditedLexeme
	Matches []int
	Metrics Metrics
}

// Unmatched returns the edited indices that have no original counterpart.
func (a Alignment) Unmatched() []int {
	var out []int
	for i, m := range a.Matches {
		if m == NoMatch {
			out = append(out, i)
		}
	}
	return out
}

func ratio(num, den int) float64 {
	return round4(float64(num) / float64(max(1, den)))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func newMetrics(original, edited, matched int, method Method) Metrics {
	return Metrics{
		OriginalWordCount: original,
		EditedWordCount:   edited,
		MatchedWordCount:  matched,
		TTSWordCount:      edited - matched,
		MatchRatio:        ratio(matched, edited),
		CompressionRatio:  ratio(edited, original),
		Method:            method,
	}
}
