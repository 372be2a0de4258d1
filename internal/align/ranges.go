package align

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

// inclusive index range over the original timed words
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of indices covered by the range.
func (r Range) Len() int {
	return r.End - r.Start + 1
}

// whether ranges name words to drop or words to keep
type RangeMode string

const (
	DeleteRanges RangeMode = "delete"
	KeepRanges   RangeMode = "keep"
)

var (
	rangeStartKeys = []string{"start", "start_index", "from", "begin"}
	rangeEndKeys   = []string{"end", "end_index", "to", "stop"}
	rangeText      = regexp.MustCompile(`(?i)(-?\d+)\s*(?:-|,|to|:)\s*(-?\d+)`)
)

// NormalizeRanges turns loosely shaped range items, as decoded from an
// editor's JSON reply, into sorted and merged ranges. Items may be objects
// ({"start":1,"end":4}, also start_index/from/begin and end_index/to/stop),
// two-element arrays, or strings like "1-4". Unreadable items are skipped,
// reversed pairs are swapped, and overlapping or adjacent ranges are merged.
// A range outside [0, total-1] yields an *OutOfRangeError.
func NormalizeRanges(raw []any, total int, field string) ([]Range, error) {
	var ranges []Range
	for _, item := range raw {
		r, ok := coerceRange(item)
		if !ok {
			continue
		}
		if r.End < r.Start {
			r.Start, r.End = r.End, r.Start
		}
		ranges = append(ranges, r)
	}
	return MergeRanges(ranges, total, field)
}

// MergeRanges validates, sorts and merges already typed ranges.
func MergeRanges(ranges []Range, total int, field string) ([]Range, error) {
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var merged []Range
	for _, r := range sorted {
		if r.Start < 0 || r.End >= total || r.End < r.Start {
			return nil, &OutOfRangeError{Field: field, Start: r.Start, End: r.End, Total: total}
		}
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End+1 {
			merged[n-1].End = max(merged[n-1].End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	return merged, nil
}

// SelectedCount returns the number of indices covered by merged ranges.
func SelectedCount(ranges []Range) int {
	n := 0
	for _, r := range ranges {
		n += r.Len()
	}
	return n
}

func coerceRange(item any) (Range, bool) {
	switch v := item.(type) {
	case map[string]any:
		s, okS := firstInt(v, rangeStartKeys)
		e, okE := firstInt(v, rangeEndKeys)
		if !okS || !okE {
			return Range{}, false
		}
		return Range{Start: s, End: e}, true
	case []any:
		if len(v) < 2 {
			return Range{}, false
		}
		s, okS := toInt(v[0])
		e, okE := toInt(v[1])
		if !okS || !okE {
			return Range{}, false
		}
		return Range{Start: s, End: e}, true
	case string:
		m := rangeText.FindStringSubmatch(v)
		if m == nil {
			return Range{}, false
		}
		s, _ := strconv.Atoi(m[1])
		e, _ := strconv.Atoi(m[2])
		return Range{Start: s, End: e}, true
	}
	return Range{}, false
}

func firstInt(obj map[string]any, keys []string) (int, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return toInt(v)
		}
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}

// FromRanges aligns by index membership. In delete mode the edited sequence
// is every original word outside the ranges; in keep mode it is every word
// inside them. Ranges must already be normalized. An empty result yields an
// *EmptySelectionError.
func FromRanges(original []lexeme.TimedWord, ranges []Range, mode RangeMode) (Alignment, error) {
	mask := make([]bool, len(original))
	for _, r := range ranges {
		if r.Start < 0 || r.End >= len(original) || r.End < r.Start {
			return Alignment{}, &OutOfRangeError{Field: fmt.Sprintf("%s range", mode), Start: r.Start, End: r.End, Total: len(original)}
		}
		for i := r.Start; i <= r.End; i++ {
			mask[i] = true
		}
	}

	keep := mode == KeepRanges
	var (
		edited  []lexeme.EditedLexeme
		matches []int
	)
	for i, w := range original {
		if mask[i] != keep {
			continue
		}
		edited = append(edited, lexeme.EditedLexeme{Text: w.Text, Lexeme: w.Lexeme})
		matches = append(matches, i)
	}
	if len(edited) == 0 {
		return Alignment{}, &EmptySelectionError{Mode: mode, OriginalCount: len(original)}
	}

	metrics := newMetrics(len(original), len(edited), len(edited), MethodRanges)
	metrics.MatchRatio = 1
	if mode == DeleteRanges {
		deleted := len(original) - len(edited)
		metrics.DeletedWordCount = &deleted
	}
	return Alignment{Edited: edited, Matches: matches, Metrics: metrics}, nil
}

// Indices returns the original indices an alignment keeps, in order.
func (a Alignment) Indices() []int {
	out := make([]int, 0, len(a.Matches))
	for _, m := range a.Matches {
		if m != NoMatch {
			out = append(out, m)
		}
	}
	return out
}
