package align

import (
	"encoding/json"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

// one-second spaced timed words
func timedWords(text string) []lexeme.TimedWord {
	var out []lexeme.TimedWord
	for i, f := range strings.Fields(text) {
		out = append(out, lexeme.TimedWord{Text: f, Lexeme: f, Start: float64(i), End: float64(i + 1)})
	}
	return out
}

func TestGlobalFillerRemoved(t *testing.T) {
	original := timedWords("i think um this is good")
	edited := lexeme.Tokenize("I think this is good")

	a := Global(original, edited)
	want := []int{0, 1, 3, 4, 5}
	if !reflect.DeepEqual(a.Matches, want) {
		t.Errorf("Matches = %v, want %v", a.Matches, want)
	}
	if a.Metrics.MatchedWordCount != 5 || a.Metrics.TTSWordCount != 0 {
		t.Errorf("matched/tts = %d/%d, want 5/0", a.Metrics.MatchedWordCount, a.Metrics.TTSWordCount)
	}
	if a.Metrics.MatchRatio != 1 {
		t.Errorf("MatchRatio = %v, want 1", a.Metrics.MatchRatio)
	}
	if a.Metrics.CompressionRatio != 0.8333 {
		t.Errorf("CompressionRatio = %v, want 0.8333", a.Metrics.CompressionRatio)
	}
	if a.Metrics.Method != MethodGlobal {
		t.Errorf("Method = %q, want %q", a.Metrics.Method, MethodGlobal)
	}
}

func TestGlobalRewriteLeavesUnmatched(t *testing.T) {
	original := timedWords("we developed a plan")
	edited := lexeme.Tokenize("we built a plan")

	a := Global(original, edited)
	want := []int{0, NoMatch, 2, 3}
	if !reflect.DeepEqual(a.Matches, want) {
		t.Errorf("Matches = %v, want %v", a.Matches, want)
	}
	if got := a.Unmatched(); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Unmatched = %v, want [1]", got)
	}
	if a.Metrics.TTSWordCount != 1 {
		t.Errorf("TTSWordCount = %d, want 1", a.Metrics.TTSWordCount)
	}
	if a.Metrics.MatchRatio != 0.75 {
		t.Errorf("MatchRatio = %v, want 0.75", a.Metrics.MatchRatio)
	}
}

func TestGlobalTieBreakConsumesOriginalFirst(t *testing.T) {
	// both [a] and [b] are longest common subsequences; preferring to move up
	// in the original on ties keeps the later edited token.
	original := timedWords("a b")
	edited := lexeme.Tokenize("b a")

	a := Global(original, edited)
	want := []int{NoMatch, 0}
	if !reflect.DeepEqual(a.Matches, want) {
		t.Errorf("Matches = %v, want %v", a.Matches, want)
	}
}

func TestGlobalRepeatedWordTakesLastOccurrence(t *testing.T) {
	original := timedWords("so so")
	edited := lexeme.Tokenize("so")

	a := Global(original, edited)
	if !reflect.DeepEqual(a.Matches, []int{1}) {
		t.Errorf("Matches = %v, want [1]", a.Matches)
	}
}

func TestGlobalPossessiveDrift(t *testing.T) {
	original := timedWords("the buddha's teaching spreads")
	edited := lexeme.Tokenize("the Buddha teaching spread")

	a := Global(original, edited)
	want := []int{0, 1, 2, 3}
	if !reflect.DeepEqual(a.Matches, want) {
		t.Errorf("Matches = %v, want %v", a.Matches, want)
	}
}

func TestGlobalEmptyInputs(t *testing.T) {
	a := Global(nil, lexeme.Tokenize("hello there"))
	if !reflect.DeepEqual(a.Matches, []int{NoMatch, NoMatch}) {
		t.Errorf("Matches = %v, want all unmatched", a.Matches)
	}
	if a.Metrics.MatchRatio != 0 || a.Metrics.CompressionRatio != 2 {
		t.Errorf("ratios = %v/%v, want 0/2", a.Metrics.MatchRatio, a.Metrics.CompressionRatio)
	}

	a = Global(timedWords("hello"), nil)
	if len(a.Matches) != 0 {
		t.Errorf("Matches = %v, want empty", a.Matches)
	}
}

func TestGlobalPreservesOrder(t *testing.T) {
	vocab := []string{"a", "the", "cat", "cats", "dog", "it's", "its", "run", "runs", "so"}
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		original := make([]lexeme.TimedWord, 40+rng.Intn(40))
		for i := range original {
			w := vocab[rng.Intn(len(vocab))]
			original[i] = lexeme.TimedWord{Text: w, Lexeme: w, Start: float64(i), End: float64(i) + 0.5}
		}
		edited := make([]lexeme.EditedLexeme, 10+rng.Intn(30))
		for j := range edited {
			w := vocab[rng.Intn(len(vocab))]
			edited[j] = lexeme.EditedLexeme{Text: w, Lexeme: w}
		}

		a := Global(original, edited)
		last := -1
		matched := 0
		for j, m := range a.Matches {
			if m == NoMatch {
				continue
			}
			matched++
			if m <= last {
				t.Fatalf("trial %d: match %d for edited %d is not after %d", trial, m, j, last)
			}
			if !lexeme.Matches(original[m].Lexeme, edited[j].Lexeme) {
				t.Fatalf("trial %d: accepted pair (%d, %d) does not match", trial, m, j)
			}
			last = m
		}
		if matched != a.Metrics.MatchedWordCount {
			t.Fatalf("trial %d: counted %d matches, metrics report %d", trial, matched, a.Metrics.MatchedWordCount)
		}
	}
}

func TestLCSPairsLength(t *testing.T) {
	tests := []struct {
		orig, edit string
		want       int
	}{
		{"a b c d", "a c d", 3},
		{"a b c", "x y", 0},
		{"a b a b", "b a", 2},
		{"x a y b z c", "a b c", 3},
	}

	for _, tt := range tests {
		t.Run(tt.orig+"|"+tt.edit, func(t *testing.T) {
			got := lcsPairs(strings.Fields(tt.orig), strings.Fields(tt.edit))
			if len(got) != tt.want {
				t.Errorf("got %d pairs (%v), want %d", len(got), got, tt.want)
			}
		})
	}
}

func TestBacktrackPacking(t *testing.T) {
	b := newBacktrack(5, 13)
	for i := 0; i < 5; i++ {
		for j := 0; j < 13; j++ {
			b.set(i, j, uint64((i+j)%4))
		}
	}
	b.set(2, 3, dirLeft)
	b.set(2, 3, dirDiag)
	for i := 0; i < 5; i++ {
		for j := 0; j < 13; j++ {
			want := uint64((i + j) % 4)
			if i == 2 && j == 3 {
				want = dirDiag
			}
			if got := b.get(i, j); got != want {
				t.Fatalf("get(%d, %d) = %d, want %d", i, j, got, want)
			}
		}
	}
}

func TestStrictFillerRemoved(t *testing.T) {
	original := timedWords("i think um this is good")
	edited := lexeme.Tokenize("i think this is good")

	a, err := Strict(original, edited)
	if err != nil {
		t.Fatalf("Strict failed: %v", err)
	}
	if !reflect.DeepEqual(a.Matches, []int{0, 1, 3, 4, 5}) {
		t.Errorf("Matches = %v", a.Matches)
	}
	if len(a.Unmatched()) != 0 {
		t.Errorf("Unmatched = %v, want none", a.Unmatched())
	}
	if a.Metrics.MatchedWordCount != 5 || a.Metrics.MatchRatio != 1 || a.Metrics.Method != MethodStrict {
		t.Errorf("unexpected metrics: %+v", a.Metrics)
	}
}

func TestStrictReorderFails(t *testing.T) {
	original := timedWords("a b c")

	tests := []struct {
		name     string
		edited   string
		index    int
		token    string
		anywhere bool
	}{
		{"reordered", "c a", 1, "a", true},
		{"rewritten", "a z", 1, "z", false},
		{"repeated", "b b", 1, "b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Strict(original, lexeme.Tokenize(tt.edited))
			var alignErr *AlignmentError
			if !errors.As(err, &alignErr) {
				t.Fatalf("expected *AlignmentError, got %v", err)
			}
			if alignErr.EditedIndex != tt.index || alignErr.Token != tt.token {
				t.Errorf("got token %q at %d, want %q at %d", alignErr.Token, alignErr.EditedIndex, tt.token, tt.index)
			}
			if alignErr.ExistsAnywhere != tt.anywhere {
				t.Errorf("ExistsAnywhere = %v, want %v", alignErr.ExistsAnywhere, tt.anywhere)
			}
			if alignErr.ExistsInSuffix {
				t.Error("ExistsInSuffix = true, want false")
			}
		})
	}
}

func TestStrictEmptyEdit(t *testing.T) {
	a, err := Strict(timedWords("a b"), nil)
	if err != nil {
		t.Fatalf("Strict failed: %v", err)
	}
	if a.Metrics.MatchRatio != 0 {
		t.Errorf("MatchRatio = %v, want 0", a.Metrics.MatchRatio)
	}
}

func TestNormalizeRanges(t *testing.T) {
	var raw []any
	payload := `[{"start": 5, "end": 3}, [0, 1], "7-8", {"from": 2, "to": 2}, "junk", {"start": 1}]`
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}

	got, err := NormalizeRanges(raw, 10, "delete range")
	if err != nil {
		t.Fatalf("NormalizeRanges failed: %v", err)
	}
	want := []Range{{Start: 0, End: 5}, {Start: 7, End: 8}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if SelectedCount(got) != 8 {
		t.Errorf("SelectedCount = %d, want 8", SelectedCount(got))
	}
}

func TestNormalizeRangesOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		raw  []any
	}{
		{"past end", []any{map[string]any{"start": 8.0, "end": 12.0}}},
		{"negative", []any{[]any{-1.0, 2.0}}},
		{"string past end", []any{"3 to 10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeRanges(tt.raw, 10, "clip 1 word range")
			var rangeErr *OutOfRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("expected *OutOfRangeError, got %v", err)
			}
			if rangeErr.Total != 10 || rangeErr.Field != "clip 1 word range" {
				t.Errorf("unexpected error context: %+v", rangeErr)
			}
		})
	}
}

func TestFromRanges(t *testing.T) {
	original := timedWords("i think um this is good")

	t.Run("delete", func(t *testing.T) {
		a, err := FromRanges(original, []Range{{Start: 2, End: 2}}, DeleteRanges)
		if err != nil {
			t.Fatalf("FromRanges failed: %v", err)
		}
		if !reflect.DeepEqual(a.Matches, []int{0, 1, 3, 4, 5}) {
			t.Errorf("Matches = %v", a.Matches)
		}
		if a.Metrics.DeletedWordCount == nil || *a.Metrics.DeletedWordCount != 1 {
			t.Errorf("DeletedWordCount = %v, want 1", a.Metrics.DeletedWordCount)
		}
		if a.Metrics.Method != MethodRanges || a.Metrics.TTSWordCount != 0 {
			t.Errorf("unexpected metrics: %+v", a.Metrics)
		}
		if a.Edited[2].Text != "this" {
			t.Errorf("edited[2] = %q, want this", a.Edited[2].Text)
		}
	})

	t.Run("keep", func(t *testing.T) {
		a, err := FromRanges(original, []Range{{Start: 1, End: 2}, {Start: 4, End: 4}}, KeepRanges)
		if err != nil {
			t.Fatalf("FromRanges failed: %v", err)
		}
		if !reflect.DeepEqual(a.Indices(), []int{1, 2, 4}) {
			t.Errorf("Indices = %v, want [1 2 4]", a.Indices())
		}
		if a.Metrics.DeletedWordCount != nil {
			t.Errorf("DeletedWordCount = %v, want nil", *a.Metrics.DeletedWordCount)
		}
	})

	t.Run("delete everything", func(t *testing.T) {
		_, err := FromRanges(original, []Range{{Start: 0, End: 5}}, DeleteRanges)
		var emptyErr *EmptySelectionError
		if !errors.As(err, &emptyErr) {
			t.Fatalf("expected *EmptySelectionError, got %v", err)
		}
		if emptyErr.OriginalCount != 6 {
			t.Errorf("OriginalCount = %d, want 6", emptyErr.OriginalCount)
		}
	})

	t.Run("keep nothing", func(t *testing.T) {
		_, err := FromRanges(original, nil, KeepRanges)
		var emptyErr *EmptySelectionError
		if !errors.As(err, &emptyErr) {
			t.Fatalf("expected *EmptySelectionError, got %v", err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := FromRanges(original, []Range{{Start: 4, End: 6}}, DeleteRanges)
		var rangeErr *OutOfRangeError
		if !errors.As(err, &rangeErr) {
			t.Fatalf("expected *OutOfRangeError, got %v", err)
		}
	})
}

func TestBuildRuns(t *testing.T) {
	edited := lexeme.Tokenize("a b c d e f")
	matches := []int{0, 1, NoMatch, NoMatch, 4, 2}

	runs, err := BuildRuns(edited, matches)
	if err != nil {
		t.Fatalf("BuildRuns failed: %v", err)
	}

	type summary struct {
		kind       RunKind
		start, end int
		sources    []int
	}
	want := []summary{
		{Original, 0, 1, []int{0, 1}},
		{Synthesized, 2, 3, nil},
		{Original, 4, 4, []int{4}},
		{Original, 5, 5, []int{2}},
	}
	if len(runs) != len(want) {
		t.Fatalf("got %d runs, want %d", len(runs), len(want))
	}
	for i, r := range runs {
		got := summary{r.Kind, r.EditedStart, r.EditedEnd, r.SourceIndices}
		if !reflect.DeepEqual(got, want[i]) {
			t.Errorf("run %d = %+v, want %+v", i, got, want[i])
		}
	}
}

func TestBuildRunsLengthMismatch(t *testing.T) {
	if _, err := BuildRuns(lexeme.Tokenize("a b"), []int{0}); err == nil {
		t.Error("expected error for length mismatch")
	}
}

func TestRunsPartitionEditedSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 100; trial++ {
		n := 1 + rng.Intn(30)
		edited := make([]lexeme.EditedLexeme, n)
		matches := make([]int, n)
		next := 0
		for j := range edited {
			edited[j] = lexeme.EditedLexeme{Text: "w", Lexeme: "w"}
			if rng.Intn(3) == 0 {
				matches[j] = NoMatch
				continue
			}
			next += rng.Intn(3)
			matches[j] = next
		}

		runs, err := BuildRuns(edited, matches)
		if err != nil {
			t.Fatalf("BuildRuns failed: %v", err)
		}

		pos := 0
		for i, r := range runs {
			if r.EditedStart != pos {
				t.Fatalf("trial %d: run %d starts at %d, want %d", trial, i, r.EditedStart, pos)
			}
			if len(r.Edited) != r.Len() {
				t.Fatalf("trial %d: run %d holds %d tokens for range of %d", trial, i, len(r.Edited), r.Len())
			}
			if i > 0 && runs[i-1].Kind == r.Kind && r.Kind == Synthesized {
				t.Fatalf("trial %d: adjacent synthesized runs %d and %d", trial, i-1, i)
			}
			if r.Kind == Original {
				if len(r.SourceIndices) != r.Len() {
					t.Fatalf("trial %d: run %d has %d sources for %d tokens", trial, i, len(r.SourceIndices), r.Len())
				}
				for k := 1; k < len(r.SourceIndices); k++ {
					if r.SourceIndices[k] < r.SourceIndices[k-1] {
						t.Fatalf("trial %d: run %d goes backward", trial, i)
					}
				}
			}
			pos = r.EditedEnd + 1
		}
		if pos != n {
			t.Fatalf("trial %d: runs cover %d tokens, want %d", trial, pos, n)
		}
	}
}

func TestRunKindText(t *testing.T) {
	data, err := json.Marshal(map[string]RunKind{"a": Original, "b": Synthesized})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"a":"original","b":"tts"}` {
		t.Errorf("got %s", data)
	}
}
