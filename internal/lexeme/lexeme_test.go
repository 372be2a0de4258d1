package lexeme

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hello", []string{"hello"}},
		{"Hello,", []string{"hello"}},
		{"it's", []string{"it's"}},
		{"Buddha's", []string{"buddha's"}},
		{"don’t", []string{"don't"}},
		{"well,okay", []string{"well", "okay"}},
		{"covid-19", []string{"covid", "19"}},
		{"...", nil},
		{"", nil},
		{"rock'n'roll", []string{"rock'n", "roll"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Normalize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitDividesSpan(t *testing.T) {
	words := Split("well,okay", 1.0, 2.0)
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Text != "well" || words[1].Text != "okay" {
		t.Errorf("unexpected texts: %q, %q", words[0].Text, words[1].Text)
	}
	if !approx(words[0].Start, 1.0) || !approx(words[0].End, 1.5) {
		t.Errorf("first span = [%v, %v], want [1, 1.5]", words[0].Start, words[0].End)
	}
	if !approx(words[1].Start, 1.5) || !approx(words[1].End, 2.0) {
		t.Errorf("second span = [%v, %v], want [1.5, 2]", words[1].Start, words[1].End)
	}
}

func TestSplitKeepsRawTextForSingleLexeme(t *testing.T) {
	words := Split(" Hello, ", 0, 0)
	if len(words) != 1 {
		t.Fatalf("expected 1 word, got %d", len(words))
	}
	if words[0].Text != "Hello," {
		t.Errorf("Text = %q, want %q", words[0].Text, "Hello,")
	}
	if words[0].Lexeme != "hello" {
		t.Errorf("Lexeme = %q, want hello", words[0].Lexeme)
	}
	if !approx(words[0].End-words[0].Start, MinSpan) {
		t.Errorf("span = %v, want MinSpan", words[0].End-words[0].Start)
	}
}

func TestSplitDropsPunctuation(t *testing.T) {
	if got := Split("--", 0, 1); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("I think, this is... good-stuff !")
	want := []EditedLexeme{
		{Text: "I", Lexeme: "i"},
		{Text: "think,", Lexeme: "think"},
		{Text: "this", Lexeme: "this"},
		{Text: "is...", Lexeme: "is"},
		{Text: "good", Lexeme: "good"},
		{Text: "stuff", Lexeme: "stuff"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %+v, want %+v", got, want)
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"good", "good", true},
		{"buddha's", "buddha", true},
		{"buddha", "buddha's", true},
		{"dont", "don't", true},
		{"spreads", "spread", true},
		{"spread", "spreads", true},
		{"cat", "cats", true},
		{"developed", "develop", false},
		{"good", "great", false},
		{"is", "i", true},
		{"ss", "s", true},
		{"a", "b", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := Matches(tt.a, tt.b); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCanon(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"spreads", "spread"},
		{"buddha's", "buddha"},
		{"bus", "bus"},
		{"is", "is"},
		{"cats", "cat"},
		{"Hello", "hello"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Canon(tt.input); got != tt.want {
				t.Errorf("Canon(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonAgreesWithMatches(t *testing.T) {
	pairs := [][2]string{
		{"spreads", "spread"},
		{"buddha's", "buddha"},
		{"don't", "dont"},
		{"thinks", "think"},
	}
	for _, p := range pairs {
		if Canon(p[0]) != Canon(p[1]) {
			t.Errorf("Canon(%q) = %q, Canon(%q) = %q; want equal", p[0], Canon(p[0]), p[1], Canon(p[1]))
		}
		if !Matches(p[0], p[1]) {
			t.Errorf("Matches(%q, %q) = false, want true", p[0], p[1])
		}
	}
}

func TestCollectTimedWordsWithWordTimestamps(t *testing.T) {
	segments := []Segment{
		{
			Text:  "second segment",
			Start: 2,
			End:   3,
			Words: []Word{{Text: "second", Start: 2, End: 2.5}, {Text: "segment", Start: 2.5, End: 3}},
		},
		{
			Text:  "First, well,okay",
			Start: 0,
			End:   2,
			Words: []Word{{Text: "First,", Start: 0, End: 1}, {Text: "well,okay", Start: 1, End: 2}, {Text: "...", Start: 2, End: 2}},
		},
	}

	got := CollectTimedWords(segments)
	wantTexts := []string{"First,", "well", "okay", "second", "segment"}
	if len(got) != len(wantTexts) {
		t.Fatalf("expected %d words, got %d: %+v", len(wantTexts), len(got), got)
	}
	for i, w := range got {
		if w.Text != wantTexts[i] {
			t.Errorf("word %d: got %q, want %q", i, w.Text, wantTexts[i])
		}
		if i > 0 && w.Start < got[i-1].Start {
			t.Errorf("word %d starts before word %d", i, i-1)
		}
	}
}

func TestCollectTimedWordsSpreadsSegmentText(t *testing.T) {
	segments := []Segment{{Text: "one two three four", Start: 0, End: 4}}

	got := CollectTimedWords(segments)
	if len(got) != 4 {
		t.Fatalf("expected 4 words, got %d", len(got))
	}
	for i, w := range got {
		if !approx(w.Start, float64(i)) || !approx(w.End, float64(i+1)) {
			t.Errorf("word %d: span [%v, %v], want [%d, %d]", i, w.Start, w.End, i, i+1)
		}
	}
}

func TestCollectTimedWordsClampsNegativeStart(t *testing.T) {
	segments := []Segment{{Words: []Word{{Text: "early", Start: -0.5, End: -0.4}}}}

	got := CollectTimedWords(segments)
	if len(got) != 1 {
		t.Fatalf("expected 1 word, got %d", len(got))
	}
	if got[0].Start != 0 {
		t.Errorf("Start = %v, want 0", got[0].Start)
	}
	if got[0].End < got[0].Start+MinSpan {
		t.Errorf("End = %v, want >= %v", got[0].End, got[0].Start+MinSpan)
	}
}

func TestTimedWordsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts", "transcript_words.json")
	words := []TimedWord{
		{Text: "Hello,", Lexeme: "hello", Start: 0, End: 0.4},
		{Text: "world", Lexeme: "world", Start: 0.4, End: 0.9},
	}

	if err := WriteTimedWords(path, words); err != nil {
		t.Fatalf("WriteTimedWords failed: %v", err)
	}
	got, err := LoadTimedWords(path)
	if err != nil {
		t.Fatalf("LoadTimedWords failed: %v", err)
	}
	if !reflect.DeepEqual(got, words) {
		t.Errorf("got %+v, want %+v", got, words)
	}
}

func TestLoadTimedWordsRepairsRecords(t *testing.T) {
	content := `{"words": [
		{"index": 0, "text": "Later", "start": 2.0, "end": 1.0},
		{"index": 1, "text": "", "normalized": "", "start": 0, "end": 1},
		{"index": 2, "text": "First", "normalized": "FIRST", "start": 0.5, "end": 1.0}
	]}`
	path := filepath.Join(t.TempDir(), "words.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	got, err := LoadTimedWords(path)
	if err != nil {
		t.Fatalf("LoadTimedWords failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 words, got %d", len(got))
	}
	if got[0].Lexeme != "first" {
		t.Errorf("first lexeme = %q, want first", got[0].Lexeme)
	}
	if got[1].Lexeme != "later" {
		t.Errorf("second lexeme = %q, want later", got[1].Lexeme)
	}
	if !approx(got[1].End, 2.0+MinSpan) {
		t.Errorf("repaired end = %v, want %v", got[1].End, 2.0+MinSpan)
	}
}

func TestLoadTimedWordsRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	if err := os.WriteFile(path, []byte(`{"words": []}`), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	if _, err := LoadTimedWords(path); err == nil {
		t.Error("expected error for empty word list")
	}
}
