package caption

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/mgpai22/trimcast/internal/lexeme"
	"github.com/mgpai22/trimcast/internal/subtitle"
)

// words four seconds apart, each lasting one second
func spaced(text string) []lexeme.TimedText {
	var out []lexeme.TimedText
	for i, f := range strings.Fields(text) {
		start := float64(i) * 4
		out = append(out, lexeme.TimedText{Start: start, End: start + 1, Text: f})
	}
	return out
}

func pageWords(pages []Page) [][]string {
	var out [][]string
	for _, page := range pages {
		for _, line := range page {
			var words []string
			for _, w := range line {
				words = append(words, w.Text)
			}
			out = append(out, words)
		}
		out = append(out, nil)
	}
	return out
}

func TestPaginate(t *testing.T) {
	pages := Paginate(spaced("the quick brown fox jumps"), Options{MaxCharsPerLine: 10, MaxLinesPerPage: 2})

	want := [][]string{
		{"the", "quick"}, {"brown", "fox"}, nil,
		{"jumps"}, nil,
	}
	if got := pageWords(pages); !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, want %v", got, want)
	}
}

func TestPaginateLongWordAndBlanks(t *testing.T) {
	words := []lexeme.TimedText{
		{Start: 0, End: 1, Text: "  a "},
		{Start: 1, End: 2, Text: "   "},
		{Start: 2, End: 3, Text: "extraordinarily"},
		{Start: 3, End: 4, Text: "b"},
	}
	pages := Paginate(words, Options{MaxCharsPerLine: 5, MaxLinesPerPage: 10})

	want := [][]string{{"a"}, {"extraordinarily"}, {"b"}, nil}
	if got := pageWords(pages); !reflect.DeepEqual(got, want) {
		t.Errorf("pages = %v, want %v", got, want)
	}
}

func TestPaginateCountsRunes(t *testing.T) {
	pages := Paginate(spaced("café naïve"), Options{MaxCharsPerLine: 10, MaxLinesPerPage: 2})
	if len(pages) != 1 || len(pages[0]) != 1 {
		t.Errorf("expected both words on one line, got %v", pageWords(pages))
	}
}

func TestPaginateRoundTrip(t *testing.T) {
	text := "Four score and seven years ago our fathers brought forth on this continent a new nation conceived in Liberty"
	words := spaced(text)

	for _, opts := range []Options{{10, 2}, {30, 4}, {52, 5}, {1, 1}} {
		flat := Flatten(Paginate(words, opts))
		if !reflect.DeepEqual(flat, words) {
			t.Errorf("opts %+v: flattened pages differ from input", opts)
		}
		for _, page := range Paginate(words, opts) {
			if len(page) > opts.MaxLinesPerPage {
				t.Errorf("opts %+v: page has %d lines", opts, len(page))
			}
		}
	}
}

func TestProgressive(t *testing.T) {
	words := spaced("the quick brown fox jumps")
	pages := Paginate(words, Options{MaxCharsPerLine: 10, MaxLinesPerPage: 2})

	entries := Progressive(pages, 20)
	wantTexts := []string{
		"the",
		"the quick",
		"the quick\nbrown",
		"the quick\nbrown fox",
		"jumps",
	}
	if len(entries) != len(wantTexts) {
		t.Fatalf("got %d entries, want %d", len(entries), len(wantTexts))
	}

	visible := func(s string) int { return len(strings.Fields(s)) }
	for i, e := range entries {
		if e.Text != wantTexts[i] {
			t.Errorf("entry %d text = %q, want %q", i, e.Text, wantTexts[i])
		}
		if e.Start != words[i].Start {
			t.Errorf("entry %d start = %v, want %v", i, e.Start, words[i].Start)
		}
		if i+1 < len(entries) && e.End != entries[i+1].Start {
			t.Errorf("entry %d ends at %v, next starts at %v", i, e.End, entries[i+1].Start)
		}
		if i > 0 && i < 4 && visible(e.Text) <= visible(entries[i-1].Text) {
			t.Errorf("entry %d does not reveal more words than entry %d", i, i-1)
		}
	}
	if visible(entries[4].Text) != 1 {
		t.Errorf("reveal did not reset on the new page: %q", entries[4].Text)
	}
	if entries[4].End != 20 {
		t.Errorf("last entry end = %v, want total 20", entries[4].End)
	}
}

func TestProgressiveHoldsWordEnd(t *testing.T) {
	words := []lexeme.TimedText{
		{Start: 0, End: 2, Text: "overlap"},
		{Start: 1, End: 3, Text: "next"},
	}
	entries := Progressive(Paginate(words, RenderedOptions()), 1)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].End != 2 {
		t.Errorf("first entry end = %v, want its own word end 2", entries[0].End)
	}
	if entries[1].End != 3 {
		t.Errorf("last entry end = %v, want 3", entries[1].End)
	}
}

func TestProgressiveDropsZeroLength(t *testing.T) {
	words := []lexeme.TimedText{
		{Start: 5, End: 5, Text: "ghost"},
		{Start: 0, End: 1, Text: "real"},
	}
	entries := Progressive(Paginate(words, RenderedOptions()), 0)
	if len(entries) != 1 || entries[0].Text != "ghost real" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestBuildEmpty(t *testing.T) {
	tests := []struct {
		total float64
		want  float64
	}{
		{0, 0.5},
		{0.2, 0.5},
		{3, 3},
	}
	for _, tt := range tests {
		entries := Build(nil, tt.total, RenderedOptions())
		if len(entries) != 1 {
			t.Fatalf("got %d entries, want 1", len(entries))
		}
		if entries[0].Start != 0 || entries[0].End != tt.want || entries[0].Text != "" {
			t.Errorf("total %v: got %+v, want blank [0, %v]", tt.total, entries[0], tt.want)
		}
	}
}

func TestToSubtitleSRT(t *testing.T) {
	entries := Build(spaced("the quick"), 6.0004, Options{MaxCharsPerLine: 10, MaxLinesPerPage: 2})

	got := subtitle.RenderSRT(ToSubtitle(entries))
	want := "1\n00:00:00,000 --> 00:00:04,000\nthe\n\n" +
		"2\n00:00:04,000 --> 00:00:06,000\nthe quick\n\n"
	if got != want {
		t.Errorf("SRT =\n%q\nwant\n%q", got, want)
	}
}

func TestFromTextDuration(t *testing.T) {
	words := FromTextDuration("one two  three\nfour", 2)
	if len(words) != 4 {
		t.Fatalf("got %d words, want 4", len(words))
	}
	for i, w := range words {
		if math.Abs(w.Start-float64(i)*0.5) > 1e-9 || math.Abs(w.End-float64(i+1)*0.5) > 1e-9 {
			t.Errorf("word %d = [%v, %v]", i, w.Start, w.End)
		}
	}

	short := FromTextDuration("a b", 0)
	if short[1].End != 0.5 {
		t.Errorf("short duration not floored to 0.5: %+v", short)
	}
	if FromTextDuration("  ", 10) != nil {
		t.Error("expected nil for blank text")
	}
}

func TestFromSubtitle(t *testing.T) {
	sub := &subtitle.Subtitle{Entries: []subtitle.Entry{
		{StartTime: subtitle.Seconds(1), EndTime: subtitle.Seconds(2), Text: "hello\nthere"},
		{StartTime: subtitle.Seconds(3), EndTime: subtitle.Seconds(3), Text: "skipped"},
	}}

	words := FromSubtitle(sub)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[1].Text != "there" || words[1].Start != 1.5 || words[1].End != 2 {
		t.Errorf("second word = %+v", words[1])
	}
}
