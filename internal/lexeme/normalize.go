package lexeme

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lexemePattern = regexp.MustCompile(`[A-Za-z0-9]+(?:'[A-Za-z0-9]+)?`)

// Normalize returns the lower-cased lexemes found in text. A lexeme is a run
// of ASCII letters and digits with an optional apostrophe suffix ("it's",
// "buddha's"). Punctuation-only input yields nil.
func Normalize(text string) []string {
	text = strings.ReplaceAll(text, "’", "'")
	raw := lexemePattern.FindAllString(text, -1)
	if len(raw) == 0 {
		return nil
	}

	caser := cases.Lower(language.Und)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		out = append(out, caser.String(tok))
	}
	return out
}

// Split normalizes one raw timed word. A raw word holding several lexemes
// ("well,okay") becomes several TimedWords sharing [start, end] in equal
// sub-spans.
func Split(text string, start, end float64) []TimedWord {
	text = strings.TrimSpace(text)
	parts := Normalize(text)
	if len(parts) == 0 {
		return nil
	}

	span := math.Max(MinSpan, end-start)
	step := span / float64(len(parts))

	out := make([]TimedWord, 0, len(parts))
	for i, part := range parts {
		label := text
		if len(parts) > 1 {
			label = part
		}
		out = append(out, TimedWord{
			Text:   label,
			Lexeme: part,
			Start:  start + float64(i)*step,
			End:    start + float64(i+1)*step,
		})
	}
	return out
}

// Tokenize splits edited transcript text into lexemes. Whitespace words that
// hold a single lexeme keep their raw spelling as Text.
func Tokenize(text string) []EditedLexeme {
	var out []EditedLexeme
	for _, raw := range strings.Fields(text) {
		parts := Normalize(raw)
		switch len(parts) {
		case 0:
			continue
		case 1:
			out = append(out, EditedLexeme{Text: raw, Lexeme: parts[0]})
		default:
			for _, p := range parts {
				out = append(out, EditedLexeme{Text: p, Lexeme: p})
			}
		}
	}
	return out
}

// CollectTimedWords flattens transcription segments into timed lexemes.
// Word-level timestamps are used when a segment has them; otherwise the
// segment span is divided evenly across its whitespace words. The result is
// sorted by (start, end) with start >= 0 and end >= start+MinSpan.
func CollectTimedWords(segments []Segment) []TimedWord {
	var out []TimedWord
	for _, seg := range segments {
		if len(seg.Words) > 0 {
			for _, w := range seg.Words {
				out = append(out, Split(w.Text, w.Start, w.End)...)
			}
			continue
		}

		fields := strings.Fields(seg.Text)
		if len(fields) == 0 {
			continue
		}
		dur := math.Max(0.05, seg.End-seg.Start)
		step := dur / float64(len(fields))
		for i, raw := range fields {
			wordStart := seg.Start + float64(i)*step
			out = append(out, Split(raw, wordStart, wordStart+step)...)
		}
	}

	SortTimedWords(out)
	for i := range out {
		out[i].Start = math.Max(0, out[i].Start)
		out[i].End = math.Max(out[i].Start+MinSpan, out[i].End)
	}
	return out
}

// SortTimedWords orders words by (start, end), keeping ties stable.
func SortTimedWords(words []TimedWord) {
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Start != words[j].Start {
			return words[i].Start < words[j].Start
		}
		return words[i].End < words[j].End
	})
}

// JoinText joins word texts with single spaces.
func JoinText(words []TimedWord) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}
