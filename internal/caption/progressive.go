package caption

import (
	"math"
	"strings"

	"github.com/mgpai22/trimcast/internal/lexeme"
	"github.com/mgpai22/trimcast/internal/subtitle"
)

// one timed caption state, times in seconds
type Entry struct {
	Start float64
	End   float64
	Text  string
}

// Progressive emits one entry per word: the page's lines revealed up to and
// including that word, earlier lines of the page fully shown. An entry lasts
// until the next word starts, or until total for the last word, and never
// ends before its own word does. Entries with no duration or no text are
// dropped.
func Progressive(pages []Page, total float64) []Entry {
	flat := Flatten(pages)
	nextStart := make([]float64, len(flat))
	for i := range flat {
		if i+1 < len(flat) {
			nextStart[i] = flat[i+1].Start
		} else {
			nextStart[i] = total
		}
	}

	var entries []Entry
	global := 0
	for _, page := range pages {
		revealed := make([]int, len(page))
		for li, line := range page {
			for wi, w := range line {
				revealed[li] = wi + 1
				text := pageText(page, revealed)
				end := math.Max(w.End, nextStart[global])
				global++
				if end <= w.Start || text == "" {
					continue
				}
				entries = append(entries, Entry{Start: w.Start, End: end, Text: text})
			}
		}
	}
	return entries
}

func pageText(page Page, revealed []int) string {
	parts := make([]string, 0, len(page))
	for li, line := range page {
		n := revealed[li]
		if n <= 0 {
			continue
		}
		words := make([]string, n)
		for i := 0; i < n; i++ {
			words[i] = line[i].Text
		}
		parts = append(parts, strings.Join(words, " "))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Build paginates words and emits progressive entries. Without any words
// it returns a single blank entry covering max(0.5, total) seconds so the
// caption track is never empty.
func Build(words []lexeme.TimedText, total float64, opts Options) []Entry {
	pages := Paginate(words, opts)
	if len(pages) == 0 {
		return []Entry{{Start: 0, End: math.Max(0.5, total)}}
	}
	return Progressive(pages, total)
}

// ToSubtitle converts entries to a subtitle track, timestamps rounded to the
// nearest millisecond.
func ToSubtitle(entries []Entry) *subtitle.Subtitle {
	out := make([]subtitle.Entry, len(entries))
	for i, e := range entries {
		out[i] = subtitle.Entry{
			Index:     i + 1,
			StartTime: subtitle.Seconds(e.Start),
			EndTime:   subtitle.Seconds(e.End),
			Text:      e.Text,
		}
	}
	return &subtitle.Subtitle{Entries: out}
}

// FromTextDuration spreads the whitespace words of text evenly over
// max(0.5, duration) seconds.
func FromTextDuration(text string, duration float64) []lexeme.TimedText {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	dur := math.Max(0.5, duration)
	step := dur / float64(len(fields))

	out := make([]lexeme.TimedText, 0, len(fields))
	for i, f := range fields {
		start := math.Min(float64(i)*step, dur)
		end := math.Min(float64(i+1)*step, dur)
		if end <= start {
			continue
		}
		out = append(out, lexeme.TimedText{Start: start, End: end, Text: f})
	}
	return out
}

// FromSubtitle spreads the words of each cue evenly across the cue.
func FromSubtitle(sub *subtitle.Subtitle) []lexeme.TimedText {
	var out []lexeme.TimedText
	for _, e := range sub.Entries {
		start := e.StartTime.Seconds()
		end := e.EndTime.Seconds()
		fields := strings.Fields(e.Text)
		if len(fields) == 0 || end <= start {
			continue
		}
		step := (end - start) / float64(len(fields))
		for i, f := range fields {
			out = append(out, lexeme.TimedText{
				Start: start + float64(i)*step,
				End:   start + float64(i+1)*step,
				Text:  f,
			})
		}
	}
	return out
}
