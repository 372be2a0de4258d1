// Package caption lays timed words out as progressively revealed caption
// pages.
package caption

import (
	"strings"
	"unicode/utf8"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

// layout budget for one caption page
type Options struct {
	MaxCharsPerLine int
	MaxLinesPerPage int
}

// RenderedOptions is the layout used for captions burned into video.
func RenderedOptions() Options {
	return Options{MaxCharsPerLine: 30, MaxLinesPerPage: 4}
}

// TextOptions is the wider layout used for captions built from plain text.
func TextOptions() Options {
	return Options{MaxCharsPerLine: 52, MaxLinesPerPage: 5}
}

// words shown together on one row
type Line []lexeme.TimedText

// lines shown together on screen
type Page []Line

// Paginate packs words into lines and pages first-fit. A word goes on the
// current line unless the line plus a separating space and the word would
// exceed MaxCharsPerLine; a new page starts when a fresh line is needed and
// the page already holds MaxLinesPerPage lines. A word longer than the line
// budget gets a line of its own. Blank words are skipped and word text is
// trimmed.
func Paginate(words []lexeme.TimedText, opts Options) []Page {
	var (
		pages   []Page
		page    Page
		line    Line
		lineLen int
	)

	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}
		n := utf8.RuneCountInString(text)

		if len(line) > 0 && lineLen+1+n > opts.MaxCharsPerLine {
			page = append(page, line)
			line = nil
			lineLen = 0
		}
		if len(line) == 0 && len(page) >= opts.MaxLinesPerPage {
			pages = append(pages, page)
			page = nil
		}

		if len(line) > 0 {
			lineLen++
		}
		lineLen += n
		line = append(line, lexeme.TimedText{Start: w.Start, End: w.End, Text: text})
	}

	if len(line) > 0 {
		page = append(page, line)
	}
	if len(page) > 0 {
		pages = append(pages, page)
	}
	return pages
}

// Flatten returns the words of all pages in reveal order.
func Flatten(pages []Page) []lexeme.TimedText {
	var out []lexeme.TimedText
	for _, page := range pages {
		for _, line := range page {
			out = append(out, line...)
		}
	}
	return out
}
