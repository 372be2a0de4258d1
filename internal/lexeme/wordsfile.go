package lexeme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// on-disk form of a timed word
type wordRecord struct {
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Normalized string  `json:"normalized,omitempty"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
}

type wordsFile struct {
	Words []wordRecord `json:"words"`
}

// WriteTimedWords stores source word timings so a later run can skip
// transcription.
func WriteTimedWords(path string, words []TimedWord) error {
	payload := wordsFile{Words: make([]wordRecord, len(words))}
	for i, w := range words {
		payload.Words[i] = wordRecord{
			Index:      i,
			Text:       w.Text,
			Normalized: w.Lexeme,
			Start:      w.Start,
			End:        w.End,
		}
	}
	return writeJSON(path, payload)
}

// LoadTimedWords reads a file written by WriteTimedWords. Records without a
// normalized form are normalized from their text, end <= start is repaired
// to start+MinSpan, and the result is sorted by (start, end).
func LoadTimedWords(path string) ([]TimedWord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word timings: %w", err)
	}

	var payload wordsFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse word timings %s: %w", path, err)
	}

	out := make([]TimedWord, 0, len(payload.Words))
	for _, rec := range payload.Words {
		text := strings.TrimSpace(rec.Text)
		norm := strings.ToLower(strings.TrimSpace(rec.Normalized))
		if norm == "" {
			if parts := Normalize(text); len(parts) > 0 {
				norm = parts[0]
			}
		}
		if text == "" || norm == "" {
			continue
		}
		end := rec.End
		if end <= rec.Start {
			end = rec.Start + MinSpan
		}
		out = append(out, TimedWord{Text: text, Lexeme: norm, Start: rec.Start, End: end})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no valid words found in word timings: %s", path)
	}
	SortTimedWords(out)
	return out, nil
}

type timedTextRecord struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type timedTextFile struct {
	Words []timedTextRecord `json:"words"`
}

// WriteTimedText stores output-timeline word timings.
func WriteTimedText(path string, words []TimedText) error {
	payload := timedTextFile{Words: make([]timedTextRecord, len(words))}
	for i, w := range words {
		payload.Words[i] = timedTextRecord{Index: i, Start: w.Start, End: w.End, Text: w.Text}
	}
	return writeJSON(path, payload)
}

// LoadTimedText reads output-timeline word timings. Source word timing files
// are accepted too since they share the same shape.
func LoadTimedText(path string) ([]TimedText, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timed words: %w", err)
	}

	var payload timedTextFile
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse timed words %s: %w", path, err)
	}

	out := make([]TimedText, 0, len(payload.Words))
	for _, rec := range payload.Words {
		text := strings.TrimSpace(rec.Text)
		if text == "" {
			continue
		}
		out = append(out, TimedText{Start: rec.Start, End: rec.End, Text: text})
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
