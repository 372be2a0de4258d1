// Package timeline turns kept source words into splice plans over the
// source audio and places words on the output timeline.
package timeline

import (
	"fmt"
	"math"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

// chunks shorter than this are dropped
const minChunkDuration = 0.01

// padding and merge settings for chunk building, in seconds
type ChunkOptions struct {
	PadBefore  float64
	PadAfter   float64
	MinWordDur float64
	MergeGap   float64
	MinPause   float64
	MaxPause   float64
}

// DefaultChunkOptions returns the tuned defaults for speech.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		PadBefore:  0.04,
		PadAfter:   0.06,
		MinWordDur: 0.04,
		MergeGap:   0.09,
		MinPause:   0.05,
		MaxPause:   0.16,
	}
}

// Validate reports settings that cannot produce a sane timeline.
func (o ChunkOptions) Validate() error {
	for name, v := range map[string]float64{
		"pad_before":   o.PadBefore,
		"pad_after":    o.PadAfter,
		"min_word_dur": o.MinWordDur,
		"merge_gap":    o.MergeGap,
		"min_pause":    o.MinPause,
		"max_pause":    o.MaxPause,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%s must be >= 0, got %v", name, v)
		}
	}
	if o.MinPause > o.MaxPause {
		return fmt.Errorf("min_pause (%v) must not exceed max_pause (%v)", o.MinPause, o.MaxPause)
	}
	return nil
}

// span of source audio covering kept words KeptStart..KeptEnd (inclusive
// indices into the kept word list)
type SourceChunk struct {
	SourceStart float64 `json:"source_start"`
	SourceEnd   float64 `json:"source_end"`
	KeptStart   int     `json:"kept_word_start_index"`
	KeptEnd     int     `json:"kept_word_end_index"`
}

// Duration returns the length of source audio the chunk plays.
func (c SourceChunk) Duration() float64 {
	return math.Max(0, c.SourceEnd-c.SourceStart)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// BuildChunks pads each kept word, clamps it into [0, total] and merges it
// into the previous chunk when it starts within MergeGap of that chunk's
// end. Words whose padded span collapses are skipped and chunks of 10ms or
// less are dropped.
func BuildChunks(kept []lexeme.TimedWord, total float64, opts ChunkOptions) []SourceChunk {
	var chunks []SourceChunk
	for idx, w := range kept {
		start := clamp(w.Start-opts.PadBefore, 0, total)
		end := clamp(math.Max(w.End+opts.PadAfter, start+opts.MinWordDur), 0, total)
		if end <= start {
			continue
		}

		if n := len(chunks); n > 0 && start <= chunks[n-1].SourceEnd+opts.MergeGap {
			prev := &chunks[n-1]
			prev.SourceEnd = math.Max(prev.SourceEnd, end)
			prev.KeptEnd = idx
			continue
		}
		chunks = append(chunks, SourceChunk{SourceStart: start, SourceEnd: end, KeptStart: idx, KeptEnd: idx})
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c.SourceEnd-c.SourceStart > minChunkDuration {
			out = append(out, c)
		}
	}
	return out
}

// InterChunkPauses returns one pause per adjacent chunk pair: the real
// source gap clamped into [minPause, maxPause].
func InterChunkPauses(chunks []SourceChunk, minPause, maxPause float64) []float64 {
	if len(chunks) < 2 {
		return nil
	}
	pauses := make([]float64, len(chunks)-1)
	for i := range pauses {
		gap := math.Max(0, chunks[i+1].SourceStart-chunks[i].SourceEnd)
		pauses[i] = clamp(gap, minPause, maxPause)
	}
	return pauses
}

// Remap places the kept words on the output timeline produced by playing
// the chunks in order with the pauses between them.
func Remap(kept []lexeme.TimedWord, chunks []SourceChunk, pauses []float64) []lexeme.TimedText {
	var out []lexeme.TimedText
	cursor := 0.0
	for i, c := range chunks {
		for k := c.KeptStart; k <= c.KeptEnd && k < len(kept); k++ {
			w := kept[k]
			start := cursor + math.Max(0, w.Start-c.SourceStart)
			end := cursor + math.Max(lexeme.MinSpan, w.End-c.SourceStart)
			if end <= start {
				end = start + lexeme.MinSpan
			}
			out = append(out, lexeme.TimedText{Start: start, End: end, Text: w.Text})
		}
		cursor += c.Duration()
		if i < len(pauses) {
			cursor += pauses[i]
		}
	}
	return out
}

// OutputDuration returns the length of the spliced audio: all chunk
// durations plus all pauses.
func OutputDuration(chunks []SourceChunk, pauses []float64) float64 {
	total := 0.0
	for _, c := range chunks {
		total += c.Duration()
	}
	for _, p := range pauses {
		total += p
	}
	return total
}
