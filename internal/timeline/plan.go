package timeline

import (
	"math"

	"github.com/mgpai22/trimcast/internal/align"
	"github.com/mgpai22/trimcast/internal/lexeme"
)

// splice plan for one original run
type RunPlan struct {
	Words    []lexeme.TimedWord
	Chunks   []SourceChunk
	Pauses   []float64
	Timed    []lexeme.TimedText
	Duration float64
}

// PlanRun builds chunks, pauses and output word timing for the kept words
// of one run. A run that yields no chunk is an error.
func PlanRun(runIndex int, kept []lexeme.TimedWord, total float64, opts ChunkOptions) (RunPlan, error) {
	chunks := BuildChunks(kept, total, opts)
	if len(chunks) == 0 {
		return RunPlan{}, &NoChunksError{RunIndex: runIndex, KeptWordCount: len(kept), TotalDuration: total}
	}
	pauses := InterChunkPauses(chunks, opts.MinPause, opts.MaxPause)
	return RunPlan{
		Words:    kept,
		Chunks:   chunks,
		Pauses:   pauses,
		Timed:    Remap(kept, chunks, pauses),
		Duration: OutputDuration(chunks, pauses),
	}, nil
}

// KeptWords resolves source indices against the original timed words.
func KeptWords(original []lexeme.TimedWord, indices []int) []lexeme.TimedWord {
	out := make([]lexeme.TimedWord, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(original) {
			out = append(out, original[i])
		}
	}
	return out
}

// one rendered run of the output, with word timing local to the piece
type Piece struct {
	Kind     align.RunKind
	Duration float64
	Words    []lexeme.TimedText
}

// Relabel gives the remapped words of an original run the edited spelling.
// When the counts disagree the edited tokens are spread evenly over the
// piece instead.
func Relabel(local []lexeme.TimedText, edited []lexeme.EditedLexeme, duration float64) []lexeme.TimedText {
	out := make([]lexeme.TimedText, len(edited))
	if len(local) == len(edited) {
		for i, w := range local {
			out[i] = lexeme.TimedText{Start: w.Start, End: w.End, Text: edited[i].Text}
		}
		return out
	}

	step := math.Max(0.02, duration/float64(max(1, len(edited))))
	for i, tok := range edited {
		out[i] = lexeme.TimedText{
			Start: float64(i) * step,
			End:   math.Min(duration, float64(i+1)*step),
			Text:  tok.Text,
		}
	}
	return out
}

// LayoutSynthesized times the words of a synthesized run from the measured
// duration of each word clip, with gap seconds of silence between words.
// It returns the word timing and the piece length.
func LayoutSynthesized(edited []lexeme.EditedLexeme, wordDurations []float64, gap float64) ([]lexeme.TimedText, float64) {
	out := make([]lexeme.TimedText, 0, len(edited))
	cursor := 0.0
	for i, tok := range edited {
		if i >= len(wordDurations) {
			break
		}
		out = append(out, lexeme.TimedText{Start: cursor, End: cursor + wordDurations[i], Text: tok.Text})
		cursor += wordDurations[i]
		if i < len(edited)-1 && gap > 0 {
			cursor += gap
		}
	}
	return out, cursor
}

// Stitch concatenates pieces into one output timeline, inserting
// transitionPause seconds between consecutive pieces. It returns the words
// on the output timeline and the total length.
func Stitch(pieces []Piece, transitionPause float64) ([]lexeme.TimedText, float64) {
	var out []lexeme.TimedText
	cursor := 0.0
	for i, p := range pieces {
		for _, w := range p.Words {
			out = append(out, lexeme.TimedText{Start: cursor + w.Start, End: cursor + w.End, Text: w.Text})
		}
		cursor += p.Duration
		if i < len(pieces)-1 && transitionPause > 0 {
			cursor += transitionPause
		}
	}
	return out, cursor
}
