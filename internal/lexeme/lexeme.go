// Package lexeme turns raw transcript words into comparable tokens.
//
// The same normalization is applied to the timed words coming out of
// transcription and to the edited text coming back from the editor, so a
// spoken word and its edited copy compare equal.
package lexeme

// MinSpan is the shortest time span, in seconds, a timed word may cover.
const MinSpan = 0.01

// represents one spoken lexeme with its source-audio timing in seconds
type TimedWord struct {
	Text   string
	Lexeme string
	Start  float64
	End    float64
}

// Duration returns the span covered by the word.
func (w TimedWord) Duration() float64 {
	return w.End - w.Start
}

// represents one token of the edited transcript; it has no timing
type EditedLexeme struct {
	Text   string
	Lexeme string
}

// word placed on an output timeline
type TimedText struct {
	Start float64
	End   float64
	Text  string
}

// word with timing as reported by a transcription engine
type Word struct {
	Text  string
	Start float64
	End   float64
}

// transcription segment; Words may be empty when the engine only
// reports segment-level timing
type Segment struct {
	Text  string
	Start float64
	End   float64
	Words []Word
}
