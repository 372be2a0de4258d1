package align

import (
	"fmt"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

// source classification of a run
type RunKind int

const (
	// words played from the source recording
	Original RunKind = iota
	// words that have to be synthesized
	Synthesized
)

func (k RunKind) String() string {
	switch k {
	case Original:
		return "original"
	case Synthesized:
		return "tts"
	}
	return fmt.Sprintf("RunKind(%d)", int(k))
}

// MarshalText encodes the kind as its name in artifacts.
func (k RunKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// maximal stretch of edited tokens sharing a source classification.
// EditedStart and EditedEnd are inclusive.
type Run struct {
	Kind          RunKind
	EditedStart   int
	EditedEnd     int
	Edited        []lexeme.EditedLexeme
	SourceIndices []int
}

// Len returns the number of edited tokens in the run.
func (r Run) Len() int {
	return r.EditedEnd - r.EditedStart + 1
}

// BuildRuns partitions the edited tokens into runs of matched and unmatched
// tokens, in edited order. An original run never goes backward in source
// time: a match lower than the run's last source index starts a new run.
func BuildRuns(edited []lexeme.EditedLexeme, matches []int) ([]Run, error) {
	if len(edited) != len(matches) {
		return nil, fmt.Errorf("alignment length mismatch: %d edited tokens, %d matches", len(edited), len(matches))
	}

	var runs []Run
	for idx, tok := range edited {
		m := matches[idx]
		kind := Synthesized
		if m != NoMatch {
			kind = Original
		}

		if n := len(runs); n > 0 && runs[n-1].Kind == kind {
			last := &runs[n-1]
			backward := kind == Original && m < last.SourceIndices[len(last.SourceIndices)-1]
			if !backward {
				last.EditedEnd = idx
				last.Edited = append(last.Edited, tok)
				if kind == Original {
					last.SourceIndices = append(last.SourceIndices, m)
				}
				continue
			}
		}

		run := Run{Kind: kind, EditedStart: idx, EditedEnd: idx, Edited: []lexeme.EditedLexeme{tok}}
		if kind == Original {
			run.SourceIndices = []int{m}
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// Runs builds the run partition of an alignment.
func (a Alignment) Runs() ([]Run, error) {
	return BuildRuns(a.Edited, a.Matches)
}
