package align

import "github.com/mgpai22/trimcast/internal/lexeme"

// backtrack directions, two bits per DP cell
const (
	dirNone uint64 = iota
	dirDiag
	dirUp
	dirLeft
)

// 2-bit-per-cell direction grid addressed by (i, j)
type backtrack struct {
	cols  int
	words []uint64
}

func newBacktrack(rows, cols int) *backtrack {
	cells := rows * cols
	return &backtrack{cols: cols, words: make([]uint64, (cells+31)/32)}
}

func (b *backtrack) set(i, j int, dir uint64) {
	cell := i*b.cols + j
	shift := uint(cell%32) * 2
	w := &b.words[cell/32]
	*w = (*w &^ (3 << shift)) | (dir << shift)
}

func (b *backtrack) get(i, j int) uint64 {
	cell := i*b.cols + j
	return (b.words[cell/32] >> (uint(cell%32) * 2)) & 3
}

// lcsPairs returns (original, edited) index pairs of a longest common
// subsequence of the two key sequences, in increasing order. On equal
// lengths the path moves up, consuming an original key before an edited
// one.
func lcsPairs(orig, edit []string) [][2]int {
	n, m := len(orig), len(edit)
	if n == 0 || m == 0 {
		return nil
	}

	dirs := newBacktrack(n+1, m+1)
	prev := make([]int32, m+1)
	cur := make([]int32, m+1)
	for i := 1; i <= n; i++ {
		key := orig[i-1]
		cur[0] = 0
		for j := 1; j <= m; j++ {
			switch {
			case key == edit[j-1]:
				cur[j] = prev[j-1] + 1
				dirs.set(i, j, dirDiag)
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
				dirs.set(i, j, dirUp)
			default:
				cur[j] = cur[j-1]
				dirs.set(i, j, dirLeft)
			}
		}
		prev, cur = cur, prev
	}

	var rev [][2]int
	i, j := n, m
	for i > 0 && j > 0 {
		switch dirs.get(i, j) {
		case dirDiag:
			rev = append(rev, [2]int{i - 1, j - 1})
			i--
			j--
		case dirUp:
			i--
		default:
			j--
		}
	}

	out := make([][2]int, len(rev))
	for k := range rev {
		out[k] = rev[len(rev)-1-k]
	}
	return out
}

// Global aligns edited tokens against the original timed words with an exact
// LCS over canonical keys. Pairs on the LCS path are accepted only when the
// full matcher agrees; everything else is left unmatched for synthesis.
// Global never fails.
func Global(original []lexeme.TimedWord, edited []lexeme.EditedLexeme) Alignment {
	origKeys := make([]string, len(original))
	for i, w := range original {
		origKeys[i] = lexeme.Canon(w.Lexeme)
	}
	editKeys := make([]string, len(edited))
	for j, e := range edited {
		editKeys[j] = lexeme.Canon(e.Lexeme)
	}

	matches := make([]int, len(edited))
	for j := range matches {
		matches[j] = NoMatch
	}

	matched := 0
	for _, p := range lcsPairs(origKeys, editKeys) {
		oi, ej := p[0], p[1]
		if lexeme.Matches(original[oi].Lexeme, edited[ej].Lexeme) {
			matches[ej] = oi
			matched++
		}
	}

	return Alignment{
		Edited:  edited,
		Matches: matches,
		Metrics: newMetrics(len(original), len(edited), matched, MethodGlobal),
	}
}
