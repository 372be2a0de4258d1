package lexeme

import "strings"

// Matches reports whether two normalized lexemes are the same spoken word.
// Apostrophes are ignored and a single trailing "s" on either side is
// tolerated, which absorbs possessive/plural drift between transcript
// sources ("buddha's" vs "buddha") without allowing substitutions.
func Matches(a, b string) bool {
	if a == b {
		return true
	}

	a = strings.ReplaceAll(a, "'", "")
	b = strings.ReplaceAll(b, "'", "")
	if a == b {
		return true
	}
	if strings.HasSuffix(a, "s") && a[:len(a)-1] == b {
		return true
	}
	if strings.HasSuffix(b, "s") && b[:len(b)-1] == a {
		return true
	}
	return false
}

// Canon returns the alignment key for a lexeme: apostrophes removed and one
// trailing "s" dropped when the rest is longer than three characters.
func Canon(lexeme string) string {
	s := strings.ReplaceAll(strings.ToLower(lexeme), "'", "")
	if len(s) > 3 && strings.HasSuffix(s, "s") {
		return s[:len(s)-1]
	}
	return s
}
