package edit

import (
	"fmt"
	"strings"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

func writeRules(sb *strings.Builder, rules ...string) {
	for _, r := range rules {
		sb.WriteString("- ")
		sb.WriteString(r)
		sb.WriteString("\n")
	}
}

func writeExtra(sb *strings.Builder, extra string) {
	if extra != "" {
		fmt.Fprintf(sb, "\nAdditional instructions: %s\n", extra)
	}
}

// one "index:text" line per word
func indexedWords(words []lexeme.TimedWord) string {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d:%s", i, w.Text)
	}
	return sb.String()
}

func buildMinimalEditPrompt(transcript, extra string) string {
	var sb strings.Builder

	sb.WriteString("You are editing a spoken transcript to make it tighter and more information-dense.\n\n")
	sb.WriteString("Task:\n")
	writeRules(&sb,
		"Remove filler, repetition, drift, and low-value detours.",
		"Keep the remaining transcript information-dense and insight-rich.",
		"Preserve original meaning and speaker voice.",
		"Prefer deletions over rewrites.",
		"Keep wording changes very, very minimal.",
		"Do not add new information.",
		"Do not change the meaning.",
		"Preserve order and flow as much as possible.",
		"If a rewrite is needed for clarity, make the smallest possible local change.",
		"Output only the edited transcript plain text (no markdown, no notes).",
	)
	sb.WriteString("\nImportant preference:\n")
	writeRules(&sb,
		"The best output is usually the original transcript with only deletions.",
		"Minor word changes are allowed only when necessary, and should be rare.",
	)
	writeExtra(&sb, extra)

	sb.WriteString("\nTranscript:\n")
	sb.WriteString(transcript)

	return sb.String()
}

func buildStrictDeletePrompt(transcript, extra string) string {
	var sb strings.Builder

	sb.WriteString("You are editing a spoken transcript by deleting content only.\n\n")
	sb.WriteString("Rules (strict):\n")
	writeRules(&sb,
		"Delete words/sentences/phrases that are low-value, repetitive, filler, or off-track.",
		"Do NOT add any new words.",
		"Do NOT paraphrase.",
		"Do NOT reorder.",
		"Do NOT change any word at all (no tense, spelling, plurality, grammar fixes, punctuation fixes).",
		"Keep the exact original wording for all remaining words.",
		"If the result is grammatically awkward, keep it awkward.",
		"Output plain text only. No markdown. No commentary.",
		"The output must be created by COPY-PASTE of the original transcript and then deleting parts.",
		"Never replace one word with another.",
		"Never move a phrase earlier or later.",
		"Never summarize.",
		`Do not normalize names/terms (example: keep "spread" vs "spreads" exactly as in source).`,
	)
	sb.WriteString("\nThis must be a strict subsequence of the original transcript text content.\n")
	sb.WriteString("Every remaining word must appear in the same left-to-right order as the source.\n\n")
	sb.WriteString("Verification before final answer:\n")
	sb.WriteString("1) Check that every output word exists in the source.\n")
	sb.WriteString("2) Check that the order is identical to the source.\n")
	sb.WriteString("3) If any rule is violated, fix it by deleting more words (not by rewriting).\n")
	sb.WriteString("4) If unsure, return the original transcript unchanged.\n")
	writeExtra(&sb, extra)

	sb.WriteString("\nTranscript:\n")
	sb.WriteString(transcript)

	return sb.String()
}

func buildDeleteRangesPrompt(words []lexeme.TimedWord, extra string) string {
	var sb strings.Builder

	sb.WriteString("You are editing a transcript by deleting words only.\n\n")
	sb.WriteString("Return ONLY JSON with word index ranges to delete from the indexed list below.\n\n")
	sb.WriteString("Rules:\n")
	writeRules(&sb,
		"You may only delete words (no additions, no replacements, no reordering).",
		"Preserve original order of all kept words.",
		"Prefer deleting filler, repetition, drift, and low-value detours.",
		"Keep meaning and speaker voice.",
		"Use inclusive indices.",
		"Ranges must be sorted and non-overlapping.",
		"If no deletions are needed, return an empty list.",
		"Return a JSON object only (no markdown fences, no prose, no comments).",
	)
	sb.WriteString("\nJSON schema:\n")
	sb.WriteString(`{"delete_ranges": [{"start": 12, "end": 19}, {"start": 51, "end": 51}]}`)
	sb.WriteString("\n")
	writeExtra(&sb, extra)

	sb.WriteString("\nIndexed words:\n")
	sb.WriteString(indexedWords(words))

	return sb.String()
}

func buildSelectClipsPrompt(words []lexeme.TimedWord, opts ClipOptions, extra string) string {
	var sb strings.Builder

	sb.WriteString("You are selecting SHORT INSIGHTFUL CLIPS from a long transcript.\n\n")
	sb.WriteString("Return ONLY JSON with multiple clips. Each clip is a set of word index ranges from the indexed transcript.\n\n")
	sb.WriteString("Goal:\n")
	writeRules(&sb,
		fmt.Sprintf("Pick %d interesting, insightful, self-contained clips.", opts.Count),
		"Each clip may contain multiple word ranges that together form one coherent clip.",
		"Prefer strong ideas, stories, surprising insights, concrete examples, or memorable moments.",
	)
	sb.WriteString("\nRules:\n")
	writeRules(&sb,
		"Use only the provided indexed words.",
		"No rewrites, no added words, no reordering inside ranges.",
		"Use inclusive indices.",
		"Within each clip, ranges must be sorted and non-overlapping.",
		fmt.Sprintf("Keep each clip roughly between %d and %d selected words total.", opts.MinWords, opts.MaxWords),
		fmt.Sprintf("Use at most %d ranges per clip.", opts.MaxRanges),
		"Prefer clips that can stand alone as a 1-3 minute excerpt.",
		"Avoid near-duplicate clips.",
		"Return a JSON object only (no markdown fences, no prose, no comments).",
	)
	sb.WriteString("\nJSON schema:\n")
	sb.WriteString(`{"clips": [{"title": "Short descriptive title", "rationale": "Why this clip is interesting (brief)", "word_ranges": [{"start": 120, "end": 170}, {"start": 182, "end": 210}]}]}`)
	sb.WriteString("\n")
	writeExtra(&sb, extra)

	sb.WriteString("\nIndexed words:\n")
	sb.WriteString(indexedWords(words))

	return sb.String()
}
