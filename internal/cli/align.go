package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/trimcast/internal/align"
	"github.com/mgpai22/trimcast/internal/lexeme"
	"github.com/mgpai22/trimcast/internal/timeline"
)

const alignTextPreview = 48

func newAlignCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align [words_json] [edit_file]",
		Short: "Align an edit against word timings without touching audio",
		Long: `Dry run of the alignment step. Reads source word timings (the
transcript_words.json artifact of a previous run) and an edit, then prints
alignment metrics and the runs the audio would be assembled from.

With --method ranges the edit file is JSON holding "delete_ranges" (or
"keep_ranges" with --keep) as index pairs, objects or "a-b" strings.

Examples:
  trimcast align artifacts/transcript_words.json edited.txt
  trimcast align words.json edited.txt --method strict
  trimcast align words.json ranges.json --method ranges --runs-out runs.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAlign(ctx, cmd, args)
		},
	}

	cmd.Flags().
		String("method", "global", "Alignment method (global, strict, ranges)")
	cmd.Flags().
		Bool("keep", false, "Treat ranges as words to keep instead of delete")
	cmd.Flags().
		String("runs-out", "", "Write metrics and runs as JSON to this path")
	return cmd
}

// contents of --runs-out
type alignReport struct {
	Metrics align.Metrics `json:"alignment_metrics"`
	Runs    []runReport   `json:"runs"`
}

type runReport struct {
	RunIndex       int                    `json:"run_index"`
	Kind           align.RunKind          `json:"kind"`
	EditedStart    int                    `json:"edited_start"`
	EditedEnd      int                    `json:"edited_end"`
	SourceIndices  []int                  `json:"source_indices,omitempty"`
	Text           string                 `json:"text"`
	Chunks         []timeline.SourceChunk `json:"chunks,omitempty"`
	PlannedSeconds float64                `json:"planned_seconds,omitempty"`
}

func runAlign(ctx *commandContext, cmd *cobra.Command, args []string) error {
	wordsPath, editPath := args[0], args[1]
	method, _ := cmd.Flags().GetString("method")
	keep, _ := cmd.Flags().GetBool("keep")
	runsOut, _ := cmd.Flags().GetString("runs-out")

	words, err := lexeme.LoadTimedWords(wordsPath)
	if err != nil {
		return err
	}

	var alignment align.Alignment
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "global":
		tokens, err := loadEditTokens(editPath)
		if err != nil {
			return err
		}
		alignment = align.Global(words, tokens)
	case "strict":
		tokens, err := loadEditTokens(editPath)
		if err != nil {
			return err
		}
		if alignment, err = align.Strict(words, tokens); err != nil {
			return fmt.Errorf("strict alignment failed: %w", err)
		}
	case "ranges":
		mode := align.DeleteRanges
		if keep {
			mode = align.KeepRanges
		}
		ranges, err := loadRanges(editPath, mode, len(words))
		if err != nil {
			return err
		}
		if alignment, err = align.FromRanges(words, ranges, mode); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown method %q: use global, strict, or ranges", method)
	}

	runs, err := alignment.Runs()
	if err != nil {
		return err
	}

	total := words[len(words)-1].End
	opts := ctx.cfg.ChunkOptions()
	report := alignReport{Metrics: alignment.Metrics, Runs: make([]runReport, len(runs))}
	for i, run := range runs {
		texts := make([]string, len(run.Edited))
		for j, tok := range run.Edited {
			texts[j] = tok.Text
		}
		r := runReport{
			RunIndex:      i,
			Kind:          run.Kind,
			EditedStart:   run.EditedStart,
			EditedEnd:     run.EditedEnd,
			SourceIndices: run.SourceIndices,
			Text:          strings.Join(texts, " "),
		}
		if run.Kind == align.Original {
			plan, err := timeline.PlanRun(i, timeline.KeptWords(words, run.SourceIndices), total, opts)
			if err != nil {
				return err
			}
			r.Chunks = plan.Chunks
			r.PlannedSeconds = plan.Duration
		}
		report.Runs[i] = r
	}

	ctx.logger.Debugw("Alignment finished",
		"method", alignment.Metrics.Method,
		"runs", len(runs),
	)

	printAlignReport(cmd, report)

	if runsOut != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(runsOut, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write runs: %w", err)
		}
		absOut, _ := filepath.Abs(runsOut)
		fmt.Fprintf(cmd.OutOrStdout(), "Runs written: %s\n", absOut)
	}
	return nil
}

func loadEditTokens(path string) ([]lexeme.EditedLexeme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read edit: %w", err)
	}
	tokens := lexeme.Tokenize(string(data))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("edit %s has no words", path)
	}
	return tokens, nil
}

func loadRanges(path string, mode align.RangeMode, total int) ([]align.Range, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ranges: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse ranges %s: %w", path, err)
	}

	key := "delete_ranges"
	if mode == align.KeepRanges {
		key = "keep_ranges"
	}
	raw, ok := payload[key].([]any)
	if !ok {
		raw, ok = payload["ranges"].([]any)
	}
	if !ok {
		return nil, fmt.Errorf("ranges file must contain a %q array", key)
	}
	return align.NormalizeRanges(raw, total, fmt.Sprintf("%s index range", mode))
}

func printAlignReport(cmd *cobra.Command, report alignReport) {
	out := cmd.OutOrStdout()
	m := report.Metrics
	fmt.Fprintf(out, "Method: %s\n", m.Method)
	fmt.Fprintf(out, "Words: %d original, %d edited, %d matched, %d to synthesize\n",
		m.OriginalWordCount, m.EditedWordCount, m.MatchedWordCount, m.TTSWordCount)
	fmt.Fprintf(out, "Match ratio: %.4f  Compression ratio: %.4f\n", m.MatchRatio, m.CompressionRatio)
	if m.DeletedWordCount != nil {
		fmt.Fprintf(out, "Deleted words: %d\n", *m.DeletedWordCount)
	}

	rows := make([][]string, len(report.Runs))
	planned := 0.0
	for i, r := range report.Runs {
		seconds := "-"
		if r.Kind == align.Original {
			seconds = strconv.FormatFloat(r.PlannedSeconds, 'f', 2, 64)
			planned += r.PlannedSeconds
		}
		rows[i] = []string{
			strconv.Itoa(r.RunIndex),
			r.Kind.String(),
			fmt.Sprintf("%d-%d", r.EditedStart, r.EditedEnd),
			strconv.Itoa(len(r.Chunks)),
			seconds,
			truncate(r.Text, alignTextPreview),
		}
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Kind", "Edited", "Chunks", "Seconds", "Text"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "Planned source audio: %.2fs in %d runs\n", planned, len(report.Runs))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
