package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/trimcast/internal/caption"
	"github.com/mgpai22/trimcast/internal/lexeme"
	"github.com/mgpai22/trimcast/internal/subtitle"
)

func newCaptionsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "captions [input_file]",
		Short: "Write progressive captions from word timings, subtitles or text",
		Long: `Build progressive captions: each page fills in word by word as it is
spoken, and a page stays on screen until the next one starts.

The input may be:
  .json      word timings (transcript_words.json or edited_timed_words.json)
  .srt/.vtt  an existing subtitle file; cue words are spread across each cue
  other      plain text spread evenly over --duration seconds

Examples:
  trimcast captions artifacts/edited_timed_words.json -f vtt
  trimcast captions old.srt -o paged.srt --max-chars 42
  trimcast captions script.txt --duration 95.5 -f ass`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCaptions(ctx, cmd, args)
		},
	}

	cmd.Flags().
		StringP("output", "o", "", "Output file path")
	cmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	cmd.Flags().
		Float64P("duration", "d", 0, "Total duration in seconds (required for plain text)")
	cmd.Flags().
		Int("max-chars", 0, "Maximum characters per caption line")
	cmd.Flags().
		Int("max-lines", 0, "Maximum lines per caption page")
	cmd.Flags().
		Bool("rendered", false, "Use the layout of captions burned into video")
	return cmd
}

func parseFormat(s string) (subtitle.Format, error) {
	switch f := subtitle.Format(strings.ToLower(strings.TrimSpace(s))); f {
	case subtitle.FormatSRT, subtitle.FormatVTT, subtitle.FormatASS:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q: use srt, vtt, or ass", s)
}

func runCaptions(ctx *commandContext, cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	duration, _ := cmd.Flags().GetFloat64("duration")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	maxLines, _ := cmd.Flags().GetInt("max-lines")
	rendered, _ := cmd.Flags().GetBool("rendered")

	format, err := parseFormat(formatStr)
	if err != nil {
		return err
	}
	if duration < 0 {
		return fmt.Errorf("duration must be >= 0, got %v", duration)
	}

	opts := ctx.cfg.TextCaptions()
	if rendered {
		opts = ctx.cfg.RenderedCaptions()
	}
	if maxChars > 0 {
		opts.MaxCharsPerLine = maxChars
	}
	if maxLines > 0 {
		opts.MaxLinesPerPage = maxLines
	}

	words, err := loadCaptionWords(inputPath, duration)
	if err != nil {
		return err
	}
	total := duration
	if n := len(words); n > 0 && words[n-1].End > total {
		total = words[n-1].End
	}

	if outputPath == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		outputPath = base + "_captions" + subtitle.GetExtensionForFormat(format)
	}

	ctx.logger.Infow("Building captions",
		"input", inputPath,
		"output", outputPath,
		"words", len(words),
		"duration", total,
		"max_chars", opts.MaxCharsPerLine,
		"max_lines", opts.MaxLinesPerPage,
	)

	entries := caption.Build(words, total, opts)
	sub := caption.ToSubtitle(entries)
	sub.Format = string(format)

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}
	if err := writer.Write(sub, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Captions written: %s\n", absOutput)
	fmt.Fprintf(out, "  Entries: %d\n", len(sub.Entries))
	return nil
}

// loadCaptionWords reads timed words from any supported input.
func loadCaptionWords(path string, duration float64) ([]lexeme.TimedText, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return lexeme.LoadTimedText(path)
	case ".srt", ".vtt":
		sub, err := subtitle.Read(path)
		if err != nil {
			return nil, err
		}
		return caption.FromSubtitle(sub), nil
	}

	if duration <= 0 {
		return nil, fmt.Errorf("--duration is required for plain text input")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}
	return caption.FromTextDuration(string(data), duration), nil
}
