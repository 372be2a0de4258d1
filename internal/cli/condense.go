package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/trimcast/internal/config"
	"github.com/mgpai22/trimcast/internal/pipeline"
)

func newCondenseCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "condense [media_file]",
		Short: "Shorten a recording by editing its transcript",
		Long: `Transcribe the recording, have a language model tighten the transcript,
and rebuild the audio from the original words.

Modes:
  hybrid   free minimal edit; words the edit adds are synthesized
  strict   deletion-only edit; fails instead of synthesizing
  ranges   the model picks word index ranges to delete

Outputs land in <output_dir>/<input name>/: clips/01_Condensed.wav and .srt,
videos/01_Condensed.mp4, artifacts/ and manifest.json.

Examples:
  trimcast condense talk.mp4
  trimcast condense talk.wav --mode strict --no-video
  trimcast condense talk.wav --resume --edit-provider anthropic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCondense(ctx, cmd, args)
		},
	}

	cmd.Flags().
		StringP("mode", "m", string(pipeline.ModeHybrid), "Edit mode (hybrid, strict, ranges)")
	addRunFlags(cmd)
	cmd.Flags().
		String("voice", "", "TTS voice for synthesized words")
	return cmd
}

// flags shared by condense and clips
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().
		StringP("output-dir", "o", "", "Directory that receives the run outputs")
	cmd.Flags().
		Bool("resume", false, "Reuse transcript and edit artifacts from a previous run")
	cmd.Flags().
		Bool("keep-temp", false, "Keep intermediate audio under artifacts/")
	cmd.Flags().
		Float64("max-input-seconds", 0, "Only process the first N seconds of input (0 = all)")
	cmd.Flags().
		Bool("no-video", false, "Skip the caption video")
	cmd.Flags().
		Bool("no-enhance", false, "Skip the speech enhancement filters")
	cmd.Flags().
		String("transcribe-provider", "", "Transcription provider (openai, gemini)")
	cmd.Flags().
		String("edit-provider", "", "Editing provider (gemini, openai, anthropic)")
	cmd.Flags().
		String("edit-model", "", "Model used for editing (provider default when empty)")
	cmd.Flags().
		String("prompt", "", "Extra instructions for the editor")
	cmd.Flags().
		StringP("language", "l", "", "Language code of the recording (e.g., en, es)")
}

// applyRunFlags lets explicitly set flags win over the config file.
func (c *commandContext) applyRunFlags(cmd *cobra.Command) error {
	cfg := c.cfg
	flags := cmd.Flags()

	if flags.Changed("output-dir") {
		dir, _ := flags.GetString("output-dir")
		expanded, err := config.ExpandPath(dir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		cfg.Paths.OutputDir = expanded
	}
	if flags.Changed("max-input-seconds") {
		cfg.Audio.MaxSeconds, _ = flags.GetFloat64("max-input-seconds")
	}
	if noVideo, _ := flags.GetBool("no-video"); noVideo {
		cfg.Video.Enabled = false
	}
	if noEnhance, _ := flags.GetBool("no-enhance"); noEnhance {
		cfg.Audio.Enhance = false
	}
	if flags.Changed("transcribe-provider") {
		v, _ := flags.GetString("transcribe-provider")
		cfg.Transcribe.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if flags.Changed("edit-provider") {
		v, _ := flags.GetString("edit-provider")
		cfg.Edit.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if flags.Changed("edit-model") {
		cfg.Edit.Model, _ = flags.GetString("edit-model")
	}
	if flags.Changed("prompt") {
		cfg.Edit.Prompt, _ = flags.GetString("prompt")
	}
	if flags.Changed("language") {
		cfg.Transcribe.Language, _ = flags.GetString("language")
	}
	if flags.Changed("voice") {
		cfg.TTS.Voice, _ = flags.GetString("voice")
	}
	return cfg.Validate()
}

func runOptions(cmd *cobra.Command) pipeline.RunOptions {
	resume, _ := cmd.Flags().GetBool("resume")
	keepTemp, _ := cmd.Flags().GetBool("keep-temp")
	return pipeline.RunOptions{Resume: resume, KeepTemp: keepTemp}
}

func runCondense(ctx *commandContext, cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	modeStr, _ := cmd.Flags().GetString("mode")
	mode, err := pipeline.ParseMode(modeStr)
	if err != nil {
		return err
	}
	if err := ctx.applyRunFlags(cmd); err != nil {
		return err
	}
	opts := runOptions(cmd)

	ctx.logger.Infow("Starting condense",
		"input", inputPath,
		"mode", mode,
		"output_dir", ctx.cfg.Paths.OutputDir,
		"transcribe_provider", ctx.cfg.Transcribe.Provider,
		"edit_provider", ctx.cfg.Edit.Provider,
	)

	svc, err := ctx.newServices(cmd.Context(), serviceNeeds{
		resume:     opts.Resume,
		synthesize: !mode.OriginalOnly(),
	})
	if err != nil {
		return err
	}
	defer svc.Close()

	manifest, err := svc.pipeline.Condense(cmd.Context(), inputPath, mode, opts)
	if err != nil {
		return fmt.Errorf("condense failed: %w", err)
	}

	out := cmd.OutOrStdout()
	absAudio, _ := filepath.Abs(manifest.Outputs.AudioFile)
	fmt.Fprintf(out, "Condensed audio written: %s\n", absAudio)
	fmt.Fprintf(out, "  Subtitles: %s\n", manifest.Outputs.SubtitleFile)
	if manifest.Outputs.VideoFile != "" {
		fmt.Fprintf(out, "  Video: %s\n", manifest.Outputs.VideoFile)
	}
	fmt.Fprintf(out, "  Duration: %.2fs\n", manifest.Outputs.FinalDurationSeconds)
	if m := manifest.AlignmentMetrics; m != nil {
		fmt.Fprintf(out, "  Words: %d of %d kept (compression %.2f)\n",
			m.MatchedWordCount, m.OriginalWordCount, m.CompressionRatio)
	}
	if manifest.TTSInsertedWordCount > 0 {
		fmt.Fprintf(out, "  Synthesized words: %d (voice %s)\n", manifest.TTSInsertedWordCount, manifest.TTSVoice)
	}
	fmt.Fprintf(out, "  Manifest: %s\n", pipeline.NewLayout(ctx.cfg.Paths.OutputDir, inputPath).Manifest())
	return nil
}
