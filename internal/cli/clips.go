package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/trimcast/internal/pipeline"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clips [media_file]",
		Short: "Cut standalone clips chosen by a language model",
		Long: `Transcribe the recording and let a language model pick self-contained
clips, each a few word ranges of the original. Clips are cut from the
source audio only and get their own captions and caption video.

Examples:
  trimcast clips talk.mp4
  trimcast clips talk.mp4 --count 5 --min-words 80 --max-words 300`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClips(ctx, cmd, args)
		},
	}

	addRunFlags(cmd)
	cmd.Flags().
		IntP("count", "n", 0, "Number of clips to request (config default when 0)")
	cmd.Flags().
		Int("min-words", 0, "Minimum words per clip")
	cmd.Flags().
		Int("max-words", 0, "Maximum words per clip")
	cmd.Flags().
		Int("max-ranges", 0, "Maximum word ranges per clip")
	return cmd
}

func runClips(ctx *commandContext, cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	cfg := ctx.cfg

	for name, dst := range map[string]*int{
		"count":      &cfg.Clips.Count,
		"min-words":  &cfg.Clips.MinWords,
		"max-words":  &cfg.Clips.MaxWords,
		"max-ranges": &cfg.Clips.MaxRanges,
	} {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetInt(name)
		}
	}
	if err := ctx.applyRunFlags(cmd); err != nil {
		return err
	}
	opts := runOptions(cmd)

	ctx.logger.Infow("Starting clip selection",
		"input", inputPath,
		"count", cfg.Clips.Count,
		"min_words", cfg.Clips.MinWords,
		"max_words", cfg.Clips.MaxWords,
	)

	svc, err := ctx.newServices(cmd.Context(), serviceNeeds{resume: opts.Resume})
	if err != nil {
		return err
	}
	defer svc.Close()

	manifest, err := svc.pipeline.Clips(cmd.Context(), inputPath, opts)
	if err != nil {
		return fmt.Errorf("clips failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Rendered %d clips\n", len(manifest.Outputs.Clips))
	for _, c := range manifest.Outputs.Clips {
		fmt.Fprintf(out, "  %02d %s (%.2fs, %d words): %s\n",
			c.ClipNum, c.Title, c.OutputDuration, c.SelectedWordCount, c.AudioFile)
	}
	fmt.Fprintf(out, "  Manifest: %s\n", pipeline.NewLayout(cfg.Paths.OutputDir, inputPath).Manifest())
	return nil
}
