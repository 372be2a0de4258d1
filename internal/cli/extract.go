package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	ffmpegbin "github.com/mgpai22/trimcast/internal/ffmpeg"
	"github.com/mgpai22/trimcast/internal/video"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [video_file]",
		Short: "Extract audio from a video file",
		Long: `Extract the audio track from a video file and save it as a separate audio file.

Supports multiple output formats: wav, mp3, aac, flac.

Examples:
  trimcast extract video.mp4
  trimcast extract video.mp4 -o audio.mp3 -f mp3
  trimcast extract video.mp4 --format wav --sample-rate 44100 --channels 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(ctx, cmd, args)
		},
	}

	defaults := video.DefaultExtractAudioOptions()
	cmd.Flags().
		StringP("output", "o", "", "Output file path")
	cmd.Flags().
		StringP("format", "f", "wav", "Output audio format (wav, mp3, aac, flac)")
	cmd.Flags().
		IntP("sample-rate", "r", defaults.SampleRate, "Sample rate in Hz (e.g., 16000, 44100, 48000)")
	cmd.Flags().
		Int("channels", defaults.Channels, "Number of audio channels (1=mono, 2=stereo)")
	cmd.Flags().
		StringP("bitrate", "b", "", "Bitrate for lossy formats (e.g., 128k, 320k)")
	return cmd
}

var validExtractFormats = map[string]bool{
	"wav":  true,
	"mp3":  true,
	"aac":  true,
	"flac": true,
}

func runExtract(ctx *commandContext, cmd *cobra.Command, args []string) error {
	videoPath := args[0]

	format, _ := cmd.Flags().GetString("format")
	sampleRate, _ := cmd.Flags().GetInt("sample-rate")
	channels, _ := cmd.Flags().GetInt("channels")
	bitrate, _ := cmd.Flags().GetString("bitrate")
	outputPath, _ := cmd.Flags().GetString("output")

	format = strings.ToLower(format)
	if !validExtractFormats[format] {
		return fmt.Errorf(
			"invalid format %q: supported formats are wav, mp3, aac, flac",
			format,
		)
	}
	if outputPath == "" {
		outputPath = strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "." + format
	}

	tc, err := ffmpegbin.Discover(cmd.Context(), ffmpegbin.LocateOptions{
		FFmpegPath:    ctx.cfg.Paths.FFmpegPath,
		FFprobePath:   ctx.cfg.Paths.FFprobePath,
		AllowDownload: ctx.cfg.Paths.DownloadFFmpeg,
	})
	if err != nil {
		return fmt.Errorf("ffmpeg unavailable: %w", err)
	}

	ctx.logger.Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
		"format", format,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	processor := video.NewProcessor(tc, "")
	info, err := processor.GetInfo(cmd.Context(), videoPath)
	if err != nil {
		return fmt.Errorf("failed to probe input: %w", err)
	}
	if !info.HasAudio {
		return fmt.Errorf("%s has no audio stream", videoPath)
	}
	ctx.logger.Debugw("Probed input",
		"duration", info.Duration.String(),
		"width", info.Width,
		"height", info.Height,
		"codec", info.Codec,
	)

	opts := video.ExtractAudioOptions{
		Format:     format,
		SampleRate: sampleRate,
		Channels:   channels,
		Bitrate:    bitrate,
	}
	if err := processor.ExtractAudio(cmd.Context(), videoPath, outputPath, opts); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Audio extracted successfully: %s\n", absOutput)
	return nil
}
