package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/trimcast/internal/ffmpeg"
	"github.com/mgpai22/trimcast/internal/timeline"
)

// working format for every intermediate file
const (
	SampleRate = 48000
	Channels   = 1
)

const (
	fadeIn       = 0.008
	fadeOut      = 0.010
	softEdgeFade = 0.006
	minPause     = 0.001
	minSilence   = 0.01
)

func pcmArgs() ffmpeg.KwArgs {
	return ffmpeg.KwArgs{"c:a": "pcm_s16le", "ar": SampleRate, "ac": Channels}
}

func seconds(v float64) string {
	return fmt.Sprintf("%.6f", v)
}

// enhancement options
type EnhanceOptions struct {
	// only the first MaxSeconds of input are processed when > 0
	MaxSeconds float64
	// convert to the working format without any filtering
	Raw bool
}

// enhanceStream cleans up speech: band limiting, optional denoise,
// compression and loudness normalization.
func enhanceStream(tc *ffmpegbin.Toolchain, inputPath, outputPath string, opts EnhanceOptions) *ffmpeg.Stream {
	in := ffmpeg.KwArgs{}
	if opts.MaxSeconds > 0 {
		in["t"] = seconds(opts.MaxSeconds)
	}

	s := ffmpeg.Input(inputPath, in).Audio()
	if opts.Raw {
		return s.Output(outputPath, pcmArgs())
	}

	s = s.
		Filter("highpass", ffmpeg.Args{}, ffmpeg.KwArgs{"f": 70}).
		Filter("lowpass", ffmpeg.Args{}, ffmpeg.KwArgs{"f": 12000})
	if tc.HasFilter(ffmpegbin.FilterDenoise) {
		s = s.Filter("afftdn", ffmpeg.Args{}, ffmpeg.KwArgs{"nf": -20})
	}
	s = s.Filter("acompressor", ffmpeg.Args{}, ffmpeg.KwArgs{
		"threshold": "-18dB",
		"ratio":     3,
		"attack":    5,
		"release":   50,
		"makeup":    3,
	}).Filter("loudnorm", ffmpeg.Args{}, ffmpeg.KwArgs{"I": -16, "LRA": 11, "TP": -1.5})

	return s.Output(outputPath, pcmArgs())
}

// Enhance writes a cleaned 48 kHz mono WAV of the input's audio.
func Enhance(ctx context.Context, tc *ffmpegbin.Toolchain, inputPath, outputPath string, opts EnhanceOptions) error {
	if err := run(ctx, tc, enhanceStream(tc, inputPath, outputPath, opts), outputPath); err != nil {
		return fmt.Errorf("enhance failed: %w", err)
	}
	return nil
}

// spliceStream trims every chunk out of the input with short edge fades
// and joins them with generated silence of the given pause lengths.
func spliceStream(inputPath, outputPath string, chunks []timeline.SourceChunk, pauses []float64) *ffmpeg.Stream {
	src := ffmpeg.Input(inputPath).Audio()

	var parts []*ffmpeg.Stream
	for i, c := range chunks {
		dur := c.Duration()
		fi := min(fadeIn, dur*0.25)
		fo := min(fadeOut, dur*0.25)

		part := src.
			Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"start": seconds(c.SourceStart), "end": seconds(c.SourceEnd)}).
			Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"}).
			Filter("afade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "in", "st": 0, "d": seconds(fi)}).
			Filter("afade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "out", "st": seconds(max(0, dur-fo)), "d": seconds(fo)})
		parts = append(parts, part)

		if i < len(pauses) && pauses[i] > minPause {
			silence := ffmpeg.Input(fmt.Sprintf("anullsrc=r=%d:cl=mono", SampleRate), ffmpeg.KwArgs{"f": "lavfi"}).
				Filter("atrim", ffmpeg.Args{}, ffmpeg.KwArgs{"start": 0, "end": seconds(pauses[i])}).
				Filter("asetpts", ffmpeg.Args{"PTS-STARTPTS"})
			parts = append(parts, silence)
		}
	}

	return ffmpeg.Concat(parts, ffmpeg.KwArgs{"v": 0, "a": 1}).Output(outputPath, pcmArgs())
}

// SpliceChunks renders one original run: the chunks of the source, in
// order, separated by pauses.
func SpliceChunks(
	ctx context.Context,
	tc *ffmpegbin.Toolchain,
	inputPath, outputPath string,
	chunks []timeline.SourceChunk,
	pauses []float64,
) error {
	if len(chunks) == 0 {
		return fmt.Errorf("no chunks to splice")
	}
	if err := run(ctx, tc, spliceStream(inputPath, outputPath, chunks, pauses), outputPath); err != nil {
		return fmt.Errorf("splice failed: %w", err)
	}
	return nil
}

func standardizeStream(inputPath, outputPath string, softEdges bool) *ffmpeg.Stream {
	s := ffmpeg.Input(inputPath).Audio()
	if softEdges {
		s = s.
			Filter("afade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "in", "st": 0, "d": softEdgeFade}).
			Filter("areverse", ffmpeg.Args{}).
			Filter("afade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "in", "st": 0, "d": softEdgeFade}).
			Filter("areverse", ffmpeg.Args{})
	}
	return s.Output(outputPath, pcmArgs())
}

// Standardize converts any audio to the working format. softEdges fades
// both ends slightly, which hides clicks on synthesized speech.
func Standardize(ctx context.Context, tc *ffmpegbin.Toolchain, inputPath, outputPath string, softEdges bool) error {
	if err := run(ctx, tc, standardizeStream(inputPath, outputPath, softEdges), outputPath); err != nil {
		return fmt.Errorf("standardize failed: %w", err)
	}
	return nil
}

func silenceStream(outputPath string, duration float64) *ffmpeg.Stream {
	args := pcmArgs()
	args["t"] = seconds(max(minSilence, duration))
	return ffmpeg.Input(fmt.Sprintf("anullsrc=r=%d:cl=mono", SampleRate), ffmpeg.KwArgs{"f": "lavfi"}).
		Output(outputPath, args)
}

// MakeSilence writes duration seconds of silence (at least 10 ms).
func MakeSilence(ctx context.Context, tc *ffmpegbin.Toolchain, outputPath string, duration float64) error {
	if err := run(ctx, tc, silenceStream(outputPath, duration), outputPath); err != nil {
		return fmt.Errorf("silence failed: %w", err)
	}
	return nil
}

// concatList renders the concat demuxer's list file.
func concatList(files []string) string {
	var b strings.Builder
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(abs, "'", `'\''`))
	}
	return b.String()
}

// ConcatFiles joins working-format files end to end.
func ConcatFiles(ctx context.Context, tc *ffmpegbin.Toolchain, files []string, outputPath string) error {
	if len(files) == 0 {
		return fmt.Errorf("no files to concatenate")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	listFile, err := os.CreateTemp(filepath.Dir(outputPath), "concat_*.txt")
	if err != nil {
		return fmt.Errorf("failed to create concat list: %w", err)
	}
	listPath := listFile.Name()
	defer os.Remove(listPath)

	if _, err := listFile.WriteString(concatList(files)); err != nil {
		listFile.Close()
		return fmt.Errorf("failed to write concat list: %w", err)
	}
	if err := listFile.Close(); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}

	stream := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).Output(outputPath, pcmArgs())
	if err := run(ctx, tc, stream, outputPath); err != nil {
		return fmt.Errorf("concat failed: %w", err)
	}
	return nil
}
