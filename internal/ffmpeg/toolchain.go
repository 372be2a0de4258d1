// Package ffmpeg locates the ffmpeg binaries once per run and records what
// the build can do.
//
// A Toolchain is a plain value: callers discover it at startup and pass it
// to everything that shells out to ffmpeg.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// filters the pipeline can use when present
const (
	FilterDenoise   = "afftdn"
	FilterSubtitles = "subtitles"
	FilterLoudnorm  = "loudnorm"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// resolved binaries plus the audio/video filters the ffmpeg build provides
type Toolchain struct {
	BinaryPaths
	filters map[string]bool
}

// options for Discover
type LocateOptions struct {
	// explicit binary paths; empty means look them up
	FFmpegPath  string
	FFprobePath string
	// download a static build into the user cache when none is found
	AllowDownload bool
}

// Discover resolves the binaries and probes the filter list.
func Discover(ctx context.Context, opts LocateOptions) (*Toolchain, error) {
	paths, err := Locate(ctx, opts)
	if err != nil {
		return nil, err
	}
	filters, err := probeFilters(ctx, paths.FFmpeg)
	if err != nil {
		return nil, err
	}
	return &Toolchain{BinaryPaths: paths, filters: filters}, nil
}

// NewToolchain builds a toolchain from known paths and filter names, for
// callers that probed elsewhere.
func NewToolchain(paths BinaryPaths, filters ...string) *Toolchain {
	set := make(map[string]bool, len(filters))
	for _, f := range filters {
		set[f] = true
	}
	return &Toolchain{BinaryPaths: paths, filters: set}
}

// HasFilter reports whether the ffmpeg build provides the named filter.
func (t *Toolchain) HasFilter(name string) bool {
	return t != nil && t.filters[name]
}

// Locate resolves ffmpeg and ffprobe: explicit options first, then
// TRIMCAST_FFMPEG_PATH / TRIMCAST_FFPROBE_PATH, then PATH, then a cached or
// downloaded static build.
func Locate(ctx context.Context, opts LocateOptions) (BinaryPaths, error) {
	paths := BinaryPaths{FFmpeg: opts.FFmpegPath, FFprobe: opts.FFprobePath}
	if paths.FFmpeg == "" {
		paths.FFmpeg = os.Getenv("TRIMCAST_FFMPEG_PATH")
	}
	if paths.FFprobe == "" {
		paths.FFprobe = os.Getenv("TRIMCAST_FFPROBE_PATH")
	}

	if paths.FFmpeg == "" {
		if found, err := exec.LookPath("ffmpeg"); err == nil {
			paths.FFmpeg = found
		}
	}
	if paths.FFprobe == "" {
		if found, err := exec.LookPath("ffprobe"); err == nil {
			paths.FFprobe = found
		}
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	if !opts.AllowDownload {
		return BinaryPaths{}, fmt.Errorf("ffmpeg and ffprobe not found on PATH; install them or set TRIMCAST_FFMPEG_PATH and TRIMCAST_FFPROBE_PATH")
	}
	return installCached(ctx)
}

func probeFilters(ctx context.Context, ffmpegPath string) (map[string]bool, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, "-hide_banner", "-filters")
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg filter probe failed: %w", err)
	}
	return parseFilterList(out.String()), nil
}

// parses `ffmpeg -filters` output; filter rows look like
// " TSC afftdn            A->A       Denoise audio samples using FFT."
func parseFilterList(output string) map[string]bool {
	filters := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.Contains(fields[2], "->") {
			continue
		}
		filters[fields[1]] = true
	}
	return filters
}
