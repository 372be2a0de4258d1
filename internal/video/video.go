// Package video extracts audio from video inputs and renders caption videos.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/trimcast/internal/ffmpeg"
	"github.com/mgpai22/trimcast/internal/subtitle"
)

// video file information
type Info struct {
	Path      string
	Duration  time.Duration
	Width     int
	Height    int
	FrameRate float64
	Codec     string
	HasAudio  bool
}

// defines interface for video processing operations
type Processor interface {
	// extracts audio from video file
	ExtractAudio(
		ctx context.Context,
		videoPath, outputPath string,
		opts ExtractAudioOptions,
	) error

	// retrieves video file information
	GetInfo(ctx context.Context, videoPath string) (*Info, error)

	// renders captions over a solid background with the given audio
	RenderCaptionVideo(
		ctx context.Context,
		captions *subtitle.Subtitle,
		audioPath, outputPath string,
		opts CaptionVideoOptions,
	) error
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // Output format (wav, mp3, aac, flac)
	SampleRate int    // Sample rate in Hz (e.g., 16000, 44100, 48000)
	Channels   int    // Number of channels (1 = mono, 2 = stereo)
	Bitrate    string // Bitrate for lossy formats (e.g., "128k", "320k")
}

// returns sensible defaults for audio extraction
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 48000,
		Channels:   1,
	}
}

// holds options for caption videos
type CaptionVideoOptions struct {
	Width      int
	Height     int
	FrameRate  int
	Background string
	FontName   string
	FontSize   int
	Duration   float64 // seconds of video; the audio may end sooner
}

func DefaultCaptionVideoOptions() CaptionVideoOptions {
	return CaptionVideoOptions{
		Width:      1920,
		Height:     1080,
		FrameRate:  30,
		Background: "black",
		FontName:   "Georgia",
		FontSize:   78,
	}
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	tc      *ffmpegbin.Toolchain
	tempDir string
}

func NewProcessor(tc *ffmpegbin.Toolchain, tempDir string) *DefaultProcessor {
	return &DefaultProcessor{
		tc:      tc,
		tempDir: tempDir,
	}
}

// extracts audio from video file
func (p *DefaultProcessor) ExtractAudio(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",              // No video
		"ar": opts.SampleRate, // Sample rate
		"ac": opts.Channels,   // Channels
	}

	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "aac":
		kwargs["acodec"] = "aac"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	if err := p.run(ctx, ffmpeg.Input(videoPath).Output(outputPath, kwargs), outputPath); err != nil {
		return fmt.Errorf("ffmpeg extraction failed: %w", err)
	}
	return nil
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		CodecName    string `json:"codec_name"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// retrieves video file information
func (p *DefaultProcessor) GetInfo(
	ctx context.Context,
	videoPath string,
) (*Info, error) {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	cmd := exec.CommandContext(ctx, p.tc.FFprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		videoPath,
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	info, err := parseInfo(out.Bytes())
	if err != nil {
		return nil, err
	}
	info.Path = videoPath
	return info, nil
}

func parseInfo(data []byte) (*Info, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{}
	if secs, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(secs * float64(time.Second))
	}

	for _, s := range probe.Streams {
		switch s.CodecType {
		case "video":
			if info.Codec != "" {
				continue
			}
			info.Codec = s.CodecName
			info.Width = s.Width
			info.Height = s.Height
			info.FrameRate = parseRate(s.AvgFrameRate)
		case "audio":
			info.HasAudio = true
		}
	}
	return info, nil
}

// parseRate reads ffprobe's "num/den" frame rates.
func parseRate(rate string) float64 {
	num, den, ok := strings.Cut(rate, "/")
	if !ok {
		v, _ := strconv.ParseFloat(rate, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// RenderCaptionVideo burns captions into a solid-color video muxed with
// audioPath. The ffmpeg build must provide the subtitles filter.
func (p *DefaultProcessor) RenderCaptionVideo(
	ctx context.Context,
	captions *subtitle.Subtitle,
	audioPath, outputPath string,
	opts CaptionVideoOptions,
) error {
	if !p.tc.HasFilter(ffmpegbin.FilterSubtitles) {
		return fmt.Errorf("ffmpeg at %s lacks the %q filter needed for caption video", p.tc.FFmpeg, ffmpegbin.FilterSubtitles)
	}
	if opts.Duration <= 0 {
		return fmt.Errorf("caption video duration must be positive, got %v", opts.Duration)
	}

	// the subtitles filter parses its path, so keep it somewhere predictable
	workDir, err := os.MkdirTemp(p.tempDir, "trimcast-captions-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	assPath := filepath.Join(workDir, "captions.ass")
	if err := captionStyle(opts).Write(captions, assPath); err != nil {
		return fmt.Errorf("failed to write caption track: %w", err)
	}

	if err := p.run(ctx, captionVideoStream(assPath, audioPath, outputPath, opts), outputPath); err != nil {
		return fmt.Errorf("caption video failed: %w", err)
	}
	return nil
}

// white top-left text with a thin outline, sized for the video frame
func captionStyle(opts CaptionVideoOptions) *subtitle.ASSWriter {
	return &subtitle.ASSWriter{
		Title:     "trimcast captions",
		FontName:  opts.FontName,
		FontSize:  opts.FontSize,
		Alignment: 7,
		Outline:   2,
		PlayResX:  opts.Width,
		PlayResY:  opts.Height,
		MarginL:   110,
		MarginR:   110,
		MarginV:   90,
	}
}

func captionVideoStream(assPath, audioPath, outputPath string, opts CaptionVideoOptions) *ffmpeg.Stream {
	background := fmt.Sprintf("color=c=%s:s=%dx%d:r=%d:d=%.3f",
		opts.Background, opts.Width, opts.Height, opts.FrameRate, opts.Duration)

	frames := ffmpeg.Input(background, ffmpeg.KwArgs{"f": "lavfi"}).
		Filter("subtitles", ffmpeg.Args{}, ffmpeg.KwArgs{"filename": assPath})
	sound := ffmpeg.Input(audioPath).Audio()

	return ffmpeg.Output([]*ffmpeg.Stream{frames, sound}, outputPath, ffmpeg.KwArgs{
		"c:v":      "libx264",
		"pix_fmt":  "yuv420p",
		"c:a":      "aac",
		"shortest": "",
	})
}

func (p *DefaultProcessor) run(ctx context.Context, stream *ffmpeg.Stream, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var stderr bytes.Buffer
	err := stream.
		OverWriteOutput().
		SetFfmpegPath(p.tc.FFmpeg).
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
