package video

import (
	"context"
	"strings"
	"testing"
	"time"

	ffmpegbin "github.com/mgpai22/trimcast/internal/ffmpeg"
	"github.com/mgpai22/trimcast/internal/subtitle"
)

func TestParseInfo(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "video", "codec_name": "h264", "width": 1280, "height": 720, "avg_frame_rate": "30000/1001"},
			{"codec_type": "audio", "codec_name": "aac"}
		],
		"format": {"duration": "61.5"}
	}`)

	info, err := parseInfo(data)
	if err != nil {
		t.Fatalf("parseInfo() error = %v", err)
	}
	if info.Codec != "h264" || info.Width != 1280 || info.Height != 720 {
		t.Errorf("got %+v", info)
	}
	if !info.HasAudio {
		t.Error("expected HasAudio")
	}
	if info.Duration != 61500*time.Millisecond {
		t.Errorf("got duration %v, want 61.5s", info.Duration)
	}
	if info.FrameRate < 29.96 || info.FrameRate > 29.98 {
		t.Errorf("got frame rate %v, want ~29.97", info.FrameRate)
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"25", 25},
		{"0/0", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parseRate(tt.in); got != tt.want {
			t.Errorf("parseRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestCaptionVideoStream(t *testing.T) {
	opts := DefaultCaptionVideoOptions()
	opts.Duration = 12.5

	args := strings.Join(captionVideoStream("/tmp/c/captions.ass", "talk.wav", "out.mp4", opts).GetArgs(), " ")
	for _, want := range []string{
		"color=c=black:s=1920x1080:r=30:d=12.500",
		"subtitles",
		"captions.ass",
		"libx264",
		"yuv420p",
		"-shortest",
		"out.mp4",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q: %s", want, args)
		}
	}
}

func TestCaptionStyle(t *testing.T) {
	w := captionStyle(DefaultCaptionVideoOptions())
	if w.FontSize != 78 || w.PlayResX != 1920 || w.PlayResY != 1080 || w.Alignment != 7 {
		t.Errorf("got %+v", w)
	}
}

func TestRenderCaptionVideoRequiresSubtitlesFilter(t *testing.T) {
	tc := ffmpegbin.NewToolchain(ffmpegbin.BinaryPaths{FFmpeg: "ffmpeg", FFprobe: "ffprobe"})
	p := NewProcessor(tc, t.TempDir())

	opts := DefaultCaptionVideoOptions()
	opts.Duration = 1
	err := p.RenderCaptionVideo(context.Background(), &subtitle.Subtitle{}, "a.wav", "out.mp4", opts)
	if err == nil || !strings.Contains(err.Error(), "subtitles") {
		t.Errorf("got %v, want missing filter error", err)
	}
}

func TestRenderCaptionVideoRejectsZeroDuration(t *testing.T) {
	tc := ffmpegbin.NewToolchain(ffmpegbin.BinaryPaths{FFmpeg: "ffmpeg"}, ffmpegbin.FilterSubtitles)
	p := NewProcessor(tc, t.TempDir())

	err := p.RenderCaptionVideo(context.Background(), &subtitle.Subtitle{}, "a.wav", "out.mp4", DefaultCaptionVideoOptions())
	if err == nil {
		t.Error("expected error for zero duration")
	}
}
