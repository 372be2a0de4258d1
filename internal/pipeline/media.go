package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/mgpai22/trimcast/internal/audio"
	ffmpegbin "github.com/mgpai22/trimcast/internal/ffmpeg"
	"github.com/mgpai22/trimcast/internal/subtitle"
	"github.com/mgpai22/trimcast/internal/timeline"
	"github.com/mgpai22/trimcast/internal/video"
)

// audio and video operations the pipeline runs
type Media interface {
	Duration(ctx context.Context, path string) (float64, error)
	Prepare(ctx context.Context, inputPath, outputPath string, opts audio.EnhanceOptions) error
	// compressed chunks of the input for speech-to-text
	ChunkForTranscription(ctx context.Context, inputPath, workDir string, chunk time.Duration) ([]audio.ChunkInfo, error)
	Splice(ctx context.Context, inputPath, outputPath string, chunks []timeline.SourceChunk, pauses []float64) error
	Standardize(ctx context.Context, inputPath, outputPath string, softEdges bool) error
	Silence(ctx context.Context, outputPath string, seconds float64) error
	Concat(ctx context.Context, files []string, outputPath string) error
	CaptionVideo(ctx context.Context, captions *subtitle.Subtitle, audioPath, outputPath string, opts video.CaptionVideoOptions) error
}

// Media implementation on the ffmpeg toolchain
type FFmpegMedia struct {
	tc        *ffmpegbin.Toolchain
	processor video.Processor
	chunkJobs int
}

func NewFFmpegMedia(tc *ffmpegbin.Toolchain, tempDir string) *FFmpegMedia {
	return &FFmpegMedia{
		tc:        tc,
		processor: video.NewProcessor(tc, tempDir),
		chunkJobs: 4,
	}
}

func (m *FFmpegMedia) Duration(ctx context.Context, path string) (float64, error) {
	return audio.DurationSeconds(ctx, m.tc, path)
}

func (m *FFmpegMedia) Prepare(ctx context.Context, inputPath, outputPath string, opts audio.EnhanceOptions) error {
	return audio.Enhance(ctx, m.tc, inputPath, outputPath, opts)
}

func (m *FFmpegMedia) ChunkForTranscription(
	ctx context.Context,
	inputPath, workDir string,
	chunk time.Duration,
) ([]audio.ChunkInfo, error) {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, err
	}
	compressed := filepath.Join(workDir, "transcribe.mp3")
	if err := audio.CompressAudio(ctx, m.tc, inputPath, compressed, audio.DefaultCompressionOptions()); err != nil {
		return nil, err
	}
	return audio.ChunkAudio(ctx, m.tc, compressed, chunk, filepath.Join(workDir, "chunks"), m.chunkJobs)
}

func (m *FFmpegMedia) Splice(
	ctx context.Context,
	inputPath, outputPath string,
	chunks []timeline.SourceChunk,
	pauses []float64,
) error {
	return audio.SpliceChunks(ctx, m.tc, inputPath, outputPath, chunks, pauses)
}

func (m *FFmpegMedia) Standardize(ctx context.Context, inputPath, outputPath string, softEdges bool) error {
	return audio.Standardize(ctx, m.tc, inputPath, outputPath, softEdges)
}

func (m *FFmpegMedia) Silence(ctx context.Context, outputPath string, seconds float64) error {
	return audio.MakeSilence(ctx, m.tc, outputPath, seconds)
}

func (m *FFmpegMedia) Concat(ctx context.Context, files []string, outputPath string) error {
	return audio.ConcatFiles(ctx, m.tc, files, outputPath)
}

func (m *FFmpegMedia) CaptionVideo(
	ctx context.Context,
	captions *subtitle.Subtitle,
	audioPath, outputPath string,
	opts video.CaptionVideoOptions,
) error {
	return m.processor.RenderCaptionVideo(ctx, captions, audioPath, outputPath, opts)
}
