// Package pipeline runs trimcast end to end: prepare and transcribe the
// input, edit the transcript, align it back onto the source words, splice
// or synthesize audio, and write captions, video and artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mgpai22/trimcast/internal/audio"
	"github.com/mgpai22/trimcast/internal/caption"
	"github.com/mgpai22/trimcast/internal/config"
	"github.com/mgpai22/trimcast/internal/edit"
	"github.com/mgpai22/trimcast/internal/lexeme"
	"github.com/mgpai22/trimcast/internal/logging"
	"github.com/mgpai22/trimcast/internal/subtitle"
	"github.com/mgpai22/trimcast/internal/synth"
	"github.com/mgpai22/trimcast/internal/transcribe"
	"github.com/mgpai22/trimcast/internal/video"
)

// collaborators of a pipeline; Transcriber, Editor and Synthesizer may be
// nil when the run does not need them
type Deps struct {
	Media       Media
	Transcriber transcribe.Transcriber
	Editor      *edit.Editor
	Synthesizer synth.Synthesizer
	Logger      *logging.Logger
}

type Pipeline struct {
	cfg         *config.Config
	media       Media
	transcriber transcribe.Transcriber
	editor      *edit.Editor
	synth       synth.Synthesizer
	logger      *logging.Logger
	now         func() time.Time
}

func New(cfg *config.Config, deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	return &Pipeline{
		cfg:         cfg,
		media:       deps.Media,
		transcriber: deps.Transcriber,
		editor:      deps.Editor,
		synth:       deps.Synthesizer,
		logger:      logger,
		now:         time.Now,
	}
}

// run-wide options shared by condense and clips
type RunOptions struct {
	// reuse transcript and edit artifacts from a previous run
	Resume bool
	// leave intermediate files under artifacts/
	KeepTemp bool
}

// state of one run over one input
type session struct {
	id             string
	input          string
	layout         Layout
	tempDir        string
	enhanced       string
	sourceDuration float64
	words          []lexeme.TimedWord
	plain          string
	resumed        bool
	release        func() error
	keepTemp       bool
}

func (p *Pipeline) begin(ctx context.Context, inputPath string, opts RunOptions) (*session, error) {
	if p.media == nil {
		return nil, errors.New("pipeline has no media backend")
	}
	if _, err := os.Stat(inputPath); err != nil {
		return nil, fmt.Errorf("input not found: %w", err)
	}
	if !audio.IsMediaFile(inputPath) {
		return nil, fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(inputPath))
	}

	layout := NewLayout(p.cfg.Paths.OutputDir, inputPath)
	if err := layout.Create(); err != nil {
		return nil, err
	}
	release, err := layout.Lock()
	if err != nil {
		return nil, err
	}

	tempDir, err := os.MkdirTemp(layout.Artifacts, "tmp-")
	if err != nil {
		_ = release()
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	s := &session{
		id:       uuid.NewString(),
		input:    inputPath,
		layout:   layout,
		tempDir:  tempDir,
		enhanced: layout.Artifact(enhancedAudioFile),
		release:  release,
		keepTemp: opts.KeepTemp,
	}
	p.logger.Infow("Run started",
		"run_id", s.id,
		"input", inputPath,
		"output_dir", layout.Root,
		"resume", opts.Resume,
	)

	if err := p.prepareSource(ctx, s, opts.Resume); err != nil {
		s.close(p.logger)
		return nil, err
	}
	if err := p.loadWords(ctx, s, opts.Resume); err != nil {
		s.close(p.logger)
		return nil, err
	}
	return s, nil
}

func (s *session) close(logger *logging.Logger) {
	if s.keepTemp {
		logger.Infow("Kept temp dir", "path", s.tempDir)
	} else if err := os.RemoveAll(s.tempDir); err != nil {
		logger.Warnw("Failed to remove temp dir", "path", s.tempDir, "error", err)
	}
	if err := s.release(); err != nil {
		logger.Warnw("Failed to release output lock", "error", err)
	}
}

// prepareSource writes the working-format source audio everything is cut
// from and measures it.
func (p *Pipeline) prepareSource(ctx context.Context, s *session, resume bool) error {
	if !resume || !fileExists(s.enhanced) {
		p.logger.Infow("Preparing source audio",
			"enhance", p.cfg.Audio.Enhance,
			"max_input_seconds", p.cfg.Audio.MaxSeconds,
		)
		opts := audio.EnhanceOptions{MaxSeconds: p.cfg.Audio.MaxSeconds, Raw: !p.cfg.Audio.Enhance}
		if err := p.media.Prepare(ctx, s.input, s.enhanced, opts); err != nil {
			return fmt.Errorf("failed to prepare audio: %w", err)
		}
	}

	dur, err := p.media.Duration(ctx, s.enhanced)
	if err != nil {
		return fmt.Errorf("failed to get audio duration: %w", err)
	}
	if dur <= 0 {
		return fmt.Errorf("source audio %s is empty", s.enhanced)
	}
	s.sourceDuration = dur
	p.logger.Infow("Audio prepared", "duration_seconds", round3(dur))
	return nil
}

// loadWords reuses transcript artifacts on resume, otherwise transcribes.
func (p *Pipeline) loadWords(ctx context.Context, s *session, resume bool) error {
	wordsPath := s.layout.Artifact(transcriptWordsFile)
	plainPath := s.layout.Artifact(transcriptPlainFile)

	if resume && fileExists(wordsPath) {
		words, err := lexeme.LoadTimedWords(wordsPath)
		if err != nil {
			return err
		}
		s.words = words
		s.resumed = true
		if plain, err := readText(plainPath); err == nil && plain != "" {
			s.plain = plain
		} else {
			s.plain = lexeme.JoinText(words)
		}
		p.logger.Infow("Resuming from transcript artifacts", "words", len(words))
		return nil
	}

	if p.transcriber == nil {
		return errors.New("no transcript artifacts to resume from and no transcriber configured")
	}

	chunkDur := time.Duration(p.cfg.Transcribe.ChunkMinutes) * time.Minute
	chunks, err := p.media.ChunkForTranscription(ctx, s.enhanced, filepath.Join(s.tempDir, "transcribe"), chunkDur)
	if err != nil {
		return fmt.Errorf("failed to split audio: %w", err)
	}
	p.logger.Infow("Transcribing audio",
		"chunks", len(chunks),
		"concurrency", p.cfg.Transcribe.Concurrency,
	)

	result, err := transcribe.TranscribeChunks(ctx, p.transcriber, chunks, p.cfg.Transcribe.Concurrency, p.cfg.Transcribe.Language)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	if len(result.Segments) == 0 {
		return errors.New("transcription produced no segments")
	}

	words := lexeme.CollectTimedWords(result.Segments)
	if len(words) == 0 {
		return errors.New("transcription produced no timed words")
	}
	s.words = words
	s.plain = transcribe.PlainText(result.Segments)

	if err := writeText(plainPath, s.plain); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	if err := lexeme.WriteTimedWords(wordsPath, words); err != nil {
		return fmt.Errorf("failed to write word timings: %w", err)
	}
	p.logger.Infow("Transcription complete",
		"segments", len(result.Segments),
		"words", len(words),
	)
	return nil
}

func (p *Pipeline) requireEditor() error {
	if p.editor == nil {
		return errors.New("no editor configured")
	}
	return nil
}

// writeCaptions lays timed words out as progressive captions over total
// seconds and writes them as SRT.
func (p *Pipeline) writeCaptions(words []lexeme.TimedText, total float64, path string) (*subtitle.Subtitle, error) {
	entries := caption.Build(words, total, p.cfg.RenderedCaptions())
	sub := caption.ToSubtitle(entries)
	sub.Format = string(subtitle.FormatSRT)

	writer, err := subtitle.NewWriter(subtitle.FormatSRT)
	if err != nil {
		return nil, err
	}
	if err := writer.Write(sub, path); err != nil {
		return nil, fmt.Errorf("failed to write subtitles: %w", err)
	}
	return sub, nil
}

// renderVideo writes the caption video when video output is enabled and
// returns its path, or "" when disabled.
func (p *Pipeline) renderVideo(ctx context.Context, sub *subtitle.Subtitle, audioPath, outputPath string, duration float64) (string, error) {
	if !p.cfg.Video.Enabled {
		return "", nil
	}
	opts := video.CaptionVideoOptions{
		Width:      p.cfg.Video.Width,
		Height:     p.cfg.Video.Height,
		FrameRate:  p.cfg.Video.FrameRate,
		Background: p.cfg.Video.Background,
		FontName:   p.cfg.Video.FontName,
		FontSize:   p.cfg.Video.FontSize,
		Duration:   duration,
	}
	p.logger.Infow("Rendering caption video", "output", outputPath)
	if err := p.media.CaptionVideo(ctx, sub, audioPath, outputPath, opts); err != nil {
		return "", fmt.Errorf("failed to render video: %w", err)
	}
	return outputPath, nil
}

func (p *Pipeline) baseManifest(s *session, workflow string) *Manifest {
	return &Manifest{
		RunID:               s.id,
		Workflow:            workflow,
		CreatedAt:           p.now().UTC(),
		InputAudio:          s.input,
		EnhancedAudio:       s.enhanced,
		MaxInputSeconds:     p.cfg.Audio.MaxSeconds,
		Resumed:             s.resumed,
		TranscriptPlainFile: s.layout.Artifact(transcriptPlainFile),
		TranscriptWordsFile: s.layout.Artifact(transcriptWordsFile),
		TimingControls:      timingControls(p.cfg),
	}
}
