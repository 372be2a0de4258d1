package cli

import (
	"context"
	"fmt"

	"github.com/mgpai22/trimcast/internal/config"
	"github.com/mgpai22/trimcast/internal/edit"
	ffmpegbin "github.com/mgpai22/trimcast/internal/ffmpeg"
	"github.com/mgpai22/trimcast/internal/pipeline"
	"github.com/mgpai22/trimcast/internal/synth"
	"github.com/mgpai22/trimcast/internal/transcribe"
)

// which collaborators a command wants
type serviceNeeds struct {
	resume     bool
	synthesize bool
}

// pipeline plus the clients that must be closed after it ran
type services struct {
	pipeline *pipeline.Pipeline
	closers  []func() error
}

func (s *services) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

// missingKeyError explains where a provider key can come from.
func missingKeyError(provider string) error {
	return fmt.Errorf(
		"%s API key is required: set %s or keys.%s in the config file",
		provider, config.EnvKey(provider), provider,
	)
}

// newServices resolves ffmpeg once and builds the provider clients the run
// needs. With resume a missing transcription or edit key is tolerated since
// the artifacts may already hold their results.
func (c *commandContext) newServices(ctx context.Context, needs serviceNeeds) (*services, error) {
	cfg := c.cfg

	tc, err := ffmpegbin.Discover(ctx, ffmpegbin.LocateOptions{
		FFmpegPath:    cfg.Paths.FFmpegPath,
		FFprobePath:   cfg.Paths.FFprobePath,
		AllowDownload: cfg.Paths.DownloadFFmpeg,
	})
	if err != nil {
		return nil, fmt.Errorf("ffmpeg unavailable: %w", err)
	}
	c.logger.Debugw("Resolved ffmpeg",
		"ffmpeg", tc.FFmpeg,
		"ffprobe", tc.FFprobe,
		"denoise", tc.HasFilter(ffmpegbin.FilterDenoise),
	)

	svc := &services{}
	deps := pipeline.Deps{
		Media:  pipeline.NewFFmpegMedia(tc, ""),
		Logger: c.logger,
	}

	if key := cfg.APIKey(cfg.Transcribe.Provider); key != "" {
		t, err := transcribe.Factory(ctx, transcribe.Provider(cfg.Transcribe.Provider), key, transcribe.Options{
			Language:           cfg.Transcribe.Language,
			TranscriptLanguage: cfg.Transcribe.TranscriptLanguage,
			Model:              cfg.Transcribe.Model,
		})
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("failed to create transcriber: %w", err)
		}
		deps.Transcriber = t
		svc.closers = append(svc.closers, t.Close)
	} else if !needs.resume {
		return nil, missingKeyError(cfg.Transcribe.Provider)
	}

	if key := cfg.APIKey(cfg.Edit.Provider); key != "" {
		completer, err := edit.Factory(ctx, edit.Provider(cfg.Edit.Provider), key, edit.Options{
			Model:  cfg.Edit.Model,
			Prompt: cfg.Edit.Prompt,
		})
		if err != nil {
			svc.Close()
			return nil, fmt.Errorf("failed to create editor: %w", err)
		}
		deps.Editor = edit.NewEditor(completer, edit.Options{Prompt: cfg.Edit.Prompt})
		svc.closers = append(svc.closers, completer.Close)
	} else if !needs.resume {
		svc.Close()
		return nil, missingKeyError(cfg.Edit.Provider)
	}

	if needs.synthesize {
		if key := cfg.APIKey("openai"); key != "" {
			s, err := synth.NewOpenAISynthesizer(key, synth.Options{
				Model:        cfg.TTS.Model,
				Voice:        cfg.TTS.Voice,
				Instructions: cfg.TTS.Instructions,
				Speed:        cfg.TTS.Speed,
			})
			if err != nil {
				svc.Close()
				return nil, fmt.Errorf("failed to create synthesizer: %w", err)
			}
			deps.Synthesizer = s
		} else {
			c.logger.Warnw("No OpenAI key; edits that add words will fail",
				"env", config.EnvKey("openai"),
			)
		}
	}

	svc.pipeline = pipeline.New(cfg, deps)
	return svc, nil
}
