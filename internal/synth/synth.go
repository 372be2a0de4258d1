// Package synth renders text to speech for edited words that have no
// source audio.
package synth

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// interface for text to speech
type Synthesizer interface {
	// writes spoken text to outputPath as WAV
	Synthesize(ctx context.Context, text, outputPath string) error
	// identifies the voice used, for manifests
	Voice() string
}

// options for OpenAI speech
type Options struct {
	Model        string
	Voice        string
	Instructions string
	Speed        float64
}

func DefaultOptions() Options {
	return Options{
		Model: "gpt-4o-mini-tts",
		Voice: "alloy",
		Speed: 1.0,
	}
}

// implements Synthesizer using the OpenAI speech endpoint
type OpenAISynthesizer struct {
	client  openai.Client
	options Options
}

func NewOpenAISynthesizer(apiKey string, opts Options) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	defaults := DefaultOptions()
	if opts.Model == "" {
		opts.Model = defaults.Model
	}
	if opts.Voice == "" {
		opts.Voice = defaults.Voice
	}
	if opts.Speed <= 0 {
		opts.Speed = defaults.Speed
	}

	return &OpenAISynthesizer{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		options: opts,
	}, nil
}

func (s *OpenAISynthesizer) Voice() string {
	return s.options.Model + "/" + s.options.Voice
}

func (s *OpenAISynthesizer) params(text string) openai.AudioSpeechNewParams {
	params := openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(s.options.Model),
		Voice:          openai.AudioSpeechNewParamsVoice(s.options.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
		Speed:          openai.Float(s.options.Speed),
	}
	if s.options.Instructions != "" {
		params.Instructions = openai.String(s.options.Instructions)
	}
	return params
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	if text == "" {
		return fmt.Errorf("nothing to synthesize")
	}

	resp, err := s.client.Audio.Speech.New(ctx, s.params(text))
	if err != nil {
		return fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	return writeBody(resp.Body, outputPath)
}

// writeBody streams r into path through a temp file so a failed
// download never leaves a partial output behind.
func writeBody(r io.Reader, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".speech-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write speech audio: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("speech response was empty")
	}

	return os.Rename(tmp.Name(), path)
}

// one text to render into Path
type Job struct {
	Text string
	Path string
}

// SynthesizeAll renders every job with up to concurrency requests in
// flight (3 when <= 0). Each job writes its own path, so output order is
// the job order regardless of completion order. The first failure cancels
// the rest.
func SynthesizeAll(ctx context.Context, s Synthesizer, jobs []Job, concurrency int) error {
	if len(jobs) == 0 {
		return nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)

	// semaphore to limit concurrency
	sem := make(chan struct{}, concurrency)

	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}

		wg.Go(func() {
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			if err := s.Synthesize(ctx, job.Text, job.Path); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("job %d (%q) failed: %w", i, job.Text, err)
				}
				mu.Unlock()
				cancel()
			}
		})
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
