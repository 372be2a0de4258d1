// Package transcribe produces word-timed transcripts from audio through a
// speech-to-text provider.
package transcribe

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/mgpai22/trimcast/internal/audio"
	"github.com/mgpai22/trimcast/internal/lexeme"
)

// transcription result; times are seconds
type Result struct {
	Segments []lexeme.Segment
	Language string
	Duration float64
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
	Close() error
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Language           string // Source language of audio
	TranscriptLanguage string // Output language for transcript (default: "native")
	Model              string
	Prompt             string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// holds the result of transcribing a chunk
type chunkResult struct {
	Index    int
	Segments []lexeme.Segment
	Error    error
}

// transcribes a single chunk and moves its timestamps to the chunk offset
func transcribeChunk(ctx context.Context, t Transcriber, chunk audio.ChunkInfo) ([]lexeme.Segment, error) {
	result, err := t.Transcribe(ctx, chunk.Path)
	if err != nil {
		return nil, err
	}
	return shiftSegments(result.Segments, chunk.StartTime.Seconds()), nil
}

func shiftSegments(segments []lexeme.Segment, offset float64) []lexeme.Segment {
	out := make([]lexeme.Segment, len(segments))
	for i, seg := range segments {
		words := make([]lexeme.Word, len(seg.Words))
		for j, w := range seg.Words {
			words[j] = lexeme.Word{Text: w.Text, Start: w.Start + offset, End: w.End + offset}
		}
		out[i] = lexeme.Segment{
			Text:  seg.Text,
			Start: seg.Start + offset,
			End:   seg.End + offset,
			Words: words,
		}
	}
	return out
}

// TranscribeChunks transcribes chunks in parallel with up to concurrency
// requests in flight (3 when <= 0) and merges them in chunk order. The
// first failure cancels the remaining work.
func TranscribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.ChunkInfo,
	concurrency int,
	language string,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan audio.ChunkInfo)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for range concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case chunk, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					segments, err := transcribeChunk(ctx, t, chunk)
					if err != nil {
						cancel()
					}
					resultChan <- chunkResult{
						Index:    chunk.Index,
						Segments: segments,
						Error:    err,
					}
				}
			}
		})
	}

	go func() {
		defer close(workChan)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]chunkResult, 0, len(chunks))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf("chunk %d failed: %w", result.Index, result.Error)
			cancel()
		}
		if result.Error == nil {
			results = append(results, result)
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if len(results) != len(chunks) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("transcribed %d of %d chunks", len(results), len(chunks))
	}

	// sort by index to maintain order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	// merge
	var allSegments []lexeme.Segment
	for _, r := range results {
		allSegments = append(allSegments, r.Segments...)
	}

	return &Result{
		Segments: allSegments,
		Language: language,
		Duration: chunks[len(chunks)-1].EndTime.Seconds(),
	}, nil
}

// PlainText joins segment texts one per line, skipping empty ones.
func PlainText(segments []lexeme.Segment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		text := strings.Join(strings.Fields(seg.Text), " ")
		if text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

var jsonBlockRegex = regexp.MustCompile("```(?:json)?\\s*")

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	// remove ```json and ``` markers
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
