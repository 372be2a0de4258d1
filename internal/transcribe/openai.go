package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

// implements Transcriber interface using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// segment from OpenAI Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// word from the verbose_json words array
type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Words    []whisperWord    `json:"words"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	if t.shouldUseTranslation() {
		return t.transcribeWithTranslation(ctx, file)
	}

	return t.transcribeWithTimestamps(ctx, file)
}

func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

// translation has no word granularity; words are spread over segments later
func (t *OpenAITranscriber) transcribeWithTranslation(
	ctx context.Context,
	file *os.File,
) (*Result, error) {
	params := openai.AudioTranslationNewParams{
		File:           file,
		Model:          openai.AudioModel(t.model),
		ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Translations.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}

	segments, duration, err := t.parseVerboseJSONResponse(resp.RawJSON(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse translation: %w", err)
	}

	return &Result{
		Segments: segments,
		Language: "en",
		Duration: duration,
	}, nil
}

func (t *OpenAITranscriber) transcribeWithTimestamps(
	ctx context.Context,
	file *os.File,
) (*Result, error) {
	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word", "segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments, duration, err := t.parseVerboseJSONResponse(resp.RawJSON(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	return &Result{
		Segments: segments,
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

// parseVerboseJSONResponse turns a verbose_json body into segments carrying
// their words. Words are attached to the segment containing their midpoint.
func (t *OpenAITranscriber) parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration float64,
) ([]lexeme.Segment, float64, error) {
	if rawJSON == "" {
		return nil, 0, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, 0, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	dur := fallbackDuration
	if verboseResp.Duration > 0 {
		dur = verboseResp.Duration
	}

	words := make([]lexeme.Word, 0, len(verboseResp.Words))
	for _, w := range verboseResp.Words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		words = append(words, lexeme.Word{Text: text, Start: w.Start, End: w.End})
	}

	var segments []lexeme.Segment
	for _, seg := range verboseResp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, lexeme.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}

	if len(segments) == 0 {
		text := strings.TrimSpace(verboseResp.Text)
		if text == "" {
			return nil, 0, fmt.Errorf("no segments or text in response")
		}
		end := dur
		if len(words) > 0 {
			end = max(end, words[len(words)-1].End)
		}
		return []lexeme.Segment{{Start: 0, End: end, Text: text, Words: words}}, dur, nil
	}

	attachWords(segments, words)
	return segments, dur, nil
}

// attachWords assigns each word to the segment holding its midpoint, or
// the nearest segment before it.
func attachWords(segments []lexeme.Segment, words []lexeme.Word) {
	si := 0
	for _, w := range words {
		mid := (w.Start + w.End) / 2
		for si+1 < len(segments) && mid >= segments[si+1].Start {
			si++
		}
		segments[si].Words = append(segments[si].Words, w)
	}
}

func (t *OpenAITranscriber) Close() error {
	return nil
}
