// Package edit asks a language model to shorten a transcript, either as
// free text, as word index ranges to delete, or as clips to keep.
package edit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mgpai22/trimcast/internal/align"
	"github.com/mgpai22/trimcast/internal/lexeme"
)

// expected shape of a completion
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// interface for a single-prompt text completion
type Completer interface {
	Complete(ctx context.Context, prompt string, format Format) (string, error)
	Close() error
}

// editing service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	Model  string
	Prompt string // extra instructions appended to every prompt
}

// creates Completer based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Completer, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiCompleter(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAICompleter(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicCompleter(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported edit provider: %s", provider)
	}
}

// runs the editing prompts against a Completer
type Editor struct {
	completer Completer
	extra     string
}

func NewEditor(c Completer, opts Options) *Editor {
	return &Editor{completer: c, extra: strings.TrimSpace(opts.Prompt)}
}

// MinimalEdit tightens the transcript, preferring deletions but allowing
// rare small rewrites.
func (e *Editor) MinimalEdit(ctx context.Context, transcript string) (string, error) {
	return e.editText(ctx, buildMinimalEditPrompt(transcript, e.extra), "minimal edit")
}

// StrictDeleteEdit asks for a pure deletion edit of the transcript.
func (e *Editor) StrictDeleteEdit(ctx context.Context, transcript string) (string, error) {
	return e.editText(ctx, buildStrictDeletePrompt(transcript, e.extra), "strict delete edit")
}

func (e *Editor) editText(ctx context.Context, prompt, what string) (string, error) {
	out, err := e.completer.Complete(ctx, prompt, FormatText)
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", what, err)
	}
	out = strings.TrimSpace(cleanTextResponse(out))
	if out == "" {
		return "", fmt.Errorf("%s returned empty transcript", what)
	}
	return out, nil
}

// DeleteRanges asks for inclusive word index ranges to delete. The result
// is sorted, in range and merged; it may be empty.
func (e *Editor) DeleteRanges(ctx context.Context, words []lexeme.TimedWord) ([]align.Range, error) {
	payload, err := e.completeJSON(ctx, buildDeleteRangesPrompt(words, e.extra))
	if err != nil {
		return nil, fmt.Errorf("delete ranges failed: %w", err)
	}

	raw, _ := payload["delete_ranges"].([]any)
	return align.NormalizeRanges(raw, len(words), "delete index range")
}

// clip selection limits
type ClipOptions struct {
	Count     int
	MinWords  int
	MaxWords  int
	MaxRanges int
}

func DefaultClipOptions() ClipOptions {
	return ClipOptions{
		Count:     3,
		MinWords:  120,
		MaxWords:  420,
		MaxRanges: 8,
	}
}

// one clip chosen by the model
type ClipSelection struct {
	Title     string        `json:"title"`
	Rationale string        `json:"rationale,omitempty"`
	Ranges    []align.Range `json:"word_ranges"`
}

// SelectClips asks for up to opts.Count clips, each a set of keep ranges.
// Clips without usable ranges are skipped; having none at all is an error.
func (e *Editor) SelectClips(ctx context.Context, words []lexeme.TimedWord, opts ClipOptions) ([]ClipSelection, error) {
	if opts.Count <= 0 {
		return nil, fmt.Errorf("clip count must be positive, got %d", opts.Count)
	}

	payload, err := e.completeJSON(ctx, buildSelectClipsPrompt(words, opts, e.extra))
	if err != nil {
		return nil, fmt.Errorf("clip selection failed: %w", err)
	}

	return parseClips(payload, len(words), opts)
}

func (e *Editor) completeJSON(ctx context.Context, prompt string) (map[string]any, error) {
	out, err := e.completer.Complete(ctx, prompt, FormatJSON)
	if err != nil {
		return nil, err
	}
	obj, err := extractJSONObject(cleanJSONResponse(out))
	if err != nil {
		return nil, err
	}
	return unwrapNested(obj), nil
}

func parseClips(payload map[string]any, total int, opts ClipOptions) ([]ClipSelection, error) {
	rawClips := clipList(payload)
	if rawClips == nil {
		return nil, fmt.Errorf("clip selection JSON must contain a 'clips' array")
	}

	var clips []ClipSelection
	for idx, item := range rawClips {
		title := fmt.Sprintf("Clip %d", idx+1)
		var rationale string
		var rawRanges any = item

		if obj, ok := item.(map[string]any); ok {
			if s := firstString(obj, "title", "name"); s != "" {
				title = s
			}
			rationale = firstString(obj, "rationale", "why", "description")
			rawRanges = firstValue(obj, "word_ranges", "ranges", "segments", "line_ranges")
		}

		list, _ := rawRanges.([]any)
		ranges, err := align.NormalizeRanges(list, total, fmt.Sprintf("clip %d word range", idx+1))
		if err != nil {
			return nil, err
		}
		if len(ranges) == 0 {
			continue
		}
		if opts.MaxRanges > 0 && len(ranges) > opts.MaxRanges {
			ranges = ranges[:opts.MaxRanges]
		}

		clips = append(clips, ClipSelection{Title: title, Rationale: rationale, Ranges: ranges})
		if len(clips) >= opts.Count {
			break
		}
	}

	if len(clips) == 0 {
		preview, _ := json.Marshal(payload)
		return nil, fmt.Errorf("no valid clip selections in response: %s", truncateString(string(preview), 800))
	}
	return clips, nil
}

// clipList finds the clip array under the keys models tend to use.
func clipList(payload map[string]any) []any {
	for _, key := range []string{"clips", "selected_clips", "items", "results"} {
		if list, ok := payload[key].([]any); ok && len(list) > 0 {
			return list
		}
	}
	if data, ok := payload["data"].(map[string]any); ok {
		if list, ok := data["clips"].([]any); ok {
			return list
		}
	}
	if list, ok := payload["clips"].([]any); ok {
		return list
	}
	return nil
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstValue(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}
