package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/mgpai22/trimcast/internal/lexeme"
)

// implements Transcriber interface using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

// segment from Gemini's JSON response
type transcriptSegment struct {
	Start float64          `json:"start"`
	End   float64          `json:"end"`
	Text  string           `json:"text"`
	Words []transcriptWord `json:"words,omitempty"`
}

type transcriptWord struct {
	Word  string  `json:"word"`
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}

	defer func() {
		_, _ = t.client.Files.Delete(ctx, uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildTranscriptionPrompt()),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	segments, err := parseTranscriptionResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	var duration float64
	if len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	return &Result{
		Segments: segments,
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

// creates the prompt for transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a verbatim transcript of this audio, including filler words and false starts. ")
	sb.WriteString("Split it into sentences or short phrases. ")
	sb.WriteString("Format your response as a JSON array of objects with 'start', 'end', 'text' and 'words' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers) and 'words' is an array of ")
	sb.WriteString("objects with 'word', 'start' and 'end' giving the timing of every spoken word. ")

	if t.options.Language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", t.options.Language)
	}

	if t.options.TranscriptLanguage != "" && t.options.TranscriptLanguage != "native" {
		fmt.Fprintf(&sb, "Output the transcript in %s. ", t.options.TranscriptLanguage)
	}

	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

// parses Gemini's response into segments
func parseTranscriptionResponse(result *genai.GenerateContentResponse) ([]lexeme.Segment, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := result.Text()
	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	transcriptSegments, err := extractTranscriptSegments(cleanJSONResponse(responseText))
	if err != nil {
		return nil, err
	}

	segments := make([]lexeme.Segment, 0, len(transcriptSegments))
	for _, ts := range transcriptSegments {
		seg := lexeme.Segment{
			Start: ts.Start,
			End:   ts.End,
			Text:  strings.TrimSpace(ts.Text),
		}
		for _, w := range ts.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" {
				text = strings.TrimSpace(w.Text)
			}
			if text == "" {
				continue
			}
			seg.Words = append(seg.Words, lexeme.Word{Text: text, Start: w.Start, End: w.End})
		}
		segments = append(segments, seg)
	}

	return segments, nil
}

// preferred wrapper keys when the model returns an object
var wrapperKeys = []string{"segments", "transcript", "data"}

// extractTranscriptSegments finds the first JSON value in s that holds a
// usable segment array, skipping prose around it and unwrapping objects.
func extractTranscriptSegments(s string) ([]transcriptSegment, error) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}

		var value any
		if err := json.NewDecoder(strings.NewReader(s[i:])).Decode(&value); err != nil {
			continue
		}

		if segments, ok := findSegments(value); ok {
			return segments, nil
		}
	}

	return nil, fmt.Errorf("no transcript segments found in response: %s", truncateString(s, 200))
}

func findSegments(value any) ([]transcriptSegment, bool) {
	switch v := value.(type) {
	case []any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		var segments []transcriptSegment
		if err := json.Unmarshal(data, &segments); err != nil {
			return nil, false
		}
		return segments, validateSegments(segments)

	case map[string]any:
		for _, key := range wrapperKeys {
			if inner, ok := v[key]; ok {
				if segments, ok := findSegments(inner); ok {
					return segments, true
				}
			}
		}

		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if segments, ok := findSegments(v[k]); ok {
				return segments, true
			}
		}
	}
	return nil, false
}

// reports whether any segment carries text or timing
func validateSegments(segments []transcriptSegment) bool {
	for _, s := range segments {
		if s.Text != "" || s.Start != 0 || s.End != 0 {
			return true
		}
	}
	return false
}

func (t *GeminiTranscriber) Close() error {
	return nil
}
