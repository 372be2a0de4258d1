package edit

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// implements Completer using Google Gemini
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

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

	return &GeminiCompleter{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, prompt string, format Format) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	var config *genai.GenerateContentConfig
	if format == FormatJSON {
		config = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return geminiText(result)
}

func geminiText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("no text in Gemini response")
	}
	return responseText, nil
}

func (c *GeminiCompleter) Close() error {
	return nil
}
