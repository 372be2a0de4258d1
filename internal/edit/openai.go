package edit

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Completer using OpenAI Chat Completions
type OpenAICompleter struct {
	client openai.Client
	model  string
}

func NewOpenAICompleter(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAICompleter{
		client: client,
		model:  model,
	}, nil
}

// format is carried by the prompt; chat completions get no response format
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, format Format) (string, error) {
	completion, err := c.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: c.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	return openAIText(completion)
}

func openAIText(completion *openai.ChatCompletion) (string, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return "", fmt.Errorf("no text in OpenAI response")
	}
	return responseText, nil
}

func (c *OpenAICompleter) Close() error {
	return nil
}
