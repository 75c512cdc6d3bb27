// Package llm wraps the hosted chat-completion model that turns free
// text or an image into a list of to-do strings.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a to-do extraction assistant. Extract the to-do items " +
	"from the text or image, one per line, keeping the original wording and source " +
	"language. Do not add any extra content."

const imagePrompt = "Extract the to-do items from this image, keeping the original wording and language:"

// Extractor asks an OpenAI-compatible model to enumerate to-do items.
// The same model id serves both text-only and multimodal requests.
type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor builds an Extractor. baseURL may be empty to use the
// default OpenAI endpoint; model must name a multimodal-capable model.
func NewExtractor(apiKey, baseURL, model string) *Extractor {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Extractor{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// ExtractTasks sends text and/or an image URL to the model and returns
// the normalized task strings. At least one of text and imageURL must be
// non-empty; the caller validates that. A nil, error-free result means
// the model recognized no tasks.
func (e *Extractor) ExtractTasks(ctx context.Context, text, imageURL string) ([]string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if imageURL != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: imagePrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: imageURL}},
			},
		})
	}
	if text != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: text,
		})
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: 0.1,
		MaxTokens:   1000,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion: response has no choices")
	}

	return SplitTasks(resp.Choices[0].Message.Content), nil
}
