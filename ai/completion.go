package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Turn is one prior exchange entry replayed to the completion API. Role is
// "user" or "model".
type Turn struct {
	Role string
	Text string
}

// Completer generates conversational text given a system instruction, an
// optional ordered transcript, and a new user message. Implementations do
// not retry; failures surface to the caller as-is.
type Completer interface {
	Complete(ctx context.Context, systemInstruction string, history []Turn, userInput string) (string, error)
}

// GeminiConfig configures the Gemini-backed Completer
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiClient is the Completer implementation backed by the Gemini API
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini completion client
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
	}, nil
}

// Complete starts a chat seeded with the prior transcript and sends the new
// user message, returning the generated text
func (c *GeminiClient) Complete(ctx context.Context, systemInstruction string, history []Turn, userInput string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		var role genai.Role = genai.RoleUser
		if t.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}

	chat, err := c.client.Chats.Create(ctx, c.model, config, contents)
	if err != nil {
		return "", fmt.Errorf("failed to create chat: %w", err)
	}

	res, err := chat.SendMessage(ctx, genai.Part{Text: userInput})
	if err != nil {
		return "", err
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no response generated")
	}

	return res.Candidates[0].Content.Parts[0].Text, nil
}
