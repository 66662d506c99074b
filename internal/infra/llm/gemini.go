// Package llm generates narrative text with a large language model.
package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/boddenberg/campus-budget-coach/internal/domain"
)

// Generation is one model answer with its token accounting.
type Generation struct {
	Text  string
	Usage domain.TokenUsage
	Model string
}

// Generator is a client that can interact with a large language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Generation, error)
	Close() error
}

// geminiClient is a client for the Google Gemini API.
type geminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewGeminiClient creates a new Gemini API client that answers in JSON.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.4)
	return &geminiClient{client: client, model: model, modelName: modelName}, nil
}

// Generate sends a prompt to the Gemini model and returns the generated text.
func (c *geminiClient) Generate(ctx context.Context, prompt string) (*Generation, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &domain.ErrMalformedNarrative{Reason: "no content generated"}
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, &domain.ErrMalformedNarrative{Reason: "generated content is not text"}
	}

	gen := &Generation{Text: string(text), Model: c.modelName}
	if u := resp.UsageMetadata; u != nil {
		gen.Usage = domain.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return gen, nil
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}
