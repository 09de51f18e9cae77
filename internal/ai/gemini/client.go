package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash"

	// Thinking is off, so this only has to hold the JSON envelope of one phrase.
	maxOutputTokens = 256
)

// Generator asks Gemini for a single JSON answer per prompt.
type Generator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.4),
			MaxOutputTokens:  maxOutputTokens,
			ResponseMIMEType: "application/json",
			ThinkingConfig:   &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
		},
	}, nil
}

// GenerateContent returns the text of the first answer candidate.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	return answerText(resp)
}

// answerText joins the non-thought parts of the first candidate. JSON output
// may be split across parts, so they are concatenated as is.
func answerText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", fb.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", errors.New("gemini returned no candidates")
	}

	candidate := resp.Candidates[0]
	var builder strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	text := strings.TrimSpace(builder.String())
	if text == "" {
		if candidate.FinishReason != "" && candidate.FinishReason != genai.FinishReasonStop {
			return "", fmt.Errorf("empty answer, finish reason %s", candidate.FinishReason)
		}
		return "", errors.New("empty answer")
	}
	return text, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}
