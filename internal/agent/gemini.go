package agent

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"eva/internal/logger"
)

// GeminiProvider generates replies through the Google Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, system string, turns []Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var role genai.Role = genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		parts := []*genai.Part{genai.NewPartFromText(t.Text)}
		for _, m := range t.Media {
			parts = append(parts, genai.NewPartFromBytes(m.Data, m.MIME))
		}
		contents = append(contents, genai.NewContentFromParts(parts, role))
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		// Safety-blocked or empty answers degrade to a spoken apology
		// instead of a dead turn.
		logger.Warn("agent: gemini returned no text (feedback: %+v)", resp.PromptFeedback)
		return "Désolé, je ne peux pas répondre à cette demande.", nil
	}
	return text, nil
}
