package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/ucformula/sponsor-scout/internal/ai"
	"github.com/ucformula/sponsor-scout/internal/logger"
	"github.com/ucformula/sponsor-scout/internal/sponsor"
	"github.com/ucformula/sponsor-scout/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

type Drafter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ ai.Drafter = (*Drafter)(nil)

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxAspectRunes      = 80
)

func NewDrafter(generator contentGenerator, log *zap.Logger, maxLogLength int) *Drafter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Drafter{
		generator: generator,
		logger:    logger.WithFields(log),
		maxLogLen: maxLogLength,
	}
}

// DraftAspect asks the model for a short phrase describing what the team values in the company.
func (d *Drafter) DraftAspect(ctx context.Context, c *sponsor.Candidate) (string, error) {
	if c == nil {
		return "", fmt.Errorf("candidate is required")
	}

	prompt := buildPrompt(c)
	log := logger.WithSponsor(d.logger, c.Name, c.Website)

	log.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, d.maxLogLen)),
	)

	raw, err := d.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, d.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(c *sponsor.Candidate) string {
	description := strings.TrimSpace(c.Description)
	if description == "" {
		description = "(none)"
	}
	website := strings.TrimSpace(c.Website)
	if website == "" {
		website = "(unknown)"
	}

	return strings.NewReplacer(
		"{{COMPANY_NAME}}", c.Name,
		"{{COMPANY_WEBSITE}}", website,
		"{{COMPANY_DESCRIPTION}}", description,
	).Replace(promptTemplate)
}

func parseResponse(raw string) (string, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return "", fmt.Errorf("parse gemini response: %w", err)
	}

	aspect := normalizeAspect(coerceString(data["aspect"]))
	if aspect == "" {
		return "", fmt.Errorf("gemini response has no aspect")
	}
	return aspect, nil
}

func normalizeAspect(aspect string) string {
	aspect = strings.Join(strings.Fields(aspect), " ")
	aspect = strings.TrimRight(aspect, ".!;:, ")
	if utf8.RuneCountInString(aspect) > maxAspectRunes {
		aspect = strings.TrimSpace(string([]rune(aspect)[:maxAspectRunes]))
	}
	return aspect
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", val))
	}
}
