// Package ai calls the external insight-generation service. The pipeline
// treats it as opaque: it returns plain text for an image URL or fails.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/turath/archive-sync/config"
	"github.com/turath/archive-sync/internal/apperr"
	"github.com/turath/archive-sync/internal/models"
	"github.com/turath/archive-sync/pkg/logger"
)

const defaultBaseURL = "https://api.openai.com/v1"

const (
	promptEN = "Analyze this image and provide detailed insights about its content, context, and significance. Describe the key elements, themes, and visual characteristics. If the image contains text or symbols, describe them."
	promptAR = "قم بتحليل هذه الصورة وقدم رؤى مفصلة حول محتواها وسياقها وأهميتها. صف العناصر الرئيسية والموضوعات والخصائص البصرية. إذا كانت الصورة تحتوي على نص أو رموز، فقم بوصفها."
)

// Generator produces per-locale insight text for an image via the OpenAI
// vision chat API.
type Generator struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	logger     logger.Logger
}

// NewGenerator builds a generator from environment config.
func NewGenerator(log logger.Logger) *Generator {
	cfg := config.GetAIConfig()
	return NewGeneratorWith(defaultBaseURL, cfg.APIKey, cfg.Model, cfg.MaxTokens, http.DefaultClient, log)
}

// NewGeneratorWith builds a generator against an explicit endpoint, for
// tests.
func NewGeneratorWith(baseURL, apiKey, model string, maxTokens int, httpClient *http.Client, log logger.Logger) *Generator {
	return &Generator{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		maxTokens:  maxTokens,
		logger:     log,
	}
}

// Generate returns insight text for the image in the requested locale.
func (g *Generator) Generate(ctx context.Context, imageURL string, locale models.Locale) (string, error) {
	if g.apiKey == "" {
		return "", apperr.Rejected("ai.generate", fmt.Errorf("api key not configured"))
	}

	prompt := promptEN
	if locale == models.LocaleAR {
		prompt = promptAR
	}

	body, err := json.Marshal(map[string]interface{}{
		"model":      g.model,
		"max_tokens": g.maxTokens,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]string{"url": imageURL}},
				},
			},
		},
	})
	if err != nil {
		return "", apperr.Rejected("ai.generate", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", apperr.Rejected("ai.generate", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", apperr.Unavailable("ai.generate", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(detail))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", apperr.Rejected("ai.generate", err)
		}
		return "", apperr.Unavailable("ai.generate", err)
	}

	var envelope struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", apperr.Unavailable("ai.generate", err)
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return "", apperr.Unavailable("ai.generate", fmt.Errorf("empty completion"))
	}

	return envelope.Choices[0].Message.Content, nil
}
