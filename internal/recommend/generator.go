// Package recommend produces health recommendations for a location's
// current temperature and air quality, preferring an OpenAI chat model
// and falling back to deterministic rule-based advice.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/Pegasus1106/Ecohealth/internal/aqi"
)

const systemPrompt = "You are a health advisor specializing in environmental health. " +
	"Provide accurate, helpful health recommendations based on weather and air quality data."

const (
	maxRetries = 2
	retryDelay = 1 * time.Second
)

// Generator calls the OpenAI chat API for personalized advice.
type Generator struct {
	client openai.Client
	model  openai.ChatModel
}

// NewGenerator creates a generator. It fails when no API key is
// configured so callers know to use the rule-based fallback.
func NewGenerator(apiKey string) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key not set")
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &Generator{
		client: client,
		model:  openai.ChatModelGPT4o,
	}, nil
}

// Generate asks the model for Markdown health recommendations. Transient
// failures are retried twice with a short delay.
func (g *Generator) Generate(ctx context.Context, location string, tempC, aqiValue float64) (string, error) {
	prompt := fmt.Sprintf(`Generate health recommendations based on the following weather and air quality data:

Location: %s
Current Temperature: %.1f°C (%.1f°F)
Air Quality Index (AQI): %.0f

Provide detailed health recommendations considering:
1. Temperature-related precautions (heat or cold)
2. Air quality impact on health
3. Suitable outdoor activities
4. Special considerations for sensitive groups (children, elderly, people with respiratory conditions)
5. Hydration and clothing recommendations

Format your response as a well-structured Markdown text with clear sections and bullet points.`,
		location, tempC, aqi.CelsiusToFahrenheit(tempC), aqiValue)

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model: g.model,
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemPrompt),
				openai.UserMessage(prompt),
			},
			MaxTokens: openai.Int(500),
		})
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			lastErr = errors.New("empty completion")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("generate recommendations: %w", lastErr)
}
