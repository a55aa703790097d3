// Package openai adapts the OpenAI chat API to the engine's Forecaster port.
// The model is an opaque collaborator: the engine only consumes the returned
// confidence and demand curve.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/garyjia/ai-procurement/internal/application/port"
	"github.com/garyjia/ai-procurement/internal/domain/entity"
)

// Forecaster implements port.Forecaster using OpenAI chat completions
type Forecaster struct {
	client      *openai.Client
	model       string
	temperature float32
	horizonDays int
	logger      *zap.Logger
}

// NewForecaster creates a new OpenAI-backed demand forecaster
func NewForecaster(apiKey, model string, temperature float32, horizonDays int, logger *zap.Logger) *Forecaster {
	return &Forecaster{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		horizonDays: horizonDays,
		logger:      logger,
	}
}

// forecastResponse is the JSON shape the model is instructed to return
type forecastResponse struct {
	Confidence  *float64  `json:"confidence"`
	DailyDemand []float64 `json:"daily_demand"`
	Reasoning   string    `json:"reasoning"`
}

// Forecast asks the model for a demand curve and confidence for the SKU
func (f *Forecaster) Forecast(ctx context.Context, skuID, sku string) (*entity.ForecastResult, error) {
	f.logger.Debug("Requesting demand forecast",
		zap.String("sku_id", skuID),
		zap.Int("horizon_days", f.horizonDays))

	req := openai.ChatCompletionRequest{
		Model:       f.model,
		Temperature: f.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: forecastSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildForecastPrompt(skuID, sku, f.horizonDays),
			},
		},
	}

	resp, err := f.client.CreateChatCompletion(ctx, req)
	if err != nil {
		f.logger.Error("OpenAI API call failed", zap.Error(err))
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content

	var parsed forecastResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		// Models wrap JSON in markdown code fences despite instructions
		jsonStr := extractJSON(content)
		if jsonStr == "" {
			return nil, fmt.Errorf("forecast response is not valid JSON: %w", err)
		}
		if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse forecast response: %w", err)
		}
	}

	if len(parsed.DailyDemand) == 0 {
		return nil, fmt.Errorf("forecast response has no demand curve")
	}

	return &entity.ForecastResult{
		SchemaVersion: entity.PayloadSchemaVersion,
		SKUID:         skuID,
		Confidence:    parsed.Confidence,
		Curve:         parsed.DailyDemand,
		HorizonDays:   f.horizonDays,
		Reasoning:     parsed.Reasoning,
	}, nil
}

// extractJSON pulls the first balanced JSON object out of a markdown-wrapped response
func extractJSON(content string) string {
	start := -1
	for i := 0; i < len(content); i++ {
		if content[i] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return content[start : i+1]
				}
			}
		}
	}
	return ""
}

// Verify interface compliance
var _ port.Forecaster = (*Forecaster)(nil)
