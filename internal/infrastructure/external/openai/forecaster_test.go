package openai

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bare JSON",
			content: `{"confidence": 0.9}`,
			want:    `{"confidence": 0.9}`,
		},
		{
			name:    "markdown fenced",
			content: "```json\n{\"confidence\": 0.9}\n```",
			want:    `{"confidence": 0.9}`,
		},
		{
			name:    "prose around the object",
			content: `Here is the forecast: {"confidence": 0.9, "daily_demand": [1, 2]} Hope that helps!`,
			want:    `{"confidence": 0.9, "daily_demand": [1, 2]}`,
		},
		{
			name:    "nested objects",
			content: `{"a": {"b": 1}, "c": 2}`,
			want:    `{"a": {"b": 1}, "c": 2}`,
		},
		{
			name:    "braces inside strings",
			content: `{"reasoning": "seasonal {peak} expected"}`,
			want:    `{"reasoning": "seasonal {peak} expected"}`,
		},
		{
			name:    "no JSON at all",
			content: "I cannot produce a forecast.",
			want:    "",
		},
		{
			name:    "unbalanced",
			content: `{"confidence": 0.9`,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON(tt.content)
			if got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForecastResponseParsing(t *testing.T) {
	content := `{"confidence": 0.88, "daily_demand": [10.5, 11, 9.5], "reasoning": "stable"}`

	var parsed forecastResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Confidence == nil || *parsed.Confidence != 0.88 {
		t.Errorf("expected confidence 0.88, got %v", parsed.Confidence)
	}
	if len(parsed.DailyDemand) != 3 {
		t.Errorf("expected 3 demand values, got %d", len(parsed.DailyDemand))
	}
}

func TestForecastResponseNullConfidence(t *testing.T) {
	content := `{"confidence": null, "daily_demand": [1], "reasoning": "no history"}`

	var parsed forecastResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Confidence != nil {
		t.Errorf("expected nil confidence, got %v", *parsed.Confidence)
	}
}
