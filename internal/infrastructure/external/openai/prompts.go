package openai

import "fmt"

const forecastSystemPrompt = `You are a demand forecasting assistant for a procurement system. ` +
	`Given a product SKU, estimate its daily demand over the requested horizon. ` +
	`Always respond with a single JSON object and nothing else, using this schema: ` +
	`{"confidence": <float 0..1 or null if you cannot score the forecast>, ` +
	`"daily_demand": [<float per day>], "reasoning": "<short explanation>"}`

func buildForecastPrompt(skuID, sku string, horizonDays int) string {
	return fmt.Sprintf(
		"Forecast daily demand for the next %d days.\nSKU ID: %s\nSKU: %s\n"+
			"Return exactly %d values in daily_demand.",
		horizonDays, skuID, sku, horizonDays)
}
