package scanning

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// receiptScanPrompt is the shared prompt used by all LLM providers.
const receiptScanPrompt = `You are analyzing a receipt or invoice document. Carefully read all text in the image and extract the following information:

1. **date**: The transaction date, in YYYY/MM/DD format. If the receipt also shows a time of day, append it after the date.

2. **service**: The store, merchant, or service name, usually the largest text or header at the top of the receipt.

3. **detail**: A short label for what the purchase was for (e.g. books, lunch, office supplies). Use the receipt's own language.

4. **price**: The final total amount as a plain integer in the receipt's smallest displayed currency unit (e.g. 800 for 800 yen).

Return ONLY valid JSON in this exact format:
{"date": "2024/04/01 12:34", "service": "Amazon", "detail": "books", "price": 800}

Important:
- The price must be a number, not a string
- If you cannot find a field, use null for that field
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// parseReceipt parses the JSON response from a provider into a ReceiptData.
// It tolerates markdown fences and surrounding prose, strips any
// time-of-day suffix from the date, and coerces the price to an int where
// possible. A record with an empty date, service, or detail is rejected.
func parseReceipt(text string) (*ReceiptData, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var raw struct {
		Date    string          `json:"date"`
		Service string          `json:"service"`
		Detail  string          `json:"detail"`
		Price   json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data := ReceiptData{
		Date:    strings.TrimSpace(raw.Date),
		Service: strings.TrimSpace(raw.Service),
		Detail:  strings.TrimSpace(raw.Detail),
		Price:   coercePrice(raw.Price),
	}

	// Keep the date-only prefix; providers sometimes include a time.
	if len(data.Date) > 10 {
		data.Date = strings.TrimSpace(data.Date[:10])
	}

	if data.Date == "" || data.Service == "" || data.Detail == "" {
		return nil, fmt.Errorf("missing required fields in response")
	}

	return &data, nil
}

// coercePrice turns the raw price value into an int, accepting JSON
// numbers, numeric strings, and floats. Anything else yields nil.
func coercePrice(raw json.RawMessage) *int {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	s = strings.TrimSpace(s)

	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(f)
		return &n
	}
	return nil
}
