package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// ParseBillTimeout is the timeout for Gemini API calls.
const ParseBillTimeout = 30 * time.Second

// ErrParseTimeout indicates the Gemini API call timed out.
var ErrParseTimeout = errors.New("bill parsing timed out")

// ErrNoData indicates no usable data could be extracted from the bill.
var ErrNoData = errors.New("no usable data extracted from bill")

// BillData contains the data extracted from a bill photo.
type BillData struct {
	Name       string
	Amount     decimal.Decimal
	DueDate    time.Time
	Category   string
	Confidence float64
}

// HasAmount returns true if the amount was extracted.
func (b *BillData) HasAmount() bool {
	return !b.Amount.IsZero()
}

// HasName returns true if the biller name was extracted.
func (b *BillData) HasName() bool {
	return b.Name != ""
}

// IsEmpty returns true if no usable data was extracted.
func (b *BillData) IsEmpty() bool {
	return !b.HasAmount() && !b.HasName()
}

// billResponse is the JSON structure returned by Gemini.
type billResponse struct {
	Name       string  `json:"name"`
	Amount     string  `json:"amount"`
	DueDate    string  `json:"due_date"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

// ParseBill extracts obligation data from a bill photo using Gemini.
// It applies a 30-second timeout to the API call.
func (c *Client) ParseBill(ctx context.Context, imageBytes []byte, mimeType string, categories []string) (*BillData, error) {
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("image data is required")
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, ParseBillTimeout)
	defer cancel()

	prompt := buildBillPrompt(categories)

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageBytes}},
				{Text: prompt},
			},
		},
	}, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrParseTimeout
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	textContent := extractText(resp)
	if textContent == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	data, err := parseBillResponse(textContent)
	if err != nil {
		return nil, err
	}

	if data.IsEmpty() {
		return nil, ErrNoData
	}

	return data, nil
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}

func buildBillPrompt(categories []string) string {
	categoryList := strings.Join(categories, ", ")
	return fmt.Sprintf(`Analyze this utility bill image and extract the following information.
Return ONLY a JSON object with no additional text or markdown formatting.

Required fields:
- name: The biller/utility name (letters only, e.g., "Electricity")
- amount: The amount due (numeric string, e.g., "45.00")
- due_date: The payment due date in YYYY-MM-DD format
- category: One of these categories that best matches: %s
- confidence: Your confidence in the extraction accuracy (0.0 to 1.0)

If a field cannot be determined, use an empty string for text fields, "0" for amount, or 0.0 for confidence.

Example response:
{"name": "Electricity", "amount": "45.00", "due_date": "2026-09-15", "category": "Electricity", "confidence": 0.95}`, categoryList)
}

func parseBillResponse(response string) (*BillData, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var br billResponse
	if err := json.Unmarshal([]byte(response), &br); err != nil {
		return nil, fmt.Errorf("failed to parse bill response: %w", err)
	}

	data := &BillData{
		Name:       br.Name,
		Category:   br.Category,
		Confidence: br.Confidence,
	}

	if br.Amount != "" && br.Amount != "0" {
		amount, err := decimal.NewFromString(br.Amount)
		if err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", br.Amount, err)
		}
		data.Amount = amount
	}

	if br.DueDate != "" {
		date, err := time.Parse("2006-01-02", br.DueDate)
		if err == nil {
			data.DueDate = date
		}
	}

	return data, nil
}
