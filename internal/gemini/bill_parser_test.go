package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockGenerator returns canned responses for testing without API calls.
type mockGenerator struct {
	response *genai.GenerateContentResponse
	err      error

	lastModel    string
	lastContents []*genai.Content
}

func (m *mockGenerator) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	_ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	m.lastModel = model
	m.lastContents = contents
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

var testCategories = []string{"Electricity", "Water", "Internet"}

func TestParseBill(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("parses a complete bill", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{response: textResponse(
			`{"name": "Electricity", "amount": "45.00", "due_date": "2026-09-15", "category": "Electricity", "confidence": 0.95}`)}
		c := NewClientWithGenerator(gen)

		data, err := c.ParseBill(ctx, []byte("fake-jpeg"), "image/jpeg", testCategories)
		require.NoError(t, err)
		require.Equal(t, "Electricity", data.Name)
		require.Equal(t, "45.00", data.Amount.StringFixed(2))
		require.Equal(t, "2026-09-15", data.DueDate.Format("2006-01-02"))
		require.Equal(t, ModelName, gen.lastModel)
	})

	t.Run("strips markdown code fences", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{response: textResponse(
			"```json\n{\"name\": \"Water\", \"amount\": \"12.50\", \"due_date\": \"\", \"category\": \"Water\", \"confidence\": 0.8}\n```")}
		c := NewClientWithGenerator(gen)

		data, err := c.ParseBill(ctx, []byte("fake-jpeg"), "image/jpeg", testCategories)
		require.NoError(t, err)
		require.Equal(t, "Water", data.Name)
		require.True(t, data.DueDate.IsZero())
	})

	t.Run("partial extraction with only a name", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{response: textResponse(
			`{"name": "Internet", "amount": "0", "due_date": "", "category": "", "confidence": 0.3}`)}
		c := NewClientWithGenerator(gen)

		data, err := c.ParseBill(ctx, []byte("fake-jpeg"), "image/jpeg", testCategories)
		require.NoError(t, err)
		require.True(t, data.HasName())
		require.False(t, data.HasAmount())
	})

	t.Run("empty extraction is ErrNoData", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{response: textResponse(
			`{"name": "", "amount": "0", "due_date": "", "category": "", "confidence": 0.0}`)}
		c := NewClientWithGenerator(gen)

		_, err := c.ParseBill(ctx, []byte("fake-jpeg"), "image/jpeg", testCategories)
		require.ErrorIs(t, err, ErrNoData)
	})

	t.Run("timeout maps to ErrParseTimeout", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{err: context.DeadlineExceeded}
		c := NewClientWithGenerator(gen)

		_, err := c.ParseBill(ctx, []byte("fake-jpeg"), "image/jpeg", testCategories)
		require.ErrorIs(t, err, ErrParseTimeout)
	})

	t.Run("other generator errors pass through", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{err: errors.New("quota exceeded")}
		c := NewClientWithGenerator(gen)

		_, err := c.ParseBill(ctx, []byte("fake-jpeg"), "image/jpeg", testCategories)
		require.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("requires image data", func(t *testing.T) {
		t.Parallel()
		c := NewClientWithGenerator(&mockGenerator{})
		_, err := c.ParseBill(ctx, nil, "image/jpeg", testCategories)
		require.ErrorContains(t, err, "image data is required")
	})

	t.Run("malformed JSON is an error", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{response: textResponse("I could not read this bill.")}
		c := NewClientWithGenerator(gen)

		_, err := c.ParseBill(ctx, []byte("fake-jpeg"), "image/jpeg", testCategories)
		require.ErrorContains(t, err, "failed to parse bill response")
	})
}

func TestParseBillResponse(t *testing.T) {
	t.Parallel()

	t.Run("invalid amount string fails", func(t *testing.T) {
		t.Parallel()
		_, err := parseBillResponse(`{"name": "Gas", "amount": "forty five"}`)
		require.ErrorContains(t, err, "failed to parse amount")
	})

	t.Run("unparseable due date is dropped silently", func(t *testing.T) {
		t.Parallel()
		data, err := parseBillResponse(`{"name": "Gas", "amount": "20.00", "due_date": "next tuesday"}`)
		require.NoError(t, err)
		require.True(t, data.DueDate.IsZero())
	})
}
