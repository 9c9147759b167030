package gemini

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

func TestAsk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	obligations := []models.Obligation{
		{ID: 1, Name: "Electricity", Amount: decimal.RequireFromString("45.00"), DueDate: &due, DueTime: "18:00", Status: models.StatusUnPaid},
		{ID: 2, Name: "Rent", Amount: decimal.RequireFromString("500.00"), Status: models.StatusPaid},
	}

	t.Run("answers with the obligation context inlined", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{response: textResponse("You owe 45.00 for Electricity.")}
		c := NewClientWithGenerator(gen)

		answer, err := c.Ask(ctx, "how much do I owe?", obligations, nil, "")
		require.NoError(t, err)
		require.Equal(t, "You owe 45.00 for Electricity.", answer)

		require.Len(t, gen.lastContents, 1)
		prompt := gen.lastContents[0].Parts[len(gen.lastContents[0].Parts)-1].Text
		require.Contains(t, prompt, "Electricity")
		require.Contains(t, prompt, "45.00")
		require.Contains(t, prompt, "how much do I owe?")
	})

	t.Run("attaches an optional document", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{response: textResponse("This bill is from September.")}
		c := NewClientWithGenerator(gen)

		_, err := c.Ask(ctx, "when is this from?", nil, []byte("fake-jpeg"), "image/jpeg")
		require.NoError(t, err)

		parts := gen.lastContents[0].Parts
		require.Len(t, parts, 2)
		require.NotNil(t, parts[0].InlineData)
		require.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
	})

	t.Run("rejects empty questions", func(t *testing.T) {
		t.Parallel()
		c := NewClientWithGenerator(&mockGenerator{})
		_, err := c.Ask(ctx, "   ", nil, nil, "")
		require.ErrorContains(t, err, "question is required")
	})

	t.Run("rejects over-long questions", func(t *testing.T) {
		t.Parallel()
		c := NewClientWithGenerator(&mockGenerator{})
		_, err := c.Ask(ctx, strings.Repeat("a", MaxQuestionLength+1), nil, nil, "")
		require.ErrorIs(t, err, ErrQuestionTooLong)
	})

	t.Run("empty model response is an error", func(t *testing.T) {
		t.Parallel()
		gen := &mockGenerator{response: textResponse("")}
		c := NewClientWithGenerator(gen)

		_, err := c.Ask(ctx, "anything due?", nil, nil, "")
		require.ErrorContains(t, err, "empty response")
	})
}
