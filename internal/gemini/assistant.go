package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitlab.com/yelinaung/billkeeper/internal/models"
	"google.golang.org/genai"
)

// AskTimeout is the timeout for assistant questions.
const AskTimeout = 30 * time.Second

// MaxQuestionLength caps the user's question size.
const MaxQuestionLength = 500

// ErrQuestionTooLong indicates the question exceeds MaxQuestionLength.
var ErrQuestionTooLong = errors.New("question is too long")

// Ask answers a free-form question about the user's tracked bills. The
// current obligation list is inlined as context so the model can ground its
// answer; an optional document (e.g. an uploaded bill photo) is attached.
func (c *Client) Ask(ctx context.Context, question string, obligations []models.Obligation, document []byte, mimeType string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is required")
	}
	if len(question) > MaxQuestionLength {
		return "", ErrQuestionTooLong
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, AskTimeout)
	defer cancel()

	parts := []*genai.Part{}
	if len(document) > 0 {
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		parts = append(parts, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: document}})
	}
	parts = append(parts, &genai.Part{Text: buildAssistantPrompt(question, obligations)})

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{Parts: parts},
	}, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("assistant timed out: %w", err)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	answer := extractText(resp)
	if answer == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return strings.TrimSpace(answer), nil
}

func buildAssistantPrompt(question string, obligations []models.Obligation) string {
	var sb strings.Builder
	sb.WriteString("You are a household bill-tracking assistant. Answer the user's question concisely, in plain text, using only the bill data below")
	if len(obligations) == 0 {
		sb.WriteString(" (the user has no tracked bills yet)")
	}
	sb.WriteString(".\n\nTracked bills:\n")
	for _, o := range obligations {
		due := "no due date"
		if o.DueDate != nil {
			due = o.DueDate.Format("2006-01-02")
			if o.DueTime != "" {
				due += " " + o.DueTime
			}
		}
		fmt.Fprintf(&sb, "- %s: %s %s, due %s, %s\n", o.Name, models.DefaultCurrency, o.Amount.StringFixed(2), due, o.Status)
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}
