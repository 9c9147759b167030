package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billkeeper/internal/logger"
)

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}

func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// formatGreeting returns a greeting suffix with the user's name.
func formatGreeting(firstName string) string {
	if firstName == "" {
		return ""
	}
	return ", " + escapeHTML(firstName)
}

// downloadFile fetches a Telegram file's content by file ID.
func (b *Bot) downloadFile(ctx context.Context, tg TelegramAPI, fileID string) ([]byte, error) {
	file, err := tg.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	url := tg.FileDownloadLink(file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d downloading file", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}
	return data, nil
}

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	firstName := ""
	if update.Message.From != nil {
		firstName = update.Message.From.FirstName
	}

	text := fmt.Sprintf(`👋 Welcome%s!

I'm your household bill tracker. I keep countdowns to your due dates and ring an alarm the moment a bill becomes overdue - until you mark it paid.

<b>Quick Start:</b>
• Add a bill: <code>/add Electricity 45.00 due tomorrow 6pm</code>
• See countdowns: <code>/due</code>
• Settle a bill: <code>/paid &lt;id&gt;</code>
• Send a bill photo to add it automatically

Use /help to see all available commands.`,
		formatGreeting(firstName))

	logger.Log.Debug().Int64("chat_id", update.Message.Chat.ID).Msg("Sending /start response")
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /start response")
	}
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := `📚 <b>Available Commands</b>

<b>Tracking Bills:</b>
• <code>/add &lt;name&gt; &lt;amount&gt; [due &lt;when&gt;]</code> - Track a bill
  e.g. <code>/add Electricity 45.00 due friday 6pm</code>
• Send a bill photo to extract the details automatically

<b>Managing Bills:</b>
• <code>/paid &lt;id&gt;</code> - Mark a bill paid (silences its alarm)
• <code>/unpaid &lt;id&gt;</code> - Mark a bill unpaid again
• <code>/delete &lt;id&gt;</code> - Remove a bill
• <code>/dismiss &lt;id&gt;</code> - Silence a ringing alarm

<b>Viewing:</b>
• <code>/list</code> - Show all your bills
• <code>/due</code> - Show live countdowns to due dates

<b>Reports:</b>
• <code>/chart</code> - Monthly spending bar chart
• <code>/export</code> - Download your bills as CSV

<b>Household Items:</b>
• <code>/additem &lt;name&gt; &lt;price&gt; [qty]</code> - Stock an item (caption a photo to attach it)
• <code>/items</code> - Show your items
• <code>/consume &lt;id&gt;</code> - Mark an item used up
• <code>/restock &lt;id&gt;</code> - Mark an item back in stock
• <code>/delitem &lt;id&gt;</code> - Remove an item

<b>Assistant:</b>
• <code>/ask &lt;question&gt;</code> - Ask about your bills
• Reply to a bill photo with <code>/ask ...</code> to ask about that document

<b>Other:</b>
• <code>/help</code> - Show this help message`

	logger.Log.Debug().Int64("chat_id", update.Message.Chat.ID).Msg("Sending /help response")
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /help response")
	}
}
