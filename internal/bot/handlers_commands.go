package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billkeeper/internal/logger"
	appmodels "gitlab.com/yelinaung/billkeeper/internal/models"
)

// handleAdd handles the /add command.
func (b *Bot) handleAdd(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddCore(ctx, tgBot, update)
}

// handleAddCore is the testable implementation of handleAdd.
func (b *Bot) handleAddCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	// "/add" prefix-matches "/additem" too; route those to the item handler.
	if strings.HasPrefix(update.Message.Text, "/additem") {
		b.handleAddItemCore(ctx, tg, update)
		return
	}

	chatID := update.Message.Chat.ID
	args := extractCommandArgs(update.Message.Text, "/add")

	if args == "" {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Please provide bill details.\n\nUsage: <code>/add Electricity 45.00 due tomorrow 6pm</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	parsed, err := ParseAddCommand(args, b.engine.Now(), b.loc)
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf("❌ %s\n\nUsage: <code>/add Electricity 45.00 due tomorrow 6pm</code>", escapeHTML(err.Error())),
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	obligation := &appmodels.Obligation{
		UserID:  update.Message.From.ID,
		Name:    parsed.Name,
		Amount:  parsed.Amount,
		DueDate: parsed.DueDate,
		DueTime: parsed.DueTime,
	}

	if err := b.engine.Create(ctx, obligation); err != nil {
		logger.Log.Error().Err(err).Str("name", parsed.Name).Msg("Failed to create obligation")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Could not save the bill: %s", err.Error()),
		})
		return
	}

	var due string
	switch {
	case obligation.DueDate == nil:
		due = "no due date - no countdown will run"
	case obligation.DueTime == "":
		due = fmt.Sprintf("due %s (add a time of day to enable the countdown)", obligation.DueDate.Format("Mon, Jan 2"))
	default:
		due = fmt.Sprintf("due %s at %s", obligation.DueDate.Format("Mon, Jan 2"), obligation.DueTime)
	}

	logger.Log.Info().Int("obligation_id", obligation.ID).Str("name", obligation.Name).Msg("Obligation created")

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ Tracking <b>%s</b> (#%d): %s %s, %s.",
			escapeHTML(obligation.Name), obligation.ID, appmodels.DefaultCurrency, obligation.Amount.StringFixed(2), due),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /add response")
	}
}

// statusEmoji maps an obligation status to a display marker.
func statusEmoji(o *appmodels.Obligation) string {
	if o.IsPaid() {
		return "✅"
	}
	return "🔴"
}

// handleList handles the /list command.
func (b *Bot) handleList(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleListCore(ctx, tgBot, update)
}

// handleListCore is the testable implementation of handleList.
func (b *Bot) handleListCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID

	obligations, err := b.obligationRepo.GetByUserID(ctx, update.Message.From.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch obligations")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your bills. Please try again.",
		})
		return
	}

	if len(obligations) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "No bills tracked yet. Add one with <code>/add Electricity 45.00 due tomorrow 6pm</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	countdowns := b.engine.Countdowns()

	var sb strings.Builder
	sb.WriteString("🧾 <b>Your Bills</b>\n\n")
	for i := range obligations {
		o := &obligations[i]

		due := "no due date"
		if o.DueDate != nil {
			due = o.DueDate.Format("Jan 2")
			if o.DueTime != "" {
				due += " " + o.DueTime
			}
		}

		line := fmt.Sprintf("%s #%d <b>%s</b> - %s %s, due %s",
			statusEmoji(o), o.ID, escapeHTML(o.Name), appmodels.DefaultCurrency, o.Amount.StringFixed(2), due)

		if cd, ok := countdowns[o.ID]; ok && !o.IsPaid() && cd.DueSoon() {
			line += " ⚠️"
		}
		if b.engine.IsRinging(o.ID) {
			line += " 🔔"
		}

		sb.WriteString(line)
		sb.WriteString("\n")
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /list response")
	}
}

// handleDue handles the /due command: live countdowns for tracked bills.
func (b *Bot) handleDue(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDueCore(ctx, tgBot, update)
}

// handleDueCore is the testable implementation of handleDue.
func (b *Bot) handleDueCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID

	obligations, err := b.obligationRepo.GetByUserID(ctx, update.Message.From.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch obligations")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your bills. Please try again.",
		})
		return
	}

	countdowns := b.engine.Countdowns()

	var sb strings.Builder
	count := 0
	for i := range obligations {
		o := &obligations[i]
		cd, ok := countdowns[o.ID]
		if !ok || o.IsPaid() {
			continue
		}
		count++

		marker := ""
		if cd.Expired {
			marker = " 🔔"
		} else if cd.DueSoon() {
			marker = " ⚠️"
		}

		sb.WriteString(fmt.Sprintf("#%d <b>%s</b> - %s%s\n", o.ID, escapeHTML(o.Name), cd, marker))
	}

	if count == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "⏳ No running countdowns. Bills need both a due date and a time of day to count down.",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      "⏳ <b>Countdowns</b>\n\n" + sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /due response")
	}
}

// getOwnedObligation resolves an id argument to an obligation owned by the
// requesting user, replying with an error message otherwise.
func (b *Bot) getOwnedObligation(ctx context.Context, tg TelegramAPI, chatID, userID int64, args string) (*appmodels.Obligation, bool) {
	id, err := ParseIDArg(args)
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ %s", err.Error()),
		})
		return nil, false
	}

	o, err := b.engine.Get(ctx, id)
	if err != nil || o.UserID != userID {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Bill #%d not found.", id),
		})
		return nil, false
	}
	return o, true
}

// setStatusCore is the shared implementation of /paid and /unpaid.
func (b *Bot) setStatusCore(ctx context.Context, tg TelegramAPI, update *models.Update, command, status string) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	args := extractCommandArgs(update.Message.Text, command)

	o, ok := b.getOwnedObligation(ctx, tg, chatID, update.Message.From.ID, args)
	if !ok {
		return
	}

	if err := b.engine.SetStatus(ctx, o.ID, status); err != nil {
		logger.Log.Error().Err(err).Int("obligation_id", o.ID).Str("status", status).Msg("Failed to set obligation status")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not update the bill. Please try again.",
		})
		return
	}

	var text string
	if status == appmodels.StatusPaid {
		text = fmt.Sprintf("✅ <b>%s</b> marked paid. Any alarm is silenced.", escapeHTML(o.Name))
	} else {
		text = fmt.Sprintf("🔴 <b>%s</b> marked unpaid again.", escapeHTML(o.Name))
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send status response")
	}
}

// handlePaid handles the /paid command.
func (b *Bot) handlePaid(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.setStatusCore(ctx, tgBot, update, "/paid", appmodels.StatusPaid)
}

// handleUnpaid handles the /unpaid command.
func (b *Bot) handleUnpaid(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.setStatusCore(ctx, tgBot, update, "/unpaid", appmodels.StatusUnPaid)
}

// handleDelete handles the /delete command.
func (b *Bot) handleDelete(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDeleteCore(ctx, tgBot, update)
}

// handleDeleteCore is the testable implementation of handleDelete.
func (b *Bot) handleDeleteCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	args := extractCommandArgs(update.Message.Text, "/delete")

	o, ok := b.getOwnedObligation(ctx, tg, chatID, update.Message.From.ID, args)
	if !ok {
		return
	}

	if err := b.engine.Delete(ctx, o.ID); err != nil {
		logger.Log.Error().Err(err).Int("obligation_id", o.ID).Msg("Failed to delete obligation")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not delete the bill. Please try again.",
		})
		return
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("🗑️ <b>%s</b> deleted.", escapeHTML(o.Name)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /delete response")
	}
}

// handleDismiss handles the /dismiss command.
func (b *Bot) handleDismiss(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDismissCore(ctx, tgBot, update)
}

// handleDismissCore is the testable implementation of handleDismiss.
func (b *Bot) handleDismissCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	args := extractCommandArgs(update.Message.Text, "/dismiss")

	o, ok := b.getOwnedObligation(ctx, tg, chatID, update.Message.From.ID, args)
	if !ok {
		return
	}

	b.engine.Dismiss(o.ID)

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("🔕 Alarm for <b>%s</b> silenced. It will ring again while the bill stays unpaid - settle it with <code>/paid %d</code>.",
			escapeHTML(o.Name), o.ID),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /dismiss response")
	}
}
