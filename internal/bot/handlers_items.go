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

// handleAddItem handles the /additem command.
func (b *Bot) handleAddItem(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddItemCore(ctx, tgBot, update)
}

// handleAddItemCore is the testable implementation of handleAddItem. The
// command text comes from the message body, or from the caption when the
// item was sent as a captioned photo.
func (b *Bot) handleAddItemCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text
	if text == "" {
		text = update.Message.Caption
	}
	args := extractCommandArgs(text, "/additem")

	if args == "" {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Please provide item details.\n\nUsage: <code>/additem Dish Soap 3.50 2</code>\nAttach a photo with the command as its caption to store a picture.",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	parsed, err := ParseAddItemCommand(args)
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf("❌ %s\n\nUsage: <code>/additem Dish Soap 3.50 2</code>", escapeHTML(err.Error())),
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	photoFileID, err := billAttachment(update.Message)
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Only JPEG item photos (.jpg/.jpeg) are supported.",
		})
		return
	}

	item := &appmodels.Item{
		UserID:      update.Message.From.ID,
		Name:        parsed.Name,
		Price:       parsed.Price,
		Quantity:    parsed.Quantity,
		PhotoFileID: photoFileID,
	}

	if err := appmodels.ValidateItem(item); err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ %s", err.Error()),
		})
		return
	}

	if err := b.itemRepo.Create(ctx, item); err != nil {
		logger.Log.Error().Err(err).Str("name", item.Name).Msg("Failed to create item")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not save the item. Please try again.",
		})
		return
	}

	logger.Log.Info().Int("item_id", item.ID).Str("name", item.Name).Msg("Item created")

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("✅ Stocked <b>%s</b> (#%d): %d x %s %s.",
			escapeHTML(item.Name), item.ID, item.Quantity, appmodels.DefaultCurrency, item.Price.StringFixed(2)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send item confirmation")
	}
}

// handleItems handles the /items command.
func (b *Bot) handleItems(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleItemsCore(ctx, tgBot, update)
}

// handleItemsCore is the testable implementation of handleItems.
func (b *Bot) handleItemsCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID

	items, err := b.itemRepo.GetByUserID(ctx, update.Message.From.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch items")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your items. Please try again.",
		})
		return
	}

	if len(items) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "📦 No items tracked yet. Add one with <code>/additem Dish Soap 3.50 2</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("📦 <b>Your Items</b>\n\n")
	for _, item := range items {
		marker := "🟢"
		if !item.InStock() {
			marker = "⚪"
		}
		fmt.Fprintf(&sb, "%s <b>%s</b> (#%d) - %d x %s %s\n",
			marker, escapeHTML(item.Name), item.ID, item.Quantity,
			appmodels.DefaultCurrency, item.Price.StringFixed(2))
	}
	sb.WriteString("\n🟢 in stock, ⚪ consumed. <code>/consume &lt;id&gt;</code> when one runs out.")

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /items response")
	}
}

// handleConsume handles the /consume command.
func (b *Bot) handleConsume(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.setItemStatusCore(ctx, tgBot, update, "/consume", appmodels.ItemStatusConsumed)
}

// handleRestock handles the /restock command.
func (b *Bot) handleRestock(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.setItemStatusCore(ctx, tgBot, update, "/restock", appmodels.ItemStatusInStock)
}

// setItemStatusCore is the shared implementation of /consume and /restock.
func (b *Bot) setItemStatusCore(ctx context.Context, tg TelegramAPI, update *models.Update, command, status string) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	args := extractCommandArgs(update.Message.Text, command)

	item, ok := b.getOwnedItem(ctx, tg, chatID, update.Message.From.ID, args)
	if !ok {
		return
	}

	if err := b.itemRepo.SetStatus(ctx, item.ID, status); err != nil {
		logger.Log.Error().Err(err).Int("item_id", item.ID).Str("status", status).Msg("Failed to set item status")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not update the item. Please try again.",
		})
		return
	}

	var text string
	if status == appmodels.ItemStatusConsumed {
		text = fmt.Sprintf("⚪ <b>%s</b> marked consumed. Restock it with <code>/restock %d</code>.", escapeHTML(item.Name), item.ID)
	} else {
		text = fmt.Sprintf("🟢 <b>%s</b> is back in stock.", escapeHTML(item.Name))
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send item status response")
	}
}

// handleDelItem handles the /delitem command.
func (b *Bot) handleDelItem(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDelItemCore(ctx, tgBot, update)
}

// handleDelItemCore is the testable implementation of handleDelItem.
func (b *Bot) handleDelItemCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	args := extractCommandArgs(update.Message.Text, "/delitem")

	item, ok := b.getOwnedItem(ctx, tg, chatID, update.Message.From.ID, args)
	if !ok {
		return
	}

	if err := b.itemRepo.Delete(ctx, item.ID); err != nil {
		logger.Log.Error().Err(err).Int("item_id", item.ID).Msg("Failed to delete item")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not delete the item. Please try again.",
		})
		return
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      fmt.Sprintf("🗑️ <b>%s</b> removed.", escapeHTML(item.Name)),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send item delete response")
	}
}

// getOwnedItem resolves an id argument to an item owned by the requesting
// user, replying with an error message otherwise.
func (b *Bot) getOwnedItem(ctx context.Context, tg TelegramAPI, chatID, userID int64, args string) (*appmodels.Item, bool) {
	id, err := ParseIDArg(args)
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ %s", err.Error()),
		})
		return nil, false
	}

	item, err := b.itemRepo.GetByID(ctx, id)
	if err != nil || item.UserID != userID {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   fmt.Sprintf("❌ Item #%d not found.", id),
		})
		return nil, false
	}
	return item, true
}
