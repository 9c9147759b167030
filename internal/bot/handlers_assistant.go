package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billkeeper/internal/gemini"
	"gitlab.com/yelinaung/billkeeper/internal/logger"
	appmodels "gitlab.com/yelinaung/billkeeper/internal/models"
)

// handleAsk handles the /ask command.
func (b *Bot) handleAsk(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAskCore(ctx, tgBot, update)
}

// handleAskCore is the testable implementation of handleAsk. The user's
// tracked bills are passed to the model as context for the question. When the
// command replies to a message carrying a bill image, that image is attached
// to the question so the model can answer about the document itself.
func (b *Bot) handleAskCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	question := extractCommandArgs(update.Message.Text, "/ask")

	if question == "" {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "💬 Ask me anything about your bills.\n\nUsage: <code>/ask how much do I owe this month?</code>\nReply to a bill photo with <code>/ask ...</code> to ask about that document.",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	var attachedFileID string
	if reply := update.Message.ReplyToMessage; reply != nil {
		fileID, err := billAttachment(reply)
		if err != nil {
			_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Only JPEG bill images (.jpg/.jpeg) are supported.",
			})
			return
		}
		attachedFileID = fileID
	}

	if b.geminiClient == nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "💬 The assistant is not configured. Use /list and /due to review your bills.",
		})
		return
	}

	var document []byte
	mimeType := ""
	if attachedFileID != "" {
		data, err := b.downloadFile(ctx, tg, attachedFileID)
		if err != nil {
			logger.Log.Error().Err(err).Msg("Failed to download attached bill for assistant")
			_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ Could not fetch the attached bill image. Please try again.",
			})
			return
		}
		document = data
		mimeType = "image/jpeg"
	}

	obligations, err := b.obligationRepo.GetByUserID(ctx, update.Message.From.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch obligations for assistant")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your bills. Please try again.",
		})
		return
	}

	answer, err := b.geminiClient.Ask(ctx, question, obligations, document, mimeType)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Assistant request failed")

		text := "❌ The assistant could not answer right now. Please try again."
		if errors.Is(err, gemini.ErrQuestionTooLong) {
			text = fmt.Sprintf("❌ Question is too long (max %d characters).", gemini.MaxQuestionLength)
		}
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		})
		return
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   answer,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send assistant answer")
	}
}

// billAttachment resolves the Telegram file id of a bill image attached to a
// message: the largest photo size, or a document whose filename passes the
// image format check. An empty id with a nil error means no attachment.
func billAttachment(msg *models.Message) (string, error) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, nil
	}
	if msg.Document != nil {
		if err := appmodels.ValidatePhotoName(msg.Document.FileName); err != nil {
			return "", err
		}
		return msg.Document.FileID, nil
	}
	return "", nil
}

// handleBillPhotoCore extracts bill data from an attached image and creates
// an obligation from it. The Telegram file id of the image is stored with the
// obligation so the original bill can be retrieved later.
func (b *Bot) handleBillPhotoCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	fileID, err := billAttachment(update.Message)
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Only JPEG bill images (.jpg/.jpeg) are supported.",
		})
		return
	}
	if fileID == "" {
		return
	}

	logger.Log.Info().
		Int64("chat_id", chatID).
		Msg("Received bill image")

	if b.geminiClient == nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "📷 Bill scanning is not configured. Please add bills manually with <code>/add Electricity 45.00 due tomorrow 6pm</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "📷 Reading the bill...",
	})

	imageBytes, err := b.downloadFile(ctx, tg, fileID)
	if err != nil {
		logger.Log.Error().Err(err).
			Int64("chat_id", chatID).
			Msg("Failed to download photo")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to download the photo. Please try again.",
		})
		return
	}

	billData, err := b.geminiClient.ParseBill(ctx, imageBytes, "image/jpeg", appmodels.DefaultCategories)
	if err != nil {
		logger.Log.Error().Err(err).
			Int64("chat_id", chatID).
			Msg("Failed to parse bill")

		switch {
		case errors.Is(err, gemini.ErrParseTimeout):
			_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      "⏱️ Bill scanning timed out. Please try again or add manually with <code>/add</code>.",
				ParseMode: models.ParseModeHTML,
			})
		default:
			_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      "❌ Could not read this bill. Please add it manually with <code>/add</code>.",
				ParseMode: models.ParseModeHTML,
			})
		}
		return
	}

	logger.Log.Info().
		Str("name", billData.Name).
		Str("amount", billData.Amount.String()).
		Float64("confidence", billData.Confidence).
		Msg("Bill parsed")

	obligation := &appmodels.Obligation{
		UserID:      userID,
		Name:        billData.Name,
		Amount:      billData.Amount,
		Category:    billData.Category,
		PhotoFileID: fileID,
	}
	if !billData.DueDate.IsZero() {
		due := billData.DueDate
		obligation.DueDate = &due
		obligation.DueTime = due.Format(appmodels.DueTimeLayout)
		if obligation.DueTime == "00:00" {
			obligation.DueTime = ""
		}
	}

	if err := b.engine.Create(ctx, obligation); err != nil {
		logger.Log.Warn().Err(err).Msg("Scanned bill failed validation")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text: fmt.Sprintf("⚠️ I read the bill (%s, %s %s) but could not save it: %s\n\nAdd it manually with <code>/add</code>.",
				escapeHTML(billData.Name), appmodels.DefaultCurrency, billData.Amount.StringFixed(2), escapeHTML(err.Error())),
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	dueText := "no due date found"
	if obligation.DueDate != nil {
		dueText = "due " + obligation.DueDate.Format("Mon, Jan 2")
		if obligation.DueTime != "" {
			dueText += " at " + obligation.DueTime
		}
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf(`📸 <b>Bill Scanned!</b>

🧾 %s (#%d)
💰 %s %s
📁 %s
📅 %s

Mark it settled with <code>/paid %d</code>.`,
			escapeHTML(obligation.Name), obligation.ID,
			appmodels.DefaultCurrency, obligation.Amount.StringFixed(2),
			escapeHTML(categoryOrDefault(obligation.Category)),
			dueText, obligation.ID),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send scan confirmation")
	}
}

// categoryOrDefault substitutes a placeholder for an empty category.
func categoryOrDefault(category string) string {
	if category == "" {
		return "Uncategorized"
	}
	return category
}
