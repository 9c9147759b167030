package bot

import (
	"bytes"
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billkeeper/internal/logger"
)

// handleChart handles the /chart command.
func (b *Bot) handleChart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleChartCore(ctx, tgBot, update)
}

// handleChartCore is the testable implementation of handleChart. It charts
// the current year's bill totals per month.
func (b *Bot) handleChartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	year := b.engine.Now().In(b.loc).Year()
	start, end := yearDateRange(year, b.loc)

	obligations, err := b.obligationRepo.GetByUserIDAndDateRange(ctx, update.Message.From.ID, start, end)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch obligations for chart")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your bills. Please try again.",
		})
		return
	}

	if len(obligations) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📊 No bills due this year yet, nothing to chart.",
		})
		return
	}

	chartBytes, err := GenerateMonthlyChart(obligations, year)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to generate chart")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate the chart. Please try again.",
		})
		return
	}

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: generateChartFilename(year),
			Data:     bytes.NewReader(chartBytes),
		},
		Caption: "📊 Monthly bill totals",
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send chart")
	}
}

// handleExport handles the /export command.
func (b *Bot) handleExport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExportCore(ctx, tgBot, update)
}

// handleExportCore is the testable implementation of handleExport.
func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID

	obligations, err := b.obligationRepo.GetByUserID(ctx, update.Message.From.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch obligations for export")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your bills. Please try again.",
		})
		return
	}

	if len(obligations) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📄 No bills to export yet.",
		})
		return
	}

	csvBytes, err := GenerateObligationsCSV(obligations)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to generate CSV")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate the export. Please try again.",
		})
		return
	}

	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: generateExportFilename(b.engine.Now()),
			Data:     bytes.NewReader(csvBytes),
		},
		Caption: "📄 Your bills as CSV",
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send export")
	}
}
