// Package bot provides the Telegram bot surface for the bill tracker: CRUD
// commands over obligations and the alarm/notification sinks used by the
// reminder engine.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"gitlab.com/yelinaung/billkeeper/internal/config"
	"gitlab.com/yelinaung/billkeeper/internal/gemini"
	"gitlab.com/yelinaung/billkeeper/internal/logger"
	"gitlab.com/yelinaung/billkeeper/internal/models"
	"gitlab.com/yelinaung/billkeeper/internal/reminder"
	"gitlab.com/yelinaung/billkeeper/internal/repository"
)

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot            *bot.Bot
	cfg            *config.Config
	loc            *time.Location
	userRepo       *repository.UserRepository
	obligationRepo *repository.ObligationRepository
	itemRepo       *repository.ItemRepository
	engine         *reminder.Engine
	geminiClient   *gemini.Client

	// messageSender is swapped for a mock in tests.
	messageSender TelegramAPI
}

// New creates a new Bot instance wired to the reminder engine.
// geminiClient may be nil; AI features degrade gracefully.
func New(cfg *config.Config, pool *pgxpool.Pool, geminiClient *gemini.Client) (*Bot, error) {
	b := &Bot{
		cfg:            cfg,
		loc:            cfg.Location(),
		userRepo:       repository.NewUserRepository(pool),
		obligationRepo: repository.NewObligationRepository(pool),
		itemRepo:       repository.NewItemRepository(pool),
		geminiClient:   geminiClient,
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.whitelistMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.messageSender = telegramBot

	registry := reminder.NewRegistry(
		newSounder(b, cfg.AlarmRepeatInterval),
		newNotifier(b),
		newAlerter(b),
	)
	b.engine = reminder.NewEngine(b.obligationRepo, registry, cfg.TickInterval, b.loc)

	b.registerHandlers()

	return b, nil
}

// Engine exposes the reminder engine (used by main and tests).
func (b *Bot) Engine() *reminder.Engine {
	return b.engine
}

// Start runs the reminder engine and begins polling for updates. It returns
// when ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	go b.engine.Run(ctx)

	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/add", bot.MatchTypePrefix, b.handleAdd)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/list", bot.MatchTypePrefix, b.handleList)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/due", bot.MatchTypePrefix, b.handleDue)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/paid", bot.MatchTypePrefix, b.handlePaid)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unpaid", bot.MatchTypePrefix, b.handleUnpaid)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delete", bot.MatchTypePrefix, b.handleDelete)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/dismiss", bot.MatchTypePrefix, b.handleDismiss)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/chart", bot.MatchTypePrefix, b.handleChart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypePrefix, b.handleExport)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/ask", bot.MatchTypePrefix, b.handleAsk)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/additem", bot.MatchTypePrefix, b.handleAddItem)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/items", bot.MatchTypePrefix, b.handleItems)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/consume", bot.MatchTypePrefix, b.handleConsume)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/restock", bot.MatchTypePrefix, b.handleRestock)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delitem", bot.MatchTypePrefix, b.handleDelItem)
}

// whitelistMiddleware checks if the user is whitelisted before processing.
func (b *Bot) whitelistMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		userID := extractUserID(update)
		if userID == 0 {
			return
		}

		username := extractUsername(update)
		logUserAction(userID, username, update)

		if !b.cfg.IsUserWhitelisted(userID, username) {
			logger.Log.Warn().
				Str("user_hash", logger.HashUserID(userID)).
				Str("username", username).
				Msg("Blocked non-whitelisted user")
			if update.Message != nil {
				_, _ = tgBot.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   "⛔ Sorry, you are not authorized to use this bot.",
				})
			}
			return
		}

		if err := b.ensureUserRegistered(ctx, update); err != nil {
			logger.Log.Error().
				Str("user_hash", logger.HashUserID(userID)).
				Err(err).
				Msg("Failed to register user")
		}

		next(ctx, tgBot, update)
	}
}

// logUserAction logs the user's input/action.
func logUserAction(userID int64, username string, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	msg := update.Message
	event := logger.Log.Info().
		Str("user_hash", logger.HashUserID(userID)).
		Str("username", username).
		Int64("chat_id", msg.Chat.ID)

	if msg.Text != "" {
		event = event.Str("text", msg.Text)
	}
	if len(msg.Photo) > 0 {
		event = event.Str("type", "photo")
	}

	event.Msg("User input")
}

// extractUsername gets the username from the update.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	return ""
}

// extractUserID gets the user ID from the update.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	return 0
}

// ensureUserRegistered creates or updates the user record.
func (b *Bot) ensureUserRegistered(ctx context.Context, update *tgmodels.Update) error {
	if update.Message == nil || update.Message.From == nil {
		return nil
	}

	from := update.Message.From
	user := &models.User{
		ID:        from.ID,
		Username:  from.Username,
		FirstName: from.FirstName,
		LastName:  from.LastName,
	}

	if err := b.userRepo.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// defaultHandler routes photo messages to the bill parser and everything else
// to a usage hint.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	if len(update.Message.Photo) > 0 || update.Message.Document != nil {
		// A captioned image adds an inventory item; a bare one is a bill scan.
		if strings.HasPrefix(update.Message.Caption, "/additem") {
			b.handleAddItemCore(ctx, tgBot, update)
			return
		}
		b.handleBillPhotoCore(ctx, tgBot, update)
		return
	}

	logger.Log.Debug().
		Int64("chat_id", update.Message.Chat.ID).
		Str("text", update.Message.Text).
		Msg("Default handler triggered")

	_, err := tgBot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      "I didn't understand that. Use /help to see available commands, or add a bill like <code>/add Electricity 45.00 due tomorrow 6pm</code>",
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send default response")
	}
}
