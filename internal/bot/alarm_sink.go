package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/billkeeper/internal/logger"
	"gitlab.com/yelinaung/billkeeper/internal/models"
	"gitlab.com/yelinaung/billkeeper/internal/reminder"
)

// telegramSounder implements reminder.Sounder: the "looping sound" is a
// repeating alarm message to the obligation owner's chat, re-sent on a fixed
// interval until the alarm is stopped.
type telegramSounder struct {
	b      *Bot
	repeat time.Duration
}

func newSounder(b *Bot, repeat time.Duration) reminder.Sounder {
	return &telegramSounder{b: b, repeat: repeat}
}

func alarmText(o models.Obligation) string {
	return fmt.Sprintf("🚨 <b>%s</b> is overdue! Amount due: %s %s\n\nMark it with <code>/paid %d</code> or silence with <code>/dismiss %d</code>.",
		escapeHTML(o.Name), models.DefaultCurrency, o.Amount.StringFixed(2), o.ID, o.ID)
}

// Start sends the first ring synchronously so a broken transport surfaces as
// a start failure, then keeps ringing in the background until stopped.
func (s *telegramSounder) Start(ctx context.Context, o models.Obligation) (reminder.Sound, error) {
	text := alarmText(o)

	if _, err := s.b.messageSender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    o.UserID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	}); err != nil {
		return nil, fmt.Errorf("failed to start alarm for obligation %d: %w", o.ID, err)
	}

	loop := &alarmLoop{
		b:      s.b,
		chatID: o.UserID,
		oid:    o.ID,
		text:   text,
		repeat: s.repeat,
		stop:   make(chan struct{}),
	}
	go loop.run(ctx)
	return loop, nil
}

// alarmLoop is a single obligation's running alarm. Stop is idempotent.
type alarmLoop struct {
	b      *Bot
	chatID int64
	oid    int
	text   string
	repeat time.Duration
	stop   chan struct{}
	once   sync.Once
}

func (a *alarmLoop) run(ctx context.Context) {
	ticker := time.NewTicker(a.repeat)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.b.messageSender.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID:    a.chatID,
				Text:      a.text,
				ParseMode: tgmodels.ParseModeHTML,
			}); err != nil {
				logger.Log.Warn().Err(err).Int("obligation_id", a.oid).Msg("Failed to re-send alarm message")
			}
		}
	}
}

// Stop halts the repeating alarm and releases the loop.
func (a *alarmLoop) Stop() {
	a.once.Do(func() {
		close(a.stop)
	})
}

// telegramNotifier implements reminder.Notifier with a one-shot notification
// naming the obligation and its amount.
type telegramNotifier struct {
	b *Bot
}

func newNotifier(b *Bot) reminder.Notifier {
	return &telegramNotifier{b: b}
}

func (n *telegramNotifier) Notify(ctx context.Context, o models.Obligation) error {
	_, err := n.b.messageSender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: o.UserID,
		Text:   fmt.Sprintf("🔔 Payment due: %s (%s %s)", o.Name, models.DefaultCurrency, o.Amount.StringFixed(2)),
	})
	if err != nil {
		return fmt.Errorf("failed to send due notification: %w", err)
	}
	return nil
}

// telegramAlerter implements reminder.Alerter: a single plain alert used when
// the repeating alarm could not be started.
type telegramAlerter struct {
	b *Bot
}

func newAlerter(b *Bot) reminder.Alerter {
	return &telegramAlerter{b: b}
}

func (a *telegramAlerter) Alert(ctx context.Context, o models.Obligation) {
	_, err := a.b.messageSender.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: o.UserID,
		Text:   fmt.Sprintf("⚠️ %s is overdue (%s %s). Reminders are unavailable right now.", o.Name, models.DefaultCurrency, o.Amount.StringFixed(2)),
	})
	if err != nil {
		logger.Log.Error().Err(err).Int("obligation_id", o.ID).Msg("Failed to send fallback alert")
	}
}
