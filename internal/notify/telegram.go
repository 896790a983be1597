package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/alert"
)

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts plain-text messages to one chat.
type Telegram struct {
	bot    sender
	chatID int64
	logger zerolog.Logger
}

// NewTelegram authorizes the bot token and returns a notifier for chatID.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}

	t := newTelegram(bot, chatID)
	t.logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")
	return t, nil
}

func newTelegram(bot sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}
}

func (t *Telegram) Started(ctx context.Context) error {
	return t.send(ctx, StartupMessage)
}

func (t *Telegram) Signal(ctx context.Context, ev alert.Event) error {
	if err := t.send(ctx, FormatSignal(ev)); err != nil {
		return fmt.Errorf("sending %s alert for %s: %w", ev.Signal.Decision, ev.Asset, err)
	}
	t.logger.Info().Str("asset", ev.Asset).Str("id", ev.ID).Msg("Alert delivered")
	return nil
}

func (t *Telegram) Warning(ctx context.Context, label string, err error) error {
	return t.send(ctx, FormatWarning(label, err))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).Int64("chat_id", t.chatID).Msg("Telegram send failed")
		return err
	}
	return nil
}
