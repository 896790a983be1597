// Package notify delivers alerts and operator warnings.
package notify

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SmartMoney/internal/alert"
)

// StartupMessage is sent once when the bot comes up.
const StartupMessage = "🚀 SmartMoney signal bot started: 1H bias + 5m entries (OB/FVG/Liquidity)."

// Notifier is the delivery side of the bot.
type Notifier interface {
	// Started announces that the bot is running.
	Started(ctx context.Context) error
	// Signal delivers a state-changing alert.
	Signal(ctx context.Context, ev alert.Event) error
	// Warning reports a failed evaluation for one asset.
	Warning(ctx context.Context, label string, err error) error
}

// LogNotifier writes everything to the log. It is used when no Telegram
// token is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.With().Str("component", "log_notifier").Logger()}
}

func (n *LogNotifier) Started(_ context.Context) error {
	n.logger.Info().Msg(StartupMessage)
	return nil
}

func (n *LogNotifier) Signal(_ context.Context, ev alert.Event) error {
	n.logger.Info().
		Str("id", ev.ID).
		Str("asset", ev.Asset).
		Str("decision", string(ev.Signal.Decision)).
		Msg("\n" + FormatSignal(ev))
	return nil
}

func (n *LogNotifier) Warning(_ context.Context, label string, err error) error {
	n.logger.Warn().Msg(FormatWarning(label, err))
	return nil
}
