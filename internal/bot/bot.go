// Package bot provides the Telegram bot initialization and handlers.
package bot

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/tally-bot/internal/config"
	"gitlab.com/yelinaung/tally-bot/internal/forecast"
	"gitlab.com/yelinaung/tally-bot/internal/ledger"
	"gitlab.com/yelinaung/tally-bot/internal/logger"
)

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot        *bot.Bot
	cfg        *config.Config
	ledger     *ledger.Ledger
	forecaster *forecast.Forecaster
}

// New creates a new Bot instance.
func New(cfg *config.Config, lgr *ledger.Ledger, fc *forecast.Forecaster) (*Bot, error) {
	b := &Bot{
		cfg:        cfg,
		ledger:     lgr,
		forecaster: fc,
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.loggingMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.registerHandlers()

	return b, nil
}

// Start begins polling for updates and runs the periodic trend refit loop
// until the context is cancelled.
func (b *Bot) Start(ctx context.Context) {
	go b.startRefitLoop(ctx)

	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// registerHandlers sets up command handlers.
func (b *Bot) registerHandlers() {
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, b.handleStart)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypePrefix, b.handleHelp)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/total", bot.MatchTypePrefix, b.handleTotal)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/list", bot.MatchTypePrefix, b.handleList)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/export", bot.MatchTypePrefix, b.handleExport)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/graph", bot.MatchTypePrefix, b.handleGraph)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/forecast", bot.MatchTypePrefix, b.handleForecast)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/reset", bot.MatchTypePrefix, b.handleReset)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypePrefix, b.handleStatus)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/broadcast", bot.MatchTypePrefix, b.handleBroadcast)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/clearcache", bot.MatchTypePrefix, b.handleClearCache)
	b.bot.RegisterHandler(bot.HandlerTypeMessageText, "/users", bot.MatchTypePrefix, b.handleUsers)
}

// loggingMiddleware logs every inbound update before dispatch.
func (b *Bot) loggingMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil {
			logger.Log.Info().
				Str("chat_hash", logger.HashChatID(update.Message.Chat.ID)).
				Str("text", update.Message.Text).
				Msg("User input")
		}
		next(ctx, tgBot, update)
	}
}

// defaultHandler handles non-command messages: a message that is exactly
// one signed number records a transaction, anything else is rejected.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.handleNumericMessageCore(ctx, tgBot, update)
}
