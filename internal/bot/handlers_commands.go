package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/tally-bot/internal/forecast"
	"gitlab.com/yelinaung/tally-bot/internal/logger"
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

// escapeHTML escapes the characters Telegram's HTML parse mode treats
// specially.
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

I keep a running total of the numbers you send me.

<b>Quick Start:</b>
• Send <code>+100</code> to add 100
• Send <code>-30</code> to subtract 30
• Use /total to see where you stand

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

<b>Recording:</b>
• Send a signed number like <code>+100</code> or <code>-30.50</code> to record it

<b>Viewing:</b>
• <code>/total</code> - Show your current running total
• <code>/list</code> - Show your recorded transactions

<b>Reports:</b>
• <code>/export</code> - Download your transactions as CSV
• <code>/graph</code> - Chart of daily totals
• <code>/forecast &lt;YYYY-MM-DD&gt;</code> - Predicted daily total for a date

<b>Other:</b>
• <code>/reset</code> - Delete all your transactions
• <code>/status</code> - Bot health
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

// handleTotal handles the /total command.
func (b *Bot) handleTotal(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleTotalCore(ctx, tgBot, update)
}

// handleTotalCore is the testable implementation of handleTotal.
func (b *Bot) handleTotalCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	total, err := b.ledger.GetTotal(ctx, chatID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to fetch total")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your total. Please try again.",
		})
		return
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("Your current total: %s", total),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /total response")
	}
}

// handleList handles the /list command.
func (b *Bot) handleList(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleListCore(ctx, tgBot, update)
}

// handleListCore is the testable implementation of handleList.
func (b *Bot) handleListCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	txns, err := b.ledger.ListTransactions(ctx, chatID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to list transactions")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your transactions. Please try again.",
		})
		return
	}

	if len(txns) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "No transactions recorded yet. Send a number like +100 to start.",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("🧾 <b>Your Transactions</b>\n\n")
	for _, txn := range txns {
		sb.WriteString(fmt.Sprintf("#%d  %s  %s  (%s)\n",
			txn.ID, txn.Amount.StringFixed(2), txn.Date.Format(time.DateOnly), escapeHTML(txn.Category)))
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

// handleExport handles the /export command.
func (b *Bot) handleExport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExportCore(ctx, tgBot, update)
}

// handleExportCore is the testable implementation of handleExport.
func (b *Bot) handleExportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	txns, err := b.ledger.ListTransactions(ctx, chatID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to fetch transactions for export")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate export. Please try again.",
		})
		return
	}

	if len(txns) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "No transactions to export yet.",
		})
		return
	}

	csvData, err := GenerateTransactionsCSV(txns)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to generate CSV")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate export. Please try again.",
		})
		return
	}

	filename := generateExportFilename(chatID)
	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(csvData)},
		Caption:  fmt.Sprintf("🧾 %d transactions", len(txns)),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send export document")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to send export. Please try again.",
		})
		return
	}

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(chatID)).
		Int("transaction_count", len(txns)).
		Msg("Export generated")
}

// handleGraph handles the /graph command.
func (b *Bot) handleGraph(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleGraphCore(ctx, tgBot, update)
}

// handleGraphCore is the testable implementation of handleGraph.
func (b *Bot) handleGraphCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	aggs, err := b.ledger.ChatDateAggregates(ctx, chatID)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to fetch aggregates for graph")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate graph. Please try again.",
		})
		return
	}

	if len(aggs) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📊 No data to graph yet. Record some transactions first.",
		})
		return
	}

	chartData, err := GenerateHistoryChart(aggs)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to generate chart")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate graph. Please try again.",
		})
		return
	}

	filename := generateChartFilename(chatID)
	_, err = tg.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(chartData)},
		Caption:  fmt.Sprintf("📊 Daily totals over %d days", len(aggs)),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send graph document")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to send graph. Please try again.",
		})
		return
	}

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(chatID)).
		Int("day_count", len(aggs)).
		Msg("Graph generated")
}

// handleForecast handles the /forecast command.
func (b *Bot) handleForecast(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleForecastCore(ctx, tgBot, update)
}

// handleForecastCore is the testable implementation of handleForecast.
func (b *Bot) handleForecastCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	args := extractCommandArgs(update.Message.Text, "/forecast")
	if args == "" {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Please provide a date.\n\nUsage: <code>/forecast 2026-12-31</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	date, err := time.Parse(time.DateOnly, args)
	if err != nil {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ Invalid date. Use the format <code>YYYY-MM-DD</code>.",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	predicted, err := b.forecaster.Predict(ctx, date)
	if err != nil {
		if errors.Is(err, forecast.ErrModelUnavailable) || errors.Is(err, forecast.ErrNotEnoughData) {
			_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: chatID,
				Text:   "Not enough data for a forecast yet. Keep recording transactions!",
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to predict")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to generate forecast. Please try again.",
		})
		return
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("🔮 Predicted daily total for %s: %s", date.Format(time.DateOnly), predicted.StringFixed(2)),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /forecast response")
	}
}

// handleReset handles the /reset command.
func (b *Bot) handleReset(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleResetCore(ctx, tgBot, update)
}

// handleResetCore is the testable implementation of handleReset.
func (b *Bot) handleResetCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	if err := b.ledger.ResetForUser(ctx, chatID); err != nil {
		logger.Log.Error().
			Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to reset transactions")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to reset. Please try again.",
		})
		return
	}

	logger.Log.Info().Str("chat_hash", logger.HashChatID(chatID)).Msg("Transactions reset")

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "All your transactions have been deleted. Your total is now 0.",
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /reset response")
	}
}

// handleStatus handles the /status command.
func (b *Bot) handleStatus(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStatusCore(ctx, tgBot, update)
}

// handleStatusCore is the testable implementation of handleStatus.
func (b *Bot) handleStatusCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	storageOK := true
	if _, err := b.ledger.ChatIDs(ctx); err != nil {
		storageOK = false
	}

	storage := "ok"
	if !storageOK {
		storage = "unavailable"
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text: fmt.Sprintf("🤖 I'm up and running!\nStorage: %s\nCached totals: %d",
			storage, b.ledger.CacheSize()),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /status response")
	}
}
