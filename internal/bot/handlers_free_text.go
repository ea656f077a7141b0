package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/tally-bot/internal/logger"
	appmodels "gitlab.com/yelinaung/tally-bot/internal/models"
)

const rejectionMessage = "Please send a valid number starting with + or -."

// handleNumericMessageCore records a transaction from a free-text message.
// The message must be exactly one signed number; anything else gets the
// fixed rejection reply and no ledger call.
func (b *Bot) handleNumericMessageCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	if strings.HasPrefix(update.Message.Text, "/") {
		// Unknown command, not a transaction.
		return
	}

	chatID := update.Message.Chat.ID

	amount, ok := ParseAmount(update.Message.Text)
	if !ok {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   rejectionMessage,
		})
		return
	}

	total, err := b.ledger.AddTransaction(ctx, chatID, amount, appmodels.DefaultCategory)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to record transaction")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "Sorry, I couldn't record that. Please try again.",
		})
		return
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("Amount added: %s\nYour current total: %s", amount, total),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send transaction reply")
	}

	b.notifyGroup(ctx, tg, chatID, amount)
	b.notifyAdminsIfLarge(ctx, tg, chatID, amount)
}

// notifyGroup announces a recorded transaction in the configured group chat.
func (b *Bot) notifyGroup(ctx context.Context, tg TelegramAPI, chatID int64, amount decimal.Decimal) {
	if b.cfg.GroupChatID == 0 {
		return
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: b.cfg.GroupChatID,
		Text:   fmt.Sprintf("User %s added a transaction of %s!", logger.HashChatID(chatID), amount),
	})
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to notify group")
	}
}

// notifyAdminsIfLarge alerts every configured admin when an amount exceeds
// the alert threshold.
func (b *Bot) notifyAdminsIfLarge(ctx context.Context, tg TelegramAPI, chatID int64, amount decimal.Decimal) {
	if amount.LessThanOrEqual(b.cfg.AlertThreshold) {
		return
	}

	for _, adminID := range b.cfg.AdminChatIDs {
		_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: adminID,
			Text:   fmt.Sprintf("User %s added a high transaction of %s!", logger.HashChatID(chatID), amount),
		})
		if err != nil {
			logger.Log.Warn().
				Err(err).
				Int64("admin_id", adminID).
				Msg("Failed to send high-amount alert")
		}
	}
}
