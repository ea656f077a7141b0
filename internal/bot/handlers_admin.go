package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/tally-bot/internal/logger"
)

// extractAdminArgs extracts command arguments, splitting on the first space
// so multi-word arguments (like a broadcast body) survive intact.
func extractAdminArgs(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// requireAdmin checks that the sender is a configured admin, replying with a
// refusal when not. Returns true when the caller may proceed.
func (b *Bot) requireAdmin(ctx context.Context, tg TelegramAPI, update *models.Update) bool {
	chatID := update.Message.Chat.ID
	if b.cfg.IsAdmin(chatID) {
		return true
	}

	logger.Log.Warn().
		Str("chat_hash", logger.HashChatID(chatID)).
		Str("command", strings.Fields(update.Message.Text)[0]).
		Msg("Non-admin attempted admin command")
	_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "⛔ Only admins can use this command.",
	})
	return false
}

// handleBroadcast handles the /broadcast command.
func (b *Bot) handleBroadcast(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleBroadcastCore(ctx, tgBot, update)
}

// handleBroadcastCore is the testable implementation of handleBroadcast.
func (b *Bot) handleBroadcastCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	if !b.requireAdmin(ctx, tg, update) {
		return
	}

	message := extractAdminArgs(update.Message.Text)
	if message == "" {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      "Usage: <code>/broadcast &lt;message&gt;</code>",
			ParseMode: models.ParseModeHTML,
		})
		return
	}

	recipients, err := b.ledger.ChatIDs(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch broadcast recipients")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch recipients. Please try again.",
		})
		return
	}

	delivered, failed := b.broadcast(ctx, tg, recipients, message)

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   fmt.Sprintf("📣 Broadcast complete: %d delivered, %d failed.", delivered, failed),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /broadcast summary")
	}
}

// handleClearCache handles the /clearcache command.
func (b *Bot) handleClearCache(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleClearCacheCore(ctx, tgBot, update)
}

// handleClearCacheCore is the testable implementation of handleClearCache.
func (b *Bot) handleClearCacheCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	if !b.requireAdmin(ctx, tg, update) {
		return
	}

	dropped := b.ledger.CacheSize()
	b.ledger.ClearCache()

	logger.Log.Info().Int("dropped", dropped).Msg("Totals cache cleared")

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   fmt.Sprintf("Cache cleared (%d totals dropped). Totals will be recomputed on demand.", dropped),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /clearcache response")
	}
}

// handleUsers handles the /users command.
func (b *Bot) handleUsers(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleUsersCore(ctx, tgBot, update)
}

// handleUsersCore is the testable implementation of handleUsers.
func (b *Bot) handleUsersCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID

	if !b.requireAdmin(ctx, tg, update) {
		return
	}

	users, err := b.ledger.Users(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list users")
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch users. Please try again.",
		})
		return
	}

	if len(users) == 0 {
		_, _ = tg.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "No users yet.",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 <b>Known Users</b> (%d)\n\n", len(users)))
	for _, u := range users {
		sb.WriteString(fmt.Sprintf("• <code>%d</code> — %s\n", u.ChatID, u.Role))
	}

	_, err = tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /users response")
	}
}
