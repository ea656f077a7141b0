package bot

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"gitlab.com/yelinaung/tally-bot/internal/logger"
)

// maxMessageLength is Telegram's per-message text limit.
const maxMessageLength = 4096

// chunkMessage splits text into pieces no longer than maxMessageLength runes
// so long broadcasts survive Telegram's limit. Splits are byte-agnostic but
// rune-safe.
func chunkMessage(text string) []string {
	runes := []rune(text)
	if len(runes) <= maxMessageLength {
		return []string{text}
	}

	var chunks []string
	for len(runes) > 0 {
		n := maxMessageLength
		if n > len(runes) {
			n = len(runes)
		}
		chunks = append(chunks, string(runes[:n]))
		runes = runes[n:]
	}
	return chunks
}

// broadcast sends message to every recipient, pausing between sends so a
// large user base does not trip Telegram's flood limits. A failed recipient
// is logged and skipped; the rest still receive the message. Returns how many
// recipients got every chunk and how many failed.
func (b *Bot) broadcast(ctx context.Context, tg TelegramAPI, recipients []int64, message string) (delivered, failed int) {
	chunks := chunkMessage(message)

	for _, recipient := range recipients {
		ok := true
		for _, chunk := range chunks {
			_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
				ChatID: recipient,
				Text:   chunk,
			})
			if err != nil {
				logger.Log.Warn().
					Err(err).
					Str("chat_hash", logger.HashChatID(recipient)).
					Msg("Broadcast delivery failed")
				ok = false
				break
			}
		}

		if ok {
			delivered++
		} else {
			failed++
		}

		if b.cfg.BroadcastDelay > 0 {
			select {
			case <-ctx.Done():
				return delivered, failed
			case <-time.After(b.cfg.BroadcastDelay):
			}
		}
	}

	logger.Log.Info().
		Int("delivered", delivered).
		Int("failed", failed).
		Int("chunks", len(chunks)).
		Msg("Broadcast finished")
	return delivered, failed
}
