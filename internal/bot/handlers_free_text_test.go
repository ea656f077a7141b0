package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/tally-bot/internal/bot/mocks"
	"gitlab.com/yelinaung/tally-bot/internal/config"
	"gitlab.com/yelinaung/tally-bot/internal/logger"
)

func TestHandleNumericMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("records amount and replies with total", func(t *testing.T) {
		b, _ := setupTestBot(nil)
		mockBot := mocks.NewMockBot()

		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "+100"))

		require.Equal(t, 1, mockBot.SentMessageCount())
		msg := mockBot.LastSentMessage()
		require.NotNil(t, msg)
		require.Contains(t, msg.Text, "Amount added: 100")
		require.Contains(t, msg.Text, "Your current total: 100")
	})

	t.Run("running total accumulates across messages", func(t *testing.T) {
		b, _ := setupTestBot(nil)
		mockBot := mocks.NewMockBot()

		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "+100"))
		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "-30"))

		require.Equal(t, 2, mockBot.SentMessageCount())
		msg := mockBot.LastSentMessage()
		require.Contains(t, msg.Text, "Amount added: -30")
		require.Contains(t, msg.Text, "Your current total: 70")
	})

	t.Run("rejects non-numeric text without touching the ledger", func(t *testing.T) {
		b, store := setupTestBot(nil)
		mockBot := mocks.NewMockBot()

		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "hello world"))

		require.Equal(t, 1, mockBot.SentMessageCount())
		require.Equal(t, rejectionMessage, mockBot.LastSentMessage().Text)
		require.Empty(t, store.txns)
	})

	t.Run("rejects trailing garbage after the number", func(t *testing.T) {
		b, store := setupTestBot(nil)
		mockBot := mocks.NewMockBot()

		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "12.50 lunch"))

		require.Equal(t, rejectionMessage, mockBot.LastSentMessage().Text)
		require.Empty(t, store.txns)
	})

	t.Run("ignores commands", func(t *testing.T) {
		b, _ := setupTestBot(nil)
		mockBot := mocks.NewMockBot()

		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "/unknown"))

		require.Equal(t, 0, mockBot.SentMessageCount())
	})

	t.Run("ignores nil message", func(t *testing.T) {
		b, _ := setupTestBot(nil)
		mockBot := mocks.NewMockBot()

		b.handleNumericMessageCore(ctx, mockBot, &tgmodels.Update{})

		require.Equal(t, 0, mockBot.SentMessageCount())
	})

	t.Run("apologizes on storage failure", func(t *testing.T) {
		b, store := setupTestBot(nil)
		mockBot := mocks.NewMockBot()

		store.failNext = errors.New("db down")
		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "+50"))

		require.Equal(t, 1, mockBot.SentMessageCount())
		require.Contains(t, mockBot.LastSentMessage().Text, "couldn't record")
	})
}

func TestHandleNumericMessage_GroupNotification(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{
		AlertThreshold: config.DefaultAlertThreshold,
		GroupChatID:    -900,
	}
	b, _ := setupTestBot(cfg)
	mockBot := mocks.NewMockBot()

	b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "+25"))

	groupMsgs := mockBot.MessagesForChat(-900)
	require.Len(t, groupMsgs, 1)
	// The announcement names the sender by hash, never by raw chat id.
	require.Equal(t,
		fmt.Sprintf("User %s added a transaction of 25!", logger.HashChatID(100)),
		groupMsgs[0].Text)
}

func TestHandleNumericMessage_AdminAlert(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{
		AlertThreshold: decimal.NewFromInt(1000),
		AdminChatIDs:   []int64{1, 2},
	}

	t.Run("alerts every admin above the threshold", func(t *testing.T) {
		b, _ := setupTestBot(cfg)
		mockBot := mocks.NewMockBot()

		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "+1500"))

		require.Len(t, mockBot.MessagesForChat(1), 1)
		require.Len(t, mockBot.MessagesForChat(2), 1)
		require.Contains(t, mockBot.MessagesForChat(1)[0].Text, "high transaction of 1500")
	})

	t.Run("no alert at or below the threshold", func(t *testing.T) {
		b, _ := setupTestBot(cfg)
		mockBot := mocks.NewMockBot()

		b.handleNumericMessageCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "+1000"))

		require.Empty(t, mockBot.MessagesForChat(1))
		require.Empty(t, mockBot.MessagesForChat(2))
	})
}
