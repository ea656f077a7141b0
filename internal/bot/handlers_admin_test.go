package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/tally-bot/internal/bot/mocks"
	"gitlab.com/yelinaung/tally-bot/internal/config"
)

var errTest = errors.New("send failed")

func adminConfig() *config.Config {
	return &config.Config{
		AdminChatIDs:   []int64{1},
		AlertThreshold: config.DefaultAlertThreshold,
	}
}

func TestHandleBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin is refused", func(t *testing.T) {
		b, _ := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()

		b.handleBroadcastCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "/broadcast hello"))

		require.Equal(t, 1, mockBot.SentMessageCount())
		require.Contains(t, mockBot.LastSentMessage().Text, "Only admins")
	})

	t.Run("requires a message body", func(t *testing.T) {
		b, _ := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()

		b.handleBroadcastCore(ctx, mockBot, mocks.MessageUpdate(1, 1, "/broadcast"))

		require.Contains(t, mockBot.LastSentMessage().Text, "Usage")
	})

	t.Run("delivers to every known user", func(t *testing.T) {
		b, _ := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()

		_, err := b.ledger.AddTransaction(ctx, 100, mustParseDecimal("1"), "")
		require.NoError(t, err)
		_, err = b.ledger.AddTransaction(ctx, 200, mustParseDecimal("1"), "")
		require.NoError(t, err)

		b.handleBroadcastCore(ctx, mockBot, mocks.MessageUpdate(1, 1, "/broadcast system maintenance tonight"))

		require.Len(t, mockBot.MessagesForChat(100), 1)
		require.Len(t, mockBot.MessagesForChat(200), 1)
		require.Equal(t, "system maintenance tonight", mockBot.MessagesForChat(100)[0].Text)
		require.Contains(t, mockBot.LastSentMessage().Text, "2 delivered, 0 failed")
	})

	t.Run("one failing recipient does not stop the rest", func(t *testing.T) {
		b, _ := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()
		mockBot.SendMessageErrorForChat = map[int64]error{100: errTest}

		_, err := b.ledger.AddTransaction(ctx, 100, mustParseDecimal("1"), "")
		require.NoError(t, err)
		_, err = b.ledger.AddTransaction(ctx, 200, mustParseDecimal("1"), "")
		require.NoError(t, err)

		b.handleBroadcastCore(ctx, mockBot, mocks.MessageUpdate(1, 1, "/broadcast hello"))

		require.Empty(t, mockBot.MessagesForChat(100))
		require.Len(t, mockBot.MessagesForChat(200), 1)
		require.Contains(t, mockBot.LastSentMessage().Text, "1 delivered, 1 failed")
	})
}

func TestChunkMessage(t *testing.T) {
	t.Run("short message stays whole", func(t *testing.T) {
		chunks := chunkMessage("hello")
		require.Equal(t, []string{"hello"}, chunks)
	})

	t.Run("long message splits at the telegram limit", func(t *testing.T) {
		long := strings.Repeat("a", maxMessageLength+10)
		chunks := chunkMessage(long)
		require.Len(t, chunks, 2)
		require.Len(t, chunks[0], maxMessageLength)
		require.Len(t, chunks[1], 10)
		require.Equal(t, long, chunks[0]+chunks[1])
	})

	t.Run("splits are rune-safe", func(t *testing.T) {
		long := strings.Repeat("é", maxMessageLength+1)
		chunks := chunkMessage(long)
		require.Len(t, chunks, 2)
		require.Equal(t, maxMessageLength, len([]rune(chunks[0])))
		require.Equal(t, long, chunks[0]+chunks[1])
	})

	t.Run("exactly the limit stays whole", func(t *testing.T) {
		exact := strings.Repeat("a", maxMessageLength)
		require.Equal(t, []string{exact}, chunkMessage(exact))
	})
}

func TestBroadcastChunkedDelivery(t *testing.T) {
	ctx := context.Background()

	b, _ := setupTestBot(adminConfig())
	mockBot := mocks.NewMockBot()

	long := strings.Repeat("x", maxMessageLength+100)
	delivered, failed := b.broadcast(ctx, mockBot, []int64{100}, long)

	require.Equal(t, 1, delivered)
	require.Equal(t, 0, failed)
	msgs := mockBot.MessagesForChat(100)
	require.Len(t, msgs, 2)
	require.Equal(t, long, msgs[0].Text+msgs[1].Text)
}

func TestHandleClearCache(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin is refused", func(t *testing.T) {
		b, _ := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()

		b.handleClearCacheCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "/clearcache"))

		require.Contains(t, mockBot.LastSentMessage().Text, "Only admins")
	})

	t.Run("drops cached totals without touching storage", func(t *testing.T) {
		b, store := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()

		_, err := b.ledger.AddTransaction(ctx, 100, mustParseDecimal("100"), "")
		require.NoError(t, err)
		require.Equal(t, 1, b.ledger.CacheSize())

		b.handleClearCacheCore(ctx, mockBot, mocks.MessageUpdate(1, 1, "/clearcache"))

		require.Equal(t, 0, b.ledger.CacheSize())
		require.Len(t, store.txns, 1)
		require.Contains(t, mockBot.LastSentMessage().Text, "Cache cleared (1 totals dropped)")

		// Totals are rebuilt from storage on the next lookup.
		total, err := b.ledger.GetTotal(ctx, 100)
		require.NoError(t, err)
		require.Equal(t, "100", total.String())
	})
}

func TestHandleUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("non-admin is refused", func(t *testing.T) {
		b, _ := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()

		b.handleUsersCore(ctx, mockBot, mocks.MessageUpdate(100, 100, "/users"))

		require.Contains(t, mockBot.LastSentMessage().Text, "Only admins")
	})

	t.Run("lists users with roles", func(t *testing.T) {
		b, _ := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()

		_, err := b.ledger.AddTransaction(ctx, 1, mustParseDecimal("1"), "")
		require.NoError(t, err)
		_, err = b.ledger.AddTransaction(ctx, 100, mustParseDecimal("1"), "")
		require.NoError(t, err)

		b.handleUsersCore(ctx, mockBot, mocks.MessageUpdate(1, 1, "/users"))

		msg := mockBot.LastSentMessage()
		require.Contains(t, msg.Text, "Known Users</b> (2)")
		require.Contains(t, msg.Text, "admin")
		require.Contains(t, msg.Text, "user")
	})

	t.Run("empty store", func(t *testing.T) {
		b, _ := setupTestBot(adminConfig())
		mockBot := mocks.NewMockBot()

		b.handleUsersCore(ctx, mockBot, mocks.MessageUpdate(1, 1, "/users"))

		require.Contains(t, mockBot.LastSentMessage().Text, "No users yet")
	})
}
