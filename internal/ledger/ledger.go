package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/tally-bot/internal/models"
)

// UserStore is the slice of user storage the ledger needs.
type UserStore interface {
	EnsureUser(ctx context.Context, chatID int64, role string) error
	ListChatIDs(ctx context.Context) ([]int64, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// TransactionStore is the slice of transaction storage the ledger needs.
type TransactionStore interface {
	Insert(ctx context.Context, txn *models.Transaction) error
	SumForChat(ctx context.Context, chatID int64) (decimal.Decimal, error)
	ListForChat(ctx context.Context, chatID int64) ([]models.Transaction, error)
	DeleteForChat(ctx context.Context, chatID int64) error
	AggregateByDate(ctx context.Context) ([]models.DateAggregate, error)
	AggregateByDateForChat(ctx context.Context, chatID int64) ([]models.DateAggregate, error)
}

// RoleFunc decides the role a chat gets when first seen.
type RoleFunc func(chatID int64) string

// Ledger owns transaction bookkeeping: every write path keeps the totals
// cache consistent with storage by recomputing the sum after the write, not
// by incrementing. Operations on the same chat serialize through a per-chat
// mutex so concurrent adds cannot interleave the read-modify-write of the
// cache entry.
type Ledger struct {
	users UserStore
	txns  TransactionStore
	cache *TotalsCache
	role  RoleFunc

	mu        sync.Mutex
	chatLocks map[int64]*sync.Mutex
}

// New creates a Ledger over the given stores. roleFn may be nil, in which
// case every chat gets the default user role.
func New(users UserStore, txns TransactionStore, cache *TotalsCache, roleFn RoleFunc) *Ledger {
	if roleFn == nil {
		roleFn = func(int64) string { return models.RoleUser }
	}
	return &Ledger{
		users:     users,
		txns:      txns,
		cache:     cache,
		role:      roleFn,
		chatLocks: make(map[int64]*sync.Mutex),
	}
}

// lockChat serializes ledger operations for one chat. The returned func
// releases the lock.
func (l *Ledger) lockChat(chatID int64) func() {
	l.mu.Lock()
	lock, ok := l.chatLocks[chatID]
	if !ok {
		lock = &sync.Mutex{}
		l.chatLocks[chatID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// AddTransaction records one signed amount for a chat, dated today, and
// returns the new running total. The user row is created on first contact.
// The total is recomputed from storage after the insert so the cache stays
// consistent even when a prior write bypassed it; on storage failure the
// cache is left untouched.
func (l *Ledger) AddTransaction(ctx context.Context, chatID int64, amount decimal.Decimal, category string) (decimal.Decimal, error) {
	unlock := l.lockChat(chatID)
	defer unlock()

	if err := l.users.EnsureUser(ctx, chatID, l.role(chatID)); err != nil {
		return decimal.Zero, fmt.Errorf("add transaction: %w", err)
	}

	txn := &models.Transaction{
		ChatID:   chatID,
		Amount:   amount,
		Date:     time.Now(),
		Category: category,
	}
	if err := l.txns.Insert(ctx, txn); err != nil {
		return decimal.Zero, fmt.Errorf("add transaction: %w", err)
	}

	total, err := l.txns.SumForChat(ctx, chatID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("add transaction: %w", err)
	}
	l.cache.Set(chatID, total)
	return total, nil
}

// GetTotal returns the chat's running total, from cache when present. A
// chat with no transactions totals zero, never an error.
func (l *Ledger) GetTotal(ctx context.Context, chatID int64) (decimal.Decimal, error) {
	if total, ok := l.cache.Get(chatID); ok {
		return total, nil
	}

	unlock := l.lockChat(chatID)
	defer unlock()

	// Re-check: a concurrent write may have populated it while we waited.
	if total, ok := l.cache.Get(chatID); ok {
		return total, nil
	}

	total, err := l.txns.SumForChat(ctx, chatID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get total: %w", err)
	}
	l.cache.Set(chatID, total)
	return total, nil
}

// ResetForUser deletes every transaction for a chat and pins the cached
// total to zero. Setting zero rather than evicting avoids a stale nonzero
// value surviving a miss-then-hit race before the delete is visible.
func (l *Ledger) ResetForUser(ctx context.Context, chatID int64) error {
	unlock := l.lockChat(chatID)
	defer unlock()

	if err := l.txns.DeleteForChat(ctx, chatID); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	l.cache.Set(chatID, decimal.Zero)
	return nil
}

// ClearCache drops all cached totals. Storage is untouched; subsequent
// lookups rebuild lazily.
func (l *Ledger) ClearCache() {
	l.cache.Clear()
}

// ListTransactions returns the chat's transactions in insertion order.
func (l *Ledger) ListTransactions(ctx context.Context, chatID int64) ([]models.Transaction, error) {
	txns, err := l.txns.ListForChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// DateAggregates returns the per-day totals across all chats, ordered by
// date ascending.
func (l *Ledger) DateAggregates(ctx context.Context) ([]models.DateAggregate, error) {
	aggs, err := l.txns.AggregateByDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("date aggregates: %w", err)
	}
	return aggs, nil
}

// ChatDateAggregates returns one chat's per-day totals, ordered by date
// ascending.
func (l *Ledger) ChatDateAggregates(ctx context.Context, chatID int64) ([]models.DateAggregate, error) {
	aggs, err := l.txns.AggregateByDateForChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("chat date aggregates: %w", err)
	}
	return aggs, nil
}

// ChatIDs returns every known chat, the broadcast recipient list.
func (l *Ledger) ChatIDs(ctx context.Context) ([]int64, error) {
	ids, err := l.users.ListChatIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("chat ids: %w", err)
	}
	return ids, nil
}

// Users returns every known user with its role.
func (l *Ledger) Users(ctx context.Context) ([]models.User, error) {
	users, err := l.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CacheSize reports how many totals are currently cached.
func (l *Ledger) CacheSize() int {
	return l.cache.Len()
}
