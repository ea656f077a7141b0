package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/tally-bot/internal/database"
	"gitlab.com/yelinaung/tally-bot/internal/models"
)

// TransactionRepository handles transaction database operations.
type TransactionRepository struct {
	db database.PGXDB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db database.PGXDB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Insert appends one immutable transaction row. The date column keeps
// calendar-day granularity; time-of-day is discarded by the DATE cast.
func (r *TransactionRepository) Insert(ctx context.Context, txn *models.Transaction) error {
	if txn.Category == "" {
		txn.Category = models.DefaultCategory
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (chat_id, amount, date, category)
		VALUES ($1, $2, $3::date, $4)
		RETURNING id, date, created_at
	`, txn.ChatID, txn.Amount, txn.Date, txn.Category,
	).Scan(&txn.ID, &txn.Date, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// SumForChat returns the running total for one chat. A chat with no
// transactions sums to zero, not an error.
func (r *TransactionRepository) SumForChat(ctx context.Context, chatID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE chat_id = $1
	`, chatID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return total, nil
}

// ListForChat retrieves all transactions for a chat in insertion order.
func (r *TransactionRepository) ListForChat(ctx context.Context, chatID int64) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, chat_id, amount, date, category, created_at
		FROM transactions
		WHERE chat_id = $1
		ORDER BY id
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// DeleteForChat removes all transaction rows for a chat. Idempotent.
func (r *TransactionRepository) DeleteForChat(ctx context.Context, chatID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

// AggregateByDate returns the per-day totals across all chats, ordered by
// date ascending. This is the feed for trend fitting.
func (r *TransactionRepository) AggregateByDate(ctx context.Context) ([]models.DateAggregate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date, SUM(amount) FROM transactions GROUP BY date ORDER BY date
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by date: %w", err)
	}
	defer rows.Close()

	return scanAggregates(rows)
}

// AggregateByDateForChat returns the per-day totals for one chat, ordered by
// date ascending. This is the feed for the history chart.
func (r *TransactionRepository) AggregateByDateForChat(ctx context.Context, chatID int64) ([]models.DateAggregate, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date, SUM(amount) FROM transactions
		WHERE chat_id = $1
		GROUP BY date ORDER BY date
	`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate by date for chat: %w", err)
	}
	defer rows.Close()

	return scanAggregates(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTransactions(rows rowScanner) ([]models.Transaction, error) {
	var txns []models.Transaction
	for rows.Next() {
		var txn models.Transaction
		if err := rows.Scan(
			&txn.ID, &txn.ChatID, &txn.Amount, &txn.Date, &txn.Category, &txn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

func scanAggregates(rows rowScanner) ([]models.DateAggregate, error) {
	var aggs []models.DateAggregate
	for rows.Next() {
		var agg models.DateAggregate
		if err := rows.Scan(&agg.Date, &agg.Total); err != nil {
			return nil, fmt.Errorf("failed to scan date aggregate: %w", err)
		}
		aggs = append(aggs, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating date aggregates: %w", err)
	}
	return aggs, nil
}
