// Package models defines the domain entities for the transaction ledger.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned to transactions recorded without an explicit category.
const DefaultCategory = "general"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a chat known to the bot. Users are created on first
// observed message and never deleted.
type User struct {
	ChatID    int64
	Role      string
	CreatedAt time.Time
}

// Transaction is a single immutable ledger entry. Amount is signed:
// positive records a credit, negative a debit.
type Transaction struct {
	ID        int
	ChatID    int64
	Amount    decimal.Decimal
	Date      time.Time
	Category  string
	CreatedAt time.Time
}

// DateAggregate is the summed amount across transactions for one calendar day.
type DateAggregate struct {
	Date  time.Time
	Total decimal.Decimal
}

// TrendModel is a persisted linear trend fitted over date aggregates.
// Models are versioned by FittedAt; the most recent row is authoritative.
type TrendModel struct {
	ID        int
	Slope     float64
	Intercept float64
	FittedAt  time.Time
}

// PredictAt evaluates the trend at the given calendar day.
func (m *TrendModel) PredictAt(date time.Time) decimal.Decimal {
	return decimal.NewFromFloat(m.Intercept + m.Slope*DayOrdinal(date)).Round(2)
}

// DayOrdinal maps a calendar day to a day count since the Unix epoch,
// the x-axis used for trend fitting. Time-of-day is discarded.
func DayOrdinal(date time.Time) float64 {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return float64(d.Unix()) / 86400.0
}
