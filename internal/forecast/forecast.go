// Package forecast fits and serves a linear trend over the ledger's
// per-date aggregates.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/tally-bot/internal/models"
	"gitlab.com/yelinaung/tally-bot/internal/repository"
	"gonum.org/v1/gonum/stat"
)

// MinDistinctDates is the minimum number of distinct calendar days required
// before a trend can be fitted.
const MinDistinctDates = 2

// keptModels is how many superseded model rows survive a refit.
const keptModels = 5

var (
	// ErrNotEnoughData means fewer distinct dates exist than a fit needs.
	ErrNotEnoughData = errors.New("not enough data to fit a trend")
	// ErrModelUnavailable means no fit has completed yet.
	ErrModelUnavailable = errors.New("no trend model available")
)

// AggregateSource supplies the ordered, deduplicated-by-date series the fit
// consumes. Implemented by the ledger.
type AggregateSource interface {
	DateAggregates(ctx context.Context) ([]models.DateAggregate, error)
}

// ModelStore persists fitted models. Implemented by repository.ForecastRepository.
type ModelStore interface {
	Save(ctx context.Context, m *models.TrendModel) error
	Latest(ctx context.Context) (*models.TrendModel, error)
	PruneOlderThan(ctx context.Context, keep int) error
}

// Forecaster fits a linear trend over date aggregates and predicts future
// totals from the latest persisted model.
type Forecaster struct {
	source AggregateSource
	store  ModelStore
}

// New creates a Forecaster.
func New(source AggregateSource, store ModelStore) *Forecaster {
	return &Forecaster{source: source, store: store}
}

// Fit reads the global date aggregates and persists a freshly fitted model.
// With fewer than MinDistinctDates distinct days it returns ErrNotEnoughData
// and writes nothing, leaving any previous model in place.
func (f *Forecaster) Fit(ctx context.Context) (*models.TrendModel, error) {
	aggs, err := f.source.DateAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	if len(aggs) < MinDistinctDates {
		return nil, ErrNotEnoughData
	}

	xs := make([]float64, len(aggs))
	ys := make([]float64, len(aggs))
	for i, agg := range aggs {
		xs[i] = models.DayOrdinal(agg.Date)
		ys[i] = agg.Total.InexactFloat64()
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	model := &models.TrendModel{Slope: slope, Intercept: intercept}
	if err := f.store.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	if err := f.store.PruneOlderThan(ctx, keptModels); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}
	return model, nil
}

// Predict returns the predicted total amount for the given calendar day
// using the latest persisted model. Before any successful fit it returns
// ErrModelUnavailable.
func (f *Forecaster) Predict(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	model, err := f.store.Latest(ctx)
	if errors.Is(err, repository.ErrNoModel) {
		return decimal.Zero, ErrModelUnavailable
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("predict: %w", err)
	}
	return model.PredictAt(date), nil
}
