package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/tally-bot/internal/database"
	"gitlab.com/yelinaung/tally-bot/internal/models"
)

// ErrNoModel is returned by Latest before any model has been persisted.
var ErrNoModel = errors.New("no trend model persisted")

// ForecastRepository persists fitted trend models.
type ForecastRepository struct {
	db database.PGXDB
}

// NewForecastRepository creates a new ForecastRepository.
func NewForecastRepository(db database.PGXDB) *ForecastRepository {
	return &ForecastRepository{db: db}
}

// Save persists a newly fitted model as a fresh row. Older rows are kept so
// a load concurrent with a fit always sees a completely written model.
func (r *ForecastRepository) Save(ctx context.Context, m *models.TrendModel) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO forecast_models (slope, intercept)
		VALUES ($1, $2)
		RETURNING id, fitted_at
	`, m.Slope, m.Intercept).Scan(&m.ID, &m.FittedAt)
	if err != nil {
		return fmt.Errorf("failed to save trend model: %w", err)
	}
	return nil
}

// Latest loads the most recently fitted model. Returns ErrNoModel when no
// fit has completed yet.
func (r *ForecastRepository) Latest(ctx context.Context) (*models.TrendModel, error) {
	var m models.TrendModel
	err := r.db.QueryRow(ctx, `
		SELECT id, slope, intercept, fitted_at
		FROM forecast_models
		ORDER BY fitted_at DESC, id DESC
		LIMIT 1
	`).Scan(&m.ID, &m.Slope, &m.Intercept, &m.FittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoModel
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load trend model: %w", err)
	}
	return &m, nil
}

// PruneOlderThan deletes superseded models, keeping the newest keep rows.
func (r *ForecastRepository) PruneOlderThan(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := r.db.Exec(ctx, `
		DELETE FROM forecast_models
		WHERE id NOT IN (
			SELECT id FROM forecast_models ORDER BY fitted_at DESC, id DESC LIMIT $1
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune trend models: %w", err)
	}
	return nil
}
