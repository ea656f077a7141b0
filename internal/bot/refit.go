package bot

import (
	"context"
	"errors"
	"time"

	"gitlab.com/yelinaung/tally-bot/internal/forecast"
	"gitlab.com/yelinaung/tally-bot/internal/logger"
)

// RefitTimeout is the maximum time a single model refit can take.
const RefitTimeout = 2 * time.Minute

// startRefitLoop periodically refits the forecast model against the latest
// per-day aggregates. One fit runs immediately so a fresh process serves
// predictions without waiting a full interval.
func (b *Bot) startRefitLoop(ctx context.Context) {
	logger.Log.Info().
		Dur("interval", b.cfg.RefitInterval).
		Msg("Forecast refit loop started")

	ticker := time.NewTicker(b.cfg.RefitInterval)
	defer ticker.Stop()

	b.refitOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Forecast refit loop stopped")
			return
		case <-ticker.C:
			b.refitOnce(ctx)
		}
	}
}

// refitOnce runs one model fit. Too little data is expected early on and is
// logged at info level, not as an error.
func (b *Bot) refitOnce(ctx context.Context) {
	fitCtx, cancel := context.WithTimeout(ctx, RefitTimeout)
	defer cancel()

	m, err := b.forecaster.Fit(fitCtx)
	if err != nil {
		if errors.Is(err, forecast.ErrNotEnoughData) {
			logger.Log.Info().Msg("Not enough data to fit forecast model yet")
			return
		}
		logger.Log.Error().Err(err).Msg("Forecast refit failed")
		return
	}

	logger.Log.Info().
		Float64("slope", m.Slope).
		Float64("intercept", m.Intercept).
		Time("fitted_at", m.FittedAt).
		Msg("Forecast model refitted")
}
