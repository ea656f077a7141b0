package bot

import (
	"fmt"
	"time"

	"github.com/go-analyze/charts"
	"gitlab.com/yelinaung/tally-bot/internal/models"
)

// GenerateHistoryChart renders the per-day totals of one chat as a line
// chart. Returns PNG image as bytes.
func GenerateHistoryChart(aggs []models.DateAggregate) ([]byte, error) {
	if len(aggs) == 0 {
		return nil, fmt.Errorf("no transactions to chart")
	}

	labels := make([]string, len(aggs))
	values := make([]float64, len(aggs))
	for i, agg := range aggs {
		labels[i] = agg.Date.Format(time.DateOnly)
		values[i] = agg.Total.InexactFloat64()
	}

	p, err := charts.LineRender(
		[][]float64{values},
		charts.TitleOptionFunc(charts.TitleOption{
			Text: "Transaction History",
		}),
		charts.XAxisLabelsOptionFunc(labels),
		charts.LegendLabelsOptionFunc([]string{"Daily total"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// generateChartFilename creates a per-chat filename like "history_42_2026-08-31.png".
func generateChartFilename(chatID int64) string {
	return fmt.Sprintf("history_%d_%s.png", chatID, time.Now().Format(time.DateOnly))
}
