//go:build ignore
// +build ignore

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/tally-bot/internal/bot"
	"gitlab.com/yelinaung/tally-bot/internal/models"
)

func main() {
	day := func(offset int) time.Time {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	aggs := []models.DateAggregate{
		{Date: day(0), Total: decimal.NewFromFloat(150.50)},
		{Date: day(1), Total: decimal.NewFromFloat(95.00)},
		{Date: day(2), Total: decimal.NewFromFloat(-40.25)},
		{Date: day(3), Total: decimal.NewFromFloat(210.00)},
		{Date: day(4), Total: decimal.NewFromFloat(60.75)},
	}

	chartData, err := bot.GenerateHistoryChart(aggs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile("graph.png", chartData, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✓ Created graph.png - Example daily totals chart")
}
