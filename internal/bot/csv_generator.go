package bot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gitlab.com/yelinaung/tally-bot/internal/models"
)

// GenerateTransactionsCSV generates a CSV export from a list of transactions.
func GenerateTransactionsCSV(txns []models.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	// Write header
	header := []string{"ID", "Amount", "Date", "Category", "Chat ID"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write transaction rows
	for i := range txns {
		row := []string{
			strconv.Itoa(txns[i].ID),
			txns[i].Amount.StringFixed(2),
			txns[i].Date.Format(time.DateOnly),
			txns[i].Category,
			strconv.FormatInt(txns[i].ChatID, 10),
		}

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// generateExportFilename creates a per-chat filename like "transactions_42_2026-08-31.csv".
func generateExportFilename(chatID int64) string {
	return fmt.Sprintf("transactions_%d_%s.csv", chatID, time.Now().Format(time.DateOnly))
}
