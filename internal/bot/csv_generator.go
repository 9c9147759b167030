package bot

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"gitlab.com/yelinaung/billkeeper/internal/models"
)

// GenerateObligationsCSV generates a CSV file from a list of bills.
func GenerateObligationsCSV(obligations []models.Obligation) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"ID", "Name", "Amount", "Currency", "Category", "Due Date", "Due Time", "Status", "Created"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range obligations {
		o := &obligations[i]

		dueDate := ""
		if o.DueDate != nil {
			dueDate = o.DueDate.Format("2006-01-02")
		}

		row := []string{
			strconv.Itoa(o.ID),
			o.Name,
			o.Amount.StringFixed(2),
			models.DefaultCurrency,
			o.Category,
			dueDate,
			o.DueTime,
			o.Status,
			o.CreatedAt.Format("2006-01-02 15:04:05"),
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

// generateExportFilename creates a descriptive filename for the CSV export.
func generateExportFilename(now time.Time) string {
	return fmt.Sprintf("bills_%s.csv", now.Format("2006-01-02"))
}
