package bot

import (
	"fmt"
	"time"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/billkeeper/internal/models"
)

var monthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// GenerateMonthlyChart creates a bar chart of bill totals per month for the
// given year. Returns PNG image as bytes.
func GenerateMonthlyChart(obligations []models.Obligation, year int) ([]byte, error) {
	if len(obligations) == 0 {
		return nil, fmt.Errorf("no bills to chart")
	}

	totals := aggregateByMonth(obligations, year)

	values := make([]float64, 12)
	for month, total := range totals {
		values[month-1] = total.InexactFloat64()
	}

	p, err := charts.BarRender(
		[][]float64{values},
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Bills by Month - %d", year),
		}),
		charts.XAxisLabelsOptionFunc(monthLabels),
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

// aggregateByMonth groups obligations due in year and returns per-month totals
// keyed by month number.
func aggregateByMonth(obligations []models.Obligation, year int) map[int]decimal.Decimal {
	totals := make(map[int]decimal.Decimal)

	for i := range obligations {
		o := &obligations[i]
		if o.DueDate == nil || o.DueDate.Year() != year {
			continue
		}

		month := int(o.DueDate.Month())
		if existing, ok := totals[month]; ok {
			totals[month] = existing.Add(o.Amount)
		} else {
			totals[month] = o.Amount
		}
	}

	return totals
}

// generateChartFilename creates a filename like "bills_2026.png".
func generateChartFilename(year int) string {
	return fmt.Sprintf("bills_%d.png", year)
}

// yearDateRange returns the start and end bounds of a calendar year in loc.
func yearDateRange(year int, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0)
}
