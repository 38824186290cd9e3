package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFillMissingDates(t *testing.T) {
	rng := NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	)

	points := []TimeSeriesPoint{
		{Date: "2024-03-02", Metrics: NormalizedMetrics{Spend: 10}},
		{Date: "2024-03-04", Metrics: NormalizedMetrics{Spend: 20}},
	}

	filled := FillMissingDates(points, rng)

	assert.Len(t, filled, 5)
	assert.Equal(t, "2024-03-01", filled[0].Date)
	assert.Equal(t, 0.0, filled[0].Metrics.Spend)
	assert.Equal(t, "2024-03-02", filled[1].Date)
	assert.Equal(t, 10.0, filled[1].Metrics.Spend)
	assert.Equal(t, "2024-03-03", filled[2].Date)
	assert.Equal(t, 0.0, filled[2].Metrics.Spend)
	assert.Equal(t, "2024-03-04", filled[3].Date)
	assert.Equal(t, 20.0, filled[3].Metrics.Spend)
	assert.Equal(t, "2024-03-05", filled[4].Date)
}

func TestSortTimeSeries(t *testing.T) {
	points := []TimeSeriesPoint{
		{Date: "2024-03-05"},
		{Date: "2024-02-28"},
		{Date: "2024-03-01"},
	}

	SortTimeSeries(points)

	assert.Equal(t, "2024-02-28", points[0].Date)
	assert.Equal(t, "2024-03-01", points[1].Date)
	assert.Equal(t, "2024-03-05", points[2].Date)
}
