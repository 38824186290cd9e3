package domain

import (
	"sort"
	"time"
)

// TimeSeriesPoint é um ponto diário da série temporal. Date usa o formato
// YYYY-MM-DD, o que torna a ordenação lexicográfica equivalente à cronológica.
type TimeSeriesPoint struct {
	Date    string            `json:"date"`
	Metrics NormalizedMetrics `json:"metrics"`
}

// FillMissingDates garante um ponto por dia de calendário no período,
// preenchendo lacunas com métricas zeradas
func FillMissingDates(points []TimeSeriesPoint, rng DateRange) []TimeSeriesPoint {
	byDate := make(map[string]TimeSeriesPoint, len(points))
	for _, p := range points {
		byDate[p.Date] = p
	}

	filled := make([]TimeSeriesPoint, 0, rng.Days())
	for day := rng.Start.Truncate(24 * time.Hour); !day.After(rng.End); day = day.AddDate(0, 0, 1) {
		date := day.Format(time.DateOnly)
		if p, ok := byDate[date]; ok {
			filled = append(filled, p)
			continue
		}
		filled = append(filled, TimeSeriesPoint{
			Date:    date,
			Metrics: NormalizedMetrics{DateRange: DateRange{Start: day, End: day}}.WithDerived(),
		})
	}

	return filled
}

// SortTimeSeries ordena os pontos por data crescente
func SortTimeSeries(points []TimeSeriesPoint) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
}
