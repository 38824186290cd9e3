package aggregating

import (
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/utils"
)

// Rollups são os totais agregados de um lote bem-sucedido. Blended combina as
// plataformas de anúncio; quando há receita Shopify ela substitui a receita
// atribuída pelos pixels para evitar dupla contagem.
type Rollups struct {
	ByPlatform map[domain.Platform]domain.NormalizedMetrics
	Blended    domain.NormalizedMetrics

	// MER é o gasto total em anúncios sobre a receita total, em percentual
	MER float64

	TimeSeries []domain.TimeSeriesPoint

	// PreviousPeriod só é preenchido quando ao menos um resumo trouxe a
	// comparação com o período anterior
	PreviousPeriod *domain.NormalizedMetrics

	// Ecommerce agrega as lojas Shopify do lote, quando houver
	Ecommerce *domain.NormalizedEcommerceMetrics
}

func (s *service) BuildRollups(result *BatchResult) *Rollups {
	rollups := &Rollups{
		ByPlatform: make(map[domain.Platform]domain.NormalizedMetrics),
		TimeSeries: make([]domain.TimeSeriesPoint, 0),
	}

	platformTotals := make(map[domain.Platform]domain.NormalizedMetrics)
	adSpendTotal := domain.NormalizedMetrics{DateRange: result.Range}
	previousTotal := domain.NormalizedMetrics{DateRange: result.Range.PreviousPeriod()}
	hasPrevious := false

	var shopifyRevenue float64
	var hasShopify bool
	ecommerceTotal := domain.NormalizedEcommerceMetrics{DateRange: result.Range}

	adSeriesByDate := make(map[string]domain.NormalizedMetrics)
	shopifyRevenueByDate := make(map[string]float64)

	for _, fetch := range result.Successes {
		summary := fetch.Summary
		platform := fetch.Account.Platform

		platformTotals[platform] = platformTotals[platform].Add(summary.Metrics)

		if summary.Ecommerce != nil {
			hasShopify = true
			shopifyRevenue += summary.Ecommerce.Metrics.Revenue
			ecommerceTotal.Revenue += summary.Ecommerce.Metrics.Revenue
			ecommerceTotal.Orders += summary.Ecommerce.Metrics.Orders
			ecommerceTotal.NewCustomers += summary.Ecommerce.Metrics.NewCustomers
			ecommerceTotal.ReturningCustomers += summary.Ecommerce.Metrics.ReturningCustomers

			for _, point := range summary.TimeSeries {
				shopifyRevenueByDate[point.Date] += point.Metrics.Revenue
			}
		} else {
			adSpendTotal = adSpendTotal.Add(summary.Metrics)

			for _, point := range summary.TimeSeries {
				adSeriesByDate[point.Date] = adSeriesByDate[point.Date].Add(point.Metrics)
			}
		}

		if summary.PreviousPeriodMetrics != nil {
			hasPrevious = true
			previousTotal = previousTotal.Add(*summary.PreviousPeriodMetrics)
		}
	}

	// Plataformas que somaram zero em gasto, conversões e receita ficam fora
	for platform, total := range platformTotals {
		if total.Spend == 0 && total.Conversions == 0 && total.Revenue == 0 {
			continue
		}
		total.DateRange = result.Range
		rollups.ByPlatform[platform] = total.WithDerived()
	}

	blended := adSpendTotal
	if hasShopify {
		// Receita real da loja no lugar da receita atribuída pelos pixels
		blended.Revenue = shopifyRevenue
		rollups.Ecommerce = ptr(ecommerceTotal.WithDerived())
	}
	blended.DateRange = result.Range
	rollups.Blended = blended.WithDerived()
	rollups.MER = utils.SafeDivide(rollups.Blended.Spend, rollups.Blended.Revenue) * 100

	if hasPrevious {
		rollups.PreviousPeriod = ptr(previousTotal.WithDerived())
	}

	// Nos dias em que a loja registrou receita, ela substitui a atribuída
	for date, revenue := range shopifyRevenueByDate {
		metrics := adSeriesByDate[date]
		metrics.Revenue = revenue
		adSeriesByDate[date] = metrics
	}

	// Datas em YYYY-MM-DD ordenam lexicograficamente em ordem cronológica
	for date, metrics := range adSeriesByDate {
		metrics.DateRange = result.Range
		rollups.TimeSeries = append(rollups.TimeSeries, domain.TimeSeriesPoint{
			Date:    date,
			Metrics: metrics.WithDerived(),
		})
	}
	domain.SortTimeSeries(rollups.TimeSeries)

	return rollups
}

func ptr[T any](v T) *T {
	return &v
}
