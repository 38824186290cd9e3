package composing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/internal/usecases/aggregating"
	"github.com/vfg2006/prism-reports-api/pkg/utils"
)

const (
	campaignBreakdownLimit = 10
	topPerformersLimit     = 5
)

// Cada builder recebe o resumo de uma conta e devolve nil quando não há dados
// suficientes para o slide; slides nulos são simplesmente omitidos do deck

// buildSlide despacha a seleção para o builder do tipo; título e resumo
// executivo ficam fora do bloco por conta e seleções desconhecidas são
// ignoradas
func buildSlide(slideType domain.SlideType, fetch aggregating.AccountFetch) domain.SlideData {
	switch slideType {
	case domain.SlideKPIOverview:
		return buildKPIOverviewSlide(fetch)
	case domain.SlideCampaignBreakdown:
		return buildCampaignBreakdownSlide(fetch)
	case domain.SlideTrendAnalysis:
		return buildTrendAnalysisSlide(fetch)
	case domain.SlideTopPerformers:
		return buildTopPerformersSlide(fetch)
	case domain.SlideAudienceInsights:
		return buildAudienceInsightsSlide(fetch)
	case domain.SlideBudgetAllocation:
		return buildBudgetAllocationSlide(fetch)
	case domain.SlideComparison:
		return buildComparisonSlide(fetch)
	}
	return nil
}

func buildTitleSlide(title, clientName string, rng domain.DateRange) domain.SlideData {
	return &domain.TitleSlide{
		Title:      title,
		Subtitle:   "Performance Overview",
		DateRange:  rng.Label(),
		ClientName: clientName,
	}
}

func buildKPIOverviewSlide(fetch aggregating.AccountFetch) domain.SlideData {
	metrics := fetch.Summary.Metrics
	if metrics.Spend == 0 && metrics.Revenue == 0 && metrics.Impressions == 0 {
		return nil
	}

	kpis := []domain.KPI{
		{Label: "Spend", Value: FormatCurrency(metrics.Spend)},
		{Label: "Revenue", Value: FormatCurrency(metrics.Revenue)},
		{Label: "ROAS", Value: FormatRoas(metrics.ROAS)},
		{Label: "Conversions", Value: FormatCount(int64(metrics.Conversions))},
		{Label: "CTR", Value: FormatPercent(metrics.CTR)},
	}

	if fetch.Summary.PreviousPeriodMetrics != nil {
		previous := *fetch.Summary.PreviousPeriodMetrics
		kpis[0].Delta = FormatDelta(metrics.Spend, previous.Spend)
		kpis[0].Positive = metrics.Spend <= previous.Spend

		kpis[1].Delta = FormatDelta(metrics.Revenue, previous.Revenue)
		kpis[1].Positive = metrics.Revenue >= previous.Revenue

		kpis[2].Delta = FormatDelta(metrics.ROAS, previous.ROAS)
		kpis[2].Positive = metrics.ROAS >= previous.ROAS

		kpis[3].Delta = FormatDelta(metrics.Conversions, previous.Conversions)
		kpis[3].Positive = metrics.Conversions >= previous.Conversions

		kpis[4].Delta = FormatDelta(metrics.CTR, previous.CTR)
		kpis[4].Positive = metrics.CTR >= previous.CTR
	}

	return &domain.KPIOverviewSlide{
		AccountName: fetch.Account.Name,
		KPIs:        kpis,
	}
}

// topCampaignsBySpend ordena as campanhas da conta por gasto decrescente e
// trunca no limite; o empate preserva a ordem de chegada
func topCampaignsBySpend(fetch aggregating.AccountFetch, limit int) []*domain.NormalizedCampaign {
	campaigns := make([]*domain.NormalizedCampaign, len(fetch.Summary.Campaigns))
	copy(campaigns, fetch.Summary.Campaigns)

	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaigns[i].Metrics.Spend > campaigns[j].Metrics.Spend
	})

	if len(campaigns) > limit {
		campaigns = campaigns[:limit]
	}
	return campaigns
}

func buildCampaignBreakdownSlide(fetch aggregating.AccountFetch) domain.SlideData {
	campaigns := topCampaignsBySpend(fetch, campaignBreakdownLimit)
	if len(campaigns) == 0 {
		return nil
	}

	rows := make([]domain.CampaignRow, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, domain.CampaignRow{
			Name:        c.Name,
			Status:      string(c.Status),
			Spend:       FormatCurrency(c.Metrics.Spend),
			Impressions: FormatCount(c.Metrics.Impressions),
			Clicks:      FormatCount(c.Metrics.Clicks),
			Conversions: FormatCount(int64(c.Metrics.Conversions)),
			ROAS:        FormatRoas(c.Metrics.ROAS),
		})
	}

	return &domain.CampaignBreakdownSlide{
		AccountName: fetch.Account.Name,
		Rows:        rows,
	}
}

func buildTrendAnalysisSlide(fetch aggregating.AccountFetch) domain.SlideData {
	series := fetch.Summary.TimeSeries
	if len(series) == 0 {
		return nil
	}

	points := make([]domain.TrendPoint, 0, len(series))
	for _, p := range series {
		points = append(points, domain.TrendPoint{
			Date:    p.Date,
			Spend:   FormatCurrency(p.Metrics.Spend),
			Revenue: FormatCurrency(p.Metrics.Revenue),
		})
	}

	return &domain.TrendAnalysisSlide{
		AccountName: fetch.Account.Name,
		Points:      points,
	}
}

// buildTopPerformersSlide destaca as campanhas da conta com mais conversões
func buildTopPerformersSlide(fetch aggregating.AccountFetch) domain.SlideData {
	if len(fetch.Summary.Campaigns) == 0 {
		return nil
	}

	campaigns := make([]*domain.NormalizedCampaign, len(fetch.Summary.Campaigns))
	copy(campaigns, fetch.Summary.Campaigns)

	sort.SliceStable(campaigns, func(i, j int) bool {
		return campaigns[i].Metrics.Conversions > campaigns[j].Metrics.Conversions
	})

	if len(campaigns) > topPerformersLimit {
		campaigns = campaigns[:topPerformersLimit]
	}

	items := make([]domain.PerformerItem, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, domain.PerformerItem{
			Name:        c.Name,
			Conversions: FormatCount(int64(c.Metrics.Conversions)),
			Spend:       FormatCurrency(c.Metrics.Spend),
			CPA:         FormatCurrency(c.Metrics.CPA),
			ROAS:        FormatRoas(c.Metrics.ROAS),
		})
	}

	return &domain.TopPerformersSlide{
		AccountName: fetch.Account.Name,
		Items:       items,
	}
}

func buildAudienceInsightsSlide(fetch aggregating.AccountFetch) domain.SlideData {
	if len(fetch.Summary.Breakdowns) == 0 {
		return nil
	}

	groups := make([]domain.AudienceBreakdownGroup, 0, len(fetch.Summary.Breakdowns))
	for _, breakdown := range fetch.Summary.Breakdowns {
		segments := make([]domain.AudienceSegmentRow, 0, len(breakdown.Segments))
		for _, segment := range breakdown.Segments {
			metrics := segment.Metrics.WithDerived()
			segments = append(segments, domain.AudienceSegmentRow{
				Label:       segment.Label,
				Spend:       FormatCurrency(metrics.Spend),
				Conversions: FormatCount(int64(metrics.Conversions)),
				CTR:         FormatPercent(metrics.CTR),
			})
		}

		groups = append(groups, domain.AudienceBreakdownGroup{
			Dimension: string(breakdown.Dimension),
			Segments:  segments,
		})
	}

	return &domain.AudienceInsightsSlide{
		AccountName: fetch.Account.Name,
		Groups:      groups,
	}
}

// buildBudgetAllocationSlide distribui o gasto entre as maiores campanhas da
// conta; os percentuais somam 100 sobre o conjunto exibido e Percentage fica
// numérico porque o renderizador desenha o gráfico de pizza com ele
func buildBudgetAllocationSlide(fetch aggregating.AccountFetch) domain.SlideData {
	campaigns := topCampaignsBySpend(fetch, campaignBreakdownLimit)

	var totalSpend float64
	for _, c := range campaigns {
		totalSpend += c.Metrics.Spend
	}
	if totalSpend == 0 {
		return nil
	}

	items := make([]domain.AllocationItem, 0, len(campaigns))
	for _, c := range campaigns {
		if c.Metrics.Spend == 0 {
			continue
		}
		percentage := utils.RoundWithTwoDecimalPlace(c.Metrics.Spend / totalSpend * 100)
		items = append(items, domain.AllocationItem{
			Name:       c.Name,
			Spend:      FormatCurrency(c.Metrics.Spend),
			Percentage: percentage,
			Label:      fmt.Sprintf("%.1f%%", percentage),
		})
	}

	return &domain.BudgetAllocationSlide{
		AccountName: fetch.Account.Name,
		Items:       items,
	}
}

// buildComparisonSlide compara o período atual da conta com o anterior; sem
// métricas do período anterior o slide é omitido. O rótulo do período anterior
// é derivado aritmeticamente do comprimento do período atual.
func buildComparisonSlide(fetch aggregating.AccountFetch) domain.SlideData {
	if fetch.Summary.PreviousPeriodMetrics == nil {
		return nil
	}

	current := fetch.Summary.Metrics
	previous := *fetch.Summary.PreviousPeriodMetrics

	rows := []domain.ComparisonRow{
		{
			Metric:   "Spend",
			Current:  FormatCurrency(current.Spend),
			Previous: FormatCurrency(previous.Spend),
			Delta:    FormatDelta(current.Spend, previous.Spend),
			Positive: current.Spend <= previous.Spend,
		},
		{
			Metric:   "Revenue",
			Current:  FormatCurrency(current.Revenue),
			Previous: FormatCurrency(previous.Revenue),
			Delta:    FormatDelta(current.Revenue, previous.Revenue),
			Positive: current.Revenue >= previous.Revenue,
		},
		{
			Metric:   "ROAS",
			Current:  FormatRoas(current.ROAS),
			Previous: FormatRoas(previous.ROAS),
			Delta:    FormatDelta(current.ROAS, previous.ROAS),
			Positive: current.ROAS >= previous.ROAS,
		},
		{
			Metric:   "Conversions",
			Current:  FormatCount(int64(current.Conversions)),
			Previous: FormatCount(int64(previous.Conversions)),
			Delta:    FormatDelta(current.Conversions, previous.Conversions),
			Positive: current.Conversions >= previous.Conversions,
		},
		{
			Metric:   "CPA",
			Current:  FormatCurrency(current.CPA),
			Previous: FormatCurrency(previous.CPA),
			Delta:    FormatDelta(current.CPA, previous.CPA),
			Positive: current.CPA <= previous.CPA,
		},
	}

	return &domain.ComparisonSlide{
		AccountName:   fetch.Account.Name,
		CurrentLabel:  current.DateRange.Label(),
		PreviousLabel: current.DateRange.PreviousPeriod().Label(),
		Rows:          rows,
	}
}

func buildExecutiveSummarySlide(batch *aggregating.BatchResult, rollups *aggregating.Rollups) domain.SlideData {
	if len(batch.Successes) == 0 {
		return nil
	}

	blended := rollups.Blended
	lines := []string{
		fmt.Sprintf(
			"Across %d account(s), total spend was %s generating %s in revenue (%s ROAS).",
			len(batch.Successes),
			FormatCurrency(blended.Spend),
			FormatCurrency(blended.Revenue),
			FormatRoas(blended.ROAS),
		),
	}

	if rollups.Ecommerce != nil {
		lines = append(lines, fmt.Sprintf(
			"The store recorded %s orders with an average order value of %s.",
			FormatCount(rollups.Ecommerce.Orders),
			FormatCurrency(rollups.Ecommerce.AvgOrderValue),
		))
	}

	if len(batch.Failures) > 0 {
		lines = append(lines, fmt.Sprintf(
			"%d account(s) could not be included in this report.",
			len(batch.Failures),
		))
	}

	return &domain.ExecutiveSummarySlide{
		Text: strings.Join(lines, " "),
	}
}
