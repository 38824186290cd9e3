package domain

import (
	"time"

	"github.com/vfg2006/prism-reports-api/pkg/utils"
)

// DateRange é um período fechado [Start, End] em dias de calendário
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: start, End: end}
}

// Days retorna o número de dias de calendário cobertos pelo período
func (r DateRange) Days() int {
	start := r.Start.Truncate(24 * time.Hour)
	end := r.End.Truncate(24 * time.Hour)
	return int(end.Sub(start).Hours()/24) + 1
}

// PreviousPeriod retorna o período imediatamente anterior com a mesma duração,
// ancorado logo antes do início do período atual
func (r DateRange) PreviousPeriod() DateRange {
	length := r.End.Sub(r.Start)
	prevEnd := r.Start.Add(-time.Millisecond)
	return DateRange{Start: prevEnd.Add(-length), End: prevEnd}
}

func (r DateRange) Label() string {
	return r.Start.Format(time.DateOnly) + " - " + r.End.Format(time.DateOnly)
}

// NormalizedMetrics é a forma agnóstica de plataforma das métricas de anúncios.
// Os campos derivados seguem a convenção: denominador zero resulta em zero,
// nunca NaN ou erro de divisão.
type NormalizedMetrics struct {
	Spend       float64   `json:"spend"`
	Impressions int64     `json:"impressions"`
	Clicks      int64     `json:"clicks"`
	Conversions float64   `json:"conversions"`
	Revenue     float64   `json:"revenue"`
	ROAS        float64   `json:"roas"`
	CTR         float64   `json:"ctr"`
	CPC         float64   `json:"cpc"`
	CPM         float64   `json:"cpm"`
	CPA         float64   `json:"cpa"`
	DateRange   DateRange `json:"date_range"`
}

// WithDerived recalcula ROAS, CTR, CPC, CPM e CPA a partir dos campos brutos.
// Deve ser chamado em todo caminho de agregação (campanha, dia, segmento, conta).
func (m NormalizedMetrics) WithDerived() NormalizedMetrics {
	m.ROAS = utils.SafeDivide(m.Revenue, m.Spend)
	m.CTR = utils.SafeDivide(float64(m.Clicks), float64(m.Impressions)) * 100
	m.CPC = utils.SafeDivide(m.Spend, float64(m.Clicks))
	m.CPM = utils.SafeDivide(m.Spend, float64(m.Impressions)) * 1000
	m.CPA = utils.SafeDivide(m.Spend, m.Conversions)
	return m
}

// Add acumula os campos brutos de other sem recalcular os derivados
func (m NormalizedMetrics) Add(other NormalizedMetrics) NormalizedMetrics {
	m.Spend += other.Spend
	m.Impressions += other.Impressions
	m.Clicks += other.Clicks
	m.Conversions += other.Conversions
	m.Revenue += other.Revenue
	return m
}

// AggregateMetrics soma uma lista de métricas e recalcula os derivados
func AggregateMetrics(rng DateRange, all ...NormalizedMetrics) NormalizedMetrics {
	total := NormalizedMetrics{DateRange: rng}
	for _, m := range all {
		total = total.Add(m)
	}
	return total.WithDerived()
}

// AggregateCampaignMetrics reduz as métricas de um conjunto de campanhas
// para o total da conta
func AggregateCampaignMetrics(rng DateRange, campaigns []*NormalizedCampaign) NormalizedMetrics {
	total := NormalizedMetrics{DateRange: rng}
	for _, c := range campaigns {
		total = total.Add(c.Metrics)
	}
	return total.WithDerived()
}
