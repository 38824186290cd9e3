package domain

// AccountSummary é o resumo completo de uma conta no período: métricas da
// conta, campanhas, série temporal diária e breakdowns dimensionais.
// PreviousPeriodMetrics é best-effort e pode estar ausente quando a busca do
// período anterior falha.
type AccountSummary struct {
	Account               *AdAccount            `json:"account"`
	Metrics               NormalizedMetrics     `json:"metrics"`
	PreviousPeriodMetrics *NormalizedMetrics    `json:"previous_period_metrics,omitempty"`
	Campaigns             []*NormalizedCampaign `json:"campaigns"`
	TimeSeries            []TimeSeriesPoint     `json:"time_series"`
	Breakdowns            []Breakdown           `json:"breakdowns"`

	// Ecommerce é preenchido apenas pelo conector Shopify
	Ecommerce *EcommerceSummary `json:"ecommerce,omitempty"`
}
