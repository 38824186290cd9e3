package domain

import "github.com/vfg2006/prism-reports-api/pkg/utils"

// NormalizedEcommerceMetrics é o análogo e-commerce das métricas de anúncios
type NormalizedEcommerceMetrics struct {
	Revenue            float64   `json:"revenue"`
	Orders             int64     `json:"orders"`
	AvgOrderValue      float64   `json:"avg_order_value"`
	NewCustomers       int64     `json:"new_customers"`
	ReturningCustomers int64     `json:"returning_customers"`
	DateRange          DateRange `json:"date_range"`
}

// WithDerived recalcula o ticket médio com a convenção de denominador zero
func (m NormalizedEcommerceMetrics) WithDerived() NormalizedEcommerceMetrics {
	m.AvgOrderValue = utils.SafeDivide(m.Revenue, float64(m.Orders))
	return m
}

// ProductSales é o total vendido de um produto no período
type ProductSales struct {
	Title    string  `json:"title"`
	Quantity int64   `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// EcommerceSummary é o resumo Shopify de uma loja no período
type EcommerceSummary struct {
	Account               *AdAccount                  `json:"account"`
	Metrics               NormalizedEcommerceMetrics  `json:"metrics"`
	PreviousPeriodMetrics *NormalizedEcommerceMetrics `json:"previous_period_metrics,omitempty"`
	TopProducts           []ProductSales              `json:"top_products"`
	TimeSeries            []TimeSeriesPoint           `json:"time_series"`
}
