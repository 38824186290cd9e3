package domain

type SlideType string

const (
	SlideTitle             SlideType = "title"
	SlideKPIOverview       SlideType = "kpi_overview"
	SlideCampaignBreakdown SlideType = "campaign_breakdown"
	SlideTrendAnalysis     SlideType = "trend_analysis"
	SlideTopPerformers     SlideType = "top_performers"
	SlideAudienceInsights  SlideType = "audience_insights"
	SlideBudgetAllocation  SlideType = "budget_allocation"
	SlideComparison        SlideType = "comparison"
	SlideExecutiveSummary  SlideType = "executive_summary"
)

// SlideData é o tipo soma fechado sobre as nove variantes de slide. Cada
// variante carrega apenas strings prontas para exibição; valores brutos nunca
// chegam ao renderizador. Um slide é criado uma vez pelo compositor, consumido
// uma vez pelo renderizador e só muta para receber o comentário do analisador.
type SlideData interface {
	Type() SlideType
	Commentary() string
	SetCommentary(text string)
}

type baseSlide struct {
	CommentaryText string `json:"commentary,omitempty"`
}

func (b *baseSlide) Commentary() string        { return b.CommentaryText }
func (b *baseSlide) SetCommentary(text string) { b.CommentaryText = text }

type TitleSlide struct {
	baseSlide
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	DateRange  string `json:"date_range"`
	ClientName string `json:"client_name"`
}

func (s *TitleSlide) Type() SlideType { return SlideTitle }

// KPI é um indicador formatado com sua variação período a período
type KPI struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Delta    string `json:"delta,omitempty"`
	Positive bool   `json:"positive"`
}

type KPIOverviewSlide struct {
	baseSlide
	AccountName string `json:"account_name"`
	KPIs        []KPI  `json:"kpis"`
}

func (s *KPIOverviewSlide) Type() SlideType { return SlideKPIOverview }

type CampaignRow struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	Spend       string `json:"spend"`
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Conversions string `json:"conversions"`
	ROAS        string `json:"roas"`
}

type CampaignBreakdownSlide struct {
	baseSlide
	AccountName string        `json:"account_name"`
	Rows        []CampaignRow `json:"rows"`
}

func (s *CampaignBreakdownSlide) Type() SlideType { return SlideCampaignBreakdown }

type TrendPoint struct {
	Date    string `json:"date"`
	Spend   string `json:"spend"`
	Revenue string `json:"revenue"`
}

type TrendAnalysisSlide struct {
	baseSlide
	AccountName string       `json:"account_name"`
	Points      []TrendPoint `json:"points"`
}

func (s *TrendAnalysisSlide) Type() SlideType { return SlideTrendAnalysis }

// PerformerItem carrega a métrica primária (conversões) e três secundárias
type PerformerItem struct {
	Name        string `json:"name"`
	Conversions string `json:"conversions"`
	Spend       string `json:"spend"`
	CPA         string `json:"cpa"`
	ROAS        string `json:"roas"`
}

type TopPerformersSlide struct {
	baseSlide
	AccountName string          `json:"account_name"`
	Items       []PerformerItem `json:"items"`
}

func (s *TopPerformersSlide) Type() SlideType { return SlideTopPerformers }

type AudienceSegmentRow struct {
	Label       string `json:"label"`
	Spend       string `json:"spend"`
	Conversions string `json:"conversions"`
	CTR         string `json:"ctr"`
}

type AudienceBreakdownGroup struct {
	Dimension string               `json:"dimension"`
	Segments  []AudienceSegmentRow `json:"segments"`
}

type AudienceInsightsSlide struct {
	baseSlide
	AccountName string                   `json:"account_name"`
	Groups      []AudienceBreakdownGroup `json:"groups"`
}

func (s *AudienceInsightsSlide) Type() SlideType { return SlideAudienceInsights }

type AllocationItem struct {
	Name       string  `json:"name"`
	Spend      string  `json:"spend"`
	Percentage float64 `json:"percentage"`
	Label      string  `json:"label"`
}

type BudgetAllocationSlide struct {
	baseSlide
	AccountName string           `json:"account_name"`
	Items       []AllocationItem `json:"items"`
}

func (s *BudgetAllocationSlide) Type() SlideType { return SlideBudgetAllocation }

type ComparisonRow struct {
	Metric   string `json:"metric"`
	Current  string `json:"current"`
	Previous string `json:"previous"`
	Delta    string `json:"delta"`
	Positive bool   `json:"positive"`
}

type ComparisonSlide struct {
	baseSlide
	AccountName   string          `json:"account_name"`
	CurrentLabel  string          `json:"current_label"`
	PreviousLabel string          `json:"previous_label"`
	Rows          []ComparisonRow `json:"rows"`
}

func (s *ComparisonSlide) Type() SlideType { return SlideComparison }

type ExecutiveSummarySlide struct {
	baseSlide
	Text string `json:"text"`
}

func (s *ExecutiveSummarySlide) Type() SlideType { return SlideExecutiveSummary }
