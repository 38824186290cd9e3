package composing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/internal/usecases/aggregating"
	"github.com/vfg2006/prism-reports-api/internal/usecases/analyzing"
)

func TestCompose_EmptyBatchYieldsTitleOnly(t *testing.T) {
	svc := NewService(config.Deck{DefaultTitle: "Performance Report"}, analyzing.NewNoopAnalyzer())

	deck, err := svc.Compose(ComposeParams{
		ClientID:   "client-1",
		ClientName: "Acme",
		Batch:      &aggregating.BatchResult{Range: composeRange()},
		Rollups:    &aggregating.Rollups{ByPlatform: map[domain.Platform]domain.NormalizedMetrics{}},
	})
	require.NoError(t, err)

	// Sem dados, todos os builders devolvem nil; resta o slide de título
	require.Len(t, deck.Slides, 1)
	assert.Equal(t, domain.SlideTitle, deck.Slides[0].Type())
	assert.Equal(t, "Performance Report", deck.Title)
	assert.NotEmpty(t, deck.ID)
	assert.Equal(t, "client-1", deck.ClientID)
}

func TestCompose_TitleAlwaysFirst(t *testing.T) {
	svc := NewService(config.Deck{DefaultTitle: "Performance Report"}, analyzing.NewNoopAnalyzer())

	batch := &aggregating.BatchResult{
		Successes: []aggregating.AccountFetch{fetchWithCampaigns("Meta Account", 100,
			&domain.NormalizedCampaign{
				Name:    "Campaign A",
				Metrics: domain.NormalizedMetrics{Spend: 100, Conversions: 5}.WithDerived(),
			},
		)},
		Range: composeRange(),
	}
	rollups := &aggregating.Rollups{
		ByPlatform: map[domain.Platform]domain.NormalizedMetrics{
			domain.PlatformMeta: {Spend: 100},
		},
		Blended: domain.NormalizedMetrics{Spend: 100, Revenue: 250}.WithDerived(),
	}

	deck, err := svc.Compose(ComposeParams{
		ClientID: "client-1",
		Title:    "March Recap",
		Batch:    batch,
		Rollups:  rollups,
	})
	require.NoError(t, err)

	assert.Equal(t, "March Recap", deck.Title)
	require.NotEmpty(t, deck.Slides)
	assert.Equal(t, domain.SlideTitle, deck.Slides[0].Type())

	// Slides sem dados (trend, audience, comparison) foram omitidos
	for _, slide := range deck.Slides {
		assert.NotEqual(t, domain.SlideTrendAnalysis, slide.Type())
		assert.NotEqual(t, domain.SlideAudienceInsights, slide.Type())
		assert.NotEqual(t, domain.SlideComparison, slide.Type())
	}
}

func TestCompose_SelectionsSortedByOrder(t *testing.T) {
	svc := NewService(config.Deck{DefaultTitle: "Performance Report"}, analyzing.NewNoopAnalyzer())

	batch := &aggregating.BatchResult{
		Successes: []aggregating.AccountFetch{fetchWithCampaigns("Meta Account", 100,
			&domain.NormalizedCampaign{
				Name:    "Campaign A",
				Metrics: domain.NormalizedMetrics{Spend: 100, Conversions: 5}.WithDerived(),
			},
		)},
		Range: composeRange(),
	}
	rollups := &aggregating.Rollups{
		Blended: domain.NormalizedMetrics{Spend: 100, Revenue: 250}.WithDerived(),
	}

	deck, err := svc.Compose(ComposeParams{
		Batch:   batch,
		Rollups: rollups,
		Selections: []SlideSelection{
			{Type: domain.SlideCampaignBreakdown, Enabled: true, Order: 2},
			{Type: domain.SlideKPIOverview, Enabled: true, Order: 1},
			{Type: domain.SlideTopPerformers, Enabled: false, Order: 0},
		},
	})
	require.NoError(t, err)

	types := make([]domain.SlideType, 0, len(deck.Slides))
	for _, slide := range deck.Slides {
		types = append(types, slide.Type())
	}

	// Seleções desabilitadas ficam fora; as habilitadas seguem Order
	assert.Equal(t, []domain.SlideType{
		domain.SlideTitle,
		domain.SlideExecutiveSummary,
		domain.SlideKPIOverview,
		domain.SlideCampaignBreakdown,
	}, types)
}

func TestCompose_EqualOrderKeepsInputOrder(t *testing.T) {
	svc := NewService(config.Deck{DefaultTitle: "Performance Report"}, analyzing.NewNoopAnalyzer())

	batch := &aggregating.BatchResult{
		Successes: []aggregating.AccountFetch{fetchWithCampaigns("Meta Account", 100,
			&domain.NormalizedCampaign{
				Name:    "Campaign A",
				Metrics: domain.NormalizedMetrics{Spend: 100}.WithDerived(),
			},
		)},
		Range: composeRange(),
	}
	rollups := &aggregating.Rollups{
		Blended: domain.NormalizedMetrics{Spend: 100}.WithDerived(),
	}

	deck, err := svc.Compose(ComposeParams{
		Batch:   batch,
		Rollups: rollups,
		Selections: []SlideSelection{
			{Type: domain.SlideCampaignBreakdown, Enabled: true, Order: 1},
			{Type: domain.SlideKPIOverview, Enabled: true, Order: 1},
		},
	})
	require.NoError(t, err)

	require.Len(t, deck.Slides, 4)
	assert.Equal(t, domain.SlideCampaignBreakdown, deck.Slides[2].Type())
	assert.Equal(t, domain.SlideKPIOverview, deck.Slides[3].Type())
}

func TestCompose_OneBlockPerAccount(t *testing.T) {
	svc := NewService(config.Deck{DefaultTitle: "Performance Report"}, analyzing.NewNoopAnalyzer())

	batch := &aggregating.BatchResult{
		Successes: []aggregating.AccountFetch{
			fetchWithCampaigns("Meta Account", 100),
			fetchWithCampaigns("Google Account", 50),
		},
		Range: composeRange(),
	}
	rollups := &aggregating.Rollups{
		Blended: domain.NormalizedMetrics{Spend: 150}.WithDerived(),
	}

	deck, err := svc.Compose(ComposeParams{
		Batch:   batch,
		Rollups: rollups,
		Selections: []SlideSelection{
			{Type: domain.SlideKPIOverview, Enabled: true, Order: 0},
		},
	})
	require.NoError(t, err)

	// Um slide de KPI por conta, na ordem das contas no lote
	require.Len(t, deck.Slides, 4)

	first, ok := deck.Slides[2].(*domain.KPIOverviewSlide)
	require.True(t, ok)
	assert.Equal(t, "Meta Account", first.AccountName)

	second, ok := deck.Slides[3].(*domain.KPIOverviewSlide)
	require.True(t, ok)
	assert.Equal(t, "Google Account", second.AccountName)
}

func TestCompose_NoAccountsWithTrendSelection(t *testing.T) {
	svc := NewService(config.Deck{DefaultTitle: "Performance Report"}, analyzing.NewNoopAnalyzer())

	deck, err := svc.Compose(ComposeParams{
		Batch:   &aggregating.BatchResult{Range: composeRange()},
		Rollups: &aggregating.Rollups{},
		Selections: []SlideSelection{
			{Type: domain.SlideTrendAnalysis, Enabled: true, Order: 0},
		},
	})
	require.NoError(t, err)

	// Sem contas não há bloco algum; o deck válido tem só o título
	require.Len(t, deck.Slides, 1)
	assert.Equal(t, domain.SlideTitle, deck.Slides[0].Type())
}

func TestSelectionsFromConfig(t *testing.T) {
	selections := SelectionsFromConfig(config.Deck{
		Slides: []string{"comparison", " kpi_overview"},
	})

	require.Len(t, selections, 2)
	assert.Equal(t, domain.SlideComparison, selections[0].Type)
	assert.Equal(t, 0, selections[0].Order)
	assert.True(t, selections[0].Enabled)
	assert.Equal(t, domain.SlideKPIOverview, selections[1].Type)
	assert.Equal(t, 1, selections[1].Order)

	// Config vazia cai na ordem canônica completa
	fallback := SelectionsFromConfig(config.Deck{})
	require.Len(t, fallback, 7)
	assert.Equal(t, domain.SlideKPIOverview, fallback[0].Type)
	assert.Equal(t, domain.SlideComparison, fallback[6].Type)
}

type stubAnalyzer struct {
	anomalies []analyzing.Anomaly
}

func (s stubAnalyzer) GenerateExecutiveSummary(_ *analyzing.Input) string {
	return "strong month overall"
}

func (s stubAnalyzer) GenerateSlideCommentary(_ domain.SlideData, _ *analyzing.Input) string {
	return ""
}

func (s stubAnalyzer) DetectAnomalies(_ *analyzing.Input) []analyzing.Anomaly {
	return s.anomalies
}

func TestCompose_AnalyzerCommentaryApplied(t *testing.T) {
	svc := NewService(config.Deck{DefaultTitle: "Performance Report"}, stubAnalyzer{})

	batch := &aggregating.BatchResult{
		Successes: []aggregating.AccountFetch{fetchWithCampaigns("Meta Account", 100)},
		Range:     composeRange(),
	}
	rollups := &aggregating.Rollups{
		ByPlatform: map[domain.Platform]domain.NormalizedMetrics{
			domain.PlatformMeta: {Spend: 100},
		},
		Blended: domain.NormalizedMetrics{Spend: 100}.WithDerived(),
	}

	deck, err := svc.Compose(ComposeParams{Batch: batch, Rollups: rollups})
	require.NoError(t, err)

	var found bool
	for _, slide := range deck.Slides {
		if slide.Type() == domain.SlideExecutiveSummary {
			found = true
			assert.Equal(t, "strong month overall", slide.Commentary())
		} else {
			assert.Empty(t, slide.Commentary())
		}
	}
	assert.True(t, found)
}

func TestCompose_AnomaliesAppendedToExecutiveSummary(t *testing.T) {
	analyzer := stubAnalyzer{
		anomalies: []analyzing.Anomaly{
			{Metric: "spend", AccountName: "Meta Account", Description: "Spend doubled week over week"},
		},
	}
	svc := NewService(config.Deck{DefaultTitle: "Performance Report"}, analyzer)

	batch := &aggregating.BatchResult{
		Successes: []aggregating.AccountFetch{fetchWithCampaigns("Meta Account", 100)},
		Range:     composeRange(),
	}
	rollups := &aggregating.Rollups{
		ByPlatform: map[domain.Platform]domain.NormalizedMetrics{
			domain.PlatformMeta: {Spend: 100},
		},
		Blended: domain.NormalizedMetrics{Spend: 100}.WithDerived(),
	}

	deck, err := svc.Compose(ComposeParams{Batch: batch, Rollups: rollups})
	require.NoError(t, err)

	for _, slide := range deck.Slides {
		if slide.Type() == domain.SlideExecutiveSummary {
			assert.Contains(t, slide.Commentary(), "strong month overall")
			assert.Contains(t, slide.Commentary(), "Spend doubled week over week")
		}
	}
}
