package composing

import (
	"sort"
	"strings"

	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
)

// SlideSelection habilita um tipo de slide e fixa sua posição dentro do bloco
// de cada conta
type SlideSelection struct {
	Type    domain.SlideType
	Enabled bool
	Order   int
}

// Ordem canônica usada quando a config não lista slides
var defaultSlideOrder = []domain.SlideType{
	domain.SlideKPIOverview,
	domain.SlideCampaignBreakdown,
	domain.SlideTrendAnalysis,
	domain.SlideTopPerformers,
	domain.SlideAudienceInsights,
	domain.SlideBudgetAllocation,
	domain.SlideComparison,
}

// SelectionsFromConfig monta a seleção padrão a partir da config; a posição na
// lista vira a ordem do slide
func SelectionsFromConfig(cfg config.Deck) []SlideSelection {
	if len(cfg.Slides) == 0 {
		selections := make([]SlideSelection, 0, len(defaultSlideOrder))
		for i, slideType := range defaultSlideOrder {
			selections = append(selections, SlideSelection{Type: slideType, Enabled: true, Order: i})
		}
		return selections
	}

	selections := make([]SlideSelection, 0, len(cfg.Slides))
	for i, name := range cfg.Slides {
		selections = append(selections, SlideSelection{
			Type:    domain.SlideType(strings.TrimSpace(name)),
			Enabled: true,
			Order:   i,
		})
	}
	return selections
}

// sortedEnabled filtra as seleções habilitadas e ordena por Order; empates
// preservam a ordem de chegada
func sortedEnabled(selections []SlideSelection) []SlideSelection {
	enabled := make([]SlideSelection, 0, len(selections))
	for _, selection := range selections {
		if selection.Enabled {
			enabled = append(enabled, selection)
		}
	}

	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Order < enabled[j].Order
	})

	return enabled
}
