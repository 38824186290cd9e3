package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Deck é o resultado persistível da composição: slides ordenados prontos para
// qualquer renderizador
type Deck struct {
	ID        string      `json:"id"`
	ClientID  string      `json:"client_id"`
	Title     string      `json:"title"`
	Range     DateRange   `json:"range"`
	Slides    []SlideData `json:"slides"`
	CreatedAt time.Time   `json:"created_at"`
}

// slideEnvelope carrega o discriminador de tipo junto do payload para que os
// slides sobrevivam à serialização sem perder a variante
type slideEnvelope struct {
	Type SlideType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// MarshalSlides serializa os slides preservando o tipo de cada variante
func MarshalSlides(slides []SlideData) ([]byte, error) {
	envelopes := make([]slideEnvelope, 0, len(slides))
	for _, slide := range slides {
		data, err := json.Marshal(slide)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, slideEnvelope{
			Type: slide.Type(),
			Data: data,
		})
	}
	return json.Marshal(envelopes)
}

// UnmarshalSlides reconstrói as variantes concretas a partir do discriminador
func UnmarshalSlides(raw []byte) ([]SlideData, error) {
	var envelopes []slideEnvelope
	if err := json.Unmarshal(raw, &envelopes); err != nil {
		return nil, err
	}

	slides := make([]SlideData, 0, len(envelopes))
	for _, envelope := range envelopes {
		slide, err := newSlideOfType(envelope.Type)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(envelope.Data, slide); err != nil {
			return nil, err
		}
		slides = append(slides, slide)
	}

	return slides, nil
}

func newSlideOfType(slideType SlideType) (SlideData, error) {
	switch slideType {
	case SlideTitle:
		return &TitleSlide{}, nil
	case SlideKPIOverview:
		return &KPIOverviewSlide{}, nil
	case SlideCampaignBreakdown:
		return &CampaignBreakdownSlide{}, nil
	case SlideTrendAnalysis:
		return &TrendAnalysisSlide{}, nil
	case SlideTopPerformers:
		return &TopPerformersSlide{}, nil
	case SlideAudienceInsights:
		return &AudienceInsightsSlide{}, nil
	case SlideBudgetAllocation:
		return &BudgetAllocationSlide{}, nil
	case SlideComparison:
		return &ComparisonSlide{}, nil
	case SlideExecutiveSummary:
		return &ExecutiveSummarySlide{}, nil
	}
	return nil, fmt.Errorf("unknown slide type %q", slideType)
}
