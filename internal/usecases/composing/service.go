package composing

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/internal/usecases/aggregating"
	"github.com/vfg2006/prism-reports-api/internal/usecases/analyzing"
	"github.com/vfg2006/prism-reports-api/pkg/utils"
)

// ComposeParams reúne o resultado do lote e os metadados do relatório
type ComposeParams struct {
	ClientID   string
	ClientName string
	Title      string

	// Selections sobrescreve a seleção de slides da config quando não vazio
	Selections []SlideSelection

	Batch   *aggregating.BatchResult
	Rollups *aggregating.Rollups
}

type Service interface {
	// Compose monta o deck: título sempre primeiro, resumo executivo quando há
	// dados e, para cada conta do lote, um bloco com as seleções habilitadas
	// ordenadas por Order; builders sem dados são omitidos
	Compose(params ComposeParams) (*domain.Deck, error)
}

type service struct {
	cfg      config.Deck
	analyzer analyzing.Analyzer
}

func NewService(cfg config.Deck, analyzer analyzing.Analyzer) Service {
	return &service{
		cfg:      cfg,
		analyzer: analyzer,
	}
}

func (s *service) Compose(params ComposeParams) (*domain.Deck, error) {
	title := params.Title
	if title == "" {
		title = s.cfg.DefaultTitle
	}

	deckID, err := utils.GenerateID()
	if err != nil {
		return nil, err
	}

	selections := params.Selections
	if len(selections) == 0 {
		selections = SelectionsFromConfig(s.cfg)
	}
	enabled := sortedEnabled(selections)

	input := &analyzing.Input{Batch: params.Batch, Rollups: params.Rollups}
	anomalies := s.analyzer.DetectAnomalies(input)

	slides := make([]domain.SlideData, 0, 2+len(params.Batch.Successes)*len(enabled))
	slides = append(slides, buildTitleSlide(title, params.ClientName, params.Batch.Range))

	if summarySlide := buildExecutiveSummarySlide(params.Batch, params.Rollups); summarySlide != nil {
		text := s.analyzer.GenerateExecutiveSummary(input)
		text = appendAnomalies(text, anomalies)
		if text != "" {
			summarySlide.SetCommentary(text)
		}
		slides = append(slides, summarySlide)
	}

	for _, fetch := range params.Batch.Successes {
		for _, selection := range enabled {
			slide := buildSlide(selection.Type, fetch)
			if slide == nil {
				continue
			}

			if text := s.analyzer.GenerateSlideCommentary(slide, input); text != "" {
				slide.SetCommentary(text)
			}

			slides = append(slides, slide)
		}
	}

	logrus.WithFields(logrus.Fields{
		"deck_id":  deckID,
		"slides":   len(slides),
		"accounts": len(params.Batch.Successes),
	}).Info("composing: deck composed")

	return &domain.Deck{
		ID:        deckID,
		ClientID:  params.ClientID,
		Title:     title,
		Range:     params.Batch.Range,
		Slides:    slides,
		CreatedAt: time.Now(),
	}, nil
}

// appendAnomalies anexa os desvios detectados ao comentário do resumo
// executivo, um por linha
func appendAnomalies(text string, anomalies []analyzing.Anomaly) string {
	if len(anomalies) == 0 {
		return text
	}

	lines := make([]string, 0, len(anomalies)+1)
	if text != "" {
		lines = append(lines, text)
	}
	for _, anomaly := range anomalies {
		lines = append(lines, anomaly.Description)
	}

	return strings.Join(lines, "\n")
}
