package analyzing

import (
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/internal/usecases/aggregating"
)

// Input é o material bruto entregue ao analisador: o lote agregado e os
// rollups já calculados
type Input struct {
	Batch   *aggregating.BatchResult
	Rollups *aggregating.Rollups
}

// Anomaly descreve um desvio relevante detectado nos dados do período
type Anomaly struct {
	Metric      string
	AccountName string
	Description string
}

// Analyzer é o colaborador de insights em linguagem natural. O compositor
// funciona integralmente com um analisador que devolve vazio para tudo.
type Analyzer interface {
	GenerateExecutiveSummary(input *Input) string
	GenerateSlideCommentary(slide domain.SlideData, input *Input) string
	DetectAnomalies(input *Input) []Anomaly
}

// NoopAnalyzer é o analisador padrão enquanto não há um gerador de insights
// plugado
type NoopAnalyzer struct{}

func NewNoopAnalyzer() Analyzer {
	return NoopAnalyzer{}
}

func (NoopAnalyzer) GenerateExecutiveSummary(_ *Input) string { return "" }

func (NoopAnalyzer) GenerateSlideCommentary(_ domain.SlideData, _ *Input) string { return "" }

func (NoopAnalyzer) DetectAnomalies(_ *Input) []Anomaly { return nil }
