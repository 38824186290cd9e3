package domain

type BreakdownDimension string

const (
	BreakdownAge       BreakdownDimension = "age"
	BreakdownGender    BreakdownDimension = "gender"
	BreakdownDevice    BreakdownDimension = "device"
	BreakdownPlacement BreakdownDimension = "placement"
	BreakdownDate      BreakdownDimension = "date"
)

type BreakdownSegment struct {
	Label   string            `json:"label"`
	Metrics NormalizedMetrics `json:"metrics"`
}

// Breakdown é a divisão dimensional das métricas de uma conta. Os segmentos
// somam aproximadamente os totais da conta no mesmo período, sujeito à
// semântica da plataforma de origem.
type Breakdown struct {
	Dimension BreakdownDimension `json:"dimension"`
	Segments  []BreakdownSegment `json:"segments"`
}
