package domain

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"
	CampaignStatusPaused    CampaignStatus = "paused"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusArchived  CampaignStatus = "archived"
)

type NormalizedCampaign struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    CampaignStatus    `json:"status"`
	Platform  Platform          `json:"platform"`
	Objective string            `json:"objective,omitempty"`
	Metrics   NormalizedMetrics `json:"metrics"`
}

// Mapeamento fixo de status do Meta -> status normalizado
var metaCampaignStatus = map[string]CampaignStatus{
	"ACTIVE":   CampaignStatusActive,
	"PAUSED":   CampaignStatusPaused,
	"DELETED":  CampaignStatusArchived,
	"ARCHIVED": CampaignStatusArchived,
}

// Mapeamento fixo de status do Google Ads -> status normalizado
var googleCampaignStatus = map[string]CampaignStatus{
	"ENABLED": CampaignStatusActive,
	"PAUSED":  CampaignStatusPaused,
	"REMOVED": CampaignStatusArchived,
	"ENDED":   CampaignStatusCompleted,
}

// MapMetaCampaignStatus converte o status bruto do Meta; status não mapeados
// viram completed
func MapMetaCampaignStatus(raw string) CampaignStatus {
	if status, ok := metaCampaignStatus[raw]; ok {
		return status
	}
	return CampaignStatusCompleted
}

// MapGoogleCampaignStatus converte o status bruto do Google Ads; status não
// mapeados viram completed
func MapGoogleCampaignStatus(raw string) CampaignStatus {
	if status, ok := googleCampaignStatus[raw]; ok {
		return status
	}
	return CampaignStatusCompleted
}
