package metadomain

import "strconv"

type Action struct {
	ActionType string `json:"action_type"`
	Value      string `json:"value"`
}

// InsightRow é uma linha de insights da Graph API, no nível de conta, campanha
// ou segmento de breakdown conforme os parâmetros da consulta
type InsightRow struct {
	AccountID      string   `json:"account_id"`
	AccountName    string   `json:"account_name"`
	CampaignID     string   `json:"campaign_id"`
	CampaignName   string   `json:"campaign_name"`
	Objective      string   `json:"objective"`
	Spend          string   `json:"spend"`
	Impressions    string   `json:"impressions"`
	Clicks         string   `json:"clicks"`
	Actions        []Action `json:"actions"`
	ActionValues   []Action `json:"action_values"`
	DateStart      string   `json:"date_start"`
	DateStop       string   `json:"date_stop"`
	Age            string   `json:"age,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	DevicePlatform string   `json:"device_platform,omitempty"`
}

// PurchaseActionTypes é a allow-list ordenada de tipos de ação que contam como
// compra. A extração retorna o primeiro tipo presente, sem somar os demais —
// regra de negócio definida, não alterar silenciosamente.
var PurchaseActionTypes = []string{
	"purchase",
	"omni_purchase",
	"offsite_conversion.fb_pixel_purchase",
}

func firstMatchingAction(actions []Action) float64 {
	for _, allowed := range PurchaseActionTypes {
		for _, action := range actions {
			if action.ActionType == allowed {
				value, err := strconv.ParseFloat(action.Value, 64)
				if err != nil {
					return 0
				}
				return value
			}
		}
	}
	return 0
}

// PurchaseCount extrai o número de conversões de compra da lista de ações
func (r *InsightRow) PurchaseCount() float64 {
	return firstMatchingAction(r.Actions)
}

// PurchaseValue extrai a receita atribuída da lista de valores de ação
func (r *InsightRow) PurchaseValue() float64 {
	return firstMatchingAction(r.ActionValues)
}

func (r *InsightRow) SpendValue() float64 {
	value, _ := strconv.ParseFloat(r.Spend, 64)
	return value
}

func (r *InsightRow) ImpressionsValue() int64 {
	value, _ := strconv.ParseInt(r.Impressions, 10, 64)
	return value
}

func (r *InsightRow) ClicksValue() int64 {
	value, _ := strconv.ParseInt(r.Clicks, 10, 64)
	return value
}
