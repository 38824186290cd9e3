package googledomain

import (
	"encoding/json"
	"strconv"
)

// TokenResponse representa a resposta do endpoint de token do Google OAuth
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// ErrorResponse representa a estrutura de erro padrão das APIs do Google
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

type ErrorDetails struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func ParseErrorResponse(body []byte) (*ErrorResponse, error) {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil {
		return nil, err
	}
	return &errorResp, nil
}

type ListAccessibleCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}

// SearchChunk é um bloco da resposta do googleAds:searchStream
type SearchChunk struct {
	Results []Row `json:"results"`
}

// Row é uma linha GAQL; apenas os recursos selecionados na consulta vêm
// preenchidos
type Row struct {
	Customer       *Customer       `json:"customer,omitempty"`
	CustomerClient *CustomerClient `json:"customerClient,omitempty"`
	Campaign       *Campaign       `json:"campaign,omitempty"`
	Metrics        *Metrics        `json:"metrics,omitempty"`
	Segments       *Segments       `json:"segments,omitempty"`
}

type Customer struct {
	ID              string `json:"id"`
	DescriptiveName string `json:"descriptiveName"`
	CurrencyCode    string `json:"currencyCode"`
	TimeZone        string `json:"timeZone"`
	Status          string `json:"status"`
}

type CustomerClient struct {
	ID              string `json:"id"`
	DescriptiveName string `json:"descriptiveName"`
	CurrencyCode    string `json:"currencyCode"`
	TimeZone        string `json:"timeZone"`
	Manager         bool   `json:"manager"`
	Status          string `json:"status"`
}

type Campaign struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	Status                 string `json:"status"`
	AdvertisingChannelType string `json:"advertisingChannelType"`
}

// Metrics traz os campos numéricos como a REST API os serializa: int64 como
// string, doubles como número
type Metrics struct {
	CostMicros       string  `json:"costMicros"`
	Impressions      string  `json:"impressions"`
	Clicks           string  `json:"clicks"`
	Conversions      float64 `json:"conversions"`
	ConversionsValue float64 `json:"conversionsValue"`
}

// Cost converte o custo de micros para a moeda real (micros / 1.000.000)
func (m *Metrics) Cost() float64 {
	micros, _ := strconv.ParseInt(m.CostMicros, 10, 64)
	return float64(micros) / 1_000_000
}

func (m *Metrics) ImpressionsValue() int64 {
	value, _ := strconv.ParseInt(m.Impressions, 10, 64)
	return value
}

func (m *Metrics) ClicksValue() int64 {
	value, _ := strconv.ParseInt(m.Clicks, 10, 64)
	return value
}

type Segments struct {
	Date   string `json:"date"`
	Device string `json:"device"`
}
