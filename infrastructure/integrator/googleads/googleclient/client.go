package googleclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	googledomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const platformName = string(domain.PlatformGoogle)

type Client interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*googledomain.TokenResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*googledomain.TokenResponse, error)
	ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error)
	SearchStream(ctx context.Context, accessToken, customerID, loginCustomerID, query string) ([]googledomain.Row, error)
}

type GoogleClient struct {
	Cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &GoogleClient{
		Cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ExchangeCode troca o código de autorização por tokens de acesso e refresh
func (c *GoogleClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*googledomain.TokenResponse, error) {
	form := url.Values{}
	form.Add("grant_type", "authorization_code")
	form.Add("code", code)
	form.Add("redirect_uri", redirectURI)
	form.Add("client_id", c.Cfg.Google.ClientID)
	form.Add("client_secret", c.Cfg.Google.ClientSecret)

	return c.requestToken(ctx, form)
}

// RefreshAccessToken obtém um novo access token a partir do refresh token
func (c *GoogleClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*googledomain.TokenResponse, error) {
	form := url.Values{}
	form.Add("grant_type", "refresh_token")
	form.Add("refresh_token", refreshToken)
	form.Add("client_id", c.Cfg.Google.ClientID)
	form.Add("client_secret", c.Cfg.Google.ClientSecret)

	return c.requestToken(ctx, form)
}

func (c *GoogleClient) requestToken(ctx context.Context, form url.Values) (*googledomain.TokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Cfg.Google.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, prismErrors.NewNetworkError(platformName, err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var tokenResp googledomain.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, prismErrors.NewDataValidation(platformName, "failed to decode token response: "+err.Error())
	}

	if tokenResp.AccessToken == "" {
		return nil, prismErrors.NewDataValidation(platformName, "token returned by the API is empty")
	}

	return &tokenResp, nil
}

// ListAccessibleCustomers lista os IDs de customer acessíveis ao token; é o
// primeiro passo da descoberta de contas em duas etapas
func (c *GoogleClient) ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/%s/customers:listAccessibleCustomers", c.Cfg.Google.AdsBaseURL, c.Cfg.Google.AdsVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, prismErrors.NewNetworkError(platformName, err.Error())
	}
	c.setAdsHeaders(req, accessToken, "")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var response googledomain.ListAccessibleCustomersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, prismErrors.NewDataValidation(platformName, "failed to decode accessible customers response: "+err.Error())
	}

	ids := make([]string, 0, len(response.ResourceNames))
	for _, resourceName := range response.ResourceNames {
		// resourceName tem a forma "customers/1234567890"
		ids = append(ids, strings.TrimPrefix(resourceName, "customers/"))
	}

	return ids, nil
}

// SearchStream executa uma consulta GAQL via googleAds:searchStream e
// concatena os resultados de todos os blocos da resposta
func (c *GoogleClient) SearchStream(ctx context.Context, accessToken, customerID, loginCustomerID, query string) ([]googledomain.Row, error) {
	endpoint := fmt.Sprintf(
		"%s/%s/customers/%s/googleAds:searchStream",
		c.Cfg.Google.AdsBaseURL,
		c.Cfg.Google.AdsVersion,
		customerID,
	)

	payload, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, prismErrors.NewDataValidation(platformName, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, prismErrors.NewNetworkError(platformName, err.Error())
	}
	c.setAdsHeaders(req, accessToken, loginCustomerID)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var chunks []googledomain.SearchChunk
	if err := json.Unmarshal(body, &chunks); err != nil {
		return nil, prismErrors.NewDataValidation(platformName, "failed to decode searchStream response: "+err.Error())
	}

	rows := make([]googledomain.Row, 0)
	for _, chunk := range chunks {
		rows = append(rows, chunk.Results...)
	}

	return rows, nil
}

// setAdsHeaders aplica os cabeçalhos exigidos pela API do Google Ads;
// login-customer-id roteia a requisição através da conta manager
func (c *GoogleClient) setAdsHeaders(req *http.Request, accessToken, loginCustomerID string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("developer-token", c.Cfg.Google.DeveloperToken)
	if loginCustomerID != "" {
		req.Header.Set("login-customer-id", loginCustomerID)
	}
}

func (c *GoogleClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, prismErrors.NewNetworkError(platformName, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, prismErrors.NewNetworkError(platformName, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		classified := classifyError(resp.StatusCode, body)
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"kind":   classified.Kind,
			"code":   classified.Code,
		}).Warn("googleads: API request failed")
		return nil, classified
	}

	return body, nil
}

// classifyError mapeia o status gRPC embutido na resposta REST para a
// taxonomia; falhas não reconhecidas caem na classificação por status HTTP
func classifyError(statusCode int, body []byte) *prismErrors.Error {
	errorResp, parseErr := googledomain.ParseErrorResponse(body)
	if parseErr == nil && errorResp.Error.Status != "" {
		switch errorResp.Error.Status {
		case "UNAUTHENTICATED":
			return prismErrors.NewTokenExpired(platformName, errorResp.Error.Message)
		case "PERMISSION_DENIED":
			return prismErrors.NewAccountAccess(platformName, errorResp.Error.Message)
		case "RESOURCE_EXHAUSTED":
			return prismErrors.NewRateLimited(platformName, errorResp.Error.Message, 30*time.Second)
		}
	}

	return prismErrors.ClassifyHTTP(platformName, statusCode, string(body), 0)
}
