package metaclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	metadomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const platformName = string(domain.PlatformMeta)

type Client interface {
	ExchangeCode(ctx context.Context, code, redirectURI string) (*metadomain.TokenResponse, error)
	ExchangeLongLivedToken(ctx context.Context, accessToken string) (*metadomain.TokenResponse, error)
	GetAdAccounts(ctx context.Context, accessToken string) ([]metadomain.AdAccount, error)
	GetAccountInfo(ctx context.Context, accessToken, accountID string) (*metadomain.AdAccount, error)
	GetCampaigns(ctx context.Context, accessToken, accountID string) ([]metadomain.Campaign, error)
	GetCampaignInsights(ctx context.Context, accessToken, accountID string, rng domain.DateRange) ([]metadomain.InsightRow, error)
	GetDailyInsights(ctx context.Context, accessToken, accountID string, rng domain.DateRange) ([]metadomain.InsightRow, error)
	GetBreakdownInsights(ctx context.Context, accessToken, accountID, breakdown string, rng domain.DateRange) ([]metadomain.InsightRow, error)
}

type MetaClient struct {
	Cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &MetaClient{
		Cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// get executa um GET e funila toda resposta não-2xx pela classificação de
// erros compartilhada antes de devolver ao chamador
func (c *MetaClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, prismErrors.NewNetworkError(platformName, err.Error())
	}

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
		}).Warn("meta: API request failed")
		return nil, classified
	}

	return body, nil
}

// classifyError mapeia uma resposta de erro da Graph API para exatamente um
// tipo da taxonomia; falhas não reconhecidas viram APIError
func classifyError(statusCode int, body []byte) *prismErrors.Error {
	errorResp, parseErr := metadomain.ParseErrorResponse(body)
	if parseErr == nil && errorResp.Error.Code != 0 {
		switch {
		case errorResp.IsTokenExpired():
			return prismErrors.NewTokenExpired(platformName, errorResp.Error.Message)
		case errorResp.IsRateLimited():
			return prismErrors.NewRateLimited(platformName, errorResp.Error.Message, 60*time.Second)
		case errorResp.IsPermissionDenied():
			return prismErrors.NewAccountAccess(platformName, errorResp.Error.Message)
		}
	}

	return prismErrors.ClassifyHTTP(platformName, statusCode, string(body), 0)
}
