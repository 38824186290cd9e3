package meta

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator"
	metadomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const oauthScopes = "ads_read,ads_management,business_management"

// tokenExpiryBuffer antecipa a renovação em um dia antes da expiração real
const tokenExpiryBuffer = 24 * time.Hour

type MetaIntegrator struct {
	cfg    *config.Config
	Client metaclient.Client
}

func New(cfg *config.Config, client metaclient.Client) *MetaIntegrator {
	return &MetaIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

func (s *MetaIntegrator) Platform() domain.Platform {
	return domain.PlatformMeta
}

func (s *MetaIntegrator) GetAuthURL(redirectURI, state string) string {
	params := url.Values{}
	params.Add("client_id", s.cfg.Meta.AppID)
	params.Add("redirect_uri", redirectURI)
	params.Add("state", state)
	params.Add("scope", oauthScopes)
	params.Add("response_type", "code")

	return fmt.Sprintf("https://www.facebook.com/%s/dialog/oauth?%s", s.cfg.Meta.Version, params.Encode())
}

// Authorize troca o código por um token de curta duração e em seguida pelo
// token de longa duração — a Graph API exige os dois passos
func (s *MetaIntegrator) Authorize(ctx context.Context, params integrator.AuthorizeParams) (*domain.TokenSet, error) {
	shortLived, err := s.Client.ExchangeCode(ctx, params.Code, params.RedirectURI)
	if err != nil {
		logrus.WithError(err).Error("meta: failed to exchange authorization code")
		return nil, prismErrors.Ensure(string(domain.PlatformMeta), err)
	}

	longLived, err := s.Client.ExchangeLongLivedToken(ctx, shortLived.AccessToken)
	if err != nil {
		logrus.WithError(err).Error("meta: failed to exchange short-lived token")
		return nil, prismErrors.Ensure(string(domain.PlatformMeta), err)
	}

	return s.tokenSetFromResponse(longLived), nil
}

// RefreshToken renova o token de longa duração re-trocando o token atual;
// o Meta não tem um fluxo de refresh separado
func (s *MetaIntegrator) RefreshToken(ctx context.Context, tokens *domain.TokenSet) (*domain.TokenSet, error) {
	if tokens == nil || tokens.AccessToken == "" {
		return nil, prismErrors.NewTokenExpired(string(domain.PlatformMeta), "no access token to re-exchange, reauthorization required")
	}

	refreshed, err := s.Client.ExchangeLongLivedToken(ctx, tokens.AccessToken)
	if err != nil {
		logrus.WithError(err).Error("meta: failed to refresh long-lived token")
		return nil, prismErrors.Ensure(string(domain.PlatformMeta), err)
	}

	return s.tokenSetFromResponse(refreshed), nil
}

func (s *MetaIntegrator) tokenSetFromResponse(resp *metadomain.TokenResponse) *domain.TokenSet {
	tokens := &domain.TokenSet{
		AccessToken: resp.AccessToken,
		Scopes:      strings.Split(oauthScopes, ","),
		Platform:    domain.PlatformMeta,
	}

	if resp.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Add(-tokenExpiryBuffer)
		tokens.ExpiresAt = &expiresAt
	}

	return tokens
}

func (s *MetaIntegrator) ListAccounts(ctx context.Context, tokens *domain.TokenSet) ([]*domain.AdAccount, error) {
	rawAccounts, err := s.Client.GetAdAccounts(ctx, tokens.AccessToken)
	if err != nil {
		logrus.WithError(err).Error("meta: failed to list ad accounts")
		return nil, prismErrors.Ensure(string(domain.PlatformMeta), err)
	}

	accounts := make([]*domain.AdAccount, 0, len(rawAccounts))
	for _, raw := range rawAccounts {
		accounts = append(accounts, &domain.AdAccount{
			ID:       strings.TrimPrefix(raw.ID, "act_"),
			Name:     raw.Name,
			Platform: domain.PlatformMeta,
			Currency: raw.Currency,
			Timezone: raw.TimezoneName,
			Status:   mapAccountStatus(raw.AccountStatus),
		})
	}

	logrus.WithField("total_accounts", len(accounts)).Info("meta: successfully listed ad accounts")

	return accounts, nil
}

// Códigos de account_status da Graph API: 1 ativo, 101 fechado, demais
// variações (2, 3, 7, 9) tratadas como desabilitadas
func mapAccountStatus(status int) domain.AccountStatus {
	switch status {
	case 1:
		return domain.AccountStatusActive
	case 101:
		return domain.AccountStatusClosed
	default:
		return domain.AccountStatusDisabled
	}
}

// FetchCampaigns retorna as campanhas normalizadas na ordem de inserção da
// API, com métricas do período mescladas por ID de campanha
func (s *MetaIntegrator) FetchCampaigns(ctx context.Context, params integrator.FetchParams) ([]*domain.NormalizedCampaign, error) {
	campaigns, err := s.Client.GetCampaigns(ctx, params.Tokens.AccessToken, params.AccountID)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": params.AccountID,
			"error":      err.Error(),
		}).Error("meta: failed to get campaigns")
		return nil, prismErrors.Ensure(string(domain.PlatformMeta), err)
	}

	insightRows, err := s.Client.GetCampaignInsights(ctx, params.Tokens.AccessToken, params.AccountID, params.Range)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": params.AccountID,
			"error":      err.Error(),
		}).Error("meta: failed to get campaign insights")
		return nil, prismErrors.Ensure(string(domain.PlatformMeta), err)
	}

	metricsByCampaign := make(map[string]domain.NormalizedMetrics, len(insightRows))
	for i := range insightRows {
		row := &insightRows[i]
		metricsByCampaign[row.CampaignID] = rowMetrics(row, params.Range)
	}

	normalized := make([]*domain.NormalizedCampaign, 0, len(campaigns))
	for _, campaign := range campaigns {
		normalized = append(normalized, &domain.NormalizedCampaign{
			ID:        campaign.ID,
			Name:      campaign.Name,
			Status:    domain.MapMetaCampaignStatus(campaign.Status),
			Platform:  domain.PlatformMeta,
			Objective: campaign.Objective,
			Metrics:   metricsByCampaign[campaign.ID],
		})
	}

	return normalized, nil
}

// FetchAccountSummary dispara em paralelo os sub-fetches de metadados,
// campanhas, série diária e breakdowns; a comparação com o período anterior é
// best-effort e a falha dela não derruba a chamada
func (s *MetaIntegrator) FetchAccountSummary(ctx context.Context, params integrator.MetricsParams) (*domain.AccountSummary, error) {
	var (
		account    *domain.AdAccount
		campaigns  []*domain.NormalizedCampaign
		timeSeries []domain.TimeSeriesPoint
		breakdowns []domain.Breakdown

		accountErr    error
		campaignsErr  error
		timeSeriesErr error
		breakdownsErr error
	)

	wg := sync.WaitGroup{}
	wg.Add(4)

	go func() {
		defer wg.Done()
		account, accountErr = s.fetchAccountInfo(ctx, params)
	}()

	go func() {
		defer wg.Done()
		campaigns, campaignsErr = s.FetchCampaigns(ctx, integrator.FetchParams{
			AccountID: params.AccountID,
			Tokens:    params.Tokens,
			Range:     params.Range,
		})
	}()

	go func() {
		defer wg.Done()
		timeSeries, timeSeriesErr = s.fetchDailySeries(ctx, params)
	}()

	go func() {
		defer wg.Done()
		breakdowns, breakdownsErr = s.fetchBreakdowns(ctx, params)
	}()

	wg.Wait()

	for _, err := range []error{accountErr, campaignsErr, timeSeriesErr, breakdownsErr} {
		if err != nil {
			return nil, prismErrors.Ensure(string(domain.PlatformMeta), err)
		}
	}

	summary := &domain.AccountSummary{
		Account:    account,
		Metrics:    domain.AggregateCampaignMetrics(params.Range, campaigns),
		Campaigns:  campaigns,
		TimeSeries: timeSeries,
		Breakdowns: breakdowns,
	}

	if !params.SkipPreviousPeriod {
		summary.PreviousPeriodMetrics = s.fetchPreviousPeriodMetrics(ctx, params)
	}

	return summary, nil
}

func (s *MetaIntegrator) fetchAccountInfo(ctx context.Context, params integrator.MetricsParams) (*domain.AdAccount, error) {
	raw, err := s.Client.GetAccountInfo(ctx, params.Tokens.AccessToken, params.AccountID)
	if err != nil {
		return nil, err
	}

	return &domain.AdAccount{
		ID:       strings.TrimPrefix(raw.ID, "act_"),
		Name:     raw.Name,
		Platform: domain.PlatformMeta,
		Currency: raw.Currency,
		Timezone: raw.TimezoneName,
		Status:   mapAccountStatus(raw.AccountStatus),
	}, nil
}

func (s *MetaIntegrator) fetchDailySeries(ctx context.Context, params integrator.MetricsParams) ([]domain.TimeSeriesPoint, error) {
	rows, err := s.Client.GetDailyInsights(ctx, params.Tokens.AccessToken, params.AccountID, params.Range)
	if err != nil {
		return nil, err
	}

	points := make([]domain.TimeSeriesPoint, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		points = append(points, domain.TimeSeriesPoint{
			Date:    row.DateStart,
			Metrics: rowMetrics(row, params.Range),
		})
	}

	domain.SortTimeSeries(points)

	return points, nil
}

// A ordem da lista é a ordem dos breakdowns no resumo; chamadas repetidas com
// os mesmos parâmetros produzem resumos idênticos
var breakdownDimensions = []struct {
	apiName   string
	dimension domain.BreakdownDimension
}{
	{"age", domain.BreakdownAge},
	{"gender", domain.BreakdownGender},
	{"device_platform", domain.BreakdownDevice},
}

func (s *MetaIntegrator) fetchBreakdowns(ctx context.Context, params integrator.MetricsParams) ([]domain.Breakdown, error) {
	breakdowns := make([]domain.Breakdown, 0, len(breakdownDimensions))

	for _, entry := range breakdownDimensions {
		rows, err := s.Client.GetBreakdownInsights(ctx, params.Tokens.AccessToken, params.AccountID, entry.apiName, params.Range)
		if err != nil {
			return nil, err
		}

		segments := make([]domain.BreakdownSegment, 0, len(rows))
		for i := range rows {
			row := &rows[i]
			segments = append(segments, domain.BreakdownSegment{
				Label:   breakdownLabel(row, entry.apiName),
				Metrics: rowMetrics(row, params.Range),
			})
		}

		breakdowns = append(breakdowns, domain.Breakdown{
			Dimension: entry.dimension,
			Segments:  segments,
		})
	}

	return breakdowns, nil
}

func breakdownLabel(row *metadomain.InsightRow, apiName string) string {
	switch apiName {
	case "age":
		return row.Age
	case "gender":
		return row.Gender
	case "device_platform":
		return row.DevicePlatform
	}
	return ""
}

// fetchPreviousPeriodMetrics busca as métricas do período imediatamente
// anterior; qualquer falha é engolida e a comparação fica ausente
func (s *MetaIntegrator) fetchPreviousPeriodMetrics(ctx context.Context, params integrator.MetricsParams) *domain.NormalizedMetrics {
	previousRange := params.Range.PreviousPeriod()

	rows, err := s.Client.GetCampaignInsights(ctx, params.Tokens.AccessToken, params.AccountID, previousRange)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"account_id": params.AccountID,
			"error":      err.Error(),
		}).Warn("meta: previous period fetch failed, continuing without comparison")
		return nil
	}

	total := domain.NormalizedMetrics{DateRange: previousRange}
	for i := range rows {
		total = total.Add(rowMetrics(&rows[i], previousRange))
	}
	total = total.WithDerived()

	return &total
}

// rowMetrics normaliza uma linha de insights, extraindo conversões e receita
// pela allow-list ordenada de tipos de ação
func rowMetrics(row *metadomain.InsightRow, rng domain.DateRange) domain.NormalizedMetrics {
	return domain.NormalizedMetrics{
		Spend:       row.SpendValue(),
		Impressions: row.ImpressionsValue(),
		Clicks:      row.ClicksValue(),
		Conversions: row.PurchaseCount(),
		Revenue:     row.PurchaseValue(),
		DateRange:   rng,
	}.WithDerived()
}
