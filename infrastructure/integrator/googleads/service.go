package googleads

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator"
	googledomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/googleads/googleclient"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const adsScope = "https://www.googleapis.com/auth/adwords"

type GoogleAdsIntegrator struct {
	cfg    *config.Config
	Client googleclient.Client
}

func New(cfg *config.Config, client googleclient.Client) *GoogleAdsIntegrator {
	return &GoogleAdsIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

func (s *GoogleAdsIntegrator) Platform() domain.Platform {
	return domain.PlatformGoogle
}

// GetAuthURL monta a URL de autorização; access_type=offline e prompt=consent
// garantem a emissão de um refresh token em toda autorização
func (s *GoogleAdsIntegrator) GetAuthURL(redirectURI, state string) string {
	params := url.Values{}
	params.Add("client_id", s.cfg.Google.ClientID)
	params.Add("redirect_uri", redirectURI)
	params.Add("state", state)
	params.Add("scope", adsScope)
	params.Add("response_type", "code")
	params.Add("access_type", "offline")
	params.Add("prompt", "consent")

	return s.cfg.Google.AuthURL + "?" + params.Encode()
}

func (s *GoogleAdsIntegrator) Authorize(ctx context.Context, params integrator.AuthorizeParams) (*domain.TokenSet, error) {
	resp, err := s.Client.ExchangeCode(ctx, params.Code, params.RedirectURI)
	if err != nil {
		logrus.WithError(err).Error("googleads: failed to exchange authorization code")
		return nil, prismErrors.Ensure(string(domain.PlatformGoogle), err)
	}

	return s.tokenSetFromResponse(resp, ""), nil
}

// RefreshToken renova o access token; sem refresh token só resta reconectar
func (s *GoogleAdsIntegrator) RefreshToken(ctx context.Context, tokens *domain.TokenSet) (*domain.TokenSet, error) {
	if tokens == nil || tokens.RefreshToken == "" {
		return nil, prismErrors.NewTokenExpired(string(domain.PlatformGoogle), "no refresh token available, reauthorization required")
	}

	resp, err := s.Client.RefreshAccessToken(ctx, tokens.RefreshToken)
	if err != nil {
		logrus.WithError(err).Error("googleads: failed to refresh access token")
		return nil, prismErrors.Ensure(string(domain.PlatformGoogle), err)
	}

	refreshed := s.tokenSetFromResponse(resp, tokens.LoginCustomerID)
	if refreshed.RefreshToken == "" {
		// O Google só devolve o refresh token na primeira troca
		refreshed.RefreshToken = tokens.RefreshToken
	}

	return refreshed, nil
}

func (s *GoogleAdsIntegrator) tokenSetFromResponse(resp *googledomain.TokenResponse, loginCustomerID string) *domain.TokenSet {
	tokens := &domain.TokenSet{
		AccessToken:     resp.AccessToken,
		RefreshToken:    resp.RefreshToken,
		Scopes:          strings.Fields(resp.Scope),
		Platform:        domain.PlatformGoogle,
		LoginCustomerID: loginCustomerID,
	}

	if resp.ExpiresIn > 0 {
		expiresAt := time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		tokens.ExpiresAt = &expiresAt
	}

	return tokens
}

const customerClientQuery = `SELECT customer_client.id, customer_client.descriptive_name, customer_client.currency_code, customer_client.time_zone, customer_client.manager, customer_client.status FROM customer_client`

// ListAccounts faz a descoberta em duas etapas: lista os customers acessíveis
// e consulta cada um pelos sub-clientes, marcando o manager pai quando
// existir. Customers não consultáveis entram como placeholder em vez de serem
// descartados silenciosamente.
func (s *GoogleAdsIntegrator) ListAccounts(ctx context.Context, tokens *domain.TokenSet) ([]*domain.AdAccount, error) {
	customerIDs, err := s.Client.ListAccessibleCustomers(ctx, tokens.AccessToken)
	if err != nil {
		logrus.WithError(err).Error("googleads: failed to list accessible customers")
		return nil, prismErrors.Ensure(string(domain.PlatformGoogle), err)
	}

	accounts := make([]*domain.AdAccount, 0, len(customerIDs))
	seen := make(map[string]struct{})

	for _, customerID := range customerIDs {
		rows, err := s.Client.SearchStream(ctx, tokens.AccessToken, customerID, tokens.LoginCustomerID, customerClientQuery)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"customer_id": customerID,
				"error":       err.Error(),
			}).Warn("googleads: customer not queryable, keeping placeholder")

			if _, ok := seen[customerID]; !ok {
				seen[customerID] = struct{}{}
				accounts = append(accounts, &domain.AdAccount{
					ID:       customerID,
					Name:     customerID,
					Platform: domain.PlatformGoogle,
					Status:   domain.AccountStatusDisabled,
				})
			}
			continue
		}

		for _, row := range rows {
			client := row.CustomerClient
			if client == nil || client.Manager {
				continue
			}

			if _, ok := seen[client.ID]; ok {
				continue
			}
			seen[client.ID] = struct{}{}

			account := &domain.AdAccount{
				ID:       client.ID,
				Name:     client.DescriptiveName,
				Platform: domain.PlatformGoogle,
				Currency: client.CurrencyCode,
				Timezone: client.TimeZone,
				Status:   mapCustomerStatus(client.Status),
			}

			// Sub-contas guardam o manager pai para rotear requisições
			// futuras via login-customer-id
			if client.ID != customerID {
				account.ManagerID = customerID
			}

			accounts = append(accounts, account)
		}
	}

	logrus.WithField("total_accounts", len(accounts)).Info("googleads: successfully listed accounts")

	return accounts, nil
}

func mapCustomerStatus(status string) domain.AccountStatus {
	switch status {
	case "ENABLED":
		return domain.AccountStatusActive
	case "CANCELED", "CLOSED":
		return domain.AccountStatusClosed
	default:
		return domain.AccountStatusDisabled
	}
}

// FetchCampaigns consulta as campanhas do período ordenadas por gasto
// decrescente, como o GAQL permite fazer direto no ORDER BY
func (s *GoogleAdsIntegrator) FetchCampaigns(ctx context.Context, params integrator.FetchParams) ([]*domain.NormalizedCampaign, error) {
	query := fmt.Sprintf(
		`SELECT campaign.id, campaign.name, campaign.status, campaign.advertising_channel_type, metrics.cost_micros, metrics.impressions, metrics.clicks, metrics.conversions, metrics.conversions_value FROM campaign WHERE segments.date BETWEEN '%s' AND '%s' ORDER BY metrics.cost_micros DESC`,
		params.Range.Start.Format(time.DateOnly),
		params.Range.End.Format(time.DateOnly),
	)

	rows, err := s.Client.SearchStream(ctx, params.Tokens.AccessToken, params.AccountID, params.Tokens.LoginCustomerID, query)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": params.AccountID,
			"error":       err.Error(),
		}).Error("googleads: failed to fetch campaigns")
		return nil, prismErrors.Ensure(string(domain.PlatformGoogle), err)
	}

	campaigns := make([]*domain.NormalizedCampaign, 0, len(rows))
	for _, row := range rows {
		if row.Campaign == nil {
			continue
		}

		campaigns = append(campaigns, &domain.NormalizedCampaign{
			ID:        row.Campaign.ID,
			Name:      row.Campaign.Name,
			Status:    domain.MapGoogleCampaignStatus(row.Campaign.Status),
			Platform:  domain.PlatformGoogle,
			Objective: row.Campaign.AdvertisingChannelType,
			Metrics:   rowMetrics(row.Metrics, params.Range),
		})
	}

	return campaigns, nil
}

// FetchAccountSummary dispara em paralelo metadados, campanhas, série diária
// e breakdown por dispositivo; a comparação com o período anterior é
// best-effort
func (s *GoogleAdsIntegrator) FetchAccountSummary(ctx context.Context, params integrator.MetricsParams) (*domain.AccountSummary, error) {
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
		breakdowns, breakdownsErr = s.fetchDeviceBreakdown(ctx, params)
	}()

	wg.Wait()

	for _, err := range []error{accountErr, campaignsErr, timeSeriesErr, breakdownsErr} {
		if err != nil {
			return nil, prismErrors.Ensure(string(domain.PlatformGoogle), err)
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

func (s *GoogleAdsIntegrator) fetchAccountInfo(ctx context.Context, params integrator.MetricsParams) (*domain.AdAccount, error) {
	query := `SELECT customer.id, customer.descriptive_name, customer.currency_code, customer.time_zone, customer.status FROM customer`

	rows, err := s.Client.SearchStream(ctx, params.Tokens.AccessToken, params.AccountID, params.Tokens.LoginCustomerID, query)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 || rows[0].Customer == nil {
		return nil, prismErrors.NewDataValidation(string(domain.PlatformGoogle), "customer query returned no rows")
	}

	customer := rows[0].Customer

	return &domain.AdAccount{
		ID:       customer.ID,
		Name:     customer.DescriptiveName,
		Platform: domain.PlatformGoogle,
		Currency: customer.CurrencyCode,
		Timezone: customer.TimeZone,
		Status:   mapCustomerStatus(customer.Status),
	}, nil
}

func (s *GoogleAdsIntegrator) fetchDailySeries(ctx context.Context, params integrator.MetricsParams) ([]domain.TimeSeriesPoint, error) {
	query := fmt.Sprintf(
		`SELECT segments.date, metrics.cost_micros, metrics.impressions, metrics.clicks, metrics.conversions, metrics.conversions_value FROM customer WHERE segments.date BETWEEN '%s' AND '%s' ORDER BY segments.date`,
		params.Range.Start.Format(time.DateOnly),
		params.Range.End.Format(time.DateOnly),
	)

	rows, err := s.Client.SearchStream(ctx, params.Tokens.AccessToken, params.AccountID, params.Tokens.LoginCustomerID, query)
	if err != nil {
		return nil, err
	}

	points := make([]domain.TimeSeriesPoint, 0, len(rows))
	for _, row := range rows {
		if row.Segments == nil {
			continue
		}
		points = append(points, domain.TimeSeriesPoint{
			Date:    row.Segments.Date,
			Metrics: rowMetrics(row.Metrics, params.Range),
		})
	}

	domain.SortTimeSeries(points)

	return points, nil
}

func (s *GoogleAdsIntegrator) fetchDeviceBreakdown(ctx context.Context, params integrator.MetricsParams) ([]domain.Breakdown, error) {
	query := fmt.Sprintf(
		`SELECT segments.device, metrics.cost_micros, metrics.impressions, metrics.clicks, metrics.conversions, metrics.conversions_value FROM customer WHERE segments.date BETWEEN '%s' AND '%s'`,
		params.Range.Start.Format(time.DateOnly),
		params.Range.End.Format(time.DateOnly),
	)

	rows, err := s.Client.SearchStream(ctx, params.Tokens.AccessToken, params.AccountID, params.Tokens.LoginCustomerID, query)
	if err != nil {
		return nil, err
	}

	segments := make([]domain.BreakdownSegment, 0, len(rows))
	for _, row := range rows {
		if row.Segments == nil {
			continue
		}
		segments = append(segments, domain.BreakdownSegment{
			Label:   strings.ToLower(row.Segments.Device),
			Metrics: rowMetrics(row.Metrics, params.Range),
		})
	}

	return []domain.Breakdown{
		{
			Dimension: domain.BreakdownDevice,
			Segments:  segments,
		},
	}, nil
}

func (s *GoogleAdsIntegrator) fetchPreviousPeriodMetrics(ctx context.Context, params integrator.MetricsParams) *domain.NormalizedMetrics {
	previousRange := params.Range.PreviousPeriod()

	campaigns, err := s.FetchCampaigns(ctx, integrator.FetchParams{
		AccountID: params.AccountID,
		Tokens:    params.Tokens,
		Range:     previousRange,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"customer_id": params.AccountID,
			"error":       err.Error(),
		}).Warn("googleads: previous period fetch failed, continuing without comparison")
		return nil
	}

	total := domain.AggregateCampaignMetrics(previousRange, campaigns)

	return &total
}

func rowMetrics(metrics *googledomain.Metrics, rng domain.DateRange) domain.NormalizedMetrics {
	if metrics == nil {
		return domain.NormalizedMetrics{DateRange: rng}.WithDerived()
	}

	return domain.NormalizedMetrics{
		Spend:       metrics.Cost(),
		Impressions: metrics.ImpressionsValue(),
		Clicks:      metrics.ClicksValue(),
		Conversions: metrics.Conversions,
		Revenue:     metrics.ConversionsValue,
		DateRange:   rng,
	}.WithDerived()
}
