package meta

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator"
	metadomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

// fakeClient cobre a interface do metaclient com funções plugáveis por teste
type fakeClient struct {
	exchangeCode           func(ctx context.Context, code, redirectURI string) (*metadomain.TokenResponse, error)
	exchangeLongLivedToken func(ctx context.Context, accessToken string) (*metadomain.TokenResponse, error)
	getAdAccounts          func(ctx context.Context, accessToken string) ([]metadomain.AdAccount, error)
	getAccountInfo         func(ctx context.Context, accessToken, accountID string) (*metadomain.AdAccount, error)
	getCampaigns           func(ctx context.Context, accessToken, accountID string) ([]metadomain.Campaign, error)
	getCampaignInsights    func(ctx context.Context, accessToken, accountID string, rng domain.DateRange) ([]metadomain.InsightRow, error)
	getDailyInsights       func(ctx context.Context, accessToken, accountID string, rng domain.DateRange) ([]metadomain.InsightRow, error)
	getBreakdownInsights   func(ctx context.Context, accessToken, accountID, breakdown string, rng domain.DateRange) ([]metadomain.InsightRow, error)
}

func (f *fakeClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*metadomain.TokenResponse, error) {
	return f.exchangeCode(ctx, code, redirectURI)
}

func (f *fakeClient) ExchangeLongLivedToken(ctx context.Context, accessToken string) (*metadomain.TokenResponse, error) {
	return f.exchangeLongLivedToken(ctx, accessToken)
}

func (f *fakeClient) GetAdAccounts(ctx context.Context, accessToken string) ([]metadomain.AdAccount, error) {
	return f.getAdAccounts(ctx, accessToken)
}

func (f *fakeClient) GetAccountInfo(ctx context.Context, accessToken, accountID string) (*metadomain.AdAccount, error) {
	return f.getAccountInfo(ctx, accessToken, accountID)
}

func (f *fakeClient) GetCampaigns(ctx context.Context, accessToken, accountID string) ([]metadomain.Campaign, error) {
	return f.getCampaigns(ctx, accessToken, accountID)
}

func (f *fakeClient) GetCampaignInsights(ctx context.Context, accessToken, accountID string, rng domain.DateRange) ([]metadomain.InsightRow, error) {
	return f.getCampaignInsights(ctx, accessToken, accountID, rng)
}

func (f *fakeClient) GetDailyInsights(ctx context.Context, accessToken, accountID string, rng domain.DateRange) ([]metadomain.InsightRow, error) {
	return f.getDailyInsights(ctx, accessToken, accountID, rng)
}

func (f *fakeClient) GetBreakdownInsights(ctx context.Context, accessToken, accountID, breakdown string, rng domain.DateRange) ([]metadomain.InsightRow, error) {
	return f.getBreakdownInsights(ctx, accessToken, accountID, breakdown, rng)
}

func metaConfig() *config.Config {
	return &config.Config{
		Meta: config.Meta{
			AppID:   "app-123",
			Version: "v19.0",
		},
	}
}

func metaRange() domain.DateRange {
	return domain.NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	)
}

func TestGetAuthURL(t *testing.T) {
	svc := New(metaConfig(), nil)

	authURL := svc.GetAuthURL("https://api.example.com/callback", "state-abc")

	assert.Contains(t, authURL, "https://www.facebook.com/v19.0/dialog/oauth?")
	assert.Contains(t, authURL, "client_id=app-123")
	assert.Contains(t, authURL, "state=state-abc")
}

func TestAuthorize_TwoStepTokenExchange(t *testing.T) {
	client := &fakeClient{
		exchangeCode: func(_ context.Context, code, redirectURI string) (*metadomain.TokenResponse, error) {
			assert.Equal(t, "auth-code", code)
			assert.Equal(t, "https://api.example.com/callback", redirectURI)
			return &metadomain.TokenResponse{AccessToken: "short-lived"}, nil
		},
		exchangeLongLivedToken: func(_ context.Context, accessToken string) (*metadomain.TokenResponse, error) {
			assert.Equal(t, "short-lived", accessToken)
			return &metadomain.TokenResponse{
				AccessToken: "long-lived",
				ExpiresIn:   5184000, // 60 dias
			}, nil
		},
	}
	svc := New(metaConfig(), client)

	tokens, err := svc.Authorize(context.Background(), integrator.AuthorizeParams{
		Code:        "auth-code",
		RedirectURI: "https://api.example.com/callback",
	})
	require.NoError(t, err)

	assert.Equal(t, "long-lived", tokens.AccessToken)
	assert.Equal(t, domain.PlatformMeta, tokens.Platform)

	// A expiração registrada antecipa a real em um dia
	require.NotNil(t, tokens.ExpiresAt)
	expected := time.Now().Add(5184000 * time.Second).Add(-24 * time.Hour)
	assert.WithinDuration(t, expected, *tokens.ExpiresAt, 5*time.Second)
}

func TestRefreshToken_WithoutAccessToken(t *testing.T) {
	svc := New(metaConfig(), nil)

	_, err := svc.RefreshToken(context.Background(), &domain.TokenSet{})

	classified, ok := prismErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, prismErrors.KindTokenExpired, classified.Kind)
}

func TestRefreshToken_ReExchangesCurrentToken(t *testing.T) {
	client := &fakeClient{
		exchangeLongLivedToken: func(_ context.Context, accessToken string) (*metadomain.TokenResponse, error) {
			assert.Equal(t, "current", accessToken)
			return &metadomain.TokenResponse{AccessToken: "renewed", ExpiresIn: 5184000}, nil
		},
	}
	svc := New(metaConfig(), client)

	refreshed, err := svc.RefreshToken(context.Background(), &domain.TokenSet{AccessToken: "current"})
	require.NoError(t, err)
	assert.Equal(t, "renewed", refreshed.AccessToken)
}

func TestListAccounts_StripsActPrefix(t *testing.T) {
	client := &fakeClient{
		getAdAccounts: func(_ context.Context, _ string) ([]metadomain.AdAccount, error) {
			return []metadomain.AdAccount{
				{ID: "act_123", Name: "Acme", Currency: "USD", TimezoneName: "America/New_York", AccountStatus: 1},
				{ID: "act_456", Name: "Acme Legacy", AccountStatus: 101},
			}, nil
		},
	}
	svc := New(metaConfig(), client)

	accounts, err := svc.ListAccounts(context.Background(), &domain.TokenSet{AccessToken: "token"})
	require.NoError(t, err)

	require.Len(t, accounts, 2)
	assert.Equal(t, "123", accounts[0].ID)
	assert.Equal(t, domain.AccountStatusActive, accounts[0].Status)
	assert.Equal(t, "456", accounts[1].ID)
	assert.Equal(t, domain.AccountStatusClosed, accounts[1].Status)
}

func TestMapAccountStatus(t *testing.T) {
	assert.Equal(t, domain.AccountStatusActive, mapAccountStatus(1))
	assert.Equal(t, domain.AccountStatusClosed, mapAccountStatus(101))
	assert.Equal(t, domain.AccountStatusDisabled, mapAccountStatus(2))
	assert.Equal(t, domain.AccountStatusDisabled, mapAccountStatus(7))
}

func TestFetchCampaigns_MergesInsightsByCampaignID(t *testing.T) {
	client := &fakeClient{
		getCampaigns: func(_ context.Context, _, accountID string) ([]metadomain.Campaign, error) {
			assert.Equal(t, "123", accountID)
			return []metadomain.Campaign{
				{ID: "c1", Name: "Prospecting", Status: "ACTIVE", Objective: "OUTCOME_SALES"},
				{ID: "c2", Name: "Retargeting", Status: "PAUSED", Objective: "OUTCOME_SALES"},
			}, nil
		},
		getCampaignInsights: func(_ context.Context, _, _ string, _ domain.DateRange) ([]metadomain.InsightRow, error) {
			return []metadomain.InsightRow{
				{
					CampaignID:   "c1",
					Spend:        "100.00",
					Impressions:  "5000",
					Clicks:       "120",
					Actions:      []metadomain.Action{{ActionType: "purchase", Value: "8"}},
					ActionValues: []metadomain.Action{{ActionType: "purchase", Value: "400.00"}},
				},
			}, nil
		},
	}
	svc := New(metaConfig(), client)

	campaigns, err := svc.FetchCampaigns(context.Background(), integrator.FetchParams{
		AccountID: "123",
		Tokens:    &domain.TokenSet{AccessToken: "token"},
		Range:     metaRange(),
	})
	require.NoError(t, err)

	require.Len(t, campaigns, 2)
	assert.Equal(t, "Prospecting", campaigns[0].Name)
	assert.Equal(t, domain.CampaignStatusActive, campaigns[0].Status)
	assert.Equal(t, 100.0, campaigns[0].Metrics.Spend)
	assert.Equal(t, 8.0, campaigns[0].Metrics.Conversions)
	assert.Equal(t, 400.0, campaigns[0].Metrics.Revenue)
	assert.Equal(t, 4.0, campaigns[0].Metrics.ROAS)

	// Campanha sem linha de insights fica com métricas zeradas
	assert.Equal(t, domain.CampaignStatusPaused, campaigns[1].Status)
	assert.Equal(t, 0.0, campaigns[1].Metrics.Spend)
}

func TestFetchAccountSummary_RepeatedCallsAreIdentical(t *testing.T) {
	client := &fakeClient{
		getAccountInfo: func(_ context.Context, _, _ string) (*metadomain.AdAccount, error) {
			return &metadomain.AdAccount{ID: "act_123", Name: "Acme", Currency: "USD", AccountStatus: 1}, nil
		},
		getCampaigns: func(_ context.Context, _, _ string) ([]metadomain.Campaign, error) {
			return []metadomain.Campaign{
				{ID: "c1", Name: "Prospecting", Status: "ACTIVE", Objective: "OUTCOME_SALES"},
			}, nil
		},
		getCampaignInsights: func(_ context.Context, _, _ string, _ domain.DateRange) ([]metadomain.InsightRow, error) {
			return []metadomain.InsightRow{
				{CampaignID: "c1", Spend: "100.00", Impressions: "5000", Clicks: "120"},
			}, nil
		},
		getDailyInsights: func(_ context.Context, _, _ string, _ domain.DateRange) ([]metadomain.InsightRow, error) {
			return []metadomain.InsightRow{
				{DateStart: "2024-03-01", Spend: "50.00"},
				{DateStart: "2024-03-02", Spend: "50.00"},
			}, nil
		},
		getBreakdownInsights: func(_ context.Context, _, _, breakdown string, _ domain.DateRange) ([]metadomain.InsightRow, error) {
			switch breakdown {
			case "age":
				return []metadomain.InsightRow{{Age: "25-34", Spend: "60.00"}}, nil
			case "gender":
				return []metadomain.InsightRow{{Gender: "female", Spend: "70.00"}}, nil
			default:
				return []metadomain.InsightRow{{DevicePlatform: "mobile", Spend: "80.00"}}, nil
			}
		},
	}
	svc := New(metaConfig(), client)

	params := integrator.MetricsParams{
		AccountID: "123",
		Tokens:    &domain.TokenSet{AccessToken: "token"},
		Range:     metaRange(),
	}

	first, err := svc.FetchAccountSummary(context.Background(), params)
	require.NoError(t, err)

	expectedOrder := []domain.BreakdownDimension{
		domain.BreakdownAge,
		domain.BreakdownGender,
		domain.BreakdownDevice,
	}
	require.Len(t, first.Breakdowns, 3)
	for i, breakdown := range first.Breakdowns {
		assert.Equal(t, expectedOrder[i], breakdown.Dimension)
	}

	// Entradas idênticas produzem resumos idênticos, inclusive na ordem dos
	// breakdowns montados em paralelo
	for i := 0; i < 50; i++ {
		again, err := svc.FetchAccountSummary(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
