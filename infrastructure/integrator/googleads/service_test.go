package googleads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator"
	googledomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/googleads/domain"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

// fakeClient cobre a interface do googleclient com funções plugáveis por teste
type fakeClient struct {
	exchangeCode            func(ctx context.Context, code, redirectURI string) (*googledomain.TokenResponse, error)
	refreshAccessToken      func(ctx context.Context, refreshToken string) (*googledomain.TokenResponse, error)
	listAccessibleCustomers func(ctx context.Context, accessToken string) ([]string, error)
	searchStream            func(ctx context.Context, accessToken, customerID, loginCustomerID, query string) ([]googledomain.Row, error)
}

func (f *fakeClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*googledomain.TokenResponse, error) {
	return f.exchangeCode(ctx, code, redirectURI)
}

func (f *fakeClient) RefreshAccessToken(ctx context.Context, refreshToken string) (*googledomain.TokenResponse, error) {
	return f.refreshAccessToken(ctx, refreshToken)
}

func (f *fakeClient) ListAccessibleCustomers(ctx context.Context, accessToken string) ([]string, error) {
	return f.listAccessibleCustomers(ctx, accessToken)
}

func (f *fakeClient) SearchStream(ctx context.Context, accessToken, customerID, loginCustomerID, query string) ([]googledomain.Row, error) {
	return f.searchStream(ctx, accessToken, customerID, loginCustomerID, query)
}

func fetchParamsFor(accountID, loginCustomerID string, rng domain.DateRange) integrator.FetchParams {
	return integrator.FetchParams{
		AccountID: accountID,
		Tokens: &domain.TokenSet{
			AccessToken:     "token",
			LoginCustomerID: loginCustomerID,
		},
		Range: rng,
	}
}

func googleConfig() *config.Config {
	return &config.Config{
		Google: config.Google{
			AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			ClientID: "client-id",
		},
	}
}

func TestGetAuthURL_RequestsOfflineAccess(t *testing.T) {
	svc := New(googleConfig(), nil)

	authURL := svc.GetAuthURL("https://api.example.com/callback", "state-abc")

	assert.Contains(t, authURL, "https://accounts.google.com/o/oauth2/v2/auth?")
	assert.Contains(t, authURL, "access_type=offline")
	assert.Contains(t, authURL, "prompt=consent")
	assert.Contains(t, authURL, "state=state-abc")
}

func TestRefreshToken_WithoutRefreshToken(t *testing.T) {
	svc := New(googleConfig(), nil)

	_, err := svc.RefreshToken(context.Background(), &domain.TokenSet{AccessToken: "only-access"})

	classified, ok := prismErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, prismErrors.KindTokenExpired, classified.Kind)
}

func TestRefreshToken_KeepsRefreshTokenWhenOmitted(t *testing.T) {
	client := &fakeClient{
		refreshAccessToken: func(_ context.Context, refreshToken string) (*googledomain.TokenResponse, error) {
			assert.Equal(t, "refresh-1", refreshToken)
			return &googledomain.TokenResponse{
				AccessToken: "access-2",
				ExpiresIn:   3600,
			}, nil
		},
	}
	svc := New(googleConfig(), client)

	refreshed, err := svc.RefreshToken(context.Background(), &domain.TokenSet{
		AccessToken:     "access-1",
		RefreshToken:    "refresh-1",
		LoginCustomerID: "999",
	})
	require.NoError(t, err)

	assert.Equal(t, "access-2", refreshed.AccessToken)
	// O Google só devolve o refresh token na primeira troca
	assert.Equal(t, "refresh-1", refreshed.RefreshToken)
	assert.Equal(t, "999", refreshed.LoginCustomerID)
	require.NotNil(t, refreshed.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *refreshed.ExpiresAt, 5*time.Second)
}

func TestListAccounts_TwoStepDiscovery(t *testing.T) {
	client := &fakeClient{
		listAccessibleCustomers: func(_ context.Context, _ string) ([]string, error) {
			return []string{"111"}, nil
		},
		searchStream: func(_ context.Context, _, customerID, _, _ string) ([]googledomain.Row, error) {
			assert.Equal(t, "111", customerID)
			return []googledomain.Row{
				{CustomerClient: &googledomain.CustomerClient{ID: "111", DescriptiveName: "Manager", Manager: true, Status: "ENABLED"}},
				{CustomerClient: &googledomain.CustomerClient{ID: "222", DescriptiveName: "Sub Account", CurrencyCode: "USD", TimeZone: "America/New_York", Status: "ENABLED"}},
			}, nil
		},
	}
	svc := New(googleConfig(), client)

	accounts, err := svc.ListAccounts(context.Background(), &domain.TokenSet{AccessToken: "token"})
	require.NoError(t, err)

	// Managers são filtrados; a sub-conta aponta para o manager pai
	require.Len(t, accounts, 1)
	assert.Equal(t, "222", accounts[0].ID)
	assert.Equal(t, "Sub Account", accounts[0].Name)
	assert.Equal(t, "111", accounts[0].ManagerID)
	assert.Equal(t, domain.AccountStatusActive, accounts[0].Status)
}

func TestListAccounts_UnqueryableCustomerKeepsPlaceholder(t *testing.T) {
	client := &fakeClient{
		listAccessibleCustomers: func(_ context.Context, _ string) ([]string, error) {
			return []string{"333"}, nil
		},
		searchStream: func(_ context.Context, _, _, _, _ string) ([]googledomain.Row, error) {
			return nil, prismErrors.NewAccountAccess("google", "developer token not approved")
		},
	}
	svc := New(googleConfig(), client)

	accounts, err := svc.ListAccounts(context.Background(), &domain.TokenSet{AccessToken: "token"})
	require.NoError(t, err)

	require.Len(t, accounts, 1)
	assert.Equal(t, "333", accounts[0].ID)
	assert.Equal(t, domain.AccountStatusDisabled, accounts[0].Status)
}

func TestFetchCampaigns_ConvertsCostMicros(t *testing.T) {
	client := &fakeClient{
		searchStream: func(_ context.Context, _, customerID, loginCustomerID, query string) ([]googledomain.Row, error) {
			assert.Equal(t, "222", customerID)
			assert.Equal(t, "111", loginCustomerID)
			assert.Contains(t, query, "FROM campaign")
			return []googledomain.Row{
				{
					Campaign: &googledomain.Campaign{ID: "c1", Name: "Search Brand", Status: "ENABLED", AdvertisingChannelType: "SEARCH"},
					Metrics: &googledomain.Metrics{
						CostMicros:       "2500000",
						Impressions:      "1000",
						Clicks:           "50",
						Conversions:      4,
						ConversionsValue: 200,
					},
				},
			}, nil
		},
	}
	svc := New(googleConfig(), client)

	rng := domain.NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	)
	campaigns, err := svc.FetchCampaigns(context.Background(), fetchParamsFor("222", "111", rng))
	require.NoError(t, err)

	require.Len(t, campaigns, 1)
	assert.Equal(t, "Search Brand", campaigns[0].Name)
	assert.Equal(t, domain.CampaignStatusActive, campaigns[0].Status)
	assert.Equal(t, 2.5, campaigns[0].Metrics.Spend)
	assert.Equal(t, int64(1000), campaigns[0].Metrics.Impressions)
	assert.Equal(t, int64(50), campaigns[0].Metrics.Clicks)
	assert.Equal(t, 200.0, campaigns[0].Metrics.Revenue)
	assert.Equal(t, 80.0, campaigns[0].Metrics.ROAS)
}

func TestMapCustomerStatus(t *testing.T) {
	assert.Equal(t, domain.AccountStatusActive, mapCustomerStatus("ENABLED"))
	assert.Equal(t, domain.AccountStatusClosed, mapCustomerStatus("CANCELED"))
	assert.Equal(t, domain.AccountStatusClosed, mapCustomerStatus("CLOSED"))
	assert.Equal(t, domain.AccountStatusDisabled, mapCustomerStatus("SUSPENDED"))
}

func TestRowMetrics_NilMetrics(t *testing.T) {
	rng := domain.NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	)
	metrics := rowMetrics(nil, rng)
	assert.Equal(t, 0.0, metrics.Spend)
	assert.Equal(t, rng, metrics.DateRange)
}
