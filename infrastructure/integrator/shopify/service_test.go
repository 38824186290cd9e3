package shopify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	shopifydomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/shopify/domain"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

func shopRange() domain.DateRange {
	return domain.NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	)
}

func TestRefreshToken_NotSupportedForOfflineTokens(t *testing.T) {
	svc := New(&config.Config{}, nil)

	_, err := svc.RefreshToken(context.Background(), &domain.TokenSet{AccessToken: "offline"})

	classified, ok := prismErrors.As(err)
	require.True(t, ok)
	assert.Equal(t, prismErrors.KindTokenExpired, classified.Kind)
	assert.Equal(t, prismErrors.CodeRefreshUnsupport, classified.Code)
	assert.Equal(t, prismErrors.RecoveryReconnect, classified.Recovery())
}

func TestGetAuthURL_UsesShopTemplate(t *testing.T) {
	svc := New(&config.Config{
		Shopify: config.Shopify{
			APIKey: "key-123",
			Scopes: "read_orders,read_products",
		},
	}, nil)

	authURL := svc.GetAuthURL("https://api.example.com/callback", "state-abc")

	assert.Contains(t, authURL, "https://{shop}/admin/oauth/authorize?")
	assert.Contains(t, authURL, "client_id=key-123")
	assert.Contains(t, authURL, "state=state-abc")
}

func TestSummarizeOrders_NewVersusReturningCustomers(t *testing.T) {
	orders := []shopifydomain.Order{
		{TotalPrice: "100.00", Customer: &shopifydomain.Customer{OrdersCount: 1}},
		{TotalPrice: "50.00", Customer: &shopifydomain.Customer{OrdersCount: 5}},
		{TotalPrice: "25.50", Customer: nil},
	}

	metrics := summarizeOrders(orders, shopRange())

	assert.Equal(t, int64(3), metrics.Orders)
	assert.Equal(t, 175.50, metrics.Revenue)
	assert.InDelta(t, 58.5, metrics.AvgOrderValue, 0.0001)

	// orders_count <= 1 é cliente novo; pedidos sem cliente contam como recorrentes
	assert.Equal(t, int64(1), metrics.NewCustomers)
	assert.Equal(t, int64(2), metrics.ReturningCustomers)
}

func TestSummarizeOrders_Empty(t *testing.T) {
	metrics := summarizeOrders(nil, shopRange())

	assert.Equal(t, int64(0), metrics.Orders)
	assert.Equal(t, 0.0, metrics.Revenue)
	assert.Equal(t, 0.0, metrics.AvgOrderValue)
}

func TestTopProducts_RanksByRevenue(t *testing.T) {
	orders := []shopifydomain.Order{
		{
			LineItems: []shopifydomain.LineItem{
				{Title: "Shirt", Quantity: 2, Price: "30.00"},
				{Title: "Hat", Quantity: 1, Price: "15.00"},
			},
		},
		{
			LineItems: []shopifydomain.LineItem{
				{Title: "Shirt", Quantity: 1, Price: "30.00"},
				{Title: "Shoes", Quantity: 1, Price: "120.00"},
			},
		},
	}

	products := topProducts(orders)

	require.Len(t, products, 3)
	assert.Equal(t, "Shoes", products[0].Title)
	assert.Equal(t, 120.0, products[0].Revenue)
	assert.Equal(t, "Shirt", products[1].Title)
	assert.Equal(t, 90.0, products[1].Revenue)
	assert.Equal(t, int64(3), products[1].Quantity)
	assert.Equal(t, "Hat", products[2].Title)
}

func TestTopProducts_CapsAtFive(t *testing.T) {
	order := shopifydomain.Order{}
	for _, title := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		order.LineItems = append(order.LineItems, shopifydomain.LineItem{
			Title: title, Quantity: 1, Price: "10.00",
		})
	}

	products := topProducts([]shopifydomain.Order{order})
	assert.Len(t, products, 5)
}

func TestDailyRevenueSeries_FillsMissingDays(t *testing.T) {
	orders := []shopifydomain.Order{
		{TotalPrice: "40.00", CreatedAt: "2024-03-01T10:00:00Z"},
		{TotalPrice: "60.00", CreatedAt: "2024-03-03T18:30:00Z"},
		{TotalPrice: "10.00", CreatedAt: "2024-03-03T19:00:00Z"},
	}

	points := dailyRevenueSeries(orders, shopRange())

	require.Len(t, points, 3)
	assert.Equal(t, "2024-03-01", points[0].Date)
	assert.Equal(t, 40.0, points[0].Metrics.Revenue)
	assert.Equal(t, "2024-03-02", points[1].Date)
	assert.Equal(t, 0.0, points[1].Metrics.Revenue)
	assert.Equal(t, "2024-03-03", points[2].Date)
	assert.Equal(t, 70.0, points[2].Metrics.Revenue)
	assert.Equal(t, 2.0, points[2].Metrics.Conversions)
}

func TestSplitScopes(t *testing.T) {
	assert.Equal(t, []string{"read_orders", "read_products"}, splitScopes("read_orders,read_products"))
	assert.Nil(t, splitScopes(""))
}
