package shopify

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator"
	shopifydomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/shopify/domain"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/shopify/shopifyclient"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const topProductsLimit = 5

type ShopifyIntegrator struct {
	cfg    *config.Config
	Client shopifyclient.Client
}

func New(cfg *config.Config, client shopifyclient.Client) *ShopifyIntegrator {
	return &ShopifyIntegrator{
		cfg:    cfg,
		Client: client,
	}
}

func (s *ShopifyIntegrator) Platform() domain.Platform {
	return domain.PlatformShopify
}

// GetAuthURL monta a URL de autorização da loja; redirectURI carrega o shop
// domain embutido pelo fluxo de conexão, então aqui basta o template
func (s *ShopifyIntegrator) GetAuthURL(redirectURI, state string) string {
	params := url.Values{}
	params.Add("client_id", s.cfg.Shopify.APIKey)
	params.Add("scope", s.cfg.Shopify.Scopes)
	params.Add("redirect_uri", redirectURI)
	params.Add("state", state)

	return "https://{shop}/admin/oauth/authorize?" + params.Encode()
}

func (s *ShopifyIntegrator) Authorize(ctx context.Context, params integrator.AuthorizeParams) (*domain.TokenSet, error) {
	if params.ShopDomain == "" {
		return nil, prismErrors.NewDataValidation(string(domain.PlatformShopify), "shop domain is required")
	}

	resp, err := s.Client.ExchangeCode(ctx, params.ShopDomain, params.Code)
	if err != nil {
		logrus.WithError(err).Error("shopify: failed to exchange authorization code")
		return nil, prismErrors.Ensure(string(domain.PlatformShopify), err)
	}

	// Token offline: sem ExpiresAt, válido até a loja desinstalar o app
	return &domain.TokenSet{
		AccessToken: resp.AccessToken,
		Scopes:      splitScopes(resp.Scope),
		Platform:    domain.PlatformShopify,
		ShopDomain:  params.ShopDomain,
	}, nil
}

// RefreshToken não existe para tokens offline do Shopify; a única saída é
// reinstalar o app
func (s *ShopifyIntegrator) RefreshToken(_ context.Context, _ *domain.TokenSet) (*domain.TokenSet, error) {
	return nil, &prismErrors.Error{
		Kind:     prismErrors.KindTokenExpired,
		Code:     prismErrors.CodeRefreshUnsupport,
		Message:  "offline tokens cannot be refreshed, reinstall the app to reconnect",
		Platform: string(domain.PlatformShopify),
	}
}

// ListAccounts retorna a própria loja; a conexão Shopify é um-para-um com o
// shop domain do token
func (s *ShopifyIntegrator) ListAccounts(ctx context.Context, tokens *domain.TokenSet) ([]*domain.AdAccount, error) {
	shop, err := s.Client.GetShop(ctx, tokens.ShopDomain, tokens.AccessToken)
	if err != nil {
		logrus.WithError(err).Error("shopify: failed to get shop info")
		return nil, prismErrors.Ensure(string(domain.PlatformShopify), err)
	}

	return []*domain.AdAccount{
		{
			ID:       shop.Domain,
			Name:     shop.Name,
			Platform: domain.PlatformShopify,
			Currency: shop.Currency,
			Timezone: shop.Timezone,
			Status:   domain.AccountStatusActive,
		},
	}, nil
}

// FetchCampaigns não se aplica a lojas; o resumo e-commerce cobre a conta
func (s *ShopifyIntegrator) FetchCampaigns(_ context.Context, _ integrator.FetchParams) ([]*domain.NormalizedCampaign, error) {
	return []*domain.NormalizedCampaign{}, nil
}

// FetchAccountSummary monta o resumo e-commerce da loja a partir dos pedidos
// do período e o expõe no mesmo formato das contas de anúncio para que o
// motor de agregação trate todas as plataformas por um caminho só
func (s *ShopifyIntegrator) FetchAccountSummary(ctx context.Context, params integrator.MetricsParams) (*domain.AccountSummary, error) {
	shop, err := s.Client.GetShop(ctx, params.Tokens.ShopDomain, params.Tokens.AccessToken)
	if err != nil {
		logrus.WithError(err).Error("shopify: failed to get shop info")
		return nil, prismErrors.Ensure(string(domain.PlatformShopify), err)
	}

	orders, err := s.Client.GetOrders(ctx, params.Tokens.ShopDomain, params.Tokens.AccessToken, params.Range)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"shop_domain": params.Tokens.ShopDomain,
			"error":       err.Error(),
		}).Error("shopify: failed to get orders")
		return nil, prismErrors.Ensure(string(domain.PlatformShopify), err)
	}

	account := &domain.AdAccount{
		ID:       shop.Domain,
		Name:     shop.Name,
		Platform: domain.PlatformShopify,
		Currency: shop.Currency,
		Timezone: shop.Timezone,
		Status:   domain.AccountStatusActive,
	}

	ecommerce := &domain.EcommerceSummary{
		Account:     account,
		Metrics:     summarizeOrders(orders, params.Range),
		TopProducts: topProducts(orders),
		TimeSeries:  dailyRevenueSeries(orders, params.Range),
	}

	if !params.SkipPreviousPeriod {
		ecommerce.PreviousPeriodMetrics = s.fetchPreviousPeriodMetrics(ctx, params)
	}

	// Revenue espelhado nas métricas normalizadas para os rollups combinados
	metrics := domain.NormalizedMetrics{
		Revenue:     ecommerce.Metrics.Revenue,
		Conversions: float64(ecommerce.Metrics.Orders),
		DateRange:   params.Range,
	}.WithDerived()

	return &domain.AccountSummary{
		Account:    account,
		Metrics:    metrics,
		Campaigns:  []*domain.NormalizedCampaign{},
		TimeSeries: ecommerce.TimeSeries,
		Breakdowns: []domain.Breakdown{},
		Ecommerce:  ecommerce,
	}, nil
}

func (s *ShopifyIntegrator) fetchPreviousPeriodMetrics(ctx context.Context, params integrator.MetricsParams) *domain.NormalizedEcommerceMetrics {
	previousRange := params.Range.PreviousPeriod()

	orders, err := s.Client.GetOrders(ctx, params.Tokens.ShopDomain, params.Tokens.AccessToken, previousRange)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"shop_domain": params.Tokens.ShopDomain,
			"error":       err.Error(),
		}).Warn("shopify: previous period fetch failed, continuing without comparison")
		return nil
	}

	metrics := summarizeOrders(orders, previousRange)

	return &metrics
}

// summarizeOrders agrega os pedidos em métricas e-commerce; clientes com no
// máximo um pedido contam como novos
func summarizeOrders(orders []shopifydomain.Order, rng domain.DateRange) domain.NormalizedEcommerceMetrics {
	metrics := domain.NormalizedEcommerceMetrics{
		Orders:    int64(len(orders)),
		DateRange: rng,
	}

	for _, order := range orders {
		metrics.Revenue += order.TotalPriceValue()

		if order.Customer != nil && order.Customer.OrdersCount <= 1 {
			metrics.NewCustomers++
		} else {
			metrics.ReturningCustomers++
		}
	}

	return metrics.WithDerived()
}

// topProducts soma os line items por título e retorna os maiores por receita
func topProducts(orders []shopifydomain.Order) []domain.ProductSales {
	byTitle := make(map[string]*domain.ProductSales)
	titles := make([]string, 0)

	for _, order := range orders {
		for _, item := range order.LineItems {
			product, ok := byTitle[item.Title]
			if !ok {
				product = &domain.ProductSales{Title: item.Title}
				byTitle[item.Title] = product
				titles = append(titles, item.Title)
			}
			product.Quantity += item.Quantity
			product.Revenue += item.PriceValue() * float64(item.Quantity)
		}
	}

	products := make([]domain.ProductSales, 0, len(titles))
	for _, title := range titles {
		products = append(products, *byTitle[title])
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Revenue > products[j].Revenue
	})

	if len(products) > topProductsLimit {
		products = products[:topProductsLimit]
	}

	return products
}

// dailyRevenueSeries distribui a receita dos pedidos por dia e preenche com
// zero os dias sem vendas
func dailyRevenueSeries(orders []shopifydomain.Order, rng domain.DateRange) []domain.TimeSeriesPoint {
	byDate := make(map[string]*domain.NormalizedMetrics)

	for _, order := range orders {
		createdAt, err := time.Parse(time.RFC3339, order.CreatedAt)
		if err != nil {
			continue
		}
		date := createdAt.Format(time.DateOnly)

		metrics, ok := byDate[date]
		if !ok {
			metrics = &domain.NormalizedMetrics{DateRange: rng}
			byDate[date] = metrics
		}
		metrics.Revenue += order.TotalPriceValue()
		metrics.Conversions++
	}

	points := make([]domain.TimeSeriesPoint, 0, len(byDate))
	for date, metrics := range byDate {
		points = append(points, domain.TimeSeriesPoint{
			Date:    date,
			Metrics: metrics.WithDerived(),
		})
	}

	return domain.FillMissingDates(points, rng)
}

func splitScopes(scope string) []string {
	if scope == "" {
		return nil
	}
	return strings.Split(scope, ",")
}
