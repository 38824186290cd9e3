package shopifyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	shopifydomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/shopify/domain"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const platformName = string(domain.PlatformShopify)

const (
	ordersPageLimit = 250

	// maxOrderPages limita a caminhada de paginação; lojas maiores que o teto
	// têm o resumo truncado em vez de travar a geração do relatório
	maxOrderPages = 20
)

type Client interface {
	ExchangeCode(ctx context.Context, shopDomain, code string) (*shopifydomain.TokenResponse, error)
	GetShop(ctx context.Context, shopDomain, accessToken string) (*shopifydomain.Shop, error)
	GetOrders(ctx context.Context, shopDomain, accessToken string, rng domain.DateRange) ([]shopifydomain.Order, error)
}

type ShopifyClient struct {
	Cfg        *config.Config
	httpClient *http.Client
}

func NewClient(cfg *config.Config) Client {
	return &ShopifyClient{
		Cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ExchangeCode troca o código de autorização pelo token offline da loja; o
// endpoint de token do Shopify é por loja
func (c *ShopifyClient) ExchangeCode(ctx context.Context, shopDomain, code string) (*shopifydomain.TokenResponse, error) {
	endpoint := fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain)

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.Cfg.Shopify.APIKey,
		"client_secret": c.Cfg.Shopify.APISecret,
		"code":          code,
	})
	if err != nil {
		return nil, prismErrors.NewDataValidation(platformName, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, prismErrors.NewNetworkError(platformName, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	body, _, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var tokenResp shopifydomain.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, prismErrors.NewDataValidation(platformName, "failed to decode token response: "+err.Error())
	}

	if tokenResp.AccessToken == "" {
		return nil, prismErrors.NewDataValidation(platformName, "token returned by the API is empty")
	}

	return &tokenResp, nil
}

// GetShop busca os metadados da loja
func (c *ShopifyClient) GetShop(ctx context.Context, shopDomain, accessToken string) (*shopifydomain.Shop, error) {
	endpoint := fmt.Sprintf("https://%s/admin/api/%s/shop.json", shopDomain, c.Cfg.Shopify.APIVersion)

	body, _, err := c.get(ctx, endpoint, accessToken)
	if err != nil {
		return nil, err
	}

	var response shopifydomain.ShopResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, prismErrors.NewDataValidation(platformName, "failed to decode shop response: "+err.Error())
	}

	return &response.Shop, nil
}

// GetOrders busca os pedidos do período caminhando a paginação por cursor do
// cabeçalho Link até esgotar ou atingir o teto de páginas
func (c *ShopifyClient) GetOrders(ctx context.Context, shopDomain, accessToken string, rng domain.DateRange) ([]shopifydomain.Order, error) {
	params := url.Values{}
	params.Add("status", "any")
	params.Add("created_at_min", rng.Start.Format(time.RFC3339))
	params.Add("created_at_max", rng.End.Format(time.RFC3339))
	params.Add("limit", strconv.Itoa(ordersPageLimit))

	next := fmt.Sprintf(
		"https://%s/admin/api/%s/orders.json?%s",
		shopDomain,
		c.Cfg.Shopify.APIVersion,
		params.Encode(),
	)

	orders := make([]shopifydomain.Order, 0)
	for page := 0; next != "" && page < maxOrderPages; page++ {
		body, header, err := c.get(ctx, next, accessToken)
		if err != nil {
			return nil, err
		}

		var response shopifydomain.OrdersResponse
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, prismErrors.NewDataValidation(platformName, "failed to decode orders response: "+err.Error())
		}

		orders = append(orders, response.Orders...)
		next = nextPageURL(header.Get("Link"))
	}

	if next != "" {
		logrus.WithFields(logrus.Fields{
			"shop_domain": shopDomain,
			"max_pages":   maxOrderPages,
		}).Warn("shopify: order pagination hit page cap, summary is truncated")
	}

	return orders, nil
}

// linkNextPattern extrai a URL marcada com rel="next" no cabeçalho Link
var linkNextPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

func nextPageURL(linkHeader string) string {
	matches := linkNextPattern.FindStringSubmatch(linkHeader)
	if len(matches) < 2 {
		return ""
	}
	return matches[1]
}

func (c *ShopifyClient) get(ctx context.Context, endpoint, accessToken string) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, prismErrors.NewNetworkError(platformName, err.Error())
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	return c.do(req)
}

func (c *ShopifyClient) do(req *http.Request) ([]byte, http.Header, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, prismErrors.NewNetworkError(platformName, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, prismErrors.NewNetworkError(platformName, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		classified := prismErrors.ClassifyHTTP(platformName, resp.StatusCode, string(body), retryAfter)
		logrus.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"kind":   classified.Kind,
			"code":   classified.Code,
		}).Warn("shopify: API request failed")
		return nil, nil, classified
	}

	return body, resp.Header, nil
}

// parseRetryAfter lê o Retry-After em segundos que o Shopify envia no 429
func parseRetryAfter(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
