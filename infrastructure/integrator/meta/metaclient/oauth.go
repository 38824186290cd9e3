package metaclient

import (
	"context"
	"encoding/json"
	"net/url"

	metadomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/domain"

	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

// ExchangeCode troca um código de autorização OAuth por um token de curta
// duração. A troca pelo token de longa duração é o segundo passo.
func (c *MetaClient) ExchangeCode(ctx context.Context, code, redirectURI string) (*metadomain.TokenResponse, error) {
	params := url.Values{}
	params.Add("client_id", c.Cfg.Meta.AppID)
	params.Add("client_secret", c.Cfg.Meta.AppSecret)
	params.Add("redirect_uri", redirectURI)
	params.Add("code", code)

	return c.requestToken(ctx, params)
}

// ExchangeLongLivedToken troca um token de curta duração (ou um de longa
// duração prestes a expirar) por um novo token de longa duração
func (c *MetaClient) ExchangeLongLivedToken(ctx context.Context, accessToken string) (*metadomain.TokenResponse, error) {
	if accessToken == "" {
		return nil, prismErrors.NewTokenExpired(platformName, "access token is empty, reauthorization required")
	}

	params := url.Values{}
	params.Add("grant_type", "fb_exchange_token")
	params.Add("client_id", c.Cfg.Meta.AppID)
	params.Add("client_secret", c.Cfg.Meta.AppSecret)
	params.Add("fb_exchange_token", accessToken)

	return c.requestToken(ctx, params)
}

func (c *MetaClient) requestToken(ctx context.Context, params url.Values) (*metadomain.TokenResponse, error) {
	endpoint := c.Cfg.Meta.URL + "/oauth/access_token?" + params.Encode()

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var tokenResp metadomain.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, prismErrors.NewDataValidation(platformName, "failed to decode token response: "+err.Error())
	}

	if tokenResp.AccessToken == "" {
		return nil, prismErrors.NewDataValidation(platformName, "token returned by the API is empty")
	}

	return &tokenResp, nil
}
