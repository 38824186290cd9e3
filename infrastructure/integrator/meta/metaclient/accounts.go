package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	metadomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const accountFields = "id,account_id,name,currency,timezone_name,account_status"

type responseAdAccounts struct {
	Data   []metadomain.AdAccount `json:"data"`
	Paging metadomain.Paging      `json:"paging"`
}

// GetAdAccounts enumera todas as contas de anúncios visíveis para o token,
// seguindo o cursor `next` da paginação até o fim
func (c *MetaClient) GetAdAccounts(ctx context.Context, accessToken string) ([]metadomain.AdAccount, error) {
	params := url.Values{}
	params.Add("fields", accountFields)
	params.Add("limit", "100")
	params.Add("access_token", accessToken)

	next := fmt.Sprintf("%s/me/adaccounts?%s", c.Cfg.Meta.URL, params.Encode())

	accounts := make([]metadomain.AdAccount, 0)
	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		var response responseAdAccounts
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, prismErrors.NewDataValidation(platformName, "failed to decode ad accounts response: "+err.Error())
		}

		accounts = append(accounts, response.Data...)
		next = response.Paging.Next
	}

	return accounts, nil
}

// GetAccountInfo busca os metadados de uma conta específica
func (c *MetaClient) GetAccountInfo(ctx context.Context, accessToken, accountID string) (*metadomain.AdAccount, error) {
	params := url.Values{}
	params.Add("fields", accountFields)
	params.Add("access_token", accessToken)

	endpoint := fmt.Sprintf("%s/act_%s?%s", c.Cfg.Meta.URL, accountID, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var account metadomain.AdAccount
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, prismErrors.NewDataValidation(platformName, "failed to decode account response: "+err.Error())
	}

	return &account, nil
}
