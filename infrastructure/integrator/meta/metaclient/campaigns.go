package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	metadomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

type responseCampaigns struct {
	Data   []metadomain.Campaign `json:"data"`
	Paging metadomain.Paging     `json:"paging"`
}

// GetCampaigns lista as campanhas da conta na ordem de inserção da API,
// seguindo a paginação por cursor até o fim
func (c *MetaClient) GetCampaigns(ctx context.Context, accessToken, accountID string) ([]metadomain.Campaign, error) {
	params := url.Values{}
	params.Add("fields", "id,name,status,objective")
	params.Add("limit", "100")
	params.Add("access_token", accessToken)

	next := fmt.Sprintf("%s/act_%s/campaigns?%s", c.Cfg.Meta.URL, accountID, params.Encode())

	campaigns := make([]metadomain.Campaign, 0)
	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		var response responseCampaigns
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, prismErrors.NewDataValidation(platformName, "failed to decode campaigns response: "+err.Error())
		}

		campaigns = append(campaigns, response.Data...)
		next = response.Paging.Next
	}

	return campaigns, nil
}
