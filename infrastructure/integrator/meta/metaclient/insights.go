package metaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	metadomain "github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/domain"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const insightFields = "account_id,account_name,campaign_id,campaign_name,objective,spend,impressions,clicks,actions,action_values,date_start,date_stop"

type responseInsights struct {
	Data   []metadomain.InsightRow `json:"data"`
	Paging metadomain.Paging       `json:"paging"`
}

// GetCampaignInsights busca os insights do período agregados por campanha
func (c *MetaClient) GetCampaignInsights(ctx context.Context, accessToken, accountID string, rng domain.DateRange) ([]metadomain.InsightRow, error) {
	params := c.insightParams(accessToken, rng)
	params.Add("level", "campaign")

	return c.fetchInsights(ctx, accountID, params)
}

// GetDailyInsights busca os insights do período com granularidade diária
func (c *MetaClient) GetDailyInsights(ctx context.Context, accessToken, accountID string, rng domain.DateRange) ([]metadomain.InsightRow, error) {
	params := c.insightParams(accessToken, rng)
	params.Add("level", "account")
	params.Add("time_increment", "1")

	return c.fetchInsights(ctx, accountID, params)
}

// GetBreakdownInsights busca os insights do período segmentados por uma
// dimensão de breakdown (age, gender, device_platform)
func (c *MetaClient) GetBreakdownInsights(ctx context.Context, accessToken, accountID, breakdown string, rng domain.DateRange) ([]metadomain.InsightRow, error) {
	params := c.insightParams(accessToken, rng)
	params.Add("level", "account")
	params.Add("breakdowns", breakdown)

	return c.fetchInsights(ctx, accountID, params)
}

func (c *MetaClient) insightParams(accessToken string, rng domain.DateRange) url.Values {
	timeRange := fmt.Sprintf(
		"{\"since\":\"%s\",\"until\":\"%s\"}",
		rng.Start.Format(time.DateOnly),
		rng.End.Format(time.DateOnly),
	)

	params := url.Values{}
	params.Add("fields", insightFields)
	params.Add("time_range", timeRange)
	params.Add("limit", "500")
	params.Add("access_token", accessToken)

	return params
}

func (c *MetaClient) fetchInsights(ctx context.Context, accountID string, params url.Values) ([]metadomain.InsightRow, error) {
	next := fmt.Sprintf("%s/act_%s/insights?%s", c.Cfg.Meta.URL, accountID, params.Encode())

	rows := make([]metadomain.InsightRow, 0)
	for next != "" {
		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		var response responseInsights
		if err := json.Unmarshal(body, &response); err != nil {
			return nil, prismErrors.NewDataValidation(platformName, "failed to decode insights response: "+err.Error())
		}

		rows = append(rows, response.Data...)
		next = response.Paging.Next
	}

	return rows, nil
}
