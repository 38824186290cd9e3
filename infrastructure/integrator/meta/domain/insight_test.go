package metadomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPurchaseCount_FirstMatchingActionTypeWins(t *testing.T) {
	row := InsightRow{
		Actions: []Action{
			{ActionType: "link_click", Value: "300"},
			{ActionType: "omni_purchase", Value: "12"},
			{ActionType: "purchase", Value: "10"},
		},
	}

	// "purchase" vem antes na allow-list, mesmo aparecendo depois na resposta
	assert.Equal(t, 10.0, row.PurchaseCount())
}

func TestPurchaseCount_FallsThroughAllowList(t *testing.T) {
	row := InsightRow{
		Actions: []Action{
			{ActionType: "offsite_conversion.fb_pixel_purchase", Value: "7"},
			{ActionType: "link_click", Value: "300"},
		},
	}

	assert.Equal(t, 7.0, row.PurchaseCount())
}

func TestPurchaseCount_NoMatch(t *testing.T) {
	row := InsightRow{
		Actions: []Action{{ActionType: "link_click", Value: "300"}},
	}
	assert.Equal(t, 0.0, row.PurchaseCount())

	empty := InsightRow{}
	assert.Equal(t, 0.0, empty.PurchaseCount())
}

func TestPurchaseValue_UnparsableValue(t *testing.T) {
	row := InsightRow{
		ActionValues: []Action{{ActionType: "purchase", Value: "not-a-number"}},
	}
	assert.Equal(t, 0.0, row.PurchaseValue())
}

func TestNumericFieldParsing(t *testing.T) {
	row := InsightRow{
		Spend:       "123.45",
		Impressions: "10000",
		Clicks:      "250",
	}

	assert.Equal(t, 123.45, row.SpendValue())
	assert.Equal(t, int64(10000), row.ImpressionsValue())
	assert.Equal(t, int64(250), row.ClicksValue())
}
