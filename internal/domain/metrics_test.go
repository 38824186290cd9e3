package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testRange() DateRange {
	return NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC),
	)
}

func TestWithDerived(t *testing.T) {
	m := NormalizedMetrics{
		Spend:       100,
		Impressions: 10000,
		Clicks:      250,
		Conversions: 10,
		Revenue:     300,
	}.WithDerived()

	assert.Equal(t, 3.0, m.ROAS)
	assert.Equal(t, 2.5, m.CTR)  // 250/10000 * 100
	assert.Equal(t, 0.4, m.CPC)  // 100/250
	assert.Equal(t, 10.0, m.CPM) // 100/10000 * 1000
	assert.Equal(t, 10.0, m.CPA) // 100/10
}

func TestWithDerived_ZeroDenominators(t *testing.T) {
	m := NormalizedMetrics{Revenue: 500}.WithDerived()

	assert.Equal(t, 0.0, m.ROAS)
	assert.Equal(t, 0.0, m.CTR)
	assert.Equal(t, 0.0, m.CPC)
	assert.Equal(t, 0.0, m.CPM)
	assert.Equal(t, 0.0, m.CPA)
}

func TestAggregateMetrics(t *testing.T) {
	rng := testRange()

	// Contas com gasto zero e receita zero entram na soma sem poluir os derivados
	total := AggregateMetrics(rng,
		NormalizedMetrics{Spend: 100, Revenue: 300},
		NormalizedMetrics{Spend: 0, Revenue: 0},
		NormalizedMetrics{Spend: 50, Revenue: 25},
	)

	assert.Equal(t, 150.0, total.Spend)
	assert.Equal(t, 325.0, total.Revenue)
	assert.InDelta(t, 2.1667, total.ROAS, 0.0001)
	assert.Equal(t, rng, total.DateRange)
}

func TestAggregateCampaignMetrics(t *testing.T) {
	rng := testRange()

	campaigns := []*NormalizedCampaign{
		{Metrics: NormalizedMetrics{Spend: 10, Clicks: 100, Impressions: 1000}},
		{Metrics: NormalizedMetrics{Spend: 30, Clicks: 300, Impressions: 3000}},
	}

	total := AggregateCampaignMetrics(rng, campaigns)

	assert.Equal(t, 40.0, total.Spend)
	assert.Equal(t, int64(400), total.Clicks)
	assert.Equal(t, 10.0, total.CTR)
}

func TestDateRange_Days(t *testing.T) {
	assert.Equal(t, 7, testRange().Days())

	single := NewDateRange(
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	)
	assert.Equal(t, 1, single.Days())
}

func TestDateRange_PreviousPeriod(t *testing.T) {
	rng := testRange()
	prev := rng.PreviousPeriod()

	assert.True(t, prev.End.Before(rng.Start))
	assert.Equal(t, rng.End.Sub(rng.Start), prev.End.Sub(prev.Start))
}

func TestMapCampaignStatus(t *testing.T) {
	assert.Equal(t, CampaignStatusActive, MapMetaCampaignStatus("ACTIVE"))
	assert.Equal(t, CampaignStatusArchived, MapMetaCampaignStatus("DELETED"))
	assert.Equal(t, CampaignStatusCompleted, MapMetaCampaignStatus("SOMETHING_NEW"))

	assert.Equal(t, CampaignStatusActive, MapGoogleCampaignStatus("ENABLED"))
	assert.Equal(t, CampaignStatusCompleted, MapGoogleCampaignStatus("ENDED"))
	assert.Equal(t, CampaignStatusArchived, MapGoogleCampaignStatus("REMOVED"))
	assert.Equal(t, CampaignStatusCompleted, MapGoogleCampaignStatus("UNKNOWN"))
}

func TestTokenSet_Expired(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Hour)
	expired := &TokenSet{ExpiresAt: &past}
	assert.True(t, expired.Expired(now))

	future := now.Add(time.Hour)
	valid := &TokenSet{ExpiresAt: &future}
	assert.False(t, valid.Expired(now))

	// Tokens offline do Shopify não têm validade
	offline := &TokenSet{}
	assert.False(t, offline.Expired(now))
}
