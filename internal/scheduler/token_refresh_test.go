package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/internal/usecases/connecting"
)

type stubConnections struct {
	refreshed chan time.Duration
}

func (s *stubConnections) BeginConnect(string, domain.Platform, string) (string, error) {
	return "", nil
}

func (s *stubConnections) HandleCallback(context.Context, connecting.CallbackParams) ([]*domain.AdAccount, error) {
	return nil, nil
}

func (s *stubConnections) RefreshExpiringTokens(_ context.Context, window time.Duration) error {
	if s.refreshed != nil {
		s.refreshed <- window
	}
	return nil
}

func TestRefreshExpiringTokens_UsesConfiguredWindow(t *testing.T) {
	connections := &stubConnections{refreshed: make(chan time.Duration, 1)}
	svc := NewTokenRefreshService(config.TokenRefresh{ExpiryWindowHours: 48}, connections)

	svc.refreshExpiringTokens(context.Background())

	require.Len(t, connections.refreshed, 1)
	assert.Equal(t, 48*time.Hour, <-connections.refreshed)
}

func TestGetStatus_SafeDuringRefresh(t *testing.T) {
	connections := &stubConnections{}
	svc := NewTokenRefreshService(config.TokenRefresh{ExpiryWindowHours: 1}, connections)

	// Leitores concorrentes enquanto renovações atualizam os carimbos; o
	// detector de corrida acusa qualquer acesso sem proteção
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				svc.GetStatus()
			}
		}()
	}

	for i := 0; i < 20; i++ {
		svc.refreshExpiringTokens(context.Background())
	}
	wg.Wait()

	status := svc.GetStatus()
	assert.False(t, status["last_started_at"].(time.Time).IsZero())
	assert.False(t, status["last_completed_at"].(time.Time).IsZero())
}
