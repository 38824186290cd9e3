package prismErrors

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyHTTP(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		retryAfter   time.Duration
		wantKind     Kind
		wantCode     string
		wantRecovery RecoveryAction
	}{
		{
			name:         "401 vira token expirado",
			status:       401,
			wantKind:     KindTokenExpired,
			wantCode:     CodeTokenExpired,
			wantRecovery: RecoveryReconnect,
		},
		{
			name:         "403 vira acesso negado",
			status:       403,
			wantKind:     KindAccountAccess,
			wantCode:     CodeAccountAccess,
			wantRecovery: RecoverySelectAccount,
		},
		{
			name:         "429 vira rate limit",
			status:       429,
			retryAfter:   10 * time.Second,
			wantKind:     KindRateLimited,
			wantCode:     CodeRateLimited,
			wantRecovery: RecoveryRetryWithBackoff,
		},
		{
			name:         "500 vira erro de API",
			status:       500,
			wantKind:     KindAPIError,
			wantCode:     CodeAPIGeneric,
			wantRecovery: RecoveryAbortWithMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyHTTP("meta", tt.status, "body", tt.retryAfter)

			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantRecovery, err.Recovery())
			assert.Equal(t, "meta", err.Platform)
		})
	}
}

func TestClassifyHTTP_RateLimitDefaultBackoff(t *testing.T) {
	err := ClassifyHTTP("google", 429, "", 0)
	assert.Equal(t, 30*time.Second, err.RetryAfter)

	err = ClassifyHTTP("google", 429, "", 7*time.Second)
	assert.Equal(t, 7*time.Second, err.RetryAfter)
}

func TestNewTimeout(t *testing.T) {
	err := NewTimeout("shopify", "fetch exceeded 12s")

	// Timeout é falha de rede com código próprio
	assert.Equal(t, KindNetworkError, err.Kind)
	assert.Equal(t, CodeTimeout, err.Code)
	assert.Equal(t, RecoveryRetryWithBackoff, err.Recovery())
}

func TestEnsure(t *testing.T) {
	classified := NewTokenExpired("meta", "expired")
	got := Ensure("meta", fmt.Errorf("wrapped: %w", classified))
	assert.Same(t, classified, got)

	generic := Ensure("google", errors.New("boom"))
	require.NotNil(t, generic)
	assert.Equal(t, KindAPIError, generic.Kind)
	assert.Equal(t, CodeAPIGeneric, generic.Code)
	assert.Equal(t, "google", generic.Platform)

	assert.Nil(t, Ensure("meta", nil))
}

func TestAs(t *testing.T) {
	prismErr, ok := As(NewRateLimited("meta", "slow down", time.Second))
	require.True(t, ok)
	assert.Equal(t, KindRateLimited, prismErr.Kind)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestTruncateBody(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	got := truncateBody(string(long))
	assert.Len(t, got, 303) // 300 + "..."
	assert.Equal(t, "short", truncateBody("short"))
}
