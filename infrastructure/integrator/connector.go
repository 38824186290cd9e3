package integrator

import (
	"context"
	"fmt"

	"github.com/vfg2006/prism-reports-api/internal/domain"
)

// AuthorizeParams são os parâmetros da troca de código OAuth por tokens
type AuthorizeParams struct {
	Code        string
	RedirectURI string

	// ShopDomain é obrigatório apenas para o Shopify
	ShopDomain string
}

// FetchParams identifica uma conta e o período de busca de campanhas
type FetchParams struct {
	AccountID string
	Tokens    *domain.TokenSet
	Range     domain.DateRange
}

// MetricsParams são os parâmetros do resumo completo de uma conta
type MetricsParams struct {
	AccountID string
	Tokens    *domain.TokenSet
	Range     domain.DateRange

	// SkipPreviousPeriod desliga a busca best-effort do período anterior
	SkipPreviousPeriod bool
}

// Connector é o contrato comum das integrações de plataforma. Cada plataforma
// tem um tipo concreto próprio; os conectores não guardam estado de sessão
// entre chamadas além do token recebido em cada uma.
type Connector interface {
	Platform() domain.Platform

	// GetAuthURL monta a URL de autorização OAuth da plataforma; puro, sem I/O
	GetAuthURL(redirectURI, state string) string

	// Authorize troca um código de autorização por tokens
	Authorize(ctx context.Context, params AuthorizeParams) (*domain.TokenSet, error)

	// RefreshToken renova o token; falha com TokenExpired quando a plataforma
	// não oferece refresh para o token recebido
	RefreshToken(ctx context.Context, tokens *domain.TokenSet) (*domain.TokenSet, error)

	// ListAccounts enumera todas as contas visíveis para o token
	ListAccounts(ctx context.Context, tokens *domain.TokenSet) ([]*domain.AdAccount, error)

	// FetchCampaigns busca as campanhas normalizadas da conta no período
	FetchCampaigns(ctx context.Context, params FetchParams) ([]*domain.NormalizedCampaign, error)

	// FetchAccountSummary é o ponto de entrada composto: metadados, campanhas,
	// série diária, breakdowns e comparação best-effort com o período anterior
	FetchAccountSummary(ctx context.Context, params MetricsParams) (*domain.AccountSummary, error)
}

// Registry resolve o conector de cada plataforma
type Registry struct {
	connectors map[domain.Platform]Connector
}

func NewRegistry(connectors ...Connector) *Registry {
	byPlatform := make(map[domain.Platform]Connector, len(connectors))
	for _, c := range connectors {
		byPlatform[c.Platform()] = c
	}
	return &Registry{connectors: byPlatform}
}

func (r *Registry) ForPlatform(platform domain.Platform) (Connector, error) {
	connector, ok := r.connectors[platform]
	if !ok {
		return nil, fmt.Errorf("no connector registered for platform %q", platform)
	}
	return connector, nil
}
