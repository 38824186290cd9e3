package domain

import "time"

type Platform string

const (
	PlatformMeta    Platform = "meta"
	PlatformGoogle  Platform = "google"
	PlatformShopify Platform = "shopify"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformMeta, PlatformGoogle, PlatformShopify:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusDisabled AccountStatus = "disabled"
	AccountStatusClosed   AccountStatus = "closed"
)

// TokenSet é o conjunto de credenciais emitido por uma plataforma.
// Tokens do Google e Meta expiram; tokens offline do Shopify não (ExpiresAt nil).
type TokenSet struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Scopes       []string   `json:"scopes,omitempty"`
	Platform     Platform   `json:"platform"`

	// LoginCustomerID roteia requisições do Google Ads através da conta manager
	LoginCustomerID string `json:"login_customer_id,omitempty"`
	// ShopDomain identifica a loja Shopify dona do token
	ShopDomain string `json:"shop_domain,omitempty"`
}

// Expired indica se o token já passou da validade. Tokens sem ExpiresAt
// (Shopify offline) nunca expiram.
func (t *TokenSet) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// AdAccount é uma conta de anúncios descoberta via ListAccounts.
// A identidade é o par (Platform, ID).
type AdAccount struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Platform Platform      `json:"platform"`
	Currency string        `json:"currency"`
	Timezone string        `json:"timezone"`
	Status   AccountStatus `json:"status"`

	// ManagerID é o id da conta manager pai no Google Ads, quando existir
	ManagerID string `json:"manager_id,omitempty"`
}

// ConnectedAccount é o registro que o colaborador de acesso a dados fornece
// ao motor de agregação: conta + credenciais da conexão do cliente.
type ConnectedAccount struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"client_id"`
	Platform   Platform  `json:"platform"`
	PlatformID string    `json:"platform_id"`
	Name       string    `json:"name"`
	Tokens     *TokenSet `json:"-"`
}
