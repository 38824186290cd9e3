package connecting

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator"
	"github.com/vfg2006/prism-reports-api/infrastructure/repository"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
	"github.com/vfg2006/prism-reports-api/pkg/utils"
)

// CallbackParams são os parâmetros recebidos no retorno do OAuth
type CallbackParams struct {
	State       string
	Code        string
	RedirectURI string

	// ShopDomain só vem no retorno do Shopify
	ShopDomain string
}

type Service interface {
	// BeginConnect emite o state assinado e monta a URL de autorização da
	// plataforma
	BeginConnect(clientID string, platform domain.Platform, redirectURI string) (string, error)

	// HandleCallback valida o state, troca o código por tokens, descobre as
	// contas visíveis e as persiste vinculadas ao cliente
	HandleCallback(ctx context.Context, params CallbackParams) ([]*domain.AdAccount, error)

	// RefreshExpiringTokens renova os tokens que expiram dentro da janela;
	// falhas individuais não interrompem a varredura
	RefreshExpiringTokens(ctx context.Context, window time.Duration) error
}

type service struct {
	registry    *integrator.Registry
	accountRepo repository.AccountRepository
	signer      *stateSigner
}

func NewService(cfg *config.Config, registry *integrator.Registry, accountRepo repository.AccountRepository) Service {
	return &service{
		registry:    registry,
		accountRepo: accountRepo,
		signer:      newStateSigner(cfg.Auth.StateSecret),
	}
}

func (s *service) BeginConnect(clientID string, platform domain.Platform, redirectURI string) (string, error) {
	connector, err := s.registry.ForPlatform(platform)
	if err != nil {
		return "", err
	}

	state, err := s.signer.Issue(clientID, platform)
	if err != nil {
		return "", err
	}

	return connector.GetAuthURL(redirectURI, state), nil
}

func (s *service) HandleCallback(ctx context.Context, params CallbackParams) ([]*domain.AdAccount, error) {
	claims, err := s.signer.Consume(params.State)
	if err != nil {
		logrus.WithError(err).Warn("connecting: oauth state validation failed")
		return nil, err
	}

	connector, err := s.registry.ForPlatform(claims.Platform)
	if err != nil {
		return nil, err
	}

	tokens, err := connector.Authorize(ctx, integrator.AuthorizeParams{
		Code:        params.Code,
		RedirectURI: params.RedirectURI,
		ShopDomain:  params.ShopDomain,
	})
	if err != nil {
		return nil, prismErrors.Ensure(string(claims.Platform), err)
	}

	accounts, err := connector.ListAccounts(ctx, tokens)
	if err != nil {
		return nil, prismErrors.Ensure(string(claims.Platform), err)
	}

	connected := make([]*domain.ConnectedAccount, 0, len(accounts))
	for _, account := range accounts {
		id, err := utils.GenerateID()
		if err != nil {
			return nil, err
		}
		connected = append(connected, &domain.ConnectedAccount{
			ID:         id,
			ClientID:   claims.ClientID,
			Platform:   claims.Platform,
			PlatformID: account.ID,
			Name:       account.Name,
			Tokens:     tokens,
		})
	}

	if err := s.accountRepo.SaveOrUpdate(connected); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"client_id": claims.ClientID,
		"platform":  claims.Platform,
		"accounts":  len(accounts),
	}).Info("connecting: platform connected")

	return accounts, nil
}

func (s *service) RefreshExpiringTokens(ctx context.Context, window time.Duration) error {
	accounts, err := s.accountRepo.ListAccountsExpiringWithin(window)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		connector, err := s.registry.ForPlatform(account.Platform)
		if err != nil {
			logrus.WithField("platform", account.Platform).Warn("connecting: no connector for stored account")
			continue
		}

		refreshed, err := connector.RefreshToken(ctx, account.Tokens)
		if err != nil {
			classified := prismErrors.Ensure(string(account.Platform), err)
			logrus.WithFields(logrus.Fields{
				"account_id": account.ID,
				"platform":   account.Platform,
				"kind":       classified.Kind,
				"recovery":   classified.Recovery(),
			}).Warn("connecting: token refresh failed")
			continue
		}

		if err := s.accountRepo.UpdateTokens(account.ID, refreshed); err != nil {
			logrus.WithFields(logrus.Fields{
				"account_id": account.ID,
				"error":      err.Error(),
			}).Error("connecting: failed to persist refreshed tokens")
		}
	}

	return nil
}
