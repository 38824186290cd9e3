package reporting

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/infrastructure/repository"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/internal/usecases/aggregating"
	"github.com/vfg2006/prism-reports-api/internal/usecases/composing"
)

var ErrNoAccounts = errors.New("client has no connected accounts")

// GenerateParams definem o relatório a gerar
type GenerateParams struct {
	ClientID   string
	ClientName string
	Title      string
	Range      domain.DateRange

	// AccountIDs restringe o lote; vazio usa todas as contas ativas do cliente
	AccountIDs []string
}

// GenerateResult devolve o deck renderizado junto do relato de falhas parciais
// para que a UI ofereça a ação de recuperação de cada conta excluída
type GenerateResult struct {
	Deck     *domain.Deck
	Output   *composing.DeckOutput
	Failures []aggregating.AccountFailure
}

type Service interface {
	GenerateDeck(ctx context.Context, params GenerateParams) (*GenerateResult, error)
	ListDecks(clientID string, limit int) ([]*domain.Deck, error)
	GetDeck(deckID string) (*domain.Deck, error)
}

type service struct {
	accountRepo repository.AccountRepository
	deckRepo    repository.DeckRepository
	aggregator  aggregating.Service
	composer    composing.Service
	newRenderer composing.RendererFactory
	tokens      composing.DesignTokens
}

func NewService(
	accountRepo repository.AccountRepository,
	deckRepo repository.DeckRepository,
	aggregator aggregating.Service,
	composer composing.Service,
	newRenderer composing.RendererFactory,
	tokens composing.DesignTokens,
) Service {
	return &service{
		accountRepo: accountRepo,
		deckRepo:    deckRepo,
		aggregator:  aggregator,
		composer:    composer,
		newRenderer: newRenderer,
		tokens:      tokens,
	}
}

func (s *service) GenerateDeck(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	accounts, err := s.accountRepo.ListActiveAccountsByClient(params.ClientID)
	if err != nil {
		return nil, err
	}

	accounts = filterAccounts(accounts, params.AccountIDs)
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}

	batch := s.aggregator.FetchForAccounts(ctx, accounts, params.Range)
	rollups := s.aggregator.BuildRollups(batch)

	deck, err := s.composer.Compose(composing.ComposeParams{
		ClientID:   params.ClientID,
		ClientName: params.ClientName,
		Title:      params.Title,
		Batch:      batch,
		Rollups:    rollups,
	})
	if err != nil {
		return nil, err
	}

	// Cada deck passa por um renderizador novo; o compositor nunca sabe como
	// os slides são desenhados
	output, err := composing.RenderDeck(s.newRenderer(), deck, s.tokens)
	if err != nil {
		return nil, err
	}

	if err := s.deckRepo.SaveDeck(deck); err != nil {
		// O deck já está composto; falha de persistência não deve descartá-lo
		logrus.WithFields(logrus.Fields{
			"deck_id": deck.ID,
			"error":   err.Error(),
		}).Error("reporting: failed to persist deck")
	}

	return &GenerateResult{
		Deck:     deck,
		Output:   output,
		Failures: batch.Failures,
	}, nil
}

func (s *service) ListDecks(clientID string, limit int) ([]*domain.Deck, error) {
	return s.deckRepo.ListDecksByClient(clientID, limit)
}

func (s *service) GetDeck(deckID string) (*domain.Deck, error) {
	return s.deckRepo.GetDeckByID(deckID)
}

func filterAccounts(accounts []*domain.ConnectedAccount, ids []string) []*domain.ConnectedAccount {
	if len(ids) == 0 {
		return accounts
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	filtered := make([]*domain.ConnectedAccount, 0, len(ids))
	for _, account := range accounts {
		if _, ok := wanted[account.ID]; ok {
			filtered = append(filtered, account)
		}
	}
	return filtered
}
