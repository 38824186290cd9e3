package aggregating

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/domain"
	"github.com/vfg2006/prism-reports-api/pkg/prismErrors"
)

const (
	defaultMaxConcurrentFetches = 4
	defaultFetchTimeout         = 12 * time.Second
)

// AccountFetch é um resumo obtido com sucesso, ainda associado à conta
type AccountFetch struct {
	Account *domain.ConnectedAccount
	Summary *domain.AccountSummary
}

// AccountFailure é uma falha classificada de uma conta individual; a ação de
// recuperação vem junto para a UI decidir o que oferecer
type AccountFailure struct {
	Account  *domain.ConnectedAccount
	Err      *prismErrors.Error
	Recovery prismErrors.RecoveryAction
}

// BatchResult particiona as contas do lote: toda conta termina em exatamente
// uma das duas listas, na ordem original do lote
type BatchResult struct {
	Successes []AccountFetch
	Failures  []AccountFailure
	Range     domain.DateRange
}

type Service interface {
	// FetchForAccounts busca o resumo de cada conta com concorrência limitada;
	// falhas individuais não derrubam o lote
	FetchForAccounts(ctx context.Context, accounts []*domain.ConnectedAccount, rng domain.DateRange) *BatchResult

	// BuildRollups agrega os sucessos do lote em totais por plataforma e
	// combinados
	BuildRollups(result *BatchResult) *Rollups
}

type service struct {
	registry *integrator.Registry
	cfg      config.Aggregation
}

func NewService(cfg config.Aggregation, registry *integrator.Registry) Service {
	return &service{
		registry: registry,
		cfg:      cfg,
	}
}

// outcome guarda o resultado de uma conta na posição original do lote
type outcome struct {
	summary *domain.AccountSummary
	err     *prismErrors.Error
}

func (s *service) FetchForAccounts(ctx context.Context, accounts []*domain.ConnectedAccount, rng domain.DateRange) *BatchResult {
	result := &BatchResult{
		Successes: make([]AccountFetch, 0, len(accounts)),
		Failures:  make([]AccountFailure, 0),
		Range:     rng,
	}

	if len(accounts) == 0 {
		return result
	}

	workers := s.cfg.MaxConcurrentFetches
	if workers <= 0 {
		workers = defaultMaxConcurrentFetches
	}
	if workers > len(accounts) {
		workers = len(accounts)
	}

	outcomes := make([]outcome, len(accounts))

	// Cursor atômico: cada worker reivindica o próximo índice livre, então no
	// máximo `workers` buscas correm ao mesmo tempo
	var cursor int64 = -1
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := int(atomic.AddInt64(&cursor, 1))
				if idx >= len(accounts) {
					return
				}
				outcomes[idx] = s.fetchOne(ctx, accounts[idx], rng)
			}
		}()
	}

	wg.Wait()

	// Remonta na ordem original do lote
	for i, account := range accounts {
		if outcomes[i].err != nil {
			result.Failures = append(result.Failures, AccountFailure{
				Account:  account,
				Err:      outcomes[i].err,
				Recovery: outcomes[i].err.Recovery(),
			})
			continue
		}
		result.Successes = append(result.Successes, AccountFetch{
			Account: account,
			Summary: outcomes[i].summary,
		})
	}

	logrus.WithFields(logrus.Fields{
		"total":     len(accounts),
		"successes": len(result.Successes),
		"failures":  len(result.Failures),
	}).Info("aggregating: batch fetch settled")

	return result
}

// fetchOne busca o resumo de uma conta com timeout próprio; o estouro vira
// uma falha de timeout sem segurar o worker além do prazo
func (s *service) fetchOne(ctx context.Context, account *domain.ConnectedAccount, rng domain.DateRange) outcome {
	connector, err := s.registry.ForPlatform(account.Platform)
	if err != nil {
		return outcome{err: prismErrors.NewDataValidation(string(account.Platform), err.Error())}
	}

	timeout := time.Duration(s.cfg.FetchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type fetchResult struct {
		summary *domain.AccountSummary
		err     error
	}

	done := make(chan fetchResult, 1)
	go func() {
		summary, fetchErr := connector.FetchAccountSummary(callCtx, integrator.MetricsParams{
			AccountID: account.PlatformID,
			Tokens:    account.Tokens,
			Range:     rng,
		})
		done <- fetchResult{summary: summary, err: fetchErr}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			classified := prismErrors.Ensure(string(account.Platform), r.err)
			logrus.WithFields(logrus.Fields{
				"account_id": account.ID,
				"platform":   account.Platform,
				"kind":       classified.Kind,
				"code":       classified.Code,
			}).Warn("aggregating: account fetch failed")
			return outcome{err: classified}
		}
		return outcome{summary: r.summary}

	case <-callCtx.Done():
		logrus.WithFields(logrus.Fields{
			"account_id": account.ID,
			"platform":   account.Platform,
			"timeout":    timeout.String(),
		}).Warn("aggregating: account fetch timed out")
		return outcome{err: prismErrors.NewTimeout(string(account.Platform), "account fetch exceeded "+timeout.String())}
	}
}
