package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/usecases/connecting"
)

// TokenRefreshService agenda a renovação proativa dos tokens de plataforma
// antes que expirem, evitando que a geração de relatórios esbarre em tokens
// vencidos
type TokenRefreshService struct {
	scheduler   *gocron.Scheduler
	cfg         config.TokenRefresh
	connections connecting.Service

	// refreshMutex protege refreshRunning e os carimbos de horário lidos por
	// GetStatus
	refreshRunning  bool
	refreshMutex    sync.Mutex
	lastStartedAt   time.Time
	lastCompletedAt time.Time
}

func NewTokenRefreshService(cfg config.TokenRefresh, connections connecting.Service) *TokenRefreshService {
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":       cfg.CronSchedule,
		"expiry_window_hours": cfg.ExpiryWindowHours,
		"enabled":             cfg.Enabled,
	}).Info("Configuração do agendador de renovação de tokens carregada")

	return &TokenRefreshService{
		scheduler:   scheduler,
		cfg:         cfg,
		connections: connections,
	}
}

// Start inicia o agendador; o contexto cancela o agendador no shutdown
func (s *TokenRefreshService) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		logrus.Info("Renovação automática de tokens desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.cfg.CronSchedule).Info("Iniciando agendador de renovação de tokens")

	_, err := s.scheduler.Cron(s.cfg.CronSchedule).Do(func() {
		s.refreshExpiringTokens(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar renovação de tokens: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de renovação de tokens")
		s.scheduler.Stop()
	}()

	return nil
}

func (s *TokenRefreshService) refreshExpiringTokens(ctx context.Context) {
	s.refreshMutex.Lock()
	if s.refreshRunning {
		s.refreshMutex.Unlock()
		logrus.Info("Renovação de tokens já em andamento, ignorando")
		return
	}
	s.refreshRunning = true
	startTime := time.Now()
	s.lastStartedAt = startTime
	s.refreshMutex.Unlock()

	defer func() {
		s.refreshMutex.Lock()
		s.refreshRunning = false
		s.refreshMutex.Unlock()
	}()

	window := time.Duration(s.cfg.ExpiryWindowHours) * time.Hour

	if err := s.connections.RefreshExpiringTokens(ctx, window); err != nil {
		logrus.WithError(err).Error("Erro ao renovar tokens expirando")
		return
	}

	s.refreshMutex.Lock()
	s.lastCompletedAt = time.Now()
	s.refreshMutex.Unlock()

	logrus.WithField("duration", time.Since(startTime).String()).Info("Renovação de tokens concluída")
}

// TriggerManualRefresh dispara uma renovação fora do agendamento
func (s *TokenRefreshService) TriggerManualRefresh(ctx context.Context) {
	s.refreshMutex.Lock()
	if s.refreshRunning {
		s.refreshMutex.Unlock()
		logrus.Info("Renovação de tokens já em andamento, ignorando solicitação manual")
		return
	}
	s.refreshMutex.Unlock()

	logrus.Info("Iniciando renovação manual de tokens")
	go s.refreshExpiringTokens(ctx)
}

// GetStatus retorna o status atual do agendador
func (s *TokenRefreshService) GetStatus() map[string]any {
	s.refreshMutex.Lock()
	defer s.refreshMutex.Unlock()

	return map[string]any{
		"refresh_enabled":      s.cfg.Enabled,
		"refresh_cron":         s.cfg.CronSchedule,
		"expiry_window_hours":  s.cfg.ExpiryWindowHours,
		"last_started_at":      s.lastStartedAt,
		"last_completed_at":    s.lastCompletedAt,
	}
}
