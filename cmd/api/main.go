package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/prism-reports-api/infrastructure/database/postgres"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/googleads"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/googleads/googleclient"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/meta/metaclient"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/shopify"
	"github.com/vfg2006/prism-reports-api/infrastructure/integrator/shopify/shopifyclient"
	"github.com/vfg2006/prism-reports-api/infrastructure/repository"
	"github.com/vfg2006/prism-reports-api/internal/api"
	"github.com/vfg2006/prism-reports-api/internal/config"
	"github.com/vfg2006/prism-reports-api/internal/scheduler"
	"github.com/vfg2006/prism-reports-api/internal/usecases/aggregating"
	"github.com/vfg2006/prism-reports-api/internal/usecases/analyzing"
	"github.com/vfg2006/prism-reports-api/internal/usecases/authenticating"
	"github.com/vfg2006/prism-reports-api/internal/usecases/composing"
	"github.com/vfg2006/prism-reports-api/internal/usecases/connecting"
	"github.com/vfg2006/prism-reports-api/internal/usecases/reporting"
	"github.com/vfg2006/prism-reports-api/pkg/log"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	log.Setup(cfg.App.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	accountRepo := repository.NewAccountRepository(pgConn)
	userRepo := repository.NewUserRepository(pgConn)
	deckRepo := repository.NewDeckRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)

	// Conectores de plataforma registrados no registry pelo nome da plataforma
	metaIntegrator := meta.New(cfg, metaclient.NewClient(cfg))
	googleIntegrator := googleads.New(cfg, googleclient.NewClient(cfg))
	shopifyIntegrator := shopify.New(cfg, shopifyclient.NewClient(cfg))

	registry := integrator.NewRegistry(metaIntegrator, googleIntegrator, shopifyIntegrator)

	connectService := connecting.NewService(cfg, registry, accountRepo)

	aggregator := aggregating.NewService(cfg.Aggregation, registry)
	composer := composing.NewService(cfg.Deck, analyzing.NewNoopAnalyzer())
	reportService := reporting.NewService(
		accountRepo,
		deckRepo,
		aggregator,
		composer,
		composing.NewJSONRenderer,
		composing.DefaultDesignTokens(),
	)

	// Agendador de renovação proativa de tokens
	tokenRefreshService := scheduler.NewTokenRefreshService(cfg.TokenRefresh, connectService)
	if err := tokenRefreshService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de renovação de tokens")
	} else {
		logrus.Info("Agendador de renovação de tokens iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		authenticator,
		connectService,
		reportService,
		accountRepo,
		tokenRefreshService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
