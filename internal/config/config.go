package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Auth         Auth         `mapstructure:",squash"`
	Meta         Meta         `mapstructure:",squash"`
	Google       Google       `mapstructure:",squash"`
	Shopify      Shopify      `mapstructure:",squash"`
	Aggregation  Aggregation  `mapstructure:",squash"`
	Deck         Deck         `mapstructure:",squash"`
	TokenRefresh TokenRefresh `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
	// StateSecret assina o token anti-CSRF do fluxo OAuth das plataformas
	StateSecret string `mapstructure:"oauth_state_secret"`
	// RedirectURL é o callback registrado nas plataformas; precisa ser idêntico
	// na autorização e na troca do código
	RedirectURL string `mapstructure:"oauth_redirect_url"`
}

type Meta struct {
	BaseURL   string `mapstructure:"meta_base_url"`
	URL       string `mapstructure:"-"`
	Version   string `mapstructure:"meta_version"`
	AppID     string `mapstructure:"meta_app_id"`
	AppSecret string `mapstructure:"meta_app_secret"`
}

type Google struct {
	AuthURL        string `mapstructure:"google_auth_url"`
	TokenURL       string `mapstructure:"google_token_url"`
	AdsBaseURL     string `mapstructure:"google_ads_base_url"`
	AdsVersion     string `mapstructure:"google_ads_version"`
	ClientID       string `mapstructure:"google_client_id"`
	ClientSecret   string `mapstructure:"google_client_secret"`
	DeveloperToken string `mapstructure:"google_developer_token"`
}

type Shopify struct {
	APIKey     string `mapstructure:"shopify_api_key"`
	APISecret  string `mapstructure:"shopify_api_secret"`
	APIVersion string `mapstructure:"shopify_api_version"`
	Scopes     string `mapstructure:"shopify_scopes"`
}

type Aggregation struct {
	MaxConcurrentFetches int `mapstructure:"aggregation_max_concurrent_fetches"`
	FetchTimeoutSeconds  int `mapstructure:"aggregation_fetch_timeout_seconds"`
}

type Deck struct {
	DefaultTitle string `mapstructure:"deck_default_title"`
	// Slides lista os tipos de slide habilitados, na ordem em que aparecem no
	// deck; vazio usa a ordem canônica completa
	Slides []string `mapstructure:"deck_slides"`
}

type TokenRefresh struct {
	CronSchedule      string `mapstructure:"token_refresh_cron"`
	Enabled           bool   `mapstructure:"token_refresh_enabled"`
	ExpiryWindowHours int    `mapstructure:"token_refresh_expiry_window_hours"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/prism")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")
	viper.SetDefault("OAUTH_STATE_SECRET", "your_state_secret")
	viper.SetDefault("OAUTH_REDIRECT_URL", "http://localhost:8000/v1/connect/callback")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_APP_ID", "your_app_id")
	viper.SetDefault("META_APP_SECRET", "your_app_secret")

	viper.SetDefault("GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth")
	viper.SetDefault("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token")
	viper.SetDefault("GOOGLE_ADS_BASE_URL", "https://googleads.googleapis.com")
	viper.SetDefault("GOOGLE_ADS_VERSION", "v17")
	viper.SetDefault("GOOGLE_CLIENT_ID", "your_client_id")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "your_client_secret")
	viper.SetDefault("GOOGLE_DEVELOPER_TOKEN", "your_developer_token")

	viper.SetDefault("SHOPIFY_API_KEY", "your_api_key")
	viper.SetDefault("SHOPIFY_API_SECRET", "your_api_secret")
	viper.SetDefault("SHOPIFY_API_VERSION", "2024-07")
	viper.SetDefault("SHOPIFY_SCOPES", "read_orders,read_products,read_customers")

	viper.SetDefault("AGGREGATION_MAX_CONCURRENT_FETCHES", 4)
	viper.SetDefault("AGGREGATION_FETCH_TIMEOUT_SECONDS", 12)

	viper.SetDefault("DECK_DEFAULT_TITLE", "Performance Report")
	viper.SetDefault("DECK_SLIDES", "kpi_overview,campaign_breakdown,trend_analysis,top_performers,audience_insights,budget_allocation,comparison")

	viper.SetDefault("TOKEN_REFRESH_CRON", "0 */6 * * *") // A cada 6 horas
	viper.SetDefault("TOKEN_REFRESH_ENABLED", false)
	viper.SetDefault("TOKEN_REFRESH_EXPIRY_WINDOW_HOURS", 48)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de: ", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
