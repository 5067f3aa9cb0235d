// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrUnknownStorage    = errors.New("STORAGE_DRIVER must be 'postgres' or 'mongo'")
	ErrMissingDSN        = errors.New("DATABASE_URL is required for the postgres storage driver")
	ErrMissingMongo      = errors.New("MONGO_URI, DB_NAME and COLLECTION_NAME are required for the mongo storage driver")
	ErrInvalidMaxPages   = errors.New("MAX_PAGES must be at least 1")
	ErrInvalidDelay      = errors.New("PAGE_DELAY and FINAL_DELAY must be non-negative")
	ErrInvalidDatePolicy = errors.New("DATE_POLICY must be 'drop' or 'keep'")
	ErrNoCryptos         = errors.New("CRYPTOS must name at least one asset")
)

type Config struct {
	Browser BrowserConfig
	Search  SearchConfig
	Storage StorageConfig
	CoinCap CoinCapConfig
	Server  ServerConfig
	// Cryptos are the CoinCap asset ids to collect; the position is the stored cryptoId.
	Cryptos  []string
	LogLevel string
}

type BrowserConfig struct {
	ExecPath     string
	FetchTimeout time.Duration
	UserAgent    string
}

type SearchConfig struct {
	Host       string
	MaxPages   int
	PageDelay  time.Duration
	FinalDelay time.Duration
	DatePolicy string
}

type StorageConfig struct {
	Driver         string
	DatabaseURL    string
	MongoURI       string
	DBName         string
	CollectionName string
}

type CoinCapConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type ServerConfig struct {
	Addr string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("search_host", "www.google.com")
	v.SetDefault("max_pages", 100)
	v.SetDefault("page_delay", "2s")
	v.SetDefault("final_delay", "15s")
	v.SetDefault("date_policy", "drop")
	v.SetDefault("fetch_timeout", "60s")
	v.SetDefault("storage_driver", "postgres")
	v.SetDefault("collection_name", "news")
	v.SetDefault("coincap_base_url", "https://api.coincap.io/v2")
	v.SetDefault("coincap_timeout", "15s")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("cryptos", "bitcoin,ethereum")
	v.SetDefault("log_level", "info")
}

// Load reads envFiles (default ".env") into the process environment when present,
// then resolves every setting from the environment.
func Load(logger *slog.Logger, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && logger != nil {
		logger.Warn(".env file not found, using system environment")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Browser: BrowserConfig{
			ExecPath:     v.GetString("chrome_path"),
			FetchTimeout: v.GetDuration("fetch_timeout"),
			UserAgent:    v.GetString("user_agent"),
		},
		Search: SearchConfig{
			Host:       v.GetString("search_host"),
			MaxPages:   v.GetInt("max_pages"),
			PageDelay:  v.GetDuration("page_delay"),
			FinalDelay: v.GetDuration("final_delay"),
			DatePolicy: strings.ToLower(v.GetString("date_policy")),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(v.GetString("storage_driver")),
			DatabaseURL:    v.GetString("database_url"),
			MongoURI:       v.GetString("mongo_uri"),
			DBName:         v.GetString("db_name"),
			CollectionName: v.GetString("collection_name"),
		},
		CoinCap: CoinCapConfig{
			BaseURL: v.GetString("coincap_base_url"),
			APIKey:  v.GetString("api_key"),
			Timeout: v.GetDuration("coincap_timeout"),
		},
		Server:   ServerConfig{Addr: v.GetString("http_addr")},
		Cryptos:  splitList(v.GetString("cryptos")),
		LogLevel: v.GetString("log_level"),
	}
	return cfg
}

// Validate checks the settings every command needs. Storage settings are checked
// by ValidateStorage since not every command persists.
func (c *Config) Validate() error {
	if c.Search.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.Search.PageDelay < 0 || c.Search.FinalDelay < 0 {
		return ErrInvalidDelay
	}
	switch c.Search.DatePolicy {
	case "drop", "keep":
	default:
		return ErrInvalidDatePolicy
	}
	if len(c.Cryptos) == 0 {
		return ErrNoCryptos
	}
	return nil
}

func (c *Config) ValidateStorage() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return ErrMissingDSN
		}
	case "mongo":
		if c.Storage.MongoURI == "" || c.Storage.DBName == "" || c.Storage.CollectionName == "" {
			return ErrMissingMongo
		}
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownStorage, c.Storage.Driver)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
