// Package config собирает настройки сервиса из флагов, .env и окружения.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tempizhere/surl/internal/analytics"
	"github.com/tempizhere/surl/internal/clientip"
)

// DefaultReservedSlugs слаги, которые нельзя занять по умолчанию
var DefaultReservedSlugs = []string{"admin", "login", "me", "shorten", "healthz", "assets", "static", "api"}

// Config содержит настройки приложения
type Config struct {
	Addr        string `env:"SURL_ADDR"`
	GRPCAddr    string `env:"SURL_GRPC_ADDR"`
	BaseURL     string `env:"SURL_BASE_URL"`
	DatabaseURL string `env:"SURL_DATABASE_URL"`

	PoolMax     int           `env:"SURL_POOL_MAX"`
	PoolTimeout time.Duration `env:"SURL_POOL_TIMEOUT"`

	ForceStatus301  bool     `env:"SURL_FORCE_STATUS_301"`
	ReservedSlugs   []string `env:"SURL_RESERVED_SLUGS" envSeparator:","`
	SlugRegex       string   `env:"SURL_SLUG_REGEX"`
	SlugMaxAttempts int      `env:"SURL_SLUG_MAX_ATTEMPTS"`

	AnalyticsMode    analytics.Mode `env:"SURL_ANALYTICS_MODE"`
	AnalyticsWorkers int            `env:"SURL_ANALYTICS_WORKERS"`
	AnalyticsQueue   int            `env:"SURL_ANALYTICS_QUEUE"`
	AnalyticsTimeout time.Duration  `env:"SURL_ANALYTICS_TIMEOUT"`
	IPAnonymize      bool           `env:"SURL_IP_ANONYMIZE"`
	ProxyTrustCIDRs  []string       `env:"SURL_PROXY_TRUST_CIDRS" envSeparator:","`

	AdminToken string        `env:"SURL_ADMIN_TOKEN"`
	JWTSecret  string        `env:"SURL_JWT_SECRET"`
	CookieTTL  time.Duration `env:"SURL_COOKIE_TTL"`

	RedisURL  string        `env:"SURL_REDIS_URL"`
	CacheTTL  time.Duration `env:"SURL_CACHE_TTL"`
	CacheSize int           `env:"SURL_CACHE_SIZE"`

	LogLevel        string        `env:"SURL_LOG_LEVEL"`
	ShutdownTimeout time.Duration `env:"SURL_SHUTDOWN_TIMEOUT"`

	// JWTSecretGenerated выставляется, если секрет не задан и сгенерирован на время жизни процесса
	JWTSecretGenerated bool
}

// Default возвращает настройки по умолчанию
func Default() *Config {
	return &Config{
		Addr:             ":8080",
		BaseURL:          "http://localhost:8080",
		DatabaseURL:      "sqlite://surl.sqlite",
		PoolMax:          16,
		PoolTimeout:      5 * time.Second,
		ForceStatus301:   true,
		ReservedSlugs:    append([]string(nil), DefaultReservedSlugs...),
		SlugRegex:        `^[A-Za-z0-9]{5,10}$`,
		SlugMaxAttempts:  8,
		AnalyticsMode:    analytics.ModeCountOnly,
		AnalyticsWorkers: 4,
		AnalyticsQueue:   1024,
		AnalyticsTimeout: 5 * time.Second,
		IPAnonymize:      true,
		ProxyTrustCIDRs:  []string{"127.0.0.1/32"},
		AdminToken:       "change-me",
		CookieTTL:        720 * time.Hour,
		CacheTTL:         10 * time.Minute,
		CacheSize:        10000,
		LogLevel:         "info",
		ShutdownTimeout:  10 * time.Second,
	}
}

// NewConfig читает флаги из os.Args, затем .env и окружение процесса
func NewConfig() (*Config, error) {
	return Parse(os.Args[1:], LoadEnviron(".env"))
}

// LoadEnviron объединяет переменные из .env файлов с окружением процесса.
// Окружение процесса приоритетнее. Отсутствующий файл не ошибка.
func LoadEnviron(dotenvFiles ...string) map[string]string {
	environ := make(map[string]string)
	for _, file := range dotenvFiles {
		vars, err := godotenv.Read(file)
		if err != nil {
			continue
		}
		for k, v := range vars {
			environ[k] = v
		}
	}
	for k, v := range env.ToMap(os.Environ()) {
		environ[k] = v
	}
	return environ
}

// Parse собирает конфигурацию: значения по умолчанию, затем флаги, затем environ.
// Переменные окружения приоритетнее флагов.
func Parse(args []string, environ map[string]string) (*Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("shortener", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run HTTP server")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "address and port to run gRPC server, empty to disable")
	fs.StringVar(&cfg.BaseURL, "b", cfg.BaseURL, "base URL for short links")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "database URL: postgres://, sqlite://, libsql:// or memory://")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if environ == nil {
		environ = map[string]string{}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	if c.Addr != "" && !strings.Contains(c.Addr, ":") {
		c.Addr = ":" + c.Addr
	}
	if c.GRPCAddr != "" && !strings.Contains(c.GRPCAddr, ":") {
		c.GRPCAddr = ":" + c.GRPCAddr
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		c.BaseURL = "http://" + c.BaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")

	mode, err := analytics.ParseMode(string(c.AnalyticsMode))
	if err != nil {
		return err
	}
	c.AnalyticsMode = mode

	c.ReservedSlugs = trimList(c.ReservedSlugs)
	c.ProxyTrustCIDRs = trimList(c.ProxyTrustCIDRs)
	if _, err := clientip.NewResolver(c.ProxyTrustCIDRs); err != nil {
		return err
	}

	if c.DatabaseURL == "" {
		return errors.New("database URL is empty")
	}
	for name, v := range map[string]int{
		"pool max":          c.PoolMax,
		"slug max attempts": c.SlugMaxAttempts,
		"analytics workers": c.AnalyticsWorkers,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.AnalyticsQueue < 0 {
		return fmt.Errorf("analytics queue must not be negative, got %d", c.AnalyticsQueue)
	}

	if c.JWTSecret == "" {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		c.JWTSecret = hex.EncodeToString(secret)
		c.JWTSecretGenerated = true
	}
	return nil
}

func trimList(list []string) []string {
	out := list[:0]
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
