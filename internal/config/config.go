package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/storefront/internal/shipping"
	pkgcfg "github.com/Skotchmaster/storefront/pkg/config"
)

type Config struct {
	ServiceName   string
	Port          string
	DatabaseURL   string
	LogLevel      string
	JWTSecret     []byte
	RefreshSecret []byte
	AuthURL       string
	KafkaBrokers  []string

	StripeSecretKey     string
	StripeWebhookSecret string
	ClientURL           string
	Currency            string
	PaymentTimeout      time.Duration

	MelhorEnvioToken string
	MelhorEnvioURL   string
	OriginCEP        string
	ShippingTimeout  time.Duration

	OutboxInterval time.Duration
	OutboxBatch    int
}

// Load reads .env when present, then the process environment. Every missing
// required key is reported in a single error.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		slog.Debug("env_file_not_loaded", "error", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		ServiceName:   pkgcfg.EnvDefault("SERVICE_NAME", "storefront"),
		Port:          pkgcfg.EnvDefault("SERVER_PORT", "8080"),
		DatabaseURL:   pkgcfg.EnvDefault("DATABASE_URL", ""),
		LogLevel:      pkgcfg.EnvDefault("LOG_LEVEL", "info"),
		JWTSecret:     []byte(pkgcfg.EnvDefault("JWT_SECRET", "")),
		RefreshSecret: []byte(pkgcfg.EnvDefault("JWT_REFRESH_SECRET", "")),
		AuthURL:       pkgcfg.EnvDefault("AUTH_URL", ""),
		KafkaBrokers:  pkgcfg.CSV(pkgcfg.EnvDefault("KAFKA_BROKERS", "")),

		StripeSecretKey:     pkgcfg.EnvDefault("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: pkgcfg.EnvDefault("STRIPE_WEBHOOK_SECRET", ""),
		ClientURL:           strings.TrimRight(pkgcfg.EnvDefault("CLIENT_URL", "http://localhost:3000"), "/"),
		Currency:            strings.ToLower(pkgcfg.EnvDefault("PAYMENT_CURRENCY", "brl")),
		PaymentTimeout:      pkgcfg.EnvDurationDefault("PAYMENT_TIMEOUT", 10*time.Second),

		MelhorEnvioToken: pkgcfg.EnvDefault("MELHOR_ENVIO_TOKEN", ""),
		MelhorEnvioURL:   pkgcfg.EnvDefault("MELHOR_ENVIO_URL", shipping.DefaultBaseURL),
		OriginCEP:        strings.ReplaceAll(pkgcfg.EnvDefault("STORE_ORIGIN_CEP", ""), "-", ""),
		ShippingTimeout:  pkgcfg.EnvDurationDefault("SHIPPING_TIMEOUT", 10*time.Second),

		OutboxInterval: pkgcfg.EnvDurationDefault("OUTBOX_INTERVAL", 2*time.Second),
		OutboxBatch:    pkgcfg.EnvIntDefault("OUTBOX_BATCH", 100),
	}

	var miss pkgcfg.Missing
	miss.Str(cfg.DatabaseURL, "DATABASE_URL")
	miss.Bytes(cfg.JWTSecret, "JWT_SECRET")
	miss.Str(cfg.StripeSecretKey, "STRIPE_SECRET_KEY")
	miss.Str(cfg.StripeWebhookSecret, "STRIPE_WEBHOOK_SECRET")
	miss.Str(cfg.MelhorEnvioToken, "MELHOR_ENVIO_TOKEN")
	miss.Str(cfg.OriginCEP, "STORE_ORIGIN_CEP")
	if err := miss.Err(); err != nil {
		return nil, err
	}

	if !isCEP(cfg.OriginCEP) {
		return nil, fmt.Errorf("STORE_ORIGIN_CEP must be 8 digits, got %q", cfg.OriginCEP)
	}
	return cfg, nil
}

func isCEP(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
