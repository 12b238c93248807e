// Package config содержит логику чтения конфигурации витрины магазина.
package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mmeshcher/storefront/internal/payment"
)

const (
	defaultRunAddress     = "localhost:8080"
	defaultPaymentTimeout = 30 * time.Second
	defaultSessionTTL     = 24 * time.Hour
	defaultKafkaTopic     = "storefront.payments"
)

// Config содержит параметры конфигурации витрины.
type Config struct {
	RunAddress      string        `env:"RUN_ADDRESS"`
	DatabaseURI     string        `env:"DATABASE_URI"`
	PaymentEndpoint string        `env:"PAYMENT_ENDPOINT"`
	PaymentTimeout  time.Duration `env:"PAYMENT_TIMEOUT"`
	PublicOrigin    string        `env:"PUBLIC_ORIGIN"`
	SessionSecret   string        `env:"SESSION_SECRET"`
	SessionTTL      time.Duration `env:"SESSION_TTL"`
	KafkaBrokers    []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic      string        `env:"KAFKA_TOPIC"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
// Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envCfg := *cfg

	var kafkaBrokers string
	flag.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI with catalog tables")
	flag.StringVar(&cfg.PaymentEndpoint, "p", payment.DefaultEndpoint, "payment session endpoint")
	flag.DurationVar(&cfg.PaymentTimeout, "pt", defaultPaymentTimeout, "payment request timeout")
	flag.StringVar(&cfg.PublicOrigin, "o", "", "public storefront origin used for payment return URL")
	flag.StringVar(&cfg.SessionSecret, "s", "", "session cookie signing secret")
	flag.DurationVar(&cfg.SessionTTL, "ttl", defaultSessionTTL, "idle session lifetime")
	flag.StringVar(&kafkaBrokers, "k", "", "comma separated Kafka brokers for payment events")
	flag.StringVar(&cfg.KafkaTopic, "t", defaultKafkaTopic, "Kafka topic for payment events")

	flag.Parse()

	cfg.KafkaBrokers = splitList(kafkaBrokers)

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.PaymentEndpoint != "" {
		cfg.PaymentEndpoint = envCfg.PaymentEndpoint
	}
	if envCfg.PaymentTimeout != 0 {
		cfg.PaymentTimeout = envCfg.PaymentTimeout
	}
	if envCfg.PublicOrigin != "" {
		cfg.PublicOrigin = envCfg.PublicOrigin
	}
	if envCfg.SessionSecret != "" {
		cfg.SessionSecret = envCfg.SessionSecret
	}
	if envCfg.SessionTTL != 0 {
		cfg.SessionTTL = envCfg.SessionTTL
	}
	if len(envCfg.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = splitList(strings.Join(envCfg.KafkaBrokers, ","))
	}
	if envCfg.KafkaTopic != "" {
		cfg.KafkaTopic = envCfg.KafkaTopic
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.PaymentEndpoint == "" {
		cfg.PaymentEndpoint = payment.DefaultEndpoint
	}
	if cfg.PaymentTimeout <= 0 {
		cfg.PaymentTimeout = defaultPaymentTimeout
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = defaultKafkaTopic
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
