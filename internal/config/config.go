package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the API process reads from the environment.
// A missing .env file is fine in production; env vars win either way.
type Config struct {
	Env         string
	Port        string
	DatabaseURL string
	JWTSecret   string
	CORSOrigin  string

	MomoWebhookSecret string
	MomoProvider      string

	KafkaBrokers []string
	KafkaTopic   string

	AdminAPIKey string

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWhatsAppFrom string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:         strings.ToLower(strings.TrimSpace(os.Getenv("ENV"))),
		Port:        strings.TrimSpace(os.Getenv("PORT")),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		CORSOrigin:  strings.TrimSpace(os.Getenv("CORS_ORIGIN")),

		MomoWebhookSecret: strings.TrimSpace(os.Getenv("MOMO_WEBHOOK_SECRET")),
		MomoProvider:      strings.TrimSpace(os.Getenv("MOMO_PROVIDER")),

		KafkaTopic: strings.TrimSpace(os.Getenv("KAFKA_TOPIC")),

		AdminAPIKey: strings.TrimSpace(os.Getenv("ADMIN_API_KEY")),

		TwilioAccountSID:   os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:    os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom: os.Getenv("TWILIO_WHATSAPP_FROM"),
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.MomoProvider == "" {
		cfg.MomoProvider = "mpesa"
	}
	if cfg.KafkaTopic == "" {
		cfg.KafkaTopic = "rentpilot.ledger.events"
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	return cfg, nil
}
