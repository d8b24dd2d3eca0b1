package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	// DatabaseURL selects the Postgres store when set; otherwise the
	// in-memory store with seed reference data is used.
	DatabaseURL    string
	MigrationsPath string

	Notify NotifyConfig
	Portal PortalConfig
}

type NotifyConfig struct {
	// MessagingServiceURL is the WhatsApp-style messaging relay. Empty
	// disables the messaging channel (deliveries are logged only).
	MessagingServiceURL string
	MessagingToken      string

	// MailRelayURL is the transactional mail relay. Empty disables email.
	MailRelayURL string
	MailToken    string
	FromAddress  string
}

type PortalConfig struct {
	// Secret signs customer approval-link tokens.
	Secret string

	// BaseURL is the externally reachable portal frontend; approval links
	// are composed against it.
	BaseURL string

	// AllowedOrigins is the CORS allowlist for the public portal endpoints.
	AllowedOrigins []string

	// TokenTTLHours bounds how long an approval link stays valid.
	TokenTTLHours int
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8080"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		Notify: NotifyConfig{
			MessagingServiceURL: os.Getenv("MESSAGING_SERVICE_URL"),
			MessagingToken:      os.Getenv("MESSAGING_TOKEN"),
			MailRelayURL:        os.Getenv("MAIL_RELAY_URL"),
			MailToken:           os.Getenv("MAIL_TOKEN"),
			FromAddress:         env("MAIL_FROM", "service@garageflow.local"),
		},
		Portal: PortalConfig{
			Secret:         os.Getenv("PORTAL_SECRET"),
			BaseURL:        env("PORTAL_BASE_URL", "http://localhost:5173"),
			AllowedOrigins: envList("PORTAL_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
			TokenTTLHours:  envInt("PORTAL_TOKEN_TTL_HOURS", 7*24),
		},
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
