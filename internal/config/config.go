package config

import (
	"os"
	"strconv"
	"strings"
)

// Config конфигурация процесса. Заполняется из окружения один раз в main
// и передаётся в конструкторы явно, глобального состояния нет.
type Config struct {
	Addr        string
	APIKey      string
	DatabaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string
	SuccessURL          string
	CancelURL           string

	Currency         string
	AllowedCountries []string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	MailTo       []string
}

// страны, в которые Stripe Checkout разрешает доставку по умолчанию
var defaultAllowedCountries = []string{
	"AT", "BE", "CH", "DE", "DK", "ES", "FI", "FR", "GB",
	"GR", "HR", "HU", "IE", "IT", "LU", "NL", "NO", "PL",
	"PT", "RO", "RS", "SE", "SI", "SK", "US", "CA", "AU",
}

func Load() *Config {
	return &Config{
		Addr:        getEnv("ADDR", ":9091"),
		APIKey:      getEnv("API_KEY", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		SuccessURL:          getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/checkout/success"),
		CancelURL:           getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/checkout/cancel"),

		Currency:         getEnv("CURRENCY", "EUR"),
		AllowedCountries: getEnvList("ALLOWED_COUNTRIES", defaultAllowedCountries),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),
		MailTo:       getEnvList("MAIL_TO", nil),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
