// Package config loads runtime configuration from the environment.
package config

import (
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	GeminiAPIKey    string
	GeminiModel     string
	DeepseekAPIKey  string
	DeepseekModel   string
	DeepseekBaseURL string

	DefaultEngine string

	TelegramBotToken string
	WebhookURL       string

	SessionDir    string
	SessionMaxAge time.Duration
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("bad %s=%q: %v", k, v, err)
	}
	return n
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		GeminiAPIKey:    mustEnv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		DeepseekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		DeepseekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		DeepseekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),

		DefaultEngine: getEnv("DEFAULT_ENGINE", "gemini"),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),

		SessionDir:    getEnv("SESSION_DIR", ".tutor-sessions"),
		SessionMaxAge: time.Duration(getEnvInt("SESSION_MAX_AGE_HOURS", 72)) * time.Hour,
	}
}

// ResolveDSN picks the Postgres DSN: DATABASE_URL wins, otherwise one is
// built from POSTGRES_*/PG* vars. With none of those set it returns empty
// and callers fall back to non-database storage.
func ResolveDSN() string {
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		return v
	}
	set := false
	for _, k := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "PGHOST", "PGPORT"} {
		if strings.TrimSpace(os.Getenv(k)) != "" {
			set = true
			break
		}
	}
	if !set {
		return ""
	}

	user := getEnv("POSTGRES_USER", "tutor")
	pass := os.Getenv("POSTGRES_PASSWORD")
	host := getEnv("PGHOST", "db")
	port := getEnv("PGPORT", "5432")
	db := getEnv("POSTGRES_DB", "tutor")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SafeDSNSummary renders a DSN for logs without the password.
func SafeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return "host=" + host + " db=" + db + " user=" + user
	}
	return "host=" + host + " port=" + port + " db=" + db + " user=" + user
}
