package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store backends accepted by STORE_BACKEND.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// ErrMissingSecret is returned by Validate when JWT_SECRET is unset.
var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port         string
	StoreBackend string
	MongoURI     string
	MongoDB      string
	PostgresDSN  string

	JWTSecret string
	JWTIssuer string
	ClientURL string

	SMTPHost      string
	SMTPPort      int
	EmailUser     string
	EmailPassword string
	EmailFrom     string

	AllowedOrigins []string
	LogLevel       string
	LogFormat      string
}

// Load reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	port, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("SMTP_PORT: %w", err)
	}

	user := getenv("EMAIL_USER", "")
	cfg := &Config{
		Port:           getenv("PORT", "5000"),
		StoreBackend:   strings.ToLower(getenv("STORE_BACKEND", BackendMongo)),
		MongoURI:       getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:        getenv("MONGO_DB", "accounts"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		JWTSecret:      getenv("JWT_SECRET", ""),
		JWTIssuer:      getenv("JWT_ISSUER", "account-service"),
		ClientURL:      strings.TrimRight(getenv("CLIENT_URL", "http://localhost:3000"), "/"),
		SMTPHost:       getenv("SMTP_HOST", ""),
		SMTPPort:       port,
		EmailUser:      user,
		EmailPassword:  getenv("EMAIL_PASS", ""),
		EmailFrom:      getenv("EMAIL_FROM", user),
		AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		LogFormat:      getenv("LOG_FORMAT", "json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	switch c.StoreBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is not set")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	return nil
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
