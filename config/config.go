package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Mail transports understood by MAIL_TRANSPORT
const (
	TransportRelay = "relay"
	TransportSMTP  = "smtp"
)

type Config struct {
	Port        string
	FrontendURL string
	GinMode     string
	// Mail transport selection: "relay" (HTTP mail relay) or "smtp"
	MailTransport string
	// Mail relay configuration (opaque values, passed through unchanged)
	MailRelayEndpoint       string
	MailRelayServiceID      string
	MailRelayTemplateID     string
	MailRelayPublicKey      string
	MailRelayPrivateKey     string
	MailRelayTimeoutSeconds int
	// SMTP Configuration
	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	SMTPFromEmail      string // Verified sender email (different from SMTP login)
	SMTPTimeoutSeconds int    // Bounds the whole SMTP exchange when the caller sets no deadline
	ContactEmailTo     string
	// Contact form behaviour
	ContactFallbackEmail  string // Shown to users when the relay fails; defaults to the site's primary email
	ContactFormTTLMinutes int
	SiteInfoPath          string
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitContactThreshold int
	RateLimitGlobalThreshold  int
	RateLimitFailClosed       bool // Reject contact submissions when Redis is unreachable
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally, ignored in production when the file is absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		// Mail transport
		MailTransport:           strings.ToLower(getEnv("MAIL_TRANSPORT", TransportRelay)),
		MailRelayEndpoint:       strings.TrimRight(getEnv("MAIL_RELAY_ENDPOINT", "https://api.emailjs.com"), "/"),
		MailRelayServiceID:      getEnv("MAIL_RELAY_SERVICE_ID", ""),
		MailRelayTemplateID:     getEnv("MAIL_RELAY_TEMPLATE_ID", ""),
		MailRelayPublicKey:      getEnv("MAIL_RELAY_PUBLIC_KEY", ""),
		MailRelayPrivateKey:     getEnv("MAIL_RELAY_PRIVATE_KEY", ""),
		MailRelayTimeoutSeconds: getEnvInt("MAIL_RELAY_TIMEOUT_SECONDS", 10),
		// SMTP Configuration
		SMTPHost:           getEnv("SMTP_HOST", "smtp-relay.brevo.com"),
		SMTPPort:           getEnv("SMTP_PORT", "587"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail:      getEnv("SMTP_FROM_EMAIL", ""),
		SMTPTimeoutSeconds: getEnvInt("SMTP_TIMEOUT_SECONDS", 10),
		ContactEmailTo:     getEnv("CONTACT_EMAIL_TO", "info@wws-logistics.com"),
		// Contact form
		ContactFallbackEmail:  getEnv("CONTACT_FALLBACK_EMAIL", ""),
		ContactFormTTLMinutes: getEnvInt("CONTACT_FORM_TTL_MINUTES", 30),
		SiteInfoPath:          getEnv("SITE_INFO_PATH", ""),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitContactThreshold: getEnvInt("RATE_LIMIT_CONTACT_THRESHOLD", 5),
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitFailClosed:       getEnvBool("RATE_LIMIT_FAIL_CLOSED", false),
	}

	if cfg.MailTransport != TransportRelay && cfg.MailTransport != TransportSMTP {
		log.Printf("WARNING: unknown MAIL_TRANSPORT %q, falling back to %q", cfg.MailTransport, TransportRelay)
		cfg.MailTransport = TransportRelay
	}

	if cfg.MailTransport == TransportRelay && cfg.MailRelayServiceID == "" {
		log.Println("WARNING: MAIL_RELAY_SERVICE_ID is missing. Contact form submissions will fail.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
