package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "Medikart"
	defaultAppEnv        = "development"
	defaultPort          = "8000"
	defaultLogLevel      = "info"
	defaultShutdownDelay = 10 * time.Second

	defaultAccessTokenTTL  = time.Hour
	defaultRefreshTokenTTL = 24 * time.Hour
	defaultOTPTTL          = time.Minute
	defaultOTPResendTTL    = 10 * time.Minute
	defaultMailTimeout     = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour

	defaultUploadDir = "public/uploads"
	defaultSMTPPort  = 587
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	ShutdownPeriod time.Duration

	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// OTPTTL applies to codes issued at registration, OTPResendTTL to codes
	// issued by the resend endpoint.
	OTPTTL       time.Duration
	OTPResendTTL time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailTimeout  time.Duration

	UploadDir      string
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ShutdownPeriod:  defaultShutdownDelay,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		RefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
		AccessTokenTTL:  defaultAccessTokenTTL,
		RefreshTokenTTL: defaultRefreshTokenTTL,
		OTPTTL:          defaultOTPTTL,
		OTPResendTTL:    defaultOTPResendTTL,
		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        defaultSMTPPort,
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		MailFrom:        getEnv("MAIL_FROM", os.Getenv("SMTP_USERNAME")),
		MailTimeout:     defaultMailTimeout,
		UploadDir:       getEnv("UPLOAD_DIR", defaultUploadDir),
		IdempotencyTTL:  defaultIdempotencyTTL,
	}

	durations := []struct {
		envVar string
		dst    *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", &cfg.ShutdownPeriod},
		{"ACCESS_TOKEN_TTL", &cfg.AccessTokenTTL},
		{"REFRESH_TOKEN_TTL", &cfg.RefreshTokenTTL},
		{"OTP_TTL", &cfg.OTPTTL},
		{"OTP_RESEND_TTL", &cfg.OTPResendTTL},
		{"MAIL_TIMEOUT", &cfg.MailTimeout},
		{"IDEMPOTENCY_TTL", &cfg.IdempotencyTTL},
	}
	for _, d := range durations {
		if v := os.Getenv(d.envVar); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", d.envVar, err)
			}
			*d.dst = parsed
		}
	}

	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = port
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.RefreshSecret == "" {
		return Config{}, fmt.Errorf("JWT_REFRESH_SECRET must be set")
	}
	if cfg.JWTSecret == cfg.RefreshSecret {
		return Config{}, fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsProduction reports whether the app runs with production hardening enabled.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// MailConfigured reports whether SMTP delivery settings are present.
func (c Config) MailConfigured() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
