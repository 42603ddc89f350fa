// Package config loads application settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the application reads at startup.
type Config struct {
	AppPort string
	AppEnv  string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret string
	JWTTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CheckoutEmailPolicy string
	EmailTimeout        time.Duration
	NotifyTimeout       time.Duration

	XAPIURL      string
	XAccessToken string

	MediaBackend string
	MediaBaseURL string
	S3Endpoint   string
	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3PresignTTL time.Duration
	S3PathStyle  bool

	LogLevel  string
	LogFormat string

	SessionSecure bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "giftmarket.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@giftmarket.local")
	v.SetDefault("CHECKOUT_EMAIL_POLICY", "best_effort")
	v.SetDefault("EMAIL_TIMEOUT", "5s")
	v.SetDefault("NOTIFY_TIMEOUT", "3s")
	v.SetDefault("X_API_URL", "https://api.twitter.com")
	v.SetDefault("X_ACCESS_TOKEN", "")
	v.SetDefault("MEDIA_BACKEND", "static")
	v.SetDefault("MEDIA_BASE_URL", "/media")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PRESIGN_TTL", "15m")
	v.SetDefault("S3_PATH_STYLE", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("SESSION_SECURE", false)
}

// Load reads the configuration from v, falling back to defaults for unset keys.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:             v.GetString("APP_PORT"),
		AppEnv:              v.GetString("APP_ENV"),
		DatabaseDriver:      v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:         v.GetString("DATABASE_DSN"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		JWTTTL:              v.GetDuration("JWT_TTL"),
		RedisAddr:           v.GetString("REDIS_ADDR"),
		RedisPassword:       v.GetString("REDIS_PASSWORD"),
		RedisDB:             v.GetInt("REDIS_DB"),
		RabbitMQURL:         v.GetString("RABBITMQ_URL"),
		SMTPHost:            v.GetString("SMTP_HOST"),
		SMTPPort:            v.GetInt("SMTP_PORT"),
		SMTPUsername:        v.GetString("SMTP_USERNAME"),
		SMTPPassword:        v.GetString("SMTP_PASSWORD"),
		SMTPFrom:            v.GetString("SMTP_FROM"),
		CheckoutEmailPolicy: v.GetString("CHECKOUT_EMAIL_POLICY"),
		EmailTimeout:        v.GetDuration("EMAIL_TIMEOUT"),
		NotifyTimeout:       v.GetDuration("NOTIFY_TIMEOUT"),
		XAPIURL:             v.GetString("X_API_URL"),
		XAccessToken:        v.GetString("X_ACCESS_TOKEN"),
		MediaBackend:        v.GetString("MEDIA_BACKEND"),
		MediaBaseURL:        v.GetString("MEDIA_BASE_URL"),
		S3Endpoint:          v.GetString("S3_ENDPOINT"),
		S3Region:            v.GetString("S3_REGION"),
		S3Bucket:            v.GetString("S3_BUCKET"),
		S3AccessKey:         v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:         v.GetString("S3_SECRET_KEY"),
		S3PresignTTL:        v.GetDuration("S3_PRESIGN_TTL"),
		S3PathStyle:         v.GetBool("S3_PATH_STYLE"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		SessionSecure:       v.GetBool("SESSION_SECURE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver))
	}
	switch c.CheckoutEmailPolicy {
	case "strict", "best_effort":
	default:
		errs = append(errs, fmt.Errorf("unsupported CHECKOUT_EMAIL_POLICY %q", c.CheckoutEmailPolicy))
	}
	switch c.MediaBackend {
	case "static":
	case "s3":
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when MEDIA_BACKEND is s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
