package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Paystack   PaystackConfig
	Admin      AdminConfig
	LogLevel   string
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
	Issuer string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// PaystackConfig drives the card gateway. VerifyTimeout bounds the
// re-verification call made by the webhook handler.
type PaystackConfig struct {
	BaseURL       string
	SecretKey     string
	CallbackURL   string
	VerifyTimeout time.Duration
}

// AdminConfig seeds the initial admin account.
type AdminConfig struct {
	Email    string
	Password string
}

// Load reads configuration from the environment with development defaults.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8088")
	v.SetDefault("ENV", "development")
	v.SetDefault("READ_TIMEOUT", "10s")
	v.SetDefault("WRITE_TIMEOUT", "10s")
	v.SetDefault("DB_DSN", "giftpay:giftpay@tcp(localhost:3306)/giftpay?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("JWT_ISSUER", "giftpay")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("PAYSTACK_VERIFY_TIMEOUT", "15s")
	v.SetDefault("ADMIN_EMAIL", "admin@giftpay.local")
	v.SetDefault("ADMIN_PASSWORD", "admin12345")
	v.SetDefault("LOG_LEVEL", "info")

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Expiry: v.GetDuration("JWT_EXPIRY"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
		},
		Paystack: PaystackConfig{
			BaseURL:       v.GetString("PAYSTACK_BASE_URL"),
			SecretKey:     v.GetString("PAYSTACK_SECRET_KEY"),
			CallbackURL:   v.GetString("PAYSTACK_CALLBACK_URL"),
			VerifyTimeout: v.GetDuration("PAYSTACK_VERIFY_TIMEOUT"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}
}
