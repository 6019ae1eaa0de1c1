package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Settings holds all runtime configuration. Values come from the environment
// with an optional .env file for local development.
type Settings struct {
	Port                 string
	Env                  string
	DatabaseURL          string
	JWTSecret            string
	JWTExpirationSeconds int
	RedisAddr            string
	RedisPassword        string
	DataRoot             string
	Mail                 MailSettings
}

// MailSettings holds SMTP connection and sender details.
type MailSettings struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	StartTLS bool
	SSLTLS   bool
}

// Development reports whether the service runs with development conveniences
// such as human-readable logs.
func (s *Settings) Development() bool {
	return s.Env == "development"
}

// Load reads settings from the environment and an optional .env file.
func Load() (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // optional .env file
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "production")
	v.SetDefault("JWT_EXPIRATION_SECONDS", 3600)
	v.SetDefault("DATA_ROOT", "./data")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_FROM_NAME", "ContactHatch")
	v.SetDefault("MAIL_STARTTLS", true)
	v.SetDefault("MAIL_SSL_TLS", false)

	cfg := &Settings{}
	cfg.Port = v.GetString("PORT")
	cfg.Env = v.GetString("ENV")
	cfg.DatabaseURL = v.GetString("DB_URL")
	cfg.JWTSecret = v.GetString("JWT_SECRET")
	cfg.JWTExpirationSeconds = v.GetInt("JWT_EXPIRATION_SECONDS")
	cfg.RedisAddr = v.GetString("REDIS_ADDR")
	cfg.RedisPassword = v.GetString("REDIS_PASSWORD")
	cfg.DataRoot = v.GetString("DATA_ROOT")
	cfg.Mail.Server = v.GetString("MAIL_SERVER")
	cfg.Mail.Port = v.GetInt("MAIL_PORT")
	cfg.Mail.Username = v.GetString("MAIL_USERNAME")
	cfg.Mail.Password = v.GetString("MAIL_PASSWORD")
	cfg.Mail.From = v.GetString("MAIL_FROM")
	cfg.Mail.FromName = v.GetString("MAIL_FROM_NAME")
	cfg.Mail.StartTLS = v.GetBool("MAIL_STARTTLS")
	cfg.Mail.SSLTLS = v.GetBool("MAIL_SSL_TLS")

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTExpirationSeconds <= 0 {
		return nil, fmt.Errorf("JWT_EXPIRATION_SECONDS must be positive")
	}

	return cfg, nil
}
