package config

import (
	"fmt"
	"time"

	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/database"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/mailer"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/oauth"
	"github.com/cvmatch/cvmatch-backend/internal/infrastructure/adapter/payment"
)

// Config holds all configuration for the application
type Config struct {
	Environment string          `mapstructure:"environment"`
	FrontendURL string          `mapstructure:"frontend_url"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    database.Config `mapstructure:"database"`
	Logger      LoggerConfig    `mapstructure:"logger"`
	Auth        AuthConfig      `mapstructure:"auth"`
	Google      oauth.Config    `mapstructure:"google"`
	OpenAI      OpenAIConfig    `mapstructure:"openai"`
	Stripe      payment.Config  `mapstructure:"stripe"`
	SMTP        mailer.Config   `mapstructure:"smtp"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the host:port the HTTP server binds to.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// AuthConfig contains token signing and password hashing settings
type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	JWTTTL     time.Duration `mapstructure:"jwt_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

// OpenAIConfig contains the completion provider settings
type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Validate checks that the settings without safe defaults are present
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("frontend_url is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}
	if c.Stripe.APIKey == "" {
		return fmt.Errorf("stripe.api_key is required")
	}
	return nil
}

// IsProduction reports whether the app runs in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
