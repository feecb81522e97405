package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"./configs/.env",
	"../.env",
	"../../.env",
}

// LoadConfig reads the YAML file for the current environment and applies
// environment variable overrides. Secrets (database password, JWT secret,
// API keys) are expected to come from the environment, not the file.
func LoadConfig() (*Config, error) {
	// Missing .env is fine in containerized deployments
	loadDotEnvFile()

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.SetEnvPrefix("CV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindSecretOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// loadDotEnvFile loads the first .env file found in the search paths
func loadDotEnvFile() {
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if godotenv.Load(path) == nil {
				return
			}
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 15*time.Minute)
	v.SetDefault("database.query_timeout", 5*time.Second)
	v.SetDefault("database.retry_attempts", 3)
	v.SetDefault("database.retry_delay", time.Second)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("logger.level", "info")

	v.SetDefault("auth.jwt_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("openai.model", "gpt-4-1106-preview")
}

// getEnvironment reads CV_ENV, defaulting to development
func getEnvironment() string {
	env := os.Getenv("CV_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// bindSecretOverrides maps the secret-bearing keys to explicit environment
// variables so they never need to appear in the YAML files
func bindSecretOverrides(v *viper.Viper) {
	overrides := map[string]string{
		"database.host":         "CV_DB_HOST",
		"database.username":     "CV_DB_USERNAME",
		"database.password":     "CV_DB_PASSWORD",
		"database.name":         "CV_DB_NAME",
		"auth.jwt_secret":       "CV_JWT_SECRET",
		"google.client_id":      "CV_GOOGLE_CLIENT_ID",
		"google.client_secret":  "CV_GOOGLE_CLIENT_SECRET",
		"google.redirect_url":   "CV_GOOGLE_REDIRECT_URL",
		"openai.api_key":        "CV_OPENAI_API_KEY",
		"stripe.api_key":        "CV_STRIPE_API_KEY",
		"stripe.webhook_secret": "CV_STRIPE_WEBHOOK_SECRET",
		"smtp.host":             "CV_SMTP_HOST",
		"smtp.username":         "CV_SMTP_USERNAME",
		"smtp.password":         "CV_SMTP_PASSWORD",
		"frontend_url":          "CV_FRONTEND_URL",
	}
	for key, envVar := range overrides {
		if value := os.Getenv(envVar); value != "" {
			v.Set(key, value)
		}
	}
}
