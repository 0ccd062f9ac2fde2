package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Mail      MailConfig      `yaml:"mail"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Import    ImportConfig    `yaml:"import"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	BaseURL        string   `yaml:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Addr returns host:port for the listener.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver string      `yaml:"driver"` // mongo | postgres | memory
	Mongo  MongoConfig `yaml:"mongo"`
	// PostgresURL is a lib/pq DSN.
	PostgresURL    string `yaml:"postgres_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout bounds a single store round trip.
func (c StorageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MongoConfig holds document store settings
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// RedisConfig is optional; when URL is empty sessions stay in memory and
// scheduler locks fall back to the store.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// SessionConfig holds cookie session settings
type SessionConfig struct {
	CookieName   string `yaml:"cookie_name"`
	CookieMaxAge int    `yaml:"cookie_max_age"`
	Secure       bool   `yaml:"secure"`
}

// MaxAge returns the session lifetime.
func (c SessionConfig) MaxAge() time.Duration {
	return time.Duration(c.CookieMaxAge) * time.Second
}

// MailConfig selects and configures the outbound mail provider.
type MailConfig struct {
	Provider string      `yaml:"provider"` // gmail | ses | smtp
	Gmail    GmailConfig `yaml:"gmail"`
	SES      SESConfig   `yaml:"ses"`
	SMTP     SMTPConfig  `yaml:"smtp"`
}

// GmailConfig points at the OAuth client secrets and the token cache.
type GmailConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	RedirectURL     string `yaml:"redirect_url"`
}

// SESConfig holds AWS SES credentials
type SESConfig struct {
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	Region         string `yaml:"region"`
	FromDomain     string `yaml:"from_domain"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the SES call timeout.
func (c SESConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SMTPConfig holds relay settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSL      bool   `yaml:"ssl"`
}

// SchedulerConfig controls the scheduled-email runner
type SchedulerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	SweepSpec      string `yaml:"sweep_spec"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// LockTTL is how long a fire lock is held at most.
func (c SchedulerConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// ImportConfig holds S3 settings for contact imports
type ImportConfig struct {
	S3Region   string `yaml:"s3_region"`
	AWSProfile string `yaml:"aws_profile"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, for callers
// that run without a config file.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "mongo"
	}
	if cfg.Storage.Mongo.URI == "" {
		cfg.Storage.Mongo.URI = "mongodb://localhost:27017"
	}
	if cfg.Storage.Mongo.Database == "" {
		cfg.Storage.Mongo.Database = "massmaildb"
	}
	if cfg.Storage.TimeoutSeconds == 0 {
		cfg.Storage.TimeoutSeconds = 10
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "massmail_session"
	}
	if cfg.Session.CookieMaxAge == 0 {
		cfg.Session.CookieMaxAge = 86400
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "gmail"
	}
	if cfg.Mail.Gmail.CredentialsFile == "" {
		cfg.Mail.Gmail.CredentialsFile = "credentials.json"
	}
	if cfg.Mail.Gmail.TokenFile == "" {
		cfg.Mail.Gmail.TokenFile = "token.json"
	}
	if cfg.Mail.Gmail.RedirectURL == "" {
		cfg.Mail.Gmail.RedirectURL = cfg.Server.BaseURL + "/auth/gmail/callback"
	}
	if cfg.Mail.SES.Region == "" {
		cfg.Mail.SES.Region = "us-west-2"
	}
	if cfg.Mail.SES.TimeoutSeconds == 0 {
		cfg.Mail.SES.TimeoutSeconds = 30
	}
	if cfg.Mail.SMTP.Port == 0 {
		cfg.Mail.SMTP.Port = 587
	}
	if cfg.Scheduler.SweepSpec == "" {
		cfg.Scheduler.SweepSpec = "@every 30s"
	}
	if cfg.Scheduler.LockTTLSeconds == 0 {
		cfg.Scheduler.LockTTLSeconds = 120
	}
	if cfg.Import.S3Region == "" {
		cfg.Import.S3Region = "us-west-2"
	}
	if cfg.Log.Env == "" {
		cfg.Log.Env = "dev"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets can
// live in .env locally and in real env vars in production. A missing config
// file is not an error here; defaults plus env are enough to run.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, perr := strconv.Atoi(v); perr == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.Storage.Mongo.URI = v
	}
	if v := os.Getenv("MONGO_DATABASE"); v != "" {
		cfg.Storage.Mongo.Database = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Storage.PostgresURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("MAIL_PROVIDER"); v != "" {
		cfg.Mail.Provider = v
	}
	if v := os.Getenv("GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.Mail.Gmail.CredentialsFile = v
	}
	if v := os.Getenv("GOOGLE_TOKEN_FILE"); v != "" {
		cfg.Mail.Gmail.TokenFile = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Mail.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Mail.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Mail.SES.Region = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Mail.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Mail.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Mail.SMTP.Password = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}
