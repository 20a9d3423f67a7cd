package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	LogLevel      string         `yaml:"log_level,omitempty"`
	DataDir       string         `yaml:"data_dir,omitempty"`
	MaxRecipients int            `yaml:"max_recipients,omitempty"`
	Portal        PortalConfig   `yaml:"portal,omitempty"`
	Branding      BrandingConfig `yaml:"branding,omitempty"`
	Server        ServerConfig   `yaml:"server,omitempty"`
	WhatsApp      WhatsAppConfig `yaml:"whatsapp,omitempty"`
	S3            S3Config       `yaml:"s3,omitempty"`
}

// PortalConfig points at the trade-fair portal API
type PortalConfig struct {
	BaseURL string        `yaml:"base_url,omitempty"`
	Token   string        `yaml:"token,omitempty"`
	Role    string        `yaml:"role,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

type BrandingConfig struct {
	HeaderImageURL string `yaml:"header_image_url,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// WhatsAppConfig enables run summaries to the organizer
type WhatsAppConfig struct {
	Enabled        bool   `yaml:"enabled,omitempty"`
	OrganizerPhone string `yaml:"organizer_phone,omitempty"`
	CountryCode    string `yaml:"country_code,omitempty"`
}

// S3Config is used for s3:// guest lists and template uploads
type S3Config struct {
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// Enabled reports whether an S3 region or endpoint is configured
func (c S3Config) Enabled() bool {
	return c.Region != "" || c.Endpoint != ""
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		DataDir:  "data",
		Portal: PortalConfig{
			Role:    "organizer",
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		WhatsApp: WhatsAppConfig{
			CountryCode: "48",
		},
	}
}

// Load reads a YAML config file, fills the gaps from DefaultConfig and applies
// INVITES_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = []byte(os.ExpandEnv(string(data)))

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := mergo.Merge(&cfg, DefaultConfig()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv("INVITES_LOG_LEVEL", c.LogLevel)
	c.DataDir = getEnv("INVITES_DATA_DIR", c.DataDir)
	c.Portal.BaseURL = getEnv("INVITES_PORTAL_URL", c.Portal.BaseURL)
	c.Portal.Token = getEnv("INVITES_PORTAL_TOKEN", c.Portal.Token)
	c.Portal.Role = getEnv("INVITES_PORTAL_ROLE", c.Portal.Role)
	c.Branding.HeaderImageURL = getEnv("INVITES_HEADER_IMAGE_URL", c.Branding.HeaderImageURL)
	c.Server.Addr = getEnv("INVITES_ADDR", c.Server.Addr)
	c.WhatsApp.OrganizerPhone = getEnv("INVITES_ORGANIZER_PHONE", c.WhatsApp.OrganizerPhone)
	c.S3.Region = getEnv("INVITES_S3_REGION", c.S3.Region)
	c.S3.Endpoint = getEnv("INVITES_S3_ENDPOINT", c.S3.Endpoint)
	c.S3.AccessKeyID = getEnv("INVITES_S3_ACCESS_KEY_ID", c.S3.AccessKeyID)
	c.S3.SecretAccessKey = getEnv("INVITES_S3_SECRET_ACCESS_KEY", c.S3.SecretAccessKey)

	if v := os.Getenv("INVITES_MAX_RECIPIENTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid INVITES_MAX_RECIPIENTS: %w", err)
		}
		c.MaxRecipients = n
	}
	if v := os.Getenv("INVITES_PORTAL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid INVITES_PORTAL_TIMEOUT: %w", err)
		}
		c.Portal.Timeout = d
	}
	if v := os.Getenv("INVITES_WHATSAPP_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid INVITES_WHATSAPP_ENABLED: %w", err)
		}
		c.WhatsApp.Enabled = b
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.Portal.BaseURL == "" {
		errs = append(errs, errors.New("portal.base_url is required"))
	}
	if c.Portal.Role != "organizer" && c.Portal.Role != "exhibitor" {
		errs = append(errs, fmt.Errorf("portal.role must be organizer or exhibitor, got %q", c.Portal.Role))
	}
	if c.MaxRecipients < 0 {
		errs = append(errs, errors.New("max_recipients must not be negative"))
	}
	if c.WhatsApp.Enabled && c.WhatsApp.OrganizerPhone == "" {
		errs = append(errs, errors.New("whatsapp.organizer_phone is required when whatsapp is enabled"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
