package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	configFileBase     = "volunteer_hub_config"
	defaultHTTPAddr    = ":8080"
	defaultSessionTTL  = 24 * time.Hour
	defaultEventWindow = "all"
)

// Config represents the application configuration
type Config struct {
	DatabaseURL        string        `yaml:"databaseURL" validate:"required"`
	HTTPAddr           string        `yaml:"httpAddr,omitempty" validate:"omitempty,hostname_port"`
	JWTSecret          string        `yaml:"jwtSecret,omitempty" validate:"omitempty,min=32"`
	SessionTTL         time.Duration `yaml:"sessionTTL,omitempty"`
	PublicURL          string        `yaml:"publicURL,omitempty" validate:"omitempty,url"`
	HistorySheetID     string        `yaml:"historySheetID,omitempty"`
	GmailSender        string        `yaml:"gmailSender,omitempty" validate:"omitempty,email"`
	RegistrationEmails bool          `yaml:"registrationEmails"`
	EventCategories    []string      `yaml:"eventCategories,omitempty" validate:"dive,oneof=community education environment healthcare fundraising other"`
	DefaultWindow      string        `yaml:"defaultWindow,omitempty" validate:"omitempty,oneof=all next7days nextmonth"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from volunteer_hub_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration for an environment
// For example, env="test" will look for "volunteer_hub_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// RequireServer checks the fields only the HTTP server needs
func (c *Config) RequireServer() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("jwtSecret is required to serve the API")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = defaultHTTPAddr
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = defaultSessionTTL
	}
	if c.DefaultWindow == "" {
		c.DefaultWindow = defaultEventWindow
	}
}

// findConfigFile searches for the config file in current directory and home directory
func findConfigFile(env string) (string, error) {
	configFileName := configFileBase + ".yaml"
	if env != "" {
		configFileName = configFileBase + "." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
