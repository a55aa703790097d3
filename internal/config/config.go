package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/garyjia/ai-procurement/internal/domain/approval"
	"github.com/garyjia/ai-procurement/internal/vendor"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	OpenAI        OpenAIConfig        `mapstructure:"openai"`
	Lark          LarkConfig          `mapstructure:"lark"`
	Approval      ApprovalConfig      `mapstructure:"approval"`
	Forecast      ForecastConfig      `mapstructure:"forecast"`
	Optimization  OptimizationConfig  `mapstructure:"optimization"`
	Vendors       VendorConfig        `mapstructure:"vendors"`
	PurchaseOrder PurchaseOrderConfig `mapstructure:"purchase_order"`
	Logger        LoggerConfig        `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// OpenAIConfig holds OpenAI API configuration
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// LarkConfig holds Lark notification configuration. Notification is optional;
// when disabled the engine logs pending approvals instead.
type LarkConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	AppID           string `mapstructure:"app_id"`
	AppSecret       string `mapstructure:"app_secret"`
	ManagerOpenID   string `mapstructure:"manager_open_id"`
	ExecutiveOpenID string `mapstructure:"executive_open_id"`
}

// ApprovalConfig holds the routing threshold configuration
type ApprovalConfig struct {
	ManagerValue    float64 `mapstructure:"manager_value"`
	ExecutiveValue  float64 `mapstructure:"executive_value"`
	ConfidenceFloor float64 `mapstructure:"confidence_floor"`
	ConfigVersion   string  `mapstructure:"config_version"`
}

// Thresholds converts the config section into the domain policy value
func (a ApprovalConfig) Thresholds() approval.Thresholds {
	return approval.Thresholds{
		ManagerValue:    a.ManagerValue,
		ExecutiveValue:  a.ExecutiveValue,
		ConfidenceFloor: a.ConfidenceFloor,
		ConfigVersion:   a.ConfigVersion,
		UpdatedAt:       time.Now().UTC(),
	}
}

// ForecastConfig holds demand forecast stage configuration
type ForecastConfig struct {
	HorizonDays int `mapstructure:"horizon_days"`
}

// OptimizationConfig holds reorder optimization stage configuration
type OptimizationConfig struct {
	LeadTimeDays  int     `mapstructure:"lead_time_days"`
	ServiceFactor float64 `mapstructure:"service_factor"`
}

// VendorConfig holds the vendor catalog and scoring weights
type VendorConfig struct {
	Catalog []vendor.CatalogEntry `mapstructure:"catalog"`
	Weights vendor.Weights        `mapstructure:"weights"`
}

// PurchaseOrderConfig holds PO artifact generation configuration
type PurchaseOrderConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/procurement.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// OpenAI defaults
	viper.SetDefault("openai.model", "gpt-4")
	viper.SetDefault("openai.temperature", 0.3)
	viper.SetDefault("openai.timeout", 60*time.Second)

	// Approval routing defaults
	viper.SetDefault("approval.manager_value", 5000.0)
	viper.SetDefault("approval.executive_value", 10000.0)
	viper.SetDefault("approval.confidence_floor", 0.85)
	viper.SetDefault("approval.config_version", "v1")

	// Stage defaults
	viper.SetDefault("forecast.horizon_days", 30)
	viper.SetDefault("optimization.lead_time_days", 7)
	viper.SetDefault("optimization.service_factor", 1.65)

	// Purchase order defaults
	viper.SetDefault("purchase_order.output_dir", "generated_orders")

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	// Sensitive credentials from environment
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("lark.app_id", "LARK_APP_ID")
	viper.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	viper.BindEnv("lark.manager_open_id", "LARK_MANAGER_OPEN_ID")
	viper.BindEnv("lark.executive_open_id", "LARK_EXECUTIVE_OPEN_ID")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}

	if c.Lark.Enabled {
		if c.Lark.AppID == "" {
			return fmt.Errorf("lark.app_id is required when lark is enabled")
		}
		if c.Lark.AppSecret == "" {
			return fmt.Errorf("lark.app_secret is required when lark is enabled")
		}
		if c.Lark.ManagerOpenID == "" && c.Lark.ExecutiveOpenID == "" {
			return fmt.Errorf("at least one reviewer open_id is required when lark is enabled")
		}
	}

	if err := c.Approval.Thresholds().Validate(); err != nil {
		return fmt.Errorf("approval thresholds: %w", err)
	}

	if len(c.Vendors.Catalog) == 0 {
		return fmt.Errorf("vendors.catalog must declare at least one vendor")
	}
	for i, v := range c.Vendors.Catalog {
		if v.VendorID == "" {
			return fmt.Errorf("vendors.catalog[%d]: vendor_id is required", i)
		}
		if v.UnitPrice < 0 {
			return fmt.Errorf("vendors.catalog[%d]: unit_price must be >= 0", i)
		}
		if v.Reliability < 0 || v.Reliability > 1 {
			return fmt.Errorf("vendors.catalog[%d]: reliability must be in [0,1]", i)
		}
	}

	if c.Forecast.HorizonDays <= 0 {
		return fmt.Errorf("forecast.horizon_days must be > 0")
	}

	return nil
}
