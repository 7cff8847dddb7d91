// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	// Enable ENV override like SHOPIFY_ACCESS_TOKEN
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment overlay (config.development.yaml etc.), missing file is fine.
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	applyDefaults(&cfg)
	overrideFromEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the usual locations so the service can run from
// the repo root, cmd/ directories, or package test directories.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	for _, p := range possiblePaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "custom-pricing-service"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.ReadHeaderTimeout == 0 {
		cfg.HTTP.ReadHeaderTimeout = 5
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 10
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60
	}
	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-10"
	}
	if cfg.Shopify.Timeout == 0 {
		cfg.Shopify.Timeout = 10000
	}
	if cfg.Cart.Timeout == 0 {
		cfg.Cart.Timeout = 10000
	}
	if cfg.Lifecycle.RetentionWindow == 0 {
		cfg.Lifecycle.RetentionWindow = 2 * time.Hour
	}
	if cfg.Lifecycle.MaxVariantAge == 0 {
		cfg.Lifecycle.MaxVariantAge = 24 * time.Hour
	}
	if cfg.Lifecycle.ProvisionListLimit == 0 {
		cfg.Lifecycle.ProvisionListLimit = 100
	}
	if cfg.Lifecycle.SweepListLimit == 0 {
		cfg.Lifecycle.SweepListLimit = 250
	}
	if cfg.Lifecycle.ReservationTTL == 0 {
		cfg.Lifecycle.ReservationTTL = 15 * time.Second
	}
	if cfg.EventLog.Capacity == 0 {
		cfg.EventLog.Capacity = 1000
	}
	if cfg.EventLog.AlarmThreshold == 0 {
		cfg.EventLog.AlarmThreshold = 5
	}
	if cfg.EventLog.AlarmWindow == 0 {
		cfg.EventLog.AlarmWindow = 10 * time.Minute
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = "pricing-service-events"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Pricing.Currency == "" {
		cfg.Pricing.Currency = "USD"
	}
	if len(cfg.Pricing.Materials) == 0 {
		cfg.Pricing.Materials = map[string]MaterialConfig{
			"wood":    {Label: "Wood", BasePricePerM2: 50},
			"metal":   {Label: "Metal", BasePricePerM2: 120},
			"plastic": {Label: "Plastic", BasePricePerM2: 30},
		}
	}
	if len(cfg.Pricing.Coefficients) == 0 {
		cfg.Pricing.Coefficients = []CoefficientBreakpoint{
			{MaxArea: 0.5, Coefficient: 1.0},
			{MaxArea: 0.75, Coefficient: 1.1},
			{MaxArea: 2.0, Coefficient: 1.2},
			{MaxArea: 0, Coefficient: 1.3}, // unbounded final row
		}
	}
}

// overrideFromEnv fills in fields that are commonly provided only as
// environment variables (viper does not surface env-only keys on Unmarshal).
func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("SHOPIFY_SHOP_DOMAIN"); val != "" {
		cfg.Shopify.ShopDomain = val
	}
	if val := os.Getenv("SHOPIFY_ACCESS_TOKEN"); val != "" {
		cfg.Shopify.AccessToken = val
	}
	if val := os.Getenv("SHOPIFY_API_VERSION"); val != "" {
		cfg.Shopify.APIVersion = val
	}
	if val := os.Getenv("CART_STOREFRONT_URL"); val != "" {
		cfg.Cart.StorefrontURL = val
	}
	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Redis.Address = val
		cfg.Redis.Enabled = true
	}
	if val := os.Getenv("REDIS_PASSWORD"); val != "" {
		cfg.Redis.Password = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		cfg.AWS.Region = val
	}
	if val := os.Getenv("SNS_ALARM_TOPIC_ARN"); val != "" {
		cfg.AWS.SNS.AlarmTopicARN = val
		cfg.AWS.SNS.Enabled = true
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Shopify.ShopDomain == "" {
		return fmt.Errorf("shopify.shop_domain is required")
	}
	if cfg.Shopify.AccessToken == "" {
		return fmt.Errorf("shopify.access_token is required")
	}
	if cfg.Cart.StorefrontURL == "" {
		cfg.Cart.StorefrontURL = "https://" + cfg.Shopify.ShopDomain
	}
	if cfg.Redis.Enabled && cfg.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when redis is enabled")
	}
	if cfg.AWS.SNS.Enabled && cfg.AWS.SNS.AlarmTopicARN == "" {
		return fmt.Errorf("aws.sns.alarm_topic_arn is required when sns is enabled")
	}
	if cfg.Elasticsearch.Enabled && len(cfg.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("elasticsearch.addresses is required when the event sink is enabled")
	}
	for key, m := range cfg.Pricing.Materials {
		if m.BasePricePerM2 <= 0 {
			return fmt.Errorf("pricing.materials.%s.base_price_per_m2 must be positive", key)
		}
	}
	return nil
}
